package daemon

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-logr/logr"
	"github.com/ishanjain/crayond/pkg/api"
	"github.com/ishanjain/crayond/pkg/config"
	"github.com/ishanjain/crayond/pkg/health"
	"github.com/ishanjain/crayond/pkg/netif"
	"github.com/ishanjain/crayond/pkg/socket"
)

const shutdownTimeout = 5 * time.Second

// Daemon represents the crayond daemon
type Daemon struct {
	config     *config.Config
	configPath string
	logger     logr.Logger

	registry     *netif.Shared
	monitor      *health.Monitor
	apiServer    *api.Server
	socketServer *socket.Server

	mu sync.RWMutex
}

// New creates a new daemon instance
func New(configPath string, logger logr.Logger) (*Daemon, error) {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return NewWithConfig(cfg, configPath, logger), nil
}

// NewWithConfig creates a daemon from an already loaded configuration.
// configPath is only used for reloads and may be empty.
func NewWithConfig(cfg *config.Config, configPath string, logger logr.Logger) *Daemon {
	return &Daemon{
		config:     cfg,
		configPath: configPath,
		logger:     logger,
	}
}

// newRegistry builds the configured registry backend
func (d *Daemon) newRegistry() (netif.Registry, error) {
	switch d.config.Registry.Backend {
	case config.BackendMemory:
		opts := []netif.MemoryOption{netif.WithLogger(d.logger.WithName("memory"))}
		if d.config.Registry.Subnet != "" {
			opts = append(opts, netif.WithSubnet(d.config.Registry.Subnet))
		}
		return netif.NewMemoryRegistry(opts...)
	case config.BackendSystem:
		return netif.NewSystemRegistry(d.logger.WithName("system")), nil
	default:
		return nil, fmt.Errorf("unknown registry backend: %s", d.config.Registry.Backend)
	}
}

// Start starts the daemon and blocks until ctx is cancelled
func (d *Daemon) Start(ctx context.Context) error {
	if err := d.start(); err != nil {
		d.stop()
		return err
	}

	if d.configPath != "" {
		go d.watchConfig(ctx)
	}

	d.logger.Info("Daemon started successfully")
	<-ctx.Done()

	d.logger.Info("Shutting down")
	d.stop()
	return nil
}

func (d *Daemon) start() error {
	d.logger.Info("Starting crayond daemon", "backend", d.config.Registry.Backend)

	reg, err := d.newRegistry()
	if err != nil {
		return fmt.Errorf("failed to create registry: %w", err)
	}
	d.registry = netif.NewShared(reg)

	d.monitor = health.NewMonitor(health.Config{
		Backend: d.config.Registry.Backend,
		Logger:  d.logger.WithName("health"),
	})

	listenIP, err := d.resolveInterfaceToIP(d.config.API.Listen)
	if err != nil {
		d.logger.Error(err, "Failed to resolve api listen address",
			"listen", d.config.API.Listen,
			"available_interfaces", d.listAvailableInterfaces())
		return err
	}

	d.apiServer = api.NewServer(api.Config{
		Address:     listenIP,
		Port:        d.config.API.Port,
		Registry:    d.registry,
		Monitor:     d.monitor,
		Logger:      d.logger.WithName("api"),
		LogRequests: d.config.API.LogRequests,
	})
	if err := d.apiServer.Start(); err != nil {
		return fmt.Errorf("failed to start API server: %w", err)
	}

	// The control socket is optional; the API keeps working without it
	d.socketServer = socket.NewServer(d.config.Server.SocketPath, d, d.registry, d.logger.WithName("socket"))
	if err := d.socketServer.Start(); err != nil {
		d.logger.Error(err, "Failed to start control socket", "path", d.config.Server.SocketPath)
		d.socketServer = nil
	}

	d.monitor.SetReady(true)
	return nil
}

func (d *Daemon) stop() {
	if d.monitor != nil {
		d.monitor.SetReady(false)
	}

	if d.socketServer != nil {
		d.socketServer.Stop()
	}

	if d.apiServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := d.apiServer.Stop(ctx); err != nil {
			d.logger.Error(err, "Failed to stop API server")
		}
	}
}

// GetStatus implements socket.DaemonController
func (d *Daemon) GetStatus() socket.StatusResponse {
	d.mu.RLock()
	defer d.mu.RUnlock()

	status := socket.StatusResponse{Backend: d.config.Registry.Backend}
	if d.apiServer != nil {
		status.APIAddress = d.apiServer.Addr()
	}
	if d.monitor != nil {
		snap := d.monitor.Snapshot()
		status.Ready = snap.Ready
		status.Uptime = snap.Uptime
	}
	return status
}

func (d *Daemon) watchConfig(ctx context.Context) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		d.logger.Error(err, "Failed to create config watcher")
		return
	}
	defer watcher.Close()

	// Watch the directory (handles vim's rename-based saves)
	configDir := filepath.Dir(d.configPath)
	if err := watcher.Add(configDir); err != nil {
		d.logger.Error(err, "Failed to watch config directory", "path", configDir)
		return
	}

	d.logger.Info("Watching config file for changes", "path", d.configPath)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}

			// Only care about changes to our config file
			if filepath.Clean(event.Name) != filepath.Clean(d.configPath) {
				continue
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				d.logger.Info("Config file changed, reloading", "path", event.Name)
				// Small delay to ensure file is fully written
				time.Sleep(100 * time.Millisecond)
				d.reloadConfig()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			d.logger.Error(err, "Config watcher error")
		}
	}
}

// reloadConfig applies the hot-reloadable settings of the config file.
// Everything else needs a restart.
func (d *Daemon) reloadConfig() {
	newCfg, err := config.LoadFromFile(d.configPath)
	if err != nil {
		d.logger.Error(err, "Invalid config, keeping current configuration", "path", d.configPath)
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	old := d.config

	if old.API.LogRequests != newCfg.API.LogRequests {
		old.API.LogRequests = newCfg.API.LogRequests
		if d.apiServer != nil {
			d.apiServer.SetLogRequests(newCfg.API.LogRequests)
		}
		d.logger.Info("Request logging updated", "enabled", newCfg.API.LogRequests)
	}

	if old.API.Listen != newCfg.API.Listen || old.API.Port != newCfg.API.Port {
		d.logger.Info("API listen address changed, restart required",
			"old", fmt.Sprintf("%s:%d", old.API.Listen, old.API.Port),
			"new", fmt.Sprintf("%s:%d", newCfg.API.Listen, newCfg.API.Port))
	}
	if old.Registry != newCfg.Registry {
		d.logger.Info("Registry configuration changed, restart required",
			"old_backend", old.Registry.Backend,
			"new_backend", newCfg.Registry.Backend)
	}
	if old.Server.SocketPath != newCfg.Server.SocketPath {
		d.logger.Info("Socket path changed, restart required", "new", newCfg.Server.SocketPath)
	}
	if old.Verbosity() != newCfg.Verbosity() {
		d.logger.Info("Logging verbosity changed, restart required")
	}

	d.logger.Info("Config reloaded")
}
