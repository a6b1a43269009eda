//go:build !windows

package daemon

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-logr/logr/testr"
	"github.com/ishanjain/crayond/pkg/config"
	"github.com/ishanjain/crayond/pkg/linkapi"
	"github.com/ishanjain/crayond/pkg/netif"
)

func freePort(t *testing.T) int {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func testConfig(t *testing.T) (*config.Config, string) {
	t.Helper()

	dir, err := os.MkdirTemp("", "crayond")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	cfg := config.Default()
	cfg.API.Listen = "127.0.0.1"
	cfg.API.Port = freePort(t)
	cfg.Registry.Backend = config.BackendMemory
	cfg.Server.SocketPath = filepath.Join(dir, "ctl.sock")
	return cfg, dir
}

func waitReady(t *testing.T, base string) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(base + "/ready")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("daemon did not become ready")
}

func TestDaemonMemoryBackend(t *testing.T) {
	cfg, _ := testConfig(t)
	d := NewWithConfig(cfg, "", testr.New(t))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Start(ctx) }()

	base := fmt.Sprintf("http://127.0.0.1:%d", cfg.API.Port)
	waitReady(t, base)

	c := linkapi.NewClient(base)
	created, err := c.Create(ctx, "lo")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if *created != (netif.Interface{Name: "lo", Addr: "127.0.0.1", Netmask: "255.0.0.0"}) {
		t.Errorf("unexpected link %+v", created)
	}

	status := d.GetStatus()
	if status.Backend != config.BackendMemory || !status.Ready {
		t.Errorf("unexpected status %+v", status)
	}
	if _, err := os.Stat(cfg.Server.SocketPath); err != nil {
		t.Errorf("control socket missing: %v", err)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("daemon did not stop")
	}

	if _, err := os.Stat(cfg.Server.SocketPath); !os.IsNotExist(err) {
		t.Errorf("control socket not removed: %v", err)
	}
}

func TestDaemonMemorySubnet(t *testing.T) {
	cfg, _ := testConfig(t)
	cfg.Registry.Subnet = "10.107.0.0/24"
	d := NewWithConfig(cfg, "", testr.New(t))

	if err := d.start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(d.stop)

	link, err := d.registry.Create("veth0")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if link.Addr != "10.107.0.1" || link.Netmask != "255.255.255.0" {
		t.Errorf("unexpected link %+v", link)
	}
}

func TestDaemonPortInUse(t *testing.T) {
	cfg, _ := testConfig(t)

	l, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", cfg.API.Port))
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer l.Close()

	d := NewWithConfig(cfg, "", testr.New(t))
	if err := d.Start(context.Background()); err == nil {
		t.Fatal("expected Start to fail when the port is taken")
	}
}

func TestReloadConfig(t *testing.T) {
	cfg, dir := testConfig(t)
	path := filepath.Join(dir, "config.yml")

	write := func(logRequests bool) {
		content := fmt.Sprintf(`api:
  listen: 127.0.0.1
  port: %d
  log_requests: %t
registry:
  backend: memory
server:
  socket_path: %s
`, cfg.API.Port, logRequests, cfg.Server.SocketPath)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("write config: %v", err)
		}
	}
	write(false)

	d, err := New(path, testr.New(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := d.start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(d.stop)

	write(true)
	d.reloadConfig()
	if !d.config.API.LogRequests {
		t.Error("log_requests was not reloaded")
	}

	// Invalid files leave the running config alone
	if err := os.WriteFile(path, []byte("registry:\n  backend: etcd\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	d.reloadConfig()
	if d.config.Registry.Backend != config.BackendMemory || !d.config.API.LogRequests {
		t.Errorf("config changed after invalid reload: %+v", d.config)
	}
}

func TestResolveInterfaceToIP(t *testing.T) {
	d := NewWithConfig(config.Default(), "", testr.New(t))

	for _, addr := range []string{"0.0.0.0", "127.0.0.1", "::1"} {
		got, err := d.resolveInterfaceToIP(addr)
		if err != nil || got != addr {
			t.Errorf("%s: got %q err=%v", addr, got, err)
		}
	}

	if _, err := d.resolveInterfaceToIP("no-such-iface0"); err == nil {
		t.Error("expected error for unknown interface")
	}
}
