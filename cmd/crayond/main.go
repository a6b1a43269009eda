package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/ishanjain/crayond/pkg/config"
	"github.com/ishanjain/crayond/pkg/daemon"
	"github.com/ishanjain/crayond/pkg/ui"
)

const version = "0.1.0"

func newLogger(verbosity int) logr.Logger {
	return funcr.New(func(p, a string) {
		if p != "" {
			fmt.Printf("%s: %s\n", p, a)
		} else {
			fmt.Println(a)
		}
	}, funcr.Options{Verbosity: verbosity})
}

func main() {
	configPath := flag.String("config", config.DefaultConfigPath, "path to the config file")
	verbose := flag.Bool("v", false, "verbose logging")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()
	if *showVersion {
		fmt.Println("crayond version " + version)
		os.Exit(0)
	}

	cfg, err := config.LoadFromFile(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	verbosity := cfg.Verbosity()
	if *verbose {
		verbosity = 1
	}
	logger := newLogger(verbosity)

	ui.DisplayBanner(version, cfg.Registry.Backend, fmt.Sprintf("%s:%d", cfg.API.Listen, cfg.API.Port))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d := daemon.NewWithConfig(cfg, *configPath, logger)
	if err := d.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
