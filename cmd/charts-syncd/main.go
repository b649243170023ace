package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rancher/fleet-helm-charts/internal/platform/config"
	"github.com/rancher/fleet-helm-charts/internal/platform/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logger.New(cfg.LogLevel)

	container, err := NewContainer(context.Background(), cfg, log)
	if err != nil {
		return fmt.Errorf("building container: %w", err)
	}

	server := NewServer(container)
	return server.Run()
}
