package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/rickgao/refbox-bridge/internal/bridge"
	"github.com/rickgao/refbox-bridge/internal/config"
	"github.com/rickgao/refbox-bridge/internal/ingress"
	"github.com/rickgao/refbox-bridge/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/bridge.example.yaml", "path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Set up structured logging
	logger, err := bridge.NewLogger(os.Stdout, cfg.Log)
	if err != nil {
		slog.Error("invalid log config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	logger.Info("starting bridge",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Create context with cancellation on shutdown signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mgr, err := bridge.NewManager(cfg, logger)
	if err != nil {
		logger.Error("failed to create connection manager", "error", err)
		os.Exit(1)
	}
	defer mgr.Close()

	logger.Info("configuration loaded",
		"refbox_host", cfg.Refbox.Host,
		"refbox_port", cfg.Refbox.Port,
		"transport", cfg.Refbox.Transport,
		"strict", cfg.Translation.Strict,
	)

	if cfg.Refbox.AutoConnect {
		if err := mgr.Connect(); err != nil {
			logger.Error("failed to start refbox connection", "error", err)
			os.Exit(1)
		}
	}

	srvCfg := ingress.DefaultServerConfig()
	srvCfg.Addr = fmt.Sprintf(":%d", cfg.HTTP.Port)
	srvCfg.ShutdownTimeout = cfg.HTTP.ShutdownTimeout
	srv := ingress.NewServer(srvCfg, mgr, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})
	g.Go(func() error {
		return ingress.Supervise(gctx, mgr.Errors(), logger)
	})

	logger.Info("bridge running",
		"orders_url", fmt.Sprintf("http://localhost:%d/orders", cfg.HTTP.Port),
		"health_url", fmt.Sprintf("http://localhost:%d/health", cfg.HTTP.Port),
	)

	if err := g.Wait(); err != nil {
		logger.Error("bridge stopped with error", "error", err)
		mgr.Close()
		os.Exit(1)
	}

	logger.Info("bridge stopped")
}
