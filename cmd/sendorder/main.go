// sendorder connects to the refbox, sends a single order and disconnects.
// Usage: go run ./cmd/sendorder --config configs/bridge.example.yaml --order order.json
//
// The order file holds one JSON order:
//
//	{"items": [{"model": "C1", "options": [{"name": "ring_1", "value": "blue"}]}]}
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/refbox-bridge/internal/bridge"
	"github.com/rickgao/refbox-bridge/internal/config"
	"github.com/rickgao/refbox-bridge/internal/connection"
	"github.com/rickgao/refbox-bridge/internal/model"
	"github.com/rickgao/refbox-bridge/internal/refbox"
	"github.com/rickgao/refbox-bridge/internal/translate"
)

func main() {
	configPath := flag.String("config", "configs/bridge.example.yaml", "path to config file")
	orderPath := flag.String("order", "", "path to order JSON file")
	host := flag.String("host", "", "override refbox host")
	port := flag.Uint("port", 0, "override refbox port")
	timeout := flag.Duration("timeout", 10*time.Second, "max time to wait for the connection")
	dryRun := flag.Bool("dry-run", false, "translate and print the order without connecting")
	flag.Parse()

	// Setup logger
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	if *orderPath == "" {
		logger.Error("--order is required")
		os.Exit(2)
	}

	order, err := readOrder(*orderPath)
	if err != nil {
		logger.Error("failed to read order", "path", *orderPath, "error", err)
		os.Exit(1)
	}

	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *host != "" {
		cfg.Refbox.Host = *host
	}
	if *port != 0 {
		cfg.Refbox.Port = uint32(*port)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	if *dryRun {
		if err := printOrder(order, cfg.Translation.Strict); err != nil {
			logger.Error("failed to translate order", "error", err)
			os.Exit(1)
		}
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	mgr, err := bridge.NewManager(cfg, logger)
	if err != nil {
		logger.Error("failed to create connection manager", "error", err)
		os.Exit(1)
	}
	defer mgr.Close()

	if err := mgr.Connect(); err != nil {
		logger.Error("failed to connect", "error", err)
		os.Exit(1)
	}

	if err := waitConnected(ctx, mgr, *timeout); err != nil {
		logger.Error("refbox not reachable",
			"host", cfg.Refbox.Host,
			"port", cfg.Refbox.Port,
			"error", err,
		)
		os.Exit(1)
	}

	sent, err := mgr.SendOrder(order)
	if err != nil {
		logger.Error("failed to send order", "order_id", order.ID, "error", err)
		os.Exit(1)
	}
	if !sent {
		logger.Error("connection lost before order was sent", "order_id", order.ID)
		os.Exit(1)
	}

	logger.Info("order sent", "order_id", order.ID, "items", len(order.Items))
}

func readOrder(path string) (model.Order, error) {
	var order model.Order

	data, err := os.ReadFile(path)
	if err != nil {
		return order, err
	}
	if err := json.Unmarshal(data, &order); err != nil {
		return order, fmt.Errorf("parse order json: %w", err)
	}
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	return order, nil
}

// waitConnected polls the manager until it connects, the attempt fails, or
// the timeout elapses.
func waitConnected(ctx context.Context, mgr *connection.Manager, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		switch mgr.State() {
		case connection.StateConnected:
			return nil
		case connection.StateDisconnected:
			select {
			case err := <-mgr.Errors():
				return err
			default:
				return connection.ErrNotConnected
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-mgr.Errors():
			return err
		case <-ticker.C:
		}
	}
}

func printOrder(order model.Order, strict bool) error {
	info, err := translate.Translator{Strict: strict}.Translate(order)
	if err != nil {
		return err
	}

	for i, o := range info.Orders {
		fmt.Printf("order %d: complexity=%s base=%s cap=%s rings=%v\n",
			i, o.Complexity, o.BaseColor, o.CapColor, o.RingColors)
	}

	payload := info.Marshal()
	fmt.Printf("component_id=%d msg_type=%d payload=%d bytes\n",
		refbox.OrderInfoComponentID, refbox.OrderInfoMsgType, len(payload))
	return nil
}
