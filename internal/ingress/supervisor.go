package ingress

import (
	"context"
	"errors"
	"log/slog"

	"github.com/rickgao/refbox-bridge/internal/connection"
)

// Supervise logs connection errors until errs is closed or ctx is cancelled.
// It does not reconnect.
func Supervise(ctx context.Context, errs <-chan error, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			var connErr *connection.ConnectionError
			if errors.As(err, &connErr) {
				logger.Error("refbox connection lost",
					"host", connErr.Host,
					"port", connErr.Port,
					"error", connErr.Err,
				)
				continue
			}
			logger.Error("refbox connection error", "error", err)
		}
	}
}
