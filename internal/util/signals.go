package util

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// SetupSignalHandler returns a context that is cancelled on SIGINT or SIGTERM,
// plus a stop function that releases the signal registration.
//
// A running clustering engine notices the cancellation at its next tally and
// stops all workers together. A second signal exits immediately.
func SetupSignalHandler(logger *slog.Logger) (context.Context, context.CancelFunc) {
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received shutdown signal, stopping run", "signal", sig.String())
			cancel()
		case <-ctx.Done():
			return
		}

		sig := <-sigCh
		logger.Warn("received second shutdown signal, forcing exit", "signal", sig.String())
		os.Exit(1)
	}()

	stop := func() {
		signal.Stop(sigCh)
		cancel()
	}

	return ctx, stop
}
