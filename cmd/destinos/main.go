package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/crisrod14/destinosAI/internal/syncer"
)

func main() {
	// Set up context with signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	cancel()
	if err != nil {
		os.Exit(exitCode(err))
	}
}

// exitCode is 2 for operator mistakes, 130 for an interrupt and 1 for
// everything else.
func exitCode(err error) int {
	switch {
	case errors.Is(err, syncer.ErrInvalidRecord), errors.Is(err, syncer.ErrNotFound):
		return 2
	case errors.Is(err, context.Canceled):
		return 130
	default:
		return 1
	}
}
