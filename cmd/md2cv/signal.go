package main

import (
	"context"
	"os/signal"
)

// notifyContext returns a context canceled by the first shutdown signal,
// so watch and serve release the browser before exiting.
func notifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, shutdownSignals...)
}
