// Package sigctx ties process shutdown signals to a context.
package sigctx

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// Signals stop every farmstore command.
var Signals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
	syscall.SIGQUIT,
}

// NotifyContext returns a copy of parent that is done on the first of
// [Signals] or when parent is done.
func NotifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, Signals...)
}
