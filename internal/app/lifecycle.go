package app

import (
	"context"
	"os/signal"
	"syscall"
	"time"
)

// SetupContext bounds ctx by timeout.
func SetupContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeout)
}

// SetupSignals returns a context canceled on SIGINT or SIGTERM. A read in
// progress still completes; the cancellation is seen between offsets.
func SetupSignals(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
}

// SetupLifecycle applies the run timeout and the signal handling. Call
// Cleanup on the returned value when the run ends.
func SetupLifecycle(ctx context.Context, timeout time.Duration) (context.Context, *CancelFuncs) {
	ctx, cancelTimeout := SetupContext(ctx, timeout)
	ctx, stopSignals := SetupSignals(ctx)
	return ctx, &CancelFuncs{CancelTimeout: cancelTimeout, StopSignals: stopSignals}
}

// CancelFuncs holds the cancel functions created by SetupLifecycle.
type CancelFuncs struct {
	CancelTimeout context.CancelFunc
	StopSignals   context.CancelFunc
}

// Cleanup stops the signal handling, then cancels the timeout.
func (c *CancelFuncs) Cleanup() {
	if c.StopSignals != nil {
		c.StopSignals()
	}
	if c.CancelTimeout != nil {
		c.CancelTimeout()
	}
}
