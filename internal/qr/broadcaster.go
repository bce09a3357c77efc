package qr

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Broadcaster holds the process-wide verification code shown as a QR code.
// The value is shared by all verified clients and regenerated on a fixed
// interval regardless of request traffic. Exactly one writer (the Run
// goroutine) swaps the value; readers never block and never trigger a
// regeneration.
type Broadcaster struct {
	current  atomic.Value // string
	interval time.Duration
	logger   *slog.Logger
}

// NewBroadcaster seeds the initial value and sets the rotation interval.
func NewBroadcaster(interval time.Duration, logger *slog.Logger) *Broadcaster {
	b := &Broadcaster{interval: interval, logger: logger}
	b.current.Store(uuid.NewString())
	return b
}

// Run rotates the value every interval until the context is cancelled.
// Call it once, in its own goroutine, at process start.
func (b *Broadcaster) Run(ctx context.Context) {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			b.current.Store(uuid.NewString())
			b.logger.Debug("verification code rotated")
		case <-ctx.Done():
			return
		}
	}
}

// Current returns the value as of this instant. Reads observe either the old
// or the new value, never a torn one.
func (b *Broadcaster) Current() string {
	return b.current.Load().(string)
}
