package qr

import (
	"context"
	"testing"
	"time"

	"github.com/orderking/orderking_api/internal/logging"
)

func TestCurrentIsSeededAtConstruction(t *testing.T) {
	b := NewBroadcaster(time.Hour, logging.Discard())
	if b.Current() == "" {
		t.Fatal("expected a value before the first rotation")
	}
}

func TestValueStableBetweenRotations(t *testing.T) {
	b := NewBroadcaster(time.Hour, logging.Discard())

	first := b.Current()
	second := b.Current()
	if first != second {
		t.Fatal("reads without an elapsed interval must observe the same value")
	}
}

func TestValueRotatesOnInterval(t *testing.T) {
	b := NewBroadcaster(20*time.Millisecond, logging.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.Run(ctx)

	before := b.Current()

	deadline := time.After(2 * time.Second)
	for b.Current() == before {
		select {
		case <-deadline:
			t.Fatal("value did not rotate within deadline")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	b := NewBroadcaster(10*time.Millisecond, logging.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		b.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}
