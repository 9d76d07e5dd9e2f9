package market

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/marcelofeitoza/crowd-estate/internal/program"
	"github.com/marcelofeitoza/crowd-estate/internal/solana"
)

// wsStub implements solana.WSClient with a scripted notification stream.
type wsStub struct {
	notifs chan solana.ProgramNotification
}

func (w *wsStub) SubscribeProgram(context.Context, string) (<-chan solana.ProgramNotification, error) {
	return w.notifs, nil
}

func (w *wsStub) Close() error { return nil }

var _ solana.WSClient = (*wsStub)(nil)

// countingInvalidator signals each listing invalidation.
type countingInvalidator struct {
	spyInvalidator
	mu     sync.Mutex
	signal chan struct{}
}

func (c *countingInvalidator) InvalidateAllProperties(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	err := c.spyInvalidator.InvalidateAllProperties(ctx)
	c.signal <- struct{}{}
	return err
}

func (c *countingInvalidator) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.allCalls
}

func TestWatcher_InvalidatesOnNotification(t *testing.T) {
	ws := &wsStub{notifs: make(chan solana.ProgramNotification, 4)}
	inv := &countingInvalidator{signal: make(chan struct{}, 4)}
	w := NewWatcher(ws, program.DefaultProgramID, inv, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()

	ws.notifs <- solana.ProgramNotification{Signature: "sigA", Slot: 100}

	select {
	case <-inv.signal:
	case <-time.After(time.Second):
		t.Fatal("notification did not trigger invalidation")
	}

	// Failed transactions change no account state.
	ws.notifs <- solana.ProgramNotification{Signature: "sigB", Slot: 101, Err: map[string]any{"err": 1}}
	ws.notifs <- solana.ProgramNotification{Signature: "sigC", Slot: 102}

	select {
	case <-inv.signal:
	case <-time.After(time.Second):
		t.Fatal("second notification did not trigger invalidation")
	}

	if got := inv.calls(); got != 2 {
		t.Errorf("Expected 2 invalidations, got %d", got)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop on cancellation")
	}
}

func TestWatcher_StopsWhenStreamCloses(t *testing.T) {
	ws := &wsStub{notifs: make(chan solana.ProgramNotification)}
	w := NewWatcher(ws, program.DefaultProgramID, &spyInvalidator{}, quietLogger())

	done := make(chan error, 1)
	go func() {
		done <- w.Run(context.Background())
	}()

	close(ws.notifs)

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v on stream close", err)
		}
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop after stream close")
	}
}
