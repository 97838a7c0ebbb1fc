package pipeline

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestLoopControllerStartStopJoin(t *testing.T) {
	c := NewLoopController()
	var ran atomic.Bool
	var exited atomic.Bool

	ok := c.Start(context.Background(), func(ctx context.Context) {
		ran.Store(true)
		<-ctx.Done()
		exited.Store(true)
	})
	if !ok {
		t.Fatalf("expected Start to succeed when idle")
	}
	if !c.IsRunning() {
		t.Fatalf("expected IsRunning to be true right after Start")
	}

	c.Stop()
	if !ran.Load() || !exited.Load() {
		t.Fatalf("expected the loop body to run and observe cancellation before Stop returns")
	}
	if c.IsRunning() {
		t.Fatalf("expected IsRunning to be false after Stop")
	}
}

func TestLoopControllerStartTwiceFails(t *testing.T) {
	c := NewLoopController()
	block := make(chan struct{})
	defer close(block)

	c.Start(context.Background(), func(ctx context.Context) {
		<-block
	})
	if c.Start(context.Background(), func(ctx context.Context) {}) {
		t.Fatalf("expected a second Start while running to fail")
	}
	c.RequestStop()
}

func TestLoopControllerStopWithoutStartIsNoop(t *testing.T) {
	c := NewLoopController()
	c.Stop() // must not block or panic
	c.Join()
}

func TestLoopControllerJoinWaitsForNaturalExit(t *testing.T) {
	c := NewLoopController()
	c.Start(context.Background(), func(ctx context.Context) {
		time.Sleep(10 * time.Millisecond)
	})
	c.Join()
	if c.IsRunning() {
		t.Fatalf("expected the loop to have exited on its own by the time Join returns")
	}
}
