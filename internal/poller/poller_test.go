package poller

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestService_TickRecoversPanic(t *testing.T) {
	s := New("test", time.Second, UpdaterFunc(func(context.Context) error {
		panic("boom")
	}))
	if err := s.Tick(context.Background()); err == nil {
		t.Error("Tick() should turn a panic into an error")
	}
}

func TestService_TickReturnsError(t *testing.T) {
	want := errors.New("node down")
	s := New("test", time.Second, UpdaterFunc(func(context.Context) error { return want }))
	if err := s.Tick(context.Background()); !errors.Is(err, want) {
		t.Errorf("Tick() = %v, want %v", err, want)
	}
}

// runInBackground runs s until the returned stop func is called. stop waits
// for Run to return.
func runInBackground(t *testing.T, s *Service) (stop func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, 0) }()

	var stopped bool
	return func() {
		if stopped {
			return
		}
		stopped = true
		cancel()
		select {
		case err := <-done:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("Run() = %v, want context.Canceled", err)
			}
		case <-time.After(5 * time.Second):
			t.Error("Run() did not return after cancel")
		}
	}
}

func TestService_KeepsTickingAfterFailures(t *testing.T) {
	var n atomic.Int32
	done := make(chan struct{})
	s := New("test", time.Millisecond, UpdaterFunc(func(context.Context) error {
		if n.Add(1) == 3 {
			close(done)
		}
		if n.Load()%2 == 1 {
			panic("odd tick")
		}
		return errors.New("even tick")
	}))

	stop := runInBackground(t, s)
	defer stop()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("only %d ticks ran", n.Load())
	}
}

func TestService_NoOverlap(t *testing.T) {
	var running, overlaps, ticks atomic.Int32
	s := New("test", time.Millisecond, UpdaterFunc(func(context.Context) error {
		if running.Add(1) > 1 {
			overlaps.Add(1)
		}
		time.Sleep(5 * time.Millisecond)
		running.Add(-1)
		ticks.Add(1)
		return nil
	}))

	stop := runInBackground(t, s)
	deadline := time.Now().Add(5 * time.Second)
	for ticks.Load() < 5 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	stop()

	if overlaps.Load() != 0 {
		t.Errorf("%d overlapping ticks", overlaps.Load())
	}
}

func TestService_CancelHaltsTicks(t *testing.T) {
	var n atomic.Int32
	s := New("test", time.Millisecond, UpdaterFunc(func(context.Context) error {
		n.Add(1)
		return nil
	}))

	stop := runInBackground(t, s)
	time.Sleep(10 * time.Millisecond)
	stop()

	after := n.Load()
	time.Sleep(10 * time.Millisecond)
	if n.Load() != after {
		t.Errorf("ticks continued after cancel: %d -> %d", after, n.Load())
	}
}

func TestService_Interval(t *testing.T) {
	s := New("test", 3*time.Second, UpdaterFunc(func(context.Context) error { return nil }))
	if s.Interval() != 3*time.Second {
		t.Errorf("Interval() = %v, want 3s", s.Interval())
	}
}

func TestService_RunReturnsOnCancel(t *testing.T) {
	s := New("test", time.Hour, UpdaterFunc(func(context.Context) error { return nil }))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Run(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() = %v, want context.Canceled", err)
	}
}
