package tasks

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestTask_RunsImmediatelyAndRepeats(t *testing.T) {
	var runs atomic.Int64
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	task := Task{
		Name:     "test",
		Interval: 5 * time.Millisecond,
		Run: func(ctx context.Context) error {
			if runs.Add(1) == 3 {
				cancel()
			}
			return nil
		},
	}

	go func() {
		defer close(done)
		if err := task.Loop(ctx); err != nil {
			t.Errorf("Loop returned %v, want nil", err)
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task loop did not stop")
	}
	if runs.Load() < 3 {
		t.Errorf("expected at least 3 runs, got %d", runs.Load())
	}
}

func TestTask_CycleFailureDoesNotStopLoop(t *testing.T) {
	var runs atomic.Int64
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	task := Task{
		Name:     "flaky",
		Interval: time.Millisecond,
		Run: func(ctx context.Context) error {
			if runs.Add(1) >= 2 {
				cancel()
				return nil
			}
			return errors.New("transient")
		},
	}

	go func() {
		task.Loop(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop stopped on cycle failure or never stopped")
	}
	if runs.Load() < 2 {
		t.Errorf("expected loop to continue after failure, got %d runs", runs.Load())
	}
}

func TestTask_StopsBeforeFirstRunWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var runs atomic.Int64
	task := Task{
		Name:     "cancelled",
		Interval: time.Hour,
		Run: func(ctx context.Context) error {
			runs.Add(1)
			return nil
		},
	}

	if err := task.Loop(ctx); err != nil {
		t.Errorf("Loop returned %v, want nil", err)
	}
	// The zero-delay first fire races the cancelled context; either zero or
	// one run is acceptable, never more.
	if runs.Load() > 1 {
		t.Errorf("expected at most one run, got %d", runs.Load())
	}
}

func TestGroup_PropagatesFirstError(t *testing.T) {
	g := NewGroup(context.Background())

	boom := errors.New("boom")
	g.Go(func(ctx context.Context) error {
		return boom
	})
	g.Go(func(ctx context.Context) error {
		<-ctx.Done() // cancelled by the failing member
		return nil
	})

	if err := g.Wait(); !errors.Is(err, boom) {
		t.Errorf("Wait = %v, want %v", err, boom)
	}
}

func TestGroup_TaskLoopsExitOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	g := NewGroup(ctx)

	g.Start(Task{
		Name:     "noop",
		Interval: time.Millisecond,
		Run:      func(ctx context.Context) error { return nil },
	})

	time.AfterFunc(20*time.Millisecond, cancel)

	if err := g.Wait(); err != nil {
		t.Errorf("Wait = %v, want nil", err)
	}
}
