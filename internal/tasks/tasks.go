// Package tasks runs the agent's periodic background jobs.
//
// A Task is an interval plus a run function. Each loop runs its task
// immediately, then once per interval, and exits cleanly when the context is
// cancelled at the sleep boundary. Cycle failures are logged and never stop
// the loop; a missed cycle just means the next one runs on schedule.
package tasks

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/xtxerr/gridwatch/internal/logging"
)

// Task is a periodic background job.
type Task struct {
	// Name identifies the task in logs.
	Name string

	// Interval is the pause between the end of one cycle and the start of
	// the next.
	Interval time.Duration

	// Run executes one cycle.
	Run func(ctx context.Context) error
}

// Loop runs the task until ctx is cancelled. Always returns nil; shutdown is
// not an error.
func (t Task) Loop(ctx context.Context) error {
	log := logging.Component(t.Name)

	timer := time.NewTimer(0) // first cycle runs immediately
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug("task stopped")
			return nil
		case <-timer.C:
		}

		log.Debug("running task")
		if err := t.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("task cycle failed", "error", err)
		}

		timer.Reset(t.Interval)
	}
}

// Group supervises a set of run functions sharing one cancellation signal.
// The first non-nil error cancels the rest.
type Group struct {
	eg  *errgroup.Group
	ctx context.Context
}

// NewGroup creates a Group derived from ctx.
func NewGroup(ctx context.Context) *Group {
	eg, ctx := errgroup.WithContext(ctx)
	return &Group{eg: eg, ctx: ctx}
}

// Start launches a task loop in the group.
func (g *Group) Start(t Task) {
	g.eg.Go(func() error {
		return t.Loop(g.ctx)
	})
}

// Go launches an arbitrary run function in the group.
func (g *Group) Go(fn func(ctx context.Context) error) {
	g.eg.Go(func() error {
		return fn(g.ctx)
	})
}

// Wait blocks until every member has returned and reports the first error.
func (g *Group) Wait() error {
	return g.eg.Wait()
}
