// Package loop runs a task repeatedly until it asks to stop.
//
// The hub monitor is built on it: each cycle inspects deployments and
// schedules the next inspection with Continue, or gives up with Break.
package loop

import (
	"context"
	"time"
)

// Next tells Start what to do after a cycle.
type Next struct {
	// break the loop with this error when not nil
	err error

	// break the loop without error when true
	quit bool

	// wait this long before the next cycle, otherwise
	interval time.Duration
}

// Continue schedules the next cycle after interval.
// The zero Next equals Continue(0).
func Continue(interval time.Duration) Next {
	return Next{interval: interval}
}

// Break stops the loop. Start hands err back as is, nil included.
func Break(err error) Next {
	return Next{quit: true, err: err}
}

// Task is a single cycle of a loop.
//
// It receives the context and the value from the previous cycle, and
// returns the value for the next cycle with Next (Continue or Break).
type Task[T any] func(context.Context, T) (T, Next)

// Start runs task in a loop.
//
// The task is called with the last returned T (init at the first time).
// Returning Continue(interval) schedules the next cycle after interval;
// Break(err) stops the loop. Zero value Next{} equals Continue(0).
//
// # Args
//
// - ctx: when it is done, the loop breaks with ctx.Err().
//
// - init: value passed to the first task call.
//
// - task: loop body.
//
// - options: per-loop options, like WithTimeout.
//
// # Returns
//
// - T: the value the task returned last. Always returned,
// whether or not error is nil.
//
// - error: error from Break(error), or ctx.Err() on cancellation.
func Start[T any](ctx context.Context, init T, task Task[T], options ...LoopOption) (T, error) {
	select {
	case <-ctx.Done():
		return init, ctx.Err()
	default:
	}

	value := init
	for {
		v, n := cycle(ctx, value, task, options)
		if n.err != nil {
			return v, n.err
		}
		if n.quit {
			return v, nil
		}
		value = v

		timer := time.NewTimer(n.interval)
		select {
		case <-ctx.Done():
			// shutdown wins over the tick. check the timer later.
			if !timer.Stop() {
				<-timer.C // Stop's contract: drain when it reports too late
			}
			return value, ctx.Err()

		case <-timer.C:
		}
	}
}

// cycle runs task once, with per-cycle options applied and released.
func cycle[T any](ctx context.Context, value T, task Task[T], options []LoopOption) (T, Next) {
	lc := &loopConfig{ctx: ctx}
	for _, opt := range options {
		opt(lc)
	}
	defer func() {
		for _, release := range lc.releases {
			release()
		}
	}()
	return task(lc.ctx, value)
}

type loopConfig struct {
	ctx      context.Context
	releases []func()
}

type LoopOption func(*loopConfig)

// WithTimeout puts a fresh deadline on the context each cycle sees.
func WithTimeout(d time.Duration) LoopOption {
	return func(lc *loopConfig) {
		ctx, cancel := context.WithTimeout(lc.ctx, d)
		lc.ctx = ctx
		lc.releases = append(lc.releases, cancel)
	}
}
