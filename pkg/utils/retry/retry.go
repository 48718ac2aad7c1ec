package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrRetry signals that the attempted operation should be tried again.
var ErrRetry = errors.New("retry")

// Backoff blocks until the next attempt may start.
//
// When the context is canceled it returns ctx.Err(), and no further
// attempt should be made.
type Backoff func(context.Context) error

// StaticBackoff waits a fixed interval between attempts.
func StaticBackoff(interval time.Duration) Backoff {
	return func(ctx context.Context) error {
		timer := time.NewTimer(interval)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		}
	}
}

// Blocking calls f, backing off and retrying while f returns ErrRetry.
//
// It returns f's last value and error. Errors not wrapping ErrRetry
// stop the loop, as does cancellation of ctx (returning ctx.Err()).
func Blocking[T any](ctx context.Context, b Backoff, f func() (T, error)) (T, error) {
	var last T
	for {
		if err := b(ctx); err != nil {
			return last, err
		}

		value, err := f()
		last = value
		switch {
		case err == nil:
			return last, nil
		case errors.Is(err, ErrRetry):
			// next round
		default:
			return last, err
		}
	}
}

type Result[T any] struct {
	Value T
	Err   error
}

// Promise receives the single Result of a background retry loop.
type Promise[T any] <-chan Result[T]

// Failed is a resolved Promise carrying only err.
func Failed[T any](err error) Promise[T] {
	ch := make(chan Result[T], 1)
	ch <- Result[T]{Err: err}
	close(ch)
	return ch
}

// Ok is a resolved Promise carrying value.
func Ok[T any](value T) Promise[T] {
	ch := make(chan Result[T], 1)
	ch <- Result[T]{Value: value}
	close(ch)
	return ch
}

// Go runs Blocking(ctx, b, f) in a goroutine and resolves the returned
// Promise with its outcome. A panic in f resolves the Promise with the
// panic value as an error.
func Go[T any](ctx context.Context, b Backoff, f func() (T, error)) Promise[T] {
	ch := make(chan Result[T], 1)

	go func() {
		defer close(ch)
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			select {
			case ch <- Result[T]{Err: asError(r)}:
			default:
				// the Result slot is taken. do not swallow the panic.
				panic(r)
			}
		}()

		value, err := Blocking(ctx, b, f)
		ch <- Result[T]{Value: value, Err: err}
	}()

	return ch
}

func asError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("%+v", r)
}
