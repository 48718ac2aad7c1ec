package context

import (
	"context"
	"testing"
	"time"
)

// WithTest derives a context whose deadline falls 1 second before the
// test's own, leaving room to clean up before the test binary is killed.
//
// When the test has no deadline, ctx is returned as is.
func WithTest(ctx context.Context, t *testing.T) (context.Context, func()) {
	deadline, ok := t.Deadline()
	if !ok {
		return ctx, func() {}
	}
	return context.WithDeadline(ctx, deadline.Add(-time.Second))
}
