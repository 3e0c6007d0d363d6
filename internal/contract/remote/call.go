// Package remote bounds blocking remote calls with a time budget.
package remote

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// TimeoutError reports a remote call that did not finish within its budget.
type TimeoutError struct {
	Op     string
	Budget time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %dms", e.Op, e.Budget.Milliseconds())
}

// IsTimeout reports whether err is, or wraps, a *TimeoutError.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

type result[T any] struct {
	val T
	err error
}

// Call runs fn with a context bounded by budget and returns as soon as either
// fn completes or the budget is exhausted. fn keeps running in the background
// after a timeout but its context is cancelled, and its result is dropped.
// Cancellation of the parent context is returned as the parent's error.
func Call[T any](ctx context.Context, op string, budget time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	if budget <= 0 {
		return zero, &TimeoutError{Op: op, Budget: budget}
	}

	callCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	done := make(chan result[T], 1)
	go func() {
		v, err := fn(callCtx)
		done <- result[T]{val: v, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return zero, &TimeoutError{Op: op, Budget: budget}
		}
		return r.val, r.err
	case <-callCtx.Done():
		if err := ctx.Err(); err != nil {
			return zero, errors.Wrap(err, op)
		}
		return zero, &TimeoutError{Op: op, Budget: budget}
	}
}
