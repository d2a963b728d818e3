package ratelimit

import (
	"context"
)

// Do runs op once the limiter admits it. The slot is released when op returns,
// whether it succeeded or not.
func Do[T any](ctx context.Context, l *Limiter, op func(context.Context) (T, error)) (T, error) {
	release, err := l.Acquire(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	defer release()

	return op(ctx)
}

// Execute is Do for operations without a result
func (l *Limiter) Execute(ctx context.Context, op func(context.Context) error) error {
	_, err := Do(ctx, l, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}
