package channel_utils

import (
	"context"
	"fmt"

	"github.com/Shogun05/VoiceFrame/application/ports/outbound"
)

type result[T any] struct {
	value T
	err   error
}

// Await runs fn on the worker pool and waits for its result. The pool bounds how many
// tasks run at once; when it is full Submit blocks until a worker frees up. A panic in fn
// is returned as an error.
func Await[T any](ctx context.Context, workerPool outbound.TaskDispatcher, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	out := make(chan result[T], 1)

	err := workerPool.Submit(func() {
		defer func() {
			if r := recover(); r != nil {
				out <- result[T]{err: fmt.Errorf("task panicked: %v", r)}
			}
		}()
		if ctx.Err() != nil {
			out <- result[T]{err: ctx.Err()}
			return
		}
		v, err := fn(ctx)
		out <- result[T]{value: v, err: err}
	})
	if err != nil {
		return zero, err
	}

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case r := <-out:
		return r.value, r.err
	}
}

// AwaitErr is Await for tasks that only report an error.
func AwaitErr(ctx context.Context, workerPool outbound.TaskDispatcher, fn func(ctx context.Context) error) error {
	_, err := Await(ctx, workerPool, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}
