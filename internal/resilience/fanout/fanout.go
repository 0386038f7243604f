// Package fanout runs independent tasks concurrently and waits for all of them
// to settle. A failing or panicking task never cancels or affects its siblings.
package fanout

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"golang.org/x/sync/errgroup"
)

// Task is one unit of work launched by Settle.
type Task[T any] func(ctx context.Context) (T, error)

// Outcome is the settled result of one task. Exactly one of Value or Err is meaningful.
type Outcome[T any] struct {
	Value   T
	Err     error
	Elapsed time.Duration
}

// PanicError wraps a value recovered from a panicking task.
type PanicError struct {
	Value any
	Stack []byte
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Settle runs every task and returns their outcomes in task order.
//
// limit bounds how many tasks run at once; zero or negative means unbounded.
// Tasks share ctx but are not cancelled when a sibling fails.
func Settle[T any](ctx context.Context, limit int, tasks []Task[T]) []Outcome[T] {
	outcomes := make([]Outcome[T], len(tasks))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, task := range tasks {
		g.Go(func() error {
			outcomes[i] = run(ctx, task)
			return nil
		})
	}
	_ = g.Wait() // tasks never return errors to the group

	return outcomes
}

func run[T any](ctx context.Context, task Task[T]) (out Outcome[T]) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			out = Outcome[T]{Err: &PanicError{Value: r, Stack: debug.Stack()}}
		}
		out.Elapsed = time.Since(start)
	}()

	value, err := task(ctx)
	return Outcome[T]{Value: value, Err: err}
}
