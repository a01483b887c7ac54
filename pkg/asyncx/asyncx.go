package asyncx

import (
	"context"
	"fmt"
	"sync"
)

// Result holds the outcome of a single settled async operation.
type Result[T any] struct {
	Value T
	Err   error
}

// OK reports whether the result carries no error.
func (r Result[T]) OK() bool { return r.Err == nil }

// PanicError is returned in a Result when fn panicked.
type PanicError struct {
	Value interface{}
}

func (p *PanicError) Error() string {
	return fmt.Sprintf("asyncx: recovered panic: %v", p.Value)
}

// AllSettled runs all fns concurrently and waits for every one to finish.
// It never short-circuits: it always returns one Result per fn, in input
// order. A panicking fn settles with a *PanicError instead of crashing
// the process.
func AllSettled[T any](ctx context.Context, fns ...func(context.Context) (T, error)) []Result[T] {
	results := make([]Result[T], len(fns))
	var wg sync.WaitGroup
	wg.Add(len(fns))

	for i, fn := range fns {
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					results[i] = Result[T]{Err: &PanicError{Value: r}}
				}
			}()
			v, err := fn(ctx)
			results[i] = Result[T]{Value: v, Err: err}
		}()
	}
	wg.Wait()
	return results
}

// MapSettled applies fn to every item concurrently, returning one Result per
// item in the original order.
func MapSettled[T any, R any](ctx context.Context, items []T, fn func(context.Context, T) (R, error)) []Result[R] {
	fns := make([]func(context.Context) (R, error), len(items))
	for i, item := range items {
		fns[i] = func(ctx context.Context) (R, error) {
			return fn(ctx, item)
		}
	}
	return AllSettled(ctx, fns...)
}
