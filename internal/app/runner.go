package app

import (
	"context"

	"golang.org/x/sync/semaphore"
)

type Generator interface {
	GenerateOffers(ctx context.Context, email string) Result
}

// Runner dispatches whole pipeline runs to a bounded pool so request handlers never run
// the pipeline on their own goroutine.
type Runner struct {
	gen Generator
	sem *semaphore.Weighted
}

func NewRunner(g Generator, workers int) *Runner {
	if workers <= 0 {
		workers = 1
	}
	return &Runner{gen: g, sem: semaphore.NewWeighted(int64(workers))}
}

// Run waits for a free worker, then for the result. If ctx ends first the caller gets
// ctx.Err() and the run, once started, completes on its own.
func (r *Runner) Run(ctx context.Context, email string) (Result, error) {
	if err := r.sem.Acquire(ctx, 1); err != nil {
		return Result{}, err
	}
	done := make(chan Result, 1)
	go func() {
		defer r.sem.Release(1)
		done <- r.gen.GenerateOffers(context.WithoutCancel(ctx), email)
	}()
	select {
	case res := <-done:
		return res, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}
