package taskrunner

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Pool runs background tasks with bounded concurrency.
type Pool struct {
	sem *semaphore.Weighted
	wg  sync.WaitGroup
}

// NewPool creates a pool running at most workers tasks at once.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{sem: semaphore.NewWeighted(int64(workers))}
}

// Go schedules fn without blocking the caller. fn is skipped when ctx is cancelled
// before a worker frees up.
func (p *Pool) Go(ctx context.Context, fn func(ctx context.Context)) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if err := p.sem.Acquire(ctx, 1); err != nil {
			return
		}
		defer p.sem.Release(1)
		if ctx.Err() != nil {
			return
		}
		fn(ctx)
	}()
}

// Wait blocks until every scheduled task has finished or been skipped.
func (p *Pool) Wait() {
	p.wg.Wait()
}
