package worker

import (
	"context"
	"sync"
)

// Task is one unit of pipeline work, executed on a worker goroutine.
type Task func(ctx context.Context)

// Pool is a fixed-size worker pool with a 1-slot input queue (strict
// back-pressure). The batch runner feeds it one image at a time; with a
// single worker this preserves the sequential behavior of the tool's
// default mode, with more workers images are processed in parallel.
type Pool struct {
	jobs chan job
	wg   sync.WaitGroup
}

type job struct {
	ctx  context.Context
	task Task
}

// New creates a worker pool. Size defaults to 1 when size<=0. Queue is 1 slot.
func New(size int) *Pool {
	if size <= 0 {
		size = 1
	}
	p := &Pool{jobs: make(chan job, 1)}
	p.start(size)
	return p
}

func (p *Pool) start(n int) {
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for j := range p.jobs {
				if j.ctx.Err() != nil {
					continue
				}
				j.task(j.ctx)
			}
		}()
	}
}

// Submit enqueues a task if the single-slot queue is free. Returns false if dropped.
func (p *Pool) Submit(ctx context.Context, task Task) bool {
	select {
	case p.jobs <- job{ctx: ctx, task: task}:
		return true
	default:
		return false
	}
}

// SubmitWait blocks until the task is enqueued or the context is done.
// Returns false when the context expired before the task was accepted.
func (p *Pool) SubmitWait(ctx context.Context, task Task) bool {
	select {
	case p.jobs <- job{ctx: ctx, task: task}:
		return true
	case <-ctx.Done():
		return false
	}
}

// Close stops the pool after draining current work.
func (p *Pool) Close() {
	close(p.jobs)
	p.wg.Wait()
}
