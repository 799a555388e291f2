package app

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Executor runs dispatched backend calls.
type Executor interface {
	Execute(task func())
}

// InlineExecutor runs each task on the calling goroutine.
type InlineExecutor struct{}

// Execute runs task before returning.
func (InlineExecutor) Execute(task func()) {
	task()
}

// PoolExecutor runs tasks on at most a fixed number of goroutines at once.
// Execute blocks while every slot is busy.
type PoolExecutor struct {
	sem    *semaphore.Weighted
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

// NewPoolExecutor creates a pool with the given number of workers
func NewPoolExecutor(workers int) (*PoolExecutor, error) {
	if workers < 1 {
		return nil, fmt.Errorf("pool executor needs at least one worker, got %d", workers)
	}
	return &PoolExecutor{sem: semaphore.NewWeighted(int64(workers))}, nil
}

// Execute schedules task on a worker goroutine. It panics once the pool is closed.
func (p *PoolExecutor) Execute(task func()) {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		panic("app: execute on closed pool executor")
	}
	p.wg.Add(1)
	p.mu.RUnlock()

	// Acquire with a background context never fails.
	_ = p.sem.Acquire(context.Background(), 1)
	go func() {
		defer p.wg.Done()
		defer p.sem.Release(1)
		task()
	}()
}

// Close stops accepting tasks and waits for in-flight ones.
func (p *PoolExecutor) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	p.wg.Wait()
}
