package crypto

import (
	"context"
	"errors"
	"sync"
)

// ErrResultConsumed is returned by Await once the result was handed out.
var ErrResultConsumed = errors.New("result already consumed")

// Future is a ResultSink that holds the outcome until it is awaited.
// It accepts one completion and yields its result once.
type Future struct {
	done      chan struct{}
	mu        sync.Mutex
	completed bool
	consumed  bool
	result    Result
}

// NewFuture returns a pending future.
func NewFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func (f *Future) complete(r Result) {
	f.mu.Lock()
	if f.completed {
		f.mu.Unlock()
		panic("crypto: result completed more than once")
	}
	f.completed = true
	f.result = r
	f.mu.Unlock()

	close(f.done)
}

// CompleteWithError implements ResultSink.
func (f *Future) CompleteWithError(err error) { f.complete(ErrorResult(err)) }

// CompleteWithBuffer implements ResultSink.
func (f *Future) CompleteWithBuffer(buf []byte) { f.complete(BufferResult(buf)) }

// CompleteWithKey implements ResultSink.
func (f *Future) CompleteWithKey(key *Key) { f.complete(KeyResult(key)) }

// CompleteWithBoolean implements ResultSink.
func (f *Future) CompleteWithBoolean(match bool) { f.complete(BooleanResult(match)) }

// Done is closed once the future is completed.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the result is available or ctx ends. Abandoning the
// wait does not cancel the request.
func (f *Future) Await(ctx context.Context) (Result, error) {
	select {
	case <-f.done:
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.consumed {
		return Result{}, ErrResultConsumed
	}
	f.consumed = true
	r := f.result
	f.result = Result{}
	return r, nil
}
