package app

import (
	"context"
	"fmt"
	"sync"

	cryptoDomain "github.com/MGTheTrain/crypto-dispatch/internal/domain/crypto"
	"github.com/MGTheTrain/crypto-dispatch/internal/domain/journal"
	"github.com/MGTheTrain/crypto-dispatch/internal/pkg/logger"
)

// dispatcher implements the cryptoDomain.Dispatcher interface on top of a Backend
type dispatcher struct {
	backend  cryptoDomain.Backend
	executor Executor
	journal  journal.Repository
	logger   logger.Logger
}

// Option configures a dispatcher
type Option func(*dispatcher)

// WithExecutor runs backend calls on e instead of the calling goroutine.
func WithExecutor(e Executor) Option {
	return func(d *dispatcher) {
		d.executor = e
	}
}

// WithJournal records every completed request in repo.
func WithJournal(repo journal.Repository) Option {
	return func(d *dispatcher) {
		d.journal = repo
	}
}

// NewDispatcher creates a new dispatcher instance
func NewDispatcher(backend cryptoDomain.Backend, logger logger.Logger, opts ...Option) (cryptoDomain.Dispatcher, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}

	d := &dispatcher{
		backend:  backend,
		executor: InlineExecutor{},
		logger:   logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.executor == nil {
		d.executor = InlineExecutor{}
	}
	return d, nil
}

func (d *dispatcher) Encrypt(ctx context.Context, alg *cryptoDomain.Algorithm, key *cryptoDomain.Key, data []byte, sink cryptoDomain.ResultSink) {
	op := cryptoDomain.OpEncrypt
	sink = d.begin(ctx, op, alg, sink)
	d.run(ctx, func(ctx context.Context) {
		out, err := d.backend.Encrypt(ctx, alg, key, data)
		d.completeBuffer(sink, op, alg, out, err)
	})
}

func (d *dispatcher) Decrypt(ctx context.Context, alg *cryptoDomain.Algorithm, key *cryptoDomain.Key, data []byte, sink cryptoDomain.ResultSink) {
	op := cryptoDomain.OpDecrypt
	sink = d.begin(ctx, op, alg, sink)
	d.run(ctx, func(ctx context.Context) {
		out, err := d.backend.Decrypt(ctx, alg, key, data)
		d.completeBuffer(sink, op, alg, out, err)
	})
}

func (d *dispatcher) Digest(ctx context.Context, alg *cryptoDomain.Algorithm, data []byte, sink cryptoDomain.ResultSink) {
	op := cryptoDomain.OpDigest
	sink = d.begin(ctx, op, alg, sink)
	d.run(ctx, func(ctx context.Context) {
		out, err := d.backend.Digest(ctx, alg, data)
		d.completeBuffer(sink, op, alg, out, err)
	})
}

func (d *dispatcher) GenerateKey(ctx context.Context, alg *cryptoDomain.Algorithm, extractable bool, usages cryptoDomain.UsageMask, sink cryptoDomain.ResultSink) {
	op := cryptoDomain.OpGenerateKey
	sink = d.begin(ctx, op, alg, sink)
	d.run(ctx, func(ctx context.Context) {
		key, err := d.backend.GenerateKey(ctx, alg, extractable, usages)
		if err != nil {
			d.fail(sink, op, alg, err)
			return
		}

		if key == nil || key.Algorithm() == nil {
			d.violated("%s with %s returned no key", op, alg)
		}
		if key.Algorithm().ID() != alg.ID() {
			d.violated("%s with %s returned a %s key", op, alg, key.Algorithm().ID())
		}
		if key.Extractable() != extractable {
			d.violated("%s with %s returned extractable=%t, requested %t", op, alg, key.Extractable(), extractable)
		}
		if key.Usages() != usages {
			d.violated("%s with %s returned usages %s, requested %s", op, alg, key.Usages(), usages)
		}

		d.logger.Debug(fmt.Sprintf("%s with %s completed", op, alg))
		sink.CompleteWithKey(key)
	})
}

func (d *dispatcher) ImportKey(ctx context.Context, format cryptoDomain.KeyFormat, keyData []byte, alg *cryptoDomain.Algorithm, extractable bool, usages cryptoDomain.UsageMask, sink cryptoDomain.ResultSink) {
	op := cryptoDomain.OpImportKey
	sink = d.guard(ctx, op, alg, sink)
	d.run(ctx, func(ctx context.Context) {
		key, err := d.backend.ImportKey(ctx, format, keyData, alg, extractable, usages)
		if err != nil {
			d.fail(sink, op, alg, err)
			return
		}

		if key == nil || key.Algorithm() == nil {
			d.violated("%s from %s returned a key without algorithm", op, format)
		}
		if key.Extractable() != extractable {
			d.violated("%s from %s returned extractable=%t, requested %t", op, format, key.Extractable(), extractable)
		}

		d.logger.Debug(fmt.Sprintf("%s from %s as %s completed", op, format, key.Algorithm()))
		sink.CompleteWithKey(key)
	})
}

func (d *dispatcher) Sign(ctx context.Context, alg *cryptoDomain.Algorithm, key *cryptoDomain.Key, data []byte, sink cryptoDomain.ResultSink) {
	op := cryptoDomain.OpSign
	sink = d.begin(ctx, op, alg, sink)
	d.run(ctx, func(ctx context.Context) {
		out, err := d.backend.Sign(ctx, alg, key, data)
		d.completeBuffer(sink, op, alg, out, err)
	})
}

func (d *dispatcher) VerifySignature(ctx context.Context, alg *cryptoDomain.Algorithm, key *cryptoDomain.Key, signature, data []byte, sink cryptoDomain.ResultSink) {
	op := cryptoDomain.OpVerify
	sink = d.begin(ctx, op, alg, sink)
	d.run(ctx, func(ctx context.Context) {
		match, err := d.backend.VerifySignature(ctx, alg, key, signature, data)
		if err != nil {
			d.fail(sink, op, alg, err)
			return
		}

		d.logger.Debug(fmt.Sprintf("%s with %s completed: match=%t", op, alg, match))
		sink.CompleteWithBoolean(match)
	})
}

func (d *dispatcher) Dispatch(ctx context.Context, req *cryptoDomain.Request, sink cryptoDomain.ResultSink) {
	if req == nil {
		d.violated("dispatch of a nil request")
	}

	switch req.Operation {
	case cryptoDomain.OpEncrypt:
		d.Encrypt(ctx, req.Algorithm, req.Key, req.Data, sink)
	case cryptoDomain.OpDecrypt:
		d.Decrypt(ctx, req.Algorithm, req.Key, req.Data, sink)
	case cryptoDomain.OpDigest:
		d.Digest(ctx, req.Algorithm, req.Data, sink)
	case cryptoDomain.OpGenerateKey:
		d.GenerateKey(ctx, req.Algorithm, req.Extractable, req.Usages, sink)
	case cryptoDomain.OpImportKey:
		d.ImportKey(ctx, req.Format, req.KeyData, req.Algorithm, req.Extractable, req.Usages, sink)
	case cryptoDomain.OpSign:
		d.Sign(ctx, req.Algorithm, req.Key, req.Data, sink)
	case cryptoDomain.OpVerify:
		d.VerifySignature(ctx, req.Algorithm, req.Key, req.Signature, req.Data, sink)
	default:
		sink = d.guard(ctx, req.Operation, req.Algorithm, sink)
		d.fail(sink, req.Operation, req.Algorithm, fmt.Errorf("%w: unknown operation %q", cryptoDomain.ErrInvalidParameters, req.Operation))
	}
}

func (d *dispatcher) Submit(ctx context.Context, req *cryptoDomain.Request) *cryptoDomain.Future {
	future := cryptoDomain.NewFuture()
	d.Dispatch(ctx, req, future)
	return future
}

// begin checks the preconditions shared by every verb that needs an algorithm.
func (d *dispatcher) begin(ctx context.Context, op cryptoDomain.Operation, alg *cryptoDomain.Algorithm, sink cryptoDomain.ResultSink) cryptoDomain.ResultSink {
	if alg == nil {
		d.violated("%s requires an algorithm", op)
	}
	return d.guard(ctx, op, alg, sink)
}

func (d *dispatcher) guard(ctx context.Context, op cryptoDomain.Operation, alg *cryptoDomain.Algorithm, sink cryptoDomain.ResultSink) cryptoDomain.ResultSink {
	if sink == nil {
		d.violated("%s requires a result sink", op)
	}
	if d.journal != nil {
		sink = newJournalSink(ctx, sink, d.journal, op, alg, d.logger)
	}
	return &onceSink{sink: sink}
}

// run hands the backend call to the executor. Requests are never cancelled,
// so the backend sees the caller's values without its deadline.
func (d *dispatcher) run(ctx context.Context, call func(ctx context.Context)) {
	detached := context.WithoutCancel(ctx)
	d.executor.Execute(func() {
		call(detached)
	})
}

func (d *dispatcher) completeBuffer(sink cryptoDomain.ResultSink, op cryptoDomain.Operation, alg *cryptoDomain.Algorithm, out []byte, err error) {
	if err != nil {
		d.fail(sink, op, alg, err)
		return
	}
	if out == nil {
		out = []byte{}
	}

	// The sink gets a buffer of exactly the output length, never the backend's spare capacity.
	if cap(out) > len(out) {
		out = cryptoDomain.ShrinkBuffer(out[:cap(out)], len(out))
	}

	d.logger.Debug(fmt.Sprintf("%s with %s completed: %d bytes", op, alg, len(out)))
	sink.CompleteWithBuffer(out)
}

func (d *dispatcher) fail(sink cryptoDomain.ResultSink, op cryptoDomain.Operation, alg *cryptoDomain.Algorithm, err error) {
	opErr := cryptoDomain.NewOperationError(op, alg, err)
	d.logger.Debug(opErr.Error())
	sink.CompleteWithError(opErr)
}

func (d *dispatcher) violated(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	d.logger.Panic(msg)
	panic(msg)
}

// onceSink forwards the first completion and panics on any further one.
type onceSink struct {
	mu   sync.Mutex
	done bool
	sink cryptoDomain.ResultSink
}

func (s *onceSink) claim() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done {
		panic("app: result sink completed more than once")
	}
	s.done = true
}

func (s *onceSink) CompleteWithError(err error) {
	s.claim()
	s.sink.CompleteWithError(err)
}

func (s *onceSink) CompleteWithBuffer(buf []byte) {
	s.claim()
	s.sink.CompleteWithBuffer(buf)
}

func (s *onceSink) CompleteWithKey(key *cryptoDomain.Key) {
	s.claim()
	s.sink.CompleteWithKey(key)
}

func (s *onceSink) CompleteWithBoolean(match bool) {
	s.claim()
	s.sink.CompleteWithBoolean(match)
}

// Run dispatches req and waits for its outcome. An error outcome is returned as the error.
func Run(ctx context.Context, d cryptoDomain.Dispatcher, req *cryptoDomain.Request) (cryptoDomain.Result, error) {
	result, err := d.Submit(ctx, req).Await(ctx)
	if err != nil {
		return cryptoDomain.Result{}, err
	}
	if result.Kind() == cryptoDomain.ResultError {
		return result, result.Err()
	}
	return result, nil
}
