package app

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	cryptoDomain "github.com/MGTheTrain/crypto-dispatch/internal/domain/crypto"
	"github.com/MGTheTrain/crypto-dispatch/internal/domain/journal"
	"github.com/MGTheTrain/crypto-dispatch/internal/pkg/logger"

	"github.com/google/uuid"
)

const maxRecordedError = 1024

// journalSink records the outcome of a request before forwarding it.
// A failing repository is logged and never changes the outcome.
type journalSink struct {
	ctx     context.Context
	sink    cryptoDomain.ResultSink
	repo    journal.Repository
	op      cryptoDomain.Operation
	alg     *cryptoDomain.Algorithm
	started time.Time
	logger  logger.Logger
}

func newJournalSink(ctx context.Context, sink cryptoDomain.ResultSink, repo journal.Repository, op cryptoDomain.Operation, alg *cryptoDomain.Algorithm, logger logger.Logger) *journalSink {
	return &journalSink{
		ctx:     context.WithoutCancel(ctx),
		sink:    sink,
		repo:    repo,
		op:      op,
		alg:     alg,
		started: time.Now(),
		logger:  logger,
	}
}

func (s *journalSink) CompleteWithError(err error) {
	s.record(journal.OutcomeError, s.alg, err)
	s.sink.CompleteWithError(err)
}

func (s *journalSink) CompleteWithBuffer(buf []byte) {
	s.record(journal.OutcomeBuffer, s.alg, nil)
	s.sink.CompleteWithBuffer(buf)
}

func (s *journalSink) CompleteWithKey(key *cryptoDomain.Key) {
	alg := s.alg
	if alg == nil && key != nil {
		alg = key.Algorithm()
	}
	s.record(journal.OutcomeKey, alg, nil)
	s.sink.CompleteWithKey(key)
}

func (s *journalSink) CompleteWithBoolean(match bool) {
	s.record(journal.OutcomeBoolean, s.alg, nil)
	s.sink.CompleteWithBoolean(match)
}

func (s *journalSink) record(outcome string, alg *cryptoDomain.Algorithm, cause error) {
	now := time.Now()
	operation := string(s.op)
	if !s.op.Known() {
		operation = journal.OperationUnknown
	}
	record := &journal.OperationRecord{
		ID:              uuid.NewString(),
		Operation:       operation,
		Outcome:         outcome,
		Duration:        now.Sub(s.started),
		DateTimeCreated: now,
	}
	if alg != nil {
		record.Algorithm = alg.ID().String()
	}
	if cause != nil {
		msg := cause.Error()
		if len(msg) > maxRecordedError {
			cut := maxRecordedError
			for cut > 0 && !utf8.RuneStart(msg[cut]) {
				cut--
			}
			msg = msg[:cut]
		}
		record.Error = msg
	}

	if err := s.repo.Create(s.ctx, record); err != nil {
		s.logger.Warn(fmt.Sprintf("failed to journal %s request: %v", s.op, err))
	}
}
