//go:build unit
// +build unit

package v1

import (
	"context"
	"time"

	cryptoDomain "github.com/MGTheTrain/crypto-dispatch/internal/domain/crypto"
	"github.com/MGTheTrain/crypto-dispatch/internal/domain/journal"

	"github.com/stretchr/testify/mock"
)

// MockDispatcher is a mock implementation of cryptoDomain.Dispatcher that
// completes every request with the result configured for Submit
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) complete(sink cryptoDomain.ResultSink, args mock.Arguments) {
	cryptoDomain.Deliver(sink, args.Get(0).(cryptoDomain.Result))
}

func (m *MockDispatcher) Encrypt(ctx context.Context, alg *cryptoDomain.Algorithm, key *cryptoDomain.Key, data []byte, sink cryptoDomain.ResultSink) {
	m.complete(sink, m.Called(ctx, alg, key, data))
}

func (m *MockDispatcher) Decrypt(ctx context.Context, alg *cryptoDomain.Algorithm, key *cryptoDomain.Key, data []byte, sink cryptoDomain.ResultSink) {
	m.complete(sink, m.Called(ctx, alg, key, data))
}

func (m *MockDispatcher) Digest(ctx context.Context, alg *cryptoDomain.Algorithm, data []byte, sink cryptoDomain.ResultSink) {
	m.complete(sink, m.Called(ctx, alg, data))
}

func (m *MockDispatcher) GenerateKey(ctx context.Context, alg *cryptoDomain.Algorithm, extractable bool, usages cryptoDomain.UsageMask, sink cryptoDomain.ResultSink) {
	m.complete(sink, m.Called(ctx, alg, extractable, usages))
}

func (m *MockDispatcher) ImportKey(ctx context.Context, format cryptoDomain.KeyFormat, keyData []byte, alg *cryptoDomain.Algorithm, extractable bool, usages cryptoDomain.UsageMask, sink cryptoDomain.ResultSink) {
	m.complete(sink, m.Called(ctx, format, keyData, alg, extractable, usages))
}

func (m *MockDispatcher) Sign(ctx context.Context, alg *cryptoDomain.Algorithm, key *cryptoDomain.Key, data []byte, sink cryptoDomain.ResultSink) {
	m.complete(sink, m.Called(ctx, alg, key, data))
}

func (m *MockDispatcher) VerifySignature(ctx context.Context, alg *cryptoDomain.Algorithm, key *cryptoDomain.Key, signature, data []byte, sink cryptoDomain.ResultSink) {
	m.complete(sink, m.Called(ctx, alg, key, signature, data))
}

func (m *MockDispatcher) Dispatch(ctx context.Context, req *cryptoDomain.Request, sink cryptoDomain.ResultSink) {
	m.complete(sink, m.Called(ctx, req))
}

func (m *MockDispatcher) Submit(ctx context.Context, req *cryptoDomain.Request) *cryptoDomain.Future {
	future := cryptoDomain.NewFuture()
	m.Dispatch(ctx, req, future)
	return future
}

// MockJournalRepository is a mock implementation of journal.Repository
type MockJournalRepository struct {
	mock.Mock
}

func (m *MockJournalRepository) Create(ctx context.Context, record *journal.OperationRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockJournalRepository) List(ctx context.Context, query *journal.OperationQuery) ([]*journal.OperationRecord, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*journal.OperationRecord), args.Error(1)
}

func (m *MockJournalRepository) GetByID(ctx context.Context, recordID string) (*journal.OperationRecord, error) {
	args := m.Called(ctx, recordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*journal.OperationRecord), args.Error(1)
}

func (m *MockJournalRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}
