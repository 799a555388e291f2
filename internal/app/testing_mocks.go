//go:build unit
// +build unit

package app

import (
	"context"
	"time"

	cryptoDomain "github.com/MGTheTrain/crypto-dispatch/internal/domain/crypto"
	"github.com/MGTheTrain/crypto-dispatch/internal/domain/journal"

	"github.com/stretchr/testify/mock"
)

// MockBackend is a mock implementation of cryptoDomain.Backend
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) buffer(args mock.Arguments) ([]byte, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockBackend) key(args mock.Arguments) (*cryptoDomain.Key, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.Key), args.Error(1)
}

func (m *MockBackend) Encrypt(ctx context.Context, alg *cryptoDomain.Algorithm, key *cryptoDomain.Key, data []byte) ([]byte, error) {
	return m.buffer(m.Called(ctx, alg, key, data))
}

func (m *MockBackend) Decrypt(ctx context.Context, alg *cryptoDomain.Algorithm, key *cryptoDomain.Key, data []byte) ([]byte, error) {
	return m.buffer(m.Called(ctx, alg, key, data))
}

func (m *MockBackend) Digest(ctx context.Context, alg *cryptoDomain.Algorithm, data []byte) ([]byte, error) {
	return m.buffer(m.Called(ctx, alg, data))
}

func (m *MockBackend) GenerateKey(ctx context.Context, alg *cryptoDomain.Algorithm, extractable bool, usages cryptoDomain.UsageMask) (*cryptoDomain.Key, error) {
	return m.key(m.Called(ctx, alg, extractable, usages))
}

func (m *MockBackend) ImportKey(ctx context.Context, format cryptoDomain.KeyFormat, keyData []byte, alg *cryptoDomain.Algorithm, extractable bool, usages cryptoDomain.UsageMask) (*cryptoDomain.Key, error) {
	return m.key(m.Called(ctx, format, keyData, alg, extractable, usages))
}

func (m *MockBackend) Sign(ctx context.Context, alg *cryptoDomain.Algorithm, key *cryptoDomain.Key, data []byte) ([]byte, error) {
	return m.buffer(m.Called(ctx, alg, key, data))
}

func (m *MockBackend) VerifySignature(ctx context.Context, alg *cryptoDomain.Algorithm, key *cryptoDomain.Key, signature, data []byte) (bool, error) {
	args := m.Called(ctx, alg, key, signature, data)
	return args.Bool(0), args.Error(1)
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
