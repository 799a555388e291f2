//go:build integration
// +build integration

package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/MGTheTrain/crypto-dispatch/internal/domain/journal"
	"github.com/MGTheTrain/crypto-dispatch/internal/infrastructure/persistence/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runOperationRepositoryTests exercises a journal repository against dbType
func runOperationRepositoryTests(t *testing.T, dbType string) {
	t.Run("Create", func(t *testing.T) {
		tc := SetupTestDB(t, dbType)
		record := CreateTestRecord(t, "encrypt", "AES-GCM", journal.OutcomeBuffer)

		require.NoError(t, tc.JournalRepo.Create(context.Background(), record))

		var stored models.OperationRecordModel
		require.NoError(t, tc.DB.First(&stored, "id = ?", record.ID).Error)
		assert.Equal(t, "encrypt", stored.Operation)
		assert.Equal(t, int64(time.Millisecond), stored.DurationNanos)
	})

	t.Run("CreateInvalid", func(t *testing.T) {
		tc := SetupTestDB(t, dbType)
		record := CreateTestRecord(t, "wrapKey", "AES-KW", journal.OutcomeBuffer)

		err := tc.JournalRepo.Create(context.Background(), record)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "validation error")
	})

	t.Run("GetByID", func(t *testing.T) {
		tc := SetupTestDB(t, dbType)
		record := CreateTestRecord(t, "verify", "Ed25519", journal.OutcomeBoolean)
		require.NoError(t, tc.JournalRepo.Create(context.Background(), record))

		fetched, err := tc.JournalRepo.GetByID(context.Background(), record.ID)
		require.NoError(t, err)
		assert.Equal(t, record.ID, fetched.ID)
		assert.Equal(t, record.Outcome, fetched.Outcome)
		assert.Equal(t, record.Duration, fetched.Duration)

		_, err = tc.JournalRepo.GetByID(context.Background(), "00000000-0000-4000-8000-000000000000")
		assert.ErrorIs(t, err, journal.ErrRecordNotFound)
	})

	t.Run("List", func(t *testing.T) {
		tc := SetupTestDB(t, dbType)
		ctx := context.Background()

		old := CreateTestRecord(t, "digest", "SHA-256", journal.OutcomeBuffer)
		old.DateTimeCreated = time.Now().UTC().Add(-time.Hour)
		failed := CreateTestRecord(t, "decrypt", "AES-GCM", journal.OutcomeError)
		failed.Error = "decrypt with AES-GCM failed: operation failed"
		signed := CreateTestRecord(t, "sign", "ECDSA", journal.OutcomeBuffer)

		for _, r := range []*journal.OperationRecord{old, failed, signed} {
			require.NoError(t, tc.JournalRepo.Create(ctx, r))
		}

		all, err := tc.JournalRepo.List(ctx, nil)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, old.ID, all[2].ID, "newest first by default")

		failures, err := tc.JournalRepo.List(ctx, &journal.OperationQuery{Outcome: journal.OutcomeError})
		require.NoError(t, err)
		require.Len(t, failures, 1)
		assert.Equal(t, failed.Error, failures[0].Error)

		byAlgorithm, err := tc.JournalRepo.List(ctx, &journal.OperationQuery{Algorithm: "ECDSA", Operation: "sign"})
		require.NoError(t, err)
		assert.Len(t, byAlgorithm, 1)

		recent, err := tc.JournalRepo.List(ctx, &journal.OperationQuery{Since: time.Now().UTC().Add(-time.Minute)})
		require.NoError(t, err)
		assert.Len(t, recent, 2)

		paged, err := tc.JournalRepo.List(ctx, &journal.OperationQuery{Limit: 1, Offset: 1, SortBy: "date_time_created", SortOrder: "asc"})
		require.NoError(t, err)
		assert.Len(t, paged, 1)

		_, err = tc.JournalRepo.List(ctx, &journal.OperationQuery{SortBy: "id; DROP TABLE operation_records"})
		assert.Error(t, err)
	})

	t.Run("DeleteBefore", func(t *testing.T) {
		tc := SetupTestDB(t, dbType)
		ctx := context.Background()

		old := CreateTestRecord(t, "digest", "SHA-1", journal.OutcomeBuffer)
		old.DateTimeCreated = time.Now().UTC().Add(-48 * time.Hour)
		fresh := CreateTestRecord(t, "digest", "SHA-1", journal.OutcomeBuffer)
		require.NoError(t, tc.JournalRepo.Create(ctx, old))
		require.NoError(t, tc.JournalRepo.Create(ctx, fresh))

		deleted, err := tc.JournalRepo.DeleteBefore(ctx, time.Now().UTC().Add(-24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)

		remaining, err := tc.JournalRepo.List(ctx, nil)
		require.NoError(t, err)
		require.Len(t, remaining, 1)
		assert.Equal(t, fresh.ID, remaining[0].ID)
	})
}
