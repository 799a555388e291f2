//go:build integration
// +build integration

package persistence

import (
	"strings"
	"testing"
	"time"

	"github.com/MGTheTrain/crypto-dispatch/internal/domain/journal"
	"github.com/MGTheTrain/crypto-dispatch/internal/pkg/config"
	"github.com/MGTheTrain/crypto-dispatch/internal/pkg/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// TestContext holds test database and repositories
type TestContext struct {
	DB          *gorm.DB
	JournalRepo journal.Repository
}

// SetupTestDB initializes a migrated test database that is removed when the test ends
func SetupTestDB(t *testing.T, dbType string) *TestContext {
	t.Helper()

	var settings config.DatabaseSettings
	cleanup := func() {}

	switch dbType {
	case config.SqliteDbType:
		settings = config.DatabaseSettings{
			Type: config.SqliteDbType,
			DSN:  ":memory:",
		}

	case config.PostgresDbType:
		uniqueDBName := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
		settings = config.DatabaseSettings{
			Type:   config.PostgresDbType,
			DSN:    "user=postgres password=postgres host=localhost port=5432 sslmode=disable",
			DBName: uniqueDBName,
		}
		cleanup = func() {
			adminDSN := "user=postgres password=postgres host=localhost port=5432 dbname=postgres sslmode=disable"
			_ = DropDatabase(adminDSN, uniqueDBName)
		}

	default:
		t.Fatalf("Unsupported database type: %s", dbType)
	}

	repo, db, err := OpenJournal(settings, testutil.SetupTestLogger(t))
	require.NoError(t, err, "Failed to open operation journal")

	t.Cleanup(func() {
		_ = CloseDB(db)
		cleanup()
	})

	return &TestContext{
		DB:          db,
		JournalRepo: repo,
	}
}

// CreateTestRecord creates a journal record with default values
func CreateTestRecord(t *testing.T, operation, algorithm, outcome string) *journal.OperationRecord {
	t.Helper()

	return &journal.OperationRecord{
		ID:              uuid.NewString(),
		Operation:       operation,
		Algorithm:       algorithm,
		Outcome:         outcome,
		Duration:        time.Millisecond,
		DateTimeCreated: time.Now().UTC(),
	}
}
