//go:build unit
// +build unit

package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDatabaseSettingsValidation(t *testing.T) {
	tests := []struct {
		name          string
		settings      *DatabaseSettings
		expectedError bool
	}{
		{
			name: "valid postgres settings",
			settings: &DatabaseSettings{
				Type:   PostgresDbType,
				DSN:    "user=postgres password=postgres host=localhost port=5432 sslmode=disable",
				DBName: "journal",
			},
			expectedError: false,
		},
		{
			name: "valid sqlite settings without name",
			settings: &DatabaseSettings{
				Type: SqliteDbType,
				DSN:  ":memory:",
			},
			expectedError: false,
		},
		{
			name: "missing type",
			settings: &DatabaseSettings{
				DSN:    ":memory:",
				DBName: "journal",
			},
			expectedError: true,
		},
		{
			name: "unsupported type",
			settings: &DatabaseSettings{
				Type:   "mysql",
				DSN:    "user:password@tcp(localhost:3306)/dbname",
				DBName: "journal",
			},
			expectedError: true,
		},
		{
			name: "missing DSN",
			settings: &DatabaseSettings{
				Type:   PostgresDbType,
				DBName: "journal",
			},
			expectedError: true,
		},
		{
			name: "postgres missing name",
			settings: &DatabaseSettings{
				Type: PostgresDbType,
				DSN:  "user=postgres host=localhost",
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.settings.Validate()

			if tt.expectedError {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestDispatcherSettingsValidation(t *testing.T) {
	require.NoError(t, (&DispatcherSettings{}).Validate())
	require.NoError(t, (&DispatcherSettings{Workers: 8, Journal: true}).Validate())
	require.Error(t, (&DispatcherSettings{Workers: -1}).Validate())
	require.Error(t, (&DispatcherSettings{Workers: 4096}).Validate())
}
