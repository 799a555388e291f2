//go:build unit
// +build unit

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRestConfig = `port: "8080"
logger:
  log_level: info
  log_type: console
database:
  type: sqlite
  dsn: ":memory:"
dispatcher:
  workers: 4
  journal: true
  journal_retention: 72h
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "rest-app.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestInitializeRestConfig(t *testing.T) {
	cfg, err := InitializeRestConfig(writeConfig(t, testRestConfig))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, LogLevelInfo, cfg.Logger.LogLevel)
	assert.Equal(t, LogTypeConsole, cfg.Logger.LogType)
	assert.Equal(t, SqliteDbType, cfg.Database.Type)
	assert.Equal(t, ":memory:", cfg.Database.DSN)
	assert.Equal(t, 4, cfg.Dispatcher.Workers)
	assert.True(t, cfg.Dispatcher.Journal)
	assert.Equal(t, 72*time.Hour, cfg.Dispatcher.JournalRetention)
}

func TestInitializeRestConfig_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", LogLevelDebug)
	t.Setenv("DATABASE_DSN", "file:journal.db")
	t.Setenv("DISPATCHER_WORKERS", "0")

	cfg, err := InitializeRestConfig(writeConfig(t, testRestConfig))
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, LogLevelDebug, cfg.Logger.LogLevel)
	assert.Equal(t, "file:journal.db", cfg.Database.DSN)
	assert.Equal(t, 0, cfg.Dispatcher.Workers)
}

func TestInitializeRestConfig_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := InitializeRestConfig(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := InitializeRestConfig(writeConfig(t, "port: [8080"))
		assert.Error(t, err)
	})

	t.Run("invalid workers override", func(t *testing.T) {
		t.Setenv("DISPATCHER_WORKERS", "many")
		_, err := InitializeRestConfig(writeConfig(t, testRestConfig))
		assert.ErrorContains(t, err, "DISPATCHER_WORKERS")
	})

	t.Run("invalid log level", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "verbose")
		_, err := InitializeRestConfig(writeConfig(t, testRestConfig))
		assert.Error(t, err)
	})

	t.Run("non numeric port", func(t *testing.T) {
		t.Setenv("PORT", "http")
		_, err := InitializeRestConfig(writeConfig(t, testRestConfig))
		assert.Error(t, err)
	})
}
