package persistence

import (
	"fmt"
	"regexp"

	"github.com/MGTheTrain/crypto-dispatch/internal/domain/journal"
	"github.com/MGTheTrain/crypto-dispatch/internal/pkg/config"
	"github.com/MGTheTrain/crypto-dispatch/internal/pkg/logger"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var databaseName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

func gormConfig() *gorm.Config {
	return &gorm.Config{Logger: gormLogger.Default.LogMode(gormLogger.Silent)}
}

// NewDBConnection opens the journal database described by settings
func NewDBConnection(settings config.DatabaseSettings) (*gorm.DB, error) {
	switch settings.Type {
	case config.PostgresDbType:
		return connectPostgres(settings)
	case config.SqliteDbType:
		return connectSQLite(settings)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", settings.Type)
	}
}

// OpenJournal connects, migrates the schema and returns the journal repository
// together with the connection it owns.
func OpenJournal(settings config.DatabaseSettings, logger logger.Logger) (journal.Repository, *gorm.DB, error) {
	db, err := NewDBConnection(settings)
	if err != nil {
		return nil, nil, err
	}
	if err := Migrate(db); err != nil {
		_ = CloseDB(db)
		return nil, nil, err
	}

	repo, err := NewGormOperationRepository(db, logger)
	if err != nil {
		_ = CloseDB(db)
		return nil, nil, err
	}

	logger.Info(fmt.Sprintf("Operation journal stored in %s database", settings.Type))
	return repo, db, nil
}

// connectPostgres connects to the server and, when DBName is set, creates
// that database if needed and reconnects to it.
func connectPostgres(settings config.DatabaseSettings) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(settings.DSN), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	if settings.DBName == "" {
		return db, nil
	}
	if !databaseName.MatchString(settings.DBName) {
		_ = CloseDB(db)
		return nil, fmt.Errorf("invalid database name %q", settings.DBName)
	}

	var exists bool
	if err := db.Raw("SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = ?)", settings.DBName).Scan(&exists).Error; err != nil {
		_ = CloseDB(db)
		return nil, fmt.Errorf("failed to look up database '%s': %w", settings.DBName, err)
	}
	if !exists {
		if err := db.Exec(fmt.Sprintf("CREATE DATABASE %s", settings.DBName)).Error; err != nil {
			_ = CloseDB(db)
			return nil, fmt.Errorf("failed to create database '%s': %w", settings.DBName, err)
		}
	}

	if err := CloseDB(db); err != nil {
		return nil, fmt.Errorf("failed to close initial DB connection: %w", err)
	}

	dsn := fmt.Sprintf("%s dbname=%s", settings.DSN, settings.DBName)
	db, err = gorm.Open(postgres.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database '%s': %w", settings.DBName, err)
	}
	return db, nil
}

// connectSQLite opens the SQLite file named by the DSN, in memory when it is empty
func connectSQLite(settings config.DatabaseSettings) (*gorm.DB, error) {
	dsn := settings.DSN
	if dsn == "" {
		dsn = ":memory:"
	}

	db, err := gorm.Open(sqlite.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SQLite: %w", err)
	}

	// A single connection keeps an in-memory database alive and serialises writers.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get raw DB connection: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}

// CloseDB closes the database connection
func CloseDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}
	return nil
}

// DropDatabase drops a PostgreSQL database (test cleanup utility)
func DropDatabase(adminDSN, dbName string) error {
	if !databaseName.MatchString(dbName) {
		return fmt.Errorf("invalid database name %q", dbName)
	}

	db, err := gorm.Open(postgres.Open(adminDSN), gormConfig())
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer func() {
		_ = CloseDB(db)
	}()

	if err := db.Exec(fmt.Sprintf("DROP DATABASE IF EXISTS %s", dbName)).Error; err != nil {
		return fmt.Errorf("failed to drop database '%s': %w", dbName, err)
	}
	return nil
}
