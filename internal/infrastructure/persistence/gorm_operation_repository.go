package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MGTheTrain/crypto-dispatch/internal/domain/journal"
	"github.com/MGTheTrain/crypto-dispatch/internal/infrastructure/persistence/models"
	"github.com/MGTheTrain/crypto-dispatch/internal/pkg/logger"

	"gorm.io/gorm"
)

type gormOperationRepository struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewGormOperationRepository creates a new GORM-based journal.Repository implementation
func NewGormOperationRepository(db *gorm.DB, logger logger.Logger) (journal.Repository, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection must not be nil")
	}
	return &gormOperationRepository{
		db:     db,
		logger: logger,
	}, nil
}

// Migrate creates or updates the journal schema
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.OperationRecordModel{}); err != nil {
		return fmt.Errorf("failed to migrate operation journal: %w", err)
	}
	return nil
}

func (r *gormOperationRepository) Create(ctx context.Context, record *journal.OperationRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	model := &models.OperationRecordModel{}
	model.FromDomain(record)

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create operation record: %w", err)
	}

	r.logger.Debug("Created operation record with id ", record.ID)
	return nil
}

func (r *gormOperationRepository) List(ctx context.Context, query *journal.OperationQuery) ([]*journal.OperationRecord, error) {
	if query == nil {
		query = journal.NewOperationQuery()
	}
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query parameters: %w", err)
	}

	var modelList []*models.OperationRecordModel
	dbQuery := r.db.WithContext(ctx).Model(&models.OperationRecordModel{})

	if query.Operation != "" {
		dbQuery = dbQuery.Where("operation = ?", query.Operation)
	}
	if query.Algorithm != "" {
		dbQuery = dbQuery.Where("algorithm = ?", query.Algorithm)
	}
	if query.Outcome != "" {
		dbQuery = dbQuery.Where("outcome = ?", query.Outcome)
	}
	if !query.Since.IsZero() {
		dbQuery = dbQuery.Where("date_time_created >= ?", query.Since)
	}

	if query.SortBy != "" {
		order := query.SortOrder
		if order == "" {
			order = "asc"
		}
		dbQuery = dbQuery.Order(fmt.Sprintf("%s %s", query.SortBy, order))
	}

	if query.Limit > 0 {
		dbQuery = dbQuery.Limit(query.Limit)
	}
	if query.Offset > 0 {
		dbQuery = dbQuery.Offset(query.Offset)
	}

	if err := dbQuery.Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch operation records: %w", err)
	}

	domainList := make([]*journal.OperationRecord, len(modelList))
	for i, model := range modelList {
		domainList[i] = model.ToDomain()
	}

	return domainList, nil
}

func (r *gormOperationRepository) GetByID(ctx context.Context, recordID string) (*journal.OperationRecord, error) {
	var model models.OperationRecordModel
	if err := r.db.WithContext(ctx).Where("id = ?", recordID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", journal.ErrRecordNotFound, recordID)
		}
		return nil, fmt.Errorf("failed to fetch operation record: %w", err)
	}
	return model.ToDomain(), nil
}

func (r *gormOperationRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("date_time_created < ?", cutoff).Delete(&models.OperationRecordModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete operation records: %w", result.Error)
	}

	r.logger.Info(fmt.Sprintf("Deleted %d operation records created before %s", result.RowsAffected, cutoff.Format(time.RFC3339)))
	return result.RowsAffected, nil
}
