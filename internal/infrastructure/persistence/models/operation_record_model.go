package models

import (
	"time"

	"github.com/MGTheTrain/crypto-dispatch/internal/domain/journal"
)

// OperationRecordModel is the GORM database model for journal records
type OperationRecordModel struct {
	ID              string    `gorm:"primaryKey;type:varchar(36)"`
	Operation       string    `gorm:"not null;index;type:varchar(20)"`
	Algorithm       string    `gorm:"index;type:varchar(50)"`
	Outcome         string    `gorm:"not null;index;type:varchar(10)"`
	Error           string    `gorm:"type:text"`
	DurationNanos   int64     `gorm:"column:duration;not null"`
	DateTimeCreated time.Time `gorm:"not null;index"`
}

// TableName specifies the table name for GORM
func (OperationRecordModel) TableName() string {
	return "operation_records"
}

// ToDomain converts GORM model to domain entity
func (m *OperationRecordModel) ToDomain() *journal.OperationRecord {
	return &journal.OperationRecord{
		ID:              m.ID,
		Operation:       m.Operation,
		Algorithm:       m.Algorithm,
		Outcome:         m.Outcome,
		Error:           m.Error,
		Duration:        time.Duration(m.DurationNanos),
		DateTimeCreated: m.DateTimeCreated,
	}
}

// FromDomain converts domain entity to GORM model
func (m *OperationRecordModel) FromDomain(r *journal.OperationRecord) {
	m.ID = r.ID
	m.Operation = r.Operation
	m.Algorithm = r.Algorithm
	m.Outcome = r.Outcome
	m.Error = r.Error
	m.DurationNanos = int64(r.Duration)
	m.DateTimeCreated = r.DateTimeCreated
}
