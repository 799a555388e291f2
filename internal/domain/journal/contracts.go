package journal

import (
	"context"
	"time"
)

// Repository defines the persistence operations of the operation journal
type Repository interface {
	Create(ctx context.Context, record *OperationRecord) error
	List(ctx context.Context, query *OperationQuery) ([]*OperationRecord, error)
	GetByID(ctx context.Context, recordID string) (*OperationRecord, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
