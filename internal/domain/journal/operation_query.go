package journal

import "time"

// OperationQuery filters and pages journal listings. Zero values leave a
// criterion unset.
type OperationQuery struct {
	Operation string    `validate:"omitempty,oneof=encrypt decrypt digest generateKey importKey sign verify unknown"`
	Algorithm string    `validate:"omitempty,max=50"`
	Outcome   string    `validate:"omitempty,oneof=buffer key boolean error"`
	Since     time.Time `validate:"omitempty"`

	Limit     int    `validate:"omitempty,gte=0,lte=1000"`
	Offset    int    `validate:"omitempty,gte=0"`
	SortBy    string `validate:"omitempty,oneof=date_time_created operation algorithm duration"`
	SortOrder string `validate:"omitempty,oneof=asc desc"`
}

// NewOperationQuery returns a query listing the newest records first.
func NewOperationQuery() *OperationQuery {
	return &OperationQuery{
		Limit:     100,
		SortBy:    "date_time_created",
		SortOrder: "desc",
	}
}

// Validate for validating OperationQuery struct
func (q *OperationQuery) Validate() error {
	return validateStruct(q)
}
