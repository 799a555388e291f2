package journal

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Outcome values mirror the result shapes a request completes with
const (
	OutcomeBuffer  = "buffer"
	OutcomeKey     = "key"
	OutcomeBoolean = "boolean"
	OutcomeError   = "error"
)

// OperationUnknown records a request naming a verb the dispatcher does not serve.
const OperationUnknown = "unknown"

// OperationRecord entity
type OperationRecord struct {
	ID              string        `validate:"required,uuid4"`
	Operation       string        `validate:"required,oneof=encrypt decrypt digest generateKey importKey sign verify unknown"`
	Algorithm       string        `validate:"max=50"`
	Outcome         string        `validate:"required,oneof=buffer key boolean error"`
	Error           string        `validate:"max=1024"`
	Duration        time.Duration `validate:"gte=0"`
	DateTimeCreated time.Time     `validate:"required"`
}

// Validate for validating OperationRecord struct
func (r *OperationRecord) Validate() error {
	return validateStruct(r)
}

// Failed reports whether the request completed with an error.
func (r *OperationRecord) Failed() bool {
	return r.Outcome == OutcomeError
}

func validateStruct(s interface{}) error {
	validate := validator.New()

	err := validate.Struct(s)
	if err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			var messages []string
			for _, fieldErr := range validationErrors {
				messages = append(messages, fmt.Sprintf("Field: %s, Tag: %s", fieldErr.Field(), fieldErr.Tag()))
			}
			return fmt.Errorf("validation failed: %v", messages)
		}
		return fmt.Errorf("validation error: %w", err)
	}

	return nil
}
