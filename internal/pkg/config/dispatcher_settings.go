package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// DispatcherSettings configures how the dispatcher runs backend routines.
// Zero workers runs every request on the caller's goroutine. Journal records
// older than JournalRetention are pruned; zero keeps them forever.
type DispatcherSettings struct {
	Workers          int           `yaml:"workers" validate:"gte=0,lte=1024"`
	Journal          bool          `yaml:"journal"`
	JournalRetention time.Duration `yaml:"journal_retention" validate:"gte=0"`
}

// Validate checks that all fields in DispatcherSettings are valid
func (s *DispatcherSettings) Validate() error {
	validate := validator.New()

	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("validation failed for DispatcherSettings: %w", err)
	}
	return nil
}
