package journal

import "errors"

// ErrRecordNotFound is returned when no record carries the requested ID.
var ErrRecordNotFound = errors.New("operation record not found")
