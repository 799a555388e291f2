package crypto

import (
	"errors"
	"fmt"
)

// ErrBackendFailure is reported, through OperationError, for every request the backend could not serve.
var ErrBackendFailure = errors.New("crypto backend failure")

// Backend failure causes
var (
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")
	ErrInvalidParameters    = errors.New("invalid algorithm parameters")
	ErrKeyMismatch          = errors.New("key does not match algorithm")
	ErrInvalidAccess        = errors.New("key usage does not permit operation")
	ErrUnsupportedFormat    = errors.New("unsupported key format")
	ErrMalformedKeyData     = errors.New("malformed key data")
	ErrMalformedSignature   = errors.New("malformed signature")
	ErrOperationFailed      = errors.New("operation failed")
	ErrNotExtractable       = errors.New("key is not extractable")
)

// OperationError describes a failed request. It matches both ErrBackendFailure
// and its cause under errors.Is.
type OperationError struct {
	Op        Operation
	Algorithm AlgorithmID
	Err       error
}

// NewOperationError wraps err for op. alg may be nil.
func NewOperationError(op Operation, alg *Algorithm, err error) *OperationError {
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr
	}

	e := &OperationError{Op: op, Err: err}
	if alg != nil {
		e.Algorithm = alg.ID()
	}
	return e
}

func (e *OperationError) Error() string {
	if e.Algorithm == "" {
		return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s with %s failed: %v", e.Op, e.Algorithm, e.Err)
}

func (e *OperationError) Unwrap() []error {
	return []error{ErrBackendFailure, e.Err}
}
