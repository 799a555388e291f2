package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MGTheTrain/crypto-dispatch/internal/app"
	cryptoDomain "github.com/MGTheTrain/crypto-dispatch/internal/domain/crypto"
	"github.com/MGTheTrain/crypto-dispatch/internal/domain/journal"
	"github.com/MGTheTrain/crypto-dispatch/internal/pkg/validators"

	"github.com/go-playground/validator/v10"
)

// AlgorithmDto describes the algorithm of an encrypt, decrypt, digest, sign or verify request.
// Binary parameters are base64 encoded.
type AlgorithmDto struct {
	Name           string `json:"name" validate:"required,algorithm"`
	Hash           string `json:"hash,omitempty" validate:"omitempty,algorithm"`
	Length         int    `json:"length,omitempty" validate:"gte=0"`
	IV             []byte `json:"iv,omitempty"`
	AdditionalData []byte `json:"additionalData,omitempty"`
	TagLength      int    `json:"tagLength,omitempty" validate:"omitempty,oneof=96 104 112 120 128"`
	Counter        []byte `json:"counter,omitempty"`
	SaltLength     int    `json:"saltLength,omitempty" validate:"gte=0"`
	Label          []byte `json:"label,omitempty"`
}

// ToSpec converts the DTO into an algorithm spec
func (d *AlgorithmDto) ToSpec() *cryptoDomain.AlgorithmSpec {
	return &cryptoDomain.AlgorithmSpec{
		Name:           d.Name,
		Hash:           d.Hash,
		Length:         d.Length,
		IV:             d.IV,
		AdditionalData: d.AdditionalData,
		TagLength:      d.TagLength,
		Counter:        d.Counter,
		SaltLength:     d.SaltLength,
		Label:          d.Label,
	}
}

// KeyAlgorithmDto describes the algorithm a generated or imported key is bound to.
type KeyAlgorithmDto struct {
	Name           string `json:"name" validate:"required,algorithm"`
	Hash           string `json:"hash,omitempty" validate:"omitempty,algorithm"`
	Length         int    `json:"length,omitempty" validate:"keylength"`
	NamedCurve     string `json:"namedCurve,omitempty" validate:"omitempty,oneof=P-256 P-384 P-521"`
	ModulusLength  int    `json:"modulusLength,omitempty" validate:"keylength"`
	PublicExponent int    `json:"publicExponent,omitempty" validate:"gte=0"`
}

// ToSpec converts the DTO into an algorithm spec
func (d *KeyAlgorithmDto) ToSpec() *cryptoDomain.AlgorithmSpec {
	return &cryptoDomain.AlgorithmSpec{
		Name:           d.Name,
		Hash:           d.Hash,
		Length:         d.Length,
		NamedCurve:     d.NamedCurve,
		ModulusLength:  d.ModulusLength,
		PublicExponent: d.PublicExponent,
	}
}

// DigestRequest is the body of POST /digest
type DigestRequest struct {
	Algorithm AlgorithmDto `json:"algorithm"`
	Data      []byte       `json:"data"`
}

// Validate for validating DigestRequest struct
func (r *DigestRequest) Validate() error { return validateRequest(r) }

// CipherRequest is the body of POST /encrypt, /decrypt and /sign
type CipherRequest struct {
	KeyID     string       `json:"keyId" validate:"required,uuid4"`
	Algorithm AlgorithmDto `json:"algorithm"`
	Data      []byte       `json:"data"`
}

// Validate for validating CipherRequest struct
func (r *CipherRequest) Validate() error { return validateRequest(r) }

// VerifyRequest is the body of POST /verify
type VerifyRequest struct {
	KeyID     string       `json:"keyId" validate:"required,uuid4"`
	Algorithm AlgorithmDto `json:"algorithm"`
	Signature []byte       `json:"signature" validate:"required"`
	Data      []byte       `json:"data"`
}

// Validate for validating VerifyRequest struct
func (r *VerifyRequest) Validate() error { return validateRequest(r) }

// GenerateKeyRequest is the body of POST /keys/generate
type GenerateKeyRequest struct {
	Algorithm   KeyAlgorithmDto `json:"algorithm"`
	Extractable bool            `json:"extractable"`
	Usages      []string        `json:"usages" validate:"required,min=1,dive,oneof=encrypt decrypt sign verify deriveKey deriveBits wrapKey unwrapKey"`
}

// Validate for validating GenerateKeyRequest struct
func (r *GenerateKeyRequest) Validate() error { return validateRequest(r) }

// ImportKeyRequest is the body of POST /keys/import. A jwk key may be
// sent inline as JWK instead of base64 encoded KeyData.
type ImportKeyRequest struct {
	Format      string           `json:"format" validate:"required,oneof=raw pkcs8 spki jwk"`
	KeyData     []byte           `json:"keyData" validate:"required_without=JWK"`
	JWK         json.RawMessage  `json:"jwk,omitempty"`
	Algorithm   *KeyAlgorithmDto `json:"algorithm,omitempty" validate:"omitempty"`
	Extractable bool             `json:"extractable"`
	Usages      []string         `json:"usages" validate:"omitempty,dive,oneof=encrypt decrypt sign verify deriveKey deriveBits wrapKey unwrapKey"`
}

// Validate for validating ImportKeyRequest struct
func (r *ImportKeyRequest) Validate() error { return validateRequest(r) }

// Data returns the key bytes to import
func (r *ImportKeyRequest) Data() []byte {
	if r.Format == string(cryptoDomain.FormatJWK) && len(r.JWK) > 0 {
		return r.JWK
	}
	return r.KeyData
}

// BufferResponse carries the output of encrypt, decrypt, digest and sign
type BufferResponse struct {
	Data []byte `json:"data"`
}

// VerifyResponse carries the verdict of verify
type VerifyResponse struct {
	Valid bool `json:"valid"`
}

// KeyResponse describes a registered key without exposing its material
type KeyResponse struct {
	ID              string                     `json:"id"`
	PairID          string                     `json:"pairId,omitempty"`
	Type            string                     `json:"type"`
	Algorithm       cryptoDomain.AlgorithmSpec `json:"algorithm"`
	Bits            int                        `json:"bits"`
	Extractable     bool                       `json:"extractable"`
	Usages          []string                   `json:"usages"`
	DateTimeCreated time.Time                  `json:"dateTimeCreated"`
}

func newKeyResponse(entry *app.KeyEntry) KeyResponse {
	key := entry.Key
	return KeyResponse{
		ID:              entry.ID,
		PairID:          entry.PairID,
		Type:            string(key.Type()),
		Algorithm:       cryptoDomain.Describe(key.Algorithm()),
		Bits:            key.Material().Bits(),
		Extractable:     key.Extractable(),
		Usages:          key.Usages().Names(),
		DateTimeCreated: entry.DateTimeCreated,
	}
}

// OperationRecordResponse is one journal entry
type OperationRecordResponse struct {
	ID              string    `json:"id"`
	Operation       string    `json:"operation"`
	Algorithm       string    `json:"algorithm,omitempty"`
	Outcome         string    `json:"outcome"`
	Error           string    `json:"error,omitempty"`
	DurationMicros  int64     `json:"durationMicros"`
	DateTimeCreated time.Time `json:"dateTimeCreated"`
}

func newOperationRecordResponse(r *journal.OperationRecord) OperationRecordResponse {
	return OperationRecordResponse{
		ID:              r.ID,
		Operation:       r.Operation,
		Algorithm:       r.Algorithm,
		Outcome:         r.Outcome,
		Error:           r.Error,
		DurationMicros:  r.Duration.Microseconds(),
		DateTimeCreated: r.DateTimeCreated,
	}
}

// ErrorResponse represents an error message
type ErrorResponse struct {
	Message string `json:"message"`
}

// InfoResponse represents an informational message
type InfoResponse struct {
	Message string `json:"message"`
}

func validateRequest(s interface{}) error {
	validate := validator.New()
	if err := validators.Register(validate); err != nil {
		return err
	}

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
