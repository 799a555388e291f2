package validators

import (
	"fmt"

	"github.com/MGTheTrain/crypto-dispatch/internal/domain/crypto"
	"github.com/go-playground/validator/v10"
)

// AlgorithmValidation accepts the name of any registered algorithm, case-insensitively.
func AlgorithmValidation(fl validator.FieldLevel) bool {
	_, err := crypto.ParseAlgorithmID(fl.Field().String())
	return err == nil
}

// KeyLengthValidation validates a key length in bits against the sibling Name field.
// Zero means unset and is always accepted; the RSA modulus is checked on
// ModulusLength fields, secret key sizes on every other field.
func KeyLengthValidation(fl validator.FieldLevel) bool {
	bits := fl.Field().Int()
	if bits == 0 {
		return true
	}

	id, err := crypto.ParseAlgorithmID(fl.Parent().FieldByName("Name").String())
	if err != nil {
		return false
	}

	if fl.StructFieldName() == "ModulusLength" {
		return id.Family() == crypto.FamilyRSA && bits >= 1024 && bits <= 16384 && bits%8 == 0
	}

	switch id {
	case crypto.AESCBC, crypto.AESGCM, crypto.AESCTR, crypto.AESKW:
		return bits == 128 || bits == 192 || bits == 256
	case crypto.HMAC:
		return bits%8 == 0
	default:
		return false
	}
}

// Register adds the custom tags to v.
func Register(v *validator.Validate) error {
	if err := v.RegisterValidation("algorithm", AlgorithmValidation); err != nil {
		return fmt.Errorf("failed to register algorithm validation: %w", err)
	}
	if err := v.RegisterValidation("keylength", KeyLengthValidation); err != nil {
		return fmt.Errorf("failed to register keylength validation: %w", err)
	}
	return nil
}
