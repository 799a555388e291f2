package crypto

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// AlgorithmSpec is the loose, dictionary style description of an algorithm
// accepted from callers. Normalize turns it into a typed Algorithm for one verb.
type AlgorithmSpec struct {
	Name           string `json:"name" yaml:"name" validate:"required"`
	Hash           string `json:"hash,omitempty" yaml:"hash,omitempty"`
	Length         int    `json:"length,omitempty" yaml:"length,omitempty" validate:"gte=0"`
	NamedCurve     string `json:"namedCurve,omitempty" yaml:"namedCurve,omitempty" validate:"omitempty,oneof=P-256 P-384 P-521"`
	ModulusLength  int    `json:"modulusLength,omitempty" yaml:"modulusLength,omitempty" validate:"gte=0"`
	PublicExponent int    `json:"publicExponent,omitempty" yaml:"publicExponent,omitempty" validate:"gte=0"`
	IV             []byte `json:"iv,omitempty" yaml:"iv,omitempty"`
	AdditionalData []byte `json:"additionalData,omitempty" yaml:"additionalData,omitempty"`
	TagLength      int    `json:"tagLength,omitempty" yaml:"tagLength,omitempty" validate:"omitempty,oneof=32 64 96 104 112 120 128"`
	Counter        []byte `json:"counter,omitempty" yaml:"counter,omitempty"`
	SaltLength     int    `json:"saltLength,omitempty" yaml:"saltLength,omitempty" validate:"gte=0"`
	Label          []byte `json:"label,omitempty" yaml:"label,omitempty"`
}

// Validate for validating AlgorithmSpec struct
func (s *AlgorithmSpec) Validate() error {
	validate := validator.New()

	err := validate.Struct(s)
	if err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			var messages []string
			for _, fieldErr := range validationErrors {
				messages = append(messages, fmt.Sprintf("Field: %s, Tag: %s", fieldErr.Field(), fieldErr.Tag()))
			}
			return fmt.Errorf("%w: validation failed: %v", ErrInvalidParameters, messages)
		}
		return fmt.Errorf("validation error: %w", err)
	}

	return nil
}

// Normalize resolves the spec into the Algorithm expected by op.
func (s *AlgorithmSpec) Normalize(op Operation) (*Algorithm, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	id, err := ParseAlgorithmID(s.Name)
	if err != nil {
		return nil, err
	}

	params, err := s.paramsFor(op, id)
	if err != nil {
		return nil, err
	}
	return NewAlgorithm(id, params)
}

func (s *AlgorithmSpec) paramsFor(op Operation, id AlgorithmID) (Params, error) {
	if op == OpDigest {
		if !id.IsDigest() {
			return nil, unsupportedFor(op, id)
		}
		return nil, nil
	}
	if id.IsDigest() {
		return nil, unsupportedFor(op, id)
	}

	switch op {
	case OpGenerateKey:
		return s.keyGenParams(id)
	case OpImportKey:
		return s.importParams(id)
	case OpEncrypt, OpDecrypt:
		return s.cipherParams(op, id)
	case OpSign, OpVerify:
		return s.signatureParams(op, id)
	default:
		return nil, fmt.Errorf("%w: unknown operation %q", ErrInvalidParameters, op)
	}
}

func (s *AlgorithmSpec) keyGenParams(id AlgorithmID) (Params, error) {
	switch id.Family() {
	case FamilySymmetric:
		if id == ChaCha20Poly1305 {
			return nil, nil
		}
		return &AESKeyGenParams{Length: s.Length}, nil
	case FamilyHMAC:
		hash, err := s.hash()
		if err != nil {
			return nil, err
		}
		return &HMACParams{Hash: hash, Length: s.Length}, nil
	case FamilyRSA:
		hash, err := s.hash()
		if err != nil {
			return nil, err
		}
		return &RSAHashedKeyGenParams{ModulusLength: s.ModulusLength, PublicExponent: s.PublicExponent, Hash: hash}, nil
	default:
		if id == ECDSA {
			return &ECKeyParams{NamedCurve: s.NamedCurve}, nil
		}
		return nil, nil
	}
}

func (s *AlgorithmSpec) importParams(id AlgorithmID) (Params, error) {
	switch id.Family() {
	case FamilyHMAC:
		hash, err := s.hash()
		if err != nil {
			return nil, err
		}
		return &HMACParams{Hash: hash, Length: s.Length}, nil
	case FamilyRSA:
		hash, err := s.hash()
		if err != nil {
			return nil, err
		}
		return &RSAHashedImportParams{Hash: hash}, nil
	default:
		if id == ECDSA && s.NamedCurve != "" {
			return &ECKeyParams{NamedCurve: s.NamedCurve}, nil
		}
		return nil, nil
	}
}

func (s *AlgorithmSpec) cipherParams(op Operation, id AlgorithmID) (Params, error) {
	switch id {
	case AESCBC:
		return &AESCBCParams{IV: s.IV}, nil
	case AESGCM:
		return &AESGCMParams{IV: s.IV, AdditionalData: s.AdditionalData, TagLength: s.TagLength}, nil
	case AESCTR:
		return &AESCTRParams{Counter: s.Counter, Length: s.Length}, nil
	case AESKW:
		return nil, nil
	case ChaCha20Poly1305:
		return &ChaChaParams{Nonce: s.IV, AdditionalData: s.AdditionalData}, nil
	case RSAOAEP:
		return &RSAOAEPParams{Label: s.Label}, nil
	default:
		return nil, unsupportedFor(op, id)
	}
}

func (s *AlgorithmSpec) signatureParams(op Operation, id AlgorithmID) (Params, error) {
	switch id {
	case HMAC, RSASSAPKCS1v15, Ed25519:
		return nil, nil
	case RSAPSS:
		return &RSAPSSParams{SaltLength: s.SaltLength}, nil
	case ECDSA:
		hash, err := s.hash()
		if err != nil {
			return nil, err
		}
		return &ECDSAParams{Hash: hash}, nil
	default:
		return nil, unsupportedFor(op, id)
	}
}

func (s *AlgorithmSpec) hash() (AlgorithmID, error) {
	if s.Hash == "" {
		return "", fmt.Errorf("%w: %s requires a hash", ErrInvalidParameters, s.Name)
	}
	hash, err := ParseAlgorithmID(s.Hash)
	if err != nil {
		return "", err
	}
	if !hash.IsDigest() {
		return "", fmt.Errorf("%w: %s is not a hash", ErrInvalidParameters, hash)
	}
	return hash, nil
}

func unsupportedFor(op Operation, id AlgorithmID) error {
	return fmt.Errorf("%w: %s does not support %s", ErrUnsupportedAlgorithm, id, op)
}

// Describe renders alg back into its spec form.
func Describe(alg *Algorithm) AlgorithmSpec {
	spec := AlgorithmSpec{Name: string(alg.ID())}

	switch p := alg.Params().(type) {
	case *AESCBCParams:
		spec.IV = p.IV
	case *AESGCMParams:
		spec.IV, spec.AdditionalData, spec.TagLength = p.IV, p.AdditionalData, p.TagLength
	case *AESCTRParams:
		spec.Counter, spec.Length = p.Counter, p.Length
	case *AESKeyGenParams:
		spec.Length = p.Length
	case *ChaChaParams:
		spec.IV, spec.AdditionalData = p.Nonce, p.AdditionalData
	case *HMACParams:
		spec.Hash, spec.Length = string(p.Hash), p.Length
	case *RSAHashedKeyGenParams:
		spec.ModulusLength, spec.PublicExponent, spec.Hash = p.ModulusLength, p.PublicExponent, string(p.Hash)
	case *RSAHashedImportParams:
		spec.Hash = string(p.Hash)
	case *RSAPSSParams:
		spec.SaltLength = p.SaltLength
	case *RSAOAEPParams:
		spec.Label = p.Label
	case *ECKeyParams:
		spec.NamedCurve = p.NamedCurve
	case *ECDSAParams:
		spec.Hash = string(p.Hash)
	}
	return spec
}
