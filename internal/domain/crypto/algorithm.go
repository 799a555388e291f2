package crypto

import (
	"bytes"
	"fmt"
	"reflect"
)

// Params carries the family specific parameters of an Algorithm.
type Params interface {
	clone() Params
}

// AESCBCParams configures AES-CBC encryption.
type AESCBCParams struct {
	IV []byte
}

// AESGCMParams configures AES-GCM encryption. TagLength is in bits, zero means 128.
type AESGCMParams struct {
	IV             []byte
	AdditionalData []byte
	TagLength      int
}

// AESCTRParams configures AES-CTR. Length is the number of counter bits in the rightmost part of Counter.
type AESCTRParams struct {
	Counter []byte
	Length  int
}

// AESKeyGenParams describes an AES key. Length is in bits.
type AESKeyGenParams struct {
	Length int
}

// ChaChaParams configures ChaCha20-Poly1305.
type ChaChaParams struct {
	Nonce          []byte
	AdditionalData []byte
}

// HMACParams describes an HMAC key. Length is in bits, zero means the hash block size.
type HMACParams struct {
	Hash   AlgorithmID
	Length int
}

// RSAHashedKeyGenParams describes an RSA key pair to be generated.
type RSAHashedKeyGenParams struct {
	ModulusLength  int
	PublicExponent int
	Hash           AlgorithmID
}

// RSAHashedImportParams binds an imported RSA key to a hash.
type RSAHashedImportParams struct {
	Hash AlgorithmID
}

// RSAPSSParams configures RSA-PSS signatures. SaltLength is in bytes.
type RSAPSSParams struct {
	SaltLength int
}

// RSAOAEPParams configures RSA-OAEP encryption.
type RSAOAEPParams struct {
	Label []byte
}

// ECKeyParams describes an elliptic curve key.
type ECKeyParams struct {
	NamedCurve string
}

// ECDSAParams configures ECDSA signatures.
type ECDSAParams struct {
	Hash AlgorithmID
}

func (p *AESCBCParams) clone() Params { return &AESCBCParams{IV: bytes.Clone(p.IV)} }
func (p *AESGCMParams) clone() Params {
	return &AESGCMParams{IV: bytes.Clone(p.IV), AdditionalData: bytes.Clone(p.AdditionalData), TagLength: p.TagLength}
}
func (p *AESCTRParams) clone() Params {
	return &AESCTRParams{Counter: bytes.Clone(p.Counter), Length: p.Length}
}
func (p *AESKeyGenParams) clone() Params { c := *p; return &c }
func (p *ChaChaParams) clone() Params {
	return &ChaChaParams{Nonce: bytes.Clone(p.Nonce), AdditionalData: bytes.Clone(p.AdditionalData)}
}
func (p *HMACParams) clone() Params            { c := *p; return &c }
func (p *RSAHashedKeyGenParams) clone() Params { c := *p; return &c }
func (p *RSAHashedImportParams) clone() Params { c := *p; return &c }
func (p *RSAPSSParams) clone() Params          { c := *p; return &c }
func (p *RSAOAEPParams) clone() Params         { return &RSAOAEPParams{Label: bytes.Clone(p.Label)} }
func (p *ECKeyParams) clone() Params           { c := *p; return &c }
func (p *ECDSAParams) clone() Params           { c := *p; return &c }

// Algorithm identifies an algorithm together with its parameters.
// It is immutable once constructed; a nil *Algorithm is the null algorithm.
type Algorithm struct {
	id     AlgorithmID
	params Params
}

// NewAlgorithm validates that params is a parameter type the algorithm understands
// and returns an immutable descriptor holding a private copy of it.
func NewAlgorithm(id AlgorithmID, params Params) (*Algorithm, error) {
	if id.Family() == FamilyUnknown {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, id)
	}
	if params == nil {
		return &Algorithm{id: id}, nil
	}
	if reflect.ValueOf(params).IsNil() {
		return nil, fmt.Errorf("%w: nil %T", ErrInvalidParameters, params)
	}
	if !paramsFit(id, params) {
		return nil, fmt.Errorf("%w: %T does not apply to %s", ErrInvalidParameters, params, id)
	}
	return &Algorithm{id: id, params: params.clone()}, nil
}

// MustAlgorithm is like NewAlgorithm but panics on error.
func MustAlgorithm(id AlgorithmID, params Params) *Algorithm {
	alg, err := NewAlgorithm(id, params)
	if err != nil {
		panic(err)
	}
	return alg
}

// ID returns the algorithm identifier.
func (a *Algorithm) ID() AlgorithmID {
	return a.id
}

// Family returns the backend family serving the algorithm.
func (a *Algorithm) Family() Family {
	return a.id.Family()
}

// Params returns a copy of the parameters, or nil when none were given.
func (a *Algorithm) Params() Params {
	if a.params == nil {
		return nil
	}
	return a.params.clone()
}

func (a *Algorithm) String() string {
	if a == nil {
		return "<nil>"
	}
	return string(a.id)
}

func paramsFit(id AlgorithmID, params Params) bool {
	switch params.(type) {
	case *AESCBCParams:
		return id == AESCBC
	case *AESGCMParams:
		return id == AESGCM
	case *AESCTRParams:
		return id == AESCTR
	case *AESKeyGenParams:
		return id == AESCBC || id == AESGCM || id == AESCTR || id == AESKW
	case *ChaChaParams:
		return id == ChaCha20Poly1305
	case *HMACParams:
		return id == HMAC
	case *RSAHashedKeyGenParams, *RSAHashedImportParams:
		return id.Family() == FamilyRSA
	case *RSAPSSParams:
		return id == RSAPSS
	case *RSAOAEPParams:
		return id == RSAOAEP
	case *ECKeyParams:
		return id == ECDSA
	case *ECDSAParams:
		return id == ECDSA
	default:
		return false
	}
}
