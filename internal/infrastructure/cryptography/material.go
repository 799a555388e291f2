package cryptography

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rsa"
	"fmt"

	cryptoDomain "github.com/MGTheTrain/crypto-dispatch/internal/domain/crypto"
)

// secretMaterial holds symmetric and HMAC key bytes.
type secretMaterial []byte

func (m secretMaterial) Bits() int { return len(m) * 8 }

type rsaPrivateMaterial struct{ key *rsa.PrivateKey }

func (m rsaPrivateMaterial) Bits() int { return m.key.N.BitLen() }
func (m rsaPrivateMaterial) Public() cryptoDomain.KeyMaterial {
	return rsaPublicMaterial{key: &m.key.PublicKey}
}

type rsaPublicMaterial struct{ key *rsa.PublicKey }

func (m rsaPublicMaterial) Bits() int { return m.key.N.BitLen() }

type ecdsaPrivateMaterial struct{ key *ecdsa.PrivateKey }

func (m ecdsaPrivateMaterial) Bits() int { return m.key.Curve.Params().BitSize }
func (m ecdsaPrivateMaterial) Public() cryptoDomain.KeyMaterial {
	return ecdsaPublicMaterial{key: &m.key.PublicKey}
}

type ecdsaPublicMaterial struct{ key *ecdsa.PublicKey }

func (m ecdsaPublicMaterial) Bits() int { return m.key.Curve.Params().BitSize }

type ed25519PrivateMaterial struct{ key ed25519.PrivateKey }

func (m ed25519PrivateMaterial) Bits() int { return 256 }
func (m ed25519PrivateMaterial) Public() cryptoDomain.KeyMaterial {
	return ed25519PublicMaterial{key: m.key.Public().(ed25519.PublicKey)}
}

type ed25519PublicMaterial struct{ key ed25519.PublicKey }

func (m ed25519PublicMaterial) Bits() int { return 256 }

var curvesByName = map[string]elliptic.Curve{
	cryptoDomain.CurveP256: elliptic.P256(),
	cryptoDomain.CurveP384: elliptic.P384(),
	cryptoDomain.CurveP521: elliptic.P521(),
}

func curveByName(name string) (elliptic.Curve, error) {
	curve, ok := curvesByName[name]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported named curve %q", cryptoDomain.ErrInvalidParameters, name)
	}
	return curve, nil
}

func curveName(curve elliptic.Curve) string {
	return curve.Params().Name
}

func secretOf(key *cryptoDomain.Key) ([]byte, error) {
	m, ok := key.Material().(secretMaterial)
	if !ok {
		return nil, fmt.Errorf("%w: expected a secret key", cryptoDomain.ErrKeyMismatch)
	}
	return m, nil
}

func rsaPrivateOf(key *cryptoDomain.Key) (*rsa.PrivateKey, error) {
	m, ok := key.Material().(rsaPrivateMaterial)
	if !ok {
		return nil, fmt.Errorf("%w: expected an RSA private key", cryptoDomain.ErrInvalidAccess)
	}
	return m.key, nil
}

// rsaPublicOf accepts either half of the pair.
func rsaPublicOf(key *cryptoDomain.Key) (*rsa.PublicKey, error) {
	switch m := key.Material().(type) {
	case rsaPublicMaterial:
		return m.key, nil
	case rsaPrivateMaterial:
		return &m.key.PublicKey, nil
	default:
		return nil, fmt.Errorf("%w: expected an RSA key", cryptoDomain.ErrKeyMismatch)
	}
}

func ecdsaPrivateOf(key *cryptoDomain.Key) (*ecdsa.PrivateKey, error) {
	m, ok := key.Material().(ecdsaPrivateMaterial)
	if !ok {
		return nil, fmt.Errorf("%w: expected an ECDSA private key", cryptoDomain.ErrInvalidAccess)
	}
	return m.key, nil
}

func ecdsaPublicOf(key *cryptoDomain.Key) (*ecdsa.PublicKey, error) {
	switch m := key.Material().(type) {
	case ecdsaPublicMaterial:
		return m.key, nil
	case ecdsaPrivateMaterial:
		return &m.key.PublicKey, nil
	default:
		return nil, fmt.Errorf("%w: expected an ECDSA key", cryptoDomain.ErrKeyMismatch)
	}
}

func ed25519PrivateOf(key *cryptoDomain.Key) (ed25519.PrivateKey, error) {
	m, ok := key.Material().(ed25519PrivateMaterial)
	if !ok {
		return nil, fmt.Errorf("%w: expected an Ed25519 private key", cryptoDomain.ErrInvalidAccess)
	}
	return m.key, nil
}

func ed25519PublicOf(key *cryptoDomain.Key) (ed25519.PublicKey, error) {
	switch m := key.Material().(type) {
	case ed25519PublicMaterial:
		return m.key, nil
	case ed25519PrivateMaterial:
		return m.key.Public().(ed25519.PublicKey), nil
	default:
		return nil, fmt.Errorf("%w: expected an Ed25519 key", cryptoDomain.ErrKeyMismatch)
	}
}
