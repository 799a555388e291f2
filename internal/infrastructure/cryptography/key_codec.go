package cryptography

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"

	cryptoDomain "github.com/MGTheTrain/crypto-dispatch/internal/domain/crypto"
)

// parsedKey is key material decoded from an encoding, before it is bound to an algorithm.
type parsedKey struct {
	keyType  cryptoDomain.KeyType
	material cryptoDomain.KeyMaterial
	// algorithm implied by the encoding itself, nil when it names none
	hint *cryptoDomain.Algorithm
	// usages a JWK restricts the key to via "key_ops", nil when unrestricted
	keyOps *cryptoDomain.UsageMask
	// set when a JWK carries "ext": false
	notExtractable bool
}

func importKey(format cryptoDomain.KeyFormat, data []byte, alg *cryptoDomain.Algorithm, extractable bool, usages cryptoDomain.UsageMask) (*cryptoDomain.Key, error) {
	var (
		parsed *parsedKey
		err    error
	)

	switch format {
	case cryptoDomain.FormatRaw:
		parsed, err = parseRaw(data, alg)
	case cryptoDomain.FormatPKCS8:
		parsed, err = parsePKCS8(data)
	case cryptoDomain.FormatSPKI:
		parsed, err = parseSPKI(data)
	case cryptoDomain.FormatJWK:
		parsed, err = parseJWK(data)
	default:
		return nil, fmt.Errorf("%w: %q", cryptoDomain.ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}

	keyAlg, err := bindAlgorithm(parsed, alg)
	if err != nil {
		return nil, err
	}

	if parsed.notExtractable && extractable {
		return nil, fmt.Errorf("%w: key data forbids extraction", cryptoDomain.ErrInvalidParameters)
	}
	allowed := cryptoDomain.UsagesFor(keyAlg.ID(), parsed.keyType)
	if parsed.keyOps != nil {
		allowed &= *parsed.keyOps
	}
	if usages&^allowed != 0 {
		return nil, fmt.Errorf("%w: usages %q are not allowed on a %s %s key", cryptoDomain.ErrInvalidParameters, usages&^allowed, parsed.keyType, keyAlg.ID())
	}
	if usages == 0 && parsed.keyType != cryptoDomain.KeyTypePublic {
		return nil, fmt.Errorf("%w: %s keys need at least one usage", cryptoDomain.ErrInvalidParameters, parsed.keyType)
	}

	return cryptoDomain.NewKey(parsed.keyType, keyAlg, extractable, usages, parsed.material)
}

func parseRaw(data []byte, alg *cryptoDomain.Algorithm) (*parsedKey, error) {
	if alg == nil {
		return nil, fmt.Errorf("%w: raw key data needs an algorithm", cryptoDomain.ErrInvalidParameters)
	}

	switch alg.Family() {
	case cryptoDomain.FamilySymmetric, cryptoDomain.FamilyHMAC:
		return &parsedKey{keyType: cryptoDomain.KeyTypeSecret, material: secretMaterial(bytes.Clone(data))}, nil
	case cryptoDomain.FamilyRSA:
		return nil, fmt.Errorf("%w: RSA keys cannot be imported raw", cryptoDomain.ErrUnsupportedFormat)
	}

	if alg.ID() == cryptoDomain.Ed25519 {
		if len(data) != ed25519.PublicKeySize {
			return nil, fmt.Errorf("%w: raw Ed25519 keys are %d bytes", cryptoDomain.ErrMalformedKeyData, ed25519.PublicKeySize)
		}
		return &parsedKey{keyType: cryptoDomain.KeyTypePublic, material: ed25519PublicMaterial{key: bytes.Clone(data)}}, nil
	}

	params, ok := alg.Params().(*cryptoDomain.ECKeyParams)
	if !ok {
		return nil, fmt.Errorf("%w: raw ECDSA keys need a named curve", cryptoDomain.ErrInvalidParameters)
	}
	curve, err := curveByName(params.NamedCurve)
	if err != nil {
		return nil, err
	}
	x, y := elliptic.Unmarshal(curve, data) //nolint:staticcheck // only uncompressed points are accepted
	if x == nil {
		return nil, fmt.Errorf("%w: invalid %s point", cryptoDomain.ErrMalformedKeyData, params.NamedCurve)
	}
	return &parsedKey{
		keyType:  cryptoDomain.KeyTypePublic,
		material: ecdsaPublicMaterial{key: &ecdsa.PublicKey{Curve: curve, X: x, Y: y}},
	}, nil
}

// derBytes unwraps a PEM block when data is PEM encoded.
func derBytes(data []byte) []byte {
	if block, _ := pem.Decode(data); block != nil {
		return block.Bytes
	}
	return data
}

func parsePKCS8(data []byte) (*parsedKey, error) {
	parsed, err := x509.ParsePKCS8PrivateKey(derBytes(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrMalformedKeyData, err)
	}

	switch k := parsed.(type) {
	case *rsa.PrivateKey:
		return &parsedKey{keyType: cryptoDomain.KeyTypePrivate, material: rsaPrivateMaterial{key: k}}, nil
	case *ecdsa.PrivateKey:
		return &parsedKey{
			keyType:  cryptoDomain.KeyTypePrivate,
			material: ecdsaPrivateMaterial{key: k},
			hint:     ecdsaAlgorithm(k.Curve),
		}, nil
	case ed25519.PrivateKey:
		return &parsedKey{
			keyType:  cryptoDomain.KeyTypePrivate,
			material: ed25519PrivateMaterial{key: k},
			hint:     cryptoDomain.MustAlgorithm(cryptoDomain.Ed25519, nil),
		}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported private key type %T", cryptoDomain.ErrUnsupportedAlgorithm, parsed)
	}
}

func parseSPKI(data []byte) (*parsedKey, error) {
	parsed, err := x509.ParsePKIXPublicKey(derBytes(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrMalformedKeyData, err)
	}

	switch k := parsed.(type) {
	case *rsa.PublicKey:
		return &parsedKey{keyType: cryptoDomain.KeyTypePublic, material: rsaPublicMaterial{key: k}}, nil
	case *ecdsa.PublicKey:
		return &parsedKey{
			keyType:  cryptoDomain.KeyTypePublic,
			material: ecdsaPublicMaterial{key: k},
			hint:     ecdsaAlgorithm(k.Curve),
		}, nil
	case ed25519.PublicKey:
		return &parsedKey{
			keyType:  cryptoDomain.KeyTypePublic,
			material: ed25519PublicMaterial{key: k},
			hint:     cryptoDomain.MustAlgorithm(cryptoDomain.Ed25519, nil),
		}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported public key type %T", cryptoDomain.ErrUnsupportedAlgorithm, parsed)
	}
}

func ecdsaAlgorithm(curve elliptic.Curve) *cryptoDomain.Algorithm {
	return cryptoDomain.MustAlgorithm(cryptoDomain.ECDSA, &cryptoDomain.ECKeyParams{NamedCurve: curveName(curve)})
}

// bindAlgorithm checks the parsed material against the requested algorithm,
// or infers the algorithm when none was requested, and returns the algorithm
// the imported key is bound to.
func bindAlgorithm(parsed *parsedKey, alg *cryptoDomain.Algorithm) (*cryptoDomain.Algorithm, error) {
	if alg == nil {
		if parsed.hint == nil {
			return nil, fmt.Errorf("%w: key data does not name an algorithm", cryptoDomain.ErrInvalidParameters)
		}
		alg = parsed.hint
	} else if parsed.hint != nil && parsed.hint.ID() != alg.ID() {
		return nil, fmt.Errorf("%w: key data is for %s, not %s", cryptoDomain.ErrKeyMismatch, parsed.hint.ID(), alg.ID())
	} else if parsed.hint != nil {
		declared, hasDeclared := algorithmHash(parsed.hint)
		requested, hasRequested := algorithmHash(alg)
		if hasDeclared && hasRequested && declared != requested {
			return nil, fmt.Errorf("%w: key data is bound to %s, not %s", cryptoDomain.ErrKeyMismatch, declared, requested)
		}
	}

	id := alg.ID()
	switch m := parsed.material.(type) {
	case secretMaterial:
		return bindSecret(m, alg, parsed.hint)
	case rsaPrivateMaterial, rsaPublicMaterial:
		if id.Family() != cryptoDomain.FamilyRSA {
			return nil, fmt.Errorf("%w: RSA key data cannot be used with %s", cryptoDomain.ErrKeyMismatch, id)
		}
		hash, ok := algorithmHash(alg)
		if !ok && parsed.hint != nil {
			hash, ok = algorithmHash(parsed.hint)
		}
		if !ok {
			return nil, fmt.Errorf("%w: %s keys need a hash", cryptoDomain.ErrInvalidParameters, id)
		}
		return cryptoDomain.NewAlgorithm(id, &cryptoDomain.RSAHashedImportParams{Hash: hash})
	case ecdsaPrivateMaterial:
		return bindCurve(alg, m.key.Curve)
	case ecdsaPublicMaterial:
		return bindCurve(alg, m.key.Curve)
	case ed25519PrivateMaterial, ed25519PublicMaterial:
		if id != cryptoDomain.Ed25519 {
			return nil, fmt.Errorf("%w: Ed25519 key data cannot be used with %s", cryptoDomain.ErrKeyMismatch, id)
		}
		return alg, nil
	default:
		return nil, fmt.Errorf("%w: unknown key material %T", cryptoDomain.ErrMalformedKeyData, parsed.material)
	}
}

func bindSecret(secret secretMaterial, alg, hint *cryptoDomain.Algorithm) (*cryptoDomain.Algorithm, error) {
	id := alg.ID()
	switch id {
	case cryptoDomain.AESCBC, cryptoDomain.AESGCM, cryptoDomain.AESCTR, cryptoDomain.AESKW:
		if n := len(secret); n != 16 && n != 24 && n != 32 {
			return nil, fmt.Errorf("%w: AES keys are 16, 24 or 32 bytes, got %d", cryptoDomain.ErrMalformedKeyData, n)
		}
		return cryptoDomain.NewAlgorithm(id, &cryptoDomain.AESKeyGenParams{Length: secret.Bits()})
	case cryptoDomain.ChaCha20Poly1305:
		if len(secret) != 32 {
			return nil, fmt.Errorf("%w: ChaCha20-Poly1305 keys are 32 bytes", cryptoDomain.ErrMalformedKeyData)
		}
		return alg, nil
	case cryptoDomain.HMAC:
		if len(secret) == 0 {
			return nil, fmt.Errorf("%w: HMAC key cannot be empty", cryptoDomain.ErrMalformedKeyData)
		}
		hash, ok := algorithmHash(alg)
		if !ok && hint != nil {
			hash, ok = algorithmHash(hint)
		}
		if !ok {
			return nil, fmt.Errorf("%w: HMAC keys need a hash", cryptoDomain.ErrInvalidParameters)
		}
		return cryptoDomain.NewAlgorithm(id, &cryptoDomain.HMACParams{Hash: hash, Length: secret.Bits()})
	default:
		return nil, fmt.Errorf("%w: secret key data cannot be used with %s", cryptoDomain.ErrKeyMismatch, id)
	}
}

func bindCurve(alg *cryptoDomain.Algorithm, curve elliptic.Curve) (*cryptoDomain.Algorithm, error) {
	if alg.ID() != cryptoDomain.ECDSA {
		return nil, fmt.Errorf("%w: EC key data cannot be used with %s", cryptoDomain.ErrKeyMismatch, alg.ID())
	}
	name := curveName(curve)
	if params, ok := alg.Params().(*cryptoDomain.ECKeyParams); ok && params.NamedCurve != "" && params.NamedCurve != name {
		return nil, fmt.Errorf("%w: key is on %s, not %s", cryptoDomain.ErrKeyMismatch, name, params.NamedCurve)
	}
	return ecdsaAlgorithm(curve), nil
}

// algorithmHash returns the hash an algorithm descriptor is bound to.
func algorithmHash(alg *cryptoDomain.Algorithm) (cryptoDomain.AlgorithmID, bool) {
	var hash cryptoDomain.AlgorithmID
	switch p := alg.Params().(type) {
	case *cryptoDomain.HMACParams:
		hash = p.Hash
	case *cryptoDomain.RSAHashedImportParams:
		hash = p.Hash
	case *cryptoDomain.RSAHashedKeyGenParams:
		hash = p.Hash
	case *cryptoDomain.ECDSAParams:
		hash = p.Hash
	}
	return hash, hash.IsDigest()
}

// ExportKey serializes key in format. Keys created as non-extractable are refused.
func ExportKey(key *cryptoDomain.Key, format cryptoDomain.KeyFormat) ([]byte, error) {
	if key == nil {
		return nil, fmt.Errorf("key cannot be nil")
	}
	if !key.Extractable() {
		return nil, cryptoDomain.ErrNotExtractable
	}

	switch format {
	case cryptoDomain.FormatRaw:
		return exportRaw(key)
	case cryptoDomain.FormatPKCS8:
		if key.Type() != cryptoDomain.KeyTypePrivate {
			return nil, fmt.Errorf("%w: pkcs8 holds private keys only", cryptoDomain.ErrInvalidAccess)
		}
		var raw any
		switch m := key.Material().(type) {
		case rsaPrivateMaterial:
			raw = m.key
		case ecdsaPrivateMaterial:
			raw = m.key
		case ed25519PrivateMaterial:
			raw = m.key
		}
		der, err := x509.MarshalPKCS8PrivateKey(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal private key: %w", err)
		}
		return der, nil
	case cryptoDomain.FormatSPKI:
		if key.Type() != cryptoDomain.KeyTypePublic {
			return nil, fmt.Errorf("%w: spki holds public keys only", cryptoDomain.ErrInvalidAccess)
		}
		var raw any
		switch m := key.Material().(type) {
		case rsaPublicMaterial:
			raw = m.key
		case ecdsaPublicMaterial:
			raw = m.key
		case ed25519PublicMaterial:
			raw = m.key
		}
		der, err := x509.MarshalPKIXPublicKey(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal public key: %w", err)
		}
		return der, nil
	case cryptoDomain.FormatJWK:
		return marshalJWK(key)
	default:
		return nil, fmt.Errorf("%w: %q", cryptoDomain.ErrUnsupportedFormat, format)
	}
}

func exportRaw(key *cryptoDomain.Key) ([]byte, error) {
	switch m := key.Material().(type) {
	case secretMaterial:
		return bytes.Clone(m), nil
	case ecdsaPublicMaterial:
		pub, err := m.key.ECDH()
		if err != nil {
			return nil, fmt.Errorf("failed to encode EC point: %w", err)
		}
		return pub.Bytes(), nil
	case ed25519PublicMaterial:
		return bytes.Clone(m.key), nil
	default:
		return nil, fmt.Errorf("%w: %s %s keys have no raw form", cryptoDomain.ErrInvalidAccess, key.Type(), key.Algorithm().ID())
	}
}
