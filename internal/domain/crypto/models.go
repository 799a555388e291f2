package crypto

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// KeyType tells secret, public and private keys apart.
type KeyType string

// Key types
const (
	KeyTypeSecret  KeyType = "secret"
	KeyTypePublic  KeyType = "public"
	KeyTypePrivate KeyType = "private"
)

// KeyFormat names a key serialization.
type KeyFormat string

// Key formats
const (
	FormatRaw   KeyFormat = "raw"
	FormatPKCS8 KeyFormat = "pkcs8"
	FormatSPKI  KeyFormat = "spki"
	FormatJWK   KeyFormat = "jwk"
)

// ParseKeyFormat resolves a case-insensitive key format name.
func ParseKeyFormat(name string) (KeyFormat, error) {
	switch f := KeyFormat(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatRaw, FormatPKCS8, FormatSPKI, FormatJWK:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// UsageMask is a set of permitted key usages.
type UsageMask uint16

// Key usages
const (
	UsageEncrypt UsageMask = 1 << iota
	UsageDecrypt
	UsageSign
	UsageVerify
	UsageDeriveKey
	UsageDeriveBits
	UsageWrapKey
	UsageUnwrapKey
)

var usageNames = map[UsageMask]string{
	UsageEncrypt:    "encrypt",
	UsageDecrypt:    "decrypt",
	UsageSign:       "sign",
	UsageVerify:     "verify",
	UsageDeriveKey:  "deriveKey",
	UsageDeriveBits: "deriveBits",
	UsageWrapKey:    "wrapKey",
	UsageUnwrapKey:  "unwrapKey",
}

// Has reports whether every usage in u is present in m.
func (m UsageMask) Has(u UsageMask) bool {
	return m&u == u
}

// Names lists the usages in m in bit order.
func (m UsageMask) Names() []string {
	bits := make([]int, 0, len(usageNames))
	for u := range usageNames {
		if m&u != 0 {
			bits = append(bits, int(u))
		}
	}
	sort.Ints(bits)

	names := make([]string, len(bits))
	for i, b := range bits {
		names[i] = usageNames[UsageMask(b)]
	}
	return names
}

func (m UsageMask) String() string {
	return strings.Join(m.Names(), ",")
}

// ParseUsages builds a mask from usage names such as "sign" or "unwrapKey".
func ParseUsages(names []string) (UsageMask, error) {
	var mask UsageMask
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		found := false
		for u, n := range usageNames {
			if strings.EqualFold(n, name) {
				mask |= u
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("%w: unknown key usage %q", ErrInvalidParameters, name)
		}
	}
	return mask, nil
}

// KeyMaterial is the opaque secret or asymmetric component held by a Key.
type KeyMaterial interface {
	// Bits reports the key strength, e.g. the AES key length or the RSA modulus length.
	Bits() int
}

// AsymmetricMaterial is private key material able to produce its public half.
type AsymmetricMaterial interface {
	KeyMaterial
	Public() KeyMaterial
}

// Key is an opaque key handle bound to an algorithm.
type Key struct {
	keyType     KeyType
	extractable bool
	algorithm   *Algorithm
	usages      UsageMask
	material    KeyMaterial
}

// NewKey assembles a key handle. A key always carries a non-nil algorithm and material.
func NewKey(keyType KeyType, algorithm *Algorithm, extractable bool, usages UsageMask, material KeyMaterial) (*Key, error) {
	if algorithm == nil {
		return nil, errors.New("key algorithm cannot be nil")
	}
	if material == nil {
		return nil, errors.New("key material cannot be nil")
	}
	switch keyType {
	case KeyTypeSecret, KeyTypePublic, KeyTypePrivate:
	default:
		return nil, fmt.Errorf("unknown key type %q", keyType)
	}

	return &Key{
		keyType:     keyType,
		extractable: extractable,
		algorithm:   algorithm,
		usages:      usages,
		material:    material,
	}, nil
}

// Type returns the key type.
func (k *Key) Type() KeyType { return k.keyType }

// Extractable reports whether the key may be exported.
func (k *Key) Extractable() bool { return k.extractable }

// Algorithm returns the algorithm the key is bound to.
func (k *Key) Algorithm() *Algorithm { return k.algorithm }

// Usages returns the permitted usages.
func (k *Key) Usages() UsageMask { return k.usages }

// Material returns the underlying key material.
func (k *Key) Material() KeyMaterial { return k.material }

// Allows reports whether the key permits usage u.
func (k *Key) Allows(u UsageMask) bool { return k.usages.Has(u) }

// PublicKey derives the public half of a private key. The result is always
// extractable and keeps only the usages that are legal on a public key.
func (k *Key) PublicKey() (*Key, error) {
	if k.keyType != KeyTypePrivate {
		return nil, fmt.Errorf("%w: %s key has no public half", ErrInvalidAccess, k.keyType)
	}
	asym, ok := k.material.(AsymmetricMaterial)
	if !ok {
		return nil, fmt.Errorf("%w: key material %T is not asymmetric", ErrKeyMismatch, k.material)
	}

	return &Key{
		keyType:     KeyTypePublic,
		extractable: true,
		algorithm:   k.algorithm,
		usages:      k.usages & PublicUsages(k.algorithm.ID()),
		material:    asym.Public(),
	}, nil
}
