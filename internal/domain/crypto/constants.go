package crypto

import (
	"fmt"
	"strings"
)

// AlgorithmID names a registered cryptographic algorithm.
type AlgorithmID string

// Symmetric cipher algorithms
const (
	AESCBC           AlgorithmID = "AES-CBC"
	AESGCM           AlgorithmID = "AES-GCM"
	AESCTR           AlgorithmID = "AES-CTR"
	AESKW            AlgorithmID = "AES-KW"
	ChaCha20Poly1305 AlgorithmID = "ChaCha20-Poly1305"
)

// Digest algorithms
const (
	SHA1     AlgorithmID = "SHA-1"
	SHA256   AlgorithmID = "SHA-256"
	SHA384   AlgorithmID = "SHA-384"
	SHA512   AlgorithmID = "SHA-512"
	SHA3_256 AlgorithmID = "SHA3-256"
	SHA3_512 AlgorithmID = "SHA3-512"
)

// MAC and signature algorithms
const (
	HMAC           AlgorithmID = "HMAC"
	RSASSAPKCS1v15 AlgorithmID = "RSASSA-PKCS1-v1_5"
	RSAPSS         AlgorithmID = "RSA-PSS"
	RSAOAEP        AlgorithmID = "RSA-OAEP"
	ECDSA          AlgorithmID = "ECDSA"
	Ed25519        AlgorithmID = "Ed25519"
)

// Named curves accepted for ECDSA keys
const (
	CurveP256 = "P-256"
	CurveP384 = "P-384"
	CurveP521 = "P-521"
)

// Family groups algorithms that are served by the same backend routine set.
type Family int

const (
	FamilyUnknown Family = iota
	FamilySymmetric
	FamilyDigest
	FamilyHMAC
	FamilyRSA
	FamilyEllipticCurve
)

var familyNames = map[Family]string{
	FamilyUnknown:       "unknown",
	FamilySymmetric:     "symmetric",
	FamilyDigest:        "digest",
	FamilyHMAC:          "hmac",
	FamilyRSA:           "rsa",
	FamilyEllipticCurve: "elliptic-curve",
}

func (f Family) String() string {
	return familyNames[f]
}

var algorithmFamilies = map[AlgorithmID]Family{
	AESCBC:           FamilySymmetric,
	AESGCM:           FamilySymmetric,
	AESCTR:           FamilySymmetric,
	AESKW:            FamilySymmetric,
	ChaCha20Poly1305: FamilySymmetric,
	SHA1:             FamilyDigest,
	SHA256:           FamilyDigest,
	SHA384:           FamilyDigest,
	SHA512:           FamilyDigest,
	SHA3_256:         FamilyDigest,
	SHA3_512:         FamilyDigest,
	HMAC:             FamilyHMAC,
	RSASSAPKCS1v15:   FamilyRSA,
	RSAPSS:           FamilyRSA,
	RSAOAEP:          FamilyRSA,
	ECDSA:            FamilyEllipticCurve,
	Ed25519:          FamilyEllipticCurve,
}

// lookup table keyed by the lower-cased name
var algorithmsByName = func() map[string]AlgorithmID {
	names := make(map[string]AlgorithmID, len(algorithmFamilies))
	for id := range algorithmFamilies {
		names[strings.ToLower(string(id))] = id
	}
	return names
}()

// ParseAlgorithmID resolves a case-insensitive algorithm name.
func ParseAlgorithmID(name string) (AlgorithmID, error) {
	id, ok := algorithmsByName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, name)
	}
	return id, nil
}

// AlgorithmIDs returns every registered algorithm.
func AlgorithmIDs() []AlgorithmID {
	ids := make([]AlgorithmID, 0, len(algorithmFamilies))
	for id := range algorithmFamilies {
		ids = append(ids, id)
	}
	return ids
}

// Family reports which backend family serves the algorithm.
func (id AlgorithmID) Family() Family {
	return algorithmFamilies[id]
}

// IsDigest reports whether id names a hash function.
func (id AlgorithmID) IsDigest() bool {
	return id.Family() == FamilyDigest
}

func (id AlgorithmID) String() string {
	return string(id)
}
