package cryptography

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"fmt"
	"math/big"

	cryptoDomain "github.com/MGTheTrain/crypto-dispatch/internal/domain/crypto"
	"github.com/MGTheTrain/crypto-dispatch/internal/domain/cryptoalg"
	"github.com/MGTheTrain/crypto-dispatch/internal/pkg/logger"
)

// ecdsaProcessor struct that implements the ECDSAProcessor interface
type ecdsaProcessor struct {
	digests cryptoalg.DigestProcessor
	logger  logger.Logger
}

// NewECDSAProcessor creates and returns a new instance of ecdsaProcessor
func NewECDSAProcessor(digests cryptoalg.DigestProcessor, logger logger.Logger) (cryptoalg.ECDSAProcessor, error) {
	if digests == nil {
		return nil, fmt.Errorf("digest processor cannot be nil")
	}
	return &ecdsaProcessor{
		digests: digests,
		logger:  logger,
	}, nil
}

// GenerateKeys generates an ECDSA key pair on the specified elliptic curve.
// Supported curves: P-256, P-384 P-521.
func (e *ecdsaProcessor) GenerateKeys(curve elliptic.Curve) (*ecdsa.PrivateKey, *ecdsa.PublicKey, error) {
	privateKey, err := ecdsa.GenerateKey(curve, rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate elliptic curve keys: %w", err)
	}

	publicKey := &privateKey.PublicKey
	e.logger.Info("Generated EC key pairs")
	return privateKey, publicKey, nil
}

// Sign creates a digital signature of the message using ECDSA with the private key.
// The signature is r||s, each left padded to the curve order size.
func (e *ecdsaProcessor) Sign(h crypto.Hash, privateKey *ecdsa.PrivateKey, message []byte) ([]byte, error) {
	if privateKey == nil {
		return nil, fmt.Errorf("private key cannot be nil")
	}

	// Check if the private key is valid (D should not be zero)
	if privateKey.D == nil || privateKey.D.Sign() == 0 {
		return nil, fmt.Errorf("invalid private key: D cannot be zero")
	}

	hash, err := e.digests.Digest(h, message)
	if err != nil {
		return nil, err
	}
	r, s, err := ecdsa.Sign(rand.Reader, privateKey, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to sign message: %w", err)
	}

	size := curveByteSize(privateKey.Curve)
	signature := make([]byte, 2*size)
	r.FillBytes(signature[:size])
	s.FillBytes(signature[size:])

	e.logger.Debug("ECDSA signing succeeded")
	return signature, nil
}

// Verify verifies an ECDSA signature using the public key.
// A signature that is not exactly r||s for the key's curve is malformed.
func (e *ecdsaProcessor) Verify(h crypto.Hash, publicKey *ecdsa.PublicKey, message, signature []byte) (bool, error) {
	if publicKey == nil {
		return false, fmt.Errorf("public key cannot be nil")
	}

	size := curveByteSize(publicKey.Curve)
	if len(signature) != 2*size {
		return false, fmt.Errorf("%w: expected %d bytes, got %d", cryptoDomain.ErrMalformedSignature, 2*size, len(signature))
	}

	hash, err := e.digests.Digest(h, message)
	if err != nil {
		return false, err
	}

	// Split the signature into r and s
	rInt := new(big.Int).SetBytes(signature[:size])
	sInt := new(big.Int).SetBytes(signature[size:])

	valid := ecdsa.Verify(publicKey, hash, rInt, sInt)

	e.logger.Debug("ECDSA verification completed")
	return valid, nil
}

func curveByteSize(curve elliptic.Curve) int {
	return (curve.Params().BitSize + 7) / 8
}
