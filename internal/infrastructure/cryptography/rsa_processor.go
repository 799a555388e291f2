package cryptography

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"fmt"
	"math/big"

	cryptoDomain "github.com/MGTheTrain/crypto-dispatch/internal/domain/crypto"
	"github.com/MGTheTrain/crypto-dispatch/internal/domain/cryptoalg"
	"github.com/MGTheTrain/crypto-dispatch/internal/pkg/logger"
)

const defaultPublicExponent = 65537

// rsaProcessor struct that implements the RSAProcessor interface
type rsaProcessor struct {
	digests cryptoalg.DigestProcessor
	logger  logger.Logger
}

// NewRSAProcessor creates and returns a new instance of rsaProcessor
func NewRSAProcessor(digests cryptoalg.DigestProcessor, logger logger.Logger) (cryptoalg.RSAProcessor, error) {
	if digests == nil {
		return nil, fmt.Errorf("digest processor cannot be nil")
	}
	return &rsaProcessor{
		digests: digests,
		logger:  logger,
	}, nil
}

// GenerateKeys generates an RSA key pair with the specified bit size.
// Recommended sizes: 2048 (minimum), 3072, 4096 bits. A zero exponent selects 65537.
func (r *rsaProcessor) GenerateKeys(bits, exponent int) (*rsa.PrivateKey, *rsa.PublicKey, error) {
	if exponent == 0 {
		exponent = defaultPublicExponent
	}
	if exponent != defaultPublicExponent {
		// crypto/rsa only generates keys with e = 65537
		return nil, nil, fmt.Errorf("%w: unsupported public exponent %d", cryptoDomain.ErrInvalidParameters, exponent)
	}
	if bits < 1024 || bits%8 != 0 {
		return nil, nil, fmt.Errorf("%w: unsupported modulus length %d", cryptoDomain.ErrInvalidParameters, bits)
	}

	privateKey, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate RSA keys: %w", err)
	}
	publicKey := &privateKey.PublicKey
	r.logger.Info("Generated RSA key pairs")
	return privateKey, publicKey, nil
}

func (r *rsaProcessor) digest(h crypto.Hash, data []byte) ([]byte, error) {
	return r.digests.Digest(h, data)
}

// EncryptOAEP encrypts plaintext using RSA-OAEP with the public key.
func (r *rsaProcessor) EncryptOAEP(h crypto.Hash, publicKey *rsa.PublicKey, label, plaintext []byte) ([]byte, error) {
	if publicKey == nil {
		return nil, errors.New("public key cannot be nil")
	}
	hasher, err := r.digests.New(h)
	if err != nil {
		return nil, err
	}

	ciphertext, err := rsa.EncryptOAEP(hasher, rand.Reader, publicKey, plaintext, label)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encrypt data: %v", cryptoDomain.ErrOperationFailed, err)
	}

	r.logger.Debug("RSA encryption succeeded")
	return ciphertext, nil
}

// DecryptOAEP decrypts RSA-OAEP ciphertext using the private key.
func (r *rsaProcessor) DecryptOAEP(h crypto.Hash, privateKey *rsa.PrivateKey, label, ciphertext []byte) ([]byte, error) {
	if privateKey == nil {
		return nil, fmt.Errorf("private key cannot be nil")
	}
	hasher, err := r.digests.New(h)
	if err != nil {
		return nil, err
	}

	plaintext, err := rsa.DecryptOAEP(hasher, rand.Reader, privateKey, ciphertext, label)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decrypt data: %v", cryptoDomain.ErrOperationFailed, err)
	}

	r.logger.Debug("RSA decryption succeeded")
	return plaintext, nil
}

// SignPKCS1v15 creates a RSASSA-PKCS1-v1_5 signature with the private key.
func (r *rsaProcessor) SignPKCS1v15(h crypto.Hash, privateKey *rsa.PrivateKey, data []byte) ([]byte, error) {
	if privateKey == nil {
		return nil, fmt.Errorf("private key cannot be nil")
	}
	hashed, err := r.digest(h, data)
	if err != nil {
		return nil, err
	}

	signature, err := rsa.SignPKCS1v15(rand.Reader, privateKey, h, hashed)
	if err != nil {
		return nil, fmt.Errorf("failed to sign data: %w", err)
	}

	r.logger.Debug("RSA signing succeeded")
	return signature, nil
}

// VerifyPKCS1v15 verifies a RSASSA-PKCS1-v1_5 signature using the public key.
func (r *rsaProcessor) VerifyPKCS1v15(h crypto.Hash, publicKey *rsa.PublicKey, data, signature []byte) (bool, error) {
	hashed, err := r.checkSignature(h, publicKey, data, signature)
	if err != nil {
		return false, err
	}

	valid := rsa.VerifyPKCS1v15(publicKey, h, hashed, signature) == nil
	r.logger.Debug("RSA signature verification completed")
	return valid, nil
}

// SignPSS creates a digital signature using RSA-PSS with the private key.
func (r *rsaProcessor) SignPSS(h crypto.Hash, privateKey *rsa.PrivateKey, saltLength int, data []byte) ([]byte, error) {
	if privateKey == nil {
		return nil, fmt.Errorf("private key cannot be nil")
	}
	hashed, err := r.digest(h, data)
	if err != nil {
		return nil, err
	}

	signature, err := rsa.SignPSS(rand.Reader, privateKey, h, hashed, &rsa.PSSOptions{SaltLength: saltLength, Hash: h})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to sign data: %v", cryptoDomain.ErrInvalidParameters, err)
	}

	r.logger.Debug("RSA-PSS signing succeeded")
	return signature, nil
}

// VerifyPSS verifies an RSA-PSS signature using the public key.
func (r *rsaProcessor) VerifyPSS(h crypto.Hash, publicKey *rsa.PublicKey, saltLength int, data, signature []byte) (bool, error) {
	hashed, err := r.checkSignature(h, publicKey, data, signature)
	if err != nil {
		return false, err
	}

	valid := rsa.VerifyPSS(publicKey, h, hashed, signature, &rsa.PSSOptions{SaltLength: saltLength, Hash: h}) == nil
	r.logger.Debug("RSA-PSS signature verification completed")
	return valid, nil
}

// checkSignature rejects signatures that cannot be an RSA signature for the
// key at all and returns the message digest otherwise.
func (r *rsaProcessor) checkSignature(h crypto.Hash, publicKey *rsa.PublicKey, data, signature []byte) ([]byte, error) {
	if publicKey == nil {
		return nil, fmt.Errorf("public key cannot be nil")
	}
	if len(signature) != publicKey.Size() {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", cryptoDomain.ErrMalformedSignature, publicKey.Size(), len(signature))
	}
	if new(big.Int).SetBytes(signature).Cmp(publicKey.N) >= 0 {
		return nil, fmt.Errorf("%w: signature representative out of range", cryptoDomain.ErrMalformedSignature)
	}
	return r.digest(h, data)
}
