package cryptography

import (
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	cryptoDomain "github.com/MGTheTrain/crypto-dispatch/internal/domain/crypto"
	"github.com/MGTheTrain/crypto-dispatch/internal/domain/cryptoalg"
	"github.com/MGTheTrain/crypto-dispatch/internal/pkg/logger"
	"golang.org/x/crypto/chacha20poly1305"
)

type chachaProcessor struct {
	logger logger.Logger
}

// NewChaChaProcessor creates and returns a new ChaCha20-Poly1305 processor
func NewChaChaProcessor(logger logger.Logger) (cryptoalg.ChaChaProcessor, error) {
	return &chachaProcessor{
		logger: logger,
	}, nil
}

func (c *chachaProcessor) GenerateKey() ([]byte, error) {
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate ChaCha20-Poly1305 key: %w", err)
	}

	c.logger.Debug("Generated ChaCha20-Poly1305 key")
	return key, nil
}

func (c *chachaProcessor) Seal(key, nonce, additionalData, plaintext []byte) ([]byte, error) {
	aead, err := newChaCha(key, nonce)
	if err != nil {
		return nil, err
	}

	ciphertext := aead.Seal(nil, nonce, plaintext, additionalData)
	c.logger.Debug("ChaCha20-Poly1305 encryption succeeded")
	return ciphertext, nil
}

func (c *chachaProcessor) Open(key, nonce, additionalData, ciphertext []byte) ([]byte, error) {
	aead, err := newChaCha(key, nonce)
	if err != nil {
		return nil, err
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, additionalData)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrOperationFailed, err)
	}

	c.logger.Debug("ChaCha20-Poly1305 decryption succeeded")
	return plaintext, nil
}

func newChaCha(key, nonce []byte) (cipher.AEAD, error) {
	if len(nonce) != chacha20poly1305.NonceSize {
		return nil, fmt.Errorf("%w: nonce must be %d bytes", cryptoDomain.ErrInvalidParameters, chacha20poly1305.NonceSize)
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrInvalidParameters, err)
	}
	return aead, nil
}
