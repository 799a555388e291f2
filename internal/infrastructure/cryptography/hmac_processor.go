package cryptography

import (
	"crypto"
	"crypto/hmac"
	"crypto/rand"
	"fmt"
	"hash"

	cryptoDomain "github.com/MGTheTrain/crypto-dispatch/internal/domain/crypto"
	"github.com/MGTheTrain/crypto-dispatch/internal/domain/cryptoalg"
	"github.com/MGTheTrain/crypto-dispatch/internal/pkg/logger"
)

type hmacProcessor struct {
	digests cryptoalg.DigestProcessor
	logger  logger.Logger
}

// NewHMACProcessor creates and returns a new HMAC processor backed by digests
func NewHMACProcessor(digests cryptoalg.DigestProcessor, logger logger.Logger) (cryptoalg.HMACProcessor, error) {
	if digests == nil {
		return nil, fmt.Errorf("digest processor cannot be nil")
	}
	return &hmacProcessor{
		digests: digests,
		logger:  logger,
	}, nil
}

// GenerateKey generates a random HMAC key. Lengths must be a whole number of bytes.
func (p *hmacProcessor) GenerateKey(h crypto.Hash, bits int) ([]byte, error) {
	if bits == 0 {
		hasher, err := p.digests.New(h)
		if err != nil {
			return nil, err
		}
		bits = hasher.BlockSize() * 8
	}
	if bits < 0 || bits%8 != 0 {
		return nil, fmt.Errorf("%w: HMAC key length must be a positive multiple of 8 bits", cryptoDomain.ErrInvalidParameters)
	}

	key := make([]byte, bits/8)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate HMAC key: %w", err)
	}

	p.logger.Debug("Generated HMAC key")
	return key, nil
}

func (p *hmacProcessor) compute(h crypto.Hash, key, data []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, fmt.Errorf("%w: HMAC key cannot be empty", cryptoDomain.ErrInvalidParameters)
	}
	if _, err := p.digests.New(h); err != nil {
		return nil, err
	}

	mac := hmac.New(func() hash.Hash {
		hasher, _ := p.digests.New(h)
		return hasher
	}, key)
	mac.Write(data)
	return mac.Sum(nil), nil
}

func (p *hmacProcessor) Sign(h crypto.Hash, key, data []byte) ([]byte, error) {
	mac, err := p.compute(h, key, data)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("HMAC signing succeeded")
	return mac, nil
}

// Verify reports a MAC of the wrong length as a mismatch, not an error.
func (p *hmacProcessor) Verify(h crypto.Hash, key, mac, data []byte) (bool, error) {
	expected, err := p.compute(h, key, data)
	if err != nil {
		return false, err
	}

	match := hmac.Equal(expected, mac)
	p.logger.Debug("HMAC verification completed")
	return match, nil
}
