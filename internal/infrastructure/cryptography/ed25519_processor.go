package cryptography

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	cryptoDomain "github.com/MGTheTrain/crypto-dispatch/internal/domain/crypto"
	"github.com/MGTheTrain/crypto-dispatch/internal/domain/cryptoalg"
	"github.com/MGTheTrain/crypto-dispatch/internal/pkg/logger"
)

type ed25519Processor struct {
	logger logger.Logger
}

// NewEd25519Processor creates and returns a new Ed25519 processor
func NewEd25519Processor(logger logger.Logger) (cryptoalg.Ed25519Processor, error) {
	return &ed25519Processor{
		logger: logger,
	}, nil
}

func (p *ed25519Processor) GenerateKeys() (ed25519.PrivateKey, ed25519.PublicKey, error) {
	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate Ed25519 keys: %w", err)
	}

	p.logger.Info("Generated Ed25519 key pairs")
	return privateKey, publicKey, nil
}

func (p *ed25519Processor) Sign(privateKey ed25519.PrivateKey, message []byte) ([]byte, error) {
	if len(privateKey) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%w: invalid Ed25519 private key", cryptoDomain.ErrKeyMismatch)
	}

	signature := ed25519.Sign(privateKey, message)
	p.logger.Debug("Ed25519 signing succeeded")
	return signature, nil
}

func (p *ed25519Processor) Verify(publicKey ed25519.PublicKey, message, signature []byte) (bool, error) {
	if len(publicKey) != ed25519.PublicKeySize {
		return false, fmt.Errorf("%w: invalid Ed25519 public key", cryptoDomain.ErrKeyMismatch)
	}
	if len(signature) != ed25519.SignatureSize {
		return false, fmt.Errorf("%w: expected %d bytes, got %d", cryptoDomain.ErrMalformedSignature, ed25519.SignatureSize, len(signature))
	}

	valid := ed25519.Verify(publicKey, message, signature)
	p.logger.Debug("Ed25519 verification completed")
	return valid, nil
}
