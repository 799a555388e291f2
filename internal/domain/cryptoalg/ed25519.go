package cryptoalg

import "crypto/ed25519"

// Ed25519Processor handles Ed25519 signatures.
type Ed25519Processor interface {
	GenerateKeys() (ed25519.PrivateKey, ed25519.PublicKey, error)
	Sign(privateKey ed25519.PrivateKey, message []byte) ([]byte, error)
	Verify(publicKey ed25519.PublicKey, message, signature []byte) (bool, error)
}
