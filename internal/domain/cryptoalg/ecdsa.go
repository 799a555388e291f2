package cryptoalg

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
)

// ECDSAProcessor handles elliptic curve (ECDSA) cryptographic operations.
// ECDSA is used for digital signatures but NOT for encryption.
// Signatures use the fixed width r||s encoding.
type ECDSAProcessor interface {
	// GenerateKeys generates an ECDSA key pair on the specified elliptic curve.
	// Supported curves: P-256, P-384, P-521.
	GenerateKeys(curve elliptic.Curve) (*ecdsa.PrivateKey, *ecdsa.PublicKey, error)

	// Sign creates a digital signature of the message digest using ECDSA with the private key.
	Sign(h crypto.Hash, privateKey *ecdsa.PrivateKey, message []byte) ([]byte, error)

	// Verify verifies an ECDSA signature using the public key.
	// Returns false for a mismatch and an error for a signature of the wrong length.
	Verify(h crypto.Hash, publicKey *ecdsa.PublicKey, message, signature []byte) (bool, error)
}
