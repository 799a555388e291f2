package cryptoalg

import (
	"crypto"
	"crypto/rsa"
)

// RSAProcessor handles RSA asymmetric cryptographic operations.
// RSA supports both encryption/decryption (OAEP) AND digital signatures (PKCS#1 v1.5, PSS).
type RSAProcessor interface {
	// GenerateKeys generates an RSA key pair with the specified modulus length and public exponent.
	// Recommended sizes: 2048 (minimum), 3072, 4096 bits.
	GenerateKeys(bits, exponent int) (*rsa.PrivateKey, *rsa.PublicKey, error)

	// EncryptOAEP encrypts plaintext using RSA-OAEP with the public key.
	// NOTE: RSA can only encrypt small amounts of data (< key size - padding).
	EncryptOAEP(h crypto.Hash, publicKey *rsa.PublicKey, label, plaintext []byte) ([]byte, error)

	// DecryptOAEP decrypts RSA-OAEP ciphertext using the private key.
	DecryptOAEP(h crypto.Hash, privateKey *rsa.PrivateKey, label, ciphertext []byte) ([]byte, error)

	// SignPKCS1v15 creates a RSASSA-PKCS1-v1_5 signature over the digest of data.
	SignPKCS1v15(h crypto.Hash, privateKey *rsa.PrivateKey, data []byte) ([]byte, error)

	// VerifyPKCS1v15 verifies a RSASSA-PKCS1-v1_5 signature.
	// Returns false for a mismatch and an error for a signature of the wrong length.
	VerifyPKCS1v15(h crypto.Hash, publicKey *rsa.PublicKey, data, signature []byte) (bool, error)

	// SignPSS creates a RSA-PSS signature with the given salt length in bytes.
	SignPSS(h crypto.Hash, privateKey *rsa.PrivateKey, saltLength int, data []byte) ([]byte, error)

	// VerifyPSS verifies a RSA-PSS signature.
	VerifyPSS(h crypto.Hash, publicKey *rsa.PublicKey, saltLength int, data, signature []byte) (bool, error)
}
