package cryptoalg

// ChaChaProcessor handles ChaCha20-Poly1305 authenticated encryption.
type ChaChaProcessor interface {
	// GenerateKey generates a random 32 byte key.
	GenerateKey() ([]byte, error)

	// Seal encrypts and authenticates plaintext under a 12 byte nonce.
	Seal(key, nonce, additionalData, plaintext []byte) ([]byte, error)

	// Open authenticates and decrypts ciphertext produced by Seal.
	Open(key, nonce, additionalData, ciphertext []byte) ([]byte, error)
}
