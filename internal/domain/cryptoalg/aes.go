package cryptoalg

// AESProcessor handles AES symmetric operations in the CBC, GCM, CTR and KW modes.
// Key sizes are 16 (AES-128), 24 (AES-192) or 32 (AES-256) bytes.
type AESProcessor interface {
	// GenerateKey generates a random AES key of the specified size in bits.
	GenerateKey(bits int) ([]byte, error)

	// EncryptCBC encrypts plaintext with PKCS#7 padding under a 16 byte IV.
	EncryptCBC(key, iv, plaintext []byte) ([]byte, error)

	// DecryptCBC decrypts ciphertext and strips its PKCS#7 padding.
	DecryptCBC(key, iv, ciphertext []byte) ([]byte, error)

	// EncryptGCM seals plaintext and appends a tag of tagSize bytes.
	EncryptGCM(key, iv, additionalData []byte, tagSize int, plaintext []byte) ([]byte, error)

	// DecryptGCM opens ciphertext sealed by EncryptGCM.
	DecryptGCM(key, iv, additionalData []byte, tagSize int, ciphertext []byte) ([]byte, error)

	// XORKeyStreamCTR applies the CTR key stream. counterBits is the width of the
	// incrementing rightmost part of the 16 byte counter block.
	XORKeyStreamCTR(key, counter []byte, counterBits int, data []byte) ([]byte, error)

	// WrapKW wraps data (a multiple of 8 bytes, at least 16) per RFC 3394.
	WrapKW(kek, data []byte) ([]byte, error)

	// UnwrapKW reverses WrapKW and checks the integrity value.
	UnwrapKW(kek, wrapped []byte) ([]byte, error)
}
