package cryptoalg

import "crypto"

// HMACProcessor computes and checks keyed message authentication codes.
type HMACProcessor interface {
	// GenerateKey generates a random key of the given size in bits. Zero selects the block size of h.
	GenerateKey(h crypto.Hash, bits int) ([]byte, error)

	// Sign computes the MAC of data.
	Sign(h crypto.Hash, key, data []byte) ([]byte, error)

	// Verify recomputes the MAC and compares it in constant time.
	Verify(h crypto.Hash, key, mac, data []byte) (bool, error)
}
