package cryptoalg

import (
	"crypto"
	"hash"
)

// DigestProcessor computes message digests with the SHA-1, SHA-2 and SHA-3 families.
type DigestProcessor interface {
	// Digest hashes data. The output is exactly h.Size() bytes.
	Digest(h crypto.Hash, data []byte) ([]byte, error)

	// New returns a fresh hash.Hash for h.
	New(h crypto.Hash) (hash.Hash, error)
}
