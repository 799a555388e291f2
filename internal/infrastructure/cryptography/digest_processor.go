package cryptography

import (
	"crypto"
	"crypto/sha1" //nolint:gosec // SHA-1 digests remain a supported algorithm
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"

	cryptoDomain "github.com/MGTheTrain/crypto-dispatch/internal/domain/crypto"
	"github.com/MGTheTrain/crypto-dispatch/internal/domain/cryptoalg"
	"github.com/MGTheTrain/crypto-dispatch/internal/pkg/logger"
	"golang.org/x/crypto/sha3"
)

var hashConstructors = map[crypto.Hash]func() hash.Hash{
	crypto.SHA1:     sha1.New,
	crypto.SHA256:   sha256.New,
	crypto.SHA384:   sha512.New384,
	crypto.SHA512:   sha512.New,
	crypto.SHA3_256: sha3.New256,
	crypto.SHA3_512: sha3.New512,
}

var hashesByAlgorithm = map[cryptoDomain.AlgorithmID]crypto.Hash{
	cryptoDomain.SHA1:     crypto.SHA1,
	cryptoDomain.SHA256:   crypto.SHA256,
	cryptoDomain.SHA384:   crypto.SHA384,
	cryptoDomain.SHA512:   crypto.SHA512,
	cryptoDomain.SHA3_256: crypto.SHA3_256,
	cryptoDomain.SHA3_512: crypto.SHA3_512,
}

// hashFor maps a digest algorithm onto its crypto.Hash.
func hashFor(id cryptoDomain.AlgorithmID) (crypto.Hash, error) {
	h, ok := hashesByAlgorithm[id]
	if !ok {
		return 0, fmt.Errorf("%w: %q is not a supported hash", cryptoDomain.ErrInvalidParameters, id)
	}
	return h, nil
}

type digestProcessor struct {
	logger logger.Logger
}

// NewDigestProcessor creates and returns a new digest processor
func NewDigestProcessor(logger logger.Logger) (cryptoalg.DigestProcessor, error) {
	return &digestProcessor{
		logger: logger,
	}, nil
}

func (d *digestProcessor) New(h crypto.Hash) (hash.Hash, error) {
	newHash, ok := hashConstructors[h]
	if !ok {
		return nil, fmt.Errorf("%w: hash %v", cryptoDomain.ErrUnsupportedAlgorithm, h)
	}
	return newHash(), nil
}

func (d *digestProcessor) Digest(h crypto.Hash, data []byte) ([]byte, error) {
	hasher, err := d.New(h)
	if err != nil {
		return nil, err
	}
	hasher.Write(data)

	d.logger.Debug("Computed ", h.String(), " digest")
	return hasher.Sum(nil), nil
}
