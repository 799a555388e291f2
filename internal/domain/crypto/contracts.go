package crypto

import "context"

// Backend performs the actual cryptographic work for each dispatcher verb.
// Every routine either returns its output with a nil error or fails with a
// non-nil error and no output.
type Backend interface {
	// Encrypt enciphers data with key under alg.
	Encrypt(ctx context.Context, alg *Algorithm, key *Key, data []byte) ([]byte, error)

	// Decrypt reverses Encrypt. Malformed ciphertext, tag mismatch and wrong keys are errors.
	Decrypt(ctx context.Context, alg *Algorithm, key *Key, data []byte) ([]byte, error)

	// Digest hashes data. The output length is fixed per algorithm.
	Digest(ctx context.Context, alg *Algorithm, data []byte) ([]byte, error)

	// GenerateKey creates a key carrying exactly alg, extractable and usages.
	// For key pair algorithms the private key is returned.
	GenerateKey(ctx context.Context, alg *Algorithm, extractable bool, usages UsageMask) (*Key, error)

	// ImportKey parses keyData in format. alg may be nil when the format itself
	// names the algorithm.
	ImportKey(ctx context.Context, format KeyFormat, keyData []byte, alg *Algorithm, extractable bool, usages UsageMask) (*Key, error)

	// Sign produces a signature or MAC over data.
	Sign(ctx context.Context, alg *Algorithm, key *Key, data []byte) ([]byte, error)

	// VerifySignature checks signature over data. A well-formed signature that
	// does not match yields (false, nil); an error means no verdict was reached.
	VerifySignature(ctx context.Context, alg *Algorithm, key *Key, signature, data []byte) (bool, error)
}

// Dispatcher routes requests to a Backend and reports each outcome exactly
// once through a ResultSink.
type Dispatcher interface {
	Encrypt(ctx context.Context, alg *Algorithm, key *Key, data []byte, sink ResultSink)
	Decrypt(ctx context.Context, alg *Algorithm, key *Key, data []byte, sink ResultSink)
	Digest(ctx context.Context, alg *Algorithm, data []byte, sink ResultSink)
	GenerateKey(ctx context.Context, alg *Algorithm, extractable bool, usages UsageMask, sink ResultSink)
	ImportKey(ctx context.Context, format KeyFormat, keyData []byte, alg *Algorithm, extractable bool, usages UsageMask, sink ResultSink)
	Sign(ctx context.Context, alg *Algorithm, key *Key, data []byte, sink ResultSink)
	VerifySignature(ctx context.Context, alg *Algorithm, key *Key, signature, data []byte, sink ResultSink)

	// Dispatch routes req by its Operation.
	Dispatch(ctx context.Context, req *Request, sink ResultSink)

	// Submit dispatches req and returns a future holding its outcome.
	Submit(ctx context.Context, req *Request) *Future
}
