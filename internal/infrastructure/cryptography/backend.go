package cryptography

import (
	"context"
	"crypto"
	"fmt"

	cryptoDomain "github.com/MGTheTrain/crypto-dispatch/internal/domain/crypto"
	"github.com/MGTheTrain/crypto-dispatch/internal/domain/cryptoalg"
	"github.com/MGTheTrain/crypto-dispatch/internal/pkg/logger"
)

const defaultGCMTagLength = 128

// softwareBackend serves every dispatcher verb with the Go standard crypto
// packages and golang.org/x/crypto, routing each request to the processor of
// its algorithm family.
type softwareBackend struct {
	aes     cryptoalg.AESProcessor
	chacha  cryptoalg.ChaChaProcessor
	digests cryptoalg.DigestProcessor
	hmac    cryptoalg.HMACProcessor
	rsa     cryptoalg.RSAProcessor
	ecdsa   cryptoalg.ECDSAProcessor
	ed25519 cryptoalg.Ed25519Processor
	logger  logger.Logger
}

// NewSoftwareBackend creates and returns a backend wired with all algorithm processors
func NewSoftwareBackend(logger logger.Logger) (cryptoDomain.Backend, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	digests, err := NewDigestProcessor(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create digest processor: %w", err)
	}
	aesProcessor, err := NewAESProcessor(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES processor: %w", err)
	}
	chachaProcessor, err := NewChaChaProcessor(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create ChaCha20-Poly1305 processor: %w", err)
	}
	hmacProcessor, err := NewHMACProcessor(digests, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create HMAC processor: %w", err)
	}
	rsaProcessor, err := NewRSAProcessor(digests, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create RSA processor: %w", err)
	}
	ecdsaProcessor, err := NewECDSAProcessor(digests, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create ECDSA processor: %w", err)
	}
	ed25519Processor, err := NewEd25519Processor(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create Ed25519 processor: %w", err)
	}

	return &softwareBackend{
		aes:     aesProcessor,
		chacha:  chachaProcessor,
		digests: digests,
		hmac:    hmacProcessor,
		rsa:     rsaProcessor,
		ecdsa:   ecdsaProcessor,
		ed25519: ed25519Processor,
		logger:  logger,
	}, nil
}

func unsupported(op cryptoDomain.Operation, alg *cryptoDomain.Algorithm) error {
	return fmt.Errorf("%w: %s does not support %s", cryptoDomain.ErrUnsupportedAlgorithm, alg.ID(), op)
}

// params extracts the operation parameters of type T, failing when they are absent.
func params[T cryptoDomain.Params](alg *cryptoDomain.Algorithm) (T, error) {
	p, ok := alg.Params().(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %s needs %T parameters", cryptoDomain.ErrInvalidParameters, alg.ID(), zero)
	}
	return p, nil
}

// checkKey verifies key is bound to alg and permits op.
func checkKey(op cryptoDomain.Operation, alg *cryptoDomain.Algorithm, key *cryptoDomain.Key) error {
	if key == nil {
		return fmt.Errorf("%w: %s needs a key", cryptoDomain.ErrInvalidParameters, op)
	}
	if key.Algorithm().ID() != alg.ID() {
		return fmt.Errorf("%w: key is bound to %s, not %s", cryptoDomain.ErrKeyMismatch, key.Algorithm().ID(), alg.ID())
	}
	if required := cryptoDomain.RequiredUsage(op, alg.ID()); !key.Allows(required) {
		return fmt.Errorf("%w: key usages %q do not include %q", cryptoDomain.ErrInvalidAccess, key.Usages(), required)
	}
	return nil
}

// keyHash returns the hash an RSA or HMAC key was bound to when it was created.
func keyHash(key *cryptoDomain.Key) (crypto.Hash, error) {
	id, ok := algorithmHash(key.Algorithm())
	if !ok {
		return 0, fmt.Errorf("%w: key carries no hash", cryptoDomain.ErrInvalidParameters)
	}
	return hashFor(id)
}

func (b *softwareBackend) Encrypt(ctx context.Context, alg *cryptoDomain.Algorithm, key *cryptoDomain.Key, data []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkKey(cryptoDomain.OpEncrypt, alg, key); err != nil {
		return nil, err
	}
	return b.cipher(cryptoDomain.OpEncrypt, alg, key, data)
}

func (b *softwareBackend) Decrypt(ctx context.Context, alg *cryptoDomain.Algorithm, key *cryptoDomain.Key, data []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkKey(cryptoDomain.OpDecrypt, alg, key); err != nil {
		return nil, err
	}
	return b.cipher(cryptoDomain.OpDecrypt, alg, key, data)
}

// cipher runs encryption or decryption, which differ only in the processor call.
func (b *softwareBackend) cipher(op cryptoDomain.Operation, alg *cryptoDomain.Algorithm, key *cryptoDomain.Key, data []byte) ([]byte, error) {
	encrypt := op == cryptoDomain.OpEncrypt

	if alg.ID() == cryptoDomain.RSAOAEP {
		return b.rsaOAEP(encrypt, alg, key, data)
	}

	secret, err := secretOf(key)
	if err != nil {
		return nil, err
	}

	switch alg.ID() {
	case cryptoDomain.AESCBC:
		p, err := params[*cryptoDomain.AESCBCParams](alg)
		if err != nil {
			return nil, err
		}
		if encrypt {
			return b.aes.EncryptCBC(secret, p.IV, data)
		}
		return b.aes.DecryptCBC(secret, p.IV, data)
	case cryptoDomain.AESGCM:
		p, err := params[*cryptoDomain.AESGCMParams](alg)
		if err != nil {
			return nil, err
		}
		tagLength := p.TagLength
		if tagLength == 0 {
			tagLength = defaultGCMTagLength
		}
		if tagLength%8 != 0 {
			return nil, fmt.Errorf("%w: GCM tag length %d", cryptoDomain.ErrInvalidParameters, tagLength)
		}
		if encrypt {
			return b.aes.EncryptGCM(secret, p.IV, p.AdditionalData, tagLength/8, data)
		}
		return b.aes.DecryptGCM(secret, p.IV, p.AdditionalData, tagLength/8, data)
	case cryptoDomain.AESCTR:
		p, err := params[*cryptoDomain.AESCTRParams](alg)
		if err != nil {
			return nil, err
		}
		return b.aes.XORKeyStreamCTR(secret, p.Counter, p.Length, data)
	case cryptoDomain.AESKW:
		if encrypt {
			return b.aes.WrapKW(secret, data)
		}
		return b.aes.UnwrapKW(secret, data)
	case cryptoDomain.ChaCha20Poly1305:
		p, err := params[*cryptoDomain.ChaChaParams](alg)
		if err != nil {
			return nil, err
		}
		if encrypt {
			return b.chacha.Seal(secret, p.Nonce, p.AdditionalData, data)
		}
		return b.chacha.Open(secret, p.Nonce, p.AdditionalData, data)
	default:
		return nil, unsupported(op, alg)
	}
}

func (b *softwareBackend) rsaOAEP(encrypt bool, alg *cryptoDomain.Algorithm, key *cryptoDomain.Key, data []byte) ([]byte, error) {
	h, err := keyHash(key)
	if err != nil {
		return nil, err
	}
	var label []byte
	if p, ok := alg.Params().(*cryptoDomain.RSAOAEPParams); ok {
		label = p.Label
	}

	if encrypt {
		publicKey, err := rsaPublicOf(key)
		if err != nil {
			return nil, err
		}
		return b.rsa.EncryptOAEP(h, publicKey, label, data)
	}
	privateKey, err := rsaPrivateOf(key)
	if err != nil {
		return nil, err
	}
	return b.rsa.DecryptOAEP(h, privateKey, label, data)
}

func (b *softwareBackend) Digest(ctx context.Context, alg *cryptoDomain.Algorithm, data []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !alg.ID().IsDigest() {
		return nil, unsupported(cryptoDomain.OpDigest, alg)
	}
	h, err := hashFor(alg.ID())
	if err != nil {
		return nil, err
	}
	return b.digests.Digest(h, data)
}

func (b *softwareBackend) GenerateKey(ctx context.Context, alg *cryptoDomain.Algorithm, extractable bool, usages cryptoDomain.UsageMask) (*cryptoDomain.Key, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	allowed := cryptoDomain.AllowedUsages(alg.ID())
	if allowed == 0 {
		return nil, unsupported(cryptoDomain.OpGenerateKey, alg)
	}
	if usages == 0 {
		return nil, fmt.Errorf("%w: at least one usage is required", cryptoDomain.ErrInvalidParameters)
	}
	if usages&^allowed != 0 {
		return nil, fmt.Errorf("%w: usages %q are not allowed for %s", cryptoDomain.ErrInvalidParameters, usages&^allowed, alg.ID())
	}

	keyType, keyAlg, material, err := b.generateMaterial(alg)
	if err != nil {
		return nil, err
	}
	b.logger.Info("Generated ", keyType, " ", keyAlg.ID(), " key")
	return cryptoDomain.NewKey(keyType, keyAlg, extractable, usages, material)
}

func (b *softwareBackend) generateMaterial(alg *cryptoDomain.Algorithm) (cryptoDomain.KeyType, *cryptoDomain.Algorithm, cryptoDomain.KeyMaterial, error) {
	switch id := alg.ID(); id {
	case cryptoDomain.AESCBC, cryptoDomain.AESGCM, cryptoDomain.AESCTR, cryptoDomain.AESKW:
		p, err := params[*cryptoDomain.AESKeyGenParams](alg)
		if err != nil {
			return "", nil, nil, err
		}
		secret, err := b.aes.GenerateKey(p.Length)
		if err != nil {
			return "", nil, nil, err
		}
		return cryptoDomain.KeyTypeSecret, alg, secretMaterial(secret), nil

	case cryptoDomain.ChaCha20Poly1305:
		secret, err := b.chacha.GenerateKey()
		if err != nil {
			return "", nil, nil, err
		}
		return cryptoDomain.KeyTypeSecret, alg, secretMaterial(secret), nil

	case cryptoDomain.HMAC:
		p, err := params[*cryptoDomain.HMACParams](alg)
		if err != nil {
			return "", nil, nil, err
		}
		h, err := hashFor(p.Hash)
		if err != nil {
			return "", nil, nil, err
		}
		secret, err := b.hmac.GenerateKey(h, p.Length)
		if err != nil {
			return "", nil, nil, err
		}
		keyAlg, err := cryptoDomain.NewAlgorithm(id, &cryptoDomain.HMACParams{Hash: p.Hash, Length: len(secret) * 8})
		if err != nil {
			return "", nil, nil, err
		}
		return cryptoDomain.KeyTypeSecret, keyAlg, secretMaterial(secret), nil

	case cryptoDomain.RSASSAPKCS1v15, cryptoDomain.RSAPSS, cryptoDomain.RSAOAEP:
		p, err := params[*cryptoDomain.RSAHashedKeyGenParams](alg)
		if err != nil {
			return "", nil, nil, err
		}
		if _, err := hashFor(p.Hash); err != nil {
			return "", nil, nil, err
		}
		privateKey, _, err := b.rsa.GenerateKeys(p.ModulusLength, p.PublicExponent)
		if err != nil {
			return "", nil, nil, err
		}
		return cryptoDomain.KeyTypePrivate, alg, rsaPrivateMaterial{key: privateKey}, nil

	case cryptoDomain.ECDSA:
		p, err := params[*cryptoDomain.ECKeyParams](alg)
		if err != nil {
			return "", nil, nil, err
		}
		curve, err := curveByName(p.NamedCurve)
		if err != nil {
			return "", nil, nil, err
		}
		privateKey, _, err := b.ecdsa.GenerateKeys(curve)
		if err != nil {
			return "", nil, nil, err
		}
		return cryptoDomain.KeyTypePrivate, ecdsaAlgorithm(curve), ecdsaPrivateMaterial{key: privateKey}, nil

	case cryptoDomain.Ed25519:
		privateKey, _, err := b.ed25519.GenerateKeys()
		if err != nil {
			return "", nil, nil, err
		}
		return cryptoDomain.KeyTypePrivate, alg, ed25519PrivateMaterial{key: privateKey}, nil

	default:
		return "", nil, nil, unsupported(cryptoDomain.OpGenerateKey, alg)
	}
}

func (b *softwareBackend) ImportKey(ctx context.Context, format cryptoDomain.KeyFormat, keyData []byte, alg *cryptoDomain.Algorithm, extractable bool, usages cryptoDomain.UsageMask) (*cryptoDomain.Key, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key, err := importKey(format, keyData, alg, extractable, usages)
	if err != nil {
		return nil, err
	}

	b.logger.Debug("Imported ", key.Type(), " ", key.Algorithm().ID(), " key from ", format)
	return key, nil
}

func (b *softwareBackend) Sign(ctx context.Context, alg *cryptoDomain.Algorithm, key *cryptoDomain.Key, data []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkKey(cryptoDomain.OpSign, alg, key); err != nil {
		return nil, err
	}

	switch alg.ID() {
	case cryptoDomain.HMAC:
		secret, err := secretOf(key)
		if err != nil {
			return nil, err
		}
		h, err := keyHash(key)
		if err != nil {
			return nil, err
		}
		return b.hmac.Sign(h, secret, data)

	case cryptoDomain.RSASSAPKCS1v15, cryptoDomain.RSAPSS:
		privateKey, err := rsaPrivateOf(key)
		if err != nil {
			return nil, err
		}
		h, err := keyHash(key)
		if err != nil {
			return nil, err
		}
		if alg.ID() == cryptoDomain.RSASSAPKCS1v15 {
			return b.rsa.SignPKCS1v15(h, privateKey, data)
		}
		p, err := params[*cryptoDomain.RSAPSSParams](alg)
		if err != nil {
			return nil, err
		}
		return b.rsa.SignPSS(h, privateKey, p.SaltLength, data)

	case cryptoDomain.ECDSA:
		privateKey, err := ecdsaPrivateOf(key)
		if err != nil {
			return nil, err
		}
		h, err := signatureHash(alg)
		if err != nil {
			return nil, err
		}
		return b.ecdsa.Sign(h, privateKey, data)

	case cryptoDomain.Ed25519:
		privateKey, err := ed25519PrivateOf(key)
		if err != nil {
			return nil, err
		}
		return b.ed25519.Sign(privateKey, data)

	default:
		return nil, unsupported(cryptoDomain.OpSign, alg)
	}
}

func (b *softwareBackend) VerifySignature(ctx context.Context, alg *cryptoDomain.Algorithm, key *cryptoDomain.Key, signature, data []byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := checkKey(cryptoDomain.OpVerify, alg, key); err != nil {
		return false, err
	}

	switch alg.ID() {
	case cryptoDomain.HMAC:
		secret, err := secretOf(key)
		if err != nil {
			return false, err
		}
		h, err := keyHash(key)
		if err != nil {
			return false, err
		}
		return b.hmac.Verify(h, secret, signature, data)

	case cryptoDomain.RSASSAPKCS1v15, cryptoDomain.RSAPSS:
		publicKey, err := rsaPublicOf(key)
		if err != nil {
			return false, err
		}
		h, err := keyHash(key)
		if err != nil {
			return false, err
		}
		if alg.ID() == cryptoDomain.RSASSAPKCS1v15 {
			return b.rsa.VerifyPKCS1v15(h, publicKey, data, signature)
		}
		p, err := params[*cryptoDomain.RSAPSSParams](alg)
		if err != nil {
			return false, err
		}
		return b.rsa.VerifyPSS(h, publicKey, p.SaltLength, data, signature)

	case cryptoDomain.ECDSA:
		publicKey, err := ecdsaPublicOf(key)
		if err != nil {
			return false, err
		}
		h, err := signatureHash(alg)
		if err != nil {
			return false, err
		}
		return b.ecdsa.Verify(h, publicKey, data, signature)

	case cryptoDomain.Ed25519:
		publicKey, err := ed25519PublicOf(key)
		if err != nil {
			return false, err
		}
		return b.ed25519.Verify(publicKey, data, signature)

	default:
		return false, unsupported(cryptoDomain.OpVerify, alg)
	}
}

// signatureHash returns the per-call hash of an ECDSA operation.
func signatureHash(alg *cryptoDomain.Algorithm) (crypto.Hash, error) {
	p, err := params[*cryptoDomain.ECDSAParams](alg)
	if err != nil {
		return 0, err
	}
	return hashFor(p.Hash)
}
