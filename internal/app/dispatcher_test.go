//go:build unit
// +build unit

package app

import (
	"context"
	"encoding/hex"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	cryptoDomain "github.com/MGTheTrain/crypto-dispatch/internal/domain/crypto"
	"github.com/MGTheTrain/crypto-dispatch/internal/domain/journal"
	"github.com/MGTheTrain/crypto-dispatch/internal/infrastructure/cryptography"
	"github.com/MGTheTrain/crypto-dispatch/internal/pkg/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeMaterial struct{}

func (fakeMaterial) Bits() int { return 128 }

// sinkRecorder collects every completion it receives.
type sinkRecorder struct {
	mu      sync.Mutex
	results []cryptoDomain.Result
}

func (s *sinkRecorder) add(r cryptoDomain.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, r)
}

func (s *sinkRecorder) CompleteWithError(err error)           { s.add(cryptoDomain.ErrorResult(err)) }
func (s *sinkRecorder) CompleteWithBuffer(buf []byte)         { s.add(cryptoDomain.BufferResult(buf)) }
func (s *sinkRecorder) CompleteWithKey(key *cryptoDomain.Key) { s.add(cryptoDomain.KeyResult(key)) }
func (s *sinkRecorder) CompleteWithBoolean(match bool)        { s.add(cryptoDomain.BooleanResult(match)) }

func (s *sinkRecorder) only(t *testing.T) cryptoDomain.Result {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.Len(t, s.results, 1)
	return s.results[0]
}

func setupDispatcher(t *testing.T, backend cryptoDomain.Backend, opts ...Option) cryptoDomain.Dispatcher {
	t.Helper()
	d, err := NewDispatcher(backend, testutil.SetupTestLogger(t), opts...)
	require.NoError(t, err)
	return d
}

func setupSoftwareDispatcher(t *testing.T, opts ...Option) cryptoDomain.Dispatcher {
	t.Helper()
	backend, err := cryptography.NewSoftwareBackend(testutil.SetupTestLogger(t))
	require.NoError(t, err)
	return setupDispatcher(t, backend, opts...)
}

func await(t *testing.T, future *cryptoDomain.Future) cryptoDomain.Result {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	result, err := future.Await(ctx)
	require.NoError(t, err)
	return result
}

func TestNewDispatcher(t *testing.T) {
	log := testutil.SetupTestLogger(t)

	_, err := NewDispatcher(nil, log)
	assert.Error(t, err)

	_, err = NewDispatcher(&MockBackend{}, nil)
	assert.Error(t, err)

	d, err := NewDispatcher(&MockBackend{}, log, WithExecutor(nil))
	require.NoError(t, err)
	assert.IsType(t, InlineExecutor{}, d.(*dispatcher).executor)
}

func TestDispatcher_Digest(t *testing.T) {
	d := setupSoftwareDispatcher(t)

	tests := []struct {
		id     cryptoDomain.AlgorithmID
		length int
	}{
		{cryptoDomain.SHA1, 20},
		{cryptoDomain.SHA256, 32},
		{cryptoDomain.SHA384, 48},
		{cryptoDomain.SHA512, 64},
		{cryptoDomain.SHA3_256, 32},
		{cryptoDomain.SHA3_512, 64},
	}
	for _, tt := range tests {
		t.Run(string(tt.id), func(t *testing.T) {
			sink := &sinkRecorder{}
			d.Digest(context.Background(), cryptoDomain.MustAlgorithm(tt.id, nil), []byte("message"), sink)

			result := sink.only(t)
			require.Equal(t, cryptoDomain.ResultBuffer, result.Kind())
			assert.Len(t, result.Buffer(), tt.length)
		})
	}

	t.Run("empty input vector", func(t *testing.T) {
		result := await(t, d.Submit(context.Background(), &cryptoDomain.Request{
			Operation: cryptoDomain.OpDigest,
			Algorithm: cryptoDomain.MustAlgorithm(cryptoDomain.SHA256, nil),
		}))
		require.Equal(t, cryptoDomain.ResultBuffer, result.Kind())
		assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", hex.EncodeToString(result.Buffer()))
	})
}

func TestDispatcher_GenerateKeyPostconditions(t *testing.T) {
	d := setupSoftwareDispatcher(t)

	tests := []struct {
		name   string
		alg    *cryptoDomain.Algorithm
		usages cryptoDomain.UsageMask
	}{
		{"AES-CBC", cryptoDomain.MustAlgorithm(cryptoDomain.AESCBC, &cryptoDomain.AESKeyGenParams{Length: 128}), cryptoDomain.UsageEncrypt | cryptoDomain.UsageDecrypt},
		{"AES-GCM", cryptoDomain.MustAlgorithm(cryptoDomain.AESGCM, &cryptoDomain.AESKeyGenParams{Length: 256}), cryptoDomain.UsageEncrypt},
		{"AES-CTR", cryptoDomain.MustAlgorithm(cryptoDomain.AESCTR, &cryptoDomain.AESKeyGenParams{Length: 192}), cryptoDomain.UsageDecrypt},
		{"AES-KW", cryptoDomain.MustAlgorithm(cryptoDomain.AESKW, &cryptoDomain.AESKeyGenParams{Length: 256}), cryptoDomain.UsageWrapKey | cryptoDomain.UsageUnwrapKey},
		{"ChaCha20-Poly1305", cryptoDomain.MustAlgorithm(cryptoDomain.ChaCha20Poly1305, nil), cryptoDomain.UsageEncrypt | cryptoDomain.UsageDecrypt},
		{"HMAC", cryptoDomain.MustAlgorithm(cryptoDomain.HMAC, &cryptoDomain.HMACParams{Hash: cryptoDomain.SHA256}), cryptoDomain.UsageSign | cryptoDomain.UsageVerify},
		{"ECDSA", cryptoDomain.MustAlgorithm(cryptoDomain.ECDSA, &cryptoDomain.ECKeyParams{NamedCurve: cryptoDomain.CurveP384}), cryptoDomain.UsageSign | cryptoDomain.UsageVerify},
		{"Ed25519", cryptoDomain.MustAlgorithm(cryptoDomain.Ed25519, nil), cryptoDomain.UsageSign},
		{"RSA-PSS", cryptoDomain.MustAlgorithm(cryptoDomain.RSAPSS, &cryptoDomain.RSAHashedKeyGenParams{ModulusLength: 1024, PublicExponent: 65537, Hash: cryptoDomain.SHA256}), cryptoDomain.UsageSign | cryptoDomain.UsageVerify},
	}

	for _, tt := range tests {
		for _, extractable := range []bool{true, false} {
			t.Run(tt.name, func(t *testing.T) {
				sink := &sinkRecorder{}
				d.GenerateKey(context.Background(), tt.alg, extractable, tt.usages, sink)

				result := sink.only(t)
				require.Equal(t, cryptoDomain.ResultKey, result.Kind(), "unexpected error: %v", result.Err())
				key := result.Key()
				require.NotNil(t, key.Algorithm())
				assert.Equal(t, tt.alg.ID(), key.Algorithm().ID())
				assert.Equal(t, extractable, key.Extractable())
				assert.Equal(t, tt.usages, key.Usages())
			})
		}
	}
}

func TestDispatcher_CipherRoundTrip(t *testing.T) {
	d := setupSoftwareDispatcher(t)
	ctx := context.Background()
	plaintext := []byte("attack at dawn")
	usages := cryptoDomain.UsageEncrypt | cryptoDomain.UsageDecrypt

	tests := []struct {
		name   string
		keyGen *cryptoDomain.Algorithm
		op     *cryptoDomain.Algorithm
	}{
		{
			name:   "AES-CBC",
			keyGen: cryptoDomain.MustAlgorithm(cryptoDomain.AESCBC, &cryptoDomain.AESKeyGenParams{Length: 128}),
			op:     cryptoDomain.MustAlgorithm(cryptoDomain.AESCBC, &cryptoDomain.AESCBCParams{IV: make([]byte, 16)}),
		},
		{
			name:   "AES-GCM",
			keyGen: cryptoDomain.MustAlgorithm(cryptoDomain.AESGCM, &cryptoDomain.AESKeyGenParams{Length: 256}),
			op:     cryptoDomain.MustAlgorithm(cryptoDomain.AESGCM, &cryptoDomain.AESGCMParams{IV: make([]byte, 12), AdditionalData: []byte("header")}),
		},
		{
			name:   "AES-CTR",
			keyGen: cryptoDomain.MustAlgorithm(cryptoDomain.AESCTR, &cryptoDomain.AESKeyGenParams{Length: 192}),
			op:     cryptoDomain.MustAlgorithm(cryptoDomain.AESCTR, &cryptoDomain.AESCTRParams{Counter: make([]byte, 16), Length: 64}),
		},
		{
			name:   "ChaCha20-Poly1305",
			keyGen: cryptoDomain.MustAlgorithm(cryptoDomain.ChaCha20Poly1305, nil),
			op:     cryptoDomain.MustAlgorithm(cryptoDomain.ChaCha20Poly1305, &cryptoDomain.ChaChaParams{Nonce: make([]byte, 12)}),
		},
		{
			name:   "RSA-OAEP",
			keyGen: cryptoDomain.MustAlgorithm(cryptoDomain.RSAOAEP, &cryptoDomain.RSAHashedKeyGenParams{ModulusLength: 1024, PublicExponent: 65537, Hash: cryptoDomain.SHA256}),
			op:     cryptoDomain.MustAlgorithm(cryptoDomain.RSAOAEP, &cryptoDomain.RSAOAEPParams{Label: []byte("label")}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			generated := await(t, d.Submit(ctx, &cryptoDomain.Request{
				Operation:   cryptoDomain.OpGenerateKey,
				Algorithm:   tt.keyGen,
				Extractable: false,
				Usages:      usages,
			}))
			require.Equal(t, cryptoDomain.ResultKey, generated.Kind(), "unexpected error: %v", generated.Err())
			key := generated.Key()

			encrypted := await(t, d.Submit(ctx, &cryptoDomain.Request{Operation: cryptoDomain.OpEncrypt, Algorithm: tt.op, Key: key, Data: plaintext}))
			require.Equal(t, cryptoDomain.ResultBuffer, encrypted.Kind(), "unexpected error: %v", encrypted.Err())
			assert.NotEqual(t, plaintext, encrypted.Buffer())

			decrypted := await(t, d.Submit(ctx, &cryptoDomain.Request{Operation: cryptoDomain.OpDecrypt, Algorithm: tt.op, Key: key, Data: encrypted.Buffer()}))
			require.Equal(t, cryptoDomain.ResultBuffer, decrypted.Kind(), "unexpected error: %v", decrypted.Err())
			assert.Equal(t, plaintext, decrypted.Buffer())
		})
	}
}

func TestDispatcher_DecryptTamperedCiphertext(t *testing.T) {
	d := setupSoftwareDispatcher(t)
	ctx := context.Background()

	keyResult := await(t, d.Submit(ctx, &cryptoDomain.Request{
		Operation: cryptoDomain.OpGenerateKey,
		Algorithm: cryptoDomain.MustAlgorithm(cryptoDomain.AESGCM, &cryptoDomain.AESKeyGenParams{Length: 128}),
		Usages:    cryptoDomain.UsageEncrypt | cryptoDomain.UsageDecrypt,
	}))
	require.Equal(t, cryptoDomain.ResultKey, keyResult.Kind())

	alg := cryptoDomain.MustAlgorithm(cryptoDomain.AESGCM, &cryptoDomain.AESGCMParams{IV: make([]byte, 12)})
	encrypted := await(t, d.Submit(ctx, &cryptoDomain.Request{Operation: cryptoDomain.OpEncrypt, Algorithm: alg, Key: keyResult.Key(), Data: []byte("payload")}))
	require.Equal(t, cryptoDomain.ResultBuffer, encrypted.Kind())

	tampered := append([]byte(nil), encrypted.Buffer()...)
	tampered[0] ^= 0xff

	result := await(t, d.Submit(ctx, &cryptoDomain.Request{Operation: cryptoDomain.OpDecrypt, Algorithm: alg, Key: keyResult.Key(), Data: tampered}))
	require.Equal(t, cryptoDomain.ResultError, result.Kind())
	assert.ErrorIs(t, result.Err(), cryptoDomain.ErrBackendFailure)
	assert.Nil(t, result.Buffer())
}

func TestDispatcher_SignAndVerify(t *testing.T) {
	d := setupSoftwareDispatcher(t)
	ctx := context.Background()
	data := []byte("signed data")

	keyResult := await(t, d.Submit(ctx, &cryptoDomain.Request{
		Operation: cryptoDomain.OpGenerateKey,
		Algorithm: cryptoDomain.MustAlgorithm(cryptoDomain.Ed25519, nil),
		Usages:    cryptoDomain.UsageSign | cryptoDomain.UsageVerify,
	}))
	require.Equal(t, cryptoDomain.ResultKey, keyResult.Kind())
	private := keyResult.Key()
	public, err := private.PublicKey()
	require.NoError(t, err)

	alg := cryptoDomain.MustAlgorithm(cryptoDomain.Ed25519, nil)
	signed := await(t, d.Submit(ctx, &cryptoDomain.Request{Operation: cryptoDomain.OpSign, Algorithm: alg, Key: private, Data: data}))
	require.Equal(t, cryptoDomain.ResultBuffer, signed.Kind())
	signature := signed.Buffer()
	assert.Len(t, signature, 64)

	t.Run("match", func(t *testing.T) {
		sink := &sinkRecorder{}
		d.VerifySignature(ctx, alg, public, signature, data, sink)
		result := sink.only(t)
		require.Equal(t, cryptoDomain.ResultBoolean, result.Kind())
		assert.True(t, result.Boolean())
	})

	t.Run("mismatch is false", func(t *testing.T) {
		sink := &sinkRecorder{}
		d.VerifySignature(ctx, alg, public, signature, []byte("other data"), sink)
		result := sink.only(t)
		require.Equal(t, cryptoDomain.ResultBoolean, result.Kind())
		assert.False(t, result.Boolean())
	})

	t.Run("malformed is an error", func(t *testing.T) {
		sink := &sinkRecorder{}
		d.VerifySignature(ctx, alg, public, signature[:10], data, sink)
		result := sink.only(t)
		require.Equal(t, cryptoDomain.ResultError, result.Kind())
		assert.ErrorIs(t, result.Err(), cryptoDomain.ErrBackendFailure)
		assert.ErrorIs(t, result.Err(), cryptoDomain.ErrMalformedSignature)
	})
}

func TestDispatcher_ImportKey(t *testing.T) {
	d := setupSoftwareDispatcher(t)
	ctx := context.Background()

	t.Run("algorithm from jwk", func(t *testing.T) {
		jwk := []byte(`{"kty":"oct","alg":"HS256","k":"c2VjcmV0LWtleS1tYXRlcmlhbA"}`)
		sink := &sinkRecorder{}
		d.ImportKey(ctx, cryptoDomain.FormatJWK, jwk, nil, true, cryptoDomain.UsageSign, sink)

		result := sink.only(t)
		require.Equal(t, cryptoDomain.ResultKey, result.Kind(), "unexpected error: %v", result.Err())
		require.NotNil(t, result.Key().Algorithm())
		assert.Equal(t, cryptoDomain.HMAC, result.Key().Algorithm().ID())
		assert.True(t, result.Key().Extractable())
	})

	t.Run("unknown format", func(t *testing.T) {
		sink := &sinkRecorder{}
		d.ImportKey(ctx, cryptoDomain.KeyFormat("pem"), []byte("data"), nil, false, cryptoDomain.UsageSign, sink)

		result := sink.only(t)
		require.Equal(t, cryptoDomain.ResultError, result.Kind())
		assert.Nil(t, result.Key())
		assert.ErrorIs(t, result.Err(), cryptoDomain.ErrUnsupportedFormat)

		var opErr *cryptoDomain.OperationError
		require.ErrorAs(t, result.Err(), &opErr)
		assert.Equal(t, cryptoDomain.OpImportKey, opErr.Op)
		assert.Empty(t, opErr.Algorithm)
	})
}

func TestDispatcher_WrapsBackendErrors(t *testing.T) {
	backend := &MockBackend{}
	d := setupDispatcher(t, backend)
	alg := cryptoDomain.MustAlgorithm(cryptoDomain.AESGCM, &cryptoDomain.AESGCMParams{IV: make([]byte, 12)})
	key, err := cryptoDomain.NewKey(cryptoDomain.KeyTypeSecret, alg, false, cryptoDomain.UsageEncrypt, fakeMaterial{})
	require.NoError(t, err)

	backend.On("Encrypt", mock.Anything, alg, key, []byte("data")).Return(nil, cryptoDomain.ErrKeyMismatch).Once()

	sink := &sinkRecorder{}
	d.Encrypt(context.Background(), alg, key, []byte("data"), sink)

	result := sink.only(t)
	require.Equal(t, cryptoDomain.ResultError, result.Kind())
	assert.ErrorIs(t, result.Err(), cryptoDomain.ErrBackendFailure)
	assert.ErrorIs(t, result.Err(), cryptoDomain.ErrKeyMismatch)

	var opErr *cryptoDomain.OperationError
	require.ErrorAs(t, result.Err(), &opErr)
	assert.Equal(t, cryptoDomain.OpEncrypt, opErr.Op)
	assert.Equal(t, cryptoDomain.AESGCM, opErr.Algorithm)
	backend.AssertExpectations(t)
}

func TestDispatcher_BufferHasExactLength(t *testing.T) {
	backend := &MockBackend{}
	d := setupDispatcher(t, backend)
	alg := cryptoDomain.MustAlgorithm(cryptoDomain.SHA256, nil)

	scratch := make([]byte, 4, 64)
	copy(scratch, []byte{1, 2, 3, 4})
	backend.On("Digest", mock.Anything, alg, []byte("x")).Return(scratch, nil).Once()

	sink := &sinkRecorder{}
	d.Digest(context.Background(), alg, []byte("x"), sink)

	buf := sink.only(t).Buffer()
	assert.Equal(t, []byte{1, 2, 3, 4}, buf)
	assert.Equal(t, 4, cap(buf))
}

func TestDispatcher_IgnoresCancellation(t *testing.T) {
	backend := &MockBackend{}
	d := setupDispatcher(t, backend)
	alg := cryptoDomain.MustAlgorithm(cryptoDomain.SHA256, nil)

	type ctxKey struct{}
	ctx, cancel := context.WithCancel(context.WithValue(context.Background(), ctxKey{}, "request-1"))
	cancel()

	live := mock.MatchedBy(func(ctx context.Context) bool {
		return ctx.Err() == nil && ctx.Value(ctxKey{}) == "request-1"
	})
	backend.On("Digest", live, alg, []byte("x")).Return(make([]byte, 32), nil).Once()

	sink := &sinkRecorder{}
	d.Digest(ctx, alg, []byte("x"), sink)

	assert.Equal(t, cryptoDomain.ResultBuffer, sink.only(t).Kind())
	backend.AssertExpectations(t)
}

func TestDispatcher_PreconditionViolations(t *testing.T) {
	backend := &MockBackend{}
	d := setupDispatcher(t, backend)
	ctx := context.Background()
	alg := cryptoDomain.MustAlgorithm(cryptoDomain.HMAC, &cryptoDomain.HMACParams{Hash: cryptoDomain.SHA256})
	usages := cryptoDomain.UsageSign | cryptoDomain.UsageVerify

	t.Run("nil algorithm", func(t *testing.T) {
		assert.Panics(t, func() { d.Encrypt(ctx, nil, nil, nil, &sinkRecorder{}) })
		assert.Panics(t, func() { d.Digest(ctx, nil, nil, &sinkRecorder{}) })
		assert.Panics(t, func() { d.GenerateKey(ctx, nil, true, usages, &sinkRecorder{}) })
	})

	t.Run("nil sink", func(t *testing.T) {
		assert.Panics(t, func() { d.Digest(ctx, cryptoDomain.MustAlgorithm(cryptoDomain.SHA256, nil), nil, nil) })
	})

	t.Run("nil request", func(t *testing.T) {
		assert.Panics(t, func() { d.Dispatch(ctx, nil, &sinkRecorder{}) })
	})

	t.Run("generated key with other usages", func(t *testing.T) {
		wrong, err := cryptoDomain.NewKey(cryptoDomain.KeyTypeSecret, alg, true, cryptoDomain.UsageSign, fakeMaterial{})
		require.NoError(t, err)
		backend.On("GenerateKey", mock.Anything, alg, true, usages).Return(wrong, nil).Once()

		sink := &sinkRecorder{}
		assert.Panics(t, func() { d.GenerateKey(ctx, alg, true, usages, sink) })
		assert.Empty(t, sink.results)
	})

	t.Run("generated key with other extractability", func(t *testing.T) {
		wrong, err := cryptoDomain.NewKey(cryptoDomain.KeyTypeSecret, alg, false, usages, fakeMaterial{})
		require.NoError(t, err)
		backend.On("GenerateKey", mock.Anything, alg, true, usages).Return(wrong, nil).Once()

		assert.Panics(t, func() { d.GenerateKey(ctx, alg, true, usages, &sinkRecorder{}) })
	})

	t.Run("imported key with other extractability", func(t *testing.T) {
		wrong, err := cryptoDomain.NewKey(cryptoDomain.KeyTypeSecret, alg, false, usages, fakeMaterial{})
		require.NoError(t, err)
		backend.On("ImportKey", mock.Anything, cryptoDomain.FormatRaw, []byte("k"), alg, true, usages).Return(wrong, nil).Once()

		assert.Panics(t, func() { d.ImportKey(ctx, cryptoDomain.FormatRaw, []byte("k"), alg, true, usages, &sinkRecorder{}) })
	})
}

func TestDispatcher_UnknownOperation(t *testing.T) {
	d := setupDispatcher(t, &MockBackend{})

	result := await(t, d.Submit(context.Background(), &cryptoDomain.Request{Operation: cryptoDomain.Operation("deriveBits")}))
	require.Equal(t, cryptoDomain.ResultError, result.Kind())
	assert.ErrorIs(t, result.Err(), cryptoDomain.ErrInvalidParameters)
}

func TestDispatcher_FutureConsumedOnce(t *testing.T) {
	d := setupSoftwareDispatcher(t)
	future := d.Submit(context.Background(), &cryptoDomain.Request{
		Operation: cryptoDomain.OpDigest,
		Algorithm: cryptoDomain.MustAlgorithm(cryptoDomain.SHA512, nil),
		Data:      []byte("abc"),
	})

	first := await(t, future)
	assert.Len(t, first.Buffer(), 64)

	_, err := future.Await(context.Background())
	assert.ErrorIs(t, err, cryptoDomain.ErrResultConsumed)
}

func TestOnceSink(t *testing.T) {
	inner := &sinkRecorder{}
	sink := &onceSink{sink: inner}

	sink.CompleteWithBoolean(true)
	assert.Panics(t, func() { sink.CompleteWithError(errors.New("late")) })
	assert.Len(t, inner.results, 1)
}

func TestDispatcher_Journal(t *testing.T) {
	t.Run("records outcome", func(t *testing.T) {
		repo := &MockJournalRepository{}
		d := setupSoftwareDispatcher(t, WithJournal(repo))

		repo.On("Create", mock.Anything, mock.MatchedBy(func(r *journal.OperationRecord) bool {
			return r.Operation == "digest" && r.Algorithm == "SHA-256" && r.Outcome == journal.OutcomeBuffer &&
				r.Error == "" && r.Validate() == nil
		})).Return(nil).Once()

		result := await(t, d.Submit(context.Background(), &cryptoDomain.Request{
			Operation: cryptoDomain.OpDigest,
			Algorithm: cryptoDomain.MustAlgorithm(cryptoDomain.SHA256, nil),
		}))
		assert.Equal(t, cryptoDomain.ResultBuffer, result.Kind())
		repo.AssertExpectations(t)
	})

	t.Run("records imported algorithm and errors", func(t *testing.T) {
		repo := &MockJournalRepository{}
		d := setupSoftwareDispatcher(t, WithJournal(repo))

		repo.On("Create", mock.Anything, mock.MatchedBy(func(r *journal.OperationRecord) bool {
			return r.Operation == "importKey" && r.Algorithm == "AES-GCM" && r.Outcome == journal.OutcomeKey
		})).Return(nil).Once()
		repo.On("Create", mock.Anything, mock.MatchedBy(func(r *journal.OperationRecord) bool {
			return r.Operation == "importKey" && r.Algorithm == "" && r.Failed() && r.Error != ""
		})).Return(nil).Once()

		jwk := []byte(`{"kty":"oct","alg":"A128GCM","k":"AAAAAAAAAAAAAAAAAAAAAA"}`)
		ok := await(t, d.Submit(context.Background(), &cryptoDomain.Request{
			Operation: cryptoDomain.OpImportKey,
			Format:    cryptoDomain.FormatJWK,
			KeyData:   jwk,
			Usages:    cryptoDomain.UsageEncrypt,
		}))
		assert.Equal(t, cryptoDomain.ResultKey, ok.Kind())

		failed := await(t, d.Submit(context.Background(), &cryptoDomain.Request{
			Operation: cryptoDomain.OpImportKey,
			Format:    cryptoDomain.FormatJWK,
			KeyData:   []byte("not json"),
			Usages:    cryptoDomain.UsageEncrypt,
		}))
		assert.Equal(t, cryptoDomain.ResultError, failed.Kind())
		repo.AssertExpectations(t)
	})

	t.Run("records unknown operations", func(t *testing.T) {
		repo := &MockJournalRepository{}
		d := setupDispatcher(t, &MockBackend{}, WithJournal(repo))

		repo.On("Create", mock.Anything, mock.MatchedBy(func(r *journal.OperationRecord) bool {
			return r.Operation == journal.OperationUnknown && r.Failed() &&
				strings.Contains(r.Error, "deriveBits") && r.Validate() == nil
		})).Return(nil).Once()

		result := await(t, d.Submit(context.Background(), &cryptoDomain.Request{Operation: cryptoDomain.Operation("deriveBits")}))
		assert.Equal(t, cryptoDomain.ResultError, result.Kind())
		repo.AssertExpectations(t)
	})

	t.Run("truncated error stays valid utf-8", func(t *testing.T) {
		repo := &MockJournalRepository{}
		var recorded *journal.OperationRecord
		repo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			recorded = args.Get(1).(*journal.OperationRecord)
		}).Return(nil).Once()

		inner := &sinkRecorder{}
		sink := newJournalSink(context.Background(), inner, repo, cryptoDomain.OpDecrypt, nil, testutil.SetupTestLogger(t))
		sink.CompleteWithError(errors.New(strings.Repeat("a", maxRecordedError-1) + "é"))

		require.NotNil(t, recorded)
		assert.True(t, utf8.ValidString(recorded.Error))
		assert.Equal(t, strings.Repeat("a", maxRecordedError-1), recorded.Error)
		assert.NoError(t, recorded.Validate())
		assert.Equal(t, cryptoDomain.ResultError, inner.only(t).Kind())
	})

	t.Run("repository failure keeps outcome", func(t *testing.T) {
		repo := &MockJournalRepository{}
		d := setupSoftwareDispatcher(t, WithJournal(repo))
		repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("database is locked")).Once()

		result := await(t, d.Submit(context.Background(), &cryptoDomain.Request{
			Operation: cryptoDomain.OpDigest,
			Algorithm: cryptoDomain.MustAlgorithm(cryptoDomain.SHA1, nil),
		}))
		assert.Equal(t, cryptoDomain.ResultBuffer, result.Kind())
		assert.Len(t, result.Buffer(), 20)
		repo.AssertExpectations(t)
	})
}

func TestRun(t *testing.T) {
	d := setupSoftwareDispatcher(t)

	result, err := Run(context.Background(), d, &cryptoDomain.Request{
		Operation: cryptoDomain.OpDigest,
		Algorithm: cryptoDomain.MustAlgorithm(cryptoDomain.SHA384, nil),
		Data:      []byte("abc"),
	})
	require.NoError(t, err)
	assert.Len(t, result.Buffer(), 48)

	result, err = Run(context.Background(), d, &cryptoDomain.Request{
		Operation: cryptoDomain.OpDigest,
		Algorithm: cryptoDomain.MustAlgorithm(cryptoDomain.ChaCha20Poly1305, nil),
	})
	assert.ErrorIs(t, err, cryptoDomain.ErrBackendFailure)
	assert.Equal(t, cryptoDomain.ResultError, result.Kind())
}
