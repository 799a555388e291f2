//go:build unit
// +build unit

package cryptography

import (
	"crypto"
	"crypto/rsa"
	"testing"

	cryptoDomain "github.com/MGTheTrain/crypto-dispatch/internal/domain/crypto"
	"github.com/MGTheTrain/crypto-dispatch/internal/domain/cryptoalg"
	"github.com/MGTheTrain/crypto-dispatch/internal/pkg/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	TestKeySize2048 = 2048
)

func setupRSAProcessor(t *testing.T) cryptoalg.RSAProcessor {
	t.Helper()
	logger := testutil.SetupTestLogger(t)
	digests, err := NewDigestProcessor(logger)
	require.NoError(t, err)
	processor, err := NewRSAProcessor(digests, logger)
	require.NoError(t, err)
	return processor
}

func TestRSAProcessor(t *testing.T) {
	processor := setupRSAProcessor(t)

	privateKey, publicKey, err := processor.GenerateKeys(TestKeySize2048, 0)
	require.NoError(t, err)

	t.Run("GenerateKeys", func(t *testing.T) {
		assert.NotNil(t, privateKey)
		assert.IsType(t, &rsa.PublicKey{}, publicKey)
		assert.Equal(t, TestKeySize2048, privateKey.N.BitLen())
		assert.Equal(t, 65537, publicKey.E)
	})

	t.Run("GenerateKeysRejectsParameters", func(t *testing.T) {
		_, _, err := processor.GenerateKeys(TestKeySize2048, 3)
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidParameters)

		_, _, err = processor.GenerateKeys(512, 0)
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidParameters)
	})

	t.Run("EncryptDecryptOAEP", func(t *testing.T) {
		plainText := []byte("This is a secret message")
		label := []byte("label")

		encrypted, err := processor.EncryptOAEP(crypto.SHA256, publicKey, label, plainText)
		require.NoError(t, err)
		assert.Len(t, encrypted, publicKey.Size())

		decrypted, err := processor.DecryptOAEP(crypto.SHA256, privateKey, label, encrypted)
		require.NoError(t, err)
		assert.Equal(t, plainText, decrypted)

		_, err = processor.DecryptOAEP(crypto.SHA256, privateKey, []byte("other"), encrypted)
		assert.ErrorIs(t, err, cryptoDomain.ErrOperationFailed)
	})

	t.Run("EncryptTooLong", func(t *testing.T) {
		tooLong := make([]byte, publicKey.Size())
		_, err := processor.EncryptOAEP(crypto.SHA256, publicKey, nil, tooLong)
		assert.ErrorIs(t, err, cryptoDomain.ErrOperationFailed)
	})

	t.Run("SignVerifyPKCS1v15", func(t *testing.T) {
		data := []byte("signed data")
		signature, err := processor.SignPKCS1v15(crypto.SHA256, privateKey, data)
		require.NoError(t, err)

		valid, err := processor.VerifyPKCS1v15(crypto.SHA256, publicKey, data, signature)
		require.NoError(t, err)
		assert.True(t, valid)

		valid, err = processor.VerifyPKCS1v15(crypto.SHA256, publicKey, []byte("tampered"), signature)
		require.NoError(t, err)
		assert.False(t, valid)
	})

	t.Run("SignVerifyPSS", func(t *testing.T) {
		data := []byte("signed data")
		signature, err := processor.SignPSS(crypto.SHA384, privateKey, 32, data)
		require.NoError(t, err)

		valid, err := processor.VerifyPSS(crypto.SHA384, publicKey, 32, data, signature)
		require.NoError(t, err)
		assert.True(t, valid)

		valid, err = processor.VerifyPSS(crypto.SHA384, publicKey, 32, []byte("tampered"), signature)
		require.NoError(t, err)
		assert.False(t, valid)
	})

	t.Run("MalformedSignature", func(t *testing.T) {
		_, err := processor.VerifyPKCS1v15(crypto.SHA256, publicKey, []byte("data"), []byte("short"))
		assert.ErrorIs(t, err, cryptoDomain.ErrMalformedSignature)

		outOfRange := make([]byte, publicKey.Size())
		for i := range outOfRange {
			outOfRange[i] = 0xff
		}
		_, err = processor.VerifyPSS(crypto.SHA256, publicKey, 32, []byte("data"), outOfRange)
		assert.ErrorIs(t, err, cryptoDomain.ErrMalformedSignature)
	})

	t.Run("NilKeys", func(t *testing.T) {
		_, err := processor.EncryptOAEP(crypto.SHA256, nil, nil, []byte("data"))
		assert.Error(t, err)

		_, err = processor.SignPKCS1v15(crypto.SHA256, nil, []byte("data"))
		assert.Error(t, err)
	})
}
