//go:build unit
// +build unit

package cryptography

import (
	"crypto/ed25519"
	"testing"

	cryptoDomain "github.com/MGTheTrain/crypto-dispatch/internal/domain/crypto"
	"github.com/MGTheTrain/crypto-dispatch/internal/pkg/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEd25519Processor(t *testing.T) {
	processor, err := NewEd25519Processor(testutil.SetupTestLogger(t))
	require.NoError(t, err)

	privateKey, publicKey, err := processor.GenerateKeys()
	require.NoError(t, err)
	assert.Len(t, privateKey, ed25519.PrivateKeySize)
	assert.Len(t, publicKey, ed25519.PublicKeySize)

	message := []byte("edwards message")

	t.Run("SignVerify", func(t *testing.T) {
		signature, err := processor.Sign(privateKey, message)
		require.NoError(t, err)
		assert.Len(t, signature, ed25519.SignatureSize)

		valid, err := processor.Verify(publicKey, message, signature)
		require.NoError(t, err)
		assert.True(t, valid)

		valid, err = processor.Verify(publicKey, []byte("tampered"), signature)
		require.NoError(t, err)
		assert.False(t, valid)
	})

	t.Run("MalformedSignature", func(t *testing.T) {
		_, err := processor.Verify(publicKey, message, []byte("short"))
		assert.ErrorIs(t, err, cryptoDomain.ErrMalformedSignature)
	})

	t.Run("InvalidKeys", func(t *testing.T) {
		_, err := processor.Sign(privateKey[:10], message)
		assert.ErrorIs(t, err, cryptoDomain.ErrKeyMismatch)

		_, err = processor.Verify(publicKey[:10], message, make([]byte, ed25519.SignatureSize))
		assert.ErrorIs(t, err, cryptoDomain.ErrKeyMismatch)
	})
}
