//go:build unit
// +build unit

package cryptography

import (
	"testing"

	cryptoDomain "github.com/MGTheTrain/crypto-dispatch/internal/domain/crypto"
	"github.com/MGTheTrain/crypto-dispatch/internal/pkg/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChaChaProcessor(t *testing.T) {
	processor, err := NewChaChaProcessor(testutil.SetupTestLogger(t))
	require.NoError(t, err)

	key, err := processor.GenerateKey()
	require.NoError(t, err)
	assert.Len(t, key, 32)

	nonce := make([]byte, 12)
	plainText := []byte("chacha message")

	t.Run("SealOpen", func(t *testing.T) {
		sealed, err := processor.Seal(key, nonce, []byte("aad"), plainText)
		require.NoError(t, err)
		assert.Len(t, sealed, len(plainText)+16)

		opened, err := processor.Open(key, nonce, []byte("aad"), sealed)
		require.NoError(t, err)
		assert.Equal(t, plainText, opened)
	})

	t.Run("TamperedCiphertext", func(t *testing.T) {
		sealed, err := processor.Seal(key, nonce, nil, plainText)
		require.NoError(t, err)
		sealed[0] ^= 0xff

		_, err = processor.Open(key, nonce, nil, sealed)
		assert.ErrorIs(t, err, cryptoDomain.ErrOperationFailed)
	})

	t.Run("InvalidNonce", func(t *testing.T) {
		_, err := processor.Seal(key, nonce[:8], nil, plainText)
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidParameters)
	})

	t.Run("InvalidKey", func(t *testing.T) {
		_, err := processor.Seal(key[:16], nonce, nil, plainText)
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidParameters)
	})
}
