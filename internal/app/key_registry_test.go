//go:build unit
// +build unit

package app

import (
	"context"
	"testing"

	cryptoDomain "github.com/MGTheTrain/crypto-dispatch/internal/domain/crypto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyRegistry(t *testing.T) {
	registry := NewKeyRegistry()
	alg := cryptoDomain.MustAlgorithm(cryptoDomain.AESGCM, &cryptoDomain.AESKeyGenParams{Length: 128})
	key, err := cryptoDomain.NewKey(cryptoDomain.KeyTypeSecret, alg, false, cryptoDomain.UsageEncrypt, fakeMaterial{})
	require.NoError(t, err)

	_, err = registry.Add(nil)
	assert.Error(t, err)

	entry, err := registry.Add(key)
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.Empty(t, entry.PairID)

	fetched, err := registry.Get(entry.ID)
	require.NoError(t, err)
	assert.Same(t, key, fetched.Key)
	assert.Len(t, registry.List(), 1)

	require.NoError(t, registry.Delete(entry.ID))
	_, err = registry.Get(entry.ID)
	assert.ErrorIs(t, err, ErrKeyNotFound)
	assert.ErrorIs(t, registry.Delete(entry.ID), ErrKeyNotFound)
}

func TestKeyRegistry_AddPair(t *testing.T) {
	d := setupSoftwareDispatcher(t)
	result := await(t, d.Submit(context.Background(), &cryptoDomain.Request{
		Operation: cryptoDomain.OpGenerateKey,
		Algorithm: cryptoDomain.MustAlgorithm(cryptoDomain.Ed25519, nil),
		Usages:    cryptoDomain.UsageSign | cryptoDomain.UsageVerify,
	}))
	require.Equal(t, cryptoDomain.ResultKey, result.Kind())

	registry := NewKeyRegistry()
	entries, err := registry.AddPair(result.Key())
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, entries[0].PairID, entries[1].PairID)
	assert.Equal(t, cryptoDomain.KeyTypePrivate, entries[0].Key.Type())
	assert.Equal(t, cryptoDomain.KeyTypePublic, entries[1].Key.Type())
	assert.Equal(t, cryptoDomain.UsageVerify, entries[1].Key.Usages())
	assert.Len(t, registry.List(), 2)

	secret, err := cryptoDomain.NewKey(cryptoDomain.KeyTypeSecret, cryptoDomain.MustAlgorithm(cryptoDomain.ChaCha20Poly1305, nil), true, cryptoDomain.UsageEncrypt, fakeMaterial{})
	require.NoError(t, err)
	_, err = registry.AddPair(secret)
	assert.ErrorIs(t, err, cryptoDomain.ErrInvalidAccess)
}
