//go:build unit
// +build unit

package v1

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCipherRequestValidation(t *testing.T) {
	tests := []struct {
		name    string
		request CipherRequest
		wantErr bool
	}{
		{
			name:    "valid",
			request: CipherRequest{KeyID: uuid.NewString(), Algorithm: AlgorithmDto{Name: "AES-GCM", IV: make([]byte, 12)}},
		},
		{
			name:    "lower case algorithm",
			request: CipherRequest{KeyID: uuid.NewString(), Algorithm: AlgorithmDto{Name: "rsa-oaep"}},
		},
		{
			name:    "missing key id",
			request: CipherRequest{Algorithm: AlgorithmDto{Name: "AES-GCM"}},
			wantErr: true,
		},
		{
			name:    "missing algorithm",
			request: CipherRequest{KeyID: uuid.NewString()},
			wantErr: true,
		},
		{
			name:    "unknown hash",
			request: CipherRequest{KeyID: uuid.NewString(), Algorithm: AlgorithmDto{Name: "HMAC", Hash: "MD5"}},
			wantErr: true,
		},
		{
			name:    "unsupported tag length",
			request: CipherRequest{KeyID: uuid.NewString(), Algorithm: AlgorithmDto{Name: "AES-GCM", TagLength: 64}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGenerateKeyRequestValidation(t *testing.T) {
	tests := []struct {
		name    string
		request GenerateKeyRequest
		wantErr bool
	}{
		{
			name:    "AES",
			request: GenerateKeyRequest{Algorithm: KeyAlgorithmDto{Name: "AES-KW", Length: 192}, Usages: []string{"wrapKey"}},
		},
		{
			name:    "RSA",
			request: GenerateKeyRequest{Algorithm: KeyAlgorithmDto{Name: "RSA-PSS", Hash: "SHA-256", ModulusLength: 2048}, Usages: []string{"sign"}},
		},
		{
			name:    "HMAC with explicit length",
			request: GenerateKeyRequest{Algorithm: KeyAlgorithmDto{Name: "HMAC", Hash: "SHA-512", Length: 1024}, Usages: []string{"sign"}},
		},
		{
			name:    "HMAC length not in bytes",
			request: GenerateKeyRequest{Algorithm: KeyAlgorithmDto{Name: "HMAC", Hash: "SHA-512", Length: 1001}, Usages: []string{"sign"}},
			wantErr: true,
		},
		{
			name:    "RSA modulus too small",
			request: GenerateKeyRequest{Algorithm: KeyAlgorithmDto{Name: "RSASSA-PKCS1-v1_5", Hash: "SHA-256", ModulusLength: 512}, Usages: []string{"sign"}},
			wantErr: true,
		},
		{
			name:    "empty usages",
			request: GenerateKeyRequest{Algorithm: KeyAlgorithmDto{Name: "AES-GCM", Length: 128}, Usages: []string{}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestImportKeyRequest(t *testing.T) {
	inline := ImportKeyRequest{Format: "jwk", JWK: json.RawMessage(octetJWK)}
	assert.NoError(t, inline.Validate())
	assert.Equal(t, []byte(octetJWK), inline.Data())

	encoded := ImportKeyRequest{Format: "jwk", KeyData: []byte(octetJWK)}
	assert.NoError(t, encoded.Validate())
	assert.Equal(t, []byte(octetJWK), encoded.Data())

	raw := ImportKeyRequest{Format: "raw", KeyData: []byte{1, 2, 3}, JWK: json.RawMessage(octetJWK)}
	assert.Equal(t, []byte{1, 2, 3}, raw.Data())

	missing := ImportKeyRequest{Format: "pkcs8"}
	assert.Error(t, missing.Validate())

	badAlgorithm := ImportKeyRequest{Format: "raw", KeyData: []byte{1}, Algorithm: &KeyAlgorithmDto{Name: "Blowfish"}}
	assert.Error(t, badAlgorithm.Validate())
}
