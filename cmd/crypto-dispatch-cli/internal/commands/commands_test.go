//go:build unit
// +build unit

package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the CLI with args and returns what it printed to stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	rootCmd, err := NewRootCommand()
	require.NoError(t, err)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)

	err = rootCmd.Execute()
	return out.String(), err
}

func writeInput(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, content, 0600))
	return path
}

func generatedFiles(t *testing.T, out string) []string {
	t.Helper()
	return strings.Fields(out)
}

func TestDigestCmd(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "input.txt", []byte("abc"))

	out, err := execute(t, "digest", "--algorithm", "SHA-256", "--input-file", input)
	require.NoError(t, err)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", strings.TrimSpace(out))

	output := filepath.Join(dir, "digest.bin")
	_, err = execute(t, "digest", "--algorithm", "SHA-512", "--input-file", input, "--output-file", output)
	require.NoError(t, err)
	digest, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Len(t, digest, 64)

	_, err = execute(t, "digest", "--algorithm", "AES-GCM", "--input-file", input)
	assert.Error(t, err)
}

func TestEncryptDecryptCmd(t *testing.T) {
	dir := t.TempDir()
	plaintext := []byte("attack at dawn")
	input := writeInput(t, dir, "plain.txt", plaintext)

	out, err := execute(t, "generate-key", "--algorithm", "AES-GCM", "--length", "256", "--key-dir", dir)
	require.NoError(t, err)
	files := generatedFiles(t, out)
	require.Len(t, files, 1)
	assert.True(t, strings.HasSuffix(files[0], "-secret-key.jwk"))

	iv := "000102030405060708090a0b"
	encrypted := filepath.Join(dir, "plain.enc")
	_, err = execute(t, "encrypt", "--algorithm", "AES-GCM", "--iv", iv,
		"--key-file", files[0], "--input-file", input, "--output-file", encrypted)
	require.NoError(t, err)

	decrypted := filepath.Join(dir, "plain.dec")
	_, err = execute(t, "decrypt", "--algorithm", "AES-GCM", "--iv", iv,
		"--key-file", files[0], "--input-file", encrypted, "--output-file", decrypted)
	require.NoError(t, err)

	content, err := os.ReadFile(decrypted)
	require.NoError(t, err)
	assert.Equal(t, plaintext, content)

	t.Run("wrong iv", func(t *testing.T) {
		_, err := execute(t, "decrypt", "--algorithm", "AES-GCM", "--iv", "ffffffffffffffffffffffff",
			"--key-file", files[0], "--input-file", encrypted, "--output-file", filepath.Join(dir, "bad.dec"))
		assert.Error(t, err)
	})

	t.Run("malformed iv", func(t *testing.T) {
		_, err := execute(t, "encrypt", "--algorithm", "AES-GCM", "--iv", "xyz",
			"--key-file", files[0], "--input-file", input, "--output-file", encrypted)
		assert.ErrorContains(t, err, "iv")
	})
}

func TestSignVerifyCmd(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "message.txt", []byte("message"))

	out, err := execute(t, "generate-key", "--algorithm", "ECDSA", "--named-curve", "P-256", "--format", "pem", "--key-dir", dir)
	require.NoError(t, err)
	files := generatedFiles(t, out)
	require.Len(t, files, 2)
	private, public := files[0], files[1]
	assert.True(t, strings.HasSuffix(private, "-private-key.pem"))
	assert.True(t, strings.HasSuffix(public, "-public-key.pem"))

	signature := filepath.Join(dir, "message.sig")
	_, err = execute(t, "sign", "--algorithm", "ECDSA", "--hash", "SHA-256",
		"--key-file", private, "--input-file", input, "--output-file", signature)
	require.NoError(t, err)

	out, err = execute(t, "verify", "--algorithm", "ECDSA", "--hash", "SHA-256",
		"--key-file", public, "--input-file", input, "--signature-file", signature)
	require.NoError(t, err)
	assert.Equal(t, "true", strings.TrimSpace(out))

	other := writeInput(t, dir, "other.txt", []byte("other message"))
	out, err = execute(t, "verify", "--algorithm", "ECDSA", "--hash", "SHA-256",
		"--key-file", public, "--input-file", other, "--signature-file", signature)
	require.NoError(t, err)
	assert.Equal(t, "false", strings.TrimSpace(out))
}

func TestSignCmd_AlgorithmFile(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "message.txt", []byte("message"))
	algorithmFile := writeInput(t, dir, "hmac.yaml", []byte("name: HMAC\nhash: SHA-384\n"))

	out, err := execute(t, "generate-key", "--algorithm-file", algorithmFile, "--key-dir", dir)
	require.NoError(t, err)
	files := generatedFiles(t, out)
	require.Len(t, files, 1)

	signature := filepath.Join(dir, "message.mac")
	_, err = execute(t, "sign", "--algorithm-file", algorithmFile,
		"--key-file", files[0], "--input-file", input, "--output-file", signature)
	require.NoError(t, err)

	mac, err := os.ReadFile(signature)
	require.NoError(t, err)
	assert.Len(t, mac, 48)
}

func TestImportKeyCmd(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "generate-key", "--algorithm", "Ed25519", "--format", "pem", "--key-dir", dir)
	require.NoError(t, err)
	files := generatedFiles(t, out)
	require.Len(t, files, 2)

	out, err = execute(t, "import-key", "--key-file", files[1], "--usages", "verify")
	require.NoError(t, err)
	assert.Contains(t, out, `"type": "public"`)
	assert.Contains(t, out, `"name": "Ed25519"`)
	assert.Contains(t, out, `"verify"`)

	raw := writeInput(t, dir, "secret.bin", make([]byte, 16))
	_, err = execute(t, "import-key", "--key-file", raw, "--usages", "encrypt")
	assert.Error(t, err)

	out, err = execute(t, "import-key", "--key-file", raw, "--algorithm", "AES-CBC", "--usages", "encrypt,decrypt")
	require.NoError(t, err)
	assert.Contains(t, out, `"bits": 128`)
}
