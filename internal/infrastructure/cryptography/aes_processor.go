package cryptography

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/subtle"
	"encoding/binary"
	"fmt"
	"math/big"

	cryptoDomain "github.com/MGTheTrain/crypto-dispatch/internal/domain/crypto"
	"github.com/MGTheTrain/crypto-dispatch/internal/domain/cryptoalg"
	"github.com/MGTheTrain/crypto-dispatch/internal/pkg/logger"
)

const kwBlockSize = 8

// RFC 3394 default initial value
var kwDefaultIV = []byte{0xA6, 0xA6, 0xA6, 0xA6, 0xA6, 0xA6, 0xA6, 0xA6}

// aesProcessor struct that implements the AESProcessor interface
type aesProcessor struct {
	logger logger.Logger
}

// NewAESProcessor creates and returns a new instance of aesProcessor
func NewAESProcessor(logger logger.Logger) (cryptoalg.AESProcessor, error) {
	return &aesProcessor{
		logger: logger,
	}, nil
}

// GenerateKey generates a random AES key of 128, 192 or 256 bits.
func (a *aesProcessor) GenerateKey(bits int) ([]byte, error) {
	if bits != 128 && bits != 192 && bits != 256 {
		return nil, fmt.Errorf("%w: AES key length must be 128, 192 or 256 bits, got %d", cryptoDomain.ErrInvalidParameters, bits)
	}

	key := make([]byte, bits/8)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate AES key: %w", err)
	}

	a.logger.Debug("Generated AES key")
	return key, nil
}

func (a *aesProcessor) newBlock(key []byte) (cipher.Block, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrInvalidParameters, err)
	}
	return block, nil
}

// EncryptCBC encrypts plaintext with PKCS#7 padding.
func (a *aesProcessor) EncryptCBC(key, iv, plaintext []byte) ([]byte, error) {
	block, err := a.newBlock(key)
	if err != nil {
		return nil, err
	}
	if len(iv) != aes.BlockSize {
		return nil, fmt.Errorf("%w: AES-CBC iv must be %d bytes", cryptoDomain.ErrInvalidParameters, aes.BlockSize)
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	a.logger.Debug("AES-CBC encryption succeeded")
	return ciphertext, nil
}

// DecryptCBC decrypts ciphertext and removes the PKCS#7 padding.
func (a *aesProcessor) DecryptCBC(key, iv, ciphertext []byte) ([]byte, error) {
	block, err := a.newBlock(key)
	if err != nil {
		return nil, err
	}
	if len(iv) != aes.BlockSize {
		return nil, fmt.Errorf("%w: AES-CBC iv must be %d bytes", cryptoDomain.ErrInvalidParameters, aes.BlockSize)
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext is not a whole number of blocks", cryptoDomain.ErrOperationFailed)
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	n, err := pkcs7UnpaddedLen(plaintext, aes.BlockSize)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("AES-CBC decryption succeeded")
	return cryptoDomain.ShrinkBuffer(plaintext, n), nil
}

func (a *aesProcessor) newGCM(key, iv []byte, tagSize int) (cipher.AEAD, error) {
	block, err := a.newBlock(key)
	if err != nil {
		return nil, err
	}
	if len(iv) == 0 {
		return nil, fmt.Errorf("%w: AES-GCM iv cannot be empty", cryptoDomain.ErrInvalidParameters)
	}

	// cipher.NewGCMWithTagSize only accepts tags of 12 to 16 bytes
	if tagSize < 12 || tagSize > 16 {
		return nil, fmt.Errorf("%w: unsupported AES-GCM tag length %d bits", cryptoDomain.ErrInvalidParameters, tagSize*8)
	}

	var gcm cipher.AEAD
	switch {
	case len(iv) == 12 && tagSize == 16:
		gcm, err = cipher.NewGCM(block)
	case len(iv) == 12:
		gcm, err = cipher.NewGCMWithTagSize(block, tagSize)
	case tagSize == 16:
		gcm, err = cipher.NewGCMWithNonceSize(block, len(iv))
	default:
		return nil, fmt.Errorf("%w: AES-GCM needs a 96 bit iv for truncated tags", cryptoDomain.ErrInvalidParameters)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrInvalidParameters, err)
	}
	return gcm, nil
}

// EncryptGCM seals plaintext and appends the authentication tag.
func (a *aesProcessor) EncryptGCM(key, iv, additionalData []byte, tagSize int, plaintext []byte) ([]byte, error) {
	gcm, err := a.newGCM(key, iv, tagSize)
	if err != nil {
		return nil, err
	}

	ciphertext := gcm.Seal(nil, iv, plaintext, additionalData)

	a.logger.Debug("AES-GCM encryption succeeded")
	return ciphertext, nil
}

// DecryptGCM authenticates and opens ciphertext.
func (a *aesProcessor) DecryptGCM(key, iv, additionalData []byte, tagSize int, ciphertext []byte) ([]byte, error) {
	gcm, err := a.newGCM(key, iv, tagSize)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.Overhead() {
		return nil, fmt.Errorf("%w: ciphertext shorter than the tag", cryptoDomain.ErrOperationFailed)
	}

	plaintext, err := gcm.Open(nil, iv, ciphertext, additionalData)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrOperationFailed, err)
	}

	a.logger.Debug("AES-GCM decryption succeeded")
	return plaintext, nil
}

// XORKeyStreamCTR encrypts or decrypts data in counter mode. Only the
// rightmost counterBits of the counter block increment, and the operation
// fails rather than letting that counter wrap around.
func (a *aesProcessor) XORKeyStreamCTR(key, counter []byte, counterBits int, data []byte) ([]byte, error) {
	block, err := a.newBlock(key)
	if err != nil {
		return nil, err
	}
	if len(counter) != aes.BlockSize {
		return nil, fmt.Errorf("%w: AES-CTR counter must be %d bytes", cryptoDomain.ErrInvalidParameters, aes.BlockSize)
	}
	if counterBits < 1 || counterBits > 128 {
		return nil, fmt.Errorf("%w: AES-CTR length must be between 1 and 128 bits", cryptoDomain.ErrInvalidParameters)
	}

	blocks := new(big.Int).SetUint64(uint64((len(data) + aes.BlockSize - 1) / aes.BlockSize))
	limit := new(big.Int).Lsh(big.NewInt(1), uint(counterBits))
	if blocks.Cmp(limit) > 0 {
		return nil, fmt.Errorf("%w: AES-CTR counter would wrap", cryptoDomain.ErrOperationFailed)
	}

	out := make([]byte, len(data))
	block128 := make([]byte, aes.BlockSize)
	copy(block128, counter)
	stream := make([]byte, aes.BlockSize)

	for off := 0; off < len(data); off += aes.BlockSize {
		block.Encrypt(stream, block128)
		end := min(off+aes.BlockSize, len(data))
		subtle.XORBytes(out[off:end], data[off:end], stream[:end-off])
		incrementCounter(block128, counterBits)
	}

	a.logger.Debug("AES-CTR operation succeeded")
	return out, nil
}

// incrementCounter adds one to the rightmost bits of block, wrapping within those bits.
func incrementCounter(block []byte, bits int) {
	ctr := new(big.Int).SetBytes(block)
	mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(bits)), big.NewInt(1))

	low := new(big.Int).And(ctr, mask)
	low.Add(low, big.NewInt(1)).And(low, mask)

	high := new(big.Int).AndNot(ctr, mask)
	high.Or(high, low).FillBytes(block)
}

// WrapKW wraps data with the key encryption key per RFC 3394.
func (a *aesProcessor) WrapKW(kek, data []byte) ([]byte, error) {
	block, err := a.newBlock(kek)
	if err != nil {
		return nil, err
	}
	if len(data) < 2*kwBlockSize || len(data)%kwBlockSize != 0 {
		return nil, fmt.Errorf("%w: AES-KW input must be a multiple of 8 bytes and at least 16", cryptoDomain.ErrInvalidParameters)
	}

	n := len(data) / kwBlockSize
	r := make([]byte, len(data))
	copy(r, data)

	aiv := make([]byte, kwBlockSize)
	copy(aiv, kwDefaultIV)
	buf := make([]byte, aes.BlockSize)

	for j := 0; j < 6; j++ {
		for i := 0; i < n; i++ {
			copy(buf[:kwBlockSize], aiv)
			copy(buf[kwBlockSize:], r[i*kwBlockSize:(i+1)*kwBlockSize])
			block.Encrypt(buf, buf)

			t := uint64(n*j + i + 1)
			binary.BigEndian.PutUint64(aiv, binary.BigEndian.Uint64(buf[:kwBlockSize])^t)
			copy(r[i*kwBlockSize:], buf[kwBlockSize:])
		}
	}

	a.logger.Debug("AES-KW wrap succeeded")
	return append(aiv, r...), nil
}

// UnwrapKW unwraps data produced by WrapKW and checks the integrity value.
func (a *aesProcessor) UnwrapKW(kek, wrapped []byte) ([]byte, error) {
	block, err := a.newBlock(kek)
	if err != nil {
		return nil, err
	}
	if len(wrapped) < 3*kwBlockSize || len(wrapped)%kwBlockSize != 0 {
		return nil, fmt.Errorf("%w: AES-KW ciphertext must be a multiple of 8 bytes and at least 24", cryptoDomain.ErrOperationFailed)
	}

	n := len(wrapped)/kwBlockSize - 1
	aiv := make([]byte, kwBlockSize)
	copy(aiv, wrapped[:kwBlockSize])
	r := make([]byte, len(wrapped))
	copy(r, wrapped[kwBlockSize:])
	buf := make([]byte, aes.BlockSize)

	for j := 5; j >= 0; j-- {
		for i := n - 1; i >= 0; i-- {
			t := uint64(n*j + i + 1)
			binary.BigEndian.PutUint64(buf[:kwBlockSize], binary.BigEndian.Uint64(aiv)^t)
			copy(buf[kwBlockSize:], r[i*kwBlockSize:(i+1)*kwBlockSize])
			block.Decrypt(buf, buf)

			copy(aiv, buf[:kwBlockSize])
			copy(r[i*kwBlockSize:], buf[kwBlockSize:])
		}
	}

	if subtle.ConstantTimeCompare(aiv, kwDefaultIV) != 1 {
		return nil, fmt.Errorf("%w: AES-KW integrity check failed", cryptoDomain.ErrOperationFailed)
	}

	a.logger.Debug("AES-KW unwrap succeeded")
	// r was sized for the wrapped input, which carries one extra block
	return cryptoDomain.ShrinkBuffer(r, n*kwBlockSize), nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padding)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padding)
	}
	return padded
}

// pkcs7UnpaddedLen returns the length of data once its padding is removed.
func pkcs7UnpaddedLen(data []byte, blockSize int) (int, error) {
	padding := int(data[len(data)-1])
	if padding == 0 || padding > blockSize || padding > len(data) {
		return 0, fmt.Errorf("%w: invalid padding", cryptoDomain.ErrOperationFailed)
	}
	for _, b := range data[len(data)-padding:] {
		if int(b) != padding {
			return 0, fmt.Errorf("%w: invalid padding", cryptoDomain.ErrOperationFailed)
		}
	}
	return len(data) - padding, nil
}
