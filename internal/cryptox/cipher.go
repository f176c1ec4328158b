package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/dmitrijs2005/tnyr/internal/common"
)

const (
	// KeySize is the AES-256 key length.
	KeySize = 32
	// IVSize is the CBC initialization vector length.
	IVSize = aes.BlockSize
)

var (
	// ErrInvalidKeyLength is a caller bug, not a decryption outcome.
	ErrInvalidKeyLength = errors.New("invalid key length")

	// ErrDecryptionFailed covers every way decryption can go wrong. The
	// cause is intentionally not exposed.
	ErrDecryptionFailed = errors.New("decryption failed")
)

// Encrypt pads plaintext with PKCS#7 and encrypts it with AES-256-CBC under a
// fresh random IV. The IV is not secret and is returned alongside the
// ciphertext.
func Encrypt(key []byte, plaintext string) (iv, ciphertext []byte, err error) {
	if len(key) != KeySize {
		return nil, nil, fmt.Errorf("%w: %d bytes (need %d)", ErrInvalidKeyLength, len(key), KeySize)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, err
	}

	iv = common.GenerateRandByteArray(IVSize)
	ciphertext = pkcs7Pad([]byte(plaintext), aes.BlockSize)

	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, ciphertext)

	return iv, ciphertext, nil
}

// Decrypt reverses Encrypt. Any failure other than a wrong key length is
// reported as ErrDecryptionFailed.
func Decrypt(key, iv, ciphertext []byte) (string, error) {
	if len(key) != KeySize {
		return "", fmt.Errorf("%w: %d bytes (need %d)", ErrInvalidKeyLength, len(key), KeySize)
	}
	if len(iv) != IVSize || len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return "", ErrDecryptionFailed
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", ErrDecryptionFailed
	}

	padded := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(padded, ciphertext)

	plaintext, ok := pkcs7Unpad(padded, aes.BlockSize)
	if !ok || !utf8.Valid(plaintext) {
		return "", ErrDecryptionFailed
	}

	return string(plaintext), nil
}

func pkcs7Pad(b []byte, blockSize int) []byte {
	n := blockSize - len(b)%blockSize
	out := make([]byte, len(b)+n)
	copy(out, b)
	for i := len(b); i < len(out); i++ {
		out[i] = byte(n)
	}
	return out
}

// pkcs7Unpad inspects the last block without branching on individual
// padding bytes.
func pkcs7Unpad(b []byte, blockSize int) ([]byte, bool) {
	if len(b) == 0 || len(b)%blockSize != 0 {
		return nil, false
	}

	n := int(b[len(b)-1])
	good := subtle.ConstantTimeLessOrEq(1, n) & subtle.ConstantTimeLessOrEq(n, blockSize)

	tail := b[len(b)-blockSize:]
	for i := 0; i < blockSize; i++ {
		inPad := subtle.ConstantTimeLessOrEq(blockSize, i+n)
		match := subtle.ConstantTimeByteEq(tail[i], byte(n))
		good &= match | (inPad ^ 1)
	}

	if good != 1 {
		return nil, false
	}
	return b[:len(b)-n], true
}
