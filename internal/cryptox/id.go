package cryptox

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
)

// DefaultAlphabet is the identifier alphabet used when none is configured.
// It leaves out 0, O, I and l so identifiers survive human transcription.
const DefaultAlphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// DefaultIDLength is the identifier length used when none is configured.
const DefaultIDLength = 10

// ErrInvalidIDConfig is returned for an empty alphabet or a non-positive length.
var ErrInvalidIDConfig = errors.New("invalid identifier configuration")

// ValidateIDConfig checks that an alphabet/length pair can produce identifiers.
func ValidateIDConfig(alphabet string, length int) error {
	if len(alphabet) == 0 || length <= 0 {
		return ErrInvalidIDConfig
	}
	if strings.ContainsAny(alphabet, " \t\r\n/?#") {
		return ErrInvalidIDConfig
	}
	return nil
}

// GenerateID returns length characters chosen independently and uniformly
// from alphabet using crypto/rand.
func GenerateID(alphabet string, length int) (string, error) {
	if err := ValidateIDConfig(alphabet, length); err != nil {
		return "", err
	}

	chars := []rune(alphabet)
	max := big.NewInt(int64(len(chars)))

	var sb strings.Builder
	sb.Grow(length)
	for i := 0; i < length; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		sb.WriteRune(chars[idx.Int64()])
	}
	return sb.String(), nil
}
