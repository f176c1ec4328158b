package cryptox

import (
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// SecretSize is the length of each server secret in bytes.
const SecretSize = 16

var (
	ErrInvalidSecret = errors.New("server secret must decode to 16 bytes")
	ErrInvalidParams = errors.New("invalid key derivation parameters")
)

// Secret is one of the two server-held Argon2id salts.
type Secret [SecretSize]byte

// ParseSecret decodes a hex string into a Secret. Anything that is not
// exactly 16 bytes of valid hex is rejected.
func ParseSecret(s string) (Secret, error) {
	var secret Secret

	b, err := hex.DecodeString(s)
	if err != nil {
		return secret, fmt.Errorf("%w: %v", ErrInvalidSecret, err)
	}
	if len(b) != SecretSize {
		return secret, fmt.Errorf("%w: got %d bytes", ErrInvalidSecret, len(b))
	}

	copy(secret[:], b)
	return secret, nil
}

// Argon2Params holds the Argon2id cost parameters. MemoryCost is in KiB.
type Argon2Params struct {
	TimeCost    uint32
	MemoryCost  uint32
	Parallelism uint8
	KeyLength   uint32
}

// DefaultArgon2Params are used when the configuration leaves them unset.
var DefaultArgon2Params = Argon2Params{
	TimeCost:    1,
	MemoryCost:  64 * 1024,
	Parallelism: 4,
	KeyLength:   KeySize,
}

// Validate reports whether p can be used for key derivation. KeyLength must
// match the AES-256 key size since the same output feeds the cipher.
func (p Argon2Params) Validate() error {
	switch {
	case p.TimeCost < 1:
		return fmt.Errorf("%w: time cost must be at least 1", ErrInvalidParams)
	case p.Parallelism < 1:
		return fmt.Errorf("%w: parallelism must be at least 1", ErrInvalidParams)
	case p.MemoryCost < 8*uint32(p.Parallelism):
		return fmt.Errorf("%w: memory cost must be at least 8*parallelism KiB", ErrInvalidParams)
	case p.KeyLength != KeySize:
		return fmt.Errorf("%w: key length must be %d", ErrInvalidParams, KeySize)
	}
	return nil
}

// DeriveServerKey runs Argon2id with identifier as the password and secret as
// the salt. The output is deterministic for the same inputs.
func DeriveServerKey(identifier []byte, secret Secret, p Argon2Params) []byte {
	return argon2.IDKey(identifier, secret[:], p.TimeCost, p.MemoryCost, p.Parallelism, p.KeyLength)
}

// ServerKeys derives server-scheme keys. The lookup and encryption secrets are
// fixed at construction and never leave the value.
type ServerKeys struct {
	lookup     Secret
	encryption Secret
	params     Argon2Params
}

// NewServerKeys validates params and returns a ServerKeys bound to the two
// secrets.
func NewServerKeys(lookup, encryption Secret, params Argon2Params) (*ServerKeys, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &ServerKeys{lookup: lookup, encryption: encryption, params: params}, nil
}

// LookupKey derives the raw lookup key for id.
func (k *ServerKeys) LookupKey(id string) []byte {
	return DeriveServerKey([]byte(id), k.lookup, k.params)
}

// LookupHash derives the hex-encoded lookup key for id.
func (k *ServerKeys) LookupHash(id string) string {
	return hex.EncodeToString(k.LookupKey(id))
}

// EncryptionKey derives the AES key for id. Callers should wipe it after use.
func (k *ServerKeys) EncryptionKey(id string) []byte {
	return DeriveServerKey([]byte(id), k.encryption, k.params)
}
