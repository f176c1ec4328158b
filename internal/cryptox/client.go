package cryptox

import (
	"encoding/hex"

	"github.com/dmitrijs2005/tnyr/internal/common"
	"golang.org/x/crypto/scrypt"
)

// ClientProtocolVersion versions ClientLookupSalt and ClientScryptParams.
// Remote clients compute lookup hashes with the same constants, so changing
// either one breaks every client-scheme link.
const ClientProtocolVersion = 1

// ClientLookupSalt is the public salt for client-scheme lookup keys
// ("tnyr.me_lookup_s").
var ClientLookupSalt = [16]byte{
	0x74, 0x6e, 0x79, 0x72, 0x2e, 0x6d, 0x65, 0x5f,
	0x6c, 0x6f, 0x6f, 0x6b, 0x75, 0x70, 0x5f, 0x73,
}

// ClientSaltSize is the length of a per-record encryption salt.
const ClientSaltSize = 16

// ScryptParams holds the scrypt cost parameters.
type ScryptParams struct {
	N, R, P   int
	KeyLength int
}

// ClientScryptParams are the protocol parameters shared with remote clients.
var ClientScryptParams = ScryptParams{N: 1 << 17, R: 8, P: 1, KeyLength: KeySize}

// DeriveClientKey runs scrypt over identifier and salt.
func DeriveClientKey(identifier, salt []byte, p ScryptParams) ([]byte, error) {
	key, err := scrypt.Key(identifier, salt, p.N, p.R, p.P, p.KeyLength)
	if err != nil {
		return nil, ErrInvalidParams
	}
	return key, nil
}

// ClientKeys derives client-scheme keys. The zero value is not usable; use
// NewClientKeys.
type ClientKeys struct {
	params ScryptParams
}

// NewClientKeys returns ClientKeys using the protocol parameters.
func NewClientKeys() ClientKeys {
	return ClientKeys{params: ClientScryptParams}
}

// NewClientKeysWithParams returns ClientKeys with custom scrypt parameters.
// Only useful for tests and benchmarks; the result does not interoperate
// with other clients.
func NewClientKeysWithParams(p ScryptParams) ClientKeys {
	return ClientKeys{params: p}
}

// LookupHash derives the hex-encoded client lookup key for id.
func (c ClientKeys) LookupHash(id string) (string, error) {
	key, err := DeriveClientKey([]byte(id), ClientLookupSalt[:], c.params)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(key), nil
}

// EncryptionKey derives the AES key for id under a per-record salt.
func (c ClientKeys) EncryptionKey(id string, salt []byte) ([]byte, error) {
	return DeriveClientKey([]byte(id), salt, c.params)
}

// NewSalt returns a fresh random per-record salt.
func (c ClientKeys) NewSalt() []byte {
	return common.GenerateRandByteArray(ClientSaltSize)
}
