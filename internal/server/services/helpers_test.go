package services

import (
	"testing"

	"github.com/dmitrijs2005/tnyr/internal/cryptox"
	"github.com/dmitrijs2005/tnyr/internal/server/config"
	"github.com/stretchr/testify/require"
)

const (
	testLookupHex     = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	testEncryptionHex = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

// Cheap parameters keep tests fast; the protocol constants are covered in
// the cryptox tests.
var (
	testArgon2Params = cryptox.Argon2Params{TimeCost: 1, MemoryCost: 64, Parallelism: 1, KeyLength: 32}
	testClientKeys   = cryptox.NewClientKeysWithParams(cryptox.ScryptParams{N: 16, R: 1, P: 1, KeyLength: 32})
)

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.StorageBackend = config.BackendMemory
	c.LookupSecret = testLookupHex
	c.EncryptionSecret = testEncryptionHex
	c.Argon2TimeCost = testArgon2Params.TimeCost
	c.Argon2MemoryCost = testArgon2Params.MemoryCost
	c.Argon2Parallelism = testArgon2Params.Parallelism
	c.Argon2HashLength = testArgon2Params.KeyLength
	c.DeletionToken = "let-me-delete"
	return c
}

func testServerKeys(t *testing.T) *cryptox.ServerKeys {
	t.Helper()
	keys, err := testConfig().Keys()
	require.NoError(t, err)
	return keys
}
