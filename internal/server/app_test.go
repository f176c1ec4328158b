package server

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/tnyr/internal/logging"
	"github.com/dmitrijs2005/tnyr/internal/server/config"
	"github.com/dmitrijs2005/tnyr/internal/server/models"
	"github.com/dmitrijs2005/tnyr/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(backend string) *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.EndpointAddrHTTP = "127.0.0.1:0"
	c.StorageBackend = backend
	c.LookupSecret = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	c.EncryptionSecret = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	c.Argon2MemoryCost = 64
	c.Argon2Parallelism = 1
	c.LogLevel = "error"
	return c
}

func TestNewApp_RejectsMissingSecrets(t *testing.T) {
	c := testConfig(config.BackendMemory)
	c.LookupSecret = ""

	_, err := NewApp(context.Background(), c)
	require.Error(t, err)
}

func TestNewApp_RunStopsOnCancel(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig(config.BackendMemory))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, app.Run(ctx))
}

func TestNewRepositoryManager_Backends(t *testing.T) {
	ctx := context.Background()

	sqlite := testConfig(config.BackendSQLite)
	sqlite.DatabaseDSN = "file:" + filepath.Join(t.TempDir(), "tnyr.db")

	badger := testConfig(config.BackendBadger)
	badger.BadgerPath = filepath.Join(t.TempDir(), "badger")

	for _, c := range []*config.Config{sqlite, badger, testConfig(config.BackendMemory)} {
		t.Run(c.StorageBackend, func(t *testing.T) {
			rm, err := newRepositoryManager(ctx, c, logging.Nop{})
			require.NoError(t, err)
			defer rm.Close()

			require.NoError(t, rm.RunMigrations(ctx))
			err = rm.WithTx(ctx, func(ctx context.Context, repos repomanager.Repositories) error {
				return repos.Links(models.SchemeServer).Create(ctx, &models.Link{
					LookupHash: "h",
					Material:   models.Material{IV: []byte("iv"), Ciphertext: []byte("ct")},
				})
			})
			require.NoError(t, err)
		})
	}
}

func TestNewRepositoryManager_Unknown(t *testing.T) {
	_, err := newRepositoryManager(context.Background(), testConfig("redis"), logging.Nop{})
	require.Error(t, err)
}
