package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/tnyr/internal/common"
	"github.com/dmitrijs2005/tnyr/internal/cryptox"
	"github.com/dmitrijs2005/tnyr/internal/server/models"
	"github.com/dmitrijs2005/tnyr/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testID = "Xy7pQ9zT2k"

func seal(t *testing.T, s linkScheme, repos repomanager.Repositories, id, url string) models.Link {
	t.Helper()
	hash, err := s.LookupHash(id)
	require.NoError(t, err)
	m, err := s.Seal(id, url)
	require.NoError(t, err)

	link := models.Link{LookupHash: hash, Material: m}
	require.NoError(t, s.Repository(repos).Create(context.Background(), &link))
	return link
}

func open(t *testing.T, key []byte, m models.Material) string {
	t.Helper()
	plain, err := cryptox.Decrypt(key, m.IV, m.Ciphertext)
	require.NoError(t, err)
	return plain
}

func TestReconciler_ServerSchemeWins(t *testing.T) {
	ctx := context.Background()
	keys := testServerKeys(t)
	rm := repomanager.NewMemoryRepositoryManager()
	r := NewReconciler(keys, testClientKeys)

	server := seal(t, serverScheme{keys}, rm, testID, "https://server.example")
	client := seal(t, clientScheme{testClientKeys}, rm, testID, "https://client.example")

	scheme, err := r.LocateAndReplace(ctx, rm, testID, common.RemovedMarker)
	require.NoError(t, err)
	assert.Equal(t, models.SchemeServer, scheme)

	got, err := rm.Links(models.SchemeServer).Get(ctx, server.LookupHash)
	require.NoError(t, err)
	assert.Equal(t, common.RemovedMarker, open(t, keys.EncryptionKey(testID), got.Material))
	assert.Nil(t, got.Material.Salt)

	untouched, err := rm.Links(models.SchemeClient).Get(ctx, client.LookupHash)
	require.NoError(t, err)
	assert.Equal(t, client.Material, untouched.Material)
}

func TestReconciler_ClientSchemeGetsFreshSalt(t *testing.T) {
	ctx := context.Background()
	rm := repomanager.NewMemoryRepositoryManager()
	r := NewReconciler(testServerKeys(t), testClientKeys)

	before := seal(t, clientScheme{testClientKeys}, rm, testID, "https://client.example")

	scheme, err := r.LocateAndReplace(ctx, rm, testID, common.RemovedMarker)
	require.NoError(t, err)
	assert.Equal(t, models.SchemeClient, scheme)

	after, err := rm.Links(models.SchemeClient).Get(ctx, before.LookupHash)
	require.NoError(t, err)
	require.Len(t, after.Material.Salt, cryptox.ClientSaltSize)
	assert.NotEqual(t, before.Material.Salt, after.Material.Salt)

	key, err := testClientKeys.EncryptionKey(testID, after.Material.Salt)
	require.NoError(t, err)
	assert.Equal(t, common.RemovedMarker, open(t, key, after.Material))
}

func TestReconciler_NotFound(t *testing.T) {
	rm := repomanager.NewMemoryRepositoryManager()
	r := NewReconciler(testServerKeys(t), testClientKeys)

	_, err := r.LocateAndReplace(context.Background(), rm, "nobody", common.RemovedMarker)
	require.ErrorIs(t, err, common.ErrorNotFound)
}
