package links

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/dmitrijs2005/tnyr/internal/common"
	"github.com/dmitrijs2005/tnyr/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runRepositoryContract checks the behaviour every backend must share.
func runRepositoryContract(t *testing.T, repo Repository) {
	t.Helper()
	ctx := context.Background()

	_, err := repo.Get(ctx, "missing")
	require.ErrorIs(t, err, common.ErrorNotFound)

	ok, err := repo.Exists(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.ErrorIs(t, repo.Replace(ctx, &models.Link{LookupHash: "missing"}), common.ErrorNotFound)

	first := &models.Link{LookupHash: "h1", Material: models.Material{
		Salt: []byte("salt-1"), IV: []byte("iv-1"), Ciphertext: []byte("ct-1"),
	}}
	require.NoError(t, repo.Create(ctx, first))

	ok, err = repo.Exists(ctx, "h1")
	require.NoError(t, err)
	assert.True(t, ok)

	dup := &models.Link{LookupHash: "h1", Material: models.Material{IV: []byte("x"), Ciphertext: []byte("y")}}
	require.ErrorIs(t, repo.Create(ctx, dup), common.ErrorAlreadyExists)

	got, err := repo.Get(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, first.Material, got.Material)

	replaced := &models.Link{LookupHash: "h1", Material: models.Material{
		Salt: []byte("salt-2"), IV: []byte("iv-2"), Ciphertext: []byte("ct-2"),
	}}
	require.NoError(t, repo.Replace(ctx, replaced))

	got, err = repo.Get(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, "h1", got.LookupHash)
	assert.Equal(t, replaced.Material, got.Material)
}

// runConcurrentCreate races n writers on one key; exactly one may win.
func runConcurrentCreate(t *testing.T, repo Repository, n int) {
	t.Helper()

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.Create(context.Background(), &models.Link{
				LookupHash: "race",
				Material:   models.Material{IV: []byte("iv"), Ciphertext: []byte("ct")},
			})
			if err == nil {
				wins.Add(1)
				return
			}
			assert.True(t,
				errorsIsAny(err, common.ErrorAlreadyExists, common.ErrorConflict),
				"unexpected error %v", err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}
