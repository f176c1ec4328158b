package links

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/tnyr/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func errorsIsAny(err error, targets ...error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

func TestMemoryRepository_Contract(t *testing.T) {
	runRepositoryContract(t, NewMemoryRepository())
}

func TestMemoryRepository_ConcurrentCreate(t *testing.T) {
	runConcurrentCreate(t, NewMemoryRepository(), 32)
}

func TestMemoryRepository_CopiesMaterial(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	iv := []byte("iv")
	require.NoError(t, repo.Create(ctx, &models.Link{LookupHash: "h", Material: models.Material{IV: iv}}))
	iv[0] = 'X'

	got, err := repo.Get(ctx, "h")
	require.NoError(t, err)
	assert.Equal(t, []byte("iv"), got.Material.IV)
	assert.Equal(t, 1, repo.Len())
}
