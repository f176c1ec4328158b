package links

import (
	"bytes"
	"context"
	"sync"

	"github.com/dmitrijs2005/tnyr/internal/common"
	"github.com/dmitrijs2005/tnyr/internal/server/models"
)

// MemoryRepository keeps links in a map. Useful for tests and throwaway
// deployments; nothing survives a restart.
type MemoryRepository struct {
	mu    sync.RWMutex
	links map[string]models.Material
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{links: make(map[string]models.Material)}
}

func (r *MemoryRepository) Get(ctx context.Context, lookupHash string) (*models.Link, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.links[lookupHash]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &models.Link{LookupHash: lookupHash, Material: cloneMaterial(m)}, nil
}

func (r *MemoryRepository) Exists(ctx context.Context, lookupHash string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.links[lookupHash]
	return ok, nil
}

func (r *MemoryRepository) Create(ctx context.Context, link *models.Link) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.links[link.LookupHash]; ok {
		return common.ErrorAlreadyExists
	}
	r.links[link.LookupHash] = cloneMaterial(link.Material)
	return nil
}

func (r *MemoryRepository) Replace(ctx context.Context, link *models.Link) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.links[link.LookupHash]; !ok {
		return common.ErrorNotFound
	}
	r.links[link.LookupHash] = cloneMaterial(link.Material)
	return nil
}

// Len returns the number of stored links.
func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.links)
}

func cloneMaterial(m models.Material) models.Material {
	return models.Material{
		Salt:       bytes.Clone(m.Salt),
		IV:         bytes.Clone(m.IV),
		Ciphertext: bytes.Clone(m.Ciphertext),
	}
}
