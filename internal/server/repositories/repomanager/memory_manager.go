package repomanager

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/tnyr/internal/server/models"
	"github.com/dmitrijs2005/tnyr/internal/server/repositories/links"
)

// MemoryRepositoryManager keeps both namespaces in process memory. Units
// of work are serialised.
type MemoryRepositoryManager struct {
	mu     sync.Mutex
	server *links.MemoryRepository
	client *links.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		server: links.NewMemoryRepository(),
		client: links.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context) error {
	return nil
}

func (m *MemoryRepositoryManager) Links(scheme models.Scheme) links.Repository {
	if scheme == models.SchemeClient {
		return m.client
	}
	return m.server
}

func (m *MemoryRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx, m)
}

func (m *MemoryRepositoryManager) Close() error {
	return nil
}
