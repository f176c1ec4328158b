// Package repomanager vends link repositories for the configured storage
// backend and runs units of work against them.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/tnyr/internal/server/models"
	"github.com/dmitrijs2005/tnyr/internal/server/repositories/links"
)

// Repositories returns the repository for each link scheme. Values handed
// to a WithTx callback are bound to that unit of work.
type Repositories interface {
	Links(scheme models.Scheme) links.Repository
}

// RepositoryManager owns a storage backend.
type RepositoryManager interface {
	Repositories

	// RunMigrations prepares the backend's schema. It is a no-op for
	// backends without one.
	RunMigrations(ctx context.Context) error

	// WithTx runs fn as one unit of work. On the transactional backends
	// a lost write race surfaces as common.ErrorConflict.
	WithTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error

	Close() error
}
