package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/tnyr/internal/common"
	"github.com/dmitrijs2005/tnyr/internal/cryptox"
	"github.com/dmitrijs2005/tnyr/internal/server/models"
	"github.com/dmitrijs2005/tnyr/internal/server/repositories/repomanager"
)

// Reconciler finds which scheme an identifier was stored under and rewrites
// that record in place.
type Reconciler struct {
	schemes []linkScheme
}

// NewReconciler probes the server scheme first, then the client scheme.
func NewReconciler(server *cryptox.ServerKeys, client cryptox.ClientKeys) *Reconciler {
	return &Reconciler{schemes: []linkScheme{
		serverScheme{keys: server},
		clientScheme{keys: client},
	}}
}

// LocateAndReplace seals replacement with the first scheme whose namespace
// holds id and replaces the stored material, keeping the lookup hash.
// It returns common.ErrorNotFound when no scheme knows id.
func (r *Reconciler) LocateAndReplace(ctx context.Context, repos repomanager.Repositories, id, replacement string) (models.Scheme, error) {
	for _, s := range r.schemes {
		hash, err := s.LookupHash(id)
		if err != nil {
			return 0, err
		}

		repo := s.Repository(repos)
		found, err := repo.Exists(ctx, hash)
		if err != nil {
			return 0, err
		}
		if !found {
			continue
		}

		m, err := s.Seal(id, replacement)
		if err != nil {
			return 0, fmt.Errorf("seal %s: %w", s.Scheme(), err)
		}
		if err := repo.Replace(ctx, &models.Link{LookupHash: hash, Material: m}); err != nil {
			return 0, err
		}
		return s.Scheme(), nil
	}
	return 0, common.ErrorNotFound
}
