// Package links stores encrypted link records keyed by their lookup hash.
//
// Every backend keeps server-scheme and client-scheme links in separate
// namespaces and enforces uniqueness of the lookup hash within a namespace:
// Create never overwrites an existing record.
package links

import (
	"context"

	"github.com/dmitrijs2005/tnyr/internal/server/models"
)

// Repository is one namespace of link records.
type Repository interface {
	// Get returns the record for lookupHash or common.ErrorNotFound.
	Get(ctx context.Context, lookupHash string) (*models.Link, error)
	// Exists reports whether lookupHash is taken.
	Exists(ctx context.Context, lookupHash string) (bool, error)
	// Create inserts link if its lookup hash is free, otherwise it returns
	// common.ErrorAlreadyExists.
	Create(ctx context.Context, link *models.Link) error
	// Replace overwrites the material of an existing record, keeping the
	// lookup hash. Missing records yield common.ErrorNotFound.
	Replace(ctx context.Context, link *models.Link) error
}

// table names double as namespace prefixes for key-value backends
func tableFor(scheme models.Scheme) string {
	if scheme == models.SchemeClient {
		return "client_side_urls"
	}
	return "urls"
}
