package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/tnyr/internal/common"
	"github.com/dmitrijs2005/tnyr/internal/cryptox"
)

// ExistsFunc reports whether a lookup hash is already taken.
type ExistsFunc func(ctx context.Context, lookupHash string) (bool, error)

// Allocator draws random identifiers until one maps to an unused server
// lookup hash.
type Allocator struct {
	alphabet    string
	length      int
	maxAttempts int
	keys        *cryptox.ServerKeys

	// generate is replaced in tests to force collisions.
	generate func(alphabet string, length int) (string, error)
}

func NewAllocator(alphabet string, length, maxAttempts int, keys *cryptox.ServerKeys) (*Allocator, error) {
	if err := cryptox.ValidateIDConfig(alphabet, length); err != nil {
		return nil, err
	}
	if maxAttempts <= 0 {
		return nil, fmt.Errorf("%w: max attempts must be positive", common.ErrorValidation)
	}
	return &Allocator{
		alphabet:    alphabet,
		length:      length,
		maxAttempts: maxAttempts,
		keys:        keys,
		generate:    cryptox.GenerateID,
	}, nil
}

// Allocate returns a fresh identifier and its lookup hash. It gives up with
// common.ErrorExhausted after maxAttempts taken hashes. An error from exists
// stops the loop immediately.
func (a *Allocator) Allocate(ctx context.Context, exists ExistsFunc) (id, lookupHash string, err error) {
	for i := 0; i < a.maxAttempts; i++ {
		if err := ctx.Err(); err != nil {
			return "", "", err
		}

		id, err = a.generate(a.alphabet, a.length)
		if err != nil {
			return "", "", err
		}
		lookupHash = a.keys.LookupHash(id)

		taken, err := exists(ctx, lookupHash)
		if err != nil {
			return "", "", err
		}
		if !taken {
			return id, lookupHash, nil
		}
	}
	return "", "", common.ErrorExhausted
}
