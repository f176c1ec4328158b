package links

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/dmitrijs2005/tnyr/internal/common"
	"github.com/dmitrijs2005/tnyr/internal/server/models"
)

// BadgerRepository stores links in an embedded badger database under a
// per-scheme key prefix. When bound to a transaction every call joins it;
// otherwise each call runs in its own transaction.
type BadgerRepository struct {
	db     *badger.DB
	txn    *badger.Txn
	prefix string
}

// NewBadgerRepository returns a repository for scheme. txn may be nil.
func NewBadgerRepository(db *badger.DB, txn *badger.Txn, scheme models.Scheme) *BadgerRepository {
	return &BadgerRepository{db: db, txn: txn, prefix: tableFor(scheme) + "/"}
}

func (r *BadgerRepository) key(lookupHash string) []byte {
	return []byte(r.prefix + lookupHash)
}

func (r *BadgerRepository) view(fn func(txn *badger.Txn) error) error {
	if r.txn != nil {
		return fn(r.txn)
	}
	return r.db.View(fn)
}

func (r *BadgerRepository) update(fn func(txn *badger.Txn) error) error {
	if r.txn != nil {
		return fn(r.txn)
	}
	return MapBadgerError(r.db.Update(fn))
}

func (r *BadgerRepository) Get(ctx context.Context, lookupHash string) (*models.Link, error) {
	var value []byte

	err := r.view(func(txn *badger.Txn) error {
		item, err := txn.Get(r.key(lookupHash))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	m, err := decodeMaterial(value)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &models.Link{LookupHash: lookupHash, Material: m}, nil
}

func (r *BadgerRepository) Exists(ctx context.Context, lookupHash string) (bool, error) {
	err := r.view(func(txn *badger.Txn) error {
		_, err := txn.Get(r.key(lookupHash))
		return err
	})
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("db error: %w", err)
	}
}

func (r *BadgerRepository) Create(ctx context.Context, link *models.Link) error {
	value, err := encodeMaterial(link.Material)
	if err != nil {
		return err
	}

	return r.update(func(txn *badger.Txn) error {
		_, err := txn.Get(r.key(link.LookupHash))
		if err == nil {
			return common.ErrorAlreadyExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("db error: %w", err)
		}
		return txn.Set(r.key(link.LookupHash), value)
	})
}

func (r *BadgerRepository) Replace(ctx context.Context, link *models.Link) error {
	value, err := encodeMaterial(link.Material)
	if err != nil {
		return err
	}

	return r.update(func(txn *badger.Txn) error {
		_, err := txn.Get(r.key(link.LookupHash))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return common.ErrorNotFound
		}
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		return txn.Set(r.key(link.LookupHash), value)
	})
}

// MapBadgerError turns a commit conflict into common.ErrorConflict: another
// transaction wrote a key this one read, so the caller should retry.
func MapBadgerError(err error) error {
	if errors.Is(err, badger.ErrConflict) {
		return common.ErrorConflict
	}
	return err
}
