package repomanager

import (
	"context"

	"github.com/dgraph-io/badger/v4"
	"github.com/dmitrijs2005/tnyr/internal/logging"
	"github.com/dmitrijs2005/tnyr/internal/server/models"
	"github.com/dmitrijs2005/tnyr/internal/server/repositories/links"
)

// BadgerRepositoryManager serves links from an embedded badger database.
// Units of work are badger update transactions with conflict detection.
type BadgerRepositoryManager struct {
	db *badger.DB
}

// OpenBadger opens (or creates) a badger database in dir. An empty dir
// opens an in-memory database.
func OpenBadger(dir string, logger logging.Logger) (*badger.DB, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	if logger != nil {
		opts = opts.WithLogger(logging.NewBadgerLogger(logger))
	} else {
		opts = opts.WithLogger(nil)
	}
	return badger.Open(opts)
}

func NewBadgerRepositoryManager(db *badger.DB) *BadgerRepositoryManager {
	return &BadgerRepositoryManager{db: db}
}

func (m *BadgerRepositoryManager) RunMigrations(context.Context) error {
	return nil
}

func (m *BadgerRepositoryManager) Links(scheme models.Scheme) links.Repository {
	return links.NewBadgerRepository(m.db, nil, scheme)
}

func (m *BadgerRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	err := m.db.Update(func(txn *badger.Txn) error {
		return fn(ctx, badgerTxRepositories{db: m.db, txn: txn})
	})
	return links.MapBadgerError(err)
}

func (m *BadgerRepositoryManager) Close() error {
	return m.db.Close()
}

type badgerTxRepositories struct {
	db  *badger.DB
	txn *badger.Txn
}

func (r badgerTxRepositories) Links(scheme models.Scheme) links.Repository {
	return links.NewBadgerRepository(r.db, r.txn, scheme)
}
