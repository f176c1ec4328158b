package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/tnyr/internal/dbx"
	"github.com/dmitrijs2005/tnyr/internal/server/migrations"
	"github.com/dmitrijs2005/tnyr/internal/server/models"
	"github.com/dmitrijs2005/tnyr/internal/server/repositories/links"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// SQLRepositoryManager serves links from PostgreSQL (pgx) or SQLite.
type SQLRepositoryManager struct {
	db      *sql.DB
	dialect links.Dialect
}

// NewPostgresRepositoryManager wraps a pool opened with the "pgx" driver.
func NewPostgresRepositoryManager(db *sql.DB) *SQLRepositoryManager {
	return &SQLRepositoryManager{db: db, dialect: links.DialectPostgres}
}

// NewSQLiteRepositoryManager wraps a pool opened with the "sqlite" driver.
// SQLite allows a single writer, so the pool is capped at one connection.
func NewSQLiteRepositoryManager(db *sql.DB) *SQLRepositoryManager {
	db.SetMaxOpenConns(1)
	return &SQLRepositoryManager{db: db, dialect: links.DialectSQLite}
}

func (m *SQLRepositoryManager) migrationDir() (dir, dialect string) {
	if m.dialect == links.DialectSQLite {
		return "sqlite", "sqlite3"
	}
	return "postgres", "pgx"
}

func (m *SQLRepositoryManager) RunMigrations(ctx context.Context) error {
	dir, dialect := m.migrationDir()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, m.db, dir); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	return nil
}

func (m *SQLRepositoryManager) Links(scheme models.Scheme) links.Repository {
	return links.NewSQLRepository(m.db, m.dialect, scheme)
}

func (m *SQLRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	return dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, sqlTxRepositories{tx: tx, dialect: m.dialect})
	})
}

func (m *SQLRepositoryManager) Close() error {
	return m.db.Close()
}

type sqlTxRepositories struct {
	tx      dbx.DBTX
	dialect links.Dialect
}

func (r sqlTxRepositories) Links(scheme models.Scheme) links.Repository {
	return links.NewSQLRepository(r.tx, r.dialect, scheme)
}
