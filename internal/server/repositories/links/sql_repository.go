package links

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/tnyr/internal/common"
	"github.com/dmitrijs2005/tnyr/internal/dbx"
	"github.com/dmitrijs2005/tnyr/internal/server/models"
)

// Dialect selects the placeholder style of the SQL backend.
type Dialect int

const (
	DialectPostgres Dialect = iota
	DialectSQLite
)

func (d Dialect) placeholder(n int) string {
	if d == DialectSQLite {
		return "?"
	}
	return fmt.Sprintf("$%d", n)
}

// SQLRepository is a Repository over a PostgreSQL or SQLite table. The
// lookup_hash column is the primary key, which backs Create's uniqueness.
type SQLRepository struct {
	db       dbx.DBTX
	withSalt bool

	getQuery     string
	existsQuery  string
	createQuery  string
	replaceQuery string
}

// NewSQLRepository returns a repository for the scheme's table bound to db,
// which may be a *sql.DB or a *sql.Tx.
func NewSQLRepository(db dbx.DBTX, dialect Dialect, scheme models.Scheme) *SQLRepository {
	table := tableFor(scheme)
	p := dialect.placeholder

	r := &SQLRepository{db: db, withSalt: scheme == models.SchemeClient}

	r.existsQuery = fmt.Sprintf(`SELECT 1 FROM %s WHERE lookup_hash = %s`, table, p(1))

	if r.withSalt {
		r.getQuery = fmt.Sprintf(
			`SELECT encryption_salt, iv, encrypted_url FROM %s WHERE lookup_hash = %s`, table, p(1))
		r.createQuery = fmt.Sprintf(
			`INSERT INTO %s (lookup_hash, encryption_salt, iv, encrypted_url) VALUES (%s, %s, %s, %s) ON CONFLICT (lookup_hash) DO NOTHING`,
			table, p(1), p(2), p(3), p(4))
		r.replaceQuery = fmt.Sprintf(
			`UPDATE %s SET encryption_salt = %s, iv = %s, encrypted_url = %s WHERE lookup_hash = %s`,
			table, p(1), p(2), p(3), p(4))
	} else {
		r.getQuery = fmt.Sprintf(
			`SELECT iv, encrypted_url FROM %s WHERE lookup_hash = %s`, table, p(1))
		r.createQuery = fmt.Sprintf(
			`INSERT INTO %s (lookup_hash, iv, encrypted_url) VALUES (%s, %s, %s) ON CONFLICT (lookup_hash) DO NOTHING`,
			table, p(1), p(2), p(3))
		r.replaceQuery = fmt.Sprintf(
			`UPDATE %s SET iv = %s, encrypted_url = %s WHERE lookup_hash = %s`,
			table, p(1), p(2), p(3))
	}

	return r
}

func (r *SQLRepository) Get(ctx context.Context, lookupHash string) (*models.Link, error) {
	link := &models.Link{LookupHash: lookupHash}
	m := &link.Material

	var err error
	if r.withSalt {
		err = r.db.QueryRowContext(ctx, r.getQuery, lookupHash).Scan(&m.Salt, &m.IV, &m.Ciphertext)
	} else {
		err = r.db.QueryRowContext(ctx, r.getQuery, lookupHash).Scan(&m.IV, &m.Ciphertext)
	}

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return link, nil
}

func (r *SQLRepository) Exists(ctx context.Context, lookupHash string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, r.existsQuery, lookupHash).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("db error: %w", err)
	}
	return true, nil
}

func (r *SQLRepository) Create(ctx context.Context, link *models.Link) error {
	m := link.Material

	var (
		res sql.Result
		err error
	)
	if r.withSalt {
		res, err = r.db.ExecContext(ctx, r.createQuery, link.LookupHash, m.Salt, m.IV, m.Ciphertext)
	} else {
		res, err = r.db.ExecContext(ctx, r.createQuery, link.LookupHash, m.IV, m.Ciphertext)
	}
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorAlreadyExists
	}
	return nil
}

func (r *SQLRepository) Replace(ctx context.Context, link *models.Link) error {
	m := link.Material

	var (
		res sql.Result
		err error
	)
	if r.withSalt {
		res, err = r.db.ExecContext(ctx, r.replaceQuery, m.Salt, m.IV, m.Ciphertext, link.LookupHash)
	} else {
		res, err = r.db.ExecContext(ctx, r.replaceQuery, m.IV, m.Ciphertext, link.LookupHash)
	}
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
