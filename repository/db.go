// Package repository contains the data-access layer of the STP shift
// exchange: the lifecycle manager, the subscription matcher and the
// notification ledger.  Repositories depend on narrow query interfaces so
// they can be exercised in tests without a live database; *sqlx.DB
// satisfies them through Wrap.
package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// Execer runs statements that do not return rows.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Getter scans a single row into dest.
type Getter interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
}

// Selecter scans a result set into a slice dest.
type Selecter interface {
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

// DB is the full query surface a repository needs.
type DB interface {
	Execer
	Getter
	Selecter
	BeginTx(ctx context.Context, opts *sql.TxOptions) (Tx, error)
}

// Tx is an in-flight transaction.  *sqlx.Tx satisfies it.
type Tx interface {
	Execer
	Getter
	Commit() error
	Rollback() error
}

// Wrap adapts a *sqlx.DB to the DB interface.
func Wrap(db *sqlx.DB) DB { return sqlxDB{db} }

type sqlxDB struct {
	*sqlx.DB
}

// BeginTx shadows the promoted *sql.DB method so transactions expose the
// sqlx scanning helpers.
func (w sqlxDB) BeginTx(ctx context.Context, opts *sql.TxOptions) (Tx, error) {
	tx, err := w.DB.BeginTxx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return tx, nil
}
