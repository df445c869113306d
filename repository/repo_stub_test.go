package repository

import (
	"context"
	"database/sql"

	"go.uber.org/zap"
)

// stubDB satisfies DB for tests.  Unset functions fall back to harmless
// defaults: exec affects one row, get and select return nothing.
type stubDB struct {
	getFn    func(ctx context.Context, dest any, query string, args ...any) error
	selectFn func(ctx context.Context, dest any, query string, args ...any) error
	execFn   func(ctx context.Context, query string, args ...any) (sql.Result, error)
	beginFn  func(ctx context.Context, opts *sql.TxOptions) (Tx, error)
}

func (s stubDB) GetContext(ctx context.Context, dest any, query string, args ...any) error {
	if s.getFn == nil {
		return sql.ErrNoRows
	}
	return s.getFn(ctx, dest, query, args...)
}

func (s stubDB) SelectContext(ctx context.Context, dest any, query string, args ...any) error {
	if s.selectFn == nil {
		return nil
	}
	return s.selectFn(ctx, dest, query, args...)
}

func (s stubDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if s.execFn == nil {
		return stubResult{rows: 1}, nil
	}
	return s.execFn(ctx, query, args...)
}

func (s stubDB) BeginTx(ctx context.Context, opts *sql.TxOptions) (Tx, error) {
	if s.beginFn == nil {
		return &stubTx{}, nil
	}
	return s.beginFn(ctx, opts)
}

// stubTx records commit/rollback so transactional flows can be asserted.
type stubTx struct {
	execFn func(ctx context.Context, query string, args ...any) (sql.Result, error)
	getFn  func(ctx context.Context, dest any, query string, args ...any) error

	committed  bool
	rolledBack bool
}

func (s *stubTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if s.execFn == nil {
		return stubResult{rows: 1}, nil
	}
	return s.execFn(ctx, query, args...)
}

func (s *stubTx) GetContext(ctx context.Context, dest any, query string, args ...any) error {
	if s.getFn == nil {
		return sql.ErrNoRows
	}
	return s.getFn(ctx, dest, query, args...)
}

func (s *stubTx) Commit() error {
	s.committed = true
	return nil
}

func (s *stubTx) Rollback() error {
	s.rolledBack = true
	return nil
}

type stubResult struct {
	lastID int64
	rows   int64
	err    error
}

func (r stubResult) LastInsertId() (int64, error) {
	return r.lastID, r.err
}

func (r stubResult) RowsAffected() (int64, error) {
	return r.rows, r.err
}

// testLogger silences repository logging in tests.
var testLogger = zap.NewNop()

func newExchangeRepo(db DB) *ExchangeRepo {
	return NewExchangeRepo(db, NewEmployeeRepo(db, testLogger), nil, testLogger)
}
