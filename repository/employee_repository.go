package repository

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/stp-platform/stp-database/model"
)

// EmployeeRepo reads the employees aggregate and mutates the single field
// the marketplace owns on it: the exchange ban flag.  Everything else on
// employees belongs to the wider STP schema and is left alone.
type EmployeeRepo struct {
	db  DB
	log *zap.Logger
}

// NewEmployeeRepo returns an EmployeeRepo bound to the given database.
func NewEmployeeRepo(db DB, log *zap.Logger) *EmployeeRepo {
	return &EmployeeRepo{db: db, log: log}
}

// GetByUserID fetches an employee by Telegram user id.  Returns
// ErrNotFound when no such employee exists.
func (r *EmployeeRepo) GetByUserID(ctx context.Context, userID int64) (*model.Employee, error) {
	var e model.Employee
	err := r.db.GetContext(ctx, &e, `
		SELECT id, user_id, username, division, position, fullname, head, email,
		       role, is_trainee, is_exchange_banned
		FROM employees
		WHERE user_id = ?`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		r.log.Error("employee lookup failed", zap.Int64("user_id", userID), zap.Error(err))
		return nil, err
	}
	return &e, nil
}

// IsExchangeBanned reports whether the user is banned from the
// marketplace.  An unknown user is treated as not banned, matching the
// historical behaviour: the create/accept path fails later on the foreign
// key instead.
func (r *EmployeeRepo) IsExchangeBanned(ctx context.Context, userID int64) (bool, error) {
	var banned bool
	err := r.db.GetContext(ctx, &banned,
		`SELECT is_exchange_banned FROM employees WHERE user_id = ?`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		r.log.Error("ban check failed", zap.Int64("user_id", userID), zap.Error(err))
		return false, err
	}
	return banned, nil
}

// Ban blocks the user from creating or accepting exchanges.  Returns
// false when the user does not exist or is already banned.
func (r *EmployeeRepo) Ban(ctx context.Context, userID int64) (bool, error) {
	return r.setBanned(ctx, userID, true)
}

// Unban lifts a marketplace ban.  Returns false when the user does not
// exist or is not banned.
func (r *EmployeeRepo) Unban(ctx context.Context, userID int64) (bool, error) {
	return r.setBanned(ctx, userID, false)
}

func (r *EmployeeRepo) setBanned(ctx context.Context, userID int64, banned bool) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE employees SET is_exchange_banned = ? WHERE user_id = ? AND is_exchange_banned = ?`,
		banned, userID, !banned)
	if err != nil {
		r.log.Error("ban update failed",
			zap.Int64("user_id", userID), zap.Bool("banned", banned), zap.Error(err))
		return false, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false, nil
	}
	r.log.Info("exchange ban flag changed", zap.Int64("user_id", userID), zap.Bool("banned", banned))
	return true, nil
}
