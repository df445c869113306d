package repository

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/stp-platform/stp-database/model"
)

const notificationColumns = `n.id, n.subscription_id, n.exchange_id,
	n.notification_type, n.sent_at`

// NotificationRepo keeps the per-subscription notification ledger.  Rows
// are append-only: history survives deletion of both the subscription and
// the exchange it refers to, which is why the table carries no foreign
// keys.
type NotificationRepo struct {
	db  DB
	log *zap.Logger
}

// NewNotificationRepo returns a NotificationRepo bound to the given
// database.
func NewNotificationRepo(db DB, log *zap.Logger) *NotificationRepo {
	return &NotificationRepo{db: db, log: log}
}

// Record appends a ledger row for a sent notification and bumps the
// subscription's counters in the same transaction.  The counter update
// matching zero rows is not an error: the subscription may have been
// deleted between dispatch and recording, and the history row is kept
// regardless.
func (r *NotificationRepo) Record(ctx context.Context, subscriptionID, exchangeID int64, typ model.NotificationType) (*model.SubscriptionNotification, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.log.Error("notification tx begin failed", zap.Error(err))
		return nil, err
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO subscription_notifications (subscription_id, exchange_id, notification_type)
		VALUES (?, ?, ?)`,
		subscriptionID, exchangeID, typ)
	if err != nil {
		_ = tx.Rollback()
		r.log.Error("notification insert failed",
			zap.Int64("subscription_id", subscriptionID),
			zap.Int64("exchange_id", exchangeID), zap.Error(err))
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE exchange_subscriptions
		SET notifications_sent = notifications_sent + 1, last_notified_at = UTC_TIMESTAMP()
		WHERE id = ?`, subscriptionID); err != nil {
		_ = tx.Rollback()
		r.log.Error("notification counter update failed",
			zap.Int64("subscription_id", subscriptionID), zap.Error(err))
		return nil, err
	}

	var n model.SubscriptionNotification
	if err := tx.GetContext(ctx, &n,
		`SELECT `+notificationColumns+` FROM subscription_notifications n WHERE n.id = ?`, id); err != nil {
		_ = tx.Rollback()
		r.log.Error("notification readback failed", zap.Int64("notification_id", id), zap.Error(err))
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		r.log.Error("notification tx commit failed", zap.Error(err))
		return nil, err
	}
	r.log.Info("notification recorded",
		zap.Int64("notification_id", n.ID),
		zap.Int64("subscription_id", subscriptionID),
		zap.Int64("exchange_id", exchangeID),
		zap.String("type", string(typ)))
	return &n, nil
}

// WasNotified reports whether a notification of the given type was already
// sent for this subscription and exchange, so dispatchers can skip
// duplicates.
func (r *NotificationRepo) WasNotified(ctx context.Context, subscriptionID, exchangeID int64, typ model.NotificationType) (bool, error) {
	var one int
	err := r.db.GetContext(ctx, &one, `
		SELECT 1 FROM subscription_notifications
		WHERE subscription_id = ? AND exchange_id = ? AND notification_type = ?
		LIMIT 1`,
		subscriptionID, exchangeID, typ)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		r.log.Error("notification dedup check failed",
			zap.Int64("subscription_id", subscriptionID),
			zap.Int64("exchange_id", exchangeID), zap.Error(err))
		return false, err
	}
	return true, nil
}

// ListBySubscription returns the most recent ledger rows of a
// subscription, newest first.
func (r *NotificationRepo) ListBySubscription(ctx context.Context, subscriptionID int64, limit int) ([]model.SubscriptionNotification, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	var out []model.SubscriptionNotification
	err := r.db.SelectContext(ctx, &out, `
		SELECT `+notificationColumns+`
		FROM subscription_notifications n
		WHERE n.subscription_id = ?
		ORDER BY n.sent_at DESC
		LIMIT ?`, subscriptionID, limit)
	if err != nil {
		r.log.Error("notification listing failed",
			zap.Int64("subscription_id", subscriptionID), zap.Error(err))
		return nil, err
	}
	return out, nil
}
