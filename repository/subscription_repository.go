package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/stp-platform/stp-database/model"
)

// subscriptionColumns is the full column list of exchange_subscriptions.
const subscriptionColumns = `s.id, s.subscriber_id, s.name, s.exchange_type,
	s.subscription_type, s.min_price, s.max_price, s.start_date, s.end_date,
	s.start_time, s.end_time, s.days_of_week, s.target_seller_id,
	s.target_divisions, s.notify_immediately, s.notify_daily_digest,
	s.notify_before_expire, s.digest_time, s.is_active, s.created_at,
	s.updated_at, s.last_notified_at, s.last_digest_at, s.notifications_sent,
	s.matches_found`

// SubscriptionRepo manages saved exchange filters and runs the matcher
// that pairs new postings with the subscribers who want to hear about
// them.
type SubscriptionRepo struct {
	db  DB
	log *zap.Logger
}

// NewSubscriptionRepo returns a SubscriptionRepo bound to the given
// database.
func NewSubscriptionRepo(db DB, log *zap.Logger) *SubscriptionRepo {
	return &SubscriptionRepo{db: db, log: log}
}

// CreateSubscriptionParams carries the filter and notification settings of
// a new subscription.  Absent filter fields are wildcards.
type CreateSubscriptionParams struct {
	SubscriberID     int64                          `validate:"required"`
	Name             *string                        `validate:"omitempty"`
	ExchangeType     model.SubscriptionExchangeType `validate:"omitempty,oneof=buy sell both"`
	SubscriptionType string                         `validate:"omitempty,oneof=all price_range date_range time_range seller_specific"`
	MinPrice         *int                           `validate:"omitempty,gte=0"`
	MaxPrice         *int                           `validate:"omitempty,gte=0"`
	StartDate        *time.Time                     `validate:"-"`
	EndDate          *time.Time                     `validate:"-"`
	StartTime        *model.TimeOfDay               `validate:"-"`
	EndTime          *model.TimeOfDay               `validate:"-"`
	DaysOfWeek       model.IntList                  `validate:"omitempty,dive,min=1,max=7"`
	TargetSellerID   *int64                         `validate:"-"`
	TargetDivisions  model.StringList               `validate:"-"`

	NotifyImmediately  bool
	NotifyDailyDigest  bool
	NotifyBeforeExpire bool
	DigestTime         model.TimeOfDay
}

// Create inserts a new subscription.  A price range with min above max is
// rejected before any statement is issued.
func (r *SubscriptionRepo) Create(ctx context.Context, p CreateSubscriptionParams) (*model.ExchangeSubscription, error) {
	if p.ExchangeType == "" {
		p.ExchangeType = model.WatchBuy
	}
	if p.SubscriptionType == "" {
		p.SubscriptionType = "all"
	}
	if p.DigestTime == 0 {
		p.DigestTime = model.NewTimeOfDay(9, 0, 0)
	}
	if err := validate.Struct(p); err != nil {
		r.log.Warn("subscription create rejected", zap.Error(err))
		return nil, ErrInvalidParams
	}
	if p.MinPrice != nil && p.MaxPrice != nil && *p.MinPrice > *p.MaxPrice {
		r.log.Warn("subscription create rejected: inverted price range",
			zap.Int("min", *p.MinPrice), zap.Int("max", *p.MaxPrice))
		return nil, ErrInvalidParams
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO exchange_subscriptions
			(subscriber_id, name, exchange_type, subscription_type,
			 min_price, max_price, start_date, end_date, start_time, end_time,
			 days_of_week, target_seller_id, target_divisions,
			 notify_immediately, notify_daily_digest, notify_before_expire, digest_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.SubscriberID, p.Name, p.ExchangeType, p.SubscriptionType,
		p.MinPrice, p.MaxPrice, p.StartDate, p.EndDate, p.StartTime, p.EndTime,
		p.DaysOfWeek, p.TargetSellerID, p.TargetDivisions,
		p.NotifyImmediately, p.NotifyDailyDigest, p.NotifyBeforeExpire, p.DigestTime)
	if err != nil {
		r.log.Error("subscription create failed",
			zap.Int64("subscriber_id", p.SubscriberID), zap.Error(err))
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	r.log.Info("subscription created",
		zap.Int64("subscription_id", id), zap.Int64("subscriber_id", p.SubscriberID))
	return r.GetByID(ctx, id, nil)
}

// GetByID fetches one subscription.  When subscriberID is non-nil the row
// must also belong to that subscriber, so bots can enforce ownership in
// one query.
func (r *SubscriptionRepo) GetByID(ctx context.Context, subscriptionID int64, subscriberID *int64) (*model.ExchangeSubscription, error) {
	where := "s.id = ?"
	args := []any{subscriptionID}
	if subscriberID != nil {
		where += " AND s.subscriber_id = ?"
		args = append(args, *subscriberID)
	}
	var s model.ExchangeSubscription
	err := r.db.GetContext(ctx, &s,
		`SELECT `+subscriptionColumns+` FROM exchange_subscriptions s WHERE `+where, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		r.log.Error("subscription lookup failed",
			zap.Int64("subscription_id", subscriptionID), zap.Error(err))
		return nil, err
	}
	return &s, nil
}

// ListBySubscriber returns a user's subscriptions, newest first.
func (r *SubscriptionRepo) ListBySubscriber(ctx context.Context, subscriberID int64, activeOnly bool) ([]model.ExchangeSubscription, error) {
	where := "s.subscriber_id = ?"
	if activeOnly {
		where += " AND s.is_active = TRUE"
	}
	var out []model.ExchangeSubscription
	err := r.db.SelectContext(ctx, &out, `
		SELECT `+subscriptionColumns+`
		FROM exchange_subscriptions s
		WHERE `+where+`
		ORDER BY s.created_at DESC`, subscriberID)
	if err != nil {
		r.log.Error("subscription listing failed",
			zap.Int64("subscriber_id", subscriberID), zap.Error(err))
		return nil, err
	}
	return out, nil
}

// Update applies an allow-listed partial update to filter and notification
// settings.  Empty updates are rejected without touching the database.
func (r *SubscriptionRepo) Update(ctx context.Context, subscriptionID int64, u model.SubscriptionUpdate) (bool, error) {
	if u.Empty() {
		r.log.Warn("empty subscription update", zap.Int64("subscription_id", subscriptionID))
		return false, nil
	}

	set := make([]string, 0, 17)
	args := make([]any, 0, 18)
	add := func(col string, v any) {
		set = append(set, col+" = ?")
		args = append(args, v)
	}
	if u.Name != nil {
		add("name", *u.Name)
	}
	if u.ExchangeType != nil {
		add("exchange_type", *u.ExchangeType)
	}
	if u.SubscriptionType != nil {
		add("subscription_type", *u.SubscriptionType)
	}
	if u.MinPrice != nil {
		add("min_price", *u.MinPrice)
	}
	if u.MaxPrice != nil {
		add("max_price", *u.MaxPrice)
	}
	if u.StartDate != nil {
		add("start_date", *u.StartDate)
	}
	if u.EndDate != nil {
		add("end_date", *u.EndDate)
	}
	if u.StartTime != nil {
		add("start_time", *u.StartTime)
	}
	if u.EndTime != nil {
		add("end_time", *u.EndTime)
	}
	if u.DaysOfWeek != nil {
		add("days_of_week", *u.DaysOfWeek)
	}
	if u.TargetSellerID != nil {
		add("target_seller_id", *u.TargetSellerID)
	}
	if u.TargetDivisions != nil {
		add("target_divisions", *u.TargetDivisions)
	}
	if u.NotifyImmediately != nil {
		add("notify_immediately", *u.NotifyImmediately)
	}
	if u.NotifyDailyDigest != nil {
		add("notify_daily_digest", *u.NotifyDailyDigest)
	}
	if u.NotifyBeforeExpire != nil {
		add("notify_before_expire", *u.NotifyBeforeExpire)
	}
	if u.DigestTime != nil {
		add("digest_time", *u.DigestTime)
	}
	if u.IsActive != nil {
		add("is_active", *u.IsActive)
	}
	args = append(args, subscriptionID)

	res, err := r.db.ExecContext(ctx,
		`UPDATE exchange_subscriptions SET `+strings.Join(set, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		r.log.Error("subscription update failed",
			zap.Int64("subscription_id", subscriptionID), zap.Error(err))
		return false, err
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		r.log.Info("subscription updated",
			zap.Int64("subscription_id", subscriptionID), zap.Int("fields", len(set)))
	}
	return n > 0, nil
}

// Deactivate soft-disables one subscription of the user, or every active
// one when subscriptionID is nil.
func (r *SubscriptionRepo) Deactivate(ctx context.Context, subscriberID int64, subscriptionID *int64) (bool, error) {
	where := "subscriber_id = ? AND is_active = TRUE"
	args := []any{subscriberID}
	if subscriptionID != nil {
		where += " AND id = ?"
		args = append(args, *subscriptionID)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE exchange_subscriptions SET is_active = FALSE WHERE `+where, args...)
	if err != nil {
		r.log.Error("subscription deactivation failed",
			zap.Int64("subscriber_id", subscriberID), zap.Error(err))
		return false, err
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		r.log.Info("subscriptions deactivated",
			zap.Int64("subscriber_id", subscriberID), zap.Int64("count", n))
	}
	return n > 0, nil
}

// Delete removes a subscription permanently.  Its notification history is
// kept.
func (r *SubscriptionRepo) Delete(ctx context.Context, subscriptionID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM exchange_subscriptions WHERE id = ?`, subscriptionID)
	if err != nil {
		r.log.Error("subscription delete failed",
			zap.Int64("subscription_id", subscriptionID), zap.Error(err))
		return false, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		r.log.Warn("subscription not found for delete", zap.Int64("subscription_id", subscriptionID))
		return false, nil
	}
	r.log.Info("subscription deleted", zap.Int64("subscription_id", subscriptionID))
	return true, nil
}

// FindMatching returns the active immediate-notification subscriptions
// whose filters admit the exchange, for the caller to dispatch Telegram
// messages to.  The result is an unordered set: ordering, deduplication
// and rate limiting are the caller's concern.
//
// Matching runs in two phases.  The query narrows candidates on the
// indexed columns (active, immediate, exchange type, price bounds, target
// seller, self-exclusion).  The full predicate is then applied per row in
// Go, because the date/time/weekday checks derive from the exchange's
// single start_time and the JSON list columns cannot be tested in the
// WHERE clause.
func (r *SubscriptionRepo) FindMatching(ctx context.Context, e *model.Exchange) ([]model.ExchangeSubscription, error) {
	where := []string{
		"s.is_active = TRUE",
		"s.notify_immediately = TRUE",
		"(s.exchange_type = 'both' OR s.exchange_type = ?)",
		"(s.min_price IS NULL OR s.min_price <= ?)",
		"(s.max_price IS NULL OR s.max_price >= ?)",
		"s.subscriber_id <> ?",
	}
	args := []any{e.OwnerIntent, e.Price, e.Price, e.OwnerID}

	// target_seller_id points at the user whose shift would be taken over;
	// a buy-intent posting has no seller yet, so only wildcard
	// subscriptions can match it.
	if e.OwnerIntent == model.IntentBuy {
		where = append(where, "s.target_seller_id IS NULL")
	} else {
		where = append(where, "(s.target_seller_id IS NULL OR s.target_seller_id = ?)")
		args = append(args, e.OwnerID)
	}

	var candidates []model.ExchangeSubscription
	err := r.db.SelectContext(ctx, &candidates, `
		SELECT `+subscriptionColumns+`
		FROM exchange_subscriptions s
		WHERE `+strings.Join(where, " AND "), args...)
	if err != nil {
		r.log.Error("subscription matching failed", zap.Int64("exchange_id", e.ID), zap.Error(err))
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	division, err := r.ownerDivision(ctx, e.OwnerID)
	if err != nil {
		return nil, err
	}

	matches := make([]model.ExchangeSubscription, 0, len(candidates))
	for _, s := range candidates {
		if s.MatchesExchange(e, division) {
			matches = append(matches, s)
		}
	}
	r.log.Info("subscriptions matched",
		zap.Int64("exchange_id", e.ID),
		zap.Int("candidates", len(candidates)),
		zap.Int("matches", len(matches)))
	return matches, nil
}

// ownerDivision resolves the division of the exchange owner for the
// matcher's division filter.  Unknown owners yield "".
func (r *SubscriptionRepo) ownerDivision(ctx context.Context, ownerID int64) (string, error) {
	var division sql.NullString
	err := r.db.GetContext(ctx, &division,
		`SELECT division FROM employees WHERE user_id = ?`, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		r.log.Error("owner division lookup failed", zap.Int64("owner_id", ownerID), zap.Error(err))
		return "", err
	}
	return division.String, nil
}

// IncrementMatches bumps the matches_found counter of the given
// subscriptions after the caller has acted on a matcher result.
func (r *SubscriptionRepo) IncrementMatches(ctx context.Context, subscriptionIDs ...int64) error {
	if len(subscriptionIDs) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(subscriptionIDs)), ",")
	args := make([]any, len(subscriptionIDs))
	for i, id := range subscriptionIDs {
		args[i] = id
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE exchange_subscriptions SET matches_found = matches_found + 1 WHERE id IN (`+placeholders+`)`,
		args...)
	if err != nil {
		r.log.Error("match counter update failed", zap.Error(err))
	}
	return err
}

// ListForDigest returns the active subscriptions whose daily digest is due
// at the given time of day.  An external scheduler drives this.
func (r *SubscriptionRepo) ListForDigest(ctx context.Context, digestTime model.TimeOfDay) ([]model.ExchangeSubscription, error) {
	var out []model.ExchangeSubscription
	err := r.db.SelectContext(ctx, &out, `
		SELECT `+subscriptionColumns+`
		FROM exchange_subscriptions s
		WHERE s.is_active = TRUE AND s.notify_daily_digest = TRUE AND s.digest_time = ?`,
		digestTime)
	if err != nil {
		r.log.Error("digest listing failed", zap.Error(err))
		return nil, err
	}
	return out, nil
}

// TouchDigest records that a digest was just sent for the subscription.
func (r *SubscriptionRepo) TouchDigest(ctx context.Context, subscriptionID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE exchange_subscriptions SET last_digest_at = UTC_TIMESTAMP() WHERE id = ?`,
		subscriptionID)
	if err != nil {
		r.log.Error("digest timestamp update failed",
			zap.Int64("subscription_id", subscriptionID), zap.Error(err))
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
