package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/stp-platform/stp-database/cache"
	"github.com/stp-platform/stp-database/model"
)

// validate checks create parameters before any statement is issued.  A
// single instance is safe for concurrent use.
var validate = validator.New()

// exchangeColumns is the full column list of the exchanges table, prefixed
// for queries that join employees.
const exchangeColumns = `e.id, e.owner_id, e.counterpart_id, e.start_time, e.end_time,
	e.price, e.is_paid, e.payment_type, e.payment_date, e.owner_intent, e.status,
	e.is_private, e.in_owner_schedule, e.in_counterpart_schedule, e.comment,
	e.created_at, e.updated_at, e.sold_at`

// DefaultListLimit bounds listing queries when the caller does not set one.
const DefaultListLimit = 50

// ExchangeRepo owns every state-changing operation on exchange postings
// and the read queries the bots build their listings from.  Expected
// rejections (banned user, wrong state, already accepted) return a
// no-result with a warning log instead of an error; the caller re-fetches
// the exchange when it needs the reason.
type ExchangeRepo struct {
	db        DB
	employees *EmployeeRepo
	listings  *cache.Listings
	log       *zap.Logger
}

// NewExchangeRepo constructs an ExchangeRepo.  listings may be nil, which
// disables the Redis listing cache.
func NewExchangeRepo(db DB, employees *EmployeeRepo, listings *cache.Listings, log *zap.Logger) *ExchangeRepo {
	return &ExchangeRepo{db: db, employees: employees, listings: listings, log: log}
}

// CreateExchangeParams carries the caller-supplied fields of a new
// posting.  OwnerIntent defaults to sell and PaymentType to immediate.
type CreateExchangeParams struct {
	OwnerID     int64             `validate:"required"`
	Price       int               `validate:"required,gt=0"`
	OwnerIntent model.Intent      `validate:"omitempty,oneof=sell buy"`
	StartTime   *time.Time        `validate:"-"`
	EndTime     *time.Time        `validate:"-"`
	Comment     *string           `validate:"omitempty"`
	IsPrivate   bool              `validate:"-"`
	PaymentType model.PaymentType `validate:"omitempty,oneof=immediate on_date"`
	PaymentDate *time.Time        `validate:"required_if=PaymentType on_date"`
}

// Create inserts a new posting in status active.  It returns no result
// when the owner is banned from the marketplace or the parameters fail
// validation.
func (r *ExchangeRepo) Create(ctx context.Context, p CreateExchangeParams) (*model.Exchange, error) {
	if p.OwnerIntent == "" {
		p.OwnerIntent = model.IntentSell
	}
	if p.PaymentType == "" {
		p.PaymentType = model.PaymentImmediate
	}
	if err := validate.Struct(p); err != nil {
		r.log.Warn("exchange create rejected", zap.Error(err))
		return nil, ErrInvalidParams
	}

	banned, err := r.employees.IsExchangeBanned(ctx, p.OwnerID)
	if err != nil {
		return nil, err
	}
	if banned {
		r.log.Warn("banned user tried to create an exchange", zap.Int64("user_id", p.OwnerID))
		return nil, nil
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO exchanges
			(owner_id, counterpart_id, start_time, end_time, price, owner_intent,
			 comment, is_private, payment_type, payment_date)
		VALUES (?, NULL, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.OwnerID, p.StartTime, p.EndTime, p.Price, p.OwnerIntent,
		p.Comment, p.IsPrivate, p.PaymentType, p.PaymentDate)
	if err != nil {
		r.log.Error("exchange create failed", zap.Int64("owner_id", p.OwnerID), zap.Error(err))
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	r.invalidateListing(ctx)
	r.log.Info("exchange created",
		zap.Int64("exchange_id", id),
		zap.Int64("owner_id", p.OwnerID),
		zap.String("intent", string(p.OwnerIntent)))
	return r.GetByID(ctx, id)
}

// Accept assigns the counterpart and moves the posting to sold.  The
// transition is a single conditional UPDATE: of any number of concurrent
// accept attempts on the same row, exactly one matches
// status = active AND counterpart_id IS NULL; the rest see zero affected
// rows and return no result.  markPaid additionally sets the paid flag in
// the same statement.
func (r *ExchangeRepo) Accept(ctx context.Context, exchangeID, counterpartID int64, markPaid bool) (*model.Exchange, error) {
	banned, err := r.employees.IsExchangeBanned(ctx, counterpartID)
	if err != nil {
		return nil, err
	}
	if banned {
		r.log.Warn("banned user tried to accept an exchange",
			zap.Int64("user_id", counterpartID), zap.Int64("exchange_id", exchangeID))
		return nil, nil
	}

	set := `counterpart_id = ?, status = 'sold', sold_at = UTC_TIMESTAMP()`
	if markPaid {
		set += `, is_paid = TRUE`
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE exchanges SET `+set+` WHERE id = ? AND status = 'active' AND counterpart_id IS NULL`,
		counterpartID, exchangeID)
	if err != nil {
		r.log.Error("exchange accept failed", zap.Int64("exchange_id", exchangeID), zap.Error(err))
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Not active anymore, already accepted, or gone.
		r.log.Warn("exchange not acceptable",
			zap.Int64("exchange_id", exchangeID), zap.Int64("user_id", counterpartID))
		return nil, nil
	}
	r.invalidateListing(ctx)
	r.log.Info("exchange accepted",
		zap.Int64("exchange_id", exchangeID), zap.Int64("counterpart_id", counterpartID))
	return r.GetByID(ctx, exchangeID)
}

// Activate makes an inactive posting visible again.
func (r *ExchangeRepo) Activate(ctx context.Context, exchangeID int64) (bool, error) {
	return r.transition(ctx, exchangeID, model.StatusActive, model.StatusInactive)
}

// Inactivate hides an active posting without losing it.
func (r *ExchangeRepo) Inactivate(ctx context.Context, exchangeID int64) (bool, error) {
	return r.transition(ctx, exchangeID, model.StatusInactive, model.StatusActive)
}

// Cancel terminates a posting from any non-terminal state.
func (r *ExchangeRepo) Cancel(ctx context.Context, exchangeID int64) (bool, error) {
	return r.transition(ctx, exchangeID, model.StatusCanceled, model.StatusActive, model.StatusInactive)
}

// Expire marks an active posting whose shift start has passed without an
// acceptance.  Driven by the callers' background jobs.
func (r *ExchangeRepo) Expire(ctx context.Context, exchangeID int64) (bool, error) {
	return r.transition(ctx, exchangeID, model.StatusExpired, model.StatusActive)
}

// transition performs a guarded status change.  The allowed source states
// are part of the WHERE clause, so an out-of-order call affects zero rows
// and reports false.
func (r *ExchangeRepo) transition(ctx context.Context, exchangeID int64, to model.ExchangeStatus, from ...model.ExchangeStatus) (bool, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(from)), ",")
	args := make([]any, 0, len(from)+2)
	args = append(args, to, exchangeID)
	for _, s := range from {
		args = append(args, s)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE exchanges SET status = ? WHERE id = ? AND status IN (`+placeholders+`)`,
		args...)
	if err != nil {
		r.log.Error("exchange transition failed",
			zap.Int64("exchange_id", exchangeID), zap.String("to", string(to)), zap.Error(err))
		return false, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		r.log.Warn("exchange transition rejected",
			zap.Int64("exchange_id", exchangeID), zap.String("to", string(to)))
		return false, nil
	}
	r.invalidateListing(ctx)
	r.log.Info("exchange status changed",
		zap.Int64("exchange_id", exchangeID), zap.String("to", string(to)))
	return true, nil
}

// MarkPaid records that the trade has been paid.  The operation is
// idempotent: marking an already paid exchange succeeds.
func (r *ExchangeRepo) MarkPaid(ctx context.Context, exchangeID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE exchanges SET is_paid = TRUE WHERE id = ?`, exchangeID)
	if err != nil {
		r.log.Error("mark paid failed", zap.Int64("exchange_id", exchangeID), zap.Error(err))
		return false, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Zero rows either means the row is gone or the flag was already
		// set; only the former is a failure.
		ex, err := r.GetByID(ctx, exchangeID)
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return ex.IsPaid, nil
	}
	r.log.Info("exchange marked paid", zap.Int64("exchange_id", exchangeID))
	return true, nil
}

// SetPrivate restricts the posting to direct-message visibility.
func (r *ExchangeRepo) SetPrivate(ctx context.Context, exchangeID int64) (bool, error) {
	return r.setPrivacy(ctx, exchangeID, true)
}

// SetPublic returns the posting to the public listing.
func (r *ExchangeRepo) SetPublic(ctx context.Context, exchangeID int64) (bool, error) {
	return r.setPrivacy(ctx, exchangeID, false)
}

func (r *ExchangeRepo) setPrivacy(ctx context.Context, exchangeID int64, private bool) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE exchanges SET is_private = ? WHERE id = ? AND is_private = ?`,
		private, exchangeID, !private)
	if err != nil {
		r.log.Error("privacy update failed", zap.Int64("exchange_id", exchangeID), zap.Error(err))
		return false, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false, nil
	}
	r.invalidateListing(ctx)
	return true, nil
}

// Update applies an allow-listed partial update.  Empty updates are
// rejected without touching the database.
func (r *ExchangeRepo) Update(ctx context.Context, exchangeID int64, u model.ExchangeUpdate) (bool, error) {
	if u.Empty() {
		r.log.Warn("empty exchange update", zap.Int64("exchange_id", exchangeID))
		return false, nil
	}

	set := make([]string, 0, 10)
	args := make([]any, 0, 11)
	add := func(col string, v any) {
		set = append(set, col+" = ?")
		args = append(args, v)
	}
	if u.StartTime != nil {
		add("start_time", *u.StartTime)
	}
	if u.EndTime != nil {
		add("end_time", *u.EndTime)
	}
	if u.Price != nil {
		add("price", *u.Price)
	}
	if u.Comment != nil {
		add("comment", *u.Comment)
	}
	if u.PaymentType != nil {
		add("payment_type", *u.PaymentType)
	}
	if u.PaymentDate != nil {
		add("payment_date", *u.PaymentDate)
	}
	if u.IsPrivate != nil {
		add("is_private", *u.IsPrivate)
	}
	if u.IsPaid != nil {
		add("is_paid", *u.IsPaid)
	}
	if u.InOwnerSchedule != nil {
		add("in_owner_schedule", *u.InOwnerSchedule)
	}
	if u.InCounterpartSchedule != nil {
		add("in_counterpart_schedule", *u.InCounterpartSchedule)
	}
	args = append(args, exchangeID)

	res, err := r.db.ExecContext(ctx,
		`UPDATE exchanges SET `+strings.Join(set, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		r.log.Error("exchange update failed", zap.Int64("exchange_id", exchangeID), zap.Error(err))
		return false, err
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		r.invalidateListing(ctx)
		r.log.Info("exchange updated", zap.Int64("exchange_id", exchangeID), zap.Int("fields", len(set)))
	}
	return n > 0, nil
}

// Delete removes a posting permanently.  Postings with an assigned
// counterpart are never deleted; cancel them instead.
func (r *ExchangeRepo) Delete(ctx context.Context, exchangeID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM exchanges WHERE id = ? AND counterpart_id IS NULL`, exchangeID)
	if err != nil {
		r.log.Error("exchange delete failed", zap.Int64("exchange_id", exchangeID), zap.Error(err))
		return false, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		r.log.Warn("exchange delete rejected", zap.Int64("exchange_id", exchangeID))
		return false, nil
	}
	r.invalidateListing(ctx)
	r.log.Info("exchange deleted", zap.Int64("exchange_id", exchangeID))
	return true, nil
}

// GetByID fetches one posting.  Returns ErrNotFound when it does not exist.
func (r *ExchangeRepo) GetByID(ctx context.Context, exchangeID int64) (*model.Exchange, error) {
	var e model.Exchange
	err := r.db.GetContext(ctx, &e,
		`SELECT `+exchangeColumns+` FROM exchanges e WHERE e.id = ?`, exchangeID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		r.log.Error("exchange lookup failed", zap.Int64("exchange_id", exchangeID), zap.Error(err))
		return nil, err
	}
	return &e, nil
}

// ActiveExchangeQuery filters the active-postings listing.
type ActiveExchangeQuery struct {
	IncludePrivate bool
	ExcludeUserID  int64          // 0 means no exclusion
	Divisions      []string       // owner divisions, empty means all
	Intent         *model.Intent  // nil means both
	Limit, Offset  int
}

// cacheable reports whether q is the plain public listing every bot asks
// for; only that variant is worth caching.
func (q ActiveExchangeQuery) cacheable() bool {
	return !q.IncludePrivate && q.ExcludeUserID == 0 && len(q.Divisions) == 0 &&
		q.Intent == nil && q.Offset == 0 && (q.Limit == 0 || q.Limit == DefaultListLimit)
}

// ListActive returns active postings, newest first.
func (r *ExchangeRepo) ListActive(ctx context.Context, q ActiveExchangeQuery) ([]model.Exchange, error) {
	if q.Limit <= 0 {
		q.Limit = DefaultListLimit
	}

	if q.cacheable() {
		if cached, ok := r.listings.Get(ctx); ok {
			return cached, nil
		}
	}

	where := []string{"e.status = 'active'"}
	args := []any{}
	if !q.IncludePrivate {
		where = append(where, "e.is_private = FALSE")
	}
	if q.ExcludeUserID != 0 {
		where = append(where, "e.owner_id <> ?")
		args = append(args, q.ExcludeUserID)
	}
	if q.Intent != nil {
		where = append(where, "e.owner_intent = ?")
		args = append(args, *q.Intent)
	}
	from := "exchanges e"
	if len(q.Divisions) > 0 {
		from += " JOIN employees emp ON emp.user_id = e.owner_id"
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(q.Divisions)), ",")
		where = append(where, "emp.division IN ("+placeholders+")")
		for _, d := range q.Divisions {
			args = append(args, d)
		}
	}
	args = append(args, q.Limit, q.Offset)

	var out []model.Exchange
	err := r.db.SelectContext(ctx, &out, `
		SELECT `+exchangeColumns+`
		FROM `+from+`
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY e.created_at DESC
		LIMIT ? OFFSET ?`, args...)
	if err != nil {
		r.log.Error("active listing failed", zap.Error(err))
		return nil, err
	}

	if q.cacheable() {
		r.listings.Set(ctx, out)
	}
	return out, nil
}

// UserExchangeRole selects which side of a trade a user listing covers.
type UserExchangeRole string

const (
	RoleOwned       UserExchangeRole = "owned"
	RoleCounterpart UserExchangeRole = "counterpart"
	RoleAny         UserExchangeRole = "any"
)

// UserExchangeQuery filters a user's own postings and acceptances.
type UserExchangeQuery struct {
	UserID        int64
	Role          UserExchangeRole      // defaults to RoleAny
	Status        *model.ExchangeStatus // nil means all
	Intent        *model.Intent         // nil means both
	Limit, Offset int
}

// ListByUser returns a user's exchanges, newest first.
func (r *ExchangeRepo) ListByUser(ctx context.Context, q UserExchangeQuery) ([]model.Exchange, error) {
	if q.Limit <= 0 {
		q.Limit = DefaultListLimit
	}
	var where []string
	var args []any
	switch q.Role {
	case RoleOwned:
		where = append(where, "e.owner_id = ?")
		args = append(args, q.UserID)
	case RoleCounterpart:
		where = append(where, "e.counterpart_id = ?")
		args = append(args, q.UserID)
	default:
		where = append(where, "(e.owner_id = ? OR e.counterpart_id = ?)")
		args = append(args, q.UserID, q.UserID)
	}
	if q.Status != nil {
		where = append(where, "e.status = ?")
		args = append(args, *q.Status)
	}
	if q.Intent != nil {
		where = append(where, "e.owner_intent = ?")
		args = append(args, *q.Intent)
	}
	args = append(args, q.Limit, q.Offset)

	var out []model.Exchange
	err := r.db.SelectContext(ctx, &out, `
		SELECT `+exchangeColumns+`
		FROM exchanges e
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY e.created_at DESC
		LIMIT ? OFFSET ?`, args...)
	if err != nil {
		r.log.Error("user listing failed", zap.Int64("user_id", q.UserID), zap.Error(err))
		return nil, err
	}
	return out, nil
}

// ListByStartRange returns exchanges whose shift starts inside [from, to],
// earliest first, optionally restricted to one status.
func (r *ExchangeRepo) ListByStartRange(ctx context.Context, from, to time.Time, status *model.ExchangeStatus, limit int) ([]model.Exchange, error) {
	if limit <= 0 {
		limit = 100
	}
	where := []string{"e.start_time >= ?", "e.start_time <= ?"}
	args := []any{from, to}
	if status != nil {
		where = append(where, "e.status = ?")
		args = append(args, *status)
	}
	args = append(args, limit)

	var out []model.Exchange
	err := r.db.SelectContext(ctx, &out, `
		SELECT `+exchangeColumns+`
		FROM exchanges e
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY e.start_time ASC
		LIMIT ?`, args...)
	if err != nil {
		r.log.Error("start-range listing failed", zap.Error(err))
		return nil, err
	}
	return out, nil
}

// ListUpcomingSold returns sold exchanges whose shift has not started yet,
// for schedule reminders.
func (r *ExchangeRepo) ListUpcomingSold(ctx context.Context, after time.Time, before *time.Time, limit, offset int) ([]model.Exchange, error) {
	if limit <= 0 {
		limit = 500
	}
	where := []string{"e.status = 'sold'", "e.start_time IS NOT NULL", "e.start_time > ?"}
	args := []any{after}
	if before != nil {
		where = append(where, "e.start_time <= ?")
		args = append(args, *before)
	}
	args = append(args, limit, offset)

	var out []model.Exchange
	err := r.db.SelectContext(ctx, &out, `
		SELECT `+exchangeColumns+`
		FROM exchanges e
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY e.start_time ASC
		LIMIT ? OFFSET ?`, args...)
	if err != nil {
		r.log.Error("upcoming-sold listing failed", zap.Error(err))
		return nil, err
	}
	return out, nil
}

// ListRecent returns exchanges created at or after the given time, newest
// first.
func (r *ExchangeRepo) ListRecent(ctx context.Context, createdAfter time.Time, includePrivate bool, limit int) ([]model.Exchange, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	where := []string{"e.created_at >= ?"}
	args := []any{createdAfter}
	if !includePrivate {
		where = append(where, "e.is_private = FALSE")
	}
	args = append(args, limit)

	var out []model.Exchange
	err := r.db.SelectContext(ctx, &out, `
		SELECT `+exchangeColumns+`
		FROM exchanges e
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY e.created_at DESC
		LIMIT ?`, args...)
	if err != nil {
		r.log.Error("recent listing failed", zap.Error(err))
		return nil, err
	}
	return out, nil
}

// ListUnpaidByPayer returns sold, unpaid, accepted exchanges grouped by
// the user who owes payment: the counterpart when the owner sold their
// shift, the owner when the owner bought one.  Groups keep the newest
// first order of the underlying rows.
func (r *ExchangeRepo) ListUnpaidByPayer(ctx context.Context) ([]model.PayerExchanges, error) {
	var rows []model.Exchange
	err := r.db.SelectContext(ctx, &rows, `
		SELECT `+exchangeColumns+`
		FROM exchanges e
		WHERE e.status = 'sold' AND e.is_paid = FALSE AND e.counterpart_id IS NOT NULL
		ORDER BY e.created_at DESC`)
	if err != nil {
		r.log.Error("unpaid listing failed", zap.Error(err))
		return nil, err
	}

	order := make([]int64, 0, len(rows))
	grouped := make(map[int64][]model.Exchange, len(rows))
	for _, e := range rows {
		payer := e.PayerID()
		if payer == nil {
			continue
		}
		if _, seen := grouped[*payer]; !seen {
			order = append(order, *payer)
		}
		grouped[*payer] = append(grouped[*payer], e)
	}
	out := make([]model.PayerExchanges, 0, len(order))
	for _, id := range order {
		out = append(out, model.PayerExchanges{PayerID: id, Exchanges: grouped[id]})
	}
	return out, nil
}

// ListByPaymentDate returns sold, unpaid, accepted exchanges whose payment
// falls due on the given calendar day.
func (r *ExchangeRepo) ListByPaymentDate(ctx context.Context, day time.Time, limit int) ([]model.Exchange, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []model.Exchange
	err := r.db.SelectContext(ctx, &out, `
		SELECT `+exchangeColumns+`
		FROM exchanges e
		WHERE DATE(e.payment_date) = DATE(?)
		  AND e.status = 'sold' AND e.is_paid = FALSE AND e.counterpart_id IS NOT NULL
		ORDER BY e.created_at DESC
		LIMIT ?`, day, limit)
	if err != nil {
		r.log.Error("payment-date listing failed", zap.Error(err))
		return nil, err
	}
	return out, nil
}

// ListImmediateUnpaid returns sold, accepted exchanges with immediate
// payment terms that are still unpaid.
func (r *ExchangeRepo) ListImmediateUnpaid(ctx context.Context, limit int) ([]model.Exchange, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []model.Exchange
	err := r.db.SelectContext(ctx, &out, `
		SELECT `+exchangeColumns+`
		FROM exchanges e
		WHERE e.status = 'sold' AND e.is_paid = FALSE AND e.payment_type = 'immediate'
		  AND e.counterpart_id IS NOT NULL
		ORDER BY e.created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		r.log.Error("immediate-unpaid listing failed", zap.Error(err))
		return nil, err
	}
	return out, nil
}

// SalesStats aggregates the exchanges a user sold in the period, keyed on
// the shift start time.
func (r *ExchangeRepo) SalesStats(ctx context.Context, userID int64, from, to time.Time) (*model.ExchangeStats, error) {
	return r.stats(ctx, "owner_id", userID, from, to)
}

// PurchaseStats aggregates the exchanges a user accepted in the period.
func (r *ExchangeRepo) PurchaseStats(ctx context.Context, userID int64, from, to time.Time) (*model.ExchangeStats, error) {
	return r.stats(ctx, "counterpart_id", userID, from, to)
}

func (r *ExchangeRepo) stats(ctx context.Context, column string, userID int64, from, to time.Time) (*model.ExchangeStats, error) {
	var s model.ExchangeStats
	err := r.db.GetContext(ctx, &s, `
		SELECT COUNT(id) AS total,
		       COALESCE(SUM(price), 0) AS total_amount,
		       COALESCE(AVG(price), 0) AS average_price
		FROM exchanges
		WHERE `+column+` = ? AND status = 'sold' AND start_time >= ? AND start_time <= ?`,
		userID, from, to)
	if err != nil {
		r.log.Error("stats query failed", zap.Int64("user_id", userID), zap.Error(err))
		return nil, err
	}
	s.PeriodStart = from
	s.PeriodEnd = to
	return &s, nil
}

// invalidateListing drops the cached public listing after any mutation.
func (r *ExchangeRepo) invalidateListing(ctx context.Context) {
	if r.listings != nil {
		r.listings.Invalidate(ctx)
	}
}
