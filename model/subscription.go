package model

import "time"

// SubscriptionExchangeType says which owner intents a subscription watches.
type SubscriptionExchangeType string

const (
	WatchBuy  SubscriptionExchangeType = "buy"
	WatchSell SubscriptionExchangeType = "sell"
	WatchBoth SubscriptionExchangeType = "both"
)

// NotificationType tags a ledger entry with the channel that produced it.
type NotificationType string

const (
	NotifyImmediate NotificationType = "immediate"
	NotifyDigest    NotificationType = "digest"
	NotifyExpiry    NotificationType = "expiry"
)

// ExchangeSubscription is a standing filter a user saves to be alerted
// about matching future exchanges.  It never references a specific
// exchange; every new posting is evaluated against it.  Absent filter
// fields act as wildcards.
type ExchangeSubscription struct {
	ID               int64                    `db:"id"`
	SubscriberID     int64                    `db:"subscriber_id"`
	Name             *string                  `db:"name"`
	ExchangeType     SubscriptionExchangeType `db:"exchange_type"`
	SubscriptionType string                   `db:"subscription_type"` // all, price_range, date_range, time_range, seller_specific
	MinPrice         *int                     `db:"min_price"`
	MaxPrice         *int                     `db:"max_price"`
	StartDate        *time.Time               `db:"start_date"`
	EndDate          *time.Time               `db:"end_date"`
	StartTime        *TimeOfDay               `db:"start_time"`
	EndTime          *TimeOfDay               `db:"end_time"`
	DaysOfWeek       IntList                  `db:"days_of_week"` // ISO weekdays, Monday=1 … Sunday=7
	TargetSellerID   *int64                   `db:"target_seller_id"`
	TargetDivisions  StringList               `db:"target_divisions"`

	NotifyImmediately  bool      `db:"notify_immediately"`
	NotifyDailyDigest  bool      `db:"notify_daily_digest"`
	NotifyBeforeExpire bool      `db:"notify_before_expire"`
	DigestTime         TimeOfDay `db:"digest_time"`

	IsActive          bool       `db:"is_active"`
	CreatedAt         time.Time  `db:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at"`
	LastNotifiedAt    *time.Time `db:"last_notified_at"`
	LastDigestAt      *time.Time `db:"last_digest_at"`
	NotificationsSent int        `db:"notifications_sent"`
	MatchesFound      int        `db:"matches_found"`
}

// MatchesExchange evaluates the full subscription filter against an
// exchange.  ownerDivision is the division of the exchange owner ("" when
// unknown).  The repository narrows candidates in SQL first, but the whole
// predicate is applied here again: the JSON list columns cannot be tested
// in the WHERE clause, and re-checking the rest keeps the decision in one
// place.
//
// An exchange without a start_time skips the date, time-of-day and weekday
// checks entirely: they cannot be evaluated, so they are treated as
// satisfied.  This is intentional, not an omission.
func (s *ExchangeSubscription) MatchesExchange(e *Exchange, ownerDivision string) bool {
	if !s.IsActive {
		return false
	}
	// Self-notification is excluded unconditionally.
	if s.SubscriberID == e.OwnerID {
		return false
	}
	if s.ExchangeType != WatchBoth && string(s.ExchangeType) != string(e.OwnerIntent) {
		return false
	}
	if s.MinPrice != nil && e.Price < *s.MinPrice {
		return false
	}
	if s.MaxPrice != nil && e.Price > *s.MaxPrice {
		return false
	}
	// target_seller_id only makes sense when the owner is actually selling.
	if s.TargetSellerID != nil {
		if e.OwnerIntent == IntentBuy || *s.TargetSellerID != e.OwnerID {
			return false
		}
	}

	if e.StartTime != nil {
		st := e.StartTime
		if s.StartDate != nil && beforeDate(*st, *s.StartDate) {
			return false
		}
		if s.EndDate != nil && beforeDate(*s.EndDate, *st) {
			return false
		}
		clock := TimeOfDayFrom(*st)
		if s.StartTime != nil && clock < *s.StartTime {
			return false
		}
		if s.EndTime != nil && clock > *s.EndTime {
			return false
		}
		if len(s.DaysOfWeek) > 0 && !s.DaysOfWeek.Contains(isoWeekday(*st)) {
			return false
		}
	}

	if len(s.TargetDivisions) > 0 {
		if ownerDivision == "" || !s.TargetDivisions.Contains(ownerDivision) {
			return false
		}
	}
	return true
}

// beforeDate compares only the calendar dates of a and b.
func beforeDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay < by
	}
	if am != bm {
		return am < bm
	}
	return ad < bd
}

// isoWeekday maps time.Weekday to ISO numbering (Monday=1 … Sunday=7).
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// SubscriptionUpdate is the allow-listed partial update for a
// subscription's filter and notification settings.  Only non-nil fields
// are written.  The list fields distinguish "leave unchanged" (nil
// pointer) from "clear" (pointer to nil/empty list).
type SubscriptionUpdate struct {
	Name               *string
	ExchangeType       *SubscriptionExchangeType
	SubscriptionType   *string
	MinPrice           *int
	MaxPrice           *int
	StartDate          *time.Time
	EndDate            *time.Time
	StartTime          *TimeOfDay
	EndTime            *TimeOfDay
	DaysOfWeek         *IntList
	TargetSellerID     *int64
	TargetDivisions    *StringList
	NotifyImmediately  *bool
	NotifyDailyDigest  *bool
	NotifyBeforeExpire *bool
	DigestTime         *TimeOfDay
	IsActive           *bool
}

// Empty reports whether the update carries no fields at all.
func (u SubscriptionUpdate) Empty() bool {
	return u.Name == nil && u.ExchangeType == nil && u.SubscriptionType == nil &&
		u.MinPrice == nil && u.MaxPrice == nil &&
		u.StartDate == nil && u.EndDate == nil &&
		u.StartTime == nil && u.EndTime == nil &&
		u.DaysOfWeek == nil && u.TargetSellerID == nil && u.TargetDivisions == nil &&
		u.NotifyImmediately == nil && u.NotifyDailyDigest == nil &&
		u.NotifyBeforeExpire == nil && u.DigestTime == nil && u.IsActive == nil
}

// SubscriptionNotification is one immutable ledger row: this subscription
// was notified about this exchange at this time.
type SubscriptionNotification struct {
	ID               int64            `db:"id"`
	SubscriptionID   int64            `db:"subscription_id"`
	ExchangeID       int64            `db:"exchange_id"`
	NotificationType NotificationType `db:"notification_type"`
	SentAt           time.Time        `db:"sent_at"`
}
