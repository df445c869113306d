package model

import "time"

// ExchangeStatus enumerates the lifecycle states of a posting.
type ExchangeStatus string

const (
	StatusActive   ExchangeStatus = "active"
	StatusInactive ExchangeStatus = "inactive"
	StatusSold     ExchangeStatus = "sold"
	StatusCanceled ExchangeStatus = "canceled"
	StatusExpired  ExchangeStatus = "expired"
)

// Terminal reports whether no further accept is possible from this state.
// active⇄inactive is the only reversible pair; sold, canceled and expired
// are final.
func (s ExchangeStatus) Terminal() bool {
	switch s {
	case StatusSold, StatusCanceled, StatusExpired:
		return true
	default:
		return false
	}
}

// Intent says which side of the trade the owner is on: sell means the owner
// offers their shift, buy means the owner seeks to acquire one.
type Intent string

const (
	IntentSell Intent = "sell"
	IntentBuy  Intent = "buy"
)

// PaymentType says when the accepted trade is to be paid.
type PaymentType string

const (
	PaymentImmediate PaymentType = "immediate"
	PaymentOnDate    PaymentType = "on_date"
)

// Exchange is a shift-trade posting on the marketplace.  It mirrors the
// exchanges table row for row; the owner/counterpart terminology replaces
// the older seller/buyer schema revision.
type Exchange struct {
	ID                    int64          `db:"id"`
	OwnerID               int64          `db:"owner_id"`
	CounterpartID         *int64         `db:"counterpart_id"` // nil until accepted
	StartTime             *time.Time     `db:"start_time"`
	EndTime               *time.Time     `db:"end_time"` // set for partial-shift trades
	Price                 int            `db:"price"`
	IsPaid                bool           `db:"is_paid"`
	PaymentType           PaymentType    `db:"payment_type"`
	PaymentDate           *time.Time     `db:"payment_date"` // meaningful when PaymentType is on_date
	OwnerIntent           Intent         `db:"owner_intent"`
	Status                ExchangeStatus `db:"status"`
	IsPrivate             bool           `db:"is_private"` // direct-message only, hidden from the public listing
	InOwnerSchedule       bool           `db:"in_owner_schedule"`
	InCounterpartSchedule bool           `db:"in_counterpart_schedule"`
	Comment               *string        `db:"comment"`
	CreatedAt             time.Time      `db:"created_at"`
	UpdatedAt             time.Time      `db:"updated_at"`
	SoldAt                *time.Time     `db:"sold_at"` // set on acceptance
}

// PayerID returns the user who owes payment for a sold exchange: the
// counterpart when the owner sold their shift, the owner when the owner
// bought one.  Unknown intents fall back to the counterpart, matching the
// historical behaviour.  Returns nil while no counterpart is assigned.
func (e *Exchange) PayerID() *int64 {
	if e.CounterpartID == nil {
		return nil
	}
	switch e.OwnerIntent {
	case IntentSell:
		return e.CounterpartID
	case IntentBuy:
		owner := e.OwnerID
		return &owner
	default:
		return e.CounterpartID
	}
}

// ExchangeUpdate is the allow-listed partial update for an exchange.  Only
// non-nil fields are written; the set of mutable columns is fixed here
// instead of accepting an open-ended field map.
type ExchangeUpdate struct {
	StartTime             *time.Time
	EndTime               *time.Time
	Price                 *int
	Comment               *string
	PaymentType           *PaymentType
	PaymentDate           *time.Time
	IsPrivate             *bool
	IsPaid                *bool
	InOwnerSchedule       *bool
	InCounterpartSchedule *bool
}

// Empty reports whether the update carries no fields at all.
func (u ExchangeUpdate) Empty() bool {
	return u.StartTime == nil && u.EndTime == nil && u.Price == nil &&
		u.Comment == nil && u.PaymentType == nil && u.PaymentDate == nil &&
		u.IsPrivate == nil && u.IsPaid == nil &&
		u.InOwnerSchedule == nil && u.InCounterpartSchedule == nil
}

// ExchangeStats aggregates a user's sales or purchases over a period.
type ExchangeStats struct {
	Count        int       `db:"total"`
	TotalAmount  float64   `db:"total_amount"`
	AveragePrice float64   `db:"average_price"`
	PeriodStart  time.Time `db:"-"`
	PeriodEnd    time.Time `db:"-"`
}

// PayerExchanges groups the sold-but-unpaid exchanges one user owes
// payment for.
type PayerExchanges struct {
	PayerID   int64
	Exchanges []Exchange
}
