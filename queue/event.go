// Package queue publishes marketplace events to RabbitMQ.  Consumers are
// the Telegram bots and reporting jobs; every payload carries enough for
// them to act without querying the primary database.
package queue

import (
	"time"

	"github.com/stp-platform/stp-database/model"
)

// Queue names.  The routing key equals the queue name on the default
// exchange.
const (
	QueueExchangeCreated  = "exchange.created"
	QueueExchangeAccepted = "exchange.accepted"
	QueueMatchFound       = "exchange.match_found"
)

// ExchangeCreatedEvent is published when a new exchange is posted.
type ExchangeCreatedEvent struct {
	ExchangeID  int64   `json:"exchange_id"`
	OwnerID     int64   `json:"owner_id"`
	OwnerIntent string  `json:"owner_intent"`
	Price       int     `json:"price"`
	StartTime   *string `json:"start_time,omitempty"`
	EndTime     *string `json:"end_time,omitempty"`
	IsPrivate   bool    `json:"is_private"`
	CreatedAt   string  `json:"created_at"`
}

// ExchangeAcceptedEvent is published when an exchange is sold.
type ExchangeAcceptedEvent struct {
	ExchangeID    int64  `json:"exchange_id"`
	OwnerID       int64  `json:"owner_id"`
	CounterpartID int64  `json:"counterpart_id"`
	OwnerIntent   string `json:"owner_intent"`
	Price         int    `json:"price"`
	IsPaid        bool   `json:"is_paid"`
	SoldAt        string `json:"sold_at"`
}

// MatchFoundEvent is published for every subscription the matcher pairs
// with a new exchange.  The bot turns these into Telegram messages.
type MatchFoundEvent struct {
	SubscriptionID int64  `json:"subscription_id"`
	SubscriberID   int64  `json:"subscriber_id"`
	ExchangeID     int64  `json:"exchange_id"`
	OwnerID        int64  `json:"owner_id"`
	OwnerIntent    string `json:"owner_intent"`
	Price          int    `json:"price"`
}

// NewExchangeCreated builds the event payload for a freshly created
// exchange.
func NewExchangeCreated(e *model.Exchange) ExchangeCreatedEvent {
	return ExchangeCreatedEvent{
		ExchangeID:  e.ID,
		OwnerID:     e.OwnerID,
		OwnerIntent: string(e.OwnerIntent),
		Price:       e.Price,
		StartTime:   fmtTime(e.StartTime),
		EndTime:     fmtTime(e.EndTime),
		IsPrivate:   e.IsPrivate,
		CreatedAt:   e.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// NewExchangeAccepted builds the event payload for a completed deal.
func NewExchangeAccepted(e *model.Exchange) ExchangeAcceptedEvent {
	ev := ExchangeAcceptedEvent{
		ExchangeID:  e.ID,
		OwnerID:     e.OwnerID,
		OwnerIntent: string(e.OwnerIntent),
		Price:       e.Price,
		IsPaid:      e.IsPaid,
	}
	if e.CounterpartID != nil {
		ev.CounterpartID = *e.CounterpartID
	}
	if e.SoldAt != nil {
		ev.SoldAt = e.SoldAt.UTC().Format(time.RFC3339)
	}
	return ev
}

// NewMatchFound builds the event payload for one matcher hit.
func NewMatchFound(s *model.ExchangeSubscription, e *model.Exchange) MatchFoundEvent {
	return MatchFoundEvent{
		SubscriptionID: s.ID,
		SubscriberID:   s.SubscriberID,
		ExchangeID:     e.ID,
		OwnerID:        e.OwnerID,
		OwnerIntent:    string(e.OwnerIntent),
		Price:          e.Price,
	}
}

func fmtTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
