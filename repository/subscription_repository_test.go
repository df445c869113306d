package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/stp-platform/stp-database/model"
)

func TestSubscriptionCreateAppliesDefaults(t *testing.T) {
	db := stubDB{
		getFn: func(_ context.Context, dest any, _ string, args ...any) error {
			if len(args) != 1 || args[0] != int64(4) {
				t.Fatalf("readback with unexpected args: %#v", args)
			}
			*dest.(*model.ExchangeSubscription) = model.ExchangeSubscription{ID: 4, SubscriberID: 9}
			return nil
		},
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "INSERT INTO exchange_subscriptions") {
				t.Fatalf("unexpected query: %s", query)
			}
			if len(args) != 17 {
				t.Fatalf("expected 17 args, got %d", len(args))
			}
			if args[2] != model.WatchBuy {
				t.Fatalf("exchange_type must default to buy, got %#v", args[2])
			}
			if args[3] != "all" {
				t.Fatalf("subscription_type must default to all, got %#v", args[3])
			}
			if args[16] != model.NewTimeOfDay(9, 0, 0) {
				t.Fatalf("digest_time must default to 09:00:00, got %#v", args[16])
			}
			return stubResult{lastID: 4, rows: 1}, nil
		},
	}
	s, err := NewSubscriptionRepo(db, testLogger).Create(context.Background(), CreateSubscriptionParams{SubscriberID: 9})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s == nil || s.ID != 4 {
		t.Fatalf("unexpected subscription: %#v", s)
	}
}

func TestSubscriptionCreateRejectsInvalidParams(t *testing.T) {
	db := stubDB{
		execFn: func(_ context.Context, _ string, _ ...any) (sql.Result, error) {
			t.Fatal("no statement may run for invalid params")
			return nil, nil
		},
	}
	repo := NewSubscriptionRepo(db, testLogger)

	lo, hi := 3000, 1000
	if _, err := repo.Create(context.Background(), CreateSubscriptionParams{
		SubscriberID: 9, MinPrice: &lo, MaxPrice: &hi,
	}); !errors.Is(err, ErrInvalidParams) {
		t.Fatalf("inverted price range: expected ErrInvalidParams, got %v", err)
	}
	if _, err := repo.Create(context.Background(), CreateSubscriptionParams{
		SubscriberID: 9, DaysOfWeek: model.IntList{8},
	}); !errors.Is(err, ErrInvalidParams) {
		t.Fatalf("weekday out of range: expected ErrInvalidParams, got %v", err)
	}
	if _, err := repo.Create(context.Background(), CreateSubscriptionParams{
		SubscriberID: 9, ExchangeType: "everything",
	}); !errors.Is(err, ErrInvalidParams) {
		t.Fatalf("bad exchange type: expected ErrInvalidParams, got %v", err)
	}
}

func TestSubscriptionUpdateSetClause(t *testing.T) {
	active := false
	maxPrice := 5000
	db := stubDB{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "SET max_price = ?, is_active = ? WHERE id = ?") {
				t.Fatalf("unexpected SET clause: %s", query)
			}
			if len(args) != 3 || args[0] != 5000 || args[1] != false || args[2] != int64(4) {
				t.Fatalf("unexpected args: %#v", args)
			}
			return stubResult{rows: 1}, nil
		},
	}
	ok, err := NewSubscriptionRepo(db, testLogger).Update(context.Background(), 4,
		model.SubscriptionUpdate{MaxPrice: &maxPrice, IsActive: &active})
	if err != nil || !ok {
		t.Fatalf("expected success, got (%v, %v)", ok, err)
	}
}

func TestSubscriptionUpdateEmpty(t *testing.T) {
	db := stubDB{
		execFn: func(_ context.Context, _ string, _ ...any) (sql.Result, error) {
			t.Fatal("empty update must not touch the database")
			return nil, nil
		},
	}
	ok, err := NewSubscriptionRepo(db, testLogger).Update(context.Background(), 4, model.SubscriptionUpdate{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("empty update must report false")
	}
}

func TestSubscriptionDeactivateSingle(t *testing.T) {
	id := int64(4)
	db := stubDB{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "is_active = TRUE AND id = ?") {
				t.Fatalf("unexpected query: %s", query)
			}
			if len(args) != 2 || args[0] != int64(9) || args[1] != int64(4) {
				t.Fatalf("unexpected args: %#v", args)
			}
			return stubResult{rows: 1}, nil
		},
	}
	ok, err := NewSubscriptionRepo(db, testLogger).Deactivate(context.Background(), 9, &id)
	if err != nil || !ok {
		t.Fatalf("expected success, got (%v, %v)", ok, err)
	}
}

func TestSubscriptionDeactivateAll(t *testing.T) {
	db := stubDB{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if strings.Contains(query, " AND id = ?") {
				t.Fatalf("deactivate-all must not filter on id: %s", query)
			}
			if len(args) != 1 || args[0] != int64(9) {
				t.Fatalf("unexpected args: %#v", args)
			}
			return stubResult{rows: 3}, nil
		},
	}
	ok, err := NewSubscriptionRepo(db, testLogger).Deactivate(context.Background(), 9, nil)
	if err != nil || !ok {
		t.Fatalf("expected success, got (%v, %v)", ok, err)
	}
}

func TestSubscriptionGetByIDOwnership(t *testing.T) {
	owner := int64(9)
	db := stubDB{
		getFn: func(_ context.Context, _ any, query string, args ...any) error {
			if !strings.Contains(query, "s.id = ? AND s.subscriber_id = ?") {
				t.Fatalf("unexpected query: %s", query)
			}
			if len(args) != 2 || args[0] != int64(4) || args[1] != int64(9) {
				t.Fatalf("unexpected args: %#v", args)
			}
			return sql.ErrNoRows
		},
	}
	_, err := NewSubscriptionRepo(db, testLogger).GetByID(context.Background(), 4, &owner)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// sellExchange is a minimal active sell posting used by the matcher tests.
func sellExchange() *model.Exchange {
	return &model.Exchange{
		ID: 3, OwnerID: 1, Price: 2000,
		OwnerIntent: model.IntentSell, Status: model.StatusActive,
	}
}

func TestSubscriptionFindMatchingSellIntent(t *testing.T) {
	db := stubDB{
		selectFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "s.notify_immediately = TRUE") ||
				!strings.Contains(query, "s.subscriber_id <> ?") ||
				!strings.Contains(query, "(s.target_seller_id IS NULL OR s.target_seller_id = ?)") {
				t.Fatalf("unexpected query: %s", query)
			}
			if len(args) != 5 || args[0] != model.IntentSell || args[3] != int64(1) || args[4] != int64(1) {
				t.Fatalf("unexpected args: %#v", args)
			}
			*dest.(*[]model.ExchangeSubscription) = []model.ExchangeSubscription{
				{ID: 4, SubscriberID: 9, ExchangeType: model.WatchSell, IsActive: true},
				// Division filter fails the fine phase for this one.
				{ID: 5, SubscriberID: 10, ExchangeType: model.WatchSell, IsActive: true,
					TargetDivisions: model.StringList{"south"}},
			}
			return nil
		},
		getFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "SELECT division FROM employees") {
				t.Fatalf("unexpected query: %s", query)
			}
			if len(args) != 1 || args[0] != int64(1) {
				t.Fatalf("unexpected args: %#v", args)
			}
			*dest.(*sql.NullString) = sql.NullString{String: "north", Valid: true}
			return nil
		},
	}
	matches, err := NewSubscriptionRepo(db, testLogger).FindMatching(context.Background(), sellExchange())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 1 || matches[0].ID != 4 {
		t.Fatalf("unexpected matches: %#v", matches)
	}
}

func TestSubscriptionFindMatchingBuyIntentExcludesTargetedSellers(t *testing.T) {
	db := stubDB{
		selectFn: func(_ context.Context, _ any, query string, args ...any) error {
			if !strings.Contains(query, "s.target_seller_id IS NULL") ||
				strings.Contains(query, "s.target_seller_id = ?") {
				t.Fatalf("buy intent must only admit wildcard seller filters: %s", query)
			}
			if len(args) != 4 {
				t.Fatalf("unexpected args: %#v", args)
			}
			return nil
		},
	}
	e := sellExchange()
	e.OwnerIntent = model.IntentBuy
	if _, err := NewSubscriptionRepo(db, testLogger).FindMatching(context.Background(), e); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSubscriptionFindMatchingNoCandidates(t *testing.T) {
	db := stubDB{
		getFn: func(_ context.Context, _ any, _ string, _ ...any) error {
			t.Fatal("division lookup must be skipped without candidates")
			return nil
		},
	}
	matches, err := NewSubscriptionRepo(db, testLogger).FindMatching(context.Background(), sellExchange())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if matches != nil {
		t.Fatalf("expected no matches, got %#v", matches)
	}
}

func TestSubscriptionFindMatchingUnknownOwnerDivision(t *testing.T) {
	db := stubDB{
		selectFn: func(_ context.Context, dest any, _ string, _ ...any) error {
			*dest.(*[]model.ExchangeSubscription) = []model.ExchangeSubscription{
				{ID: 4, SubscriberID: 9, ExchangeType: model.WatchBoth, IsActive: true,
					TargetDivisions: model.StringList{"north"}},
			}
			return nil
		},
		getFn: func(_ context.Context, _ any, _ string, _ ...any) error {
			return sql.ErrNoRows
		},
	}
	matches, err := NewSubscriptionRepo(db, testLogger).FindMatching(context.Background(), sellExchange())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 0 {
		t.Fatal("a division filter cannot match an owner without a division")
	}
}

func TestSubscriptionIncrementMatches(t *testing.T) {
	db := stubDB{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "matches_found = matches_found + 1") ||
				!strings.Contains(query, "IN (?,?,?)") {
				t.Fatalf("unexpected query: %s", query)
			}
			if len(args) != 3 || args[0] != int64(4) || args[2] != int64(6) {
				t.Fatalf("unexpected args: %#v", args)
			}
			return stubResult{rows: 3}, nil
		},
	}
	if err := NewSubscriptionRepo(db, testLogger).IncrementMatches(context.Background(), 4, 5, 6); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSubscriptionIncrementMatchesNoIDs(t *testing.T) {
	db := stubDB{
		execFn: func(_ context.Context, _ string, _ ...any) (sql.Result, error) {
			t.Fatal("no ids means no statement")
			return nil, nil
		},
	}
	if err := NewSubscriptionRepo(db, testLogger).IncrementMatches(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSubscriptionListForDigest(t *testing.T) {
	at := model.NewTimeOfDay(9, 0, 0)
	db := stubDB{
		selectFn: func(_ context.Context, _ any, query string, args ...any) error {
			if !strings.Contains(query, "s.notify_daily_digest = TRUE") ||
				!strings.Contains(query, "s.digest_time = ?") {
				t.Fatalf("unexpected query: %s", query)
			}
			if len(args) != 1 || args[0] != at {
				t.Fatalf("unexpected args: %#v", args)
			}
			return nil
		},
	}
	if _, err := NewSubscriptionRepo(db, testLogger).ListForDigest(context.Background(), at); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
