// Package stp is the shared database-access layer of the STP Telegram bot
// platform.  It owns the shift-exchange marketplace: postings, the
// accept/sell lifecycle, saved subscriptions with matching, and the
// notification ledger.  Bots construct one Store and share it.
package stp

import (
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/stp-platform/stp-database/cache"
	"github.com/stp-platform/stp-database/config"
	"github.com/stp-platform/stp-database/queue"
	"github.com/stp-platform/stp-database/repository"
)

// Store bundles every repository over one connection pool.  Redis and
// RabbitMQ are optional: a nil client disables the listing cache and a
// missing broker URL disables event publishing, without changing any
// call site.
type Store struct {
	Employees     *repository.EmployeeRepo
	Exchanges     *repository.ExchangeRepo
	Subscriptions *repository.SubscriptionRepo
	Notifications *repository.NotificationRepo
	Events        *queue.Publisher
}

// New wires the repositories to the given database, cache and broker.
func New(db *sqlx.DB, rdb *redis.Client, cfg config.Config, log *zap.Logger) *Store {
	wrapped := repository.Wrap(db)
	listings := cache.New(rdb, cfg.Redis.TTL, log)
	employees := repository.NewEmployeeRepo(wrapped, log)
	return &Store{
		Employees:     employees,
		Exchanges:     repository.NewExchangeRepo(wrapped, employees, listings, log),
		Subscriptions: repository.NewSubscriptionRepo(wrapped, log),
		Notifications: repository.NewNotificationRepo(wrapped, log),
		Events:        queue.NewPublisher(cfg.AMQP.URL, log),
	}
}
