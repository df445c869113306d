// Package config loads the shared configuration for all STP bot services
// from environment variables.  A .env file in the working directory is
// loaded first when present, so local development does not require
// exporting variables by hand.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting the database module needs.  Each field
// corresponds to an environment variable.  Redis and AMQP are optional:
// when their variables are absent the listing cache and event publishing
// degrade to no-ops.
type Config struct {
	Env   string // application environment (e.g. "dev", "prod")
	DB    DBConfig
	Redis RedisConfig
	AMQP  AMQPConfig
}

// DBConfig describes the MySQL/MariaDB connection.
type DBConfig struct {
	User string // database username
	Pass string // database password (optional)
	Host string // database host address
	Port string // database port number
	Name string // database name
}

// RedisConfig describes the optional Redis instance used for listing caching.
type RedisConfig struct {
	Addr     string        // host:port, empty disables caching
	Password string        // optional password
	DB       int           // database number
	TTL      time.Duration // lifetime of cached listings
}

// AMQPConfig describes the optional RabbitMQ broker used for exchange events.
type AMQPConfig struct {
	URL string // amqp:// URL, empty disables publishing
}

// DSN builds the MySQL connection string.  parseTime=true maps DATETIME
// columns to time.Time and loc=UTC keeps every stored timestamp consistent
// regardless of the host timezone.
func (c DBConfig) DSN() string {
	auth := c.User
	if c.Pass != "" {
		auth = fmt.Sprintf("%s:%s", c.User, c.Pass)
	}
	return fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, c.Host, c.Port, c.Name)
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	_ = godotenv.Load() // best effort; variables already exported win

	return Config{
		Env: getenv("APP_ENV", "dev"),
		DB: DBConfig{
			User: must("DB_USER"),
			Pass: os.Getenv("DB_PASS"), // empty allowed
			Host: must("DB_HOST"),
			Port: getenv("DB_PORT", "3306"),
			Name: must("DB_NAME"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       atoi(getenv("REDIS_DB", "0")),
			TTL:      parseDur(getenv("CACHE_TTL", "30s")),
		},
		AMQP: AMQPConfig{
			URL: os.Getenv("RABBITMQ_URL"),
		},
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// getenv returns the value of key or def when the variable is unset.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoi(s string) int {
	i, _ := strconv.Atoi(s)
	return i
}

func parseDur(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 30 * time.Second
	}
	return d
}
