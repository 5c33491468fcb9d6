// Package config handles configuration for the server component: defaults,
// a JSON or YAML file overlay, environment variables (optionally from .env)
// and command-line flags, applied in that order.
package config

import (
	"errors"
	"time"
)

// Config holds runtime settings for the gophboard server.
//
// Fields:
//   - EndpointAddrHTTP: bind address for GraphQL over HTTP and WebSocket.
//   - EndpointAddrGRPC: bind address for the gRPC health service.
//   - DatabaseDriver / DatabaseDSN: "sqlite" (modernc) or "pgx" (PostgreSQL).
//   - SecretKey: HMAC secret for signing JWTs (HS256). Override the default in prod.
//   - TokenValidityDuration: lifetime of issued tokens.
//   - PasswordHashCost: bcrypt cost.
//   - MessagesDefaultLimit / MessagesMaxLimit: bounds for the messages query.
//   - SubscriberBuffer: per-subscription buffer of the notification bus.
//   - SeedDemoData: populate demo users, posts and messages into an empty store.
//   - LogFormat / LogLevel: "json", "text" (slog) or "zap"; debug..error.
type Config struct {
	EndpointAddrHTTP      string
	EndpointAddrGRPC      string
	DatabaseDriver        string
	DatabaseDSN           string
	SecretKey             string
	TokenValidityDuration time.Duration
	PasswordHashCost      int
	MessagesDefaultLimit  int
	MessagesMaxLimit      int
	SubscriberBuffer      int
	SeedDemoData          bool
	LogFormat             string
	LogLevel              string
}

// LoadDefaults populates Config with development defaults.
// NOTE: the secret key is insecure and must be overridden in production.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":4001"
	c.EndpointAddrGRPC = ":50051"
	c.DatabaseDriver = "sqlite"
	c.DatabaseDSN = "file:data/app.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate"
	c.SecretKey = "your-super-secret-key-change-in-production"
	c.TokenValidityDuration = 7 * 24 * time.Hour
	c.PasswordHashCost = 10
	c.MessagesDefaultLimit = 50
	c.MessagesMaxLimit = 500
	c.SubscriberBuffer = 16
	c.SeedDemoData = true
	c.LogFormat = "json"
	c.LogLevel = "info"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional config file, the environment and finally command-line
// flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)
	parseEnv(cfg, ".env")
	parseFlags(cfg)
	return cfg
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.SecretKey == "" {
		errs = append(errs, errors.New("secret key must not be empty"))
	}
	if c.DatabaseDriver != "sqlite" && c.DatabaseDriver != "pgx" {
		errs = append(errs, errors.New(`database driver must be "sqlite" or "pgx"`))
	}
	if c.TokenValidityDuration <= 0 {
		errs = append(errs, errors.New("token validity must be positive"))
	}
	if c.MessagesDefaultLimit <= 0 || c.MessagesMaxLimit < c.MessagesDefaultLimit {
		errs = append(errs, errors.New("messages limits must satisfy 0 < default <= max"))
	}
	return errors.Join(errs...)
}
