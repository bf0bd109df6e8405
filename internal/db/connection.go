// Package db contains code for connecting to the database.
package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stacklok/country-cache-server/internal/config"
)

const (
	defaultMaxConns        = 25
	defaultMinConns        = 5
	defaultConnMaxLifetime = 5 * time.Minute
	defaultConnectTimeout  = 10 * time.Second

	// defaultPingTries bounds the startup wait for a database that is still coming up
	defaultPingTries = 5
)

// PoolOption configures NewPool
type PoolOption func(*poolOptions)

type poolOptions struct {
	pingTries   uint
	initialWait time.Duration
}

// WithPingTries sets how many times the initial ping is attempted
func WithPingTries(tries uint) PoolOption {
	return func(o *poolOptions) {
		if tries > 0 {
			o.pingTries = tries
		}
	}
}

// WithInitialRetryInterval sets the first backoff interval between ping attempts
func WithInitialRetryInterval(d time.Duration) PoolOption {
	return func(o *poolOptions) {
		o.initialWait = d
	}
}

// NewPool creates a pgx connection pool from the database configuration and
// waits for the database to answer a ping, retrying with exponential backoff.
func NewPool(ctx context.Context, cfg *config.DatabaseConfig, opts ...PoolOption) (*pgxpool.Pool, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration is required")
	}

	o := &poolOptions{pingTries: defaultPingTries, initialWait: 500 * time.Millisecond}
	for _, opt := range opts {
		opt(o)
	}

	connStr, err := cfg.GetConnectionString()
	if err != nil {
		return nil, fmt.Errorf("failed to build connection string: %w", err)
	}

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	poolConfig.MaxConns = defaultMaxConns
	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = cfg.MaxOpenConns
	}
	poolConfig.MinConns = min(defaultMinConns, poolConfig.MaxConns)
	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = min(cfg.MaxIdleConns, poolConfig.MaxConns)
	}
	poolConfig.MaxConnLifetime = defaultConnMaxLifetime
	if cfg.ConnMaxLifetime != "" {
		lifetime, err := time.ParseDuration(cfg.ConnMaxLifetime)
		if err != nil {
			return nil, fmt.Errorf("invalid connection max lifetime: %w", err)
		}
		poolConfig.MaxConnLifetime = lifetime
	}
	poolConfig.ConnConfig.ConnectTimeout = defaultConnectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pingWithRetry(ctx, pool, o); err != nil {
		pool.Close()
		return nil, err
	}

	slog.Info("Database connection established",
		"user", cfg.User,
		"host", cfg.Host,
		"port", cfg.Port,
		"database", cfg.Database)

	return pool, nil
}

// Pinger is satisfied by *pgxpool.Pool
type Pinger interface {
	Ping(ctx context.Context) error
}

func pingWithRetry(ctx context.Context, p Pinger, o *poolOptions) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = o.initialWait

	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		if err := p.Ping(ctx); err != nil {
			slog.Warn("Database not reachable yet", "attempt", attempt, "error", err)
			return struct{}{}, err
		}
		return struct{}{}, nil
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(o.pingTries),
	)
	if err != nil {
		return fmt.Errorf("failed to ping database after %d attempts: %w", attempt, err)
	}
	return nil
}
