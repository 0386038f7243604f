package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"newsdesk/internal/resilience/retry"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// ErrMissingDSN is returned by Open when no connection string is configured.
var ErrMissingDSN = errors.New("DATABASE_URL not set")

// ConnectionConfig holds database connection pool configuration.
type ConnectionConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

// DefaultConnectionConfig returns the default connection pool configuration.
// The service only pings the database, so the pool is small.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: 1 * time.Hour,
		ConnMaxIdleTime: 30 * time.Minute,
		PingTimeout:     3 * time.Second,
	}
}

// Validate rejects pool settings database/sql would silently misinterpret.
func (c ConnectionConfig) Validate() error {
	if c.MaxOpenConns <= 0 {
		return fmt.Errorf("max open conns must be positive, got %d", c.MaxOpenConns)
	}
	if c.MaxIdleConns < 0 || c.MaxIdleConns > c.MaxOpenConns {
		return fmt.Errorf("max idle conns must be between 0 and %d, got %d", c.MaxOpenConns, c.MaxIdleConns)
	}
	if c.ConnMaxLifetime <= 0 || c.ConnMaxIdleTime <= 0 {
		return fmt.Errorf("connection lifetimes must be positive")
	}
	if c.PingTimeout <= 0 {
		return fmt.Errorf("ping timeout must be positive, got %v", c.PingTimeout)
	}
	return nil
}

// Open creates the pgx-backed pool and pings it with retry.
//
// An unreachable database does not fail Open: the returned Store reports
// "disconnected" and later pings update it. Only an empty DSN or a driver
// error is returned.
func Open(ctx context.Context, dsn string, cfg ConnectionConfig) (*Store, error) {
	if dsn == "" {
		return nil, ErrMissingDSN
	}

	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	slog.Info("database connection pool configured",
		slog.Int("max_open_conns", cfg.MaxOpenConns),
		slog.Int("max_idle_conns", cfg.MaxIdleConns),
		slog.Duration("conn_max_lifetime", cfg.ConnMaxLifetime),
		slog.Duration("conn_max_idle_time", cfg.ConnMaxIdleTime))

	store := NewStore(sqlDB, cfg.PingTimeout)
	err = retry.WithBackoff(ctx, retry.DBConfig(), func() error {
		return store.Ping(ctx)
	})
	if err != nil {
		slog.Warn("database not reachable at startup",
			slog.String("state", store.State()),
			slog.Any("error", err))
		return store, nil
	}

	slog.Info("database connection established successfully")
	return store, nil
}
