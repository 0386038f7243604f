// Package db opens the PostgreSQL connection pool and tracks its reachability.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

// Connection states reported by Store.State.
const (
	StateConnecting   = "connecting"
	StateConnected    = "connected"
	StateDisconnected = "disconnected"
	StateClosed       = "closed"
)

// ErrClosed is returned by Ping after Close.
var ErrClosed = errors.New("database store closed")

var stateNames = [...]string{StateConnecting, StateConnected, StateDisconnected, StateClosed}

const (
	connecting int32 = iota
	connected
	disconnected
	closed
)

// Store wraps a pool and remembers the outcome of the last ping.
type Store struct {
	db          *sql.DB
	pingTimeout time.Duration
	state       atomic.Int32
}

// NewStore wraps db. The store starts in the "connecting" state.
// A non-positive pingTimeout leaves pings bounded only by the caller's context.
func NewStore(db *sql.DB, pingTimeout time.Duration) *Store {
	return &Store{db: db, pingTimeout: pingTimeout}
}

// Ping checks the database and records the outcome. A closed store stays closed.
func (s *Store) Ping(ctx context.Context) error {
	if s.state.Load() == closed {
		return ErrClosed
	}
	if s.pingTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.pingTimeout)
		defer cancel()
	}

	err := s.db.PingContext(ctx)
	next := connected
	if err != nil {
		next = disconnected
	}
	for {
		cur := s.state.Load()
		if cur == closed {
			return ErrClosed
		}
		if s.state.CompareAndSwap(cur, next) {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

// State returns the state recorded by the most recent Ping or Close.
func (s *Store) State() string {
	return stateNames[s.state.Load()]
}

// Stats returns pool statistics. The database probe reports them.
func (s *Store) Stats() sql.DBStats {
	return s.db.Stats()
}

// Close closes the pool. Later pings fail with ErrClosed.
func (s *Store) Close() error {
	if s.state.Swap(closed) == closed {
		return nil
	}
	return s.db.Close()
}
