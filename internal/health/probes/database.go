// Package probes implements the service's health probes: the document store,
// the headline API, the configured RSS feeds, the Google Cloud credentials and
// translation API, and the primary generative model.
//
// Every probe turns its own failures into an unhealthy result; none returns
// an error or lets a panic escape on purpose. The health.Set still guards
// against both.
package probes

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"newsdesk/internal/health"
)

// Probe names as they appear in reports and on /health/{probe}.
const (
	NameDatabase = "database"
	NameNewsAPI  = "news_api"
	NameRSS      = "rss"
	NameCloud    = "cloud"
	NameAI       = "ai"
)

// DocumentStore is the part of the database store the probe needs.
type DocumentStore interface {
	State() string
	Ping(ctx context.Context) error
}

// PoolStatter is implemented by stores that expose connection pool
// statistics; the probe attaches them to its result.
type PoolStatter interface {
	Stats() sql.DBStats
}

// Database checks that the store answers a ping and reports itself connected.
type Database struct {
	store   DocumentStore
	timeout time.Duration
}

// NewDatabase creates the probe. A nil store reports unhealthy.
func NewDatabase(store DocumentStore, timeout time.Duration) *Database {
	return &Database{store: store, timeout: timeout}
}

func (d *Database) Name() string { return NameDatabase }

func (d *Database) Check(ctx context.Context) health.ProbeResult {
	if d.store == nil {
		return health.Unhealthy("database not configured", nil, nil)
	}
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	err := d.store.Ping(ctx)
	state := d.store.State()
	data := map[string]any{"state": state}
	if ps, ok := d.store.(PoolStatter); ok {
		st := ps.Stats()
		data["open_connections"] = st.OpenConnections
		data["in_use"] = st.InUse
		data["idle"] = st.Idle
		data["wait_count"] = st.WaitCount
	}

	if err != nil {
		return health.Unhealthy("database ping failed", err, data)
	}
	if state != "connected" {
		return health.Unhealthy("database not connected", fmt.Errorf("store state is %q", state), data)
	}
	return health.Healthy("database connection ok", data)
}
