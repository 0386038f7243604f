// Package app wires configuration, providers and probes into the components
// shared by cmd/api, cmd/worker and cmd/diagnose.
package app

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/api/option"

	"newsdesk/internal/config"
	"newsdesk/internal/health"
	"newsdesk/internal/health/probes"
	"newsdesk/internal/infra/cloud"
	"newsdesk/internal/infra/db"
	"newsdesk/internal/infra/feed"
	"newsdesk/internal/infra/genai"
	"newsdesk/internal/infra/newsapi"
	"newsdesk/internal/observability/tracing"
	aiUC "newsdesk/internal/usecase/ai"
	pkgconfig "newsdesk/pkg/config"
)

// translateScope is requested by the OAuth sub-check.
const translateScope = "https://www.googleapis.com/auth/cloud-translation"

// App holds the wired components. Optional ones are nil when unconfigured.
type App struct {
	Config *config.Config
	Logger *slog.Logger

	Store     *db.Store
	Fetcher   *feed.Fetcher
	Previewer *feed.Fetcher // guarded, for caller-supplied URLs
	Headlines *newsapi.Client
	Generator genai.Generator
	Probes    *health.Set
	Tester    *aiUC.ModelTester

	shutdownTracing func(context.Context) error
}

// Options tune New for a particular binary.
type Options struct {
	// Component labels configuration metrics ("api", "worker", "diagnose").
	Component string
	// Registerer receives configuration metrics; nil skips them.
	Registerer prometheus.Registerer
	// Tracing installs the global tracer provider.
	Tracing bool
}

// New loads configuration and builds every component. Only configuration
// errors are fatal; unreachable providers surface through the probes.
func New(ctx context.Context, logger *slog.Logger, opts Options) (*App, error) {
	var cfgMetrics *pkgconfig.Metrics
	if opts.Registerer != nil {
		cfgMetrics = pkgconfig.NewMetrics(opts.Component, opts.Registerer)
	}

	cfg, err := config.Load(cfgMetrics)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	for _, w := range cfg.Warnings {
		logger.Warn("configuration fallback", slog.String("detail", w))
	}

	a := &App{Config: cfg, Logger: logger}

	if opts.Tracing {
		a.shutdownTracing = tracing.InitProvider("newsdesk-"+opts.Component, cfg.ServiceVersion, cfg.TraceSampleRatio)
	}

	if cfg.DatabaseURL != "" {
		a.Store, err = db.Open(ctx, cfg.DatabaseURL, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
	} else {
		logger.Warn("DATABASE_URL not set, database probe will report unhealthy")
	}

	a.Fetcher = feed.NewFetcher(cfg.Feed, &http.Client{Transport: newTransport()})
	a.Previewer = feed.NewGuardedFetcher(cfg.Feed, newTransport(), feed.PublicGuard())
	a.Headlines = newsapi.NewClient(cfg.NewsAPI)

	if cfg.AI.Enabled() {
		a.Generator, err = genai.New(cfg.AI.Config)
		if err != nil {
			logger.Warn("ai provider unavailable", slog.Any("error", err))
			a.Generator = nil
		}
	}
	if a.Generator != nil {
		a.Tester = aiUC.NewModelTester(a.Generator, cfg.AI.ProbePrompt, cfg.AI.ModelDelay)
	}

	a.Probes, err = health.NewSet(cfg.Health.ProbeTimeout, logger, a.probeList(ctx)...)
	if err != nil {
		return nil, fmt.Errorf("build probe set: %w", err)
	}

	logger.Info("components initialized",
		slog.Bool("database", a.Store != nil),
		slog.Bool("ai", a.Generator != nil),
		slog.String("ai_provider", cfg.AI.Provider),
		slog.Int("ai_models", len(cfg.AI.Models)),
		slog.Int("source_collections", len(cfg.Sources)),
		slog.Any("probes", a.Probes.Names()))
	return a, nil
}

func (a *App) probeList(ctx context.Context) []health.Probe {
	cfg := a.Config

	// Nil pointers must not reach the probes as non-nil interfaces.
	var store probes.DocumentStore
	if a.Store != nil {
		store = a.Store
	}
	var gen probes.Generator
	if a.Generator != nil {
		gen = a.Generator
	}

	var translateOpts []option.ClientOption
	if cfg.Cloud.TranslateEndpoint != "" {
		translateOpts = append(translateOpts, option.WithEndpoint(cfg.Cloud.TranslateEndpoint))
	}

	return []health.Probe{
		probes.NewDatabase(store, cfg.DB.PingTimeout),
		probes.NewNewsAPI(a.Headlines, cfg.NewsAPICountry, cfg.NewsAPI.Timeout),
		probes.NewRSS(a.Fetcher, cfg.Sources, cfg.Health.RSSParallelism),
		probes.NewCloud(
			cloud.NewAuthChecker(cfg.Cloud.CredentialsFile, translateScope),
			cloud.NewTranslator(ctx, cfg.Cloud.TranslateAPIKey, translateOpts...),
			cfg.Health.CloudTimeout),
		probes.NewAI(gen, cfg.AI.PrimaryModel(), cfg.AI.ProbePrompt, cfg.AI.Timeout),
	}
}

// Close releases the database pool and flushes traces.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	if a.shutdownTracing != nil {
		if err := a.shutdownTracing(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown tracing: %w", err))
		}
	}
	return errors.Join(errs...)
}

// newTransport backs outbound feed requests. Per-attempt deadlines come from
// the fetcher, so clients built on it have no Timeout.
func newTransport() *http.Transport {
	return &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	}
}
