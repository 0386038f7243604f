// Package config assembles the process configuration from the environment and
// the RSS source collections file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"newsdesk/internal/domain/entity"
	"newsdesk/internal/infra/db"
	"newsdesk/internal/infra/feed"
	"newsdesk/internal/infra/genai"
	"newsdesk/internal/infra/newsapi"
	pkgconfig "newsdesk/pkg/config"
)

// DefaultSourcesFile is read when FEED_SOURCES_FILE is unset.
const DefaultSourcesFile = "configs/sources.yaml"

// DefaultProbePrompt is sent to AI models by the probe and the model tester.
const DefaultProbePrompt = "Reply with the single word: pong"

// HealthConfig bounds the probe run.
type HealthConfig struct {
	// ProbeTimeout is the safety timeout around each probe. Default: 30s
	ProbeTimeout time.Duration
	// RequestTimeout bounds a whole /health request. Default: 45s
	RequestTimeout time.Duration
	// RSSParallelism caps concurrent feed fetches in the rss probe. Default: 8
	RSSParallelism int
	// CloudTimeout bounds the cloud probe's two sub-checks. Default: 10s
	CloudTimeout time.Duration
	// RateLimit is the token refill rate for health routes, per second. Default: 1
	RateLimit float64
	// RateBurst is the token bucket size. Default: 5
	RateBurst int
}

// AIConfig is the generative model setup shared by the probe and the tester.
type AIConfig struct {
	genai.Config
	// Models in priority order. The first one is probed.
	Models []string
	// ProbePrompt is the prompt sent by probes and the model tester.
	ProbePrompt string
	// ModelDelay is the pause between failed models. Default: 500ms
	ModelDelay time.Duration
}

// CloudConfig points at Google credentials and the translation key.
type CloudConfig struct {
	CredentialsFile   string
	TranslateAPIKey   string
	TranslateEndpoint string
}

// Config is everything cmd/api, cmd/worker and cmd/diagnose need.
type Config struct {
	HTTPAddr         string
	ServiceVersion   string
	TraceSampleRatio float64

	DatabaseURL string
	DB          db.ConnectionConfig

	Feed        feed.Config
	SourcesFile string
	Sources     []entity.SourceCollection

	NewsAPI        newsapi.Config
	NewsAPICountry string

	AI     AIConfig
	Cloud  CloudConfig
	Health HealthConfig

	// Warnings lists every environment value replaced by its default.
	Warnings []string
}

// Load reads the environment, falls back to defaults for unusable values,
// reads the source collections file and validates the result.
// metrics may be nil.
func Load(metrics *pkgconfig.Metrics) (*Config, error) {
	l := pkgconfig.NewLoader(metrics)
	positive := pkgconfig.ValidatePositiveDuration

	cfg := &Config{
		HTTPAddr:         l.String("API_ADDR", ":8080", nil),
		ServiceVersion:   l.String("SERVICE_VERSION", "dev", nil),
		TraceSampleRatio: l.Float("TRACE_SAMPLE_RATIO", 1.0, pkgconfig.FloatRange(0, 1)),
		DatabaseURL:      l.String("DATABASE_URL", "", nil),
		SourcesFile:      l.String("FEED_SOURCES_FILE", DefaultSourcesFile, nil),
		NewsAPICountry:   l.String("NEWS_API_PROBE_COUNTRY", "us", nil),
	}

	dbDefaults := db.DefaultConnectionConfig()
	cfg.DB = db.ConnectionConfig{
		MaxOpenConns:    l.Int("DB_MAX_OPEN_CONNS", dbDefaults.MaxOpenConns, pkgconfig.IntRange(1, 100)),
		MaxIdleConns:    l.Int("DB_MAX_IDLE_CONNS", dbDefaults.MaxIdleConns, pkgconfig.IntRange(0, 100)),
		ConnMaxLifetime: l.Duration("DB_CONN_MAX_LIFETIME", dbDefaults.ConnMaxLifetime, positive),
		ConnMaxIdleTime: l.Duration("DB_CONN_MAX_IDLE_TIME", dbDefaults.ConnMaxIdleTime, positive),
		PingTimeout:     l.Duration("DB_PING_TIMEOUT", dbDefaults.PingTimeout, pkgconfig.DurationRange(100*time.Millisecond, time.Minute)),
	}

	feedDefaults := feed.DefaultConfig()
	cfg.Feed = feed.Config{
		UserAgents:   l.StringList("FEED_USER_AGENTS", feedDefaults.UserAgents),
		Timeout:      l.Duration("FEED_TIMEOUT", feedDefaults.Timeout, pkgconfig.DurationRange(time.Second, 2*time.Minute)),
		MaxRedirects: l.Int("FEED_MAX_REDIRECTS", feedDefaults.MaxRedirects, pkgconfig.IntRange(0, 10)),
		RetryDelay:   l.Duration("FEED_RETRY_DELAY", feedDefaults.RetryDelay, pkgconfig.DurationRange(0, 30*time.Second)),
		MaxBodyBytes: int64(l.Int("FEED_MAX_BODY_BYTES", int(feedDefaults.MaxBodyBytes), pkgconfig.IntRange(1<<10, 100<<20))),
		ExcerptRunes: l.Int("FEED_EXCERPT_RUNES", feedDefaults.ExcerptRunes, pkgconfig.IntRange(1, 10000)),
	}

	cfg.NewsAPI = newsapi.Config{
		BaseURL: l.String("NEWS_API_BASE_URL", newsapi.DefaultBaseURL, nil),
		APIKey:  l.String("NEWS_API_KEY", "", nil),
		Timeout: l.Duration("NEWS_API_TIMEOUT", 5*time.Second, positive),
	}

	cfg.AI = AIConfig{
		Config: genai.Config{
			Provider:  strings.ToLower(l.String("AI_PROVIDER", genai.ProviderAnthropic, validateProvider)),
			APIKey:    l.String("AI_API_KEY", "", nil),
			BaseURL:   l.String("AI_BASE_URL", "", nil),
			MaxTokens: l.Int("AI_MAX_TOKENS", 64, pkgconfig.IntRange(1, 4096)),
			Timeout:   l.Duration("AI_TIMEOUT", 15*time.Second, positive),
		},
		Models:      l.StringList("AI_MODELS", nil),
		ProbePrompt: l.String("AI_PROBE_PROMPT", DefaultProbePrompt, nil),
		ModelDelay:  l.Duration("AI_MODEL_DELAY", 500*time.Millisecond, pkgconfig.ValidateNonNegativeDuration),
	}

	cfg.Cloud = CloudConfig{
		CredentialsFile:   l.String("GOOGLE_APPLICATION_CREDENTIALS", "", nil),
		TranslateAPIKey:   l.String("GOOGLE_TRANSLATE_API_KEY", "", nil),
		TranslateEndpoint: l.String("GOOGLE_TRANSLATE_ENDPOINT", "", nil),
	}

	cfg.Health = HealthConfig{
		ProbeTimeout:   l.Duration("HEALTH_PROBE_TIMEOUT", 30*time.Second, positive),
		RequestTimeout: l.Duration("HEALTH_REQUEST_TIMEOUT", 45*time.Second, positive),
		RSSParallelism: l.Int("RSS_PROBE_PARALLELISM", 8, pkgconfig.IntRange(1, 64)),
		CloudTimeout:   l.Duration("CLOUD_PROBE_TIMEOUT", 10*time.Second, positive),
		RateLimit:      l.Float("HEALTH_RATE_LIMIT", 1, pkgconfig.FloatRange(0.01, 1000)),
		RateBurst:      l.Int("HEALTH_RATE_BURST", 5, pkgconfig.IntRange(1, 1000)),
	}

	l.Done()
	cfg.Warnings = l.Warnings()

	sources, err := LoadSources(cfg.SourcesFile)
	if err != nil {
		return nil, err
	}
	cfg.Sources = sources

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field rules and the component configs. All problems
// are reported together.
func (c *Config) Validate() error {
	var errs []error
	if err := c.Feed.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("feed: %w", err))
	}
	if err := c.DB.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("db: %w", err))
	}
	if c.Health.RequestTimeout < c.Health.ProbeTimeout {
		errs = append(errs, fmt.Errorf("health: HEALTH_REQUEST_TIMEOUT (%v) must not be shorter than HEALTH_PROBE_TIMEOUT (%v)",
			c.Health.RequestTimeout, c.Health.ProbeTimeout))
	}
	for i := range c.Sources {
		if err := c.Sources[i].Validate(); err != nil {
			errs = append(errs, fmt.Errorf("sources: %w", err))
		}
	}
	return errors.Join(errs...)
}

// PrimaryModel is the model the ai probe calls, or "" when none is configured.
func (c *AIConfig) PrimaryModel() string {
	if len(c.Models) == 0 {
		return ""
	}
	return c.Models[0]
}

// Enabled reports whether a generator can be built.
func (c *AIConfig) Enabled() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

func validateProvider(p string) error {
	switch strings.ToLower(p) {
	case genai.ProviderAnthropic, genai.ProviderOpenAI:
		return nil
	}
	return fmt.Errorf("%w: %q", genai.ErrUnknownProvider, p)
}
