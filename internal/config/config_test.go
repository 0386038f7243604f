package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsdesk/internal/domain/entity"
	"newsdesk/internal/infra/genai"
)

const testSources = `
collections:
  - name: world-en
    language: en
    category: world
    feeds:
      - https://example.com/world.xml
      - https://example.com/shared.xml
  - name: tech-en
    language: en
    category: technology
    feeds:
      - https://example.com/shared.xml
      - https://example.org/tech.atom
`

func writeSources(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("FEED_SOURCES_FILE", writeSources(t, testSources))

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 10*time.Second, cfg.Feed.Timeout)
	assert.Equal(t, 5, cfg.Feed.MaxRedirects)
	assert.Len(t, cfg.Feed.UserAgents, 3)
	assert.Equal(t, 3*time.Second, cfg.DB.PingTimeout)
	assert.Equal(t, "us", cfg.NewsAPICountry)
	assert.Equal(t, genai.ProviderAnthropic, cfg.AI.Provider)
	assert.Equal(t, 15*time.Second, cfg.AI.Timeout)
	assert.Equal(t, DefaultProbePrompt, cfg.AI.ProbePrompt)
	assert.Equal(t, 30*time.Second, cfg.Health.ProbeTimeout)
	assert.Equal(t, 45*time.Second, cfg.Health.RequestTimeout)
	assert.Equal(t, 8, cfg.Health.RSSParallelism)
	assert.Empty(t, cfg.Warnings)

	require.Len(t, cfg.Sources, 2)
	assert.Len(t, entity.FlattenFeeds(cfg.Sources), 3)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("FEED_SOURCES_FILE", writeSources(t, testSources))
	t.Setenv("FEED_USER_AGENTS", "agent-one, agent-two")
	t.Setenv("FEED_TIMEOUT", "3s")
	t.Setenv("AI_PROVIDER", "OpenAI")
	t.Setenv("AI_API_KEY", "sk-test")
	t.Setenv("AI_MODELS", "gpt-4o-mini, gpt-4.1-mini")
	t.Setenv("RSS_PROBE_PARALLELISM", "2")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"agent-one", "agent-two"}, cfg.Feed.UserAgents)
	assert.Equal(t, 3*time.Second, cfg.Feed.Timeout)
	assert.Equal(t, genai.ProviderOpenAI, cfg.AI.Provider)
	assert.True(t, cfg.AI.Enabled())
	assert.Equal(t, "gpt-4o-mini", cfg.AI.PrimaryModel())
	assert.Equal(t, 2, cfg.Health.RSSParallelism)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("FEED_SOURCES_FILE", writeSources(t, testSources))
	t.Setenv("FEED_TIMEOUT", "forever")
	t.Setenv("FEED_MAX_REDIRECTS", "50")
	t.Setenv("AI_PROVIDER", "mystery")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.Feed.Timeout)
	assert.Equal(t, 5, cfg.Feed.MaxRedirects)
	assert.Equal(t, genai.ProviderAnthropic, cfg.AI.Provider)
	assert.Len(t, cfg.Warnings, 3)
}

func TestLoad_RejectsInconsistentTimeouts(t *testing.T) {
	t.Setenv("FEED_SOURCES_FILE", writeSources(t, testSources))
	t.Setenv("HEALTH_PROBE_TIMEOUT", "1m")
	t.Setenv("HEALTH_REQUEST_TIMEOUT", "10s")

	_, err := Load(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HEALTH_REQUEST_TIMEOUT")
}

func TestLoad_RejectsBadSourceURL(t *testing.T) {
	t.Setenv("FEED_SOURCES_FILE", writeSources(t, `
collections:
  - name: broken
    feeds: ["ftp://example.com/feed"]
`))

	_, err := Load(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrInvalidInput)
}

func TestLoadSources(t *testing.T) {
	t.Run("missing file yields no collections", func(t *testing.T) {
		got, err := LoadSources(filepath.Join(t.TempDir(), "absent.yaml"))
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("empty document", func(t *testing.T) {
		got, err := LoadSources(writeSources(t, ""))
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := ParseSources([]byte("collections:\n  - name: x\n    feed: [https://example.com]\n"))
		assert.ErrorIs(t, err, ErrInvalidSources)
	})

	t.Run("decodes collections in order", func(t *testing.T) {
		got, err := ParseSources([]byte(testSources))
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "world-en", got[0].Name)
		assert.Equal(t, "technology", got[1].Category)
		assert.Equal(t, []string{"https://example.com/shared.xml", "https://example.org/tech.atom"}, got[1].Feeds)
	})
}

func TestRepositorySourcesFileIsValid(t *testing.T) {
	got, err := LoadSources(filepath.Join("..", "..", DefaultSourcesFile))
	require.NoError(t, err)
	require.NotEmpty(t, got)
	for i := range got {
		assert.NoError(t, got[i].Validate())
	}
}
