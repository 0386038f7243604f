package app

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsdesk/internal/health"
	"newsdesk/internal/health/probes"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"DATABASE_URL", "AI_API_KEY", "AI_MODELS", "NEWS_API_KEY", "GOOGLE_APPLICATION_CREDENTIALS", "GOOGLE_TRANSLATE_API_KEY"} {
		t.Setenv(key, "")
	}
	t.Setenv("FEED_SOURCES_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
}

func TestNew_MinimalEnvironment(t *testing.T) {
	clearEnv(t)

	a, err := New(context.Background(), quietLogger(), Options{Component: "test"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(context.Background()) })

	assert.Nil(t, a.Store)
	assert.Nil(t, a.Generator)
	assert.Nil(t, a.Tester)
	assert.NotNil(t, a.Fetcher)
	assert.NotNil(t, a.Previewer)
	assert.NotNil(t, a.Headlines)
	assert.ElementsMatch(t,
		[]string{probes.NameDatabase, probes.NameNewsAPI, probes.NameRSS, probes.NameCloud, probes.NameAI},
		a.Probes.Names())
}

func TestNew_UnconfiguredProbesReportUnhealthy(t *testing.T) {
	clearEnv(t)

	a, err := New(context.Background(), quietLogger(), Options{Component: "test"})
	require.NoError(t, err)

	for _, name := range []string{probes.NameDatabase, probes.NameRSS, probes.NameAI} {
		res, err := a.Probes.RunOne(context.Background(), name)
		require.NoError(t, err)
		assert.Equal(t, health.StatusUnhealthy, res.Status, name)
	}
}

func TestNew_AIConfiguredBuildsTester(t *testing.T) {
	clearEnv(t)
	t.Setenv("AI_PROVIDER", "anthropic")
	t.Setenv("AI_API_KEY", "sk-ant-test")
	t.Setenv("AI_MODELS", "model-a,model-b")

	a, err := New(context.Background(), quietLogger(), Options{Component: "test"})
	require.NoError(t, err)

	assert.NotNil(t, a.Generator)
	assert.NotNil(t, a.Tester)
}

func TestNew_RecordsConfigMetrics(t *testing.T) {
	clearEnv(t)
	t.Setenv("FEED_TIMEOUT", "forever")
	reg := prometheus.NewRegistry()

	a, err := New(context.Background(), quietLogger(), Options{Component: "test", Registerer: reg})
	require.NoError(t, err)
	assert.NotEmpty(t, a.Config.Warnings)

	n, err := testutil.GatherAndCount(reg, "newsdesk_config_fallbacks_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNew_InvalidSourcesFileFails(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte("collections:\n  - name: broken\n    feeds: [\"not a url\"]\n"), 0o600))
	t.Setenv("FEED_SOURCES_FILE", path)

	_, err := New(context.Background(), quietLogger(), Options{Component: "test"})
	assert.Error(t, err)
}
