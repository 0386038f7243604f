package http

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"newsdesk/internal/handler/http/requestid"
	"newsdesk/internal/observability/logging"
	"newsdesk/internal/observability/metrics"
)

func jsonLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestLogging_RequestScopedLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := jsonLogger(&buf)

	h := requestid.Middleware(Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logging.FromContext(r.Context()).Info("inside handler")
		w.WriteHeader(http.StatusTeapot)
	})))

	req := httptest.NewRequest(http.MethodGet, "/health?verbose=1", nil)
	req.Header.Set(requestid.RequestIDHeader, "req-123")
	h.ServeHTTP(httptest.NewRecorder(), req)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var inner, done map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &inner))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &done))

	assert.Equal(t, "req-123", inner["request_id"])
	assert.Equal(t, "request completed", done["msg"])
	assert.Equal(t, "req-123", done["request_id"])
	assert.EqualValues(t, http.StatusTeapot, done["status"])
	assert.Equal(t, "verbose=1", done["query"])
}

func TestRecover(t *testing.T) {
	var buf bytes.Buffer
	h := Recover(jsonLogger(&buf))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("probe exploded")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
	assert.Contains(t, buf.String(), "panic recovered")
	assert.Contains(t, buf.String(), "probe exploded")
}

func TestRecover_ReRaisesAbortHandler(t *testing.T) {
	h := Recover(slog.Default())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestRateLimit(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	tests := []struct {
		name     string
		lim      *rate.Limiter
		requests int
		want     []int
	}{
		{"nil limiter admits everything", nil, 3, []int{200, 200, 200}},
		{"burst then reject", rate.NewLimiter(rate.Every(time.Minute), 2), 4, []int{200, 200, 429, 429}},
		{"zero burst rejects", rate.NewLimiter(rate.Every(time.Minute), 0), 1, []int{429}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := RateLimit(tt.lim)(ok)
			for i := 0; i < tt.requests; i++ {
				rec := httptest.NewRecorder()
				h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
				if rec.Code != tt.want[i] {
					t.Errorf("request %d: got %d, want %d", i+1, rec.Code, tt.want[i])
				}
				if rec.Code == http.StatusTooManyRequests && rec.Header().Get("Retry-After") != "60" {
					t.Errorf("Retry-After = %q, want 60", rec.Header().Get("Retry-After"))
				}
			}
		})
	}
}

func TestMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(MetricsMiddleware)
	r.Get("/health/{probe}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/health/{probe}", "503")
	before := testutil.ToFloat64(counter)

	for _, p := range []string{"database", "rss", "ai"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health/"+p, nil))
	}

	assert.Equal(t, before+3, testutil.ToFloat64(counter))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.HTTPRequestsInFlight))
}

func TestMetricsMiddleware_Unmatched(t *testing.T) {
	h := MetricsMiddleware(http.NotFoundHandler())

	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "unmatched", "404")
	before := testutil.ToFloat64(counter)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope/12345", nil))
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}
