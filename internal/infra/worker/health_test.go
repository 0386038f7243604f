package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthServer_Liveness(t *testing.T) {
	srv := NewHealthServer(":0", discardLogger(), prometheus.NewRegistry())

	rec := get(t, srv.Handler(), "/health")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "ok" {
		t.Errorf("status field = %q", body.Status)
	}
}

func TestHealthServer_Readiness(t *testing.T) {
	srv := NewHealthServer(":0", discardLogger(), prometheus.NewRegistry())
	h := srv.Handler()

	if rec := get(t, h, "/health/ready"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("before SetReady: status = %d, want 503", rec.Code)
	}

	srv.SetReady(true)
	if rec := get(t, h, "/health/ready"); rec.Code != http.StatusOK {
		t.Errorf("after SetReady(true): status = %d, want 200", rec.Code)
	}

	srv.SetReady(false)
	rec := get(t, h, "/health/ready")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("after SetReady(false): status = %d, want 503", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "not ready") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestHealthServer_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewSweepMetrics(reg)
	m.SweepsTotal.WithLabelValues("healthy").Inc()

	srv := NewHealthServer(":0", discardLogger(), reg)
	rec := get(t, srv.Handler(), "/metrics")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `newsdesk_worker_sweeps_total{status="healthy"} 1`) {
		t.Errorf("sweep counter missing from exposition:\n%s", rec.Body.String())
	}
}

func TestHealthServer_StartAndShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	if err := ln.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	srv := NewHealthServer(addr, discardLogger(), prometheus.NewRegistry())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()

	var resp *http.Response
	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, err = http.Get("http://" + addr + "/health")
		if err == nil || time.Now().After(deadline) {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("server never came up: %v", err)
	}
	if err := resp.Body.Close(); err != nil {
		t.Errorf("close body: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, http.ErrServerClosed) {
			t.Errorf("Start returned %v, want ErrServerClosed", err)
		}
	case <-time.After(6 * time.Second):
		t.Fatal("server did not shut down")
	}
}
