package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveFetch(t *testing.T) {
	m := New()

	m.ObserveFetch("remote", OutcomeOK, 20*time.Millisecond)
	m.ObserveFetch("remote", OutcomeOK, 30*time.Millisecond)
	m.ObserveFetch("remote", OutcomeError, time.Second)

	if got := testutil.ToFloat64(m.fetchTotal.WithLabelValues("remote", OutcomeOK)); got != 2 {
		t.Errorf("ok fetches = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.fetchTotal.WithLabelValues("remote", OutcomeError)); got != 1 {
		t.Errorf("error fetches = %v, want 1", got)
	}
}

func TestRecordCacheLookup(t *testing.T) {
	m := New()

	m.RecordCacheLookup("memory", true)
	m.RecordCacheLookup("memory", false)
	m.RecordCacheLookup("memory", false)

	if got := testutil.ToFloat64(m.cacheLookups.WithLabelValues("memory", "hit")); got != 1 {
		t.Errorf("hits = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.cacheLookups.WithLabelValues("memory", "miss")); got != 2 {
		t.Errorf("misses = %v, want 2", got)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics

	m.ObserveFetch("remote", OutcomeOK, time.Millisecond)
	m.RecordCacheLookup("memory", true)
	m.ObserveHTTPRequest(http.MethodGet, "/health", http.StatusOK, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("nil handler status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.ObserveHTTPRequest(http.MethodGet, "/v1/dates/:date", http.StatusOK, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "http_requests_total") {
		t.Errorf("metrics output missing http_requests_total")
	}
}
