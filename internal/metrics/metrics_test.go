package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMetricsExposition(t *testing.T) {
	m := New()
	m.ObserveCompletion("openai", "success", 1200*time.Millisecond)
	m.ObserveCompletion("openai", "timeout", 60*time.Second)
	m.ObserveOperation("process_text", "success", 2*time.Second)
	m.CacheLookup(true)
	m.CacheLookup(false)
	m.CacheLookup(false)

	out := scrape(t, m)
	assert.Contains(t, out, `content_assistant_completions_total{outcome="success",provider="openai"} 1`)
	assert.Contains(t, out, `content_assistant_completions_total{outcome="timeout",provider="openai"} 1`)
	assert.Contains(t, out, `content_assistant_operations_total{operation="process_text",status="success"} 1`)
	assert.Contains(t, out, `content_assistant_result_cache_total{outcome="miss"} 2`)
	assert.Contains(t, out, `content_assistant_completion_duration_seconds_count{provider="openai"} 2`)
	assert.Contains(t, out, "go_goroutines")
}

func TestMetricsInstancesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.CacheLookup(true)
	assert.NotContains(t, scrape(t, b), `content_assistant_result_cache_total{outcome="hit"}`)
}
