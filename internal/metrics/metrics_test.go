package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	m := New("books")

	m.Observe(http.MethodGet, "/books/:id", http.StatusOK, 10*time.Millisecond)
	m.Observe(http.MethodGet, "/books/:id", http.StatusOK, 20*time.Millisecond)
	m.Observe(http.MethodGet, "/books/:id", http.StatusNotFound, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/books/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/books/:id", "404")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RequestDuration))
}

func TestNewUsesPrivateRegistry(t *testing.T) {
	// Two instances in one process must not collide.
	first := New("books")
	second := New("books")

	first.RequestsInFlight.Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(first.RequestsInFlight))
	assert.Equal(t, 0.0, testutil.ToFloat64(second.RequestsInFlight))
}

func TestHandler(t *testing.T) {
	m := New("books")
	m.Observe(http.MethodPost, "/books", http.StatusCreated, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `books_http_requests_total{method="POST",route="/books",status="201"} 1`)
	assert.Contains(t, string(body), "books_http_requests_in_flight 0")
	assert.Contains(t, string(body), "go_goroutines")
}
