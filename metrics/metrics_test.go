package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/traffic-engine/attendance"
	"github.com/warp/traffic-engine/metrics"
)

var _ attendance.Observer = (*metrics.Metrics)(nil)

func TestObserverCounters(t *testing.T) {
	m := metrics.New()

	m.DatasetPublished(3, 40)
	m.DatasetPublished(2, 10)
	m.LoadDiscarded()
	m.DecodeFailed()
	m.ViewComputed(2 * time.Millisecond)

	body := scrape(t, m)
	assert.Contains(t, body, `traffic_uploads_total{result="published"} 2`)
	assert.Contains(t, body, `traffic_uploads_total{result="stale"} 1`)
	assert.Contains(t, body, `traffic_uploads_total{result="rejected"} 1`)
	assert.Contains(t, body, "traffic_rows_ingested_total 50")
	assert.Contains(t, body, "traffic_people 2")
	assert.Contains(t, body, "traffic_view_duration_seconds_count 1")
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	m := metrics.New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/people/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"1", "2", "3"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/people/"+id, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	}

	assert.Contains(t, scrape(t, m),
		`traffic_http_requests_total{route="/api/people/{id}",status="404"} 3`)
}

func TestNilMetricsIsANoop(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.DatasetPublished(1, 1)
		m.LoadDiscarded()
		m.DecodeFailed()
		m.ViewComputed(time.Second)
	})
}

func TestSeparateRegistries(t *testing.T) {
	a, b := metrics.New(), metrics.New()
	a.LoadDiscarded()
	n, err := testutil.GatherAndCount(b.Registry(), "traffic_uploads_total")
	require.NoError(t, err)
	assert.Equal(t, 3, n, "pre-seeded result series only")
}

func scrape(t *testing.T, m *metrics.Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}
