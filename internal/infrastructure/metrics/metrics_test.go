package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.ObserveTransition("request", "open", "active")
	m.ObserveTransition("request", "open", "active")
	m.ObserveRelay(3, 1, 1)
	m.ObserveHTTP("POST", "/api/v1/requests", "201", 20*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.transitions.WithLabelValues("request", "open", "active")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.relayed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.relayFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.deadLettered))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("POST", "/api/v1/requests", "201")))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveTransition("order", "created", "declined")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `fachwerk_state_transitions_total{entity="order",from="created",to="declined"} 1`)
}
