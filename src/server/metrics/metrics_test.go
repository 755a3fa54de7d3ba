package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Observe(t *testing.T) {
	m := New()
	m.ObserveCommand("attempt", "Conquered")
	m.ObserveCommand("attempt", "Conquered")
	m.ObserveAttempt("Extreme", "Stranded")
	m.SetCamp(3, 1)
	m.ObserveSaveError()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Commands.WithLabelValues("attempt", "Conquered")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Attempts.WithLabelValues("Extreme", "Stranded")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Residents))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Stranded))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SaveErrors))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveCommand("attempt", "Conquered")
	m.ObserveAttempt("Hard", "Conquered")
	m.SetCamp(1, 0)
	m.ObserveSaveError()
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveCommand("recover", "Recovered")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `highway_commands_total{command="recover",outcome="Recovered"} 1`)
}
