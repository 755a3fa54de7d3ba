package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/highway-to-peak/server/src/server/data"
	"github.com/highway-to-peak/server/src/server/expedition"
	"github.com/highway-to-peak/server/src/server/metrics"
	"github.com/highway-to-peak/server/src/server/middleware"
	"github.com/highway-to-peak/server/src/server/service"
	"github.com/highway-to-peak/server/src/server/storage"
	"github.com/highway-to-peak/server/src/server/store"
)

func newTestRouter(t *testing.T, mutate func(*RouterConfig)) http.Handler {
	t.Helper()
	st := store.NewMemoryStore()
	cfg := RouterConfig{
		Service: service.New(st, metrics.New()),
		Store:   st,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	return NewRouter(cfg)
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		buf, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeResult(t *testing.T, rr *httptest.ResponseRecorder) expedition.Result {
	t.Helper()
	var res expedition.Result
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
	return res
}

func TestRegisterPeak_Statuses(t *testing.T) {
	h := newTestRouter(t, nil)

	rr := do(t, h, http.MethodPost, "/peaks", data.PeakRequest{Name: "K2", Elevation: 8611, Difficulty: "Extreme"})
	require.Equal(t, http.StatusCreated, rr.Code)
	res := decodeResult(t, rr)
	assert.Equal(t, expedition.OutcomePeakRegistered, res.Outcome)
	require.NotNil(t, res.Peak)
	assert.Equal(t, 8611, res.Peak.Elevation)

	tests := []struct {
		name   string
		body   any
		status int
	}{
		{"duplicate", data.PeakRequest{Name: "K2", Elevation: 8611, Difficulty: "Extreme"}, http.StatusConflict},
		{"unknown difficulty", data.PeakRequest{Name: "Eiger", Elevation: 3967, Difficulty: "Brutal"}, http.StatusUnprocessableEntity},
		{"blank name", data.PeakRequest{Name: " ", Elevation: 100, Difficulty: "Hard"}, http.StatusBadRequest},
		{"zero elevation", data.PeakRequest{Name: "Flat", Elevation: 0, Difficulty: "Hard"}, http.StatusBadRequest},
		{"bad json", "{", http.StatusBadRequest},
		{"unknown field", `{"name":"X","elevation":1,"difficulty":"Hard","height":2}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, http.MethodPost, "/peaks", tt.body)
			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
		})
	}

	rr = do(t, h, http.MethodGet, "/peaks", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var peaks []expedition.PeakView
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&peaks))
	require.Len(t, peaks, 1)
	assert.Equal(t, "K2", peaks[0].Name)
}

func TestExpeditionFlow(t *testing.T) {
	h := newTestRouter(t, nil)

	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/peaks",
		data.PeakRequest{Name: "K2", Elevation: 8611, Difficulty: "Extreme"}).Code)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/climbers",
		data.ClimberRequest{Name: "Nirmal", UsesOxygen: true}).Code)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/climbers",
		data.ClimberRequest{Name: "Reinhold"}).Code)
	assert.Equal(t, http.StatusConflict, do(t, h, http.MethodPost, "/climbers",
		data.ClimberRequest{Name: "Reinhold"}).Code)

	rr := do(t, h, http.MethodPost, "/attempts", data.AttemptRequest{Climber: "Reinhold", Peak: "K2"})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = do(t, h, http.MethodPost, "/attempts", data.AttemptRequest{Climber: "Ghost", Peak: "K2"})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, h, http.MethodPost, "/attempts", data.AttemptRequest{Climber: "Nirmal", Peak: "Everest"})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, h, http.MethodPost, "/attempts", data.AttemptRequest{Climber: "Nirmal", Peak: "K2"})
	require.Equal(t, http.StatusOK, rr.Code)
	res := decodeResult(t, rr)
	assert.Equal(t, expedition.OutcomeConquered, res.Outcome)
	assert.Equal(t, 4, res.Climber.Stamina)

	rr = do(t, h, http.MethodPost, "/attempts", data.AttemptRequest{Climber: "Nirmal", Peak: "K2"})
	require.Equal(t, http.StatusOK, rr.Code)
	res = decodeResult(t, rr)
	assert.Equal(t, expedition.OutcomeStranded, res.Outcome)
	assert.Equal(t, 0, res.Climber.Stamina)

	rr = do(t, h, http.MethodPost, "/attempts", data.AttemptRequest{Climber: "Nirmal", Peak: "K2"})
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = do(t, h, http.MethodPost, "/recoveries", data.RecoveryRequest{Climber: "Nirmal", Days: 3})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, h, http.MethodPost, "/recoveries", data.RecoveryRequest{Climber: "Reinhold", Days: 0})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, http.MethodPost, "/recoveries", data.RecoveryRequest{Climber: "Reinhold", Days: 2})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, expedition.OutcomeNoRecoveryNeeded, decodeResult(t, rr).Outcome)

	rr = do(t, h, http.MethodGet, "/climbers/Nirmal", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	res = decodeResult(t, rr)
	assert.Equal(t, expedition.StatusStranded, res.Climber.Status)
	assert.Equal(t, 1, res.Climber.ConqueredCount)

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/climbers/Ghost", nil).Code)

	rr = do(t, h, http.MethodGet, "/camp?format=text", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Equal(t, "BaseCamp residents:\nName: Reinhold, Stamina: 10, Count of Conquered Peaks: 0\n", rr.Body.String())

	rr = do(t, h, http.MethodGet, "/statistics", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	res = decodeResult(t, rr)
	require.Len(t, res.Standings, 2)
	assert.Equal(t, "Nirmal", res.Standings[0].Name)
	assert.Equal(t, "Reinhold", res.Standings[1].Name)

	rr = do(t, h, http.MethodGet, "/attempts?climber=Nirmal", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var attempts []data.AttemptRecord
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&attempts))
	require.Len(t, attempts, 4)
	assert.Equal(t, "PeakNotFound", attempts[0].Outcome)
	assert.Equal(t, "Conquered", attempts[1].Outcome)
	assert.Equal(t, "Stranded", attempts[2].Outcome)
	assert.Equal(t, "NotAtCamp", attempts[3].Outcome)
}

func TestCamp_Empty(t *testing.T) {
	h := newTestRouter(t, nil)

	rr := do(t, h, http.MethodGet, "/camp", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, expedition.OutcomeCampEmpty, decodeResult(t, rr).Outcome)

	rr = do(t, h, http.MethodGet, "/attempts", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, "[]", rr.Body.String())
}

func TestExportStatistics_Local(t *testing.T) {
	local, err := storage.NewLocal(t.TempDir(), "/exports")
	require.NoError(t, err)
	h := newTestRouter(t, func(cfg *RouterConfig) {
		cfg.Storage = local
		cfg.Exports = local.Handler()
	})

	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/climbers",
		data.ClimberRequest{Name: "Reinhold"}).Code)

	rr := do(t, h, http.MethodPost, "/statistics/export", nil)
	require.Equal(t, http.StatusCreated, rr.Code)
	var exp data.ExportResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&exp))
	assert.True(t, strings.HasPrefix(exp.Key, "reports/statistics-"))
	assert.Equal(t, "/exports/"+exp.Key, exp.URL)

	rr = do(t, h, http.MethodGet, exp.URL, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "***Highway-To-Peak***\nNaturalClimber - Name: Reinhold, Stamina: 10\nPeaks conquered: no peaks conquered\n", rr.Body.String())
}

func TestExportStatistics_NotConfigured(t *testing.T) {
	h := newTestRouter(t, nil)
	assert.Equal(t, http.StatusServiceUnavailable, do(t, h, http.MethodPost, "/statistics/export", nil).Code)
}

type failingStorage struct{}

func (failingStorage) Upload(context.Context, string, io.Reader, string) error {
	return errors.New("bucket gone")
}

func (failingStorage) PresignedURL(context.Context, string, time.Duration) (string, error) {
	return "", errors.New("bucket gone")
}

func (failingStorage) Ping(context.Context) error { return errors.New("bucket gone") }

func TestExportStatistics_UploadFails(t *testing.T) {
	h := newTestRouter(t, func(cfg *RouterConfig) { cfg.Storage = failingStorage{} })
	assert.Equal(t, http.StatusBadGateway, do(t, h, http.MethodPost, "/statistics/export", nil).Code)
}

func TestHealth(t *testing.T) {
	h := newTestRouter(t, nil)
	rr := do(t, h, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"ok"`)

	h = newTestRouter(t, func(cfg *RouterConfig) { cfg.Storage = failingStorage{} })
	rr = do(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), "degraded")
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestRouter(t, nil)
	do(t, h, http.MethodPost, "/climbers", data.ClimberRequest{Name: "Reinhold"})

	rr := do(t, h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `highway_commands_total{command="register_climber",outcome="ClimberArrived"} 1`)
}

func TestAuthGuardsMutations(t *testing.T) {
	h := newTestRouter(t, func(cfg *RouterConfig) {
		cfg.Auth = func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("Authorization") == "" {
					writeError(w, http.StatusUnauthorized, "missing or invalid authorization header")
					return
				}
				next.ServeHTTP(w, r)
			})
		}
	})

	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodPost, "/peaks",
		data.PeakRequest{Name: "K2", Elevation: 8611, Difficulty: "Extreme"}).Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodPost, "/recoveries",
		data.RecoveryRequest{Climber: "x", Days: 1}).Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/peaks", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/camp", nil).Code)
}

func TestRateLimit(t *testing.T) {
	limiter := middleware.NewClientLimiter(0.001, 2, time.Minute)
	h := newTestRouter(t, func(cfg *RouterConfig) { cfg.RateLimit = limiter.Middleware })

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/peaks", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/camp", nil).Code)
	rr := do(t, h, http.MethodGet, "/statistics", nil)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "1", rr.Header().Get("Retry-After"))

	// Health stays reachable for probes.
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health", nil).Code)
}

func TestRecover_HugeDaysKeepsStateLoadable(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	h := NewRouter(RouterConfig{Service: service.New(st, nil), Store: st})

	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/peaks",
		data.PeakRequest{Name: "K2", Elevation: 8611, Difficulty: "Hard"}).Code)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/climbers",
		data.ClimberRequest{Name: "Anna"}).Code)
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/attempts",
		data.AttemptRequest{Climber: "Anna", Peak: "K2"}).Code)

	rr := do(t, h, http.MethodPost, "/recoveries", `{"climber":"Anna","days":4611686018427387904}`)
	require.Equal(t, http.StatusOK, rr.Code)
	res := decodeResult(t, rr)
	assert.Equal(t, expedition.OutcomeRecovered, res.Outcome)
	assert.Equal(t, expedition.MaxStamina, res.Climber.Stamina)
	assert.Equal(t, expedition.StatusAtCamp, res.Climber.Status)

	reloaded := service.New(st, nil)
	ok, err := reloaded.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	camp := reloaded.CampReport()
	require.Len(t, camp.Residents, 1)
	assert.Equal(t, expedition.MaxStamina, camp.Residents[0].Stamina)
}

func TestOperatorName(t *testing.T) {
	tests := []struct {
		name string
		op   *middleware.Operator
		want string
	}{
		{"no operator", nil, "anonymous"},
		{"nickname preferred", &middleware.Operator{Subject: "user-1", Nickname: "sherpa"}, "sherpa"},
		{"subject fallback", &middleware.Operator{Subject: "user-1"}, "user-1"},
		{"empty operator", &middleware.Operator{}, "anonymous"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/attempts", nil)
			if tt.op != nil {
				r = r.WithContext(middleware.WithOperator(r.Context(), *tt.op))
			}
			assert.Equal(t, tt.want, operatorName(r))
		})
	}
}
