package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/namefreezers/weather-now/internal/loadstate"
	"github.com/namefreezers/weather-now/internal/model"
	"github.com/namefreezers/weather-now/internal/repository"
	"github.com/namefreezers/weather-now/internal/viewmodel"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeStates struct {
	mu         sync.Mutex
	current    viewmodel.CurrentState
	forecast   viewmodel.ForecastState
	refreshed  chan struct{}
	refreshErr error
}

func (f *fakeStates) CurrentState() viewmodel.CurrentState   { return f.current }
func (f *fakeStates) ForecastState() viewmodel.ForecastState { return f.forecast }

func (f *fakeStates) RefreshAsync() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.refreshErr != nil {
		return f.refreshErr
	}
	if f.refreshed != nil {
		close(f.refreshed)
		f.refreshed = nil
	}
	return nil
}

type fakeHistory struct {
	snaps []repository.Snapshot
	err   error
	limit int
}

func (f *fakeHistory) EnsureSchema(context.Context) error { return nil }

func (f *fakeHistory) Save(context.Context, string, model.CurrentWeather, time.Time) (repository.Snapshot, error) {
	return repository.Snapshot{}, nil
}

func (f *fakeHistory) Recent(_ context.Context, limit int) ([]repository.Snapshot, error) {
	f.limit = limit
	return f.snaps, f.err
}

func sampleForecast() model.WeatherForecast {
	start := time.Date(2021, 3, 1, 3, 0, 0, 0, time.UTC)
	var f model.WeatherForecast
	for i, temp := range []float64{280, 290, 285} {
		f.List = append(f.List, model.Forecast{
			Name:     "Clear",
			Weather:  model.Sunny,
			Temp:     model.Temperature{Value: temp},
			DateTime: start.Add(time.Duration(i) * 3 * time.Hour),
		})
	}
	return f
}

func do(t *testing.T, router http.Handler, method, target string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), "body: %s", w.Body.String())
	return w, body
}

func TestCurrentHandler_States(t *testing.T) {
	loaded := loadstate.NewLoaded(model.CurrentWeather{
		Name:    "Fog",
		Desc:    "fog",
		Weather: model.Mist,
		Temp:    model.Temperature{Value: 293.15, Max: 298.15, Min: 283.15},
		Wind:    model.Wind{Speed: 1.5},
	})

	tests := []struct {
		name  string
		state viewmodel.CurrentState
		check func(t *testing.T, body map[string]any)
	}{
		{"loading", loadstate.NewLoading[model.CurrentWeather](), func(t *testing.T, body map[string]any) {
			assert.Equal(t, "loading", body["state"])
			assert.NotContains(t, body, "data")
		}},
		{"error", loadstate.NewError[model.CurrentWeather](errors.New("dummy exception")), func(t *testing.T, body map[string]any) {
			assert.Equal(t, "error", body["state"])
			assert.Equal(t, "dummy exception", body["error"])
		}},
		{"loaded", loaded, func(t *testing.T, body map[string]any) {
			assert.Equal(t, "loaded", body["state"])
			data := body["data"].(map[string]any)
			assert.Equal(t, "Mist", data["weather"])
			assert.InDelta(t, 20.0, data["temperature"], 1e-9)
			assert.InDelta(t, 25.0, data["max"], 1e-9)
			assert.InDelta(t, 10.0, data["min"], 1e-9)
			assert.Equal(t, "#00ff00", data["color"])
			assert.Contains(t, []any{"day-fog", "night-fog"}, data["icon"])
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := NewRouter(&fakeStates{current: tt.state}, nil, zap.NewNop())
			w, body := do(t, router, http.MethodGet, "/api/weather/current")
			assert.Equal(t, http.StatusOK, w.Code)
			tt.check(t, body)
		})
	}
}

func TestForecastHandler_Loaded(t *testing.T) {
	router := NewRouter(&fakeStates{forecast: loadstate.NewLoaded(sampleForecast())}, nil, zap.NewNop())

	w, body := do(t, router, http.MethodGet, "/api/weather/forecast")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "loaded", body["state"])

	list := body["data"].(map[string]any)["list"].([]any)
	require.Len(t, list, 3)
	first := list[0].(map[string]any)
	assert.Equal(t, "night-clear", first["icon"], "03:00 is night")
	second := list[1].(map[string]any)
	assert.Equal(t, "day-sunny", second["icon"], "06:00 is day")
	assert.InDelta(t, 290-model.Kelvin, second["temperature"], 1e-9)
}

func TestRefreshHandler(t *testing.T) {
	refreshed := make(chan struct{})
	router := NewRouter(&fakeStates{refreshed: refreshed}, nil, zap.NewNop())

	w, _ := do(t, router, http.MethodPost, "/api/weather/refresh")
	assert.Equal(t, http.StatusAccepted, w.Code)

	select {
	case <-refreshed:
	case <-time.After(time.Second):
		t.Fatal("refresh was not triggered")
	}
}

func TestRefreshHandler_Closed(t *testing.T) {
	router := NewRouter(&fakeStates{refreshErr: viewmodel.ErrClosed}, nil, zap.NewNop())

	w, body := do(t, router, http.MethodPost, "/api/weather/refresh")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, viewmodel.ErrClosed.Error(), body["error"])
}

func TestGaugeHandler(t *testing.T) {
	router := NewRouter(&fakeStates{forecast: loadstate.NewLoaded(sampleForecast())}, nil, zap.NewNop())

	w, body := do(t, router, http.MethodGet, "/api/weather/gauge?width=200&height=100")
	require.Equal(t, http.StatusOK, w.Code)
	assert.InDelta(t, 1.0, body["progress"], 1e-9)

	points := body["points"].([]any)
	require.Len(t, points, 5)
	top := points[2].(map[string]any)
	assert.InDelta(t, 100.0, top["x"], 1e-9)
	assert.InDelta(t, 25.0, top["y"], 1e-9)
}

func TestGaugeHandler_BadQuery(t *testing.T) {
	router := NewRouter(&fakeStates{forecast: loadstate.NewLoaded(sampleForecast())}, nil, zap.NewNop())

	for _, q := range []string{"", "?width=200", "?width=-1&height=10", "?width=1&height=1&progress=2", "?width=abc&height=1"} {
		w, body := do(t, router, http.MethodGet, "/api/weather/gauge"+q)
		assert.Equal(t, http.StatusBadRequest, w.Code, "query %q", q)
		assert.Contains(t, body, "error")
	}
}

func TestGaugeHandler_NotLoaded(t *testing.T) {
	router := NewRouter(&fakeStates{forecast: loadstate.NewLoading[model.WeatherForecast]()}, nil, zap.NewNop())

	w, body := do(t, router, http.MethodGet, "/api/weather/gauge?width=200&height=100")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "loading", body["state"])
}

func TestHistoryHandler(t *testing.T) {
	hist := &fakeHistory{snaps: []repository.Snapshot{{City: "London", Category: "Mist"}}}
	router := NewRouter(&fakeStates{}, hist, zap.NewNop())

	w, body := do(t, router, http.MethodGet, "/api/weather/history?limit=5")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, hist.limit)
	snaps := body["snapshots"].([]any)
	require.Len(t, snaps, 1)
	assert.Equal(t, "London", snaps[0].(map[string]any)["city"])

	do(t, router, http.MethodGet, "/api/weather/history")
	assert.Equal(t, 20, hist.limit, "default limit")
}

func TestHistoryHandler_Errors(t *testing.T) {
	w, _ := do(t, NewRouter(&fakeStates{}, nil, zap.NewNop()), http.MethodGet, "/api/weather/history")
	assert.Equal(t, http.StatusNotFound, w.Code)

	failing := NewRouter(&fakeStates{}, &fakeHistory{err: errors.New("db down")}, zap.NewNop())
	w, _ = do(t, failing, http.MethodGet, "/api/weather/history")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w, _ = do(t, failing, http.MethodGet, "/api/weather/history?limit=0")
	assert.Equal(t, http.StatusInternalServerError, w.Code, "limit=0 falls back to the default")

	w, _ = do(t, failing, http.MethodGet, "/api/weather/history?limit=9999")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
