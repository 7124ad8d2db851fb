package weather

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/namefreezers/weather-now/internal/config"
	"github.com/namefreezers/weather-now/internal/weather/openweathermap"
)

// ErrDummyFailure is the injected random failure of DummyAPI.
var ErrDummyFailure = errors.New("dummy exception")

var (
	//go:embed data/current.json
	dummyCurrentData []byte
	//go:embed data/forecast.json
	dummyForecastData []byte
)

// DummyAPI serves canned payloads after an artificial delay. The current
// conditions call fails at random with probability FailureRate.
type DummyAPI struct {
	CurrentDelay  time.Duration
	ForecastDelay time.Duration
	FailureRate   float64

	mu   sync.Mutex
	rand *rand.Rand
	now  func() time.Time
}

func NewDummyAPI(cfg *config.Config) *DummyAPI {
	return &DummyAPI{
		CurrentDelay:  cfg.MockCurrentDelay,
		ForecastDelay: cfg.MockForecastDelay,
		FailureRate:   cfg.MockFailureRate,
		rand:          rand.New(rand.NewSource(time.Now().UnixNano())),
		now:           time.Now,
	}
}

// WithRand replaces the random source.
func (d *DummyAPI) WithRand(r *rand.Rand) *DummyAPI {
	d.mu.Lock()
	d.rand = r
	d.mu.Unlock()
	return d
}

// WithClock replaces the clock used to stamp forecast steps.
func (d *DummyAPI) WithClock(now func() time.Time) *DummyAPI {
	d.now = now
	return d
}

func (d *DummyAPI) GetCurrentData(ctx context.Context) (openweathermap.CurrentWeatherResponse, error) {
	if err := sleep(ctx, d.CurrentDelay); err != nil {
		return openweathermap.CurrentWeatherResponse{}, err
	}
	if d.fail() {
		return openweathermap.CurrentWeatherResponse{}, ErrDummyFailure
	}

	var body openweathermap.CurrentWeatherResponse
	if err := json.Unmarshal(dummyCurrentData, &body); err != nil {
		return openweathermap.CurrentWeatherResponse{}, fmt.Errorf("dummy: JSON decode error: %w", err)
	}
	return body, nil
}

// GetForecast restamps the canned steps every three hours from the current hour.
func (d *DummyAPI) GetForecast(ctx context.Context) (openweathermap.WeatherForecastResponse, error) {
	if err := sleep(ctx, d.ForecastDelay); err != nil {
		return openweathermap.WeatherForecastResponse{}, err
	}

	var body openweathermap.WeatherForecastResponse
	if err := json.Unmarshal(dummyForecastData, &body); err != nil {
		return openweathermap.WeatherForecastResponse{}, fmt.Errorf("dummy: JSON decode error: %w", err)
	}

	start := d.now().Truncate(time.Hour)
	for i := range body.List {
		body.List[i].SetTime(start.Add(time.Duration(i) * 3 * time.Hour))
	}
	return body, nil
}

func (d *DummyAPI) fail() bool {
	if d.FailureRate <= 0 {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rand.Float64() < d.FailureRate
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
