package weather

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/namefreezers/weather-now/internal/config"
	"github.com/namefreezers/weather-now/internal/model"
	"github.com/namefreezers/weather-now/internal/weather/openweathermap"
)

func newDummy(failureRate float64) *DummyAPI {
	return NewDummyAPI(&config.Config{MockFailureRate: failureRate}).
		WithRand(rand.New(rand.NewSource(1)))
}

func TestDummyAPI_GetCurrentData(t *testing.T) {
	got, err := newDummy(0).GetCurrentData(context.Background())
	require.NoError(t, err)

	m := got.ToModel()
	assert.Equal(t, "London", got.Name)
	assert.Equal(t, model.Mist, m.Weather)
	assert.Equal(t, "fog", m.Desc)
	assert.InDelta(t, 284.04, m.Temp.Value, 1e-9)
	assert.InDelta(t, 287.04, m.Temp.Max, 1e-9)
	assert.InDelta(t, 280.93, m.Temp.Min, 1e-9)
	assert.InDelta(t, 1.5, m.Wind.Speed, 1e-9)
}

func TestDummyAPI_GetCurrentData_AlwaysFails(t *testing.T) {
	_, err := newDummy(1).GetCurrentData(context.Background())
	assert.ErrorIs(t, err, ErrDummyFailure)
}

func TestDummyAPI_GetCurrentData_Delay(t *testing.T) {
	d := newDummy(0)
	d.CurrentDelay = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := d.GetCurrentData(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDummyAPI_GetForecast_Restamps(t *testing.T) {
	now := time.Date(2021, 3, 1, 10, 42, 13, 0, time.UTC)
	d := newDummy(1).WithClock(func() time.Time { return now })

	got, err := d.GetForecast(context.Background())
	require.NoError(t, err, "forecast never fails at random")
	require.Len(t, got.List, 40)
	assert.Equal(t, "San Francisco", got.City.Name)

	start := time.Date(2021, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, e := range got.List {
		assert.True(t, e.Time().Equal(start.Add(time.Duration(i)*3*time.Hour)), "step %d at %v", i, e.Time())
	}

	m := got.ToModel()
	require.Len(t, m.List, openweathermap.ForecastSize)
	assert.Equal(t, model.Sunny, m.List[0].Weather)
}

type fakeAPI struct {
	mu       sync.Mutex
	current  openweathermap.CurrentWeatherResponse
	forecast openweathermap.WeatherForecastResponse
	err      error
	delay    time.Duration
	calls    int
}

func (f *fakeAPI) GetCurrentData(ctx context.Context) (openweathermap.CurrentWeatherResponse, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if err := sleep(ctx, f.delay); err != nil {
		return openweathermap.CurrentWeatherResponse{}, err
	}
	return f.current, f.err
}

func (f *fakeAPI) GetForecast(ctx context.Context) (openweathermap.WeatherForecastResponse, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if err := sleep(ctx, f.delay); err != nil {
		return openweathermap.WeatherForecastResponse{}, err
	}
	return f.forecast, f.err
}

func TestRaceAPI_FirstSuccessWins(t *testing.T) {
	slow := &fakeAPI{current: openweathermap.CurrentWeatherResponse{Name: "slow"}, delay: time.Second}
	failing := &fakeAPI{err: errors.New("boom")}
	fast := &fakeAPI{current: openweathermap.CurrentWeatherResponse{Name: "fast"}, delay: 5 * time.Millisecond}

	r := NewRaceAPI(zap.NewNop(), slow, failing, fast)
	got, err := r.GetCurrentData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fast", got.Name)
}

func TestRaceAPI_AllFail(t *testing.T) {
	r := NewRaceAPI(zap.NewNop(), &fakeAPI{err: errors.New("a")}, &fakeAPI{err: errors.New("b")})
	_, err := r.GetForecast(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all providers failed")
}

func TestRaceAPI_NoProviders(t *testing.T) {
	_, err := NewRaceAPI(zap.NewNop()).GetCurrentData(context.Background())
	assert.ErrorIs(t, err, ErrNoProviders)
}

// fakeRedis implements the two commands CachingAPI issues; the embedded nil
// Cmdable panics on anything else.
type fakeRedis struct {
	redis.Cmdable
	mu   sync.Mutex
	data map[string]string
	err  error
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	f.data[key] = string(value.([]byte))
	return redis.NewStatusResult("OK", nil)
}

func TestCachingAPI_HitAfterMiss(t *testing.T) {
	inner := &fakeAPI{current: openweathermap.CurrentWeatherResponse{Name: "London"}}
	rdb := &fakeRedis{data: map[string]string{}}
	c := NewCachingAPI(inner, rdb, time.Minute, zap.NewNop())

	for i := 0; i < 3; i++ {
		got, err := c.GetCurrentData(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "London", got.Name)
	}
	assert.Equal(t, 1, inner.calls)
	assert.Contains(t, rdb.data, currentCacheKey)
}

func TestCachingAPI_ErrorsNotCached(t *testing.T) {
	inner := &fakeAPI{err: ErrDummyFailure}
	rdb := &fakeRedis{data: map[string]string{}}
	c := NewCachingAPI(inner, rdb, time.Minute, zap.NewNop())

	_, err := c.GetForecast(context.Background())
	assert.ErrorIs(t, err, ErrDummyFailure)
	assert.Empty(t, rdb.data)
}

func TestCachingAPI_RedisDownFallsThrough(t *testing.T) {
	inner := &fakeAPI{current: openweathermap.CurrentWeatherResponse{Name: "London"}}
	rdb := &fakeRedis{data: map[string]string{}, err: errors.New("connection refused")}
	c := NewCachingAPI(inner, rdb, time.Minute, zap.NewNop())

	got, err := c.GetCurrentData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "London", got.Name)
}

func TestBuildAPI_MockOnly(t *testing.T) {
	api, err := BuildAPI(&config.Config{UseMock: true}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &DummyAPI{}, api)
}

func TestBuildAPI_MockAndOpenWeatherMap(t *testing.T) {
	api, err := BuildAPI(&config.Config{UseMock: true, OpenWeatherMapOrgKey: "k"}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &RaceAPI{}, api)
}

func TestBuildAPI_NoProviders(t *testing.T) {
	_, err := BuildAPI(&config.Config{}, zap.NewNop())
	assert.ErrorIs(t, err, ErrNoProviders)
}
