package weather

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/namefreezers/weather-now/internal/weather/openweathermap"
)

// ErrNoProviders is returned when no weather provider is configured.
var ErrNoProviders = errors.New("no weather providers configured")

// API is a source of raw OpenWeatherMap-shaped payloads.
type API interface {
	GetCurrentData(ctx context.Context) (openweathermap.CurrentWeatherResponse, error)
	GetForecast(ctx context.Context) (openweathermap.WeatherForecastResponse, error)
}

// RaceAPI will try all its providers in parallel and return the first success.
type RaceAPI struct {
	providers []API
	logger    *zap.Logger
}

// NewRaceAPI constructs a RaceAPI.
func NewRaceAPI(logger *zap.Logger, providers ...API) *RaceAPI {
	return &RaceAPI{
		providers: providers,
		logger:    logger,
	}
}

func (r *RaceAPI) GetCurrentData(ctx context.Context) (openweathermap.CurrentWeatherResponse, error) {
	return race(ctx, "current", r.providers, r.logger, API.GetCurrentData)
}

func (r *RaceAPI) GetForecast(ctx context.Context) (openweathermap.WeatherForecastResponse, error) {
	return race(ctx, "forecast", r.providers, r.logger, API.GetForecast)
}

// race runs call against every provider in parallel and returns the first
// successful result. It logs each provider's outcome and aggregates errors
// if all fail.
func race[T any](
	ctx context.Context,
	what string,
	providers []API,
	logger *zap.Logger,
	call func(API, context.Context) (T, error),
) (T, error) {
	var zero T
	if len(providers) == 0 {
		logger.Error("no providers", zap.String("payload", what), zap.Error(ErrNoProviders))
		return zero, ErrNoProviders
	}

	// Create a cancelable context to stop slow providers once we have a winner.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		v   T
		err error
	}
	ch := make(chan result, len(providers))

	for _, p := range providers {
		go func(p API) {
			v, err := call(p, ctx)
			if err != nil {
				logger.Debug("weather provider failed or cancelled", zap.String("payload", what), zap.Error(err))
			} else {
				logger.Debug("weather provider succeeded", zap.String("payload", what))
			}
			ch <- result{v, err}
		}(p)
	}

	var errs []string
	for i := 0; i < len(providers); i++ {
		r := <-ch
		if r.err == nil {
			cancel() // stop other providers
			return r.v, nil
		}
		errs = append(errs, r.err.Error())
	}

	agg := fmt.Errorf("all providers failed: %s", strings.Join(errs, "; "))
	logger.Error("weather fetch failed", zap.String("payload", what), zap.Error(agg))
	return zero, agg
}
