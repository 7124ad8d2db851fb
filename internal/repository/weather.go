package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/namefreezers/weather-now/internal/loadstate"
	"github.com/namefreezers/weather-now/internal/model"
	"github.com/namefreezers/weather-now/internal/weather"
)

type (
	CurrentEvent  = loadstate.Event[model.CurrentWeather]
	ForecastEvent = loadstate.Event[model.WeatherForecast]
)

// WeatherRepository publishes the outcome of each refresh to its streams.
type WeatherRepository interface {
	// CurrentData and ForecastData stream refresh outcomes until ctx is done.
	// Values published while nobody is reading are conflated to the latest.
	CurrentData(ctx context.Context) <-chan CurrentEvent
	ForecastData(ctx context.Context) <-chan ForecastEvent

	// Refresh runs one fetch cycle and publishes its results. The returned
	// error joins the fetch failures, which have already been published.
	Refresh(ctx context.Context) error
}

type weatherRepo struct {
	api      weather.API
	history  HistoryStore
	current  *Conflated[CurrentEvent]
	forecast *Conflated[ForecastEvent]
	now      func() time.Time
	logger   *zap.Logger
}

// NewWeatherRepository wraps api. history may be nil, in which case
// snapshots are not recorded.
func NewWeatherRepository(api weather.API, history HistoryStore, logger *zap.Logger) WeatherRepository {
	return &weatherRepo{
		api:      api,
		history:  history,
		current:  NewConflated[CurrentEvent](),
		forecast: NewConflated[ForecastEvent](),
		now:      time.Now,
		logger:   logger,
	}
}

func (r *weatherRepo) CurrentData(ctx context.Context) <-chan CurrentEvent {
	return stream(ctx, r.current)
}

func (r *weatherRepo) ForecastData(ctx context.Context) <-chan ForecastEvent {
	return stream(ctx, r.forecast)
}

func (r *weatherRepo) Refresh(ctx context.Context) error {
	var errs []error

	cur, err := r.api.GetCurrentData(ctx)
	if err != nil {
		r.logger.Warn("current weather fetch failed", zap.Error(err))
		r.current.Send(CurrentEvent{Err: err})
		errs = append(errs, fmt.Errorf("current weather: %w", err))
	} else {
		m := cur.ToModel()
		r.current.Send(CurrentEvent{Value: m})
		r.logger.Info("current weather refreshed",
			zap.String("city", cur.Name),
			zap.Stringer("weather", m.Weather),
			zap.Float64("temp", m.Temp.Value),
		)
		r.record(ctx, cur.Name, m)
	}

	fc, err := r.api.GetForecast(ctx)
	if err != nil {
		r.logger.Warn("forecast fetch failed", zap.Error(err))
		r.forecast.Send(ForecastEvent{Err: err})
		errs = append(errs, fmt.Errorf("forecast: %w", err))
	} else {
		m := fc.ToModel()
		r.forecast.Send(ForecastEvent{Value: m})
		r.logger.Info("forecast refreshed",
			zap.String("city", fc.City.Name),
			zap.Int("steps", len(m.List)),
		)
	}

	return errors.Join(errs...)
}

// record stores a snapshot; failures are logged and otherwise ignored.
func (r *weatherRepo) record(ctx context.Context, city string, w model.CurrentWeather) {
	if r.history == nil {
		return
	}
	if _, err := r.history.Save(ctx, city, w, r.now()); err != nil {
		r.logger.Error("failed to record weather snapshot", zap.String("city", city), zap.Error(err))
	}
}
