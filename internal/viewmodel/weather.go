package viewmodel

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/namefreezers/weather-now/internal/loadstate"
	"github.com/namefreezers/weather-now/internal/model"
	"github.com/namefreezers/weather-now/internal/repository"
)

type (
	CurrentState  = loadstate.State[model.CurrentWeather]
	ForecastState = loadstate.State[model.WeatherForecast]
)

// ErrClosed is returned by refreshes requested after Close.
var ErrClosed = errors.New("weather view-model is closed")

// WeatherViewModel exposes the current weather and forecast load states.
type WeatherViewModel struct {
	repo   repository.WeatherRepository
	logger *zap.Logger
	ctx    context.Context

	refreshMu sync.Mutex // serializes refreshes

	mu       sync.RWMutex
	current  *loadstate.Holder[model.CurrentWeather]
	forecast *loadstate.Holder[model.WeatherForecast]
	closed   bool

	createdAt time.Time
	wg        sync.WaitGroup // background refreshes
}

// New subscribes to both repository streams and starts the initial refresh
// in the background. The view-model lives until Close or until ctx is done;
// background refreshes run with ctx.
func New(ctx context.Context, repo repository.WeatherRepository, logger *zap.Logger) *WeatherViewModel {
	vm := &WeatherViewModel{
		repo:      repo,
		logger:    logger,
		ctx:       ctx,
		createdAt: time.Now(),
	}
	vm.current = loadstate.NewHolder(ctx, repo.CurrentData)
	vm.forecast = loadstate.NewHolder(ctx, repo.ForecastData)

	vm.wg.Add(1)
	go func() {
		defer vm.wg.Done()
		if err := vm.refresh(ctx); err != nil {
			logger.Warn("initial refresh failed", zap.Error(err))
		}
	}()
	return vm
}

func (vm *WeatherViewModel) CurrentState() CurrentState {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.current.Get()
}

func (vm *WeatherViewModel) ForecastState() ForecastState {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.forecast.Get()
}

func (vm *WeatherViewModel) CreatedAt() time.Time {
	return vm.createdAt
}

// Refresh is the manual retry. A stream that ended in Error is restarted,
// so it reads Loading again, before one repository refresh runs.
func (vm *WeatherViewModel) Refresh(ctx context.Context) error {
	if err := vm.restartFailed(); err != nil {
		return err
	}
	return vm.refresh(ctx)
}

// RefreshAsync runs Refresh in the background with the view-model's
// context. Close waits for it.
func (vm *WeatherViewModel) RefreshAsync() error {
	vm.mu.Lock()
	if vm.closed {
		vm.mu.Unlock()
		return ErrClosed
	}
	vm.wg.Add(1)
	vm.mu.Unlock()

	go func() {
		defer vm.wg.Done()
		if err := vm.Refresh(vm.ctx); err != nil {
			vm.logger.Warn("manual refresh failed", zap.Error(err))
		}
	}()
	return nil
}

func (vm *WeatherViewModel) refresh(ctx context.Context) error {
	vm.refreshMu.Lock()
	defer vm.refreshMu.Unlock()
	return vm.repo.Refresh(ctx)
}

func (vm *WeatherViewModel) restartFailed() error {
	vm.refreshMu.Lock()
	defer vm.refreshMu.Unlock()
	vm.mu.Lock()
	defer vm.mu.Unlock()

	if vm.closed {
		return ErrClosed
	}

	if vm.current.Get().IsError() {
		vm.logger.Debug("restarting current weather stream")
		vm.current.Close()
		vm.current = loadstate.NewHolder(vm.ctx, vm.repo.CurrentData)
	}
	if vm.forecast.Get().IsError() {
		vm.logger.Debug("restarting forecast stream")
		vm.forecast.Close()
		vm.forecast = loadstate.NewHolder(vm.ctx, vm.repo.ForecastData)
	}
	return nil
}

// Close rejects further refreshes, waits for the background ones to finish
// and stops both streams. It is safe to call more than once.
func (vm *WeatherViewModel) Close() {
	vm.mu.Lock()
	if vm.closed {
		vm.mu.Unlock()
		return
	}
	vm.closed = true
	vm.mu.Unlock()

	vm.wg.Wait()

	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.current.Close()
	vm.forecast.Close()
}
