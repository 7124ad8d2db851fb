package weather

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/namefreezers/weather-now/internal/config"
	"github.com/namefreezers/weather-now/internal/weather/openweathermap"
)

// BuildAPI constructs the API used by the repository:
// 1) the mock provider (USE_MOCK) and/or the OpenWeatherMap client (when a key is set)
// 2) a race-to-first wrapper when more than one provider is available
// 3) a Redis cache decorator when REDIS_ADDR is set
func BuildAPI(cfg *config.Config, logger *zap.Logger) (API, error) {
	var providers []API
	var errs []string

	if cfg.UseMock {
		providers = append(providers, NewDummyAPI(cfg))
	}

	if cfg.OpenWeatherMapOrgKey != "" {
		if owm, err := openweathermap.NewClient(cfg); err != nil {
			logger.Warn("openweathermap client not configured", zap.Error(err))
			errs = append(errs, fmt.Sprintf("owm: %v", err))
		} else {
			providers = append(providers, owm)
		}
	}

	var api API
	switch len(providers) {
	case 0:
		if len(errs) == 0 {
			return nil, ErrNoProviders
		}
		return nil, fmt.Errorf("%w: %s", ErrNoProviders, strings.Join(errs, "; "))
	case 1:
		api = providers[0]
	default:
		api = NewRaceAPI(logger, providers...)
	}

	if cfg.RedisAddr == "" {
		return api, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	logger.Info("weather cache enabled", zap.String("addr", cfg.RedisAddr), zap.Duration("ttl", cfg.CacheTTL))

	return NewCachingAPI(api, rdb, cfg.CacheTTL, logger), nil
}
