package weather

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/namefreezers/weather-now/internal/weather/openweathermap"
)

const (
	currentCacheKey  = "weather:current"
	forecastCacheKey = "weather:forecast"
)

// CachingAPI decorates another API with a Redis cache.
type CachingAPI struct {
	inner  API
	redis  redis.Cmdable
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachingAPI returns an API that first looks in Redis, falling back to
// inner on cache-miss. Failures of inner are never cached.
func NewCachingAPI(inner API, rdb redis.Cmdable, ttl time.Duration, logger *zap.Logger) *CachingAPI {
	return &CachingAPI{inner: inner, redis: rdb, ttl: ttl, logger: logger}
}

func (c *CachingAPI) GetCurrentData(ctx context.Context) (openweathermap.CurrentWeatherResponse, error) {
	return cached(ctx, c, currentCacheKey, c.inner.GetCurrentData)
}

func (c *CachingAPI) GetForecast(ctx context.Context) (openweathermap.WeatherForecastResponse, error) {
	return cached(ctx, c, forecastCacheKey, c.inner.GetForecast)
}

func cached[T any](ctx context.Context, c *CachingAPI, key string, fetch func(context.Context) (T, error)) (T, error) {
	// 1) Try cache
	raw, err := c.redis.Get(ctx, key).Result()
	if err == nil {
		var v T
		if uerr := json.Unmarshal([]byte(raw), &v); uerr == nil {
			c.logger.Debug("cache hit", zap.String("key", key))
			return v, nil
		} else {
			c.logger.Warn("cache unmarshal failed", zap.String("key", key), zap.Error(uerr))
		}
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("redis GET failed", zap.String("key", key), zap.Error(err))
	}

	// 2) Cache-miss -> delegate to inner
	v, err := fetch(ctx)
	if err != nil {
		return v, err
	}

	// 3) Store in cache
	blob, merr := json.Marshal(v)
	if merr != nil {
		c.logger.Warn("json marshal failed", zap.Error(merr))
	} else if serr := c.redis.Set(ctx, key, blob, c.ttl).Err(); serr != nil {
		c.logger.Warn("redis SET failed", zap.String("key", key), zap.Error(serr))
	}

	return v, nil
}
