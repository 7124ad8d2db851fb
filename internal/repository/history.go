package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/namefreezers/weather-now/internal/model"
)

// ErrHistoryDisabled reports that no history store is configured.
var ErrHistoryDisabled = errors.New("weather history is not configured")

// Snapshot is one recorded current-weather observation.
type Snapshot struct {
	ID          uuid.UUID `db:"id"          json:"id"`
	City        string    `db:"city"        json:"city"`
	Name        string    `db:"name"        json:"name"`
	Description string    `db:"description" json:"description"`
	Category    string    `db:"category"    json:"category"`
	TempK       float64   `db:"temp_k"      json:"tempK"`
	TempMaxK    float64   `db:"temp_max_k"  json:"tempMaxK"`
	TempMinK    float64   `db:"temp_min_k"  json:"tempMinK"`
	WindSpeed   float64   `db:"wind_speed"  json:"windSpeed"`
	RecordedAt  time.Time `db:"recorded_at" json:"recordedAt"`
}

// Weather rebuilds the domain value the snapshot was taken from.
func (s Snapshot) Weather() model.CurrentWeather {
	return model.CurrentWeather{
		Name:    s.Name,
		Desc:    s.Description,
		Weather: model.ParseWeather(s.Category),
		Temp:    model.Temperature{Value: s.TempK, Max: s.TempMaxK, Min: s.TempMinK},
		Wind:    model.Wind{Speed: s.WindSpeed},
	}
}

// HistoryStore records current-weather snapshots.
type HistoryStore interface {
	EnsureSchema(ctx context.Context) error
	Save(ctx context.Context, city string, w model.CurrentWeather, at time.Time) (Snapshot, error)
	Recent(ctx context.Context, limit int) ([]Snapshot, error)
}

type pgHistory struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewHistoryStore(db *sqlx.DB, logger *zap.Logger) HistoryStore {
	return &pgHistory{db: db, logger: logger}
}

func (r *pgHistory) EnsureSchema(ctx context.Context) error {
	const q = `
        CREATE TABLE IF NOT EXISTS weather_snapshots (
            id          UUID PRIMARY KEY,
            city        TEXT NOT NULL,
            name        TEXT NOT NULL,
            description TEXT NOT NULL,
            category    TEXT NOT NULL,
            temp_k      DOUBLE PRECISION NOT NULL,
            temp_max_k  DOUBLE PRECISION NOT NULL,
            temp_min_k  DOUBLE PRECISION NOT NULL,
            wind_speed  DOUBLE PRECISION NOT NULL,
            recorded_at TIMESTAMPTZ NOT NULL
        );
    `
	if _, err := r.db.ExecContext(ctx, q); err != nil {
		r.logger.Error("failed to create weather_snapshots table", zap.Error(err))
		return err
	}
	return nil
}

func (r *pgHistory) Save(ctx context.Context, city string, w model.CurrentWeather, at time.Time) (Snapshot, error) {
	const q = `
        INSERT INTO weather_snapshots
            (id, city, name, description, category, temp_k, temp_max_k, temp_min_k, wind_speed, recorded_at)
        VALUES
            (:id, :city, :name, :description, :category, :temp_k, :temp_max_k, :temp_min_k, :wind_speed, :recorded_at);
    `
	s := Snapshot{
		ID:          uuid.New(),
		City:        city,
		Name:        w.Name,
		Description: w.Desc,
		Category:    w.Weather.String(),
		TempK:       w.Temp.Value,
		TempMaxK:    w.Temp.Max,
		TempMinK:    w.Temp.Min,
		WindSpeed:   w.Wind.Speed,
		RecordedAt:  at.UTC(),
	}

	if _, err := r.db.NamedExecContext(ctx, q, s); err != nil {
		r.logger.Error("failed to save weather snapshot",
			zap.String("city", city),
			zap.Error(err),
		)
		return Snapshot{}, err
	}

	r.logger.Debug("weather snapshot saved",
		zap.String("id", s.ID.String()),
		zap.String("city", city),
		zap.String("category", s.Category),
	)
	return s, nil
}

func (r *pgHistory) Recent(ctx context.Context, limit int) ([]Snapshot, error) {
	const q = `
        SELECT id, city, name, description, category, temp_k, temp_max_k, temp_min_k, wind_speed, recorded_at
        FROM weather_snapshots
        ORDER BY recorded_at DESC
        LIMIT $1;
    `
	var snaps []Snapshot
	if err := r.db.SelectContext(ctx, &snaps, q, limit); err != nil {
		r.logger.Error("failed to fetch weather history", zap.Int("limit", limit), zap.Error(err))
		return nil, err
	}
	r.logger.Debug("fetched weather history", zap.Int("limit", limit), zap.Int("count", len(snaps)))
	return snaps, nil
}
