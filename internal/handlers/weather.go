package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/namefreezers/weather-now/internal/gauge"
	"github.com/namefreezers/weather-now/internal/loadstate"
	"github.com/namefreezers/weather-now/internal/model"
	"github.com/namefreezers/weather-now/internal/viewmodel"
)

// WeatherStates is what the handlers need from the view-model.
type WeatherStates interface {
	CurrentState() viewmodel.CurrentState
	ForecastState() viewmodel.ForecastState
	RefreshAsync() error
}

// currentResponse is the client-facing view of the current conditions
type currentResponse struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Weather     model.Weather `json:"weather"`
	Icon        string        `json:"icon"`
	Temperature float64       `json:"temperature"`
	Max         float64       `json:"max"`
	Min         float64       `json:"min"`
	Color       string        `json:"color"`
	WindSpeed   float64       `json:"windSpeed"`
}

type forecastItem struct {
	Time        time.Time     `json:"time"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Weather     model.Weather `json:"weather"`
	Icon        string        `json:"icon"`
	Temperature float64       `json:"temperature"`
	WindSpeed   float64       `json:"windSpeed"`
}

type forecastResponse struct {
	List []forecastItem `json:"list"`
}

func toCurrentResponse(now time.Time) func(model.CurrentWeather) currentResponse {
	return func(w model.CurrentWeather) currentResponse {
		c := model.Celsius(w.Temp.Value)
		return currentResponse{
			Name:        w.Name,
			Description: w.Desc,
			Weather:     w.Weather,
			Icon:        w.Weather.Icon(now),
			Temperature: c,
			Max:         model.Celsius(w.Temp.Max),
			Min:         model.Celsius(w.Temp.Min),
			Color:       gauge.TemperatureColor(c).Hex(),
			WindSpeed:   w.Wind.Speed,
		}
	}
}

func toForecastResponse(f model.WeatherForecast) forecastResponse {
	items := make([]forecastItem, 0, len(f.List))
	for _, e := range f.List {
		items = append(items, forecastItem{
			Time:        e.DateTime,
			Name:        e.Name,
			Description: e.Desc,
			Weather:     e.Weather,
			Icon:        e.Weather.Icon(e.DateTime),
			Temperature: model.Celsius(e.Temp.Value),
			WindSpeed:   e.Wind.Speed,
		})
	}
	return forecastResponse{List: items}
}

// CurrentHandler handles GET /api/weather/current
func CurrentHandler(vm WeatherStates) gin.HandlerFunc {
	return func(c *gin.Context) {
		st := loadstate.Map(vm.CurrentState(), toCurrentResponse(time.Now()))
		c.JSON(http.StatusOK, st)
	}
}

// ForecastHandler handles GET /api/weather/forecast
func ForecastHandler(vm WeatherStates) gin.HandlerFunc {
	return func(c *gin.Context) {
		st := loadstate.Map(vm.ForecastState(), toForecastResponse)
		c.JSON(http.StatusOK, st)
	}
}

// RefreshHandler handles POST /api/weather/refresh. The refresh runs in the
// background; its outcome shows up in the load states.
func RefreshHandler(vm WeatherStates, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := vm.RefreshAsync(); err != nil {
			if errors.Is(err, viewmodel.ErrClosed) {
				// 503 Shutting down
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
				return
			}
			logger.Error("failed to start refresh", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"message": "Refresh started"})
	}
}

// gaugeRequest carries the canvas size for GET /api/weather/gauge
type gaugeRequest struct {
	Width    float64  `form:"width"    binding:"required,gt=0"`
	Height   float64  `form:"height"   binding:"required,gt=0"`
	Progress *float64 `form:"progress" binding:"omitempty,gte=0,lte=1"`
}

// GaugeHandler handles GET /api/weather/gauge
func GaugeHandler(vm WeatherStates) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req gaugeRequest
		if err := c.ShouldBindQuery(&req); err != nil {
			// 400 Invalid request
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		progress := 1.0
		if req.Progress != nil {
			progress = *req.Progress
		}

		st := vm.ForecastState()
		f, ok := st.Value()
		if !ok {
			// 409 forecast not loaded (yet, or the last fetch failed)
			c.JSON(http.StatusConflict, st)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"width":    req.Width,
			"height":   req.Height,
			"progress": progress,
			"points":   gauge.Outline(f.Temperatures(), req.Width, req.Height, progress),
		})
	}
}
