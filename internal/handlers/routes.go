package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/namefreezers/weather-now/internal/repository"
)

// NewRouter mounts the weather endpoints under /api/weather.
func NewRouter(vm WeatherStates, history repository.HistoryStore, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	api := router.Group("/api/weather")
	{
		api.GET("/current", CurrentHandler(vm))
		api.GET("/forecast", ForecastHandler(vm))
		api.POST("/refresh", RefreshHandler(vm, logger))
		api.GET("/gauge", GaugeHandler(vm))
		api.GET("/history", HistoryHandler(history))
	}
	return router
}
