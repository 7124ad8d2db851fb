package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/namefreezers/weather-now/internal/repository"
)

// historyRequest defines the optional query parameter for GET /api/weather/history
type historyRequest struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=500"`
}

// HistoryHandler handles GET /api/weather/history. store may be nil when no
// database is configured.
func HistoryHandler(store repository.HistoryStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil {
			// 404 History disabled
			c.JSON(http.StatusNotFound, gin.H{"error": repository.ErrHistoryDisabled.Error()})
			return
		}

		var req historyRequest
		if err := c.ShouldBindQuery(&req); err != nil {
			// 400 Invalid request
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.Limit == 0 {
			req.Limit = 20
		}

		snaps, err := store.Recent(c.Request.Context(), req.Limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if snaps == nil {
			snaps = []repository.Snapshot{}
		}
		c.JSON(http.StatusOK, gin.H{"snapshots": snaps})
	}
}
