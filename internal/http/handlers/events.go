package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/greenroute/backend/internal/db"
)

// @Summary Lifecycle event history
// @Description Reads the Postgres event archive. Requires DATABASE_URL.
// @Tags events
// @Produce json
// @Param entity_id query string false "Entity ID"
// @Param name query string false "Event name"
// @Param since query string false "RFC3339 lower bound"
// @Param limit query int false "Max events (default 100)"
// @Success 200 {object} map[string]any
// @Failure 503 {object} ErrorResponse
// @Router /api/events [get]
func (h *Handler) EventsList(c *gin.Context) {
	if h.Archive == nil {
		writeError(c, http.StatusServiceUnavailable, "ARCHIVE_DISABLED", "Event archive is not configured", nil)
		return
	}
	q := db.EventQuery{
		EntityID: c.Query("entity_id"),
		Name:     c.Query("name"),
		Limit:    queryInt(c, "limit", 100),
	}
	if v := c.Query("since"); v != "" {
		since, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "since must be RFC3339", err.Error())
			return
		}
		q.Since = since
	}
	items, err := h.Archive.List(c.Request.Context(), q)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list events", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Stream upgrades to a websocket that receives every lifecycle event.
func (h *Handler) Stream(c *gin.Context) {
	if h.Hub == nil {
		writeError(c, http.StatusServiceUnavailable, "STREAM_DISABLED", "Event stream is not configured", nil)
		return
	}
	h.Hub.ServeWS(c.Writer, c.Request)
}
