package handlers

import (
	"net/http"

	"baby-bliss/internal/database"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Health always answers 200 so load balancers can tell a live process from
// a broken database.
func (h *Handler) Health(c *gin.Context) {
	dbStatus := "up"
	if err := database.Ping(h.db.WithContext(c.Request.Context())); err != nil {
		h.logger.Warn("health check: database unreachable", zap.Error(err))
		dbStatus = "down"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"database": dbStatus,
		"service":  h.cfg.App.Name,
	})
}
