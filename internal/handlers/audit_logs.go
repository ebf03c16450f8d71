package handlers

import (
	"baby-bliss/internal/database"
	"baby-bliss/internal/models"
	"baby-bliss/internal/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ListAuditLogs is the admin view of the audit trail, newest first.
func (h *Handler) ListAuditLogs(c *gin.Context) {
	page, err := pageFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	from, to, err := dateRange(c, "date_from", "date_to")
	if err != nil {
		response.Error(c, err)
		return
	}

	q := h.db.WithContext(c.Request.Context()).Model(&models.AuditLog{}).
		Scopes(database.Search(c.Query("search"), "username", "activity", "details"))
	if uid := c.Query("user_id"); uid != "" {
		q = q.Where("user_id = ?", uid)
	}
	if act := c.Query("activity"); act != "" {
		q = q.Where("activity = ?", act)
	}
	if from != nil {
		q = q.Where("created_at >= ?", *from)
	}
	if to != nil {
		q = q.Where("created_at < ?", *to)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		response.Error(c, err)
		return
	}

	logs := []models.AuditLog{}
	if err := q.Scopes(database.Paginate(page)).Order("created_at DESC").Order("id DESC").Find(&logs).Error; err != nil {
		response.Error(c, err)
		return
	}
	response.Paged(c, logs, page, total)
}
