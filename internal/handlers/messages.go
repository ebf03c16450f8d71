package handlers

import (
	"fmt"
	"strings"
	"time"

	"baby-bliss/internal/archive"
	"baby-bliss/internal/database"
	"baby-bliss/internal/metrics"
	"baby-bliss/internal/middleware"
	"baby-bliss/internal/models"
	"baby-bliss/internal/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func (h *Handler) ListMessages(c *gin.Context) {
	page, err := pageFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	q := h.db.WithContext(c.Request.Context()).Model(&models.Message{}).
		Scopes(database.Search(c.Query("search"), "name", "email", "subject"))
	if s := c.Query("status"); s != "" {
		q = q.Where("status = ?", s)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		response.Error(c, err)
		return
	}

	messages := []models.Message{}
	if err := q.Scopes(database.Paginate(page)).Order("created_at DESC").Order("id DESC").Find(&messages).Error; err != nil {
		response.Error(c, err)
		return
	}
	response.Paged(c, messages, page, total)
}

// GetMessage returns a message and marks it read on first open.
func (h *Handler) GetMessage(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	db := h.db.WithContext(c.Request.Context())
	var msg models.Message
	if err := db.First(&msg, id).Error; err != nil {
		response.Error(c, notFound(err, "message"))
		return
	}

	user, ok := middleware.CurrentUser(c)
	if msg.Status == models.MessageUnread && ok && user.Role != models.RoleViewer {
		if err := db.Model(&msg).Update("status", models.MessageRead).Error; err != nil {
			response.Error(c, err)
			return
		}
		msg.Status = models.MessageRead
		h.invalidateDashboard(c.Request.Context())
	}
	response.OK(c, msg)
}

type messageStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=unread read replied"`
}

func (h *Handler) UpdateMessageStatus(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req messageStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.Bind(err))
		return
	}

	var msg models.Message
	err = h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&msg, id).Error; err != nil {
			return notFound(err, "message")
		}
		msg.Status = models.MessageStatus(req.Status)
		if err := tx.Model(&msg).Update("status", msg.Status).Error; err != nil {
			return err
		}
		return database.RecordAudit(tx, middleware.Actor(c), "message.status",
			fmt.Sprintf("message #%d marked %s", msg.ID, msg.Status))
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	h.invalidateDashboard(c.Request.Context())
	response.Message(c, "message updated", msg)
}

type replyRequest struct {
	Reply string `json:"reply" binding:"required,max=5000"`
}

func (h *Handler) ReplyMessage(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req replyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.Bind(err))
		return
	}

	var msg models.Message
	err = h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&msg, id).Error; err != nil {
			return notFound(err, "message")
		}
		now := time.Now().UTC()
		msg.Reply = strings.TrimSpace(req.Reply)
		msg.Status = models.MessageReplied
		msg.RepliedAt = &now
		if err := tx.Save(&msg).Error; err != nil {
			return err
		}
		return database.RecordAudit(tx, middleware.Actor(c), "message.reply",
			fmt.Sprintf("replied to message #%d from %s", msg.ID, msg.Email))
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	metrics.EmailsQueued.WithLabelValues("message_reply").Inc()
	h.mail.MessageReplied(msg)
	h.invalidateDashboard(c.Request.Context())
	response.Message(c, "reply sent", msg)
}

func (h *Handler) DeleteMessage(c *gin.Context) {
	h.archiveRecord(c, archive.Messages)
}
