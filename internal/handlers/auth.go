package handlers

import (
	"errors"
	"strings"
	"time"

	"baby-bliss/internal/apperr"
	"baby-bliss/internal/auth"
	"baby-bliss/internal/database"
	"baby-bliss/internal/metrics"
	"baby-bliss/internal/middleware"
	"baby-bliss/internal/models"
	"baby-bliss/internal/response"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// Login accepts a username or email address.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.Bind(err))
		return
	}
	login := strings.TrimSpace(req.Username)

	var user models.User
	err := h.db.WithContext(c.Request.Context()).
		Where("username = ? OR LOWER(email) = LOWER(?)", login, login).
		First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		response.Error(c, err)
		return
	}
	if err != nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		metrics.LoginAttempts.WithLabelValues("failure").Inc()
		h.logger.Warn("failed login", zap.String("login", login), zap.String("ip", c.ClientIP()))
		response.Error(c, apperr.Unauthorized("invalid username or password"))
		return
	}
	if !user.IsActive {
		metrics.LoginAttempts.WithLabelValues("disabled").Inc()
		response.Error(c, apperr.Forbidden("account is disabled"))
		return
	}

	token, expiresAt, err := h.tokens.Issue(&user)
	if err != nil {
		response.Error(c, err)
		return
	}

	now := time.Now()
	user.LastLoginAt = &now
	err = h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Update("last_login_at", now).Error; err != nil {
			return err
		}
		actor := database.Actor{UserID: user.ID, Username: user.Username, IP: c.ClientIP()}
		return database.RecordAudit(tx, actor, "auth.login", "logged in")
	})
	if err != nil {
		h.logger.Error("failed to record login", zap.String("username", user.Username), zap.Error(err))
	}

	sess := sessions.Default(c)
	sess.Set(middleware.SessionTokenKey, token)
	if err := sess.Save(); err != nil {
		h.logger.Warn("failed to save session", zap.Error(err))
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	response.Message(c, "logged in", loginResponse{Token: token, ExpiresAt: expiresAt, User: &user})
}

func (h *Handler) Logout(c *gin.Context) {
	if claims, ok := middleware.CurrentClaims(c); ok {
		if err := h.tokens.Revoke(c.Request.Context(), claims); err != nil {
			response.Error(c, err)
			return
		}
	}

	sess := sessions.Default(c)
	sess.Clear()
	sess.Options(sessions.Options{Path: "/", MaxAge: -1})
	_ = sess.Save()

	if err := database.RecordAudit(h.db.WithContext(c.Request.Context()), middleware.Actor(c), "auth.logout", "logged out"); err != nil {
		h.logger.Error("failed to record logout", zap.Error(err))
	}
	response.Message(c, "logged out", nil)
}

func (h *Handler) Me(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	response.OK(c, user)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

func (h *Handler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.Bind(err))
		return
	}
	user, _ := middleware.CurrentUser(c)

	if !auth.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		response.Error(c, apperr.Validation("current password is incorrect",
			map[string]any{"current_password": "current password is incorrect"}))
		return
	}
	if err := auth.ValidatePassword(req.NewPassword); err != nil {
		response.Error(c, apperr.Validation(err.Error(), map[string]any{"new_password": err.Error()}))
		return
	}
	if req.NewPassword == req.CurrentPassword {
		response.Error(c, apperr.Validation("new password must differ from the current one",
			map[string]any{"new_password": "new password must differ from the current one"}))
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		response.Error(c, err)
		return
	}

	err = h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(user).Update("password_hash", hash).Error; err != nil {
			return err
		}
		return database.RecordAudit(tx, middleware.Actor(c), "auth.password_change", "changed own password")
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "password updated", nil)
}
