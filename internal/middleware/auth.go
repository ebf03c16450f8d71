package middleware

import (
	"errors"
	"net/http"
	"strings"

	"baby-bliss/internal/apperr"
	"baby-bliss/internal/auth"
	"baby-bliss/internal/models"
	"baby-bliss/internal/response"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	SessionName     = "bb_session"
	SessionTokenKey = "token"
)

// RequireAuth accepts a bearer token or the token stored in the cookie
// session at login, and loads the active user behind it.
func RequireAuth(db *gorm.DB, tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := tokenFromRequest(c)
		if raw == "" {
			response.Abort(c, apperr.Unauthorized("authentication required"))
			return
		}

		claims, err := tokens.Parse(c.Request.Context(), raw)
		switch {
		case errors.Is(err, auth.ErrRevokedToken):
			response.Abort(c, apperr.Unauthorized("session has ended, please log in again"))
			return
		case errors.Is(err, auth.ErrInvalidToken):
			response.Abort(c, apperr.Unauthorized("invalid or expired token"))
			return
		case err != nil:
			response.Abort(c, err)
			return
		}

		var user models.User
		if err := db.WithContext(c.Request.Context()).First(&user, claims.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				response.Abort(c, apperr.Unauthorized("account no longer exists"))
				return
			}
			response.Abort(c, err)
			return
		}
		if !user.IsActive {
			response.Abort(c, apperr.Forbidden("account is disabled"))
			return
		}

		setCurrent(c, &user, claims)
		c.Next()
	}
}

func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	roleSet := map[models.UserRole]struct{}{}
	for _, r := range roles {
		roleSet[r] = struct{}{}
	}

	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			response.Abort(c, apperr.Unauthorized("authentication required"))
			return
		}

		if _, ok := roleSet[user.Role]; !ok {
			response.Abort(c, apperr.Forbidden("access denied"))
			return
		}
		c.Next()
	}
}

// ReadOnlyForViewer lets viewers through on safe methods only.
func ReadOnlyForViewer() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if ok && user.Role == models.RoleViewer {
			switch c.Request.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
			default:
				response.Abort(c, apperr.Forbidden("viewers have read-only access"))
				return
			}
		}
		c.Next()
	}
}

func tokenFromRequest(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if found && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}

	sess := sessions.Default(c)
	if token, ok := sess.Get(SessionTokenKey).(string); ok {
		return token
	}
	return ""
}
