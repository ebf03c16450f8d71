package middleware

import (
	"baby-bliss/internal/auth"
	"baby-bliss/internal/database"
	"baby-bliss/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	currentUserKey = "CurrentUser"
	claimsKey      = "TokenClaims"
)

func setCurrent(c *gin.Context, user *models.User, claims *auth.Claims) {
	c.Set(currentUserKey, user)
	c.Set(claimsKey, claims)
}

func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

func CurrentClaims(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}

// Actor describes the caller for audit entries. Anonymous callers get
// an empty user id and the "public" username.
func Actor(c *gin.Context) database.Actor {
	actor := database.Actor{Username: "public", IP: c.ClientIP()}
	if user, ok := CurrentUser(c); ok {
		actor.UserID = user.ID
		actor.Username = user.Username
	}
	return actor
}
