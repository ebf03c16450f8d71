package handlers

import (
	"fmt"
	"strings"

	"baby-bliss/internal/apperr"
	"baby-bliss/internal/auth"
	"baby-bliss/internal/database"
	"baby-bliss/internal/middleware"
	"baby-bliss/internal/models"
	"baby-bliss/internal/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func (h *Handler) ListUsers(c *gin.Context) {
	page, err := pageFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	q := h.db.WithContext(c.Request.Context()).Model(&models.User{}).
		Scopes(database.Search(c.Query("search"), "username", "email", "full_name"))
	if r := c.Query("role"); r != "" {
		q = q.Where("role = ?", r)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		response.Error(c, err)
		return
	}

	users := []models.User{}
	if err := q.Scopes(database.Paginate(page)).Order("username ASC").Find(&users).Error; err != nil {
		response.Error(c, err)
		return
	}
	response.Paged(c, users, page, total)
}

type createUserRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50,alphanum"`
	Email    string `json:"email" binding:"omitempty,email,max=150"`
	FullName string `json:"full_name" binding:"max=150"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required,oneof=admin staff viewer"`
}

func weakPassword(field string, err error) error {
	return apperr.Validation(err.Error(), map[string]any{field: err.Error()})
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.Bind(err))
		return
	}
	if err := auth.ValidatePassword(req.Password); err != nil {
		response.Error(c, weakPassword("password", err))
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	user := models.User{
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		FullName:     strings.TrimSpace(req.FullName),
		PasswordHash: hash,
		Role:         models.UserRole(req.Role),
		IsActive:     true,
	}

	err = h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.User{}).Where("LOWER(username) = LOWER(?)", user.Username).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return apperr.Conflict("username is already taken")
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return database.RecordAudit(tx, middleware.Actor(c), "user.create",
			fmt.Sprintf("created %s account %s", user.Role, user.Username))
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "user created", user)
}

type updateUserRequest struct {
	Email    *string `json:"email" binding:"omitempty,email,max=150"`
	FullName *string `json:"full_name" binding:"omitempty,max=150"`
	Role     *string `json:"role" binding:"omitempty,oneof=admin staff viewer"`
	IsActive *bool   `json:"is_active"`
	Password *string `json:"password"`
}

var errLastAdmin = apperr.Conflict("at least one active admin must remain")

// otherActiveAdmins counts active admins apart from id.
func otherActiveAdmins(tx *gorm.DB, id uint) (int64, error) {
	var n int64
	err := tx.Model(&models.User{}).
		Where("role = ? AND is_active = ? AND id <> ?", models.RoleAdmin, true, id).
		Count(&n).Error
	return n, err
}

func (h *Handler) UpdateUser(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.Bind(err))
		return
	}

	var hash string
	if req.Password != nil {
		if err := auth.ValidatePassword(*req.Password); err != nil {
			response.Error(c, weakPassword("password", err))
			return
		}
		if hash, err = auth.HashPassword(*req.Password); err != nil {
			response.Error(c, err)
			return
		}
	}

	var user models.User
	err = h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, id).Error; err != nil {
			return notFound(err, "user")
		}

		wasActiveAdmin := user.Role == models.RoleAdmin && user.IsActive
		if req.Role != nil {
			user.Role = models.UserRole(*req.Role)
		}
		if req.IsActive != nil {
			user.IsActive = *req.IsActive
		}
		if wasActiveAdmin && (user.Role != models.RoleAdmin || !user.IsActive) {
			n, err := otherActiveAdmins(tx, user.ID)
			if err != nil {
				return err
			}
			if n == 0 {
				return errLastAdmin
			}
		}

		if v := trimmed(req.Email); v != nil {
			user.Email = strings.ToLower(*v)
		}
		if v := trimmed(req.FullName); v != nil {
			user.FullName = *v
		}
		if hash != "" {
			user.PasswordHash = hash
		}

		if err := tx.Save(&user).Error; err != nil {
			return err
		}
		details := fmt.Sprintf("updated account %s (role %s, active %t)", user.Username, user.Role, user.IsActive)
		if hash != "" {
			details += ", password reset"
		}
		return database.RecordAudit(tx, middleware.Actor(c), "user.update", details)
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "user updated", user)
}

func (h *Handler) DeleteUser(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if me, ok := middleware.CurrentUser(c); ok && me.ID == id {
		response.Error(c, apperr.Conflict("you cannot delete your own account"))
		return
	}

	err = h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, id).Error; err != nil {
			return notFound(err, "user")
		}
		if user.Role == models.RoleAdmin && user.IsActive {
			n, err := otherActiveAdmins(tx, user.ID)
			if err != nil {
				return err
			}
			if n == 0 {
				return errLastAdmin
			}
		}
		if err := tx.Delete(&user).Error; err != nil {
			return err
		}
		return database.RecordAudit(tx, middleware.Actor(c), "user.delete",
			fmt.Sprintf("deleted account %s", user.Username))
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "user deleted", nil)
}
