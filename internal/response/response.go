// Package response writes the JSON envelope shared by every API route.
package response

import (
	"errors"
	"net/http"

	"baby-bliss/internal/apperr"
	"baby-bliss/internal/database"
	"baby-bliss/internal/validate"

	"github.com/gin-gonic/gin"
)

type Envelope struct {
	Success bool             `json:"success"`
	Message string           `json:"message,omitempty"`
	Data    any              `json:"data,omitempty"`
	Error   *apperr.AppError `json:"error,omitempty"`
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

type PageData struct {
	Items      any        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

func Created(c *gin.Context, message string, data any) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Message: message, Data: data})
}

func Message(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

func Paged(c *gin.Context, items any, page database.Page, total int64) {
	OK(c, PageData{
		Items: items,
		Pagination: Pagination{
			Page:       page.Page,
			Limit:      page.Limit,
			Total:      total,
			TotalPages: page.TotalPages(total),
		},
	})
}

// Error writes err as an error envelope. Internal causes are attached to
// the gin context so the request logger records them.
func Error(c *gin.Context, err error) {
	appErr := apperr.AsAppError(err)
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(appErr.HTTPStatus, Envelope{Success: false, Message: appErr.Message, Error: appErr})
}

func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}

// Bind converts a ShouldBind* failure into a VALIDATION_ERROR or
// INVALID_INPUT app error.
func Bind(err error) error {
	if details, ok := validate.Default().Translate(err); ok {
		return apperr.Validation("validation failed", details)
	}
	var appErr *apperr.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperr.InvalidInput("invalid request body")
}
