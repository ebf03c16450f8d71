package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"baby-bliss/internal/apperr"
	"baby-bliss/internal/database"
	"baby-bliss/internal/validate"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestPaged(t *testing.T) {
	c, w := newContext()
	Paged(c, []string{"a", "b"}, database.Page{Page: 2, Limit: 2}, 5)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]any)
	assert.Len(t, data["items"], 2)
	p := data["pagination"].(map[string]any)
	assert.Equal(t, float64(2), p["page"])
	assert.Equal(t, float64(5), p["total"])
	assert.Equal(t, float64(3), p["total_pages"])
}

func TestErrorEnvelope(t *testing.T) {
	c, w := newContext()
	Error(c, apperr.Conflict("date is fully booked"))

	assert.Equal(t, http.StatusConflict, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "date is fully booked", body["message"])
	assert.Equal(t, "CONFLICT", body["error"].(map[string]any)["code"])
	assert.Empty(t, c.Errors)
}

func TestInternalErrorIsLoggedNotLeaked(t *testing.T) {
	c, w := newContext()
	Error(c, errors.New("dial tcp 10.0.0.5:3306: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "10.0.0.5")
	assert.Len(t, c.Errors, 1)
}

func TestBind(t *testing.T) {
	type form struct {
		Email string `json:"email" binding:"required,email"`
	}
	gin.SetMode(gin.TestMode)

	var f form
	err := validate.Default().ValidateStruct(&f)
	got := apperr.AsAppError(Bind(err))
	assert.Equal(t, apperr.CodeValidation, got.Code)
	assert.Equal(t, "email is required", got.Details["email"])

	got = apperr.AsAppError(Bind(errors.New("unexpected EOF")))
	assert.Equal(t, apperr.CodeInvalidInput, got.Code)
}
