package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"baby-bliss/internal/auth"
	"baby-bliss/internal/cache"
	"baby-bliss/internal/config"
	"baby-bliss/internal/models"
	"baby-bliss/internal/testutil"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db     *gorm.DB
	tokens *auth.TokenManager
	router *gin.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	tokens := auth.NewTokenManager(config.AuthConfig{
		JWTSecret: "secret", TokenTTL: time.Hour, Issuer: "baby-bliss",
	}, cache.NewMemory())

	r := gin.New()
	r.Use(sessions.Sessions(SessionName, cookie.NewStore([]byte("session-secret"))))

	ok := func(c *gin.Context) {
		user, _ := CurrentUser(c)
		c.String(http.StatusOK, user.Username)
	}
	protected := r.Group("/admin", RequireAuth(db, tokens), ReadOnlyForViewer())
	protected.GET("/bookings", ok)
	protected.POST("/bookings", ok)
	protected.GET("/users", RequireRole(models.RoleAdmin), ok)

	r.POST("/session-login", func(c *gin.Context) {
		sess := sessions.Default(c)
		sess.Set(SessionTokenKey, c.Query("token"))
		_ = sess.Save()
		c.Status(http.StatusNoContent)
	})

	return &fixture{db: db, tokens: tokens, router: r}
}

func (f *fixture) user(t *testing.T, username string, role models.UserRole, active bool) (*models.User, string) {
	t.Helper()
	u := &models.User{Username: username, PasswordHash: "x", Role: role, IsActive: active}
	require.NoError(t, f.db.Create(u).Error)
	token, _, err := f.tokens.Issue(u)
	require.NoError(t, err)
	return u, token
}

func (f *fixture) do(method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	f := newFixture(t)
	_, staffToken := f.user(t, "staff", models.RoleStaff, true)
	_, disabledToken := f.user(t, "gone", models.RoleStaff, false)

	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/admin/bookings", "").Code)
	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/admin/bookings", "garbage").Code)
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodGet, "/admin/bookings", disabledToken).Code)

	w := f.do(http.MethodGet, "/admin/bookings", staffToken)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "staff", w.Body.String())
}

func TestRequireAuthRejectsRevokedToken(t *testing.T) {
	f := newFixture(t)
	_, token := f.user(t, "staff", models.RoleStaff, true)

	claims, err := f.tokens.Parse(t.Context(), token)
	require.NoError(t, err)
	require.NoError(t, f.tokens.Revoke(t.Context(), claims))

	w := f.do(http.MethodGet, "/admin/bookings", token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "session has ended")
}

func TestRequireAuthFromSessionCookie(t *testing.T) {
	f := newFixture(t)
	_, token := f.user(t, "admin", models.RoleAdmin, true)

	login := httptest.NewRecorder()
	f.router.ServeHTTP(login, httptest.NewRequest(http.MethodPost, "/session-login?token="+token, nil))
	require.Equal(t, http.StatusNoContent, login.Code)
	cookies := login.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", w.Body.String())
}

func TestRolesAndViewerReadOnly(t *testing.T) {
	f := newFixture(t)
	_, staff := f.user(t, "staff", models.RoleStaff, true)
	_, viewer := f.user(t, "viewer", models.RoleViewer, true)
	_, admin := f.user(t, "admin", models.RoleAdmin, true)

	assert.Equal(t, http.StatusForbidden, f.do(http.MethodGet, "/admin/users", staff).Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/admin/users", admin).Code)

	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/admin/bookings", viewer).Code)
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodPost, "/admin/bookings", viewer).Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodPost, "/admin/bookings", staff).Code)
}

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/login", RateLimit(cache.NewMemory(), "login", 2, time.Minute, zap.NewNop()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	send := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "203.0.113.9:5555"
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, send().Code)
	w := send()
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = send()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "TOO_MANY_REQUESTS")
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS("http://localhost:3000, https://babybliss.example/"))
	r.GET("/api/packages", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/api/packages", nil)
	req.Header.Set("Origin", "https://babybliss.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://babybliss.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/api/packages", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSWildcardOmitsCredentials(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS("*, http://localhost:3000"))
	r.GET("/api/packages", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/api/packages", nil)
	req.Header.Set("Origin", "https://evil.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/api/packages", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestRequestIDAndRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), GinLogger(zap.NewNop()), Recovery(zap.NewNop()))
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}
