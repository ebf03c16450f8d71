package server

import (
	"net/http"

	"baby-bliss/internal/handlers"
	"baby-bliss/internal/metrics"
	"baby-bliss/internal/middleware"
	"baby-bliss/internal/models"
	"baby-bliss/internal/validate"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// NewRouter wires the public site API, the auth endpoints and the admin
// back office onto one engine.
func NewRouter(d handlers.Deps) *gin.Engine {
	cfg := d.Config
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	binding.Validator = validate.Default()

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.GinLogger(d.Logger),
		middleware.Recovery(d.Logger),
		metrics.Middleware(),
		middleware.CORS(cfg.App.AllowedOrigins),
	)

	store := cookie.NewStore([]byte(cfg.Auth.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.Auth.TokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Auth.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(middleware.SessionName, store))

	h := handlers.New(d)
	requireAuth := middleware.RequireAuth(d.DB, d.Tokens)
	limit := func(name string) gin.HandlerFunc {
		return middleware.RateLimit(d.Cache, name, cfg.RateLimit.Requests, cfg.RateLimit.Window, d.Logger)
	}
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	r.GET("/health", h.Health)
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api")

	// public site
	api.GET("/packages", h.ListPackages)
	api.GET("/availability", h.Availability)
	api.POST("/bookings", limit("bookings"), h.CreatePublicBooking)
	api.GET("/bookings/lookup", limit("lookup"), h.LookupBooking)
	api.POST("/messages", limit("messages"), h.CreateMessage)

	authGroup := api.Group("/auth")
	authGroup.POST("/login", limit("login"), h.Login)
	authGroup.POST("/logout", requireAuth, h.Logout)
	authGroup.GET("/me", requireAuth, h.Me)
	authGroup.PUT("/password", requireAuth, h.ChangePassword)

	admin := api.Group("/admin", requireAuth, middleware.ReadOnlyForViewer())

	bookings := admin.Group("/bookings")
	bookings.GET("", h.ListBookings)
	bookings.POST("", h.CreateBooking)
	bookings.GET("/:id", h.GetBooking)
	bookings.PUT("/:id", h.UpdateBooking)
	bookings.PATCH("/:id/status", h.UpdateBookingStatus)
	bookings.DELETE("/:id", h.DeleteBooking)

	clients := admin.Group("/clients")
	clients.GET("", h.ListClients)
	clients.POST("", h.CreateClient)
	clients.GET("/:id", h.GetClient)
	clients.PUT("/:id", h.UpdateClient)
	clients.DELETE("/:id", h.DeleteClient)

	payments := admin.Group("/payments")
	payments.GET("", h.ListPayments)
	payments.POST("", h.CreatePayment)
	payments.GET("/:id", h.GetPayment)
	payments.PUT("/:id", h.UpdatePayment)
	payments.DELETE("/:id", h.DeletePayment)

	expenses := admin.Group("/expenses")
	expenses.GET("", h.ListExpenses)
	expenses.GET("/summary", h.ExpenseSummary)
	expenses.POST("", h.CreateExpense)
	expenses.GET("/:id", h.GetExpense)
	expenses.PUT("/:id", h.UpdateExpense)
	expenses.DELETE("/:id", h.DeleteExpense)

	messages := admin.Group("/messages")
	messages.GET("", h.ListMessages)
	messages.GET("/:id", h.GetMessage)
	messages.PATCH("/:id/status", h.UpdateMessageStatus)
	messages.POST("/:id/reply", h.ReplyMessage)
	messages.DELETE("/:id", h.DeleteMessage)

	archives := admin.Group("/archives")
	archives.GET("", h.ArchiveSummary)
	archives.GET("/:kind", h.ListArchived)
	archives.POST("/:kind/:id/restore", h.RestoreArchived)
	archives.DELETE("/:kind/:id", adminOnly, h.PurgeArchived)

	dashboard := admin.Group("/dashboard")
	dashboard.GET("/stats", h.DashboardStats)
	dashboard.GET("/monthly", h.DashboardMonthly)
	dashboard.GET("/packages", h.DashboardPackages)

	admin.GET("/audit-logs", adminOnly, h.ListAuditLogs)

	users := admin.Group("/users", adminOnly)
	users.GET("", h.ListUsers)
	users.POST("", h.CreateUser)
	users.PUT("/:id", h.UpdateUser)
	users.DELETE("/:id", h.DeleteUser)

	return r
}
