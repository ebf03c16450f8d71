package handlers

import (
	"context"
	"errors"
	"time"

	"baby-bliss/internal/apperr"
	"baby-bliss/internal/auth"
	"baby-bliss/internal/cache"
	"baby-bliss/internal/config"
	"baby-bliss/internal/events"
	"baby-bliss/internal/mailer"
	"baby-bliss/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the collaborators shared by every route.
type Deps struct {
	DB     *gorm.DB
	Logger *zap.Logger
	Tokens *auth.TokenManager
	Cache  cache.Store
	Mailer mailer.Notifier
	Events events.Publisher
	Config *config.Config
}

type Handler struct {
	db        *gorm.DB
	logger    *zap.Logger
	tokens    *auth.TokenManager
	cache     cache.Store
	mail      mailer.Notifier
	events    events.Publisher
	cfg       *config.Config
	catalogue models.Catalogue
}

func New(d Deps) *Handler {
	return &Handler{
		db:     d.DB,
		logger: d.Logger,
		tokens: d.Tokens,
		cache:  d.Cache,
		mail:   d.Mailer,
		events: d.Events,
		cfg:    d.Config,
		catalogue: models.NewCatalogue(
			d.Config.Booking.BasicPrice,
			d.Config.Booking.PremiumPrice,
			d.Config.Booking.DeluxePrice,
		),
	}
}

// publish sends an event without holding up the response on broker trouble.
func (h *Handler) publish(ctx context.Context, eventType string, data any) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	if err := h.events.Publish(ctx, events.New(eventType, data)); err != nil {
		h.logger.Warn("failed to publish event", zap.String("type", eventType), zap.Error(err))
	}
}

const dashboardStatsKey = "dashboard:stats"

func (h *Handler) invalidateDashboard(ctx context.Context) {
	if err := h.cache.Delete(ctx, dashboardStatsKey); err != nil {
		h.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}

// notFound maps a missing row to a NOT_FOUND error naming the resource.
func notFound(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(resource)
	}
	return err
}
