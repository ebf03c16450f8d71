package handlers

import (
	"context"

	"baby-bliss/internal/apperr"
	"baby-bliss/internal/archive"
	"baby-bliss/internal/events"
	"baby-bliss/internal/metrics"
	"baby-bliss/internal/middleware"
	"baby-bliss/internal/response"
	"baby-bliss/internal/tracing"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// archiveSpan opens a span for one archive lifecycle step.
func archiveSpan(ctx context.Context, op string, kind archive.Kind, id uint) (context.Context, trace.Span) {
	return tracing.Tracer("baby-bliss/archive").Start(ctx, "archive."+op,
		trace.WithAttributes(
			attribute.String("archive.kind", string(kind)),
			attribute.Int64("archive.id", int64(id)),
		))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

type archiveRequest struct {
	Reason string `json:"reason" binding:"max=255"`
}

// archiveRecord backs every DELETE on a live resource. The reason comes
// from the JSON body or ?reason=.
func (h *Handler) archiveRecord(c *gin.Context, kind archive.Kind) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req archiveRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, response.Bind(err))
			return
		}
	}
	if req.Reason == "" {
		req.Reason = c.Query("reason")
	}

	ctx, span := archiveSpan(c.Request.Context(), "archive", kind, id)
	res, err := archive.Archive(h.db.WithContext(ctx), kind, id,
		archive.Meta{Reason: req.Reason, Actor: middleware.Actor(c)})
	endSpan(span, err)
	if err != nil {
		response.Error(c, err)
		return
	}

	metrics.ArchiveOperations.WithLabelValues("archive", string(kind)).Inc()
	h.publish(c.Request.Context(), events.RecordArchived, res)
	h.invalidateDashboard(c.Request.Context())
	response.Message(c, "record moved to archive", res)
}

func (h *Handler) ArchiveSummary(c *gin.Context) {
	counts, err := archive.Counts(h.db.WithContext(c.Request.Context()))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, counts)
}

func (h *Handler) ListArchived(c *gin.Context) {
	kind, err := archive.ParseKind(c.Param("kind"))
	if err != nil {
		response.Error(c, err)
		return
	}
	page, err := pageFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	items, total, err := archive.List(h.db.WithContext(c.Request.Context()), kind,
		archive.ListQuery{Page: page, Search: c.Query("search")})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paged(c, items, page, total)
}

func (h *Handler) RestoreArchived(c *gin.Context) {
	kind, id, err := archiveTarget(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	ctx, span := archiveSpan(c.Request.Context(), "restore", kind, id)
	res, err := archive.Restore(h.db.WithContext(ctx), kind, id, middleware.Actor(c), archive.Rules{MaxPerDay: h.cfg.Booking.MaxPerDay})
	endSpan(span, err)
	if err != nil {
		response.Error(c, err)
		return
	}

	metrics.ArchiveOperations.WithLabelValues("restore", string(kind)).Inc()
	h.publish(c.Request.Context(), events.RecordRestored, res)
	h.invalidateDashboard(c.Request.Context())
	response.Message(c, "record restored", res)
}

func (h *Handler) PurgeArchived(c *gin.Context) {
	kind, id, err := archiveTarget(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	ctx, span := archiveSpan(c.Request.Context(), "purge", kind, id)
	res, err := archive.Purge(h.db.WithContext(ctx), kind, id, middleware.Actor(c))
	endSpan(span, err)
	if err != nil {
		response.Error(c, err)
		return
	}

	metrics.ArchiveOperations.WithLabelValues("purge", string(kind)).Inc()
	response.Message(c, "record permanently deleted", res)
}

func archiveTarget(c *gin.Context) (archive.Kind, uint, error) {
	kind, err := archive.ParseKind(c.Param("kind"))
	if err != nil {
		return "", 0, err
	}
	id, err := parseID(c)
	if err != nil {
		return "", 0, apperr.InvalidInput("invalid archive id")
	}
	return kind, id, nil
}
