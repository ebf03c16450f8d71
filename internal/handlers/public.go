package handlers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"baby-bliss/internal/apperr"
	"baby-bliss/internal/database"
	"baby-bliss/internal/events"
	"baby-bliss/internal/metrics"
	"baby-bliss/internal/middleware"
	"baby-bliss/internal/models"
	"baby-bliss/internal/response"
	"baby-bliss/internal/validate"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func (h *Handler) ListPackages(c *gin.Context) {
	response.OK(c, h.catalogue.List())
}

type availability struct {
	Date      string `json:"date"`
	Booked    int64  `json:"booked"`
	Capacity  int    `json:"capacity"`
	Remaining int64  `json:"remaining"`
	Available bool   `json:"available"`
}

func (h *Handler) Availability(c *gin.Context) {
	day, err := parseDate(c.Query("date"))
	if err != nil {
		response.Error(c, apperr.InvalidInput("date must be YYYY-MM-DD"))
		return
	}

	booked, err := database.BookedOn(h.db.WithContext(c.Request.Context()), day, 0)
	if err != nil {
		response.Error(c, err)
		return
	}

	capacity := h.cfg.Booking.MaxPerDay
	remaining := int64(capacity) - booked
	if remaining < 0 {
		remaining = 0
	}
	response.OK(c, availability{
		Date:      day.Format("2006-01-02"),
		Booked:    booked,
		Capacity:  capacity,
		Remaining: remaining,
		Available: remaining > 0 && !day.Before(today()),
	})
}

type publicBookingRequest struct {
	ClientName      string `json:"client_name" binding:"required,max=150"`
	ClientEmail     string `json:"client_email" binding:"required,email,max=150"`
	ClientPhone     string `json:"client_phone" binding:"max=40"`
	EventDate       string `json:"event_date" binding:"required,date"`
	EventTime       string `json:"event_time" binding:"omitempty,hhmm"`
	Venue           string `json:"venue" binding:"required,max=255"`
	GuestCount      int    `json:"guest_count" binding:"min=0,max=1000"`
	Package         string `json:"package" binding:"required,oneof=basic premium deluxe"`
	SpecialRequests string `json:"special_requests" binding:"max=2000"`
}

// CreatePublicBooking takes a booking request from the website.
func (h *Handler) CreatePublicBooking(c *gin.Context) {
	var req publicBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.Bind(err))
		return
	}

	day, _ := parseDate(req.EventDate)
	if err := ensureNotPast(day); err != nil {
		metrics.BookingsRejected.WithLabelValues("past_date").Inc()
		response.Error(c, err)
		return
	}

	pkg := models.Package(req.Package)
	price, _ := h.catalogue.Price(pkg)

	booking := models.Booking{BookingData: models.BookingData{
		Reference:       newReference(),
		ClientName:      strings.TrimSpace(req.ClientName),
		ClientEmail:     strings.ToLower(strings.TrimSpace(req.ClientEmail)),
		ClientPhone:     strings.TrimSpace(req.ClientPhone),
		EventDate:       day,
		EventTime:       req.EventTime,
		Venue:           strings.TrimSpace(req.Venue),
		GuestCount:      req.GuestCount,
		Package:         pkg,
		TotalAmount:     price,
		Status:          models.BookingPending,
		PaymentStatus:   models.PaymentUnpaid,
		SpecialRequests: strings.TrimSpace(req.SpecialRequests),
		Source:          models.SourceWebsite,
	}}

	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := h.ensureCapacity(tx, day, 0); err != nil {
			return err
		}

		client, err := linkClient(tx, booking.ClientName, booking.ClientEmail, booking.ClientPhone)
		if err != nil {
			return err
		}
		booking.ClientID = &client.ID

		if err := tx.Create(&booking).Error; err != nil {
			return err
		}
		return database.RecordAudit(tx, middleware.Actor(c), "booking.request",
			fmt.Sprintf("website booking %s for %s on %s", booking.Reference, booking.ClientName, req.EventDate))
	})
	if err != nil {
		if apperr.AsAppError(err).Code == apperr.CodeConflict {
			metrics.BookingsRejected.WithLabelValues("fully_booked").Inc()
		}
		response.Error(c, err)
		return
	}

	metrics.BookingsCreated.WithLabelValues(models.SourceWebsite, string(pkg)).Inc()
	metrics.EmailsQueued.WithLabelValues("booking_received").Inc()
	h.mail.BookingReceived(booking)
	h.publish(c.Request.Context(), events.BookingCreated, booking)
	h.invalidateDashboard(c.Request.Context())

	response.Created(c, "booking request received", booking)
}

type bookingStatusView struct {
	Reference     string               `json:"reference"`
	ClientName    string               `json:"client_name"`
	EventDate     time.Time            `json:"event_date"`
	EventTime     string               `json:"event_time"`
	Venue         string               `json:"venue"`
	Package       models.Package       `json:"package"`
	TotalAmount   float64              `json:"total_amount"`
	AmountPaid    float64              `json:"amount_paid"`
	Status        models.BookingStatus `json:"status"`
	PaymentStatus models.PaymentStatus `json:"payment_status"`
	CreatedAt     time.Time            `json:"created_at"`
}

// LookupBooking lets a customer check a booking by reference and email.
func (h *Handler) LookupBooking(c *gin.Context) {
	reference := strings.ToUpper(strings.TrimSpace(c.Query("reference")))
	email := strings.TrimSpace(c.Query("email"))
	if reference == "" || email == "" {
		response.Error(c, apperr.InvalidInput("reference and email are required"))
		return
	}
	if err := validate.Default().Var(email, "email"); err != nil {
		response.Error(c, apperr.InvalidInput("email is not a valid address"))
		return
	}

	db := h.db.WithContext(c.Request.Context())
	var b models.Booking
	if err := db.Where("reference = ? AND LOWER(client_email) = LOWER(?)", reference, email).
		First(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, apperr.NotFound("booking"))
			return
		}
		response.Error(c, err)
		return
	}

	paid, err := database.CompletedTotal(db, b.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, bookingStatusView{
		Reference:     b.Reference,
		ClientName:    b.ClientName,
		EventDate:     b.EventDate,
		EventTime:     b.EventTime,
		Venue:         b.Venue,
		Package:       b.Package,
		TotalAmount:   b.TotalAmount,
		AmountPaid:    paid,
		Status:        b.Status,
		PaymentStatus: b.PaymentStatus,
		CreatedAt:     b.CreatedAt,
	})
}

type contactRequest struct {
	Name    string `json:"name" binding:"required,max=150"`
	Email   string `json:"email" binding:"required,email,max=150"`
	Phone   string `json:"phone" binding:"max=40"`
	Subject string `json:"subject" binding:"max=255"`
	Message string `json:"message" binding:"required,max=5000"`
}

func (h *Handler) CreateMessage(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.Bind(err))
		return
	}

	msg := models.Message{MessageData: models.MessageData{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Phone:   strings.TrimSpace(req.Phone),
		Subject: strings.TrimSpace(req.Subject),
		Body:    strings.TrimSpace(req.Message),
		Status:  models.MessageUnread,
	}}
	if err := h.db.WithContext(c.Request.Context()).Create(&msg).Error; err != nil {
		response.Error(c, err)
		return
	}

	h.publish(c.Request.Context(), events.MessageReceived, msg)
	h.invalidateDashboard(c.Request.Context())
	response.Created(c, "thank you, we will get back to you soon", gin.H{"id": msg.ID})
}
