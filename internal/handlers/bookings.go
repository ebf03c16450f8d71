package handlers

import (
	"errors"
	"fmt"
	"strings"

	"baby-bliss/internal/apperr"
	"baby-bliss/internal/archive"
	"baby-bliss/internal/database"
	"baby-bliss/internal/events"
	"baby-bliss/internal/metrics"
	"baby-bliss/internal/middleware"
	"baby-bliss/internal/models"
	"baby-bliss/internal/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func (h *Handler) ListBookings(c *gin.Context) {
	page, err := pageFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	from, to, err := dateRange(c, "date_from", "date_to")
	if err != nil {
		response.Error(c, err)
		return
	}

	q := h.db.WithContext(c.Request.Context()).Model(&models.Booking{}).
		Scopes(database.Search(c.Query("search"), "reference", "client_name", "client_email", "venue"))

	if s := c.Query("status"); s != "" {
		q = q.Where("status = ?", s)
	}
	if p := c.Query("package"); p != "" {
		q = q.Where("package = ?", p)
	}
	if ps := c.Query("payment_status"); ps != "" {
		q = q.Where("payment_status = ?", ps)
	}
	if cid := c.Query("client_id"); cid != "" {
		q = q.Where("client_id = ?", cid)
	}
	if from != nil {
		q = q.Where("event_date >= ?", *from)
	}
	if to != nil {
		q = q.Where("event_date < ?", *to)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		response.Error(c, err)
		return
	}

	bookings := []models.Booking{}
	order := sortClause(c, []string{"event_date", "created_at", "total_amount", "reference", "client_name", "status"}, "created_at")
	if err := q.Scopes(database.Paginate(page)).Order(order).Order("id DESC").Find(&bookings).Error; err != nil {
		response.Error(c, err)
		return
	}

	response.Paged(c, bookings, page, total)
}

type bookingDetail struct {
	models.Booking
	AmountPaid float64 `json:"amount_paid"`
	Balance    float64 `json:"balance"`
}

func (h *Handler) GetBooking(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	db := h.db.WithContext(c.Request.Context())
	var b models.Booking
	if err := db.Preload("Client").
		Preload("Payments", func(tx *gorm.DB) *gorm.DB { return tx.Order("id") }).
		First(&b, id).Error; err != nil {
		response.Error(c, notFound(err, "booking"))
		return
	}

	paid, err := database.CompletedTotal(db, b.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, bookingDetail{Booking: b, AmountPaid: paid, Balance: b.TotalAmount - paid})
}

type bookingRequest struct {
	ClientID        *uint    `json:"client_id"`
	ClientName      string   `json:"client_name" binding:"max=150"`
	ClientEmail     string   `json:"client_email" binding:"omitempty,email,max=150"`
	ClientPhone     string   `json:"client_phone" binding:"max=40"`
	EventDate       string   `json:"event_date" binding:"required,date"`
	EventTime       string   `json:"event_time" binding:"omitempty,hhmm"`
	Venue           string   `json:"venue" binding:"required,max=255"`
	GuestCount      int      `json:"guest_count" binding:"min=0,max=1000"`
	Package         string   `json:"package" binding:"required,oneof=basic premium deluxe"`
	TotalAmount     *float64 `json:"total_amount" binding:"omitempty,min=0"`
	Status          string   `json:"status" binding:"omitempty,oneof=pending confirmed completed cancelled"`
	SpecialRequests string   `json:"special_requests" binding:"max=2000"`
}

func (h *Handler) CreateBooking(c *gin.Context) {
	var req bookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.Bind(err))
		return
	}

	day, _ := parseDate(req.EventDate)
	pkg := models.Package(req.Package)
	total, _ := h.catalogue.Price(pkg)
	if req.TotalAmount != nil {
		total = *req.TotalAmount
	}
	status := models.BookingPending
	if req.Status != "" {
		status = models.BookingStatus(req.Status)
	}

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
		TotalAmount:     total,
		Status:          status,
		PaymentStatus:   models.PaymentUnpaid,
		SpecialRequests: strings.TrimSpace(req.SpecialRequests),
		Source:          models.SourceAdmin,
	}}

	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := h.attachClient(tx, &booking, req.ClientID); err != nil {
			return err
		}
		if booking.Occupies() {
			if err := h.ensureCapacity(tx, day, 0); err != nil {
				return err
			}
		}
		if err := tx.Create(&booking).Error; err != nil {
			return err
		}
		return database.RecordAudit(tx, middleware.Actor(c), "booking.create",
			fmt.Sprintf("created booking %s for %s on %s", booking.Reference, booking.ClientName, req.EventDate))
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	metrics.BookingsCreated.WithLabelValues(models.SourceAdmin, string(pkg)).Inc()
	h.publish(c.Request.Context(), events.BookingCreated, booking)
	h.invalidateDashboard(c.Request.Context())
	response.Created(c, "booking created", booking)
}

// attachClient links an existing client by id, or finds/creates one by
// the booking's email. Client details fill any blanks on the booking.
func (h *Handler) attachClient(tx *gorm.DB, b *models.Booking, clientID *uint) error {
	if clientID != nil {
		var client models.Client
		if err := tx.First(&client, *clientID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.Validation("client does not exist", map[string]any{"client_id": "client does not exist"})
			}
			return err
		}
		b.ClientID = &client.ID
		if b.ClientName == "" {
			b.ClientName = client.FullName
		}
		if b.ClientEmail == "" {
			b.ClientEmail = client.Email
		}
		if b.ClientPhone == "" {
			b.ClientPhone = client.Phone
		}
	} else if b.ClientEmail != "" {
		if b.ClientName == "" {
			return apperr.Validation("client_name is required", map[string]any{"client_name": "client_name is required"})
		}
		client, err := linkClient(tx, b.ClientName, b.ClientEmail, b.ClientPhone)
		if err != nil {
			return err
		}
		b.ClientID = &client.ID
	}

	if b.ClientName == "" || b.ClientEmail == "" {
		return apperr.Validation("client details are required", map[string]any{
			"client_id": "provide client_id or client_name and client_email",
		})
	}
	return nil
}

type updateBookingRequest struct {
	ClientName      *string  `json:"client_name" binding:"omitempty,min=1,max=150"`
	ClientEmail     *string  `json:"client_email" binding:"omitempty,email,max=150"`
	ClientPhone     *string  `json:"client_phone" binding:"omitempty,max=40"`
	EventDate       *string  `json:"event_date" binding:"omitempty,date"`
	EventTime       *string  `json:"event_time" binding:"omitempty,hhmm"`
	Venue           *string  `json:"venue" binding:"omitempty,min=1,max=255"`
	GuestCount      *int     `json:"guest_count" binding:"omitempty,min=0,max=1000"`
	Package         *string  `json:"package" binding:"omitempty,oneof=basic premium deluxe"`
	TotalAmount     *float64 `json:"total_amount" binding:"omitempty,min=0"`
	SpecialRequests *string  `json:"special_requests" binding:"omitempty,max=2000"`
}

// UpdateBooking edits booking details. Status has its own endpoint.
func (h *Handler) UpdateBooking(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req updateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.Bind(err))
		return
	}

	var booking models.Booking
	err = h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&booking, id).Error; err != nil {
			return notFound(err, "booking")
		}

		if v := trimmed(req.ClientName); v != nil {
			booking.ClientName = *v
		}
		if v := trimmed(req.ClientEmail); v != nil {
			booking.ClientEmail = strings.ToLower(*v)
		}
		if v := trimmed(req.ClientPhone); v != nil {
			booking.ClientPhone = *v
		}
		if v := trimmed(req.Venue); v != nil {
			booking.Venue = *v
		}
		if req.EventTime != nil {
			booking.EventTime = *req.EventTime
		}
		if req.GuestCount != nil {
			booking.GuestCount = *req.GuestCount
		}
		if v := trimmed(req.SpecialRequests); v != nil {
			booking.SpecialRequests = *v
		}
		if req.Package != nil && models.Package(*req.Package) != booking.Package {
			booking.Package = models.Package(*req.Package)
			if req.TotalAmount == nil {
				booking.TotalAmount, _ = h.catalogue.Price(booking.Package)
			}
		}
		if req.TotalAmount != nil {
			booking.TotalAmount = *req.TotalAmount
		}
		if req.EventDate != nil {
			day, _ := parseDate(*req.EventDate)
			if !day.Equal(booking.EventDate) && booking.Occupies() {
				if err := h.ensureCapacity(tx, day, booking.ID); err != nil {
					return err
				}
			}
			booking.EventDate = day
		}

		if err := tx.Save(&booking).Error; err != nil {
			return err
		}
		if err := database.SyncPaymentStatus(tx, booking.ID); err != nil {
			return err
		}
		if err := tx.First(&booking, booking.ID).Error; err != nil {
			return err
		}
		return database.RecordAudit(tx, middleware.Actor(c), "booking.update",
			fmt.Sprintf("updated booking %s", booking.Reference))
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	h.invalidateDashboard(c.Request.Context())
	response.Message(c, "booking updated", booking)
}

type bookingStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending confirmed completed cancelled"`
}

func (h *Handler) UpdateBookingStatus(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req bookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.Bind(err))
		return
	}
	user, _ := middleware.CurrentUser(c)
	next := models.BookingStatus(req.Status)

	var booking models.Booking
	var previous models.BookingStatus
	err = h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&booking, id).Error; err != nil {
			return notFound(err, "booking")
		}
		previous = booking.Status

		if !models.CanTransitionBooking(user.Role, previous, next) {
			return apperr.Conflict(fmt.Sprintf("cannot change booking status from %s to %s", previous, next))
		}
		if previous == models.BookingCancelled {
			if err := h.ensureCapacity(tx, booking.EventDate, booking.ID); err != nil {
				return err
			}
		}

		booking.Status = next
		if err := tx.Model(&booking).Update("status", next).Error; err != nil {
			return err
		}
		return database.RecordAudit(tx, middleware.Actor(c), "booking.status",
			fmt.Sprintf("booking %s status changed from %s to %s", booking.Reference, previous, next))
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	if next != models.BookingPending {
		metrics.EmailsQueued.WithLabelValues("booking_status").Inc()
		h.mail.BookingStatusChanged(booking)
	}
	h.publish(c.Request.Context(), events.BookingStatusChanged, gin.H{
		"id":        booking.ID,
		"reference": booking.Reference,
		"from":      previous,
		"to":        next,
	})
	h.invalidateDashboard(c.Request.Context())
	response.Message(c, "booking status updated", booking)
}

func (h *Handler) DeleteBooking(c *gin.Context) {
	h.archiveRecord(c, archive.Bookings)
}
