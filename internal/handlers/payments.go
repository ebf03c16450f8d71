package handlers

import (
	"fmt"
	"strings"
	"time"

	"baby-bliss/internal/apperr"
	"baby-bliss/internal/archive"
	"baby-bliss/internal/database"
	"baby-bliss/internal/events"
	"baby-bliss/internal/middleware"
	"baby-bliss/internal/models"
	"baby-bliss/internal/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func (h *Handler) ListPayments(c *gin.Context) {
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

	q := h.db.WithContext(c.Request.Context()).Model(&models.Payment{}).
		Scopes(database.Search(c.Query("search"), "reference_no", "notes"))
	if bid := c.Query("booking_id"); bid != "" {
		q = q.Where("booking_id = ?", bid)
	}
	if s := c.Query("status"); s != "" {
		q = q.Where("status = ?", s)
	}
	if m := c.Query("method"); m != "" {
		q = q.Where("method = ?", m)
	}
	if from != nil {
		q = q.Where("paid_at >= ?", *from)
	}
	if to != nil {
		q = q.Where("paid_at < ?", *to)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		response.Error(c, err)
		return
	}

	payments := []models.Payment{}
	order := sortClause(c, []string{"paid_at", "created_at", "amount"}, "created_at")
	if err := q.Scopes(database.Paginate(page)).Order(order).Order("id DESC").Find(&payments).Error; err != nil {
		response.Error(c, err)
		return
	}
	response.Paged(c, payments, page, total)
}

func (h *Handler) GetPayment(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var p models.Payment
	if err := h.db.WithContext(c.Request.Context()).First(&p, id).Error; err != nil {
		response.Error(c, notFound(err, "payment"))
		return
	}
	response.OK(c, p)
}

type paymentRequest struct {
	BookingID   uint    `json:"booking_id" binding:"required"`
	Amount      float64 `json:"amount" binding:"required,gt=0"`
	Method      string  `json:"method" binding:"required,oneof=cash card bank_transfer e_wallet"`
	Status      string  `json:"status" binding:"omitempty,oneof=pending completed refunded"`
	PaidAt      string  `json:"paid_at"`
	ReferenceNo string  `json:"reference_no" binding:"max=100"`
	Notes       string  `json:"notes" binding:"max=2000"`
}

func paidAt(raw string, status models.PaymentRecordStatus) (*time.Time, error) {
	if strings.TrimSpace(raw) != "" {
		t, err := parseTimestamp(raw)
		if err != nil {
			return nil, apperr.Validation("validation failed",
				map[string]any{"paid_at": "paid_at must be RFC 3339 or YYYY-MM-DD"})
		}
		return &t, nil
	}
	if status == models.PaymentRecordCompleted {
		now := time.Now().UTC()
		return &now, nil
	}
	return nil, nil
}

func (h *Handler) CreatePayment(c *gin.Context) {
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.Bind(err))
		return
	}

	status := models.PaymentRecordCompleted
	if req.Status != "" {
		status = models.PaymentRecordStatus(req.Status)
	}
	at, err := paidAt(req.PaidAt, status)
	if err != nil {
		response.Error(c, err)
		return
	}

	payment := models.Payment{PaymentData: models.PaymentData{
		BookingID:   req.BookingID,
		Amount:      req.Amount,
		Method:      models.PaymentMethod(req.Method),
		Status:      status,
		PaidAt:      at,
		ReferenceNo: strings.TrimSpace(req.ReferenceNo),
		Notes:       strings.TrimSpace(req.Notes),
	}}

	var booking models.Booking
	err = h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&booking, req.BookingID).Error; err != nil {
			return notFound(err, "booking")
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
		if err := database.SyncPaymentStatus(tx, booking.ID); err != nil {
			return err
		}
		return database.RecordAudit(tx, middleware.Actor(c), "payment.create",
			fmt.Sprintf("recorded %s payment of %.2f for booking %s", payment.Method, payment.Amount, booking.Reference))
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	h.publish(c.Request.Context(), events.PaymentRecorded, payment)
	h.invalidateDashboard(c.Request.Context())
	response.Created(c, "payment recorded", payment)
}

type updatePaymentRequest struct {
	Amount      *float64 `json:"amount" binding:"omitempty,gt=0"`
	Method      *string  `json:"method" binding:"omitempty,oneof=cash card bank_transfer e_wallet"`
	Status      *string  `json:"status" binding:"omitempty,oneof=pending completed refunded"`
	PaidAt      *string  `json:"paid_at"`
	ReferenceNo *string  `json:"reference_no" binding:"omitempty,max=100"`
	Notes       *string  `json:"notes" binding:"omitempty,max=2000"`
}

func (h *Handler) UpdatePayment(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req updatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.Bind(err))
		return
	}

	var payment models.Payment
	err = h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&payment, id).Error; err != nil {
			return notFound(err, "payment")
		}

		if req.Amount != nil {
			payment.Amount = *req.Amount
		}
		if req.Method != nil {
			payment.Method = models.PaymentMethod(*req.Method)
		}
		if req.Status != nil {
			payment.Status = models.PaymentRecordStatus(*req.Status)
		}
		if req.PaidAt != nil {
			at, err := paidAt(*req.PaidAt, payment.Status)
			if err != nil {
				return err
			}
			payment.PaidAt = at
		} else if payment.PaidAt == nil && payment.Status == models.PaymentRecordCompleted {
			now := time.Now().UTC()
			payment.PaidAt = &now
		}
		if v := trimmed(req.ReferenceNo); v != nil {
			payment.ReferenceNo = *v
		}
		if v := trimmed(req.Notes); v != nil {
			payment.Notes = *v
		}

		if err := tx.Save(&payment).Error; err != nil {
			return err
		}
		if err := database.SyncPaymentStatus(tx, payment.BookingID); err != nil {
			return err
		}
		return database.RecordAudit(tx, middleware.Actor(c), "payment.update",
			fmt.Sprintf("updated payment #%d (%s, %.2f)", payment.ID, payment.Status, payment.Amount))
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	h.invalidateDashboard(c.Request.Context())
	response.Message(c, "payment updated", payment)
}

func (h *Handler) DeletePayment(c *gin.Context) {
	h.archiveRecord(c, archive.Payments)
}
