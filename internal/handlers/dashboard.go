package handlers

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"baby-bliss/internal/apperr"
	"baby-bliss/internal/models"
	"baby-bliss/internal/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dashboardTTL = time.Minute

type dashboardStats struct {
	TotalBookings    int64                          `json:"total_bookings"`
	BookingsByStatus map[models.BookingStatus]int64 `json:"bookings_by_status"`
	UpcomingBookings int64                          `json:"upcoming_bookings"`
	TotalClients     int64                          `json:"total_clients"`
	Revenue          float64                        `json:"revenue"`
	Expenses         float64                        `json:"expenses"`
	NetIncome        float64                        `json:"net_income"`
	OutstandingTotal float64                        `json:"outstanding_total"`
	UnreadMessages   int64                          `json:"unread_messages"`
	Upcoming         []models.Booking               `json:"upcoming"`
	GeneratedAt      time.Time                      `json:"generated_at"`
}

func (h *Handler) DashboardStats(c *gin.Context) {
	ctx := c.Request.Context()

	if raw, ok, err := h.cache.Get(ctx, dashboardStatsKey); err != nil {
		h.logger.Warn("dashboard cache read failed", zap.Error(err))
	} else if ok {
		var cached dashboardStats
		if err := json.Unmarshal(raw, &cached); err == nil {
			response.OK(c, cached)
			return
		}
	}

	stats, err := h.computeStats(ctx)
	if err != nil {
		response.Error(c, apperr.Internal("failed to load dashboard", err))
		return
	}

	if raw, err := json.Marshal(stats); err == nil {
		if err := h.cache.Set(ctx, dashboardStatsKey, raw, dashboardTTL); err != nil {
			h.logger.Warn("dashboard cache write failed", zap.Error(err))
		}
	}
	response.OK(c, stats)
}

func (h *Handler) computeStats(ctx context.Context) (*dashboardStats, error) {
	db := h.db.WithContext(ctx)
	stats := &dashboardStats{
		BookingsByStatus: map[models.BookingStatus]int64{
			models.BookingPending:   0,
			models.BookingConfirmed: 0,
			models.BookingCompleted: 0,
			models.BookingCancelled: 0,
		},
		Upcoming:    []models.Booking{},
		GeneratedAt: time.Now().UTC(),
	}

	var byStatus []struct {
		Status models.BookingStatus
		N      int64
	}
	if err := db.Model(&models.Booking{}).Select("status, COUNT(*) AS n").Group("status").Scan(&byStatus).Error; err != nil {
		return nil, err
	}
	for _, r := range byStatus {
		stats.BookingsByStatus[r.Status] = r.N
		stats.TotalBookings += r.N
	}

	upcoming := db.Model(&models.Booking{}).
		Where("event_date >= ?", today()).
		Where("status IN ?", []models.BookingStatus{models.BookingPending, models.BookingConfirmed}).
		Session(&gorm.Session{})
	if err := upcoming.Count(&stats.UpcomingBookings).Error; err != nil {
		return nil, err
	}
	if err := upcoming.Order("event_date ASC").Order("id ASC").Limit(5).Find(&stats.Upcoming).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&models.Client{}).Count(&stats.TotalClients).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Payment{}).
		Where("status = ?", models.PaymentRecordCompleted).
		Select("COALESCE(SUM(amount), 0)").Scan(&stats.Revenue).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Expense{}).
		Select("COALESCE(SUM(amount), 0)").Scan(&stats.Expenses).Error; err != nil {
		return nil, err
	}
	stats.NetIncome = stats.Revenue - stats.Expenses

	var billed float64
	if err := db.Model(&models.Booking{}).
		Where("status <> ?", models.BookingCancelled).
		Select("COALESCE(SUM(total_amount), 0)").Scan(&billed).Error; err != nil {
		return nil, err
	}
	var collected float64
	if err := db.Model(&models.Payment{}).
		Joins("JOIN bookings ON bookings.id = payments.booking_id").
		Where("payments.status = ? AND bookings.status <> ?", models.PaymentRecordCompleted, models.BookingCancelled).
		Select("COALESCE(SUM(payments.amount), 0)").Scan(&collected).Error; err != nil {
		return nil, err
	}
	if billed > collected {
		stats.OutstandingTotal = billed - collected
	}

	if err := db.Model(&models.Message{}).Where("status = ?", models.MessageUnread).Count(&stats.UnreadMessages).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

type monthBucket struct {
	Month    int     `json:"month"`
	Bookings int64   `json:"bookings"`
	Revenue  float64 `json:"revenue"`
	Expenses float64 `json:"expenses"`
	Net      float64 `json:"net"`
}

// DashboardMonthly buckets a year by month. Rows are grouped in Go so the
// query stays portable across MySQL, Postgres and SQLite.
func (h *Handler) DashboardMonthly(c *gin.Context) {
	year := time.Now().UTC().Year()
	if s := c.Query("year"); s != "" {
		y, err := strconv.Atoi(s)
		if err != nil || y < 2000 || y > 2100 {
			response.Error(c, apperr.InvalidInput("year must be between 2000 and 2100"))
			return
		}
		year = y
	}
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)

	buckets := make([]monthBucket, 12)
	for i := range buckets {
		buckets[i].Month = i + 1
	}

	db := h.db.WithContext(c.Request.Context())

	var bookings []models.Booking
	if err := db.Select("event_date").
		Where("event_date >= ? AND event_date < ?", start, end).
		Where("status <> ?", models.BookingCancelled).
		Find(&bookings).Error; err != nil {
		response.Error(c, err)
		return
	}
	for _, b := range bookings {
		buckets[b.EventDate.UTC().Month()-1].Bookings++
	}

	var payments []models.Payment
	if err := db.Select("amount", "paid_at").
		Where("status = ? AND paid_at >= ? AND paid_at < ?", models.PaymentRecordCompleted, start, end).
		Find(&payments).Error; err != nil {
		response.Error(c, err)
		return
	}
	for _, p := range payments {
		if p.PaidAt != nil {
			buckets[p.PaidAt.UTC().Month()-1].Revenue += p.Amount
		}
	}

	var expenses []models.Expense
	if err := db.Select("amount", "expense_date").
		Where("expense_date >= ? AND expense_date < ?", start, end).
		Find(&expenses).Error; err != nil {
		response.Error(c, err)
		return
	}
	for _, e := range expenses {
		buckets[e.ExpenseDate.UTC().Month()-1].Expenses += e.Amount
	}

	for i := range buckets {
		buckets[i].Net = buckets[i].Revenue - buckets[i].Expenses
	}
	response.OK(c, gin.H{"year": year, "months": buckets})
}

type packageShare struct {
	Package models.Package `json:"package"`
	Name    string         `json:"name"`
	Count   int64          `json:"count"`
	Revenue float64        `json:"revenue"`
}

// DashboardPackages reports how non-cancelled bookings split across tiers.
func (h *Handler) DashboardPackages(c *gin.Context) {
	var rows []struct {
		Package models.Package
		N       int64
		Total   float64
	}
	if err := h.db.WithContext(c.Request.Context()).Model(&models.Booking{}).
		Select("package, COUNT(*) AS n, COALESCE(SUM(total_amount), 0) AS total").
		Where("status <> ?", models.BookingCancelled).
		Group("package").
		Scan(&rows).Error; err != nil {
		response.Error(c, err)
		return
	}

	out := make([]packageShare, 0, 3)
	for _, p := range h.catalogue.List() {
		share := packageShare{Package: p.Code, Name: p.Name}
		for _, r := range rows {
			if r.Package == p.Code {
				share.Count = r.N
				share.Revenue = r.Total
			}
		}
		out = append(out, share)
	}
	response.OK(c, out)
}
