package archive

import (
	"fmt"
	"time"

	"baby-bliss/internal/apperr"
	"baby-bliss/internal/database"
	"baby-bliss/internal/models"

	"gorm.io/gorm"
)

const parentBooking = "booking"

type clientHandler struct{}

func (clientHandler) resource() string { return "client" }

func (h clientHandler) archive(tx *gorm.DB, id uint, m Meta, at time.Time) (Result, error) {
	var c models.Client
	if err := first(tx, &c, id, h.resource()); err != nil {
		return Result{}, err
	}

	var live int64
	if err := tx.Model(&models.Booking{}).Where("client_id = ?", c.ID).Count(&live).Error; err != nil {
		return Result{}, err
	}
	if live > 0 {
		return Result{}, apperr.Conflict(fmt.Sprintf("client has %d active bookings; archive them first", live))
	}

	row := models.ArchivedClient{
		OriginalID:        c.ID,
		ClientData:        c.ClientData,
		OriginalCreatedAt: c.CreatedAt,
		ArchiveInfo:       newInfo(m, at),
	}
	if err := tx.Create(&row).Error; err != nil {
		return Result{}, err
	}
	if err := tx.Delete(&models.Client{}, c.ID).Error; err != nil {
		return Result{}, err
	}
	return Result{OriginalID: c.ID, ArchivedID: row.ID, Label: c.FullName}, nil
}

func (h clientHandler) restore(tx *gorm.DB, archivedID uint, _ Rules) (Result, error) {
	var row models.ArchivedClient
	if err := first(tx, &row, archivedID, "archived client"); err != nil {
		return Result{}, err
	}
	if err := ensureFree(tx, &models.Client{}, row.OriginalID, h.resource()); err != nil {
		return Result{}, err
	}
	if row.Email != "" {
		var dup int64
		if err := tx.Model(&models.Client{}).Where("LOWER(email) = LOWER(?)", row.Email).Count(&dup).Error; err != nil {
			return Result{}, err
		}
		if dup > 0 {
			return Result{}, apperr.Conflict(fmt.Sprintf("an active client already uses %s", row.Email))
		}
	}

	c := models.Client{ID: row.OriginalID, ClientData: row.ClientData, CreatedAt: row.OriginalCreatedAt}
	if err := tx.Create(&c).Error; err != nil {
		return Result{}, err
	}
	if err := tx.Delete(&row).Error; err != nil {
		return Result{}, err
	}
	return Result{OriginalID: c.ID, ArchivedID: row.ID, Label: c.FullName}, nil
}

func (clientHandler) purge(tx *gorm.DB, archivedID uint) (Result, error) {
	var row models.ArchivedClient
	if err := first(tx, &row, archivedID, "archived client"); err != nil {
		return Result{}, err
	}
	if err := tx.Delete(&row).Error; err != nil {
		return Result{}, err
	}
	return Result{OriginalID: row.OriginalID, ArchivedID: row.ID, Label: row.FullName}, nil
}

func (clientHandler) list(db *gorm.DB, q ListQuery) (any, int64, error) {
	return listArchived[models.ArchivedClient](db, q, "full_name", "email", "phone")
}

type bookingHandler struct{}

func (bookingHandler) resource() string { return "booking" }

func (h bookingHandler) archive(tx *gorm.DB, id uint, m Meta, at time.Time) (Result, error) {
	var b models.Booking
	if err := first(tx, &b, id, h.resource()); err != nil {
		return Result{}, err
	}

	var payments []models.Payment
	if err := tx.Where("booking_id = ?", b.ID).Order("id").Find(&payments).Error; err != nil {
		return Result{}, err
	}
	for _, p := range payments {
		ai := newInfo(m, at)
		ai.ParentKind = parentBooking
		parentID := b.ID
		ai.ParentID = &parentID

		child := models.ArchivedPayment{
			OriginalID:        p.ID,
			PaymentData:       p.PaymentData,
			OriginalCreatedAt: p.CreatedAt,
			ArchiveInfo:       ai,
		}
		if err := tx.Create(&child).Error; err != nil {
			return Result{}, err
		}
	}
	if len(payments) > 0 {
		if err := tx.Where("booking_id = ?", b.ID).Delete(&models.Payment{}).Error; err != nil {
			return Result{}, err
		}
	}

	row := models.ArchivedBooking{
		OriginalID:        b.ID,
		BookingData:       b.BookingData,
		OriginalCreatedAt: b.CreatedAt,
		ArchiveInfo:       newInfo(m, at),
	}
	if err := tx.Create(&row).Error; err != nil {
		return Result{}, err
	}
	if err := tx.Delete(&models.Booking{}, b.ID).Error; err != nil {
		return Result{}, err
	}
	return Result{OriginalID: b.ID, ArchivedID: row.ID, Label: b.Reference, Children: len(payments)}, nil
}

func (h bookingHandler) restore(tx *gorm.DB, archivedID uint, rules Rules) (Result, error) {
	var row models.ArchivedBooking
	if err := first(tx, &row, archivedID, "archived booking"); err != nil {
		return Result{}, err
	}
	if err := ensureFree(tx, &models.Booking{}, row.OriginalID, h.resource()); err != nil {
		return Result{}, err
	}
	if row.ClientID != nil {
		ok, err := exists(tx, &models.Client{}, *row.ClientID)
		if err != nil {
			return Result{}, err
		}
		if !ok {
			return Result{}, apperr.Conflict("the booking's client is archived; restore the client first")
		}
	}
	var dup int64
	if err := tx.Model(&models.Booking{}).Where("reference = ?", row.Reference).Count(&dup).Error; err != nil {
		return Result{}, err
	}
	if dup > 0 {
		return Result{}, apperr.Conflict(fmt.Sprintf("an active booking already uses reference %s", row.Reference))
	}
	if rules.MaxPerDay > 0 && row.Occupies() {
		if err := database.EnsureCapacity(tx, row.EventDate, 0, rules.MaxPerDay); err != nil {
			return Result{}, err
		}
	}

	b := models.Booking{ID: row.OriginalID, BookingData: row.BookingData, CreatedAt: row.OriginalCreatedAt}
	if err := tx.Create(&b).Error; err != nil {
		return Result{}, err
	}

	var children []models.ArchivedPayment
	if err := tx.Where("parent_kind = ? AND parent_id = ?", parentBooking, row.OriginalID).
		Order("id").Find(&children).Error; err != nil {
		return Result{}, err
	}
	for _, child := range children {
		if err := ensureFree(tx, &models.Payment{}, child.OriginalID, "payment"); err != nil {
			return Result{}, err
		}
		p := models.Payment{ID: child.OriginalID, PaymentData: child.PaymentData, CreatedAt: child.OriginalCreatedAt}
		if err := tx.Create(&p).Error; err != nil {
			return Result{}, err
		}
		if err := tx.Delete(&child).Error; err != nil {
			return Result{}, err
		}
	}

	if err := database.SyncPaymentStatus(tx, b.ID); err != nil {
		return Result{}, err
	}
	if err := tx.Delete(&row).Error; err != nil {
		return Result{}, err
	}
	return Result{OriginalID: b.ID, ArchivedID: row.ID, Label: b.Reference, Children: len(children)}, nil
}

func (bookingHandler) purge(tx *gorm.DB, archivedID uint) (Result, error) {
	var row models.ArchivedBooking
	if err := first(tx, &row, archivedID, "archived booking"); err != nil {
		return Result{}, err
	}
	children := tx.Where("booking_id = ?", row.OriginalID).Delete(&models.ArchivedPayment{})
	if children.Error != nil {
		return Result{}, children.Error
	}
	if err := tx.Delete(&row).Error; err != nil {
		return Result{}, err
	}
	return Result{OriginalID: row.OriginalID, ArchivedID: row.ID, Label: row.Reference, Children: int(children.RowsAffected)}, nil
}

func (bookingHandler) list(db *gorm.DB, q ListQuery) (any, int64, error) {
	return listArchived[models.ArchivedBooking](db, q, "reference", "client_name", "client_email", "venue")
}

type paymentHandler struct{}

func (paymentHandler) resource() string { return "payment" }

func paymentLabel(id uint, amount float64) string {
	return fmt.Sprintf("#%d (%.2f)", id, amount)
}

func (h paymentHandler) archive(tx *gorm.DB, id uint, m Meta, at time.Time) (Result, error) {
	var p models.Payment
	if err := first(tx, &p, id, h.resource()); err != nil {
		return Result{}, err
	}

	row := models.ArchivedPayment{
		OriginalID:        p.ID,
		PaymentData:       p.PaymentData,
		OriginalCreatedAt: p.CreatedAt,
		ArchiveInfo:       newInfo(m, at),
	}
	if err := tx.Create(&row).Error; err != nil {
		return Result{}, err
	}
	if err := tx.Delete(&models.Payment{}, p.ID).Error; err != nil {
		return Result{}, err
	}
	if err := database.SyncPaymentStatus(tx, p.BookingID); err != nil {
		return Result{}, err
	}
	return Result{OriginalID: p.ID, ArchivedID: row.ID, Label: paymentLabel(p.ID, p.Amount)}, nil
}

func (h paymentHandler) restore(tx *gorm.DB, archivedID uint, _ Rules) (Result, error) {
	var row models.ArchivedPayment
	if err := first(tx, &row, archivedID, "archived payment"); err != nil {
		return Result{}, err
	}
	if err := ensureFree(tx, &models.Payment{}, row.OriginalID, h.resource()); err != nil {
		return Result{}, err
	}
	ok, err := exists(tx, &models.Booking{}, row.BookingID)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return Result{}, apperr.Conflict("the payment's booking is archived; restore the booking first")
	}

	p := models.Payment{ID: row.OriginalID, PaymentData: row.PaymentData, CreatedAt: row.OriginalCreatedAt}
	if err := tx.Create(&p).Error; err != nil {
		return Result{}, err
	}
	if err := tx.Delete(&row).Error; err != nil {
		return Result{}, err
	}
	if err := database.SyncPaymentStatus(tx, p.BookingID); err != nil {
		return Result{}, err
	}
	return Result{OriginalID: p.ID, ArchivedID: row.ID, Label: paymentLabel(p.ID, p.Amount)}, nil
}

func (paymentHandler) purge(tx *gorm.DB, archivedID uint) (Result, error) {
	var row models.ArchivedPayment
	if err := first(tx, &row, archivedID, "archived payment"); err != nil {
		return Result{}, err
	}
	if err := tx.Delete(&row).Error; err != nil {
		return Result{}, err
	}
	return Result{OriginalID: row.OriginalID, ArchivedID: row.ID, Label: paymentLabel(row.OriginalID, row.Amount)}, nil
}

func (paymentHandler) list(db *gorm.DB, q ListQuery) (any, int64, error) {
	return listArchived[models.ArchivedPayment](db, q, "reference_no", "notes")
}

type expenseHandler struct{}

func (expenseHandler) resource() string { return "expense" }

func (h expenseHandler) archive(tx *gorm.DB, id uint, m Meta, at time.Time) (Result, error) {
	var e models.Expense
	if err := first(tx, &e, id, h.resource()); err != nil {
		return Result{}, err
	}
	row := models.ArchivedExpense{
		OriginalID:        e.ID,
		ExpenseData:       e.ExpenseData,
		OriginalCreatedAt: e.CreatedAt,
		ArchiveInfo:       newInfo(m, at),
	}
	if err := tx.Create(&row).Error; err != nil {
		return Result{}, err
	}
	if err := tx.Delete(&models.Expense{}, e.ID).Error; err != nil {
		return Result{}, err
	}
	return Result{OriginalID: e.ID, ArchivedID: row.ID, Label: e.Description}, nil
}

func (h expenseHandler) restore(tx *gorm.DB, archivedID uint, _ Rules) (Result, error) {
	var row models.ArchivedExpense
	if err := first(tx, &row, archivedID, "archived expense"); err != nil {
		return Result{}, err
	}
	if err := ensureFree(tx, &models.Expense{}, row.OriginalID, h.resource()); err != nil {
		return Result{}, err
	}
	e := models.Expense{ID: row.OriginalID, ExpenseData: row.ExpenseData, CreatedAt: row.OriginalCreatedAt}
	if err := tx.Create(&e).Error; err != nil {
		return Result{}, err
	}
	if err := tx.Delete(&row).Error; err != nil {
		return Result{}, err
	}
	return Result{OriginalID: e.ID, ArchivedID: row.ID, Label: e.Description}, nil
}

func (expenseHandler) purge(tx *gorm.DB, archivedID uint) (Result, error) {
	var row models.ArchivedExpense
	if err := first(tx, &row, archivedID, "archived expense"); err != nil {
		return Result{}, err
	}
	if err := tx.Delete(&row).Error; err != nil {
		return Result{}, err
	}
	return Result{OriginalID: row.OriginalID, ArchivedID: row.ID, Label: row.Description}, nil
}

func (expenseHandler) list(db *gorm.DB, q ListQuery) (any, int64, error) {
	return listArchived[models.ArchivedExpense](db, q, "description", "vendor", "category")
}

type messageHandler struct{}

func (messageHandler) resource() string { return "message" }

func messageLabel(name, subject string) string {
	if subject == "" {
		return "from " + name
	}
	return fmt.Sprintf("%q from %s", subject, name)
}

func (h messageHandler) archive(tx *gorm.DB, id uint, m Meta, at time.Time) (Result, error) {
	var msg models.Message
	if err := first(tx, &msg, id, h.resource()); err != nil {
		return Result{}, err
	}
	row := models.ArchivedMessage{
		OriginalID:        msg.ID,
		MessageData:       msg.MessageData,
		OriginalCreatedAt: msg.CreatedAt,
		ArchiveInfo:       newInfo(m, at),
	}
	if err := tx.Create(&row).Error; err != nil {
		return Result{}, err
	}
	if err := tx.Delete(&models.Message{}, msg.ID).Error; err != nil {
		return Result{}, err
	}
	return Result{OriginalID: msg.ID, ArchivedID: row.ID, Label: messageLabel(msg.Name, msg.Subject)}, nil
}

func (h messageHandler) restore(tx *gorm.DB, archivedID uint, _ Rules) (Result, error) {
	var row models.ArchivedMessage
	if err := first(tx, &row, archivedID, "archived message"); err != nil {
		return Result{}, err
	}
	if err := ensureFree(tx, &models.Message{}, row.OriginalID, h.resource()); err != nil {
		return Result{}, err
	}
	msg := models.Message{ID: row.OriginalID, MessageData: row.MessageData, CreatedAt: row.OriginalCreatedAt}
	if err := tx.Create(&msg).Error; err != nil {
		return Result{}, err
	}
	if err := tx.Delete(&row).Error; err != nil {
		return Result{}, err
	}
	return Result{OriginalID: msg.ID, ArchivedID: row.ID, Label: messageLabel(msg.Name, msg.Subject)}, nil
}

func (messageHandler) purge(tx *gorm.DB, archivedID uint) (Result, error) {
	var row models.ArchivedMessage
	if err := first(tx, &row, archivedID, "archived message"); err != nil {
		return Result{}, err
	}
	if err := tx.Delete(&row).Error; err != nil {
		return Result{}, err
	}
	return Result{OriginalID: row.OriginalID, ArchivedID: row.ID, Label: messageLabel(row.Name, row.Subject)}, nil
}

func (messageHandler) list(db *gorm.DB, q ListQuery) (any, int64, error) {
	return listArchived[models.ArchivedMessage](db, q, "name", "email", "subject")
}
