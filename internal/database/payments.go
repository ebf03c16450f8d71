package database

import (
	"errors"
	"fmt"

	"baby-bliss/internal/models"

	"gorm.io/gorm"
)

// SyncPaymentStatus recomputes a booking's payment status from the sum of
// its completed payments. A missing booking is not an error.
func SyncPaymentStatus(tx *gorm.DB, bookingID uint) error {
	var booking models.Booking
	err := tx.Select("id", "total_amount").First(&booking, bookingID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load booking %d: %w", bookingID, err)
	}

	paid, err := CompletedTotal(tx, bookingID)
	if err != nil {
		return err
	}

	status := models.DerivePaymentStatus(booking.TotalAmount, paid)
	return tx.Model(&models.Booking{}).
		Where("id = ?", bookingID).
		Update("payment_status", status).Error
}

func CompletedTotal(tx *gorm.DB, bookingID uint) (float64, error) {
	var paid float64
	err := tx.Model(&models.Payment{}).
		Where("booking_id = ? AND status = ?", bookingID, models.PaymentRecordCompleted).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&paid).Error
	if err != nil {
		return 0, fmt.Errorf("sum payments for booking %d: %w", bookingID, err)
	}
	return paid, nil
}
