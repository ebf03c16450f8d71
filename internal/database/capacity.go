package database

import (
	"fmt"
	"time"

	"baby-bliss/internal/apperr"
	"baby-bliss/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ForUpdate locks the selected rows where the dialect supports it.
func ForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// BookedOn counts bookings holding the given day, ignoring excludeID.
// Ids are plucked rather than counted so the row lock applies on Postgres.
func BookedOn(tx *gorm.DB, day time.Time, excludeID uint) (int64, error) {
	q := ForUpdate(tx.Model(&models.Booking{})).
		Where("event_date >= ? AND event_date < ?", day, day.AddDate(0, 0, 1)).
		Where("status <> ?", models.BookingCancelled)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var ids []uint
	if err := q.Pluck("id", &ids).Error; err != nil {
		return 0, err
	}
	return int64(len(ids)), nil
}

// EnsureCapacity answers CONFLICT when day already holds maxPerDay bookings.
func EnsureCapacity(tx *gorm.DB, day time.Time, excludeID uint, maxPerDay int) error {
	booked, err := BookedOn(tx, day, excludeID)
	if err != nil {
		return err
	}
	if booked >= int64(maxPerDay) {
		return apperr.Conflict(fmt.Sprintf("%s is fully booked", day.Format("January 2, 2006")))
	}
	return nil
}
