package handlers

import (
	"errors"
	"strings"
	"time"

	"baby-bliss/internal/apperr"
	"baby-bliss/internal/database"
	"baby-bliss/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func newReference() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "BB-" + strings.ToUpper(id[:8])
}

func (h *Handler) ensureCapacity(tx *gorm.DB, day time.Time, excludeID uint) error {
	return database.EnsureCapacity(tx, day, excludeID, h.cfg.Booking.MaxPerDay)
}

func ensureNotPast(day time.Time) error {
	if day.Before(today()) {
		return apperr.Validation("event date cannot be in the past",
			map[string]any{"event_date": "event_date cannot be in the past"})
	}
	return nil
}

// linkClient finds the client by email or registers a new one.
func linkClient(tx *gorm.DB, name, email, phone string) (*models.Client, error) {
	var client models.Client
	err := tx.Where("LOWER(email) = LOWER(?)", email).First(&client).Error
	if err == nil {
		return &client, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	client = models.Client{ClientData: models.ClientData{FullName: name, Email: email, Phone: phone}}
	if err := tx.Create(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}
