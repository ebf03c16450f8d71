package database

import (
	"baby-bliss/internal/models"

	"gorm.io/gorm"
)

// Actor identifies who performed an audited action.
type Actor struct {
	UserID   uint
	Username string
	IP       string
}

// RecordAudit appends an audit row using tx, so callers inside a
// transaction get the entry committed or rolled back with their change.
func RecordAudit(tx *gorm.DB, actor Actor, activity, details string) error {
	entry := models.AuditLog{
		Username:  actor.Username,
		Activity:  activity,
		Details:   details,
		IPAddress: actor.IP,
	}
	if actor.UserID != 0 {
		uid := actor.UserID
		entry.UserID = &uid
	}
	return tx.Create(&entry).Error
}
