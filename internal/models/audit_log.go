package models

import "time"

// AuditLog is append-only. The user is denormalized so entries survive
// account deletion.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	UserID   *uint  `gorm:"index" json:"user_id"`
	Username string `gorm:"size:50" json:"username"`

	Activity  string `gorm:"size:100;not null;index" json:"activity"` // "booking.create", "archive.restore", ...
	Details   string `gorm:"type:text" json:"details"`
	IPAddress string `gorm:"size:45" json:"ip_address"`
}
