package models

import "time"

// ClientData holds the columns shared by clients and archived_clients.
type ClientData struct {
	FullName string `gorm:"size:150;not null" json:"full_name"`
	Email    string `gorm:"size:150;index" json:"email"`
	Phone    string `gorm:"size:40" json:"phone"`
	Address  string `gorm:"size:255" json:"address"`
	Notes    string `gorm:"type:text" json:"notes"`
}

type Client struct {
	ID uint `gorm:"primaryKey" json:"id"`
	ClientData
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Bookings []Booking `json:"bookings,omitempty"`
}
