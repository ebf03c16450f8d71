package models

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

const (
	SourceWebsite = "website"
	SourceAdmin   = "admin"
)

// BookingData holds the columns shared by bookings and archived_bookings.
type BookingData struct {
	Reference       string        `gorm:"size:20;uniqueIndex;not null" json:"reference"`
	ClientID        *uint         `gorm:"index" json:"client_id"`
	ClientName      string        `gorm:"size:150;not null" json:"client_name"`
	ClientEmail     string        `gorm:"size:150;not null;index" json:"client_email"`
	ClientPhone     string        `gorm:"size:40" json:"client_phone"`
	EventDate       time.Time     `gorm:"not null;index" json:"event_date"`
	EventTime       string        `gorm:"size:5" json:"event_time"` // HH:MM
	Venue           string        `gorm:"size:255;not null" json:"venue"`
	GuestCount      int           `json:"guest_count"`
	Package         Package       `gorm:"type:varchar(20);not null" json:"package"`
	TotalAmount     float64       `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	Status          BookingStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	PaymentStatus   PaymentStatus `gorm:"type:varchar(20);not null" json:"payment_status"`
	SpecialRequests string        `gorm:"type:text" json:"special_requests"`
	Source          string        `gorm:"size:20" json:"source"`
}

type Booking struct {
	ID uint `gorm:"primaryKey" json:"id"`
	BookingData
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Client   *Client   `json:"client,omitempty"`
	Payments []Payment `json:"payments,omitempty"`
}

// Occupies reports whether the booking holds its date against the daily capacity.
func (b *BookingData) Occupies() bool {
	return b.Status != BookingCancelled
}

// CanTransitionBooking is the booking status table. Admins may jump between
// any two distinct statuses; staff follow the normal lifecycle.
func CanTransitionBooking(role UserRole, current, next BookingStatus) bool {
	if current == next || !next.Valid() {
		return false
	}

	switch role {

	case RoleAdmin:
		return true

	case RoleStaff:
		switch current {
		case BookingPending:
			return next == BookingConfirmed || next == BookingCancelled
		case BookingConfirmed:
			return next == BookingCompleted || next == BookingCancelled
		case BookingCancelled:
			return next == BookingPending
		}
		return false

	default:
		return false
	}
}
