package models

import "time"

// ArchiveInfo is the deletion metadata carried by every archived_* row.
// ParentKind/ParentID are set when the row was archived as part of its
// parent (a booking's payments), so restoring the parent brings it back.
type ArchiveInfo struct {
	Reason        string    `gorm:"size:255;not null" json:"reason"`
	DeletedBy     *uint     `json:"deleted_by"`
	DeletedByName string    `gorm:"size:50" json:"deleted_by_name"`
	DeletedAt     time.Time `gorm:"not null;index" json:"deleted_at"`
	ParentKind    string    `gorm:"size:20" json:"parent_kind,omitempty"`
	ParentID      *uint     `gorm:"index" json:"parent_id,omitempty"`
}

type ArchivedClient struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	OriginalID uint `gorm:"not null;index" json:"original_id"`
	ClientData
	OriginalCreatedAt time.Time `json:"original_created_at"`
	ArchiveInfo
}

type ArchivedBooking struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	OriginalID uint `gorm:"not null;index" json:"original_id"`
	BookingData
	OriginalCreatedAt time.Time `json:"original_created_at"`
	ArchiveInfo
}

type ArchivedPayment struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	OriginalID uint `gorm:"not null;index" json:"original_id"`
	PaymentData
	OriginalCreatedAt time.Time `json:"original_created_at"`
	ArchiveInfo
}

type ArchivedExpense struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	OriginalID uint `gorm:"not null;index" json:"original_id"`
	ExpenseData
	OriginalCreatedAt time.Time `json:"original_created_at"`
	ArchiveInfo
}

type ArchivedMessage struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	OriginalID uint `gorm:"not null;index" json:"original_id"`
	MessageData
	OriginalCreatedAt time.Time `json:"original_created_at"`
	ArchiveInfo
}

// All lists every model for AutoMigrate, parents before children.
func All() []any {
	return []any{
		&User{},
		&Client{},
		&Booking{},
		&Payment{},
		&Expense{},
		&Message{},
		&AuditLog{},
		&ArchivedClient{},
		&ArchivedBooking{},
		&ArchivedPayment{},
		&ArchivedExpense{},
		&ArchivedMessage{},
	}
}
