package models

import "time"

type PaymentMethod string

const (
	MethodCash         PaymentMethod = "cash"
	MethodCard         PaymentMethod = "card"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodEWallet      PaymentMethod = "e_wallet"
)

type PaymentRecordStatus string

const (
	PaymentRecordPending   PaymentRecordStatus = "pending"
	PaymentRecordCompleted PaymentRecordStatus = "completed"
	PaymentRecordRefunded  PaymentRecordStatus = "refunded"
)

// PaymentStatus is the settlement state of a booking, derived from its payments.
type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "unpaid"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

// PaymentData holds the columns shared by payments and archived_payments.
type PaymentData struct {
	BookingID   uint                `gorm:"not null;index" json:"booking_id"`
	Amount      float64             `gorm:"type:decimal(12,2);not null" json:"amount"`
	Method      PaymentMethod       `gorm:"type:varchar(20);not null" json:"method"`
	Status      PaymentRecordStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	PaidAt      *time.Time          `json:"paid_at"`
	ReferenceNo string              `gorm:"size:100" json:"reference_no"`
	Notes       string              `gorm:"type:text" json:"notes"`
}

type Payment struct {
	ID uint `gorm:"primaryKey" json:"id"`
	PaymentData
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DerivePaymentStatus compares the completed amount against the booking total.
func DerivePaymentStatus(total, paid float64) PaymentStatus {
	switch {
	case paid <= 0:
		return PaymentUnpaid
	case paid+0.005 >= total:
		return PaymentPaid
	default:
		return PaymentPartial
	}
}
