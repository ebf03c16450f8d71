package models

import "time"

type ExpenseCategory string

const (
	ExpenseSupplies  ExpenseCategory = "supplies"
	ExpenseVenue     ExpenseCategory = "venue"
	ExpenseStaff     ExpenseCategory = "staff"
	ExpenseMarketing ExpenseCategory = "marketing"
	ExpenseTransport ExpenseCategory = "transport"
	ExpenseUtilities ExpenseCategory = "utilities"
	ExpenseOther     ExpenseCategory = "other"
)

type ExpenseData struct {
	Category    ExpenseCategory `gorm:"type:varchar(20);not null;index" json:"category"`
	Description string          `gorm:"size:255;not null" json:"description"`
	Amount      float64         `gorm:"type:decimal(12,2);not null" json:"amount"`
	ExpenseDate time.Time       `gorm:"not null;index" json:"expense_date"`
	Vendor      string          `gorm:"size:150" json:"vendor"`
	Notes       string          `gorm:"type:text" json:"notes"`
}

type Expense struct {
	ID uint `gorm:"primaryKey" json:"id"`
	ExpenseData
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
