package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDerivePaymentStatus(t *testing.T) {
	tests := []struct {
		name  string
		total float64
		paid  float64
		want  PaymentStatus
	}{
		{"nothing paid", 10000, 0, PaymentUnpaid},
		{"deposit", 10000, 2500, PaymentPartial},
		{"exact", 10000, 10000, PaymentPaid},
		{"overpaid", 10000, 12000, PaymentPaid},
		{"rounding", 100.10, 100.099, PaymentPaid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DerivePaymentStatus(tt.total, tt.paid))
		})
	}
}

func TestCatalogue(t *testing.T) {
	c := NewCatalogue(100, 200, 300)

	price, ok := c.Price(PackagePremium)
	assert.True(t, ok)
	assert.Equal(t, 200.0, price)

	_, ok = c.Price(Package("platinum"))
	assert.False(t, ok)

	list := c.List()
	assert.Len(t, list, 3)
	list[0].Price = 1
	again, _ := c.Price(PackageBasic)
	assert.Equal(t, 100.0, again, "List returns a copy")
}

func TestBookingOccupies(t *testing.T) {
	b := BookingData{Status: BookingPending}
	assert.True(t, b.Occupies())
	b.Status = BookingCancelled
	assert.False(t, b.Occupies())
}
