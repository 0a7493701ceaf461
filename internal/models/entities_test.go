package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultDiscountForMembership(t *testing.T) {
	assert.Equal(t, 5.0, DefaultDiscountForMembership(MembershipTypeBasic))
	assert.Equal(t, 15.0, DefaultDiscountForMembership(MembershipTypePremium))
	assert.Equal(t, 25.0, DefaultDiscountForMembership(MembershipTypeVIP))
	assert.Equal(t, 0.0, DefaultDiscountForMembership("unknown"))
}

func TestMembershipIsCurrentlyActive(t *testing.T) {
	day := func(s string) time.Time {
		d, err := time.Parse("2006-01-02", s)
		if err != nil {
			t.Fatalf("bad date %s: %v", s, err)
		}
		return d
	}

	membership := Membership{
		Status:        MembershipStatusActive,
		PaymentStatus: PaymentStatusPaid,
		StartDate:     day("2026-01-01"),
		EndDate:       day("2026-01-31"),
	}

	assert.True(t, membership.IsCurrentlyActive(day("2026-01-15")))
	// Границы диапазона включительно
	assert.True(t, membership.IsCurrentlyActive(day("2026-01-01")))
	assert.True(t, membership.IsCurrentlyActive(day("2026-01-31")))
	// Сравнение по дате, время суток не играет роли
	assert.True(t, membership.IsCurrentlyActive(day("2026-01-31").Add(23*time.Hour)))

	assert.False(t, membership.IsCurrentlyActive(day("2025-12-31")))
	assert.False(t, membership.IsCurrentlyActive(day("2026-02-01")))

	unpaid := membership
	unpaid.PaymentStatus = PaymentStatusPending
	assert.False(t, unpaid.IsCurrentlyActive(day("2026-01-15")))

	cancelled := membership
	cancelled.Status = MembershipStatusCancelled
	assert.False(t, cancelled.IsCurrentlyActive(day("2026-01-15")))
}

func TestEquipmentQuantityInUse(t *testing.T) {
	equipment := Equipment{TotalQuantity: 10, QuantityAvailable: 7}
	assert.Equal(t, 3, equipment.QuantityInUse())
}
