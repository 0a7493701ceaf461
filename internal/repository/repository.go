package repository

import (
	"courtbase/internal/database"
)

type Repositories struct {
	Customers   *CustomerRepository
	Facilities  *FacilityRepository
	Equipment   *EquipmentRepository
	Bookings    *BookingRepository
	Memberships *MembershipRepository
	Waitlist    *WaitlistRepository
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Customers:   NewCustomerRepository(db),
		Facilities:  NewFacilityRepository(db),
		Equipment:   NewEquipmentRepository(db),
		Bookings:    NewBookingRepository(db),
		Memberships: NewMembershipRepository(db),
		Waitlist:    NewWaitlistRepository(db),
	}
}
