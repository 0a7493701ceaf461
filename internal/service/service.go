package service

import (
	"courtbase/internal/cache"
	"courtbase/internal/messaging"
	"courtbase/internal/repository"
	"courtbase/internal/search"
)

type Services struct {
	Facilities  *FacilityService
	Equipment   *EquipmentService
	Bookings    *BookingService
	Memberships *MembershipService
	Waitlist    *WaitlistService
}

// NewServices wires the service layer. The search and cache clients are
// optional: a nil search client falls back to SQL search, a nil cache client
// skips availability invalidation.
func NewServices(repos *repository.Repositories, natsClient *messaging.NATSClient, esClient *search.Client, valkeyClient *cache.ValkeyClient, publicBaseURL string) *Services {
	facilityService := NewFacilityService(repos.Facilities, repos.Bookings, esClient)
	equipmentService := NewEquipmentService(repos.Equipment, repos.Facilities)
	waitlistService := NewWaitlistService(repos.Waitlist, repos.Facilities, repos.Customers, natsClient, publicBaseURL)
	bookingService := NewBookingService(repos, natsClient, valkeyClient, waitlistService)
	membershipService := NewMembershipService(repos.Memberships, repos.Customers, natsClient)

	return &Services{
		Facilities:  facilityService,
		Equipment:   equipmentService,
		Bookings:    bookingService,
		Memberships: membershipService,
		Waitlist:    waitlistService,
	}
}
