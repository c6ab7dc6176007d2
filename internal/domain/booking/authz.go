package booking

import (
	"github.com/google/uuid"

	"github.com/stayhub/service-booking/internal/auth"
)

// Caller is the resolved identity of the requesting user.
type Caller struct {
	UserID uuid.UUID
	Role   string
}

// Access is the result of the single authorization predicate every
// mutating operation consumes.
type Access struct {
	IsGuestOwner bool
	IsHostOwner  bool
	IsAdmin      bool
}

// CanManage reports whether the caller may act on the booking at all.
func (a Access) CanManage() bool {
	return a.IsGuestOwner || a.IsHostOwner || a.IsAdmin
}

// CanAdminister reports whether the caller may update status or payment
// state; guests cannot self-promote their own bookings.
func (a Access) CanAdminister() bool {
	return a.IsHostOwner || a.IsAdmin
}

// ResolveAccess evaluates the caller against a booking and the owner of
// its hotel.
func ResolveAccess(caller Caller, b *Booking, hotelOwnerID uuid.UUID) Access {
	return Access{
		IsGuestOwner: caller.UserID == b.UserID(),
		IsHostOwner:  caller.UserID == hotelOwnerID,
		IsAdmin:      caller.Role == auth.RoleAdmin,
	}
}
