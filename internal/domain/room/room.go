// Package room holds the read models for the hotel catalog. The booking
// core reads rooms and hotel ownership; catalog CRUD lives elsewhere.
package room

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Room is one sellable room type. Quantity is the number of physically
// interchangeable units of the type, never less than 1.
type Room struct {
	ID               uuid.UUID
	HotelID          uuid.UUID
	Name             string
	PricePerNight    decimal.Decimal
	CapacityAdults   int
	CapacityChildren int
	Quantity         int
	IsActive         bool
}

// Hotel carries the fields the booking core needs for ownership checks.
type Hotel struct {
	ID       uuid.UUID
	OwnerID  uuid.UUID
	Name     string
	IsActive bool
}

// Catalog is the read-only contract against the hotel catalog.
type Catalog interface {
	// FindRoom retrieves an active room by id.
	FindRoom(ctx context.Context, id uuid.UUID) (*Room, error)

	// FindHotel retrieves a hotel by id for ownership resolution.
	FindHotel(ctx context.Context, id uuid.UUID) (*Hotel, error)
}
