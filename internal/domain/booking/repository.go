package booking

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/stayhub/service-booking/internal/domain/room"
)

// ErrSerialization marks a transient isolation conflict detected by the
// storage layer. Callers retry it a bounded number of times; it is never a
// business outcome.
var ErrSerialization = errors.New("serialization conflict")

// Repository defines the persistence contract for booking aggregates.
type Repository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByGuestID retrieves a guest's bookings, newest first.
	FindByGuestID(ctx context.Context, guestID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// FindByHotelOwnerID retrieves bookings across all hotels owned by the
	// given host, joined through hotel ownership.
	FindByHotelOwnerID(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// FindOccupiedStays lists non-cancelled stays for a room from the given
	// day onward, for client-side calendar disabling.
	FindOccupiedStays(ctx context.Context, roomID uuid.UUID, from Stay) ([]Stay, error)

	// ListAll retrieves all bookings with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Booking, int64, error)

	// CountByStatus returns booking counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// Update persists state-machine changes to an existing booking.
	Update(ctx context.Context, b *Booking) error
}

// TxStore is the transaction-scoped view the creation transaction works
// against. All three calls see one isolated snapshot of the store.
type TxStore interface {
	// LockRoom re-reads the room row inside the transaction, taking a
	// row-level lock that serializes concurrent attempts on the same room.
	LockRoom(ctx context.Context, roomID uuid.UUID) (*room.Room, error)

	// CountOverlapping counts non-cancelled bookings of the room whose
	// stay overlaps the requested one.
	CountOverlapping(ctx context.Context, roomID uuid.UUID, stay Stay) (int64, error)

	// Insert writes the new booking row.
	Insert(ctx context.Context, b *Booking) error
}

// TxRunner runs fn inside one serializable transaction. A rollback on
// error is total; partial writes are never visible. Serialization
// failures surface as ErrSerialization.
type TxRunner interface {
	InSerializableTx(ctx context.Context, fn func(tx TxStore) error) error
}
