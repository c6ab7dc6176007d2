package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stayhub/service-booking/internal/domain/room"
	"github.com/stayhub/service-booking/pkg/domain"
)

const bookingNumberChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GuestDetails are optional free-form overrides captured at creation; they
// never affect booking logic.
type GuestDetails struct {
	GuestName       string `json:"guest_name,omitempty"`
	GuestEmail      string `json:"guest_email,omitempty"`
	SpecialRequests string `json:"special_requests,omitempty"`
}

// Booking is the aggregate root for a room reservation. It is created only
// through the availability-checked transaction and mutated only through its
// state machines; rows are never deleted.
type Booking struct {
	id            uuid.UUID
	bookingNumber string
	userID        uuid.UUID
	hotelID       uuid.UUID
	roomID        uuid.UUID
	stay          Stay
	adults        int
	children      int

	totalPrice decimal.Decimal
	currency   string

	status        Status
	paymentStatus PaymentStatus

	guest GuestDetails

	version int

	createdAt time.Time
	updatedAt time.Time
}

// generateBookingNumber creates a reference in the format "BK-XXXXXX".
func generateBookingNumber() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(bookingNumberChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate booking number: %w", err)
		}
		result[i] = bookingNumberChars[n.Int64()]
	}
	return "BK-" + string(result), nil
}

// NewBooking creates a Booking for the given guest and room. The hotel id
// is always taken from the room row, never from client input. The total
// price is a snapshot of pricePerNight × nights and is never recomputed.
func NewBooking(
	guestID uuid.UUID,
	rm *room.Room,
	stay Stay,
	adults, children int,
	guest GuestDetails,
) (*Booking, error) {
	if guestID == uuid.Nil {
		return nil, domain.NewValidationError("guest ID is required")
	}
	if adults < 0 || children < 0 {
		return nil, domain.NewValidationError("guest counts must be non-negative")
	}
	if adults > rm.CapacityAdults {
		return nil, domain.NewCapacityExceededError(
			fmt.Sprintf("room capacity exceeded for adults, max %d", rm.CapacityAdults))
	}
	if children > rm.CapacityChildren {
		return nil, domain.NewCapacityExceededError(
			fmt.Sprintf("room capacity exceeded for children, max %d", rm.CapacityChildren))
	}

	nights := stay.Nights()
	if nights <= 0 {
		return nil, domain.NewInvalidDateRangeError("booking must cover at least one night")
	}

	bookingNumber, err := generateBookingNumber()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Booking{
		id:            uuid.New(),
		bookingNumber: bookingNumber,
		userID:        guestID,
		hotelID:       rm.HotelID,
		roomID:        rm.ID,
		stay:          stay,
		adults:        adults,
		children:      children,
		totalPrice:    rm.PricePerNight.Mul(decimal.NewFromInt(int64(nights))).Round(2),
		currency:      "USD",
		status:        StatusPending,
		paymentStatus: PaymentPending,
		guest:         guest,
		version:       1,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// Reconstruct rebuilds a Booking from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	bookingNumber string,
	userID, hotelID, roomID uuid.UUID,
	stay Stay,
	adults, children int,
	totalPrice decimal.Decimal,
	currency string,
	status Status,
	paymentStatus PaymentStatus,
	guest GuestDetails,
	version int,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:            id,
		bookingNumber: bookingNumber,
		userID:        userID,
		hotelID:       hotelID,
		roomID:        roomID,
		stay:          stay,
		adults:        adults,
		children:      children,
		totalPrice:    totalPrice,
		currency:      currency,
		status:        status,
		paymentStatus: paymentStatus,
		guest:         guest,
		version:       version,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// BookingNumber returns the human-readable booking reference.
func (b *Booking) BookingNumber() string { return b.bookingNumber }

// UserID returns the guest who made the booking.
func (b *Booking) UserID() uuid.UUID { return b.userID }

// HotelID returns the denormalized hotel id.
func (b *Booking) HotelID() uuid.UUID { return b.hotelID }

// RoomID returns the booked room type.
func (b *Booking) RoomID() uuid.UUID { return b.roomID }

// Stay returns the booked date range.
func (b *Booking) Stay() Stay { return b.stay }

// Adults returns the adult guest count.
func (b *Booking) Adults() int { return b.adults }

// Children returns the child guest count.
func (b *Booking) Children() int { return b.children }

// TotalPrice returns the price snapshot taken at creation.
func (b *Booking) TotalPrice() decimal.Decimal { return b.totalPrice }

// Currency returns the currency code.
func (b *Booking) Currency() string { return b.currency }

// Status returns the current booking status.
func (b *Booking) Status() Status { return b.status }

// PaymentStatus returns the current payment tracking status.
func (b *Booking) PaymentStatus() PaymentStatus { return b.paymentStatus }

// Guest returns the optional guest detail overrides.
func (b *Booking) Guest() GuestDetails { return b.guest }

// Version returns the optimistic concurrency token guarding updates.
func (b *Booking) Version() int { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// Cancel transitions the booking to CANCELLED. Cancelling twice is an
// error, not a silent no-op, so repeated cancel calls are reported back.
// Payment status is untouched; a refund is a separate explicit action.
func (b *Booking) Cancel() error {
	if b.status == StatusCancelled {
		return domain.NewAlreadyCancelledError()
	}
	if !b.status.CanTransitionTo(StatusCancelled) {
		return domain.NewInvalidTransitionError(b.status.String(), StatusCancelled.String())
	}
	b.status = StatusCancelled
	b.updatedAt = time.Now().UTC()
	return nil
}

// TransitionStatus moves the booking to target, enforcing the transition
// table. Terminal states admit no further transitions.
func (b *Booking) TransitionStatus(target Status) error {
	if !target.IsValid() {
		return domain.NewValidationError(fmt.Sprintf("invalid booking status: %s", target))
	}
	if !b.status.CanTransitionTo(target) {
		return domain.NewInvalidTransitionError(b.status.String(), target.String())
	}
	b.status = target
	b.updatedAt = time.Now().UTC()
	return nil
}

// TransitionPayment moves the payment status to target. Payment mutations
// on a cancelled booking are rejected, except PAID→REFUNDED so that a
// cancelled-but-paid booking can still be refunded.
func (b *Booking) TransitionPayment(target PaymentStatus) error {
	if !target.IsValid() {
		return domain.NewValidationError(fmt.Sprintf("invalid payment status: %s", target))
	}
	if b.status == StatusCancelled && !(b.paymentStatus == PaymentPaid && target == PaymentRefunded) {
		return domain.NewInvalidTransitionError(b.paymentStatus.String(), target.String())
	}
	if !b.paymentStatus.CanTransitionTo(target) {
		return domain.NewInvalidTransitionError(b.paymentStatus.String(), target.String())
	}
	b.paymentStatus = target
	b.updatedAt = time.Now().UTC()
	return nil
}
