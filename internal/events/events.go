package events

import (
	"time"

	"github.com/google/uuid"
)

// Topics exchanged with the rest of the platform.
const (
	TopicBookingEvents = "booking.events"
	TopicPaymentEvents = "payment.events"
)

// Booking event types published on TopicBookingEvents.
const (
	BookingCreated        = "booking.created"
	BookingCancelled      = "booking.cancelled"
	BookingStatusChanged  = "booking.status_changed"
	BookingPaymentUpdated = "booking.payment_updated"
)

// Payment gateway result types consumed from TopicPaymentEvents.
const (
	PaymentSucceeded = "payment.succeeded"
	PaymentFailed    = "payment.failed"
)

// BookingCreatedEvent is published after a booking commits.
type BookingCreatedEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	UserID        uuid.UUID `json:"user_id"`
	HotelID       uuid.UUID `json:"hotel_id"`
	RoomID        uuid.UUID `json:"room_id"`
	CheckIn       time.Time `json:"check_in"`
	CheckOut      time.Time `json:"check_out"`
	TotalPrice    string    `json:"total_price"`
	Currency      string    `json:"currency"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// BookingCancelledEvent is published after a cancellation.
type BookingCancelledEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	CancelledBy   uuid.UUID `json:"cancelled_by"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// BookingStatusChangedEvent is published after a status transition.
type BookingStatusChangedEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	OldStatus     string    `json:"old_status"`
	NewStatus     string    `json:"new_status"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// BookingPaymentUpdatedEvent is published after a payment-status change.
type BookingPaymentUpdatedEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	PaymentStatus string    `json:"payment_status"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// PaymentResultEvent is the gateway's settlement result for a booking.
// The booking service records the outcome; it never moves money.
type PaymentResultEvent struct {
	PaymentID  uuid.UUID `json:"payment_id"`
	BookingID  uuid.UUID `json:"booking_id"`
	Amount     string    `json:"amount"`
	Currency   string    `json:"currency"`
	OccurredAt time.Time `json:"occurred_at"`
}
