package booking

import "fmt"

// Status represents the lifecycle state of a booking.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
	StatusCompleted Status = "COMPLETED"
)

// validStatusTransitions defines the booking status state machine.
// CANCELLED and COMPLETED are terminal.
var validStatusTransitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
	StatusCancelled: {},
	StatusCompleted: {},
}

// IsValid returns true if the status is a recognized booking status.
func (s Status) IsValid() bool {
	_, exists := validStatusTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the
// target is allowed.
func (s Status) CanTransitionTo(target Status) bool {
	allowed, exists := validStatusTransitions[s]
	if !exists {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible.
func (s Status) IsTerminal() bool {
	allowed, exists := validStatusTransitions[s]
	if !exists {
		return true
	}
	return len(allowed) == 0
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// ParseStatus converts a string to a Status, returning an error if invalid.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status: %s", s)
	}
	return status, nil
}

// PaymentStatus represents the payment tracking state of a booking. It is
// an independent axis from Status: payment results are recorded, never
// processed, by this service.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentFailed   PaymentStatus = "FAILED"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

// validPaymentTransitions defines the payment status state machine.
var validPaymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending:  {PaymentPaid, PaymentFailed},
	PaymentPaid:     {PaymentRefunded},
	PaymentFailed:   {},
	PaymentRefunded: {},
}

// IsValid returns true if the payment status is recognized.
func (p PaymentStatus) IsValid() bool {
	_, exists := validPaymentTransitions[p]
	return exists
}

// CanTransitionTo returns true if a transition from this payment status to
// the target is allowed.
func (p PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	allowed, exists := validPaymentTransitions[p]
	if !exists {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// String returns the string representation of the payment status.
func (p PaymentStatus) String() string {
	return string(p)
}

// ParsePaymentStatus converts a string to a PaymentStatus, returning an
// error if invalid.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	status := PaymentStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid payment status: %s", s)
	}
	return status, nil
}
