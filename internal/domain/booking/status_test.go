package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_Transitions(t *testing.T) {
	assert.True(t, StatusPending.CanTransitionTo(StatusConfirmed))
	assert.True(t, StatusPending.CanTransitionTo(StatusCancelled))
	assert.False(t, StatusPending.CanTransitionTo(StatusCompleted), "a booking cannot complete without confirmation")

	assert.True(t, StatusConfirmed.CanTransitionTo(StatusCompleted))
	assert.True(t, StatusConfirmed.CanTransitionTo(StatusCancelled))
	assert.False(t, StatusConfirmed.CanTransitionTo(StatusPending))

	// Terminal states admit nothing.
	for _, terminal := range []Status{StatusCancelled, StatusCompleted} {
		for _, target := range []Status{StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted} {
			assert.False(t, terminal.CanTransitionTo(target),
				"%s -> %s must be rejected", terminal, target)
		}
	}
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusConfirmed.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("CONFIRMED")
	assert.NoError(t, err)
	assert.Equal(t, StatusConfirmed, s)

	_, err = ParseStatus("confirmed")
	assert.Error(t, err, "status values are case-sensitive contract values")

	_, err = ParseStatus("SHIPPED")
	assert.Error(t, err)
}

func TestPaymentStatus_Transitions(t *testing.T) {
	assert.True(t, PaymentPending.CanTransitionTo(PaymentPaid))
	assert.True(t, PaymentPending.CanTransitionTo(PaymentFailed))
	assert.False(t, PaymentPending.CanTransitionTo(PaymentRefunded), "only paid bookings can be refunded")

	assert.True(t, PaymentPaid.CanTransitionTo(PaymentRefunded))
	assert.False(t, PaymentPaid.CanTransitionTo(PaymentPending))
	assert.False(t, PaymentPaid.CanTransitionTo(PaymentFailed))

	assert.False(t, PaymentFailed.CanTransitionTo(PaymentPaid), "a failed payment needs a new attempt, not a transition")
	assert.False(t, PaymentRefunded.CanTransitionTo(PaymentPaid))
}

func TestParsePaymentStatus(t *testing.T) {
	p, err := ParsePaymentStatus("REFUNDED")
	assert.NoError(t, err)
	assert.Equal(t, PaymentRefunded, p)

	_, err = ParsePaymentStatus("DECLINED")
	assert.Error(t, err)
}
