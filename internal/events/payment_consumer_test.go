package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	bookingDomain "github.com/stayhub/service-booking/internal/domain/booking"
	"github.com/stayhub/service-booking/pkg/domain"
	"github.com/stayhub/service-booking/pkg/kafka"
)

type recordedResult struct {
	bookingID uuid.UUID
	result    bookingDomain.PaymentStatus
}

type fakeRecorder struct {
	recorded []recordedResult
	err      error
}

func (f *fakeRecorder) RecordPaymentResult(_ context.Context, bookingID uuid.UUID, result bookingDomain.PaymentStatus) error {
	f.recorded = append(f.recorded, recordedResult{bookingID, result})
	return f.err
}

func newTestConsumer(rec *fakeRecorder) *PaymentEventConsumer {
	return &PaymentEventConsumer{service: rec, logger: zap.NewNop()}
}

func paymentMessage(t *testing.T, eventType string, bookingID uuid.UUID) kafkago.Message {
	t.Helper()
	ce, err := kafka.NewCloudEvent("service-payment", eventType, PaymentResultEvent{
		PaymentID:  uuid.New(),
		BookingID:  bookingID,
		Amount:     "300.00",
		Currency:   "USD",
		OccurredAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	raw, err := json.Marshal(ce)
	require.NoError(t, err)
	return kafkago.Message{Topic: TopicPaymentEvents, Value: raw}
}

func TestPaymentConsumer_RecordsResults(t *testing.T) {
	tests := []struct {
		eventType string
		want      bookingDomain.PaymentStatus
	}{
		{PaymentSucceeded, bookingDomain.PaymentPaid},
		{PaymentFailed, bookingDomain.PaymentFailed},
	}
	for _, tc := range tests {
		t.Run(tc.eventType, func(t *testing.T) {
			rec := &fakeRecorder{}
			c := newTestConsumer(rec)
			bookingID := uuid.New()

			err := c.handleMessage(context.Background(), paymentMessage(t, tc.eventType, bookingID))
			require.NoError(t, err)
			require.Len(t, rec.recorded, 1)
			assert.Equal(t, bookingID, rec.recorded[0].bookingID)
			assert.Equal(t, tc.want, rec.recorded[0].result)
		})
	}
}

func TestPaymentConsumer_IgnoresUnknownEventTypes(t *testing.T) {
	rec := &fakeRecorder{}
	c := newTestConsumer(rec)

	err := c.handleMessage(context.Background(), paymentMessage(t, "payment.initiated", uuid.New()))
	assert.NoError(t, err)
	assert.Empty(t, rec.recorded)
}

func TestPaymentConsumer_DropsMalformedMessages(t *testing.T) {
	rec := &fakeRecorder{}
	c := newTestConsumer(rec)

	err := c.handleMessage(context.Background(), kafkago.Message{Value: []byte("{not json")})
	assert.NoError(t, err, "malformed messages must not be redelivered")
	assert.Empty(t, rec.recorded)
}

func TestPaymentConsumer_DropsInapplicableResults(t *testing.T) {
	// A result the state machine rejects (redelivery, cancelled booking)
	// cannot be fixed by retrying; the offset must be committed.
	rec := &fakeRecorder{err: domain.NewInvalidTransitionError("FAILED", "PAID")}
	c := newTestConsumer(rec)

	err := c.handleMessage(context.Background(), paymentMessage(t, PaymentSucceeded, uuid.New()))
	assert.NoError(t, err)
}

func TestPaymentConsumer_RetriesInfrastructureErrors(t *testing.T) {
	rec := &fakeRecorder{err: errors.New("connection reset")}
	c := newTestConsumer(rec)

	err := c.handleMessage(context.Background(), paymentMessage(t, PaymentSucceeded, uuid.New()))
	assert.Error(t, err, "transient storage errors must leave the offset uncommitted")
}
