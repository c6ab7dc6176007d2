package events

import (
	"context"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	bookingDomain "github.com/stayhub/service-booking/internal/domain/booking"
	"github.com/stayhub/service-booking/pkg/domain"
	"github.com/stayhub/service-booking/pkg/kafka"
)

// PaymentRecorder applies a gateway settlement result to a booking.
type PaymentRecorder interface {
	RecordPaymentResult(ctx context.Context, bookingID uuid.UUID, result bookingDomain.PaymentStatus) error
}

// PaymentEventConsumer listens to payment gateway results and records them
// on the affected booking. Payment processing itself happens elsewhere;
// this service only tracks outcomes.
type PaymentEventConsumer struct {
	consumer *kafka.Consumer
	service  PaymentRecorder
	logger   *zap.Logger
}

// NewPaymentEventConsumer creates a new PaymentEventConsumer.
func NewPaymentEventConsumer(
	brokers []string,
	groupID string,
	service PaymentRecorder,
	logger *zap.Logger,
) *PaymentEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, TopicPaymentEvents, logger)
	return &PaymentEventConsumer{
		consumer: consumer,
		service:  service,
		logger:   logger,
	}
}

// Start begins consuming payment events. Blocks until the context is
// cancelled.
func (c *PaymentEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *PaymentEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *PaymentEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from payment topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case PaymentSucceeded:
		return c.recordResult(ctx, cloudEvent, bookingDomain.PaymentPaid)
	case PaymentFailed:
		return c.recordResult(ctx, cloudEvent, bookingDomain.PaymentFailed)
	default:
		c.logger.Debug("ignoring unhandled payment event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *PaymentEventConsumer) recordResult(ctx context.Context, cloudEvent kafka.CloudEvent, result bookingDomain.PaymentStatus) error {
	var evt PaymentResultEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse payment result data", zap.Error(err))
		return nil // Don't retry malformed data
	}

	err := c.service.RecordPaymentResult(ctx, evt.BookingID, result)
	if err != nil {
		// Illegal transitions (redeliveries, results for cancelled
		// bookings) are recorded and dropped; retrying cannot fix them.
		if appErr, ok := domain.AsAppError(err); ok {
			c.logger.Warn("payment result not applicable",
				zap.String("booking_id", evt.BookingID.String()),
				zap.String("result", result.String()),
				zap.String("code", appErr.Code),
			)
			return nil
		}
		c.logger.Error("failed to record payment result",
			zap.String("booking_id", evt.BookingID.String()),
			zap.Error(err),
		)
		return err
	}

	c.logger.Info("payment result recorded",
		zap.String("booking_id", evt.BookingID.String()),
		zap.String("result", result.String()),
	)
	return nil
}
