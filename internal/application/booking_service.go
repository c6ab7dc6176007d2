package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/stayhub/service-booking/internal/domain/booking"
	roomDomain "github.com/stayhub/service-booking/internal/domain/room"
	"github.com/stayhub/service-booking/internal/events"
	"github.com/stayhub/service-booking/pkg/domain"
	"github.com/stayhub/service-booking/pkg/kafka"
)

const dateLayout = "2006-01-02"

// maxCreateAttempts bounds the retry loop for serialization conflicts.
// Business conflicts (ROOM_UNAVAILABLE) are never retried.
const maxCreateAttempts = 3

// CreateBookingRequest holds the data needed to create a new booking.
// Dates are calendar days in YYYY-MM-DD form.
type CreateBookingRequest struct {
	RoomID          uuid.UUID `json:"room_id" binding:"required"`
	CheckIn         string    `json:"check_in" binding:"required"`
	CheckOut        string    `json:"check_out" binding:"required"`
	Adults          int       `json:"adults" binding:"required,min=1"`
	Children        int       `json:"children" binding:"min=0"`
	GuestName       string    `json:"guest_name"`
	GuestEmail      string    `json:"guest_email"`
	SpecialRequests string    `json:"special_requests"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID              uuid.UUID `json:"id"`
	BookingNumber   string    `json:"booking_number"`
	UserID          uuid.UUID `json:"user_id"`
	HotelID         uuid.UUID `json:"hotel_id"`
	RoomID          uuid.UUID `json:"room_id"`
	CheckIn         string    `json:"check_in"`
	CheckOut        string    `json:"check_out"`
	Adults          int       `json:"adults"`
	Children        int       `json:"children"`
	TotalPrice      string    `json:"total_price"`
	Currency        string    `json:"currency"`
	Status          string    `json:"status"`
	PaymentStatus   string    `json:"payment_status"`
	GuestName       string    `json:"guest_name,omitempty"`
	GuestEmail      string    `json:"guest_email,omitempty"`
	SpecialRequests string    `json:"special_requests,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// StayDTO is one occupied interval for client-side calendar disabling.
type StayDTO struct {
	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`
}

// BookingService is the application service orchestrating booking use
// cases, including the availability-checked creation transaction.
type BookingService struct {
	repo     bookingDomain.Repository
	txs      bookingDomain.TxRunner
	catalog  roomDomain.Catalog
	producer *kafka.Producer
	logger   *zap.Logger
}

// NewBookingService creates a new BookingService. The producer may be nil,
// in which case events are not published.
func NewBookingService(
	repo bookingDomain.Repository,
	txs bookingDomain.TxRunner,
	catalog roomDomain.Catalog,
	producer *kafka.Producer,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		repo:     repo,
		txs:      txs,
		catalog:  catalog,
		producer: producer,
		logger:   logger,
	}
}

// CreateBooking validates and creates a booking for the given guest. The
// availability check and the insert run inside one serializable
// transaction with the room row locked, so concurrent attempts against the
// same room cannot overbook; serialization conflicts are retried a bounded
// number of times.
func (s *BookingService) CreateBooking(ctx context.Context, guestID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	stay, err := parseStay(req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, err
	}

	// Fail fast on room existence and capacity before opening the
	// transaction. The room is re-read (and locked) inside it; this
	// pre-check only spares the database a doomed transaction.
	rm, err := s.catalog.FindRoom(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}
	if req.Adults > rm.CapacityAdults {
		return nil, domain.NewCapacityExceededError(
			fmt.Sprintf("room capacity exceeded for adults, max %d", rm.CapacityAdults))
	}
	if req.Children > rm.CapacityChildren {
		return nil, domain.NewCapacityExceededError(
			fmt.Sprintf("room capacity exceeded for children, max %d", rm.CapacityChildren))
	}

	var created *bookingDomain.Booking
	for attempt := 1; ; attempt++ {
		err = s.txs.InSerializableTx(ctx, func(tx bookingDomain.TxStore) error {
			// Fresh room state inside the transaction; the pre-check
			// snapshot above is stale by definition.
			lockedRoom, err := tx.LockRoom(ctx, req.RoomID)
			if err != nil {
				return err
			}

			overlapping, err := tx.CountOverlapping(ctx, req.RoomID, stay)
			if err != nil {
				return err
			}
			if overlapping >= int64(lockedRoom.Quantity) {
				return domain.NewRoomUnavailableError()
			}

			b, err := bookingDomain.NewBooking(guestID, lockedRoom, stay, req.Adults, req.Children,
				bookingDomain.GuestDetails{
					GuestName:       req.GuestName,
					GuestEmail:      req.GuestEmail,
					SpecialRequests: req.SpecialRequests,
				})
			if err != nil {
				return err
			}

			if err := tx.Insert(ctx, b); err != nil {
				return err
			}
			created = b
			return nil
		})

		if err == nil {
			break
		}
		if errors.Is(err, bookingDomain.ErrSerialization) && attempt < maxCreateAttempts {
			s.logger.Warn("booking creation serialization conflict, retrying",
				zap.String("room_id", req.RoomID.String()),
				zap.Int("attempt", attempt),
			)
			continue
		}
		if errors.Is(err, bookingDomain.ErrSerialization) {
			return nil, domain.NewConflictError("booking conflicted with concurrent requests, please retry")
		}
		return nil, err
	}

	s.publishBookingCreated(ctx, created)

	result := toBookingDTO(created)
	return &result, nil
}

// GetBooking retrieves a single booking; visible to its guest, the owning
// host, and admins.
func (s *BookingService) GetBooking(ctx context.Context, caller bookingDomain.Caller, bookingID uuid.UUID) (*BookingDTO, error) {
	b, access, err := s.loadWithAccess(ctx, caller, bookingID)
	if err != nil {
		return nil, err
	}
	if !access.CanManage() {
		return nil, domain.NewForbiddenError("you are not authorized to view this booking")
	}
	result := toBookingDTO(b)
	return &result, nil
}

// ListMyBookings retrieves the guest's own bookings.
func (s *BookingService) ListMyBookings(ctx context.Context, guestID uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.repo.FindByGuestID(ctx, guestID, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(toBookingDTOs(bookings), total, page, limit)
	return &result, nil
}

// ListHotelBookings retrieves bookings across the host's hotels.
func (s *BookingService) ListHotelBookings(ctx context.Context, ownerID uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.repo.FindByHotelOwnerID(ctx, ownerID, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(toBookingDTOs(bookings), total, page, limit)
	return &result, nil
}

// CancelBooking cancels a booking on behalf of its guest or the owning
// host. Cancelling an already-cancelled booking is reported, not silently
// accepted. Payment status is untouched; refunds are explicit.
func (s *BookingService) CancelBooking(ctx context.Context, caller bookingDomain.Caller, bookingID uuid.UUID) (*BookingDTO, error) {
	b, access, err := s.loadWithAccess(ctx, caller, bookingID)
	if err != nil {
		return nil, err
	}
	if !access.CanManage() {
		return nil, domain.NewForbiddenError("you are not authorized to cancel this booking")
	}

	if err := b.Cancel(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.BookingCancelled, b.ID().String(), events.BookingCancelledEvent{
		BookingID:     b.ID(),
		BookingNumber: b.BookingNumber(),
		CancelledBy:   caller.UserID,
		OccurredAt:    time.Now().UTC(),
	})

	result := toBookingDTO(b)
	return &result, nil
}

// UpdateBookingStatus transitions a booking's status. Only the owning host
// or an admin may call it; the transition table is enforced.
func (s *BookingService) UpdateBookingStatus(ctx context.Context, caller bookingDomain.Caller, bookingID uuid.UUID, newStatus string) (*BookingDTO, error) {
	b, access, err := s.loadWithAccess(ctx, caller, bookingID)
	if err != nil {
		return nil, err
	}
	if !access.CanAdminister() {
		return nil, domain.NewForbiddenError("you are not authorized to update this booking status")
	}

	target, err := bookingDomain.ParseStatus(newStatus)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	oldStatus := b.Status()
	if err := b.TransitionStatus(target); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.BookingStatusChanged, b.ID().String(), events.BookingStatusChangedEvent{
		BookingID:     b.ID(),
		BookingNumber: b.BookingNumber(),
		OldStatus:     oldStatus.String(),
		NewStatus:     target.String(),
		OccurredAt:    time.Now().UTC(),
	})

	result := toBookingDTO(b)
	return &result, nil
}

// UpdatePaymentStatus transitions a booking's payment status. Only the
// owning host or an admin may call it.
func (s *BookingService) UpdatePaymentStatus(ctx context.Context, caller bookingDomain.Caller, bookingID uuid.UUID, newPaymentStatus string) (*BookingDTO, error) {
	b, access, err := s.loadWithAccess(ctx, caller, bookingID)
	if err != nil {
		return nil, err
	}
	if !access.CanAdminister() {
		return nil, domain.NewForbiddenError("you are not authorized to update this payment status")
	}

	target, err := bookingDomain.ParsePaymentStatus(newPaymentStatus)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	if err := b.TransitionPayment(target); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.BookingPaymentUpdated, b.ID().String(), events.BookingPaymentUpdatedEvent{
		BookingID:     b.ID(),
		BookingNumber: b.BookingNumber(),
		PaymentStatus: target.String(),
		OccurredAt:    time.Now().UTC(),
	})

	result := toBookingDTO(b)
	return &result, nil
}

// RecordPaymentResult applies a payment gateway result to a booking. It is
// driven by the payment event consumer, not by user requests, so no
// ownership check applies.
func (s *BookingService) RecordPaymentResult(ctx context.Context, bookingID uuid.UUID, result bookingDomain.PaymentStatus) error {
	b, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if err := b.TransitionPayment(result); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, b); err != nil {
		return err
	}

	s.publishEvent(ctx, events.BookingPaymentUpdated, b.ID().String(), events.BookingPaymentUpdatedEvent{
		BookingID:     b.ID(),
		BookingNumber: b.BookingNumber(),
		PaymentStatus: result.String(),
		OccurredAt:    time.Now().UTC(),
	})
	return nil
}

// GetRoomAvailability lists the room's occupied intervals from today
// onward, freshly derived from the booking rows.
func (s *BookingService) GetRoomAvailability(ctx context.Context, roomID uuid.UUID) ([]StayDTO, error) {
	if _, err := s.catalog.FindRoom(ctx, roomID); err != nil {
		return nil, err
	}

	today := time.Now().UTC()
	window := bookingDomain.Stay{CheckIn: today, CheckOut: today.AddDate(10, 0, 0)}
	stays, err := s.repo.FindOccupiedStays(ctx, roomID, window)
	if err != nil {
		return nil, err
	}

	// The store only bounds the lower edge of the window; apply the full
	// interval predicate here.
	dtos := make([]StayDTO, 0, len(stays))
	for _, st := range stays {
		if !st.Overlaps(window) {
			continue
		}
		dtos = append(dtos, StayDTO{
			CheckIn:  st.CheckIn.Format(dateLayout),
			CheckOut: st.CheckOut.Format(dateLayout),
		})
	}
	return dtos, nil
}

// --- Admin methods ---

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// ListAllBookings returns a paginated list of all bookings (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, page, limit int) ([]BookingDTO, int64, error) {
	bookings, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	return toBookingDTOs(bookings), total, nil
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}
	return &BookingStatsDTO{TotalBookings: total, ByStatus: counts}, nil
}

// --- Helpers ---

func (s *BookingService) loadWithAccess(ctx context.Context, caller bookingDomain.Caller, bookingID uuid.UUID) (*bookingDomain.Booking, bookingDomain.Access, error) {
	b, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, bookingDomain.Access{}, err
	}
	hotel, err := s.catalog.FindHotel(ctx, b.HotelID())
	if err != nil {
		return nil, bookingDomain.Access{}, err
	}
	return b, bookingDomain.ResolveAccess(caller, b, hotel.OwnerID), nil
}

func parseStay(checkIn, checkOut string) (bookingDomain.Stay, error) {
	in, err := time.Parse(dateLayout, checkIn)
	if err != nil {
		return bookingDomain.Stay{}, domain.NewInvalidDateRangeError("check_in must be a YYYY-MM-DD date")
	}
	out, err := time.Parse(dateLayout, checkOut)
	if err != nil {
		return bookingDomain.Stay{}, domain.NewInvalidDateRangeError("check_out must be a YYYY-MM-DD date")
	}
	return bookingDomain.NewStay(in, out)
}

func toBookingDTO(b *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:              b.ID(),
		BookingNumber:   b.BookingNumber(),
		UserID:          b.UserID(),
		HotelID:         b.HotelID(),
		RoomID:          b.RoomID(),
		CheckIn:         b.Stay().CheckIn.Format(dateLayout),
		CheckOut:        b.Stay().CheckOut.Format(dateLayout),
		Adults:          b.Adults(),
		Children:        b.Children(),
		TotalPrice:      b.TotalPrice().StringFixed(2),
		Currency:        b.Currency(),
		Status:          b.Status().String(),
		PaymentStatus:   b.PaymentStatus().String(),
		GuestName:       b.Guest().GuestName,
		GuestEmail:      b.Guest().GuestEmail,
		SpecialRequests: b.Guest().SpecialRequests,
		CreatedAt:       b.CreatedAt(),
		UpdatedAt:       b.UpdatedAt(),
	}
}

func toBookingDTOs(bookings []*bookingDomain.Booking) []BookingDTO {
	dtos := make([]BookingDTO, len(bookings))
	for i, b := range bookings {
		dtos[i] = toBookingDTO(b)
	}
	return dtos
}

func (s *BookingService) publishBookingCreated(ctx context.Context, b *bookingDomain.Booking) {
	s.publishEvent(ctx, events.BookingCreated, b.ID().String(), events.BookingCreatedEvent{
		BookingID:     b.ID(),
		BookingNumber: b.BookingNumber(),
		UserID:        b.UserID(),
		HotelID:       b.HotelID(),
		RoomID:        b.RoomID(),
		CheckIn:       b.Stay().CheckIn,
		CheckOut:      b.Stay().CheckOut,
		TotalPrice:    b.TotalPrice().StringFixed(2),
		Currency:      b.Currency(),
		OccurredAt:    time.Now().UTC(),
	})
}

func (s *BookingService) publishEvent(ctx context.Context, eventType, key string, data interface{}) {
	if s.producer == nil {
		return
	}

	cloudEvent, err := kafka.NewCloudEvent("service-booking", eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.producer.Publish(ctx, events.TopicBookingEvents, key, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", events.TopicBookingEvents),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
