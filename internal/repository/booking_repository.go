package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	bookingDomain "github.com/stayhub/service-booking/internal/domain/booking"
	roomDomain "github.com/stayhub/service-booking/internal/domain/room"
	"github.com/stayhub/service-booking/pkg/domain"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	BookingNumber   string          `gorm:"uniqueIndex;not null;size:20"`
	UserID          uuid.UUID       `gorm:"type:uuid;index;not null"`
	HotelID         uuid.UUID       `gorm:"type:uuid;index;not null"`
	RoomID          uuid.UUID       `gorm:"type:uuid;not null;index:idx_bookings_room_check_in,priority:1"`
	CheckIn         time.Time       `gorm:"type:date;not null;index:idx_bookings_room_check_in,priority:2"`
	CheckOut        time.Time       `gorm:"type:date;not null"`
	Adults          int             `gorm:"not null;default:1"`
	Children        int             `gorm:"not null;default:0"`
	TotalPrice      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Currency        string          `gorm:"not null;size:3;default:'USD'"`
	Status          string          `gorm:"not null;size:20;index"`
	PaymentStatus   string          `gorm:"not null;size:20"`
	Version         int             `gorm:"not null;default:1"`
	GuestName       string          `gorm:"size:200"`
	GuestEmail      string          `gorm:"size:200"`
	SpecialRequests string          `gorm:"size:1000"`
	CreatedAt       time.Time       `gorm:"not null"`
	UpdatedAt       time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// overlapCondition is the half-open interval intersection test. The
// boundary semantics are load-bearing: a checkout on day X must not
// conflict with a check-in on day X.
const overlapCondition = "room_id = ? AND status <> ? AND check_in < ? AND check_out > ?"

// GormBookingRepository is the GORM-based implementation of the booking
// persistence contracts.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByGuestID retrieves a guest's bookings, newest first.
func (r *GormBookingRepository) FindByGuestID(ctx context.Context, guestID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Where("user_id = ?", guestID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count guest bookings: %w", err)
	}

	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", guestID).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find guest bookings: %w", err)
	}

	return toDomainBookings(models, total)
}

// FindByHotelOwnerID retrieves bookings across all hotels owned by the
// given host, joined through hotel ownership.
func (r *GormBookingRepository) FindByHotelOwnerID(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	base := r.db.WithContext(ctx).Model(&BookingModel{}).
		Joins("JOIN hotels ON hotels.id = bookings.hotel_id").
		Where("hotels.owner_id = ?", ownerID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count hotel bookings: %w", err)
	}

	var models []BookingModel
	if err := base.
		Order("bookings.check_in DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find hotel bookings: %w", err)
	}

	return toDomainBookings(models, total)
}

// FindOccupiedStays lists non-cancelled stays for a room overlapping or
// following the given window.
func (r *GormBookingRepository) FindOccupiedStays(ctx context.Context, roomID uuid.UUID, from bookingDomain.Stay) ([]bookingDomain.Stay, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Select("check_in", "check_out").
		Where("room_id = ? AND status <> ? AND check_out > ?",
			roomID, bookingDomain.StatusCancelled.String(), from.CheckIn).
		Order("check_in ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find occupied stays: %w", err)
	}

	stays := make([]bookingDomain.Stay, len(models))
	for i, m := range models {
		stays[i] = bookingDomain.Stay{CheckIn: m.CheckIn.UTC(), CheckOut: m.CheckOut.UTC()}
	}
	return stays, nil
}

// ListAll retrieves all bookings with pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	return toDomainBookings(models, total)
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// Update persists state-machine changes to an existing booking. The write
// is guarded by the version the aggregate was loaded at; a concurrent
// mutation since then leaves zero rows affected and surfaces as CONFLICT
// instead of silently overwriting the other writer.
func (r *GormBookingRepository) Update(ctx context.Context, b *bookingDomain.Booking) error {
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", b.ID(), b.Version()).
		Updates(map[string]interface{}{
			"status":         b.Status().String(),
			"payment_status": b.PaymentStatus().String(),
			"version":        b.Version() + 1,
			"updated_at":     b.UpdatedAt(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified concurrently, please retry")
	}
	return nil
}

// InSerializableTx runs fn inside one serializable transaction, mapping
// storage-level serialization failures to ErrSerialization.
func (r *GormBookingRepository) InSerializableTx(ctx context.Context, fn func(tx bookingDomain.TxStore) error) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTxStore{tx: tx})
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})

	if err != nil && isSerializationFailure(err) {
		return fmt.Errorf("%w: %v", bookingDomain.ErrSerialization, err)
	}
	return err
}

// isSerializationFailure reports whether err is a transient isolation
// conflict (SQLSTATE 40001 serialization_failure or 40P01 deadlock).
func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

// gormTxStore is the transaction-scoped store handed to the creation
// transaction.
type gormTxStore struct {
	tx *gorm.DB
}

// LockRoom re-reads the room inside the transaction with a FOR UPDATE
// lock, serializing concurrent attempts against the same room.
func (s *gormTxStore) LockRoom(ctx context.Context, roomID uuid.UUID) (*roomDomain.Room, error) {
	var model RoomModel
	if err := s.tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND is_active = ?", roomID, true).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewRoomNotFoundError(roomID.String())
		}
		return nil, fmt.Errorf("failed to lock room: %w", err)
	}
	return toDomainRoom(&model), nil
}

// CountOverlapping counts non-cancelled bookings of the room whose stay
// overlaps the requested one.
func (s *gormTxStore) CountOverlapping(ctx context.Context, roomID uuid.UUID, stay bookingDomain.Stay) (int64, error) {
	var count int64
	if err := s.tx.WithContext(ctx).Model(&BookingModel{}).
		Where(overlapCondition,
			roomID, bookingDomain.StatusCancelled.String(), stay.CheckOut, stay.CheckIn).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count overlapping bookings: %w", err)
	}
	return count, nil
}

// Insert writes the new booking row.
func (s *gormTxStore) Insert(ctx context.Context, b *bookingDomain.Booking) error {
	if err := s.tx.WithContext(ctx).Create(toBookingModel(b)).Error; err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}

// --- Conversion helpers ---

func toBookingModel(b *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:              b.ID(),
		BookingNumber:   b.BookingNumber(),
		UserID:          b.UserID(),
		HotelID:         b.HotelID(),
		RoomID:          b.RoomID(),
		CheckIn:         b.Stay().CheckIn,
		CheckOut:        b.Stay().CheckOut,
		Adults:          b.Adults(),
		Children:        b.Children(),
		TotalPrice:      b.TotalPrice(),
		Currency:        b.Currency(),
		Status:          b.Status().String(),
		PaymentStatus:   b.PaymentStatus().String(),
		Version:         b.Version(),
		GuestName:       b.Guest().GuestName,
		GuestEmail:      b.Guest().GuestEmail,
		SpecialRequests: b.Guest().SpecialRequests,
		CreatedAt:       b.CreatedAt(),
		UpdatedAt:       b.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseStatus(m.Status)
	if err != nil {
		return nil, err
	}
	paymentStatus, err := bookingDomain.ParsePaymentStatus(m.PaymentStatus)
	if err != nil {
		return nil, err
	}

	return bookingDomain.Reconstruct(
		m.ID,
		m.BookingNumber,
		m.UserID, m.HotelID, m.RoomID,
		bookingDomain.Stay{CheckIn: m.CheckIn.UTC(), CheckOut: m.CheckOut.UTC()},
		m.Adults, m.Children,
		m.TotalPrice,
		m.Currency,
		status,
		paymentStatus,
		bookingDomain.GuestDetails{
			GuestName:       m.GuestName,
			GuestEmail:      m.GuestEmail,
			SpecialRequests: m.SpecialRequests,
		},
		m.Version,
		m.CreatedAt, m.UpdatedAt,
	), nil
}

func toDomainBookings(models []BookingModel, total int64) ([]*bookingDomain.Booking, int64, error) {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		b, err := toDomainBooking(&m)
		if err != nil {
			return nil, 0, err
		}
		bookings[i] = b
	}
	return bookings, total, nil
}
