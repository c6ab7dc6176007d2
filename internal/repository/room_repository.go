package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	roomDomain "github.com/stayhub/service-booking/internal/domain/room"
	"github.com/stayhub/service-booking/pkg/domain"
)

// RoomModel is the GORM model for the rooms table. The booking service
// only reads it; catalog CRUD is owned by another service.
type RoomModel struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	HotelID          uuid.UUID       `gorm:"type:uuid;index;not null"`
	Name             string          `gorm:"not null;size:200"`
	PricePerNight    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CapacityAdults   int             `gorm:"not null;default:2"`
	CapacityChildren int             `gorm:"not null;default:0"`
	Quantity         int             `gorm:"not null;default:1"`
	IsActive         bool            `gorm:"not null;default:true"`
	CreatedAt        time.Time       `gorm:"not null"`
	UpdatedAt        time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (RoomModel) TableName() string {
	return "rooms"
}

// HotelModel is the GORM model for the hotels table, read only for
// ownership resolution.
type HotelModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerID   uuid.UUID `gorm:"type:uuid;index;not null"`
	Name      string    `gorm:"not null;size:200"`
	IsActive  bool      `gorm:"not null;default:true"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (HotelModel) TableName() string {
	return "hotels"
}

// GormRoomCatalog is the GORM-backed read-only view of the hotel catalog.
type GormRoomCatalog struct {
	db *gorm.DB
}

// NewGormRoomCatalog creates a new GormRoomCatalog.
func NewGormRoomCatalog(db *gorm.DB) *GormRoomCatalog {
	return &GormRoomCatalog{db: db}
}

// FindRoom retrieves an active room by id.
func (r *GormRoomCatalog) FindRoom(ctx context.Context, id uuid.UUID) (*roomDomain.Room, error) {
	var model RoomModel
	if err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewRoomNotFoundError(id.String())
		}
		return nil, fmt.Errorf("failed to find room: %w", err)
	}
	return toDomainRoom(&model), nil
}

// FindHotel retrieves a hotel by id for ownership resolution.
func (r *GormRoomCatalog) FindHotel(ctx context.Context, id uuid.UUID) (*roomDomain.Hotel, error) {
	var model HotelModel
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("hotel", id.String())
		}
		return nil, fmt.Errorf("failed to find hotel: %w", err)
	}
	return &roomDomain.Hotel{
		ID:       model.ID,
		OwnerID:  model.OwnerID,
		Name:     model.Name,
		IsActive: model.IsActive,
	}, nil
}

func toDomainRoom(m *RoomModel) *roomDomain.Room {
	return &roomDomain.Room{
		ID:               m.ID,
		HotelID:          m.HotelID,
		Name:             m.Name,
		PricePerNight:    m.PricePerNight,
		CapacityAdults:   m.CapacityAdults,
		CapacityChildren: m.CapacityChildren,
		Quantity:         m.Quantity,
		IsActive:         m.IsActive,
	}
}
