package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentRefunded PaymentStatus = "REFUNDED"
	PaymentFailed   PaymentStatus = "FAILED"
)

// Booking is never hard-deleted; cancellation is a status change.
// At most one non-cancelled row may exist per (user_id, service_id), see
// database.createPartialIndexes.
type Booking struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	ServiceID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"service_id"`
	Date            time.Time       `gorm:"type:date;not null" json:"date"`
	TimeSlot        string          `gorm:"size:32;not null" json:"time_slot"`
	TimeSlotID      *uuid.UUID      `gorm:"type:uuid" json:"time_slot_id,omitempty"`
	Status          BookingStatus   `gorm:"size:16;not null;default:'PENDING';index" json:"status"`
	PaymentStatus   PaymentStatus   `gorm:"size:16;not null;default:'PENDING'" json:"payment_status"`
	PaymentIntentID string          `gorm:"size:64" json:"payment_intent_id"`
	TotalAmount     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_amount"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Service         *Service        `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
	User            *User           `gorm:"foreignKey:UserID" json:"-"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
