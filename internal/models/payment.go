package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentType string

const (
	PaymentTypeService    PaymentType = "SERVICE"
	PaymentTypeMembership PaymentType = "MEMBERSHIP"
)

// Payment records a verified (or rejected) gateway checkout. The signature is
// checked once when the row is written and never re-derived.
type Payment struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID      string          `gorm:"size:64;not null;index" json:"order_id"`
	PaymentID    string          `gorm:"size:64;not null;uniqueIndex" json:"payment_id"`
	Signature    string          `gorm:"size:128;not null" json:"-"`
	UserID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	ServiceID    *uuid.UUID      `gorm:"type:uuid;index" json:"service_id,omitempty"`
	BookingID    *uuid.UUID      `gorm:"type:uuid;index" json:"booking_id,omitempty"`
	MembershipID *uuid.UUID      `gorm:"type:uuid;index" json:"membership_id,omitempty"` // primary membership bought with this payment
	Amount       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Currency     string          `gorm:"size:3;not null;default:'INR'" json:"currency"`
	Status       PaymentStatus   `gorm:"size:16;not null;default:'PENDING';index" json:"status"`
	PaymentType  PaymentType     `gorm:"size:16;not null;default:'SERVICE'" json:"payment_type"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// WebhookEvent marks a gateway event id as consumed.
type WebhookEvent struct {
	ID          string    `gorm:"size:64;primaryKey" json:"id"`
	EventType   string    `gorm:"size:64;not null" json:"event_type"`
	ProcessedAt time.Time `gorm:"not null" json:"processed_at"`
}
