package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service is a bookable wellness offering.
type Service struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string          `gorm:"not null;size:255" json:"name"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Media       datatypes.JSON  `gorm:"type:jsonb;default:'[]'" json:"media"`
	Description string          `gorm:"type:text" json:"description"`
	Category    string          `gorm:"size:100;index" json:"category"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (s *Service) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type TimeSlotStatus string

const (
	TimeSlotAvailable TimeSlotStatus = "AVAILABLE"
	TimeSlotBooked    TimeSlotStatus = "BOOKED"
	TimeSlotBlocked   TimeSlotStatus = "BLOCKED"
)

// Availability is one calendar day of a service.
type Availability struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ServiceID  uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_availability_service_date" json:"service_id"`
	Date       time.Time  `gorm:"type:date;not null;uniqueIndex:idx_availability_service_date" json:"date"`
	IsBookable bool       `gorm:"not null" json:"is_bookable"`
	TimeSlots  []TimeSlot `gorm:"foreignKey:AvailabilityID" json:"time_slots,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (a *Availability) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

func (Availability) TableName() string {
	return "availabilities"
}

type TimeSlot struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	AvailabilityID uuid.UUID      `gorm:"type:uuid;not null;index" json:"availability_id"`
	StartTime      string         `gorm:"size:16;not null" json:"start_time"`
	EndTime        string         `gorm:"size:16;not null" json:"end_time"`
	Position       int            `gorm:"not null" json:"position"`
	Status         TimeSlotStatus `gorm:"size:16;not null;default:'AVAILABLE';index" json:"status"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

func (s *TimeSlot) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
