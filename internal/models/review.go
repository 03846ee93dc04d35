package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Review struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	ServiceID uuid.UUID `gorm:"type:uuid;not null;index" json:"service_id"`
	BookingID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"booking_id"`
	Rating    int       `gorm:"not null" json:"rating"`
	Comment   string    `gorm:"size:1000" json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	User      *User     `gorm:"foreignKey:UserID" json:"-"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
