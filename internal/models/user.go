package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an account created on first OTP sign-in.
type User struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name              string    `gorm:"size:255" json:"name"`
	Email             string    `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Phone             string    `gorm:"size:32" json:"phone,omitempty"`
	Role              string    `gorm:"size:20;default:'user'" json:"role"`
	GatewayCustomerID string    `gorm:"size:64" json:"-"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
