package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MembershipPlan struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name               string          `gorm:"not null;size:100" json:"name"`
	MaxMembers         int             `gorm:"not null;default:1" json:"max_members"`
	RenewalPeriodYears int             `gorm:"not null;default:1" json:"renewal_period_years"`
	Cost               decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"cost"`
	DiscountPercent    int             `gorm:"default:0" json:"discount_percent"`
	FreeConsultation   bool            `gorm:"default:false" json:"free_consultation"`
	PriorityBooking    bool            `gorm:"default:false" json:"priority_booking"`
	GuestPasses        bool            `gorm:"default:false" json:"guest_passes"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

func (p *MembershipPlan) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// UserMembership rows form a group: one primary (ParentMembershipID nil) and
// zero or more members pointing at it. Rows are soft-inactivated, never deleted.
type UserMembership struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID             uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	PlanID             uuid.UUID       `gorm:"type:uuid;not null;index" json:"plan_id"`
	StartDate          time.Time       `gorm:"not null" json:"start_date"`
	EndDate            time.Time       `gorm:"not null;index" json:"end_date"`
	IsPrimary          bool            `gorm:"not null;default:false" json:"is_primary"`
	IsActive           bool            `gorm:"not null;index" json:"is_active"`
	ParentMembershipID *uuid.UUID      `gorm:"type:uuid;index" json:"parent_membership_id,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	Plan               *MembershipPlan `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
	User               *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (m *UserMembership) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
