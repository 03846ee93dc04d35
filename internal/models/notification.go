package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationBookingCreated      NotificationType = "BOOKING_CREATED"
	NotificationBookingCancelled    NotificationType = "BOOKING_CANCELLED"
	NotificationPaymentSuccess      NotificationType = "PAYMENT_SUCCESS"
	NotificationPaymentFailed       NotificationType = "PAYMENT_FAILED"
	NotificationPaymentRefunded     NotificationType = "PAYMENT_REFUNDED"
	NotificationMembershipActivated NotificationType = "MEMBERSHIP_ACTIVATED"
	NotificationMembershipCancelled NotificationType = "MEMBERSHIP_CANCELLED"
	NotificationMemberAdded         NotificationType = "MEMBERSHIP_MEMBER_ADDED"
	NotificationMemberRemoved       NotificationType = "MEMBERSHIP_MEMBER_REMOVED"
	NotificationMembershipExpired   NotificationType = "MEMBERSHIP_EXPIRED"
	NotificationReviewCreated       NotificationType = "REVIEW_CREATED"
	NotificationAdminAnnouncement   NotificationType = "ADMIN_ANNOUNCEMENT"
	NotificationSystem              NotificationType = "SYSTEM"
)

type NotificationStatus string

const (
	NotificationUnread   NotificationStatus = "UNREAD"
	NotificationRead     NotificationStatus = "READ"
	NotificationArchived NotificationStatus = "ARCHIVED"
)

type Notification struct {
	ID        uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID          `gorm:"type:uuid;not null;index" json:"user_id"`
	Type      NotificationType   `gorm:"size:40;not null" json:"type"`
	Title     string             `gorm:"size:255;not null" json:"title"`
	Message   string             `gorm:"type:text;not null" json:"message"`
	Status    NotificationStatus `gorm:"size:16;not null;default:'UNREAD';index" json:"status"`
	Data      datatypes.JSON     `gorm:"type:jsonb;default:'{}'" json:"data,omitempty"`
	CreatedBy *uuid.UUID         `gorm:"type:uuid" json:"created_by,omitempty"`
	CreatedAt time.Time          `gorm:"index" json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
