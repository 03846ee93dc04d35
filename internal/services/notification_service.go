package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Deliverer pushes payloads to live connections. realtime.Hub implements it.
type Deliverer interface {
	SendToUser(userID uuid.UUID, payload any) error
	Broadcast(payload any, exclude *uuid.UUID) error
}

type NotificationService struct {
	db        *gorm.DB
	deliverer Deliverer
}

// NewNotificationService takes a nil deliverer when no realtime transport is
// wired; notifications are then only persisted.
func NewNotificationService(db *gorm.DB, deliverer Deliverer) *NotificationService {
	return &NotificationService{db: db, deliverer: deliverer}
}

type CreateNotificationInput struct {
	UserID    uuid.UUID
	Type      models.NotificationType
	Title     string
	Message   string
	Data      any
	CreatedBy *uuid.UUID
}

// Announcement is the single live payload sent for a broadcast.
type Announcement struct {
	Type      models.NotificationType `json:"type"`
	Title     string                  `json:"title"`
	Message   string                  `json:"message"`
	CreatedBy *uuid.UUID              `json:"created_by,omitempty"`
}

func (s *NotificationService) CreateNotification(ctx context.Context, in CreateNotificationInput) (*models.Notification, error) {
	if in.UserID == uuid.Nil {
		return nil, validationf("user id is required")
	}
	if in.Title == "" || in.Message == "" {
		return nil, validationf("title and message are required")
	}
	if in.Type == "" {
		in.Type = models.NotificationSystem
	}

	data, err := encodeData(in.Data)
	if err != nil {
		return nil, validationf("invalid notification data: %v", err)
	}

	n := models.Notification{
		UserID:    in.UserID,
		Type:      in.Type,
		Title:     in.Title,
		Message:   in.Message,
		Status:    models.NotificationUnread,
		Data:      data,
		CreatedBy: in.CreatedBy,
	}
	if err := s.db.WithContext(ctx).Create(&n).Error; err != nil {
		return nil, dbError("create notification", err)
	}

	s.deliver(n.UserID, &n)
	return &n, nil
}

// Notify is CreateNotification for side effects of already committed writes:
// failures are logged and swallowed.
func (s *NotificationService) Notify(ctx context.Context, in CreateNotificationInput) {
	if _, err := s.CreateNotification(ctx, in); err != nil {
		slog.Error("notification not persisted",
			"user_id", in.UserID.String(), "type", string(in.Type), "error", err)
	}
}

func (s *NotificationService) deliver(userID uuid.UUID, n *models.Notification) {
	if s.deliverer == nil {
		slog.Debug("realtime registry unavailable, notification stored only", "notification_id", n.ID.String())
		return
	}
	if err := s.deliverer.SendToUser(userID, n); err != nil {
		slog.Warn("realtime delivery failed", "user_id", userID.String(), "notification_id", n.ID.String(), "error", err)
	}
}

func (s *NotificationService) GetUserNotifications(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.Notification, int64, error) {
	page, limit = normalizePage(page, limit)

	q := s.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, dbError("count notifications", err)
	}

	var items []models.Notification
	if err := q.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&items).Error; err != nil {
		return nil, 0, dbError("list notifications", err)
	}
	return items, total, nil
}

func (s *NotificationService) MarkAsRead(ctx context.Context, userID, notificationID uuid.UUID) (*models.Notification, error) {
	var n models.Notification
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", notificationID, userID).First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("notification")
	}
	if err != nil {
		return nil, dbError("load notification", err)
	}
	if n.Status == models.NotificationUnread {
		if err := s.db.WithContext(ctx).Model(&n).Update("status", models.NotificationRead).Error; err != nil {
			return nil, dbError("mark notification read", err)
		}
	}
	return &n, nil
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND status = ?", userID, models.NotificationUnread).
		Update("status", models.NotificationRead)
	if res.Error != nil {
		return 0, dbError("mark all notifications read", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *NotificationService) DeleteNotification(ctx context.Context, userID, notificationID uuid.UUID) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", notificationID, userID).Delete(&models.Notification{})
	if res.Error != nil {
		return dbError("delete notification", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("notification")
	}
	return nil
}

func (s *NotificationService) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND status = ?", userID, models.NotificationUnread).
		Count(&n).Error
	if err != nil {
		return 0, dbError("count unread notifications", err)
	}
	return n, nil
}

// BroadcastAnnouncement stores one notification per user, then sends a single
// live broadcast instead of one push per row.
func (s *NotificationService) BroadcastAnnouncement(ctx context.Context, title, message string, createdBy *uuid.UUID) (int, error) {
	if title == "" || message == "" {
		return 0, validationf("title and message are required")
	}

	var userIDs []uuid.UUID
	if err := s.db.WithContext(ctx).Model(&models.User{}).Order("created_at").Pluck("id", &userIDs).Error; err != nil {
		return 0, dbError("load users", err)
	}

	for i, id := range userIDs {
		n := models.Notification{
			UserID:    id,
			Type:      models.NotificationAdminAnnouncement,
			Title:     title,
			Message:   message,
			Status:    models.NotificationUnread,
			Data:      datatypes.JSON("{}"),
			CreatedBy: createdBy,
		}
		if err := s.db.WithContext(ctx).Create(&n).Error; err != nil {
			return i, dbError("create announcement", err)
		}
	}

	if s.deliverer != nil {
		msg := Announcement{Type: models.NotificationAdminAnnouncement, Title: title, Message: message, CreatedBy: createdBy}
		if err := s.deliverer.Broadcast(msg, createdBy); err != nil {
			slog.Warn("announcement broadcast failed", "error", err)
		}
	}

	slog.Info("announcement broadcast", "recipients", len(userIDs))
	return len(userIDs), nil
}

func encodeData(v any) (datatypes.JSON, error) {
	if v == nil {
		return datatypes.JSON("{}"), nil
	}
	if raw, ok := v.(datatypes.JSON); ok {
		return raw, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
