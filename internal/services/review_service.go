package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxCommentLength = 1000

type ReviewService struct {
	db       *gorm.DB
	filter   *ContentFilter
	notifier *NotificationService
}

func NewReviewService(db *gorm.DB, filter *ContentFilter, notifier *NotificationService) *ReviewService {
	if filter == nil {
		filter = NewContentFilter()
	}
	return &ReviewService{db: db, filter: filter, notifier: notifier}
}

// CreateReview accepts one review per confirmed booking of the caller.
func (s *ReviewService) CreateReview(ctx context.Context, userID, bookingID uuid.UUID, rating int, comment string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, validationf("rating must be between 1 and 5")
	}
	comment = strings.TrimSpace(comment)
	if len([]rune(comment)) > maxCommentLength {
		return nil, validationf("comment must be at most %d characters", maxCommentLength)
	}
	if ok, reason := s.filter.Check(comment); !ok {
		return nil, validationf("%s", rejectionMessage(reason))
	}

	var booking models.Booking
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", bookingID, userID).First(&booking).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("booking")
	}
	if err != nil {
		return nil, dbError("load booking", err)
	}
	if booking.Status != models.BookingConfirmed {
		return nil, validationf("only confirmed bookings can be reviewed")
	}

	review := models.Review{
		UserID:    userID,
		ServiceID: booking.ServiceID,
		BookingID: booking.ID,
		Rating:    rating,
		Comment:   comment,
	}
	if err := s.db.WithContext(ctx).Create(&review).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, validationf("booking already reviewed")
		}
		return nil, dbError("create review", err)
	}

	slog.Info("review created", "review_id", review.ID.String(), "booking_id", bookingID.String(), "rating", rating)
	if s.notifier != nil {
		s.notifier.Notify(ctx, CreateNotificationInput{
			UserID:  userID,
			Type:    models.NotificationReviewCreated,
			Title:   "Thanks for your review",
			Message: "Your review has been published.",
			Data:    map[string]string{"review_id": review.ID.String(), "service_id": booking.ServiceID.String()},
		})
	}
	return &review, nil
}

func (s *ReviewService) ListServiceReviews(ctx context.Context, serviceID uuid.UUID, page, limit int) ([]models.Review, int64, error) {
	page, limit = normalizePage(page, limit)
	q := s.db.WithContext(ctx).Model(&models.Review{}).Where("service_id = ?", serviceID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, dbError("count reviews", err)
	}
	var reviews []models.Review
	if err := q.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&reviews).Error; err != nil {
		return nil, 0, dbError("list reviews", err)
	}
	return reviews, total, nil
}
