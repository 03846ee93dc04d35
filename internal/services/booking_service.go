package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BookingService struct {
	db       *gorm.DB
	mailer   Mailer
	notifier *NotificationService
}

func NewBookingService(db *gorm.DB, mailer Mailer, notifier *NotificationService) *BookingService {
	return &BookingService{db: db, mailer: mailer, notifier: notifier}
}

type CreateBookingInput struct {
	ServiceID uuid.UUID
	UserID    uuid.UUID
	Date      time.Time
	TimeSlot  string
	PaymentID string
	Email     string
}

const msgAlreadyBooked = "service already booked by this user"

// CreateBooking confirms a paid booking and links the verified payment to it
// in one transaction. Mail and notification run after commit.
func (s *BookingService) CreateBooking(ctx context.Context, in CreateBookingInput) (*models.Booking, error) {
	in.TimeSlot = strings.TrimSpace(in.TimeSlot)
	if in.TimeSlot == "" || in.PaymentID == "" || in.Date.IsZero() {
		return nil, validationf("date, time slot and payment id are required")
	}
	date := DateOnly(in.Date)

	var (
		booking  models.Booking
		svc      models.Service
		user     models.User
		currency string
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&svc, "id = ?", in.ServiceID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return validationf("service not found")
			}
			return dbError("load service", err)
		}
		if err := tx.First(&user, "id = ?", in.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return validationf("user not found")
			}
			return dbError("load user", err)
		}

		var existing []models.Booking
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND service_id = ? AND status <> ?", in.UserID, in.ServiceID, models.BookingCancelled).
			Limit(1).Find(&existing).Error; err != nil {
			return dbError("check existing booking", err)
		}
		if len(existing) > 0 {
			return validationf(msgAlreadyBooked)
		}

		slotID, err := claimSlot(tx, svc.ID, date, in.TimeSlot)
		if err != nil {
			return err
		}

		booking = models.Booking{
			UserID:          in.UserID,
			ServiceID:       in.ServiceID,
			Date:            date,
			TimeSlot:        in.TimeSlot,
			TimeSlotID:      slotID,
			Status:          models.BookingConfirmed,
			PaymentStatus:   models.PaymentPaid,
			PaymentIntentID: in.PaymentID,
			TotalAmount:     svc.Price,
		}
		if err := tx.Create(&booking).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return validationf(msgAlreadyBooked)
			}
			return dbError("create booking", err)
		}

		var payment models.Payment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("payment_id = ? AND user_id = ?", in.PaymentID, in.UserID).
			First(&payment).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return validationf("payment not found, verify the payment first")
			}
			return dbError("load payment", err)
		}
		if payment.Status != models.PaymentPaid {
			return validationf("payment is %s, not paid", strings.ToLower(string(payment.Status)))
		}
		if payment.PaymentType != models.PaymentTypeService {
			return validationf("payment is not a service payment")
		}
		if payment.ServiceID == nil || *payment.ServiceID != svc.ID {
			return validationf("payment was not made for this service")
		}
		if !payment.Amount.Equal(svc.Price) {
			return validationf("payment amount %s does not match the service price %s",
				payment.Amount.StringFixed(2), svc.Price.StringFixed(2))
		}
		if payment.BookingID != nil {
			return validationf("payment already used for another booking")
		}

		currency = payment.Currency

		if err := tx.Model(&payment).Update("booking_id", booking.ID).Error; err != nil {
			return dbError("link payment", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("booking confirmed", "booking_id", booking.ID.String(), "user_id", in.UserID.String(), "payment_id", in.PaymentID)
	booking.Service = &svc
	s.confirm(ctx, &booking, &user, in.Email, currency)
	return &booking, nil
}

// claimSlot moves the matching slot AVAILABLE -> BOOKED. Dates without a
// calendar accept the free-text slot unchanged.
func claimSlot(tx *gorm.DB, serviceID uuid.UUID, date time.Time, startTime string) (*uuid.UUID, error) {
	var avail models.Availability
	err := tx.Where("service_id = ? AND date = ?", serviceID, date).First(&avail).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, dbError("load availability", err)
	}
	if !avail.IsBookable {
		return nil, validationf("service is not bookable on %s", date.Format("2006-01-02"))
	}

	var slot models.TimeSlot
	err = tx.Where("availability_id = ? AND start_time = ?", avail.ID, startTime).First(&slot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, validationf("time slot %s is not offered on %s", startTime, date.Format("2006-01-02"))
	}
	if err != nil {
		return nil, dbError("load time slot", err)
	}

	res := tx.Model(&models.TimeSlot{}).
		Where("id = ? AND status = ?", slot.ID, models.TimeSlotAvailable).
		Update("status", models.TimeSlotBooked)
	if res.Error != nil {
		return nil, dbError("claim time slot", res.Error)
	}
	if res.RowsAffected != 1 {
		return nil, validationf("time slot %s is no longer available", startTime)
	}
	return &slot.ID, nil
}

func (s *BookingService) confirm(ctx context.Context, b *models.Booking, user *models.User, email, currency string) {
	if email == "" {
		email = user.Email
	}
	if s.mailer != nil && email != "" {
		err := s.mailer.SendBookingConfirmation(ctx, BookingConfirmation{
			To:          email,
			UserName:    user.Name,
			ServiceName: b.Service.Name,
			Date:        b.Date,
			TimeSlot:    b.TimeSlot,
			Amount:      b.TotalAmount.StringFixed(2),
			Currency:    currency,
			BookingID:   b.ID.String(),
			PaymentID:   b.PaymentIntentID,
		})
		if err != nil {
			slog.Error("booking confirmation mail failed", "booking_id", b.ID.String(), "error", err)
		}
	}

	if s.notifier != nil {
		s.notifier.Notify(ctx, CreateNotificationInput{
			UserID:  b.UserID,
			Type:    models.NotificationBookingCreated,
			Title:   "Booking confirmed",
			Message: "Your booking for " + b.Service.Name + " on " + b.Date.Format("02 Jan 2006") + " at " + b.TimeSlot + " is confirmed.",
			Data:    map[string]string{"booking_id": b.ID.String(), "service_id": b.ServiceID.String()},
		})
	}
}

func (s *BookingService) GetBooking(ctx context.Context, userID, bookingID uuid.UUID) (*models.Booking, error) {
	var b models.Booking
	err := s.db.WithContext(ctx).Preload("Service").
		Where("id = ? AND user_id = ?", bookingID, userID).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("booking")
	}
	if err != nil {
		return nil, dbError("load booking", err)
	}
	return &b, nil
}

func (s *BookingService) GetUserBookings(ctx context.Context, userID uuid.UUID) ([]models.Booking, error) {
	var bookings []models.Booking
	if err := s.db.WithContext(ctx).Preload("Service").
		Where("user_id = ?", userID).Order("date DESC, created_at DESC").
		Find(&bookings).Error; err != nil {
		return nil, dbError("list user bookings", err)
	}
	return bookings, nil
}

// ListBookings is the admin view over every booking.
func (s *BookingService) ListBookings(ctx context.Context, status string, page, limit int) ([]models.Booking, int64, error) {
	page, limit = normalizePage(page, limit)
	q := s.db.WithContext(ctx).Model(&models.Booking{})
	if status != "" {
		q = q.Where("status = ?", strings.ToUpper(status))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, dbError("count bookings", err)
	}
	var bookings []models.Booking
	if err := q.Preload("Service").Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).Find(&bookings).Error; err != nil {
		return nil, 0, dbError("list bookings", err)
	}
	return bookings, total, nil
}

// CancelBooking flips the booking to CANCELLED and releases its slot.
func (s *BookingService) CancelBooking(ctx context.Context, userID, bookingID uuid.UUID) (*models.Booking, error) {
	var b models.Booking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND user_id = ?", bookingID, userID).First(&b).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("booking")
			}
			return dbError("load booking", err)
		}
		if b.Status == models.BookingCancelled {
			return validationf("booking already cancelled")
		}
		if err := tx.Model(&b).Update("status", models.BookingCancelled).Error; err != nil {
			return dbError("cancel booking", err)
		}
		if b.TimeSlotID != nil {
			if err := tx.Model(&models.TimeSlot{}).
				Where("id = ? AND status = ?", *b.TimeSlotID, models.TimeSlotBooked).
				Update("status", models.TimeSlotAvailable).Error; err != nil {
				return dbError("release time slot", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("booking cancelled", "booking_id", b.ID.String(), "user_id", userID.String())
	if s.notifier != nil {
		s.notifier.Notify(ctx, CreateNotificationInput{
			UserID:  userID,
			Type:    models.NotificationBookingCancelled,
			Title:   "Booking cancelled",
			Message: "Your booking on " + b.Date.Format("02 Jan 2006") + " at " + b.TimeSlot + " was cancelled.",
			Data:    map[string]string{"booking_id": b.ID.String()},
		})
	}
	return &b, nil
}

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
