package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentService struct {
	db            *gorm.DB
	gateway       PaymentGateway
	notifier      *NotificationService
	keySecret     string
	webhookSecret string
	currency      string
}

func NewPaymentService(db *gorm.DB, gateway PaymentGateway, notifier *NotificationService, cfg *config.Config) *PaymentService {
	currency := cfg.Currency
	if currency == "" {
		currency = "INR"
	}
	return &PaymentService{
		db:            db,
		gateway:       gateway,
		notifier:      notifier,
		keySecret:     cfg.RazorpayKeySecret,
		webhookSecret: cfg.RazorpayWebhookSecret,
		currency:      currency,
	}
}

// CreateOrder opens a gateway order for one service. Nothing is stored
// locally until the checkout is verified.
func (s *PaymentService) CreateOrder(ctx context.Context, userID, serviceID uuid.UUID) (*GatewayOrder, error) {
	db := s.db.WithContext(ctx)

	var svc models.Service
	if err := db.First(&svc, "id = ?", serviceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, validationf("service not found")
		}
		return nil, dbError("load service", err)
	}

	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, validationf("user not found")
		}
		return nil, dbError("load user", err)
	}

	var active int64
	if err := db.Model(&models.Booking{}).
		Where("user_id = ? AND service_id = ? AND status <> ?", userID, serviceID, models.BookingCancelled).
		Count(&active).Error; err != nil {
		return nil, dbError("check existing booking", err)
	}
	if active > 0 {
		return nil, validationf("service already booked by this user")
	}

	notes := map[string]string{
		"service_id":   svc.ID.String(),
		"user_id":      user.ID.String(),
		"payment_type": string(models.PaymentTypeService),
	}
	order, err := s.gateway.CreateOrder(ctx, minorUnits(svc.Price), s.currency, receipt("svc"), notes)
	if err != nil {
		return nil, fmt.Errorf("create gateway order: %w", err)
	}

	slog.Info("payment order created", "order_id", order.ID, "user_id", userID.String(), "service_id", serviceID.String())
	return order, nil
}

type VerifyPaymentInput struct {
	OrderID     string
	PaymentID   string
	Signature   string
	UserID      uuid.UUID
	ServiceID   *uuid.UUID
	Amount      decimal.Decimal
	Currency    string
	Status      models.PaymentStatus
	PaymentType models.PaymentType
}

// VerifyPaymentSignature checks the checkout signature and records the attempt
// whatever the outcome. A mismatch is stored as FAILED and reported as false.
func (s *PaymentService) VerifyPaymentSignature(ctx context.Context, in VerifyPaymentInput) (bool, error) {
	if in.OrderID == "" || in.PaymentID == "" || in.Signature == "" {
		return false, validationf("order id, payment id and signature are required")
	}
	if in.UserID == uuid.Nil {
		return false, validationf("user id is required")
	}

	valid := VerifySignature(s.keySecret, in.OrderID+"|"+in.PaymentID, in.Signature)

	status := in.Status
	if status == "" {
		status = models.PaymentPaid
	}
	if !valid {
		status = models.PaymentFailed
	}
	if in.PaymentType == "" {
		in.PaymentType = models.PaymentTypeService
	}
	if in.Currency == "" {
		in.Currency = s.currency
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.Amount.IsZero() && in.ServiceID != nil {
			var svc models.Service
			if err := tx.First(&svc, "id = ?", *in.ServiceID).Error; err == nil {
				in.Amount = svc.Price
			}
		}

		var existing models.Payment
		err := tx.Where("payment_id = ?", in.PaymentID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			p := models.Payment{
				OrderID:     in.OrderID,
				PaymentID:   in.PaymentID,
				Signature:   in.Signature,
				UserID:      in.UserID,
				ServiceID:   in.ServiceID,
				Amount:      in.Amount,
				Currency:    in.Currency,
				Status:      status,
				PaymentType: in.PaymentType,
			}
			if err := tx.Create(&p).Error; err != nil {
				return dbError("create payment", err)
			}
			return nil
		case err != nil:
			return dbError("load payment", err)
		}

		if existing.UserID != in.UserID {
			return unauthorized("payment belongs to another user")
		}
		// A mismatched attempt may only mark a pending row FAILED. The stored
		// order id and signature always belong to a verified attempt.
		updates := map[string]any{}
		if canAdvance(existing.Status, status) {
			updates["status"] = status
		}
		if valid {
			updates["order_id"] = in.OrderID
			updates["signature"] = in.Signature
			if !in.Amount.IsZero() {
				updates["amount"] = in.Amount
			}
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&existing).Updates(updates).Error; err != nil {
			return dbError("update payment", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	if !valid {
		slog.Warn("payment signature mismatch", "order_id", in.OrderID, "payment_id", in.PaymentID, "user_id", in.UserID.String())
	}
	return valid, nil
}

type PaymentDetail struct {
	models.Payment
	Gateway *GatewayPayment `json:"gateway"`
}

// GetPaymentDetails joins local rows with the gateway record. Rows the
// gateway cannot resolve are left out.
func (s *PaymentService) GetPaymentDetails(ctx context.Context, userID uuid.UUID) ([]PaymentDetail, error) {
	var payments []models.Payment
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&payments).Error; err != nil {
		return nil, dbError("list payments", err)
	}

	details := make([]PaymentDetail, 0, len(payments))
	for _, p := range payments {
		gp, err := s.gateway.FetchPayment(ctx, p.PaymentID)
		if err != nil {
			slog.Warn("gateway payment fetch failed", "payment_id", p.PaymentID, "error", err)
			continue
		}
		details = append(details, PaymentDetail{Payment: p, Gateway: gp})
	}
	return details, nil
}

// ProcessRefund refunds at the gateway; nil amount means the full captured
// amount. A full refund also marks the local payment REFUNDED.
func (s *PaymentService) ProcessRefund(ctx context.Context, paymentID string, amount *int64) (*GatewayRefund, error) {
	if paymentID == "" {
		return nil, validationf("payment id is required")
	}
	if amount != nil && *amount <= 0 {
		return nil, validationf("refund amount must be positive")
	}

	refund, err := s.gateway.Refund(ctx, paymentID, amount)
	if err != nil {
		return nil, fmt.Errorf("gateway refund %s: %w", paymentID, err)
	}
	slog.Info("refund issued", "payment_id", paymentID, "refund_id", refund.ID, "amount", refund.Amount)

	var p models.Payment
	err = s.db.WithContext(ctx).Where("payment_id = ?", paymentID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return refund, nil
	}
	if err != nil {
		slog.Error("refund issued but payment lookup failed", "payment_id", paymentID, "error", err)
		return refund, nil
	}

	if amount == nil || *amount >= minorUnits(p.Amount) {
		changed, err := s.applyStatus(ctx, s.db.WithContext(ctx), &p, models.PaymentRefunded)
		if err != nil {
			slog.Error("refund issued but payment not marked refunded", "payment_id", paymentID, "error", err)
			return refund, nil
		}
		if changed {
			s.notifyPayment(ctx, &p, models.PaymentRefunded)
		}
	}
	return refund, nil
}

type webhookPayload struct {
	Event   string `json:"event"`
	Payload struct {
		Payment *struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
				Status  string `json:"status"`
			} `json:"entity"`
		} `json:"payment"`
		Refund *struct {
			Entity struct {
				ID        string `json:"id"`
				PaymentID string `json:"payment_id"`
			} `json:"entity"`
		} `json:"refund"`
	} `json:"payload"`
}

// HandleWebhook applies a signed gateway event at most once per event id.
// It reports whether the event was new.
func (s *PaymentService) HandleWebhook(ctx context.Context, eventID string, body []byte, signature string) (bool, error) {
	if s.webhookSecret == "" {
		return false, unauthorized("webhook secret not configured")
	}
	if !VerifySignature(s.webhookSecret, string(body), signature) {
		return false, unauthorized("invalid webhook signature")
	}

	var evt webhookPayload
	if err := json.Unmarshal(body, &evt); err != nil {
		return false, validationf("invalid webhook body")
	}
	if eventID == "" {
		sum := sha256.Sum256(body)
		eventID = hex.EncodeToString(sum[:])
	}

	var target models.PaymentStatus
	var paymentID string
	switch evt.Event {
	case "payment.captured":
		target = models.PaymentPaid
	case "payment.failed":
		target = models.PaymentFailed
	case "refund.processed":
		target = models.PaymentRefunded
	}
	if evt.Payload.Payment != nil {
		paymentID = evt.Payload.Payment.Entity.ID
	}
	if target == models.PaymentRefunded && evt.Payload.Refund != nil && evt.Payload.Refund.Entity.PaymentID != "" {
		paymentID = evt.Payload.Refund.Entity.PaymentID
	}

	var updated *models.Payment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		mark := models.WebhookEvent{ID: eventID, EventType: evt.Event, ProcessedAt: time.Now().UTC()}
		if err := tx.Create(&mark).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errEventSeen
			}
			return dbError("record webhook event", err)
		}
		if target == "" || paymentID == "" {
			return nil
		}

		var p models.Payment
		err := tx.Where("payment_id = ?", paymentID).First(&p).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			slog.Info("webhook for unknown payment", "event", evt.Event, "payment_id", paymentID)
			return nil
		}
		if err != nil {
			return dbError("load payment", err)
		}
		changed, err := s.applyStatus(ctx, tx, &p, target)
		if err != nil {
			return err
		}
		if changed {
			updated = &p
		}
		return nil
	})
	if errors.Is(err, errEventSeen) {
		slog.Info("webhook event already processed", "event_id", eventID)
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if updated != nil {
		s.notifyPayment(ctx, updated, target)
	}
	return true, nil
}

var errEventSeen = errors.New("webhook event already processed")

// applyStatus moves a payment, and its linked booking, forward to status.
func (s *PaymentService) applyStatus(ctx context.Context, tx *gorm.DB, p *models.Payment, status models.PaymentStatus) (bool, error) {
	if !canAdvance(p.Status, status) || p.Status == status {
		return false, nil
	}
	res := tx.Model(&models.Payment{}).
		Where("id = ? AND status = ?", p.ID, p.Status).
		Update("status", status)
	if res.Error != nil {
		return false, dbError("update payment status", res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	p.Status = status

	if p.BookingID != nil {
		if err := tx.Model(&models.Booking{}).Where("id = ?", *p.BookingID).
			Update("payment_status", status).Error; err != nil {
			return false, dbError("update booking payment status", err)
		}
	}
	return true, nil
}

func (s *PaymentService) notifyPayment(ctx context.Context, p *models.Payment, status models.PaymentStatus) {
	if s.notifier == nil {
		return
	}
	in := CreateNotificationInput{
		UserID: p.UserID,
		Data:   map[string]string{"payment_id": p.PaymentID, "order_id": p.OrderID},
	}
	switch status {
	case models.PaymentPaid:
		in.Type, in.Title, in.Message = models.NotificationPaymentSuccess, "Payment received",
			fmt.Sprintf("We received your payment of %s %s.", p.Amount.StringFixed(2), p.Currency)
	case models.PaymentFailed:
		in.Type, in.Title, in.Message = models.NotificationPaymentFailed, "Payment failed",
			"Your payment could not be completed. No money was captured."
	case models.PaymentRefunded:
		in.Type, in.Title, in.Message = models.NotificationPaymentRefunded, "Payment refunded",
			fmt.Sprintf("Your payment %s has been refunded.", p.PaymentID)
	default:
		return
	}
	s.notifier.Notify(ctx, in)
}

var paymentRank = map[models.PaymentStatus]int{
	models.PaymentPending:  0,
	models.PaymentFailed:   1,
	models.PaymentPaid:     2,
	models.PaymentRefunded: 3,
}

// canAdvance permits same-state and forward moves only.
func canAdvance(from, to models.PaymentStatus) bool {
	return paymentRank[to] >= paymentRank[from]
}

// VerifySignature compares a hex HMAC-SHA256 of message in constant time.
func VerifySignature(secret, message, signature string) bool {
	return hmac.Equal([]byte(Sign(secret, message)), []byte(signature))
}

// Sign is the counterpart of VerifySignature.
func Sign(secret, message string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

func minorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func receipt(prefix string) string {
	return prefix + "_" + uuid.NewString()[:18]
}
