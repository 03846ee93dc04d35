package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	testKeySecret     = "rzp_test_secret"
	testWebhookSecret = "whsec_test"
)

type mockGateway struct {
	mu        sync.Mutex
	orders    []GatewayOrder
	refunds   []string
	refundAmt []*int64

	CreateOrderFunc    func(amountMinor int64, currency, receipt string, notes map[string]string) (*GatewayOrder, error)
	FetchPaymentFunc   func(paymentID string) (*GatewayPayment, error)
	RefundFunc         func(paymentID string, amountMinor *int64) (*GatewayRefund, error)
	CreateCustomerFunc func(name, contact string, notes map[string]string) (*GatewayCustomer, error)
}

func (m *mockGateway) CreateOrder(_ context.Context, amountMinor int64, currency, receipt string, notes map[string]string) (*GatewayOrder, error) {
	if m.CreateOrderFunc != nil {
		return m.CreateOrderFunc(amountMinor, currency, receipt, notes)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	o := GatewayOrder{
		ID:       fmt.Sprintf("order_%d", len(m.orders)+1),
		Amount:   amountMinor,
		Currency: currency,
		Receipt:  receipt,
		Status:   "created",
		Notes:    notes,
	}
	m.orders = append(m.orders, o)
	return &o, nil
}

func (m *mockGateway) FetchPayment(_ context.Context, paymentID string) (*GatewayPayment, error) {
	if m.FetchPaymentFunc != nil {
		return m.FetchPaymentFunc(paymentID)
	}
	return &GatewayPayment{ID: paymentID, Status: "captured"}, nil
}

func (m *mockGateway) Refund(_ context.Context, paymentID string, amountMinor *int64) (*GatewayRefund, error) {
	m.mu.Lock()
	m.refunds = append(m.refunds, paymentID)
	m.refundAmt = append(m.refundAmt, amountMinor)
	m.mu.Unlock()
	if m.RefundFunc != nil {
		return m.RefundFunc(paymentID, amountMinor)
	}
	var amt int64
	if amountMinor != nil {
		amt = *amountMinor
	}
	return &GatewayRefund{ID: "rfnd_" + paymentID, PaymentID: paymentID, Amount: amt, Status: "processed"}, nil
}

func (m *mockGateway) CreateCustomer(_ context.Context, name, contact string, notes map[string]string) (*GatewayCustomer, error) {
	if m.CreateCustomerFunc != nil {
		return m.CreateCustomerFunc(name, contact, notes)
	}
	return &GatewayCustomer{ID: "cust_" + name, Name: name, Contact: contact}, nil
}

func (m *mockGateway) refundCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.refunds)
}

type mockMailer struct {
	mu       sync.Mutex
	bookings []BookingConfirmation
	otps     map[string]string

	SendBookingFunc func(msg BookingConfirmation) error
	SendOTPFunc     func(to, code string) error
}

func (m *mockMailer) SendBookingConfirmation(_ context.Context, msg BookingConfirmation) error {
	m.mu.Lock()
	m.bookings = append(m.bookings, msg)
	m.mu.Unlock()
	if m.SendBookingFunc != nil {
		return m.SendBookingFunc(msg)
	}
	return nil
}

func (m *mockMailer) SendOTP(_ context.Context, to, code string, _ time.Duration) error {
	m.mu.Lock()
	if m.otps == nil {
		m.otps = make(map[string]string)
	}
	m.otps[to] = code
	m.mu.Unlock()
	if m.SendOTPFunc != nil {
		return m.SendOTPFunc(to, code)
	}
	return nil
}

func (m *mockMailer) lastOTP(to string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.otps[to]
}

type mockDeliverer struct {
	mu         sync.Mutex
	sent       map[uuid.UUID]int
	broadcasts int

	SendFunc func(userID uuid.UUID, payload any) error
}

func (m *mockDeliverer) SendToUser(userID uuid.UUID, payload any) error {
	m.mu.Lock()
	if m.sent == nil {
		m.sent = make(map[uuid.UUID]int)
	}
	m.sent[userID]++
	m.mu.Unlock()
	if m.SendFunc != nil {
		return m.SendFunc(userID, payload)
	}
	return nil
}

func (m *mockDeliverer) Broadcast(payload any, exclude *uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.broadcasts++
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:                 "test-jwt-secret",
		JWTAccessExpiry:           15 * time.Minute,
		JWTRefreshExpiry:          24 * time.Hour,
		OTPExpiry:                 5 * time.Minute,
		OTPLength:                 6,
		RazorpayKeySecret:         testKeySecret,
		RazorpayWebhookSecret:     testWebhookSecret,
		Currency:                  "INR",
		AvailabilityHorizonMonths: 3,
	}
}

type fixture struct {
	db       *gorm.DB
	gateway  *mockGateway
	mailer   *mockMailer
	realtime *mockDeliverer
	notify   *NotificationService
	payments *PaymentService
	bookings *BookingService
	members  *MembershipService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	f := &fixture{db: db, gateway: &mockGateway{}, mailer: &mockMailer{}, realtime: &mockDeliverer{}}
	f.notify = NewNotificationService(db, f.realtime)
	f.payments = NewPaymentService(db, f.gateway, f.notify, testConfig())
	f.bookings = NewBookingService(db, f.mailer, f.notify)
	f.members = NewMembershipService(db, f.payments, f.notify)
	return f
}

func seedUser(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	u := models.User{Name: email, Email: email, Role: "user"}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return u
}

func seedService(t *testing.T, db *gorm.DB, price string) models.Service {
	t.Helper()
	s := models.Service{Name: "Deep tissue massage", Price: decimal.RequireFromString(price), Category: "massage"}
	if err := db.Create(&s).Error; err != nil {
		t.Fatalf("seed service: %v", err)
	}
	return s
}

func seedPlan(t *testing.T, db *gorm.DB, maxMembers int, cost string) models.MembershipPlan {
	t.Helper()
	p := models.MembershipPlan{Name: "Family", MaxMembers: maxMembers, RenewalPeriodYears: 1, Cost: decimal.RequireFromString(cost)}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed plan: %v", err)
	}
	return p
}

// verifiedPayment records a correctly signed PAID payment.
func verifiedPayment(t *testing.T, f *fixture, userID uuid.UUID, serviceID *uuid.UUID, paymentID string, typ models.PaymentType) {
	t.Helper()
	orderID := "order_" + paymentID
	ok, err := f.payments.VerifyPaymentSignature(context.Background(), VerifyPaymentInput{
		OrderID:     orderID,
		PaymentID:   paymentID,
		Signature:   Sign(testKeySecret, orderID+"|"+paymentID),
		UserID:      userID,
		ServiceID:   serviceID,
		Status:      models.PaymentPaid,
		PaymentType: typ,
	})
	if err != nil || !ok {
		t.Fatalf("verify payment %s = %v, %v", paymentID, ok, err)
	}
}

func countRows(t *testing.T, db *gorm.DB, model any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	q := db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func testNow() time.Time {
	return time.Now().UTC()
}
