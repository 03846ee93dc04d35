package services

import (
	"context"
	"strings"
	"testing"

	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func seedBooking(t *testing.T, f *fixture, u models.User, svc models.Service, status models.BookingStatus) models.Booking {
	t.Helper()
	b := models.Booking{
		UserID:        u.ID,
		ServiceID:     svc.ID,
		Date:          DateOnly(testNow()),
		TimeSlot:      "10:00 AM",
		Status:        status,
		PaymentStatus: models.PaymentPaid,
		TotalAmount:   decimal.NewFromInt(1000),
	}
	if err := f.db.Create(&b).Error; err != nil {
		t.Fatalf("seed booking: %v", err)
	}
	return b
}

func TestCreateReviewOncePerBooking(t *testing.T) {
	f := newFixture(t)
	svc := NewReviewService(f.db, nil, f.notify)
	u := seedUser(t, f.db, "u@x.com")
	service := seedService(t, f.db, "1000")
	b := seedBooking(t, f, u, service, models.BookingConfirmed)
	ctx := context.Background()

	r, err := svc.CreateReview(ctx, u.ID, b.ID, 5, "  Lovely session  ")
	if err != nil {
		t.Fatalf("CreateReview: %v", err)
	}
	if r.Comment != "Lovely session" || r.ServiceID != service.ID {
		t.Errorf("review = %+v", r)
	}
	if f.realtime.sent[u.ID] != 1 {
		t.Errorf("notifications = %d, want 1", f.realtime.sent[u.ID])
	}

	_, err = svc.CreateReview(ctx, u.ID, b.ID, 4, "again")
	if !IsValidation(err) || !strings.Contains(err.Error(), "already reviewed") {
		t.Errorf("second review err = %v", err)
	}

	reviews, total, err := svc.ListServiceReviews(ctx, service.ID, 1, 10)
	if err != nil || total != 1 || len(reviews) != 1 {
		t.Errorf("ListServiceReviews = %d of %d, %v", len(reviews), total, err)
	}
}

func TestCreateReviewRejections(t *testing.T) {
	f := newFixture(t)
	svc := NewReviewService(f.db, NewContentFilter("overpriced"), nil)
	u := seedUser(t, f.db, "u@x.com")
	other := seedUser(t, f.db, "o@x.com")
	service := seedService(t, f.db, "1000")
	confirmed := seedBooking(t, f, u, service, models.BookingConfirmed)
	cancelled := seedBooking(t, f, other, service, models.BookingCancelled)
	ctx := context.Background()

	tests := []struct {
		name    string
		userID  uuid.UUID
		booking uuid.UUID
		rating  int
		comment string
		check   func(error) bool
	}{
		{"rating too low", u.ID, confirmed.ID, 0, "", IsValidation},
		{"rating too high", u.ID, confirmed.ID, 6, "", IsValidation},
		{"comment too long", u.ID, confirmed.ID, 3, strings.Repeat("a ", 600), IsValidation},
		{"extra banned word", u.ID, confirmed.ID, 3, "Overpriced for what it is", IsValidation},
		{"link", u.ID, confirmed.ID, 3, "see www.example.com/deal", IsValidation},
		{"someone else's booking", other.ID, confirmed.ID, 3, "", IsNotFound},
		{"cancelled booking", other.ID, cancelled.ID, 3, "", IsValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateReview(ctx, tt.userID, tt.booking, tt.rating, tt.comment); !tt.check(err) {
				t.Errorf("err = %v", err)
			}
		})
	}
	if n := countRows(t, f.db, &models.Review{}, ""); n != 0 {
		t.Errorf("reviews stored = %d, want 0", n)
	}
}

func TestContentFilter(t *testing.T) {
	f := NewContentFilter()
	tests := []struct {
		text   string
		ok     bool
		reason string
	}{
		{"", true, ""},
		{"Great massage, very relaxing.", true, ""},
		{"Total scam", false, "inappropriate_language"},
		{"book at https://elsewhere.test", false, "url_not_allowed"},
		{"mail me at me@example.com", false, "contact_info_not_allowed"},
		{"call +91 98765 43210", false, "contact_info_not_allowed"},
		{"sooooo good!!!!", false, "spam_detected"},
		{"VERY GREAT AMAZING STAFF", false, "excessive_caps"},
		{"Class act", true, ""},
	}
	for _, tt := range tests {
		ok, reason := f.Check(tt.text)
		if ok != tt.ok || reason != tt.reason {
			t.Errorf("Check(%q) = %v, %q; want %v, %q", tt.text, ok, reason, tt.ok, tt.reason)
		}
	}
	if rejectionMessage("unknown") == "" {
		t.Error("empty fallback message")
	}
}
