package services

import (
	"context"
	"errors"
	"testing"

	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/testutil"
	"github.com/google/uuid"
)

func TestCreateNotificationPersistsWithoutRegistry(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewNotificationService(db, nil)
	u := seedUser(t, db, "u@x.com")

	n, err := svc.CreateNotification(context.Background(), CreateNotificationInput{
		UserID: u.ID, Type: models.NotificationSystem, Title: "Hello", Message: "World",
	})
	if err != nil {
		t.Fatalf("CreateNotification: %v", err)
	}
	if n.Status != models.NotificationUnread {
		t.Errorf("status = %s, want UNREAD", n.Status)
	}
	if c := countRows(t, db, &models.Notification{}, "id = ?", n.ID); c != 1 {
		t.Errorf("stored rows = %d, want 1", c)
	}
}

func TestCreateNotificationSwallowsDeliveryError(t *testing.T) {
	db := testutil.NewTestDB(t)
	d := &mockDeliverer{SendFunc: func(uuid.UUID, any) error { return errors.New("socket closed") }}
	svc := NewNotificationService(db, d)
	u := seedUser(t, db, "u@x.com")

	if _, err := svc.CreateNotification(context.Background(), CreateNotificationInput{
		UserID: u.ID, Title: "t", Message: "m", Data: map[string]int{"n": 1},
	}); err != nil {
		t.Fatalf("CreateNotification = %v, want nil despite delivery failure", err)
	}
	if d.sent[u.ID] != 1 {
		t.Errorf("delivery attempts = %d, want 1", d.sent[u.ID])
	}
	if c := countRows(t, db, &models.Notification{}, "user_id = ?", u.ID); c != 1 {
		t.Errorf("stored rows = %d, want 1", c)
	}
}

func TestNotificationOwnerScoping(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewNotificationService(db, nil)
	ctx := context.Background()
	owner := seedUser(t, db, "owner@x.com")
	other := seedUser(t, db, "other@x.com")

	n, err := svc.CreateNotification(ctx, CreateNotificationInput{UserID: owner.ID, Title: "t", Message: "m"})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.MarkAsRead(ctx, other.ID, n.ID); !IsNotFound(err) {
		t.Errorf("MarkAsRead by other: err = %v, want NotFoundError", err)
	}
	if err := svc.DeleteNotification(ctx, other.ID, n.ID); !IsNotFound(err) {
		t.Errorf("DeleteNotification by other: err = %v, want NotFoundError", err)
	}

	if _, err := svc.MarkAsRead(ctx, owner.ID, n.ID); err != nil {
		t.Fatalf("MarkAsRead: %v", err)
	}
	if c, _ := svc.GetUnreadCount(ctx, owner.ID); c != 0 {
		t.Errorf("unread = %d, want 0", c)
	}
	if err := svc.DeleteNotification(ctx, owner.ID, n.ID); err != nil {
		t.Fatalf("DeleteNotification: %v", err)
	}
}

func TestGetUserNotificationsPaginates(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewNotificationService(db, nil)
	ctx := context.Background()
	u := seedUser(t, db, "u@x.com")
	for i := 0; i < 5; i++ {
		if _, err := svc.CreateNotification(ctx, CreateNotificationInput{UserID: u.ID, Title: "t", Message: "m"}); err != nil {
			t.Fatal(err)
		}
	}

	items, total, err := svc.GetUserNotifications(ctx, u.ID, 2, 2)
	if err != nil {
		t.Fatalf("GetUserNotifications: %v", err)
	}
	if total != 5 || len(items) != 2 {
		t.Errorf("page = %d items of %d, want 2 of 5", len(items), total)
	}

	marked, err := svc.MarkAllAsRead(ctx, u.ID)
	if err != nil || marked != 5 {
		t.Errorf("MarkAllAsRead = %d, %v; want 5", marked, err)
	}
}

func TestBroadcastAnnouncementOnePushManyRows(t *testing.T) {
	db := testutil.NewTestDB(t)
	d := &mockDeliverer{}
	svc := NewNotificationService(db, d)
	admin := seedUser(t, db, "admin@x.com")
	seedUser(t, db, "a@x.com")
	seedUser(t, db, "b@x.com")

	n, err := svc.BroadcastAnnouncement(context.Background(), "Closed Monday", "The spa is closed on Monday.", &admin.ID)
	if err != nil {
		t.Fatalf("BroadcastAnnouncement: %v", err)
	}
	if n != 3 {
		t.Errorf("recipients = %d, want 3", n)
	}
	if c := countRows(t, db, &models.Notification{}, "type = ?", models.NotificationAdminAnnouncement); c != 3 {
		t.Errorf("stored = %d, want 3", c)
	}
	if d.broadcasts != 1 || len(d.sent) != 0 {
		t.Errorf("broadcasts = %d, targeted sends = %d; want 1 and 0", d.broadcasts, len(d.sent))
	}
}

func TestCreateNotificationValidation(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewNotificationService(db, nil)
	if _, err := svc.CreateNotification(context.Background(), CreateNotificationInput{Title: "t", Message: "m"}); !IsValidation(err) {
		t.Errorf("missing user: err = %v", err)
	}
	if _, err := svc.CreateNotification(context.Background(), CreateNotificationInput{UserID: uuid.New()}); !IsValidation(err) {
		t.Errorf("missing title: err = %v", err)
	}
}
