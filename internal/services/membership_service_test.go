package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/models"
	"github.com/google/uuid"
)

type membershipFixture struct {
	*fixture
	plan    models.MembershipPlan
	primary models.User
}

func newMembershipFixture(t *testing.T, maxMembers int, memberEmails ...string) *membershipFixture {
	t.Helper()
	f := newFixture(t)
	m := &membershipFixture{fixture: f, plan: seedPlan(t, f.db, maxMembers, "5000")}
	m.primary = seedUser(t, f.db, "primary@x.com")
	for _, e := range memberEmails {
		seedUser(t, f.db, e)
	}
	verifiedPayment(t, f, m.primary.ID, nil, "pay_m", models.PaymentTypeMembership)
	return m
}

func (m *membershipFixture) subscribe(t *testing.T, emails ...string) ([]models.UserMembership, error) {
	t.Helper()
	return m.members.SubscribeToMembership(context.Background(), SubscribeInput{
		PlanID:        m.plan.ID,
		MemberEmails:  emails,
		PaymentID:     "pay_m",
		PrimaryUserID: m.primary.ID,
	})
}

func TestSubscribeCreatesGroup(t *testing.T) {
	m := newMembershipFixture(t, 3, "a@x.com", "b@x.com")

	rows, err := m.subscribe(t, "a@x.com", "B@x.com")
	if err != nil {
		t.Fatalf("SubscribeToMembership: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	primary := rows[0]
	if !primary.IsPrimary || primary.ParentMembershipID != nil || primary.UserID != m.primary.ID {
		t.Errorf("primary row = %+v", primary)
	}
	for _, r := range rows[1:] {
		if r.IsPrimary || r.ParentMembershipID == nil || *r.ParentMembershipID != primary.ID {
			t.Errorf("member row = %+v", r)
		}
		if !r.EndDate.Equal(primary.EndDate) || !r.StartDate.Equal(primary.StartDate) {
			t.Errorf("member dates differ from primary")
		}
	}
	if got := primary.EndDate.Sub(primary.StartDate); got < 365*24*time.Hour {
		t.Errorf("term = %v, want one year", got)
	}

	var p models.Payment
	m.db.Where("payment_id = ?", "pay_m").First(&p)
	if p.MembershipID == nil || *p.MembershipID != primary.ID {
		t.Errorf("payment membership_id = %v", p.MembershipID)
	}
	if n := countRows(t, m.db, &models.Notification{}, "type = ?", models.NotificationMembershipActivated); n != 3 {
		t.Errorf("activation notifications = %d, want 3", n)
	}
	if m.gateway.refundCount() != 0 {
		t.Errorf("refunds = %d, want 0", m.gateway.refundCount())
	}
}

func TestSubscribeOverflowCreatesNothing(t *testing.T) {
	m := newMembershipFixture(t, 2, "a@x.com", "b@x.com")

	_, err := m.subscribe(t, "a@x.com", "b@x.com")
	if !IsValidation(err) || !strings.Contains(err.Error(), "Maximum 2 members allowed") {
		t.Fatalf("err = %v, want Maximum 2 members allowed", err)
	}
	if n := countRows(t, m.db, &models.UserMembership{}, ""); n != 0 {
		t.Errorf("memberships = %d, want 0", n)
	}
	if m.gateway.refundCount() != 1 {
		t.Fatalf("refunds = %d, want 1 compensating refund", m.gateway.refundCount())
	}
	if amt := m.gateway.refundAmt[0]; amt == nil || *amt != 500000 {
		t.Errorf("refund amount = %v, want 500000", amt)
	}
}

func TestSubscribeUnknownEmailsListed(t *testing.T) {
	m := newMembershipFixture(t, 4, "a@x.com")

	_, err := m.subscribe(t, "a@x.com", "ghost1@x.com", "ghost2@x.com")
	if !IsValidation(err) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	for _, e := range []string{"ghost1@x.com", "ghost2@x.com"} {
		if !strings.Contains(err.Error(), e) {
			t.Errorf("error %q does not name %s", err, e)
		}
	}
	if n := countRows(t, m.db, &models.UserMembership{}, ""); n != 0 {
		t.Errorf("memberships = %d, want 0", n)
	}
}

func TestSubscribeRejectsSecondActiveMembership(t *testing.T) {
	m := newMembershipFixture(t, 3)
	if _, err := m.subscribe(t); err != nil {
		t.Fatalf("first subscribe: %v", err)
	}

	verifiedPayment(t, m.fixture, m.primary.ID, nil, "pay_m2", models.PaymentTypeMembership)
	_, err := m.members.SubscribeToMembership(context.Background(), SubscribeInput{
		PlanID: m.plan.ID, PaymentID: "pay_m2", PrimaryUserID: m.primary.ID,
	})
	if !IsValidation(err) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if n := countRows(t, m.db, &models.UserMembership{}, "is_active = ?", true); n != 1 {
		t.Errorf("active memberships = %d, want 1", n)
	}
	if m.gateway.refunds[len(m.gateway.refunds)-1] != "pay_m2" {
		t.Errorf("refunded %v, want pay_m2", m.gateway.refunds)
	}
}

func TestSubscribeReplayedPaymentNotRefunded(t *testing.T) {
	m := newMembershipFixture(t, 3)
	if _, err := m.subscribe(t); err != nil {
		t.Fatalf("first subscribe: %v", err)
	}
	if _, err := m.subscribe(t); !IsValidation(err) {
		t.Fatalf("replay err = %v, want ValidationError", err)
	}
	if m.gateway.refundCount() != 0 {
		t.Errorf("refunds = %d, want 0 for a spent payment", m.gateway.refundCount())
	}
}

func TestSubscribePaymentLinkedElsewhereNotRefunded(t *testing.T) {
	m := newMembershipFixture(t, 3)
	other := uuid.New()
	if err := m.db.Model(&models.Payment{}).Where("payment_id = ?", "pay_m").
		Update("membership_id", other).Error; err != nil {
		t.Fatal(err)
	}

	_, err := m.subscribe(t)
	if !IsValidation(err) || !strings.Contains(err.Error(), "already used") {
		t.Fatalf("err = %v, want payment already used", err)
	}
	if m.gateway.refundCount() != 0 {
		t.Errorf("refunds = %d, want 0 for a payment another subscribe owns", m.gateway.refundCount())
	}
	var p models.Payment
	m.db.Where("payment_id = ?", "pay_m").First(&p)
	if p.Status != models.PaymentPaid || p.MembershipID == nil || *p.MembershipID != other {
		t.Errorf("payment = %s / %v, want PAID linked to %s", p.Status, p.MembershipID, other)
	}
	if n := countRows(t, m.db, &models.UserMembership{}, ""); n != 0 {
		t.Errorf("memberships = %d, want 0", n)
	}
}

func TestSubscribeIgnoresBlankEmailsForCapacity(t *testing.T) {
	m := newMembershipFixture(t, 2, "a@x.com")

	rows, err := m.subscribe(t, "a@x.com", "", "  ")
	if err != nil {
		t.Fatalf("SubscribeToMembership: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("rows = %d, want 2", len(rows))
	}
	if m.gateway.refundCount() != 0 {
		t.Errorf("refunds = %d, want 0", m.gateway.refundCount())
	}
}

func TestSubscribeRenewsAfterLapse(t *testing.T) {
	m := newMembershipFixture(t, 2, "a@x.com")
	first, err := m.subscribe(t, "a@x.com")
	if err != nil {
		t.Fatal(err)
	}
	m.members.now = func() time.Time { return first[0].EndDate.Add(time.Hour) }

	verifiedPayment(t, m.fixture, m.primary.ID, nil, "pay_m2", models.PaymentTypeMembership)
	renewed, err := m.members.SubscribeToMembership(context.Background(), SubscribeInput{
		PlanID: m.plan.ID, MemberEmails: []string{"a@x.com"}, PaymentID: "pay_m2", PrimaryUserID: m.primary.ID,
	})
	if err != nil {
		t.Fatalf("renewal: %v", err)
	}
	if len(renewed) != 2 || !renewed[0].EndDate.After(first[0].EndDate) {
		t.Errorf("renewed = %+v", renewed)
	}
	for _, r := range first {
		var row models.UserMembership
		m.db.First(&row, "id = ?", r.ID)
		if row.IsActive {
			t.Errorf("lapsed row %s still active", r.ID)
		}
	}
	if n := countRows(t, m.db, &models.UserMembership{}, "is_active = ?", true); n != 2 {
		t.Errorf("active rows = %d, want 2", n)
	}
	if m.gateway.refundCount() != 0 {
		t.Errorf("refunds = %d, want 0", m.gateway.refundCount())
	}
}

func TestLapsedMemberJoinsAnotherGroup(t *testing.T) {
	m := newMembershipFixture(t, 2, "a@x.com")
	first, err := m.subscribe(t, "a@x.com")
	if err != nil {
		t.Fatal(err)
	}
	m.members.now = func() time.Time { return first[0].EndDate.Add(time.Hour) }

	owner := seedUser(t, m.db, "owner@x.com")
	verifiedPayment(t, m.fixture, owner.ID, nil, "pay_o", models.PaymentTypeMembership)
	rows, err := m.members.SubscribeToMembership(context.Background(), SubscribeInput{
		PlanID: m.plan.ID, MemberEmails: []string{"a@x.com"}, PaymentID: "pay_o", PrimaryUserID: owner.ID,
	})
	if err != nil {
		t.Fatalf("subscribe with lapsed member: %v", err)
	}
	if n := countRows(t, m.db, &models.UserMembership{}, "user_id = ? AND is_active = ?", rows[1].UserID, true); n != 1 {
		t.Errorf("active rows for a@x.com = %d, want 1", n)
	}
}

func TestSubscribeCompensationFailureKeepsOriginalError(t *testing.T) {
	m := newMembershipFixture(t, 1, "a@x.com")
	m.gateway.RefundFunc = func(string, *int64) (*GatewayRefund, error) { return nil, errors.New("gateway down") }

	_, err := m.subscribe(t, "a@x.com")
	if !IsValidation(err) || !strings.Contains(err.Error(), "Maximum 1 members allowed") {
		t.Fatalf("err = %v, want the capacity error", err)
	}
	if m.gateway.refundCount() != 1 {
		t.Errorf("refund attempts = %d, want exactly 1", m.gateway.refundCount())
	}
}

func TestSubscribeRejectsOwnEmailAndDuplicates(t *testing.T) {
	m := newMembershipFixture(t, 4, "a@x.com")

	if _, err := m.subscribe(t, "primary@x.com"); !IsValidation(err) {
		t.Errorf("own email: err = %v", err)
	}
	verifiedPayment(t, m.fixture, m.primary.ID, nil, "pay_dup", models.PaymentTypeMembership)
	_, err := m.members.SubscribeToMembership(context.Background(), SubscribeInput{
		PlanID: m.plan.ID, MemberEmails: []string{"a@x.com", "A@x.com"}, PaymentID: "pay_dup", PrimaryUserID: m.primary.ID,
	})
	if !IsValidation(err) || !strings.Contains(err.Error(), "Duplicate member email") {
		t.Errorf("duplicate email: err = %v", err)
	}
}

func TestCancelMembershipCascades(t *testing.T) {
	m := newMembershipFixture(t, 4, "a@x.com", "b@x.com", "c@x.com", "other@x.com")
	rows, err := m.subscribe(t, "a@x.com", "b@x.com", "c@x.com")
	if err != nil {
		t.Fatal(err)
	}

	// An unrelated active membership must not change.
	otherUser := models.User{}
	m.db.Where("email = ?", "other@x.com").First(&otherUser)
	unrelated := models.UserMembership{UserID: otherUser.ID, PlanID: m.plan.ID, StartDate: testNow(),
		EndDate: testNow().AddDate(1, 0, 0), IsPrimary: true, IsActive: true}
	m.db.Create(&unrelated)

	ctx := context.Background()
	if _, err := m.members.CancelMembership(ctx, rows[1].ID, rows[1].UserID); !IsValidation(err) {
		t.Errorf("member cancelling: err = %v, want ValidationError", err)
	}
	if _, err := m.members.CancelMembership(ctx, rows[0].ID, otherUser.ID); !IsUnauthorized(err) {
		t.Errorf("non-owner cancelling: err = %v, want UnauthorizedError", err)
	}

	n, err := m.members.CancelMembership(ctx, rows[0].ID, m.primary.ID)
	if err != nil {
		t.Fatalf("CancelMembership: %v", err)
	}
	if n != 4 {
		t.Errorf("deactivated = %d, want 4", n)
	}
	if active := countRows(t, m.db, &models.UserMembership{}, "is_active = ?", true); active != 1 {
		t.Errorf("active rows = %d, want only the unrelated one", active)
	}

	if _, err := m.members.CancelMembership(ctx, rows[0].ID, m.primary.ID); !IsValidation(err) {
		t.Errorf("second cancel: err = %v, want ValidationError", err)
	}
}

func TestAddMemberCapacity(t *testing.T) {
	m := newMembershipFixture(t, 3, "a@x.com", "b@x.com", "c@x.com")
	rows, err := m.subscribe(t, "a@x.com")
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	_, err = m.members.AddMemberToMembership(ctx, rows[0].ID, []string{"b@x.com", "c@x.com"}, m.primary.ID)
	if !IsValidation(err) || !strings.Contains(err.Error(), "You can add 1 more") {
		t.Fatalf("overflow err = %v, want remaining count 1", err)
	}

	_, err = m.members.AddMemberToMembership(ctx, rows[0].ID, []string{"a@x.com"}, m.primary.ID)
	if !IsValidation(err) || !strings.Contains(err.Error(), "Already a member") {
		t.Fatalf("existing member err = %v", err)
	}

	added, err := m.members.AddMemberToMembership(ctx, rows[0].ID, []string{"b@x.com"}, m.primary.ID)
	if err != nil {
		t.Fatalf("AddMemberToMembership: %v", err)
	}
	if len(added) != 1 || !added[0].EndDate.Equal(rows[0].EndDate) {
		t.Errorf("added = %+v", added)
	}
	if n := countRows(t, m.db, &models.UserMembership{}, "is_active = ?", true); n != 3 {
		t.Errorf("active rows = %d, want 3", n)
	}
}

func TestAddMemberOnlyPrimary(t *testing.T) {
	m := newMembershipFixture(t, 3, "a@x.com", "b@x.com")
	rows, err := m.subscribe(t, "a@x.com")
	if err != nil {
		t.Fatal(err)
	}
	_, err = m.members.AddMemberToMembership(context.Background(), rows[1].ID, []string{"b@x.com"}, rows[1].UserID)
	if !IsValidation(err) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestRemoveMemberPartialMismatch(t *testing.T) {
	m := newMembershipFixture(t, 3, "a@x.com", "b@x.com")
	rows, err := m.subscribe(t, "a@x.com")
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	_, err = m.members.RemoveMemberFromMembership(ctx, rows[0].ID, []string{"a@x.com", "b@x.com"}, m.primary.ID)
	if !IsValidation(err) || !strings.Contains(err.Error(), "b@x.com") {
		t.Fatalf("err = %v, want mismatch naming b@x.com", err)
	}
	var a models.UserMembership
	m.db.First(&a, "id = ?", rows[1].ID)
	if !a.IsActive {
		t.Fatal("a@x.com deactivated by rejected removal")
	}

	n, err := m.members.RemoveMemberFromMembership(ctx, rows[0].ID, []string{"a@x.com"}, m.primary.ID)
	if err != nil || n != 1 {
		t.Fatalf("RemoveMemberFromMembership = %d, %v", n, err)
	}
	m.db.First(&a, "id = ?", rows[1].ID)
	if a.IsActive {
		t.Error("a@x.com still active after removal")
	}
	var p models.UserMembership
	m.db.First(&p, "id = ?", rows[0].ID)
	if !p.IsActive {
		t.Error("primary deactivated by member removal")
	}
}

func TestFetchUserMembershipExpiresLazily(t *testing.T) {
	m := newMembershipFixture(t, 2)
	rows, err := m.subscribe(t)
	if err != nil {
		t.Fatal(err)
	}

	view, err := m.members.FetchUserMembership(context.Background(), m.primary.ID)
	if err != nil || len(view.Active) != 1 {
		t.Fatalf("before expiry: %+v, %v", view, err)
	}
	if view.Active[0].Plan == nil || view.Active[0].Plan.ID != m.plan.ID {
		t.Errorf("plan not preloaded")
	}

	m.members.now = func() time.Time { return rows[0].EndDate.Add(time.Hour) }
	view, err = m.members.FetchUserMembership(context.Background(), m.primary.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(view.Active) != 0 || len(view.Inactive) != 1 {
		t.Fatalf("after expiry active=%d inactive=%d, want 0/1", len(view.Active), len(view.Inactive))
	}
}

func TestFetchUserMembershipExpiresGroup(t *testing.T) {
	m := newMembershipFixture(t, 2, "a@x.com")
	rows, err := m.subscribe(t, "a@x.com")
	if err != nil {
		t.Fatal(err)
	}
	m.members.now = func() time.Time { return rows[0].EndDate.Add(time.Hour) }

	if _, err := m.members.FetchUserMembership(context.Background(), m.primary.ID); err != nil {
		t.Fatal(err)
	}
	var member models.UserMembership
	m.db.First(&member, "id = ?", rows[1].ID)
	if member.IsActive {
		t.Error("member row of a lapsed group still active")
	}
}

func TestExpireMembershipsSweep(t *testing.T) {
	m := newMembershipFixture(t, 2, "a@x.com")
	rows, err := m.subscribe(t, "a@x.com")
	if err != nil {
		t.Fatal(err)
	}
	m.members.now = func() time.Time { return rows[0].EndDate.Add(time.Minute) }

	n, err := m.members.ExpireMemberships(context.Background())
	if err != nil || n != 2 {
		t.Fatalf("ExpireMemberships = %d, %v; want 2", n, err)
	}
	if c := countRows(t, m.db, &models.Notification{}, "type = ?", models.NotificationMembershipExpired); c != 2 {
		t.Errorf("expiry notifications = %d, want 2", c)
	}
}

func TestCreateMembershipOrder(t *testing.T) {
	m := newMembershipFixture(t, 2)
	ctx := context.Background()

	order, err := m.members.CreateMembershipOrder(ctx, m.primary.ID, m.plan.ID)
	if err != nil {
		t.Fatalf("CreateMembershipOrder: %v", err)
	}
	if order.Amount != 500000 || order.Notes["payment_type"] != "MEMBERSHIP" || order.Notes["plan_id"] != m.plan.ID.String() {
		t.Errorf("order = %+v", order)
	}
	if _, err := m.members.CreateMembershipOrder(ctx, m.primary.ID, uuid.New()); !IsValidation(err) {
		t.Errorf("unknown plan: err = %v", err)
	}

	if _, err := m.subscribe(t); err != nil {
		t.Fatal(err)
	}
	if _, err := m.members.CreateMembershipOrder(ctx, m.primary.ID, m.plan.ID); !IsValidation(err) {
		t.Errorf("active membership: err = %v, want ValidationError", err)
	}
}

func TestVerifyMembershipOrder(t *testing.T) {
	m := newMembershipFixture(t, 2)
	ctx := context.Background()

	ok, err := m.members.VerifyMembershipOrder(ctx, "order_9", "pay_9", Sign(testKeySecret, "order_9|pay_9"), m.primary.ID, m.plan.ID)
	if err != nil || !ok {
		t.Fatalf("VerifyMembershipOrder = %v, %v", ok, err)
	}
	var p models.Payment
	m.db.Where("payment_id = ?", "pay_9").First(&p)
	if p.PaymentType != models.PaymentTypeMembership || p.ServiceID != nil || p.Amount.String() != "5000" {
		t.Errorf("payment = %+v", p)
	}

	ok, err = m.members.VerifyMembershipOrder(ctx, "order_9", "pay_10", "bad", m.primary.ID, m.plan.ID)
	if err != nil || ok {
		t.Errorf("bad signature = %v, %v; want false", ok, err)
	}
}
