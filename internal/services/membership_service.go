package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MembershipService struct {
	db       *gorm.DB
	payments *PaymentService
	notifier *NotificationService
	now      func() time.Time
}

func NewMembershipService(db *gorm.DB, payments *PaymentService, notifier *NotificationService) *MembershipService {
	return &MembershipService{
		db:       db,
		payments: payments,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *MembershipService) ListPlans(ctx context.Context) ([]models.MembershipPlan, error) {
	var plans []models.MembershipPlan
	if err := s.db.WithContext(ctx).Order("cost ASC").Find(&plans).Error; err != nil {
		return nil, dbError("list plans", err)
	}
	return plans, nil
}

type CreatePlanInput struct {
	Name               string
	MaxMembers         int
	RenewalPeriodYears int
	Cost               decimal.Decimal
	DiscountPercent    int
	FreeConsultation   bool
	PriorityBooking    bool
	GuestPasses        bool
}

func (s *MembershipService) CreatePlan(ctx context.Context, in CreatePlanInput) (*models.MembershipPlan, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, validationf("plan name is required")
	}
	if in.MaxMembers < 1 || in.RenewalPeriodYears < 1 {
		return nil, validationf("max members and renewal period must be at least 1")
	}
	if !in.Cost.IsPositive() {
		return nil, validationf("plan cost must be positive")
	}
	if in.DiscountPercent < 0 || in.DiscountPercent > 100 {
		return nil, validationf("discount percent must be between 0 and 100")
	}

	plan := models.MembershipPlan{
		Name:               strings.TrimSpace(in.Name),
		MaxMembers:         in.MaxMembers,
		RenewalPeriodYears: in.RenewalPeriodYears,
		Cost:               in.Cost,
		DiscountPercent:    in.DiscountPercent,
		FreeConsultation:   in.FreeConsultation,
		PriorityBooking:    in.PriorityBooking,
		GuestPasses:        in.GuestPasses,
	}
	if err := s.db.WithContext(ctx).Create(&plan).Error; err != nil {
		return nil, dbError("create plan", err)
	}
	return &plan, nil
}

func (s *MembershipService) CreateMembershipOrder(ctx context.Context, userID, planID uuid.UUID) (*GatewayOrder, error) {
	db := s.db.WithContext(ctx)

	var plan models.MembershipPlan
	if err := db.First(&plan, "id = ?", planID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, validationf("membership plan not found")
		}
		return nil, dbError("load plan", err)
	}
	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, validationf("user not found")
		}
		return nil, dbError("load user", err)
	}

	var active int64
	if err := db.Model(&models.UserMembership{}).
		Where("user_id = ? AND plan_id = ? AND is_active = ?", userID, planID, true).
		Count(&active).Error; err != nil {
		return nil, dbError("check active membership", err)
	}
	if active > 0 {
		return nil, validationf("user already has an active membership with this plan")
	}

	notes := map[string]string{
		"plan_id":      plan.ID.String(),
		"user_id":      user.ID.String(),
		"payment_type": string(models.PaymentTypeMembership),
	}
	order, err := s.payments.gateway.CreateOrder(ctx, minorUnits(plan.Cost), s.payments.currency, receipt("mbr"), notes)
	if err != nil {
		return nil, fmt.Errorf("create gateway order: %w", err)
	}
	slog.Info("membership order created", "order_id", order.ID, "user_id", userID.String(), "plan_id", planID.String())
	return order, nil
}

// VerifyMembershipOrder records a MEMBERSHIP payment for the user. The
// membership itself is created by SubscribeToMembership.
func (s *MembershipService) VerifyMembershipOrder(ctx context.Context, orderID, paymentID, signature string, userID, planID uuid.UUID) (bool, error) {
	var amount decimal.Decimal
	if planID != uuid.Nil {
		var plan models.MembershipPlan
		if err := s.db.WithContext(ctx).First(&plan, "id = ?", planID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return false, validationf("membership plan not found")
			}
			return false, dbError("load plan", err)
		}
		amount = plan.Cost
	}
	return s.payments.VerifyPaymentSignature(ctx, VerifyPaymentInput{
		OrderID:     orderID,
		PaymentID:   paymentID,
		Signature:   signature,
		UserID:      userID,
		Amount:      amount,
		Status:      models.PaymentPaid,
		PaymentType: models.PaymentTypeMembership,
	})
}

type SubscribeInput struct {
	PlanID        uuid.UUID
	MemberEmails  []string
	PaymentID     string
	PrimaryUserID uuid.UUID
}

// SubscribeToMembership creates the primary row and one row per member in one
// transaction. The payment row stays locked until commit. Once it is known to
// be the caller's and unspent, any failure triggers one refund of the plan
// cost, unless another request has since linked the payment.
func (s *MembershipService) SubscribeToMembership(ctx context.Context, in SubscribeInput) ([]models.UserMembership, error) {
	if in.PaymentID == "" {
		return nil, validationf("payment id is required")
	}

	var refundAmount *int64
	var refundable bool
	var created []models.UserMembership

	saga := NewSaga("subscribe-membership").Compensate("refund-plan-cost", func(ctx context.Context) error {
		if !refundable {
			return nil
		}
		var unclaimed int64
		if err := s.db.WithContext(ctx).Model(&models.Payment{}).
			Where("payment_id = ? AND membership_id IS NULL AND status = ?", in.PaymentID, models.PaymentPaid).
			Count(&unclaimed).Error; err != nil {
			return dbError("check payment before refund", err)
		}
		if unclaimed == 0 {
			slog.Warn("refund skipped, payment claimed elsewhere", "payment_id", in.PaymentID)
			return nil
		}
		_, err := s.payments.ProcessRefund(ctx, in.PaymentID, refundAmount)
		return err
	})
	err := saga.Run(ctx, func(ctx context.Context) error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var payment models.Payment
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("payment_id = ? AND user_id = ? AND payment_type = ?", in.PaymentID, in.PrimaryUserID, models.PaymentTypeMembership).
				First(&payment).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return validationf("membership payment not found, verify the order first")
			}
			if err != nil {
				return dbError("load payment", err)
			}
			if payment.Status != models.PaymentPaid {
				return validationf("payment is %s, not paid", strings.ToLower(string(payment.Status)))
			}
			if payment.MembershipID != nil {
				return validationf("payment already used for a membership")
			}
			refundable = true

			var plan models.MembershipPlan
			if err := tx.First(&plan, "id = ?", in.PlanID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return validationf("membership plan not found")
				}
				return dbError("load plan", err)
			}
			cost := minorUnits(plan.Cost)
			refundAmount = &cost

			emails, err := normalizeEmails(in.MemberEmails)
			if err != nil {
				return err
			}
			if len(emails)+1 > plan.MaxMembers {
				return validationf("Maximum %d members allowed for this plan. You can add up to %d member(s) besides yourself.",
					plan.MaxMembers, plan.MaxMembers-1)
			}

			var primary models.User
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&primary, "id = ?", in.PrimaryUserID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return validationf("user not found")
				}
				return dbError("load user", err)
			}

			now := s.now()
			if err := expireLapsed(tx, now, []uuid.UUID{primary.ID}); err != nil {
				return err
			}
			if held, err := hasActiveMembership(tx, primary.ID, now); err != nil {
				return err
			} else if held {
				return validationf("user already has an active membership")
			}

			members, err := resolveMembers(tx, emails, &primary, now)
			if err != nil {
				return err
			}

			end := now.AddDate(plan.RenewalPeriodYears, 0, 0)
			primaryRow := models.UserMembership{
				UserID:    primary.ID,
				PlanID:    plan.ID,
				StartDate: now,
				EndDate:   end,
				IsPrimary: true,
				IsActive:  true,
			}
			if err := createMembership(tx, &primaryRow); err != nil {
				return err
			}
			created = append(created[:0], primaryRow)

			for _, m := range members {
				row := models.UserMembership{
					UserID:             m.ID,
					PlanID:             plan.ID,
					StartDate:          now,
					EndDate:            end,
					IsActive:           true,
					ParentMembershipID: &primaryRow.ID,
				}
				if err := createMembership(tx, &row); err != nil {
					return err
				}
				created = append(created, row)
			}

			res := tx.Model(&models.Payment{}).
				Where("id = ? AND membership_id IS NULL", payment.ID).
				Update("membership_id", primaryRow.ID)
			if res.Error != nil {
				return dbError("link payment", res.Error)
			}
			if res.RowsAffected != 1 {
				refundable = false
				return validationf("payment already used for a membership")
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	slog.Info("membership activated", "membership_id", created[0].ID.String(),
		"user_id", in.PrimaryUserID.String(), "members", len(created)-1)
	for _, m := range created {
		s.notify(ctx, m.UserID, models.NotificationMembershipActivated, "Membership activated",
			"Your membership is active until "+m.EndDate.Format("02 Jan 2006")+".", created[0].ID)
	}
	return created, nil
}

// CancelMembership deactivates a primary membership and every active member
// of its group. It returns the number of rows deactivated.
func (s *MembershipService) CancelMembership(ctx context.Context, membershipID, userID uuid.UUID) (int64, error) {
	var affected int64
	var memberUserIDs []uuid.UUID

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		primary, err := s.lockPrimary(tx, membershipID, userID)
		if err != nil {
			return err
		}

		if err := tx.Model(&models.UserMembership{}).
			Where("parent_membership_id = ? AND is_active = ?", primary.ID, true).
			Pluck("user_id", &memberUserIDs).Error; err != nil {
			return dbError("load members", err)
		}

		res := tx.Model(&models.UserMembership{}).
			Where("id = ? AND is_active = ?", primary.ID, true).
			Update("is_active", false)
		if res.Error != nil {
			return dbError("cancel membership", res.Error)
		}
		affected = res.RowsAffected

		res = tx.Model(&models.UserMembership{}).
			Where("parent_membership_id = ? AND is_active = ?", primary.ID, true).
			Update("is_active", false)
		if res.Error != nil {
			return dbError("cancel member memberships", res.Error)
		}
		affected += res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.Info("membership cancelled", "membership_id", membershipID.String(), "rows", affected)
	s.notify(ctx, userID, models.NotificationMembershipCancelled, "Membership cancelled",
		"Your membership has been cancelled.", membershipID)
	for _, id := range memberUserIDs {
		s.notify(ctx, id, models.NotificationMembershipCancelled, "Membership cancelled",
			"The group membership you belonged to has been cancelled.", membershipID)
	}
	return affected, nil
}

func (s *MembershipService) AddMemberToMembership(ctx context.Context, membershipID uuid.UUID, memberEmails []string, userID uuid.UUID) ([]models.UserMembership, error) {
	emails, err := normalizeEmails(memberEmails)
	if err != nil {
		return nil, err
	}
	if len(emails) == 0 {
		return nil, validationf("at least one member email is required")
	}

	var added []models.UserMembership
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		primary, err := s.lockPrimary(tx, membershipID, userID)
		if err != nil {
			return err
		}
		if !primary.EndDate.After(s.now()) {
			return validationf("membership has expired")
		}

		var plan models.MembershipPlan
		if err := tx.First(&plan, "id = ?", primary.PlanID).Error; err != nil {
			return dbError("load plan", err)
		}

		var existing int64
		if err := tx.Model(&models.UserMembership{}).
			Where("parent_membership_id = ? AND is_active = ?", primary.ID, true).
			Count(&existing).Error; err != nil {
			return dbError("count members", err)
		}
		current := int(existing) + 1
		if current+len(emails) > plan.MaxMembers {
			return validationf("Maximum %d members allowed for this plan. You can add %d more member(s).",
				plan.MaxMembers, max(plan.MaxMembers-current, 0))
		}

		var owner models.User
		if err := tx.First(&owner, "id = ?", userID).Error; err != nil {
			return dbError("load user", err)
		}

		var users []models.User
		if err := tx.Where("email IN ?", emails).Find(&users).Error; err != nil {
			return dbError("resolve members", err)
		}
		if missing := missingEmails(emails, users); len(missing) > 0 {
			return validationf("No account found for: %s", strings.Join(missing, ", "))
		}

		ids := make([]uuid.UUID, len(users))
		for i, u := range users {
			ids[i] = u.ID
		}
		var already []models.User
		if err := tx.Model(&models.User{}).
			Joins("JOIN user_memberships ON user_memberships.user_id = users.id").
			Where("user_memberships.parent_membership_id = ? AND user_memberships.is_active = ? AND users.id IN ?", primary.ID, true, ids).
			Find(&already).Error; err != nil {
			return dbError("check group members", err)
		}
		if len(already) > 0 {
			return validationf("Already a member of this membership: %s", joinEmails(already))
		}

		members, err := resolveMembers(tx, emails, &owner, s.now())
		if err != nil {
			return err
		}

		start := s.now()
		for _, m := range members {
			row := models.UserMembership{
				UserID:             m.ID,
				PlanID:             primary.PlanID,
				StartDate:          start,
				EndDate:            primary.EndDate,
				IsActive:           true,
				ParentMembershipID: &primary.ID,
			}
			if err := createMembership(tx, &row); err != nil {
				return err
			}
			added = append(added, row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("members added", "membership_id", membershipID.String(), "count", len(added))
	for _, m := range added {
		s.notify(ctx, m.UserID, models.NotificationMemberAdded, "Added to a membership",
			"You have been added to a group membership valid until "+m.EndDate.Format("02 Jan 2006")+".", membershipID)
	}
	s.notify(ctx, userID, models.NotificationMemberAdded, "Members added",
		fmt.Sprintf("%d member(s) added to your membership.", len(added)), membershipID)
	return added, nil
}

// RemoveMemberFromMembership deactivates the named members. Every email must
// match an active member of the group, otherwise nothing changes.
func (s *MembershipService) RemoveMemberFromMembership(ctx context.Context, membershipID uuid.UUID, memberEmails []string, userID uuid.UUID) (int64, error) {
	emails, err := normalizeEmails(memberEmails)
	if err != nil {
		return 0, err
	}
	if len(emails) == 0 {
		return 0, validationf("at least one member email is required")
	}

	var removed []models.UserMembership
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		primary, err := s.lockPrimary(tx, membershipID, userID)
		if err != nil {
			return err
		}

		if err := tx.Preload("User").
			Joins("JOIN users ON users.id = user_memberships.user_id").
			Where("user_memberships.parent_membership_id = ? AND user_memberships.is_active = ? AND users.email IN ?", primary.ID, true, emails).
			Find(&removed).Error; err != nil {
			return dbError("resolve members", err)
		}
		if len(removed) != len(emails) {
			found := make([]models.User, 0, len(removed))
			for _, m := range removed {
				if m.User != nil {
					found = append(found, *m.User)
				}
			}
			return validationf("Not an active member of this membership: %s", strings.Join(missingEmails(emails, found), ", "))
		}

		ids := make([]uuid.UUID, len(removed))
		for i, m := range removed {
			ids[i] = m.ID
		}
		if err := tx.Model(&models.UserMembership{}).Where("id IN ?", ids).
			Update("is_active", false).Error; err != nil {
			return dbError("remove members", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.Info("members removed", "membership_id", membershipID.String(), "count", len(removed))
	for _, m := range removed {
		s.notify(ctx, m.UserID, models.NotificationMemberRemoved, "Removed from membership",
			"You have been removed from a group membership.", membershipID)
	}
	return int64(len(removed)), nil
}

type MembershipOverview struct {
	Active   []models.UserMembership `json:"active"`
	Inactive []models.UserMembership `json:"inactive"`
}

// FetchUserMembership expires the user's lapsed memberships, and the groups
// they own, before reading.
func (s *MembershipService) FetchUserMembership(ctx context.Context, userID uuid.UUID) (*MembershipOverview, error) {
	db := s.db.WithContext(ctx)
	if err := db.Transaction(func(tx *gorm.DB) error {
		return expireLapsed(tx, s.now(), []uuid.UUID{userID})
	}); err != nil {
		return nil, err
	}

	var rows []models.UserMembership
	if err := db.Preload("Plan").Where("user_id = ?", userID).
		Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, dbError("load memberships", err)
	}

	out := &MembershipOverview{Active: []models.UserMembership{}, Inactive: []models.UserMembership{}}
	for _, m := range rows {
		if m.IsActive {
			out.Active = append(out.Active, m)
		} else {
			out.Inactive = append(out.Inactive, m)
		}
	}
	return out, nil
}

// ExpireMemberships deactivates every lapsed membership.
func (s *MembershipService) ExpireMemberships(ctx context.Context) (int64, error) {
	var expired []models.UserMembership
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("is_active = ? AND end_date <= ?", true, s.now()).Find(&expired).Error; err != nil {
			return dbError("find lapsed memberships", err)
		}
		if len(expired) == 0 {
			return nil
		}
		ids := make([]uuid.UUID, len(expired))
		for i, m := range expired {
			ids[i] = m.ID
		}
		if err := tx.Model(&models.UserMembership{}).Where("id IN ?", ids).
			Update("is_active", false).Error; err != nil {
			return dbError("expire memberships", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, m := range expired {
		s.notify(ctx, m.UserID, models.NotificationMembershipExpired, "Membership expired",
			"Your membership expired on "+m.EndDate.Format("02 Jan 2006")+".", m.ID)
	}
	return int64(len(expired)), nil
}

func (s *MembershipService) lockPrimary(tx *gorm.DB, membershipID, userID uuid.UUID) (*models.UserMembership, error) {
	var m models.UserMembership
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&m, "id = ?", membershipID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("membership")
		}
		return nil, dbError("load membership", err)
	}
	if m.UserID != userID {
		return nil, unauthorized("only the membership owner can manage it")
	}
	if !m.IsPrimary {
		return nil, validationf("only the primary member can manage this membership")
	}
	if !m.IsActive {
		return nil, validationf("membership is not active")
	}
	return &m, nil
}

func (s *MembershipService) notify(ctx context.Context, userID uuid.UUID, t models.NotificationType, title, message string, membershipID uuid.UUID) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, CreateNotificationInput{
		UserID:  userID,
		Type:    t,
		Title:   title,
		Message: message,
		Data:    map[string]string{"membership_id": membershipID.String()},
	})
}

// resolveMembers maps emails to users and rejects unknown accounts, the
// owner's own address and anyone already holding an unexpired membership.
// Lapsed rows of the resolved users are deactivated first.
func resolveMembers(tx *gorm.DB, emails []string, owner *models.User, now time.Time) ([]models.User, error) {
	if len(emails) == 0 {
		return nil, nil
	}
	for _, e := range emails {
		if e == normalizeEmail(owner.Email) {
			return nil, validationf("You cannot add yourself as a member")
		}
	}

	var users []models.User
	if err := tx.Where("email IN ?", emails).Find(&users).Error; err != nil {
		return nil, dbError("resolve members", err)
	}
	if missing := missingEmails(emails, users); len(missing) > 0 {
		return nil, validationf("No account found for: %s", strings.Join(missing, ", "))
	}

	ids := make([]uuid.UUID, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	if err := expireLapsed(tx, now, ids); err != nil {
		return nil, err
	}
	var holders []models.User
	if err := tx.Model(&models.User{}).
		Joins("JOIN user_memberships ON user_memberships.user_id = users.id").
		Where("user_memberships.is_active = ? AND user_memberships.end_date > ? AND users.id IN ?", true, now, ids).
		Find(&holders).Error; err != nil {
		return nil, dbError("check active memberships", err)
	}
	if len(holders) > 0 {
		return nil, validationf("Already has an active membership: %s", joinEmails(holders))
	}

	// Keep request order for stable row creation.
	byEmail := make(map[string]models.User, len(users))
	for _, u := range users {
		byEmail[normalizeEmail(u.Email)] = u
	}
	out := make([]models.User, 0, len(emails))
	for _, e := range emails {
		out = append(out, byEmail[e])
	}
	return out, nil
}

func hasActiveMembership(tx *gorm.DB, userID uuid.UUID, now time.Time) (bool, error) {
	var n int64
	if err := tx.Model(&models.UserMembership{}).
		Where("user_id = ? AND is_active = ? AND end_date > ?", userID, true, now).
		Count(&n).Error; err != nil {
		return false, dbError("check active membership", err)
	}
	return n > 0, nil
}

// expireLapsed deactivates the users' active rows whose end date has passed,
// together with the member rows of any lapsed primary.
func expireLapsed(tx *gorm.DB, now time.Time, userIDs []uuid.UUID) error {
	if len(userIDs) == 0 {
		return nil
	}
	var lapsed []models.UserMembership
	if err := tx.Where("user_id IN ? AND is_active = ? AND end_date <= ?", userIDs, true, now).
		Find(&lapsed).Error; err != nil {
		return dbError("find lapsed memberships", err)
	}
	if len(lapsed) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(lapsed))
	var primaries []uuid.UUID
	for _, m := range lapsed {
		ids = append(ids, m.ID)
		if m.IsPrimary {
			primaries = append(primaries, m.ID)
		}
	}
	q := tx.Model(&models.UserMembership{}).Where("is_active = ?", true)
	if len(primaries) > 0 {
		q = q.Where("id IN ? OR parent_membership_id IN ?", ids, primaries)
	} else {
		q = q.Where("id IN ?", ids)
	}
	if err := q.Update("is_active", false).Error; err != nil {
		return dbError("expire lapsed memberships", err)
	}
	return nil
}

func createMembership(tx *gorm.DB, m *models.UserMembership) error {
	if err := tx.Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return validationf("user already has an active membership")
		}
		return dbError("create membership", err)
	}
	return nil
}

func normalizeEmails(in []string) ([]string, error) {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, raw := range in {
		e := normalizeEmail(raw)
		if e == "" {
			continue
		}
		if seen[e] {
			return nil, validationf("Duplicate member email: %s", e)
		}
		seen[e] = true
		out = append(out, e)
	}
	return out, nil
}

func missingEmails(want []string, found []models.User) []string {
	have := make(map[string]bool, len(found))
	for _, u := range found {
		have[normalizeEmail(u.Email)] = true
	}
	var missing []string
	for _, e := range want {
		if !have[e] {
			missing = append(missing, e)
		}
	}
	return missing
}

func joinEmails(users []models.User) string {
	emails := make([]string, len(users))
	for i, u := range users {
		emails[i] = u.Email
	}
	sort.Strings(emails)
	return strings.Join(emails, ", ")
}
