package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreatePlanRequest struct {
	Name               string          `json:"name"`
	MaxMembers         int             `json:"max_members"`
	RenewalPeriodYears int             `json:"renewal_period_years"`
	Cost               decimal.Decimal `json:"cost"`
	DiscountPercent    int             `json:"discount_percent"`
	FreeConsultation   bool            `json:"free_consultation"`
	PriorityBooking    bool            `json:"priority_booking"`
	GuestPasses        bool            `json:"guest_passes"`
}

type MembershipOrderRequest struct {
	PlanID uuid.UUID `json:"plan_id"`
}

type VerifyMembershipRequest struct {
	OrderID   string    `json:"razorpay_order_id"`
	PaymentID string    `json:"razorpay_payment_id"`
	Signature string    `json:"razorpay_signature"`
	PlanID    uuid.UUID `json:"plan_id"`
}

type SubscribeRequest struct {
	PlanID       uuid.UUID `json:"plan_id"`
	PaymentID    string    `json:"payment_id"`
	MemberEmails []string  `json:"member_emails"`
}

type CancelMembershipRequest struct {
	MembershipID uuid.UUID `json:"membership_id"`
}

type MembersRequest struct {
	MembershipID uuid.UUID `json:"membership_id"`
	MemberEmails []string  `json:"member_emails"`
}

type CountResponse struct {
	Message string `json:"message"`
	Count   int64  `json:"count"`
}
