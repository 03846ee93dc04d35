package dto

import "github.com/google/uuid"

type CreateOrderRequest struct {
	ServiceID uuid.UUID `json:"service_id"`
}

// VerifyPaymentRequest carries the fields returned by the checkout widget.
type VerifyPaymentRequest struct {
	OrderID   string     `json:"razorpay_order_id"`
	PaymentID string     `json:"razorpay_payment_id"`
	Signature string     `json:"razorpay_signature"`
	ServiceID *uuid.UUID `json:"service_id,omitempty"`
}

type VerifyPaymentResponse struct {
	Verified  bool   `json:"verified"`
	PaymentID string `json:"payment_id"`
}

type RefundRequest struct {
	PaymentID string `json:"payment_id"`
	// Amount in minor units; omitted means a full refund.
	Amount *int64 `json:"amount,omitempty"`
}
