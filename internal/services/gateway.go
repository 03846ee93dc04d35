package services

import "context"

// PaymentGateway is the external checkout provider. Signature checks are
// done locally and are not part of this interface.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string, notes map[string]string) (*GatewayOrder, error)
	FetchPayment(ctx context.Context, paymentID string) (*GatewayPayment, error)
	// Refund returns the full captured amount when amountMinor is nil.
	Refund(ctx context.Context, paymentID string, amountMinor *int64) (*GatewayRefund, error)
	CreateCustomer(ctx context.Context, name, contact string, notes map[string]string) (*GatewayCustomer, error)
}

type GatewayOrder struct {
	ID       string            `json:"id"`
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Status   string            `json:"status"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type GatewayPayment struct {
	ID       string `json:"id"`
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
	Method   string `json:"method"`
	Email    string `json:"email"`
	Contact  string `json:"contact"`
}

type GatewayRefund struct {
	ID        string `json:"id"`
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
	Status    string `json:"status"`
}

type GatewayCustomer struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Contact string `json:"contact"`
}
