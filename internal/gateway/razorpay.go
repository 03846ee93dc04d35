// Package gateway adapts the Razorpay SDK to services.PaymentGateway.
package gateway

import (
	"context"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/services"
	razorpay "github.com/razorpay/razorpay-go"
)

// razorpayAPI is the subset of the SDK client used here.
type razorpayAPI interface {
	CreateOrder(data map[string]interface{}) (map[string]interface{}, error)
	FetchPayment(id string) (map[string]interface{}, error)
	Refund(id string, amount int, data map[string]interface{}) (map[string]interface{}, error)
	CreateCustomer(data map[string]interface{}) (map[string]interface{}, error)
}

type sdkClient struct {
	c *razorpay.Client
}

func (s sdkClient) CreateOrder(data map[string]interface{}) (map[string]interface{}, error) {
	return s.c.Order.Create(data, nil)
}

func (s sdkClient) FetchPayment(id string) (map[string]interface{}, error) {
	return s.c.Payment.Fetch(id, nil, nil)
}

func (s sdkClient) Refund(id string, amount int, data map[string]interface{}) (map[string]interface{}, error) {
	return s.c.Payment.Refund(id, amount, data, nil)
}

func (s sdkClient) CreateCustomer(data map[string]interface{}) (map[string]interface{}, error) {
	return s.c.Customer.Create(data, nil)
}

type Razorpay struct {
	api razorpayAPI
}

var _ services.PaymentGateway = (*Razorpay)(nil)

func NewRazorpay(keyID, keySecret string) *Razorpay {
	return &Razorpay{api: sdkClient{c: razorpay.NewClient(keyID, keySecret)}}
}

func (r *Razorpay) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string, notes map[string]string) (*services.GatewayOrder, error) {
	data := map[string]interface{}{
		"amount":   amountMinor,
		"currency": currency,
		"receipt":  receipt,
		"notes":    toAny(notes),
	}
	res, err := call(ctx, func() (map[string]interface{}, error) { return r.api.CreateOrder(data) })
	if err != nil {
		return nil, fmt.Errorf("razorpay create order: %w", err)
	}
	return &services.GatewayOrder{
		ID:       str(res, "id"),
		Amount:   num(res, "amount"),
		Currency: str(res, "currency"),
		Receipt:  str(res, "receipt"),
		Status:   str(res, "status"),
		Notes:    notes,
	}, nil
}

func (r *Razorpay) FetchPayment(ctx context.Context, paymentID string) (*services.GatewayPayment, error) {
	res, err := call(ctx, func() (map[string]interface{}, error) { return r.api.FetchPayment(paymentID) })
	if err != nil {
		return nil, fmt.Errorf("razorpay fetch payment %s: %w", paymentID, err)
	}
	return paymentFrom(res), nil
}

// Refund refunds amountMinor, or whatever is still unrefunded when nil.
func (r *Razorpay) Refund(ctx context.Context, paymentID string, amountMinor *int64) (*services.GatewayRefund, error) {
	var amount int64
	if amountMinor != nil {
		amount = *amountMinor
	} else {
		res, err := call(ctx, func() (map[string]interface{}, error) { return r.api.FetchPayment(paymentID) })
		if err != nil {
			return nil, fmt.Errorf("razorpay fetch payment %s: %w", paymentID, err)
		}
		amount = num(res, "amount") - num(res, "amount_refunded")
		if amount <= 0 {
			return nil, fmt.Errorf("razorpay payment %s has nothing left to refund", paymentID)
		}
	}

	res, err := call(ctx, func() (map[string]interface{}, error) {
		return r.api.Refund(paymentID, int(amount), map[string]interface{}{"speed": "normal"})
	})
	if err != nil {
		return nil, fmt.Errorf("razorpay refund %s: %w", paymentID, err)
	}
	return &services.GatewayRefund{
		ID:        str(res, "id"),
		PaymentID: str(res, "payment_id"),
		Amount:    num(res, "amount"),
		Status:    str(res, "status"),
	}, nil
}

func (r *Razorpay) CreateCustomer(ctx context.Context, name, contact string, notes map[string]string) (*services.GatewayCustomer, error) {
	data := map[string]interface{}{
		"name":          name,
		"fail_existing": "0",
		"notes":         toAny(notes),
	}
	if contact != "" {
		data["contact"] = contact
	}
	if email := notes["email"]; email != "" {
		data["email"] = email
	}
	res, err := call(ctx, func() (map[string]interface{}, error) { return r.api.CreateCustomer(data) })
	if err != nil {
		return nil, fmt.Errorf("razorpay create customer: %w", err)
	}
	return &services.GatewayCustomer{
		ID:      str(res, "id"),
		Name:    str(res, "name"),
		Contact: str(res, "contact"),
	}, nil
}

// call runs a blocking SDK request and gives up when ctx ends. The SDK has no
// context support, so an abandoned request finishes in the background.
func call(ctx context.Context, fn func() (map[string]interface{}, error)) (map[string]interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	type result struct {
		res map[string]interface{}
		err error
	}
	ch := make(chan result, 1)
	go func() {
		res, err := fn()
		ch <- result{res, err}
	}()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		return r.res, r.err
	}
}

func paymentFrom(res map[string]interface{}) *services.GatewayPayment {
	return &services.GatewayPayment{
		ID:       str(res, "id"),
		OrderID:  str(res, "order_id"),
		Amount:   num(res, "amount"),
		Currency: str(res, "currency"),
		Status:   str(res, "status"),
		Method:   str(res, "method"),
		Email:    str(res, "email"),
		Contact:  str(res, "contact"),
	}
}

func toAny(m map[string]string) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func str(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// num reads a JSON number; the SDK decodes them as float64.
func num(m map[string]interface{}, key string) int64 {
	switch v := m[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}
