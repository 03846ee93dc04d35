package gateway

import (
	"context"
	"errors"
	"testing"
)

type mockAPI struct {
	CreateOrderFunc    func(data map[string]interface{}) (map[string]interface{}, error)
	FetchPaymentFunc   func(id string) (map[string]interface{}, error)
	RefundFunc         func(id string, amount int, data map[string]interface{}) (map[string]interface{}, error)
	CreateCustomerFunc func(data map[string]interface{}) (map[string]interface{}, error)
}

func (m *mockAPI) CreateOrder(data map[string]interface{}) (map[string]interface{}, error) {
	return m.CreateOrderFunc(data)
}

func (m *mockAPI) FetchPayment(id string) (map[string]interface{}, error) {
	return m.FetchPaymentFunc(id)
}

func (m *mockAPI) Refund(id string, amount int, data map[string]interface{}) (map[string]interface{}, error) {
	return m.RefundFunc(id, amount, data)
}

func (m *mockAPI) CreateCustomer(data map[string]interface{}) (map[string]interface{}, error) {
	return m.CreateCustomerFunc(data)
}

func TestCreateOrderMapsResponse(t *testing.T) {
	api := &mockAPI{CreateOrderFunc: func(data map[string]interface{}) (map[string]interface{}, error) {
		if data["amount"] != int64(100000) || data["currency"] != "INR" {
			t.Errorf("request data = %v", data)
		}
		notes := data["notes"].(map[string]interface{})
		if notes["service_id"] != "svc-1" {
			t.Errorf("notes = %v", notes)
		}
		return map[string]interface{}{"id": "order_1", "amount": float64(100000), "currency": "INR", "status": "created"}, nil
	}}
	r := &Razorpay{api: api}

	order, err := r.CreateOrder(context.Background(), 100000, "INR", "rcpt", map[string]string{"service_id": "svc-1"})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if order.ID != "order_1" || order.Amount != 100000 || order.Status != "created" {
		t.Errorf("order = %+v", order)
	}
}

func TestFullRefundUsesRemainingAmount(t *testing.T) {
	var refunded int
	api := &mockAPI{
		FetchPaymentFunc: func(id string) (map[string]interface{}, error) {
			return map[string]interface{}{"id": id, "amount": float64(50000), "amount_refunded": float64(10000)}, nil
		},
		RefundFunc: func(id string, amount int, data map[string]interface{}) (map[string]interface{}, error) {
			refunded = amount
			return map[string]interface{}{"id": "rfnd_1", "payment_id": id, "amount": float64(amount), "status": "processed"}, nil
		},
	}
	r := &Razorpay{api: api}

	refund, err := r.Refund(context.Background(), "pay_1", nil)
	if err != nil {
		t.Fatalf("Refund: %v", err)
	}
	if refunded != 40000 || refund.Amount != 40000 || refund.PaymentID != "pay_1" {
		t.Errorf("refunded %d, refund = %+v", refunded, refund)
	}
}

func TestPartialRefundSkipsFetch(t *testing.T) {
	api := &mockAPI{
		FetchPaymentFunc: func(id string) (map[string]interface{}, error) {
			t.Fatal("FetchPayment called for explicit amount")
			return nil, nil
		},
		RefundFunc: func(id string, amount int, data map[string]interface{}) (map[string]interface{}, error) {
			return map[string]interface{}{"id": "rfnd_2", "payment_id": id, "amount": float64(amount)}, nil
		},
	}
	r := &Razorpay{api: api}
	amount := int64(2500)
	refund, err := r.Refund(context.Background(), "pay_2", &amount)
	if err != nil || refund.Amount != 2500 {
		t.Fatalf("Refund = %+v, %v", refund, err)
	}
}

func TestGatewayErrorsAreWrapped(t *testing.T) {
	sdkErr := errors.New("BAD_REQUEST_ERROR")
	api := &mockAPI{FetchPaymentFunc: func(id string) (map[string]interface{}, error) { return nil, sdkErr }}
	r := &Razorpay{api: api}

	_, err := r.FetchPayment(context.Background(), "pay_x")
	if !errors.Is(err, sdkErr) {
		t.Fatalf("err = %v, want wrapping %v", err, sdkErr)
	}
}

func TestCallHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := call(ctx, func() (map[string]interface{}, error) {
		t.Fatal("fn called with cancelled context")
		return nil, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
