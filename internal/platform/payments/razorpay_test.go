package payments

import (
	"errors"
	"testing"
)

func TestCheckoutFromPaymentLink(t *testing.T) {
	body := map[string]interface{}{
		"id":           "plink_123",
		"short_url":    "https://rzp.io/l/abc",
		"amount":       float64(50000),
		"currency":     "INR",
		"reference_id": "ORD-1",
		"status":       "created",
	}

	checkout, err := checkoutFromPaymentLink(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if checkout.ID != "plink_123" {
		t.Errorf("unexpected id: %s", checkout.ID)
	}
	if checkout.URL != "https://rzp.io/l/abc" {
		t.Errorf("unexpected url: %s", checkout.URL)
	}
	if checkout.Amount != 50000 {
		t.Errorf("unexpected amount: %d", checkout.Amount)
	}
	if checkout.Paid {
		t.Error("expected created link to be unpaid")
	}
}

func TestCheckoutFromPaymentLink_Paid(t *testing.T) {
	checkout, err := checkoutFromPaymentLink(map[string]interface{}{
		"id":     "plink_456",
		"status": "paid",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !checkout.Paid {
		t.Error("expected paid status to map to Paid=true")
	}
}

func TestCheckoutFromPaymentLink_MissingID(t *testing.T) {
	_, err := checkoutFromPaymentLink(map[string]interface{}{"status": "created"})
	if !errors.Is(err, ErrGatewayUnavailable) {
		t.Errorf("expected gateway error for missing id, got %v", err)
	}
}
