package payments

import (
	"context"
	"fmt"
	"strings"

	"github.com/razorpay/razorpay-go"
)

// RazorpayGateway implements Gateway on top of Razorpay payment links.
type RazorpayGateway struct {
	client *razorpay.Client
}

func NewRazorpayGateway(keyID, keySecret string) *RazorpayGateway {
	return &RazorpayGateway{client: razorpay.NewClient(keyID, keySecret)}
}

func (g *RazorpayGateway) CreateCheckout(_ context.Context, req CheckoutRequest) (*Checkout, error) {
	data := map[string]interface{}{
		"amount":       req.Amount,
		"currency":     strings.ToUpper(req.Currency),
		"description":  req.Description,
		"reference_id": req.ReferenceID,
		"customer": map[string]interface{}{
			"name":  req.CustomerName,
			"email": req.CustomerEmail,
		},
		"callback_url":    req.CallbackURL,
		"callback_method": "get",
	}

	body, err := g.client.PaymentLink.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create payment link: %v", ErrGatewayUnavailable, err)
	}

	checkout, err := checkoutFromPaymentLink(body)
	if err != nil {
		return nil, err
	}
	return checkout, nil
}

func (g *RazorpayGateway) GetCheckout(_ context.Context, id string) (*Checkout, error) {
	body, err := g.client.PaymentLink.Fetch(id, nil, nil)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "not found") ||
			strings.Contains(err.Error(), "does not exist") {
			return nil, ErrCheckoutNotFound
		}
		return nil, fmt.Errorf("%w: fetch payment link: %v", ErrGatewayUnavailable, err)
	}

	return checkoutFromPaymentLink(body)
}

// checkoutFromPaymentLink maps Razorpay's payment-link response to a Checkout.
func checkoutFromPaymentLink(body map[string]interface{}) (*Checkout, error) {
	id, _ := body["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("%w: payment link response missing id", ErrGatewayUnavailable)
	}

	checkout := &Checkout{ID: id}
	checkout.URL, _ = body["short_url"].(string)
	checkout.Currency, _ = body["currency"].(string)
	checkout.ReferenceID, _ = body["reference_id"].(string)

	if amount, ok := body["amount"].(float64); ok {
		checkout.Amount = int64(amount)
	}
	if status, ok := body["status"].(string); ok {
		checkout.Paid = status == "paid"
	}
	return checkout, nil
}
