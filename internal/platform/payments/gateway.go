// Package payments abstracts the external payment gateway used to collect
// appointment fees. The booking flow creates a checkout, redirects the patient
// to its URL, and later confirms payment by looking the checkout up again.
package payments

import (
	"context"
	"errors"
)

var (
	// ErrCheckoutNotFound is returned when the gateway has no record of the
	// requested checkout session.
	ErrCheckoutNotFound = errors.New("checkout session not found")
	// ErrGatewayUnavailable wraps transport or gateway-side failures.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
)

// CheckoutRequest describes the payment to collect.
type CheckoutRequest struct {
	// Amount in the smallest currency unit (paise, cents).
	Amount      int64
	Currency    string
	Description string
	// ReferenceID ties the checkout back to the local order.
	ReferenceID   string
	CustomerName  string
	CustomerEmail string
	// CallbackURL is where the gateway redirects the payer after payment.
	CallbackURL string
}

// Checkout is the gateway's view of a payment session.
type Checkout struct {
	ID          string
	URL         string
	Amount      int64
	Currency    string
	ReferenceID string
	Paid        bool
}

// Gateway is implemented by payment providers.
type Gateway interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*Checkout, error)
	GetCheckout(ctx context.Context, id string) (*Checkout, error)
}
