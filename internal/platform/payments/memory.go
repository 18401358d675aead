package payments

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// InMemoryGateway is a development stand-in that accepts every checkout and
// marks it paid as soon as it is fetched. Never use it with real money.
type InMemoryGateway struct {
	mu        sync.Mutex
	checkouts map[string]*Checkout
}

func NewInMemoryGateway() *InMemoryGateway {
	return &InMemoryGateway{checkouts: make(map[string]*Checkout)}
}

func (g *InMemoryGateway) CreateCheckout(_ context.Context, req CheckoutRequest) (*Checkout, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := "dev_" + uuid.NewString()
	co := &Checkout{
		ID:          id,
		URL:         req.CallbackURL + "?session_id=" + id,
		Amount:      req.Amount,
		Currency:    req.Currency,
		ReferenceID: req.ReferenceID,
	}
	g.checkouts[co.ID] = co
	return co, nil
}

func (g *InMemoryGateway) GetCheckout(_ context.Context, id string) (*Checkout, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	co, ok := g.checkouts[id]
	if !ok {
		return nil, ErrCheckoutNotFound
	}
	co.Paid = true
	return co, nil
}
