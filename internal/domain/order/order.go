package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/gigamart/commerce-engine/internal/domain/cart"
	"github.com/gigamart/commerce-engine/internal/domain/payment"
	"github.com/gigamart/commerce-engine/internal/domain/pricing"
)

// ErrNotFound is returned when a requested order does not exist.
var ErrNotFound = errors.New("order not found")

// ErrStatusConflict is returned by Repository.UpdateStatus when the order's
// stored status no longer matches the expected one, meaning a concurrent
// update won the race.
var ErrStatusConflict = errors.New("order status changed concurrently")

// Status tracks an order through fulfillment. Orders are created confirmed;
// later transitions are made by the fulfillment collaborator.
type Status string

const (
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// ParseStatus converts a wire string into a Status.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return Status(s), true
	}
	return "", false
}

// transitions lists the allowed next statuses for each status.
var transitions = map[Status][]Status{
	StatusConfirmed:  {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
}

// CanTransition reports whether an order may move from one status to
// another. Delivered and cancelled are terminal.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// InvalidTransitionError reports a rejected fulfillment status change.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return "invalid order status transition " + string(e.From) + " -> " + string(e.To)
}

// Order is the persisted record created once per successful checkout. The
// line items are a snapshot of the cart at submission time; everything but
// Status is immutable after creation.
type Order struct {
	ID        string
	Items     []cart.LineItem
	Shipping  ShippingProfile
	Payment   payment.Summary
	Pricing   pricing.Snapshot
	Status    Status
	CreatedAt time.Time
}

// Submission is the payload handed to the order-submission collaborator.
type Submission struct {
	Items    []cart.LineItem
	Shipping ShippingProfile
	Payment  payment.Summary
	Pricing  pricing.Snapshot
}

// Submitter is the external order-submission collaborator. It returns the
// created order or an error; the checkout flow treats any non-order result
// as failure.
type Submitter interface {
	Submit(ctx context.Context, sub Submission) (*Order, error)
}

// Repository defines persistence operations for orders.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	UpdateStatus(ctx context.Context, id string, from, to Status) error
}
