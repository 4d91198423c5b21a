package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// Service creates order records from checkout submissions. It implements
// Submitter and stands in for a remote order API: submission incurs a
// configurable processing delay before the record is written, mimicking
// payment capture latency.
type Service struct {
	orders Repository

	now             func() time.Time
	processingDelay time.Duration
}

// NewService creates an order Service backed by the given repository.
// processingDelay is waited (context permitting) before each order is
// created; pass zero to disable.
func NewService(orders Repository, processingDelay time.Duration) *Service {
	return &Service{
		orders:          orders,
		now:             time.Now,
		processingDelay: processingDelay,
	}
}

// Submit waits out the processing delay, then persists a confirmed order
// built from the submission payload. The returned order carries the
// generated identifier and creation timestamp.
func (s *Service) Submit(ctx context.Context, sub Submission) (*Order, error) {
	if s.processingDelay > 0 {
		timer := time.NewTimer(s.processingDelay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, errors.Wrap(ctx.Err(), "await payment processing")
		}
	}

	now := s.now()
	o := &Order{
		ID:        NewID(now),
		Items:     sub.Items,
		Shipping:  sub.Shipping,
		Payment:   sub.Payment,
		Pricing:   sub.Pricing,
		Status:    StatusConfirmed,
		CreatedAt: now,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}
	return o, nil
}

// UpdateStatus applies a fulfillment status change after checking the
// transition table. The write is conditional on the status it read, so a
// concurrent update cannot sneak an order through a transition the table
// forbids; when the repository reports a conflict the order is re-read and
// the transition re-judged against its current status.
func (s *Service) UpdateStatus(ctx context.Context, id string, to Status) error {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return errors.Wrap(err, "get order")
	}
	if !CanTransition(o.Status, to) {
		return &InvalidTransitionError{From: o.Status, To: to}
	}
	if err := s.orders.UpdateStatus(ctx, id, o.Status, to); err != nil {
		if errors.Is(err, ErrStatusConflict) {
			fresh, gerr := s.orders.GetByID(ctx, id)
			if gerr != nil {
				return errors.Wrap(gerr, "get order")
			}
			return &InvalidTransitionError{From: fresh.Status, To: to}
		}
		return errors.Wrap(err, "update order status")
	}
	return nil
}
