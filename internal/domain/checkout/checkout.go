// Package checkout drives the shipping -> payment -> review -> submit
// sequence as an explicit finite state machine, independent of any
// rendering concern.
package checkout

import (
	"context"
	"sync"

	"github.com/go-faster/errors"

	"github.com/gigamart/commerce-engine/internal/domain/cart"
	"github.com/gigamart/commerce-engine/internal/domain/order"
	"github.com/gigamart/commerce-engine/internal/domain/payment"
	"github.com/gigamart/commerce-engine/internal/domain/pricing"
)

// State is the current step of a checkout session.
type State string

const (
	StateShipping   State = "shipping"
	StatePayment    State = "payment"
	StateReview     State = "review"
	StateSubmitting State = "submitting"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// ErrEmptyCart blocks entry into checkout when the cart has no items.
var ErrEmptyCart = errors.New("cart is empty")

// TransitionError reports an input that is not valid in the current state.
type TransitionError struct {
	State State
	Input string
}

func (e *TransitionError) Error() string {
	return "checkout: cannot " + e.Input + " while in state " + string(e.State)
}

// Flow is one checkout session. It owns the transient shipping profile and
// payment instrument; the raw instrument never outlives the session.
// Methods must not be interleaved: a submission in flight rejects further
// input until it resolves to Completed or Failed.
type Flow struct {
	mu sync.Mutex

	state      State
	cart       *cart.Store
	validator  *payment.Validator
	submitter  order.Submitter
	pricingCfg pricing.Config

	shipping   order.ShippingProfile
	instrument payment.Instrument
	orderID    string
}

// NewFlow starts a checkout session over the given cart. It refuses to
// start when the cart is empty.
func NewFlow(
	store *cart.Store,
	validator *payment.Validator,
	submitter order.Submitter,
	pricingCfg pricing.Config,
) (*Flow, error) {
	if store.Empty() {
		return nil, ErrEmptyCart
	}
	return &Flow{
		state:      StateShipping,
		cart:       store,
		validator:  validator,
		submitter:  submitter,
		pricingCfg: pricingCfg,
	}, nil
}

// State returns the session's current state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// OrderID returns the confirmation reference once the flow has completed.
func (f *Flow) OrderID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.orderID
}

// Shipping returns the captured shipping profile.
func (f *Flow) Shipping() order.ShippingProfile {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.shipping
}

// PaymentSummary returns the masked form of the captured instrument.
func (f *Flow) PaymentSummary() payment.Summary {
	f.mu.Lock()
	defer f.mu.Unlock()
	return payment.Summarize(f.instrument)
}

// SubmitShipping validates the profile and advances Shipping -> Payment.
// On validation failure the flow stays in Shipping and the field errors are
// returned; there is no partial advance.
func (f *Flow) SubmitShipping(profile order.ShippingProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StateShipping {
		return &TransitionError{State: f.state, Input: "submit shipping"}
	}
	if errs := profile.Validate(); len(errs) > 0 {
		return errs
	}
	f.shipping = profile
	f.state = StatePayment
	return nil
}

// SubmitPayment validates the instrument and advances Payment -> Review.
// Card instruments must pass full field validation; alternate methods are
// delegated to an external flow and advance without field checks. On
// failure the flow stays in Payment.
func (f *Flow) SubmitPayment(inst payment.Instrument) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StatePayment {
		return &TransitionError{State: f.state, Input: "submit payment"}
	}
	if errs := f.validator.Validate(inst); len(errs) > 0 {
		return errs
	}
	f.instrument = inst
	f.state = StateReview
	return nil
}

// Back steps the flow one state backwards: Payment -> Shipping or
// Review -> Payment. No other state permits stepping back, and forward
// skips are never possible.
func (f *Flow) Back() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.state {
	case StatePayment:
		f.state = StateShipping
	case StateReview:
		f.state = StatePayment
	default:
		return &TransitionError{State: f.state, Input: "go back"}
	}
	return nil
}

// Retry re-enters Payment after a failed submission.
func (f *Flow) Retry() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StateFailed {
		return &TransitionError{State: f.state, Input: "retry"}
	}
	f.state = StatePayment
	return nil
}

// Confirm submits the order: Review -> Submitting, then Completed on
// success or Failed on error. While Submitting, all further input
// (including a second Confirm) is rejected; once entered, the submission
// runs to completion and cannot be aborted mid-flight. On success the cart
// is cleared and the order identifier recorded; on failure the cart is
// preserved for retry.
func (f *Flow) Confirm(ctx context.Context) (*order.Order, error) {
	f.mu.Lock()
	if f.state != StateReview {
		state := f.state
		f.mu.Unlock()
		return nil, &TransitionError{State: state, Input: "confirm"}
	}

	f.state = StateSubmitting
	// One cart snapshot feeds both the recorded items and their pricing.
	// The store has its own lock, so reading it twice could interleave
	// with a concurrent mutation and price a different item list.
	items := f.cart.Items()
	sub := order.Submission{
		Items:    items,
		Shipping: f.shipping,
		Payment:  payment.Summarize(f.instrument),
		Pricing:  pricing.Compute(items, f.pricingCfg),
	}
	f.mu.Unlock()

	o, err := f.submitter.Submit(ctx, sub)

	f.mu.Lock()
	defer f.mu.Unlock()

	if err != nil || o == nil {
		f.state = StateFailed
		if err == nil {
			err = errors.New("submission returned no order")
		}
		return nil, errors.Wrap(err, "submit order")
	}

	f.state = StateCompleted
	f.orderID = o.ID

	// The cart is cleared only after the order exists. A failure to clear
	// does not invalidate the order; the stale cart surfaces on next load.
	if clearErr := f.cart.Clear(ctx); clearErr != nil {
		return o, errors.Wrap(clearErr, "clear cart after submission")
	}
	return o, nil
}
