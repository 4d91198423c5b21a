package checkout

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gigamart/commerce-engine/internal/domain/cart"
	"github.com/gigamart/commerce-engine/internal/domain/order"
	"github.com/gigamart/commerce-engine/internal/domain/payment"
	"github.com/gigamart/commerce-engine/internal/domain/pricing"
	"github.com/gigamart/commerce-engine/internal/domain/product"
)

// memStorage is an in-memory cart.Storage fake.
type memStorage struct {
	mu    sync.Mutex
	items []cart.LineItem
}

func (m *memStorage) Load(_ context.Context) ([]cart.LineItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items, nil
}

func (m *memStorage) Save(_ context.Context, items []cart.LineItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = items
	return nil
}

// mockSubmitter records the last submission and returns a canned result.
type mockSubmitter struct {
	order *order.Order
	err   error

	mu      sync.Mutex
	last    *order.Submission
	calls   int
	started chan struct{}
	release chan struct{}
}

func (m *mockSubmitter) Submit(_ context.Context, sub order.Submission) (*order.Order, error) {
	m.mu.Lock()
	m.last = &sub
	m.calls++
	m.mu.Unlock()

	if m.started != nil {
		close(m.started)
	}
	if m.release != nil {
		<-m.release
	}
	return m.order, m.err
}

// The card expiries below sit decades in the future, so the wall-clock
// validator stays deterministic here; clock injection is covered by the
// payment package tests.
func fixedValidator() *payment.Validator {
	return payment.NewValidator()
}

func cardInstrument() payment.Instrument {
	return payment.Instrument{
		Method:         payment.MethodCard,
		CardholderName: "Ada Lovelace",
		CardNumber:     "4242 4242 4242 4242",
		Expiry:         "12/49",
		CVV:            "123",
	}
}

func validProfile() order.ShippingProfile {
	return order.ShippingProfile{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Phone:     "555-010-3456",
		Address:   "1 Analytical Way",
		City:      "London",
		State:     "LDN",
		ZipCode:   "E1 6AN",
	}
}

func cartWith(t *testing.T, prices ...string) *cart.Store {
	t.Helper()
	s, err := cart.NewStore(context.Background(), &memStorage{})
	require.NoError(t, err)
	for i, p := range prices {
		require.NoError(t, s.AddItem(context.Background(), product.Product{
			ID:    int64(i + 1),
			Name:  "item",
			Price: decimal.RequireFromString(p),
		}, 1))
	}
	return s
}

func confirmedOrder() *order.Order {
	return &order.Order{ID: "GMTEST123", Status: order.StatusConfirmed}
}

func newFlow(t *testing.T, store *cart.Store, sub order.Submitter) *Flow {
	t.Helper()
	f, err := NewFlow(store, fixedValidator(), sub, pricing.DefaultConfig())
	require.NoError(t, err)
	return f
}

func TestNewFlow_EmptyCart(t *testing.T) {
	store, err := cart.NewStore(context.Background(), &memStorage{})
	require.NoError(t, err)

	_, err = NewFlow(store, fixedValidator(), &mockSubmitter{}, pricing.DefaultConfig())
	require.ErrorIs(t, err, ErrEmptyCart)
}

func TestFlow_HappyPath(t *testing.T) {
	store := cartWith(t, "60.00")
	submitter := &mockSubmitter{order: confirmedOrder()}
	f := newFlow(t, store, submitter)

	assert.Equal(t, StateShipping, f.State())

	require.NoError(t, f.SubmitShipping(validProfile()))
	assert.Equal(t, StatePayment, f.State())

	require.NoError(t, f.SubmitPayment(cardInstrument()))
	assert.Equal(t, StateReview, f.State())

	o, err := f.Confirm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, f.State())
	assert.Equal(t, "GMTEST123", f.OrderID())
	assert.Equal(t, "GMTEST123", o.ID)

	// Cart cleared after submission.
	assert.True(t, store.Empty())

	// Pricing snapshot in the payload: $60 subtotal ships free at 8% tax.
	require.NotNil(t, submitter.last)
	p := submitter.last.Pricing
	assert.Equal(t, "60", p.Subtotal.String())
	assert.Equal(t, "0", p.ShippingCost.String())
	assert.Equal(t, "4.8", p.Tax.String())
	assert.Equal(t, "64.8", p.Total.String())

	// Only the masked card survives into the payload.
	assert.Equal(t, payment.MethodCard, submitter.last.Payment.Method)
	assert.Equal(t, "4242", submitter.last.Payment.CardLast4)
}

func TestFlow_ShippingValidationBlocksAdvance(t *testing.T) {
	f := newFlow(t, cartWith(t, "10.00"), &mockSubmitter{})

	profile := validProfile()
	profile.Email = "nope"
	err := f.SubmitShipping(profile)

	var errs order.FieldErrors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, "Invalid email address", errs["email"])
	assert.Equal(t, StateShipping, f.State())
}

func TestFlow_InvalidCardBlocksAdvance(t *testing.T) {
	f := newFlow(t, cartWith(t, "10.00"), &mockSubmitter{})
	require.NoError(t, f.SubmitShipping(validProfile()))

	inst := cardInstrument()
	inst.CardNumber = "4242424242424241"
	err := f.SubmitPayment(inst)

	var errs payment.FieldErrors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, "Invalid card number", errs["cardNumber"])
	assert.Equal(t, StatePayment, f.State())
}

func TestFlow_AlternatePaymentSkipsFieldValidation(t *testing.T) {
	f := newFlow(t, cartWith(t, "10.00"), &mockSubmitter{order: confirmedOrder()})
	require.NoError(t, f.SubmitShipping(validProfile()))

	require.NoError(t, f.SubmitPayment(payment.Instrument{Method: payment.MethodPayPal}))
	assert.Equal(t, StateReview, f.State())
}

func TestFlow_Back(t *testing.T) {
	f := newFlow(t, cartWith(t, "10.00"), &mockSubmitter{})

	// Cannot step back from the first state.
	var tErr *TransitionError
	require.ErrorAs(t, f.Back(), &tErr)

	require.NoError(t, f.SubmitShipping(validProfile()))
	require.NoError(t, f.Back())
	assert.Equal(t, StateShipping, f.State())

	// Going back never skips the guard on the way forward again.
	require.NoError(t, f.SubmitShipping(validProfile()))
	require.NoError(t, f.SubmitPayment(cardInstrument()))
	require.NoError(t, f.Back())
	assert.Equal(t, StatePayment, f.State())
}

func TestFlow_NoForwardSkips(t *testing.T) {
	f := newFlow(t, cartWith(t, "10.00"), &mockSubmitter{})

	var tErr *TransitionError
	require.ErrorAs(t, f.SubmitPayment(cardInstrument()), &tErr)
	assert.Equal(t, StateShipping, tErr.State)

	_, err := f.Confirm(context.Background())
	require.ErrorAs(t, err, &tErr)
	assert.Equal(t, StateShipping, f.State())
}

func TestFlow_FailedSubmissionPreservesCartAndRetries(t *testing.T) {
	store := cartWith(t, "10.00")
	submitter := &mockSubmitter{err: errors.New("gateway unavailable")}
	f := newFlow(t, store, submitter)
	require.NoError(t, f.SubmitShipping(validProfile()))
	require.NoError(t, f.SubmitPayment(cardInstrument()))

	_, err := f.Confirm(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateFailed, f.State())
	assert.False(t, store.Empty())

	// Failed re-enters Payment, and the retry can succeed.
	require.NoError(t, f.Retry())
	assert.Equal(t, StatePayment, f.State())

	submitter.err = nil
	submitter.order = confirmedOrder()
	require.NoError(t, f.SubmitPayment(cardInstrument()))
	_, err = f.Confirm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, f.State())
	assert.Equal(t, 2, submitter.calls)
}

func TestFlow_NilOrderIsFailure(t *testing.T) {
	store := cartWith(t, "10.00")
	f := newFlow(t, store, &mockSubmitter{order: nil})
	require.NoError(t, f.SubmitShipping(validProfile()))
	require.NoError(t, f.SubmitPayment(cardInstrument()))

	_, err := f.Confirm(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateFailed, f.State())
	assert.False(t, store.Empty())
}

func TestFlow_RejectsInputWhileSubmitting(t *testing.T) {
	store := cartWith(t, "10.00")
	submitter := &mockSubmitter{
		order:   confirmedOrder(),
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	f := newFlow(t, store, submitter)
	require.NoError(t, f.SubmitShipping(validProfile()))
	require.NoError(t, f.SubmitPayment(cardInstrument()))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = f.Confirm(context.Background())
	}()

	<-submitter.started
	assert.Equal(t, StateSubmitting, f.State())

	// Re-entrant confirm and any other input are rejected mid-flight.
	var tErr *TransitionError
	_, err := f.Confirm(context.Background())
	require.ErrorAs(t, err, &tErr)
	require.ErrorAs(t, f.Back(), &tErr)
	require.ErrorAs(t, f.Retry(), &tErr)
	require.ErrorAs(t, f.SubmitPayment(cardInstrument()), &tErr)

	close(submitter.release)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("confirm did not finish")
	}
	assert.Equal(t, StateCompleted, f.State())
	assert.Equal(t, 1, submitter.calls)
}

func TestFlow_CompletedRejectsFurtherInput(t *testing.T) {
	f := newFlow(t, cartWith(t, "10.00"), &mockSubmitter{order: confirmedOrder()})
	require.NoError(t, f.SubmitShipping(validProfile()))
	require.NoError(t, f.SubmitPayment(cardInstrument()))
	_, err := f.Confirm(context.Background())
	require.NoError(t, err)

	var tErr *TransitionError
	require.ErrorAs(t, f.SubmitShipping(validProfile()), &tErr)
	require.ErrorAs(t, f.Retry(), &tErr)
	_, err = f.Confirm(context.Background())
	require.ErrorAs(t, err, &tErr)
}

func TestFlow_PricingMatchesRecordedItems(t *testing.T) {
	// Concurrent cart mutations must not split the submission: the
	// recorded items and their pricing always come from one snapshot.
	for range 50 {
		store := cartWith(t, "10.00", "20.00")
		submitter := &mockSubmitter{order: confirmedOrder()}
		f := newFlow(t, store, submitter)
		require.NoError(t, f.SubmitShipping(validProfile()))
		require.NoError(t, f.SubmitPayment(cardInstrument()))

		stop := make(chan struct{})
		done := make(chan struct{})
		go func() {
			defer close(done)
			for i := int64(100); ; i++ {
				select {
				case <-stop:
					return
				default:
				}
				_ = store.AddItem(context.Background(), product.Product{
					ID:    i,
					Name:  "late arrival",
					Price: decimal.RequireFromString("5.00"),
				}, 1)
			}
		}()

		_, err := f.Confirm(context.Background())
		close(stop)
		<-done
		require.NoError(t, err)

		sub := submitter.last
		require.NotNil(t, sub)
		want := pricing.Compute(sub.Items, pricing.DefaultConfig())
		assert.True(t, want.Subtotal.Equal(sub.Pricing.Subtotal),
			"subtotal %s priced over a different item list than recorded (want %s)",
			sub.Pricing.Subtotal, want.Subtotal)
		assert.True(t, want.Total.Equal(sub.Pricing.Total))
	}
}
