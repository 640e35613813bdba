package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"resume-render/internal/adapter/repository"
	"resume-render/internal/domain"
	"resume-render/internal/logger"
	"resume-render/internal/render"
)

const testSecret = "rzp_secret"

func newTestCheckout(local DeviceStore, remote EntitlementStore, secret string) *Checkout {
	ents := newTestEntitlements(local, remote)
	cfg := CheckoutConfig{KeyID: "rzp_test_key", KeySecret: secret}
	return NewCheckout(cfg, ents, render.Find, logger.NewNop())
}

func paidOutcome(t *testing.T, c *Checkout, sess domain.Session, id domain.TemplateID) domain.Outcome {
	t.Helper()
	order, err := c.Start(context.Background(), sess, id, "")
	require.NoError(t, err)
	orderID := order.ID.String()
	return domain.Outcome{
		Status:    domain.OutcomeSucceeded,
		OrderID:   orderID,
		PaymentID: "pay_1",
		Signature: Sign(testSecret, orderID, "pay_1"),
	}
}

func TestCheckout_Quote(t *testing.T) {
	c := newTestCheckout(repository.NewMemoryStore(), nil, "")

	tests := []struct {
		name    string
		id      domain.TemplateID
		coupon  string
		price   int
		applied string
		err     error
	}{
		{name: "list price", id: domain.TemplateModern, price: 49},
		{name: "free coupon", id: domain.TemplateModern, coupon: "FIRST100", applied: FreeCoupon},
		{name: "coupon is case insensitive", id: domain.TemplateTech, coupon: " first100 ", applied: FreeCoupon},
		{name: "unknown coupon", id: domain.TemplateTech, coupon: "HALFOFF", price: 49, err: ErrInvalidCoupon},
		{name: "free template", id: domain.TemplateClassic, err: ErrNotPurchasable},
		{name: "unknown template", id: "nope", err: ErrNotPurchasable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := c.Quote(tt.id, tt.coupon)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			} else {
				require.NoError(t, err)
			}
			if tt.err == ErrNotPurchasable {
				return
			}
			assert.Equal(t, 49, q.ListPrice)
			assert.Equal(t, tt.price, q.Price)
			assert.Equal(t, tt.applied, q.Coupon)
			assert.Equal(t, "INR", q.Currency)
			assert.Equal(t, tt.price == 0, q.Free())
		})
	}
}

func TestCheckout_StartCreatesOrder(t *testing.T) {
	c := newTestCheckout(repository.NewMemoryStore(), nil, "")
	c.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }

	order, err := c.Start(context.Background(), signedIn, domain.TemplateVisualCV, "")
	require.NoError(t, err)

	assert.NotEmpty(t, order.ID.String())
	assert.Equal(t, domain.TemplateVisualCV, order.TemplateID)
	assert.Equal(t, "Visual CV", order.TemplateName)
	assert.Equal(t, "user-1", order.UserID)
	assert.Equal(t, 4900, order.Amount)
	assert.Equal(t, "INR", order.Currency)
	assert.Equal(t, "rzp_test_key", order.KeyID)
	assert.Equal(t, c.now(), order.CreatedAt)
}

func TestCheckout_StartRejects(t *testing.T) {
	c := newTestCheckout(repository.NewMemoryStore(), nil, "")
	ctx := context.Background()

	_, err := c.Start(ctx, anonymous, domain.TemplateModern, "")
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	_, err = c.Start(ctx, signedIn, domain.TemplateModern, FreeCoupon)
	assert.ErrorIs(t, err, ErrNotPurchasable)

	_, err = c.Start(ctx, signedIn, domain.TemplateClassic, "")
	assert.ErrorIs(t, err, ErrNotPurchasable)
}

func TestCheckout_ClaimFree(t *testing.T) {
	local := repository.NewMemoryStore()
	c := newTestCheckout(local, nil, "")
	ctx := context.Background()

	_, err := c.ClaimFree(ctx, anonymous, domain.TemplateCreative, "")
	assert.ErrorIs(t, err, ErrInvalidCoupon)
	assert.False(t, c.entitlements.IsOwned(ctx, anonymous, domain.TemplateCreative))

	_, err = c.ClaimFree(ctx, anonymous, domain.TemplateCreative, "first100")
	require.NoError(t, err)
	assert.True(t, c.entitlements.IsOwned(ctx, anonymous, domain.TemplateCreative))
}

func TestCheckout_FailedPaymentGrantsNothing(t *testing.T) {
	local := repository.NewMemoryStore()
	remote := new(mockEntitlementStore)
	remote.On("Owned", mock.Anything, "user-1").Return([]string{}, nil)
	c := newTestCheckout(local, remote, testSecret)
	ctx := context.Background()

	_, err := c.Complete(ctx, signedIn, domain.TemplateModern, domain.Outcome{
		Status:  domain.OutcomeFailed,
		OrderID: "order_1",
		Reason:  "Your card was declined.",
	})

	var perr *PaymentError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "Your card was declined.", perr.Reason)
	_, ok, err := local.Get(ctx, testDevice, purchasedKey)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, c.entitlements.IsOwned(ctx, signedIn, domain.TemplateModern))
	remote.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckout_DismissedGrantsNothing(t *testing.T) {
	local := repository.NewMemoryStore()
	remote := new(mockEntitlementStore)
	c := newTestCheckout(local, remote, testSecret)
	ctx := context.Background()

	res, err := c.Complete(ctx, signedIn, domain.TemplateModern, domain.Outcome{Status: domain.OutcomeDismissed})
	require.NoError(t, err)
	assert.Equal(t, GrantResult{}, res)
	_, ok, err := local.Get(ctx, testDevice, purchasedKey)
	require.NoError(t, err)
	assert.False(t, ok)
	remote.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckout_SucceededPaymentGrants(t *testing.T) {
	local := repository.NewMemoryStore()
	remote := new(mockEntitlementStore)
	remote.On("Add", mock.Anything, "user-1", "modern").Return(nil).Once()
	c := newTestCheckout(local, remote, testSecret)
	ctx := context.Background()

	res, err := c.Complete(ctx, signedIn, domain.TemplateModern, paidOutcome(t, c, signedIn, domain.TemplateModern))
	require.NoError(t, err)
	assert.True(t, res.Replicated)
	assert.True(t, c.entitlements.IsOwned(ctx, signedIn, domain.TemplateModern))
	remote.AssertExpectations(t)

	_, ok, err := local.Get(ctx, testDevice, ordersKey)
	require.NoError(t, err)
	assert.False(t, ok, "completed order should be consumed")
}

func TestCheckout_PaymentIsBoundToItsOrder(t *testing.T) {
	local := repository.NewMemoryStore()
	c := newTestCheckout(local, nil, testSecret)
	ctx := context.Background()
	out := paidOutcome(t, c, signedIn, domain.TemplateModern)

	_, err := c.Complete(ctx, signedIn, domain.TemplateTech, out)
	assert.ErrorIs(t, err, ErrUnknownOrder)
	_, err = c.Complete(ctx, domain.Session{DeviceID: testDevice, UserID: "user-2"}, domain.TemplateModern, out)
	assert.ErrorIs(t, err, ErrUnknownOrder)

	_, err = c.Complete(ctx, signedIn, domain.TemplateModern, out)
	require.NoError(t, err)

	// a consumed order cannot be replayed for any template
	for _, id := range []domain.TemplateID{domain.TemplateModern, domain.TemplateTech, domain.TemplateVisualCV} {
		_, err = c.Complete(ctx, signedIn, id, out)
		assert.ErrorIs(t, err, ErrUnknownOrder, id)
	}
	assert.False(t, c.entitlements.IsOwned(ctx, signedIn, domain.TemplateTech))
	assert.False(t, c.entitlements.IsOwned(ctx, signedIn, domain.TemplateVisualCV))
}

func TestCheckout_UnsignedPaymentNeedsAnOrder(t *testing.T) {
	c := newTestCheckout(repository.NewMemoryStore(), nil, "")
	ctx := context.Background()

	_, err := c.Complete(ctx, signedIn, domain.TemplateElegant, domain.Outcome{Status: domain.OutcomeSucceeded})
	assert.ErrorIs(t, err, ErrUnknownOrder)
	assert.False(t, c.entitlements.IsOwned(ctx, signedIn, domain.TemplateElegant))

	out := paidOutcome(t, c, signedIn, domain.TemplateElegant)
	out.Signature = ""
	_, err = c.Complete(ctx, signedIn, domain.TemplateElegant, out)
	require.NoError(t, err)
	assert.True(t, c.entitlements.IsOwned(ctx, signedIn, domain.TemplateElegant))
}

func TestCheckout_ExpiredOrderIsRejected(t *testing.T) {
	c := newTestCheckout(repository.NewMemoryStore(), nil, testSecret)
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return start }
	out := paidOutcome(t, c, signedIn, domain.TemplateCreative)

	c.now = func() time.Time { return start.Add(OrderTTL + time.Minute) }
	_, err := c.Complete(context.Background(), signedIn, domain.TemplateCreative, out)
	assert.ErrorIs(t, err, ErrUnknownOrder)
}

func TestCheckout_BadSignatureGrantsNothing(t *testing.T) {
	local := repository.NewMemoryStore()
	remote := new(mockEntitlementStore)
	c := newTestCheckout(local, remote, testSecret)
	ctx := context.Background()
	out := paidOutcome(t, c, signedIn, domain.TemplateModern)
	out.Signature = Sign("other", out.OrderID, out.PaymentID)

	_, err := c.Complete(ctx, signedIn, domain.TemplateModern, out)
	assert.ErrorIs(t, err, ErrBadSignature)
	_, ok, err := local.Get(ctx, testDevice, purchasedKey)
	require.NoError(t, err)
	assert.False(t, ok)
	remote.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything)

	_, ok, err = local.Get(ctx, testDevice, ordersKey)
	require.NoError(t, err)
	assert.True(t, ok, "order stays open after a rejected signature")
}

func TestCheckout_CompleteRequiresLogin(t *testing.T) {
	c := newTestCheckout(repository.NewMemoryStore(), nil, "")

	_, err := c.Complete(context.Background(), anonymous, domain.TemplateModern, domain.Outcome{Status: domain.OutcomeSucceeded})
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestVerifySignature(t *testing.T) {
	sig := Sign(testSecret, "order_9", "pay_9")

	assert.Len(t, sig, 64)
	assert.True(t, VerifySignature(testSecret, "order_9", "pay_9", sig))
	assert.False(t, VerifySignature(testSecret, "order_9", "pay_8", sig))
	assert.False(t, VerifySignature(testSecret, "order_9", "pay_9", ""))
}
