package usecase

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-render/internal/domain"
	"resume-render/internal/logger"
)

// FreeCoupon makes any paid template free.
const FreeCoupon = "FIRST100"

// OrderTTL is how long an issued order can be completed.
const OrderTTL = 24 * time.Hour

// issuedOrder binds a gateway order to the template and user it was started
// for. Stored per device under ordersKey, keyed by order id.
type issuedOrder struct {
	TemplateID string    `json:"templateId"`
	UserID     string    `json:"userId"`
	CreatedAt  time.Time `json:"createdAt"`
}

// CheckoutConfig holds the payment gateway settings.
type CheckoutConfig struct {
	KeyID string
	// KeySecret verifies payment signatures; empty skips verification.
	KeySecret string
	Currency  string
}

// Checkout sells paid templates: quoting, gateway orders, free claims and
// the recording of gateway outcomes.
type Checkout struct {
	cfg          CheckoutConfig
	entitlements *EntitlementService
	find         func(domain.TemplateID) (domain.Template, bool)
	orders       deviceLocks
	log          *logger.Logger
	now          func() time.Time
}

func NewCheckout(cfg CheckoutConfig, entitlements *EntitlementService,
	find func(domain.TemplateID) (domain.Template, bool), log *logger.Logger) *Checkout {
	if cfg.Currency == "" {
		cfg.Currency = "INR"
	}
	return &Checkout{cfg: cfg, entitlements: entitlements, find: find, log: log, now: time.Now}
}

// Quote prices a paid template. An empty coupon is allowed; an unknown one is
// ErrInvalidCoupon.
func (c *Checkout) Quote(id domain.TemplateID, coupon string) (domain.Quote, error) {
	t, ok := c.find(id)
	if !ok || !t.IsPaid() {
		return domain.Quote{}, ErrNotPurchasable
	}
	q := domain.Quote{
		TemplateID: t.ID,
		ListPrice:  t.PriceOrZero(),
		Price:      t.PriceOrZero(),
		Currency:   c.cfg.Currency,
	}
	coupon = strings.TrimSpace(coupon)
	if coupon == "" {
		return q, nil
	}
	if !strings.EqualFold(coupon, FreeCoupon) {
		return q, ErrInvalidCoupon
	}
	q.Coupon = FreeCoupon
	q.Price = 0
	return q, nil
}

// Start creates a gateway order for a signed-in user and records it on the
// device so Complete can match the outcome. A quote of zero must go through
// ClaimFree instead.
func (c *Checkout) Start(ctx context.Context, sess domain.Session, id domain.TemplateID, coupon string) (domain.Order, error) {
	q, err := c.Quote(id, coupon)
	if err != nil {
		return domain.Order{}, err
	}
	if !sess.Authenticated() {
		return domain.Order{}, ErrNotLoggedIn
	}
	if q.Free() {
		return domain.Order{}, ErrNotPurchasable
	}
	t, _ := c.find(id)
	order := domain.Order{
		ID:           uuid.New(),
		TemplateID:   t.ID,
		TemplateName: t.Name,
		UserID:       sess.UserID,
		Amount:       q.Price * 100,
		Currency:     q.Currency,
		KeyID:        c.cfg.KeyID,
		CreatedAt:    c.now().UTC(),
	}

	unlock := c.orders.lock(sess.DeviceID)
	defer unlock()
	orders, err := c.readOrders(ctx, sess.DeviceID)
	if err != nil {
		c.log.Warn("replacing unreadable checkout orders", "device", sess.DeviceID, "error", err)
		orders = map[string]issuedOrder{}
	}
	orders[order.ID.String()] = issuedOrder{TemplateID: string(t.ID), UserID: sess.UserID, CreatedAt: order.CreatedAt}
	if err := c.writeOrders(ctx, sess.DeviceID, orders); err != nil {
		return domain.Order{}, fmt.Errorf("save checkout order: %w", err)
	}
	return order, nil
}

// ClaimFree grants a template whose coupon brings the price to zero.
// Anonymous visitors get a device-only grant.
func (c *Checkout) ClaimFree(ctx context.Context, sess domain.Session, id domain.TemplateID, coupon string) (GrantResult, error) {
	q, err := c.Quote(id, coupon)
	if err != nil {
		return GrantResult{}, err
	}
	if !q.Free() {
		return GrantResult{}, ErrInvalidCoupon
	}
	return c.entitlements.Grant(ctx, sess, id)
}

// Complete records what the gateway reported for an order of template id. A
// failed payment returns *PaymentError and grants nothing; a dismissed
// widget is not an error and grants nothing. A successful payment must name
// an order Start issued on this device for the same template and user; the
// order is consumed by the grant.
func (c *Checkout) Complete(ctx context.Context, sess domain.Session, id domain.TemplateID, out domain.Outcome) (GrantResult, error) {
	if _, err := c.Quote(id, ""); err != nil {
		return GrantResult{}, err
	}
	if !sess.Authenticated() {
		return GrantResult{}, ErrNotLoggedIn
	}

	switch out.Status {
	case domain.OutcomeSucceeded:
		return c.completePaid(ctx, sess, id, out)
	case domain.OutcomeFailed:
		c.log.Info("payment failed", "user", sess.UserID, "template", id, "reason", out.Reason)
		return GrantResult{}, &PaymentError{Reason: out.Reason}
	case domain.OutcomeDismissed:
		return GrantResult{}, nil
	}
	return GrantResult{}, &PaymentError{Reason: "unknown payment status " + string(out.Status)}
}

func (c *Checkout) completePaid(ctx context.Context, sess domain.Session, id domain.TemplateID, out domain.Outcome) (GrantResult, error) {
	unlock := c.orders.lock(sess.DeviceID)
	defer unlock()

	orders, err := c.readOrders(ctx, sess.DeviceID)
	if err != nil {
		return GrantResult{}, err
	}
	o, ok := orders[out.OrderID]
	if !ok || o.TemplateID != string(id) || o.UserID != sess.UserID {
		c.log.Warn("rejected payment for unknown order", "user", sess.UserID, "template", id, "order", out.OrderID)
		return GrantResult{}, ErrUnknownOrder
	}
	if c.cfg.KeySecret != "" && !VerifySignature(c.cfg.KeySecret, out.OrderID, out.PaymentID, out.Signature) {
		c.log.Warn("rejected payment with bad signature", "user", sess.UserID, "template", id, "order", out.OrderID)
		return GrantResult{}, ErrBadSignature
	}

	res, err := c.entitlements.Grant(ctx, sess, id)
	if err != nil {
		return res, err
	}
	delete(orders, out.OrderID)
	if err := c.writeOrders(ctx, sess.DeviceID, orders); err != nil {
		c.log.Warn("failed to consume checkout order", "order", out.OrderID, "error", err)
	}
	return res, nil
}

// readOrders returns the unexpired orders issued on a device.
func (c *Checkout) readOrders(ctx context.Context, deviceID string) (map[string]issuedOrder, error) {
	orders := map[string]issuedOrder{}
	raw, ok, err := c.entitlements.local.Get(ctx, deviceID, ordersKey)
	if err != nil || !ok {
		return orders, err
	}
	if err := json.Unmarshal([]byte(raw), &orders); err != nil {
		return map[string]issuedOrder{}, fmt.Errorf("decode %s: %w", ordersKey, err)
	}
	cutoff := c.now().Add(-OrderTTL)
	for id, o := range orders {
		if o.CreatedAt.Before(cutoff) {
			delete(orders, id)
		}
	}
	return orders, nil
}

func (c *Checkout) writeOrders(ctx context.Context, deviceID string, orders map[string]issuedOrder) error {
	if len(orders) == 0 {
		return c.entitlements.local.Delete(ctx, deviceID, ordersKey)
	}
	b, err := json.Marshal(orders)
	if err != nil {
		return err
	}
	return c.entitlements.local.Set(ctx, deviceID, ordersKey, string(b))
}

// Sign returns the gateway signature of a payment: hex HMAC-SHA256 of
// "order|payment".
func Sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks sig against Sign in constant time.
func VerifySignature(secret, orderID, paymentID, sig string) bool {
	return hmac.Equal([]byte(Sign(secret, orderID, paymentID)), []byte(sig))
}
