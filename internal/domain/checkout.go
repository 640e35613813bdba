package domain

import (
	"time"

	"github.com/google/uuid"
)

// Quote is the price of a template after an optional coupon, in major
// currency units.
type Quote struct {
	TemplateID TemplateID `json:"templateId"`
	ListPrice  int        `json:"listPrice"`
	Price      int        `json:"price"`
	Coupon     string     `json:"coupon,omitempty"`
	Currency   string     `json:"currency"`
}

// Free reports whether the template can be claimed without payment.
func (q Quote) Free() bool { return q.Price == 0 }

// Order is a pending payment handed to the gateway's checkout widget.
type Order struct {
	ID           uuid.UUID  `json:"id"`
	TemplateID   TemplateID `json:"templateId"`
	TemplateName string     `json:"templateName"`
	UserID       string     `json:"userId"`
	// Amount is in minor units (paise for INR).
	Amount    int       `json:"amount"`
	Currency  string    `json:"currency"`
	KeyID     string    `json:"keyId"`
	CreatedAt time.Time `json:"createdAt"`
}

// OutcomeStatus is how the gateway widget finished.
type OutcomeStatus string

const (
	OutcomeSucceeded OutcomeStatus = "succeeded"
	OutcomeFailed    OutcomeStatus = "failed"
	OutcomeDismissed OutcomeStatus = "dismissed"
)

// Outcome is what the gateway reported back for an order.
type Outcome struct {
	Status    OutcomeStatus `json:"status"`
	OrderID   string        `json:"orderId"`
	PaymentID string        `json:"paymentId"`
	Signature string        `json:"signature"`
	// Reason is the gateway's failure description, shown verbatim.
	Reason string `json:"reason"`
}
