package usecase

import (
	"context"
	"errors"

	"resume-render/internal/domain"
	"resume-render/pkg/ai"
)

// DeviceStore is the device-scoped key/value store ("local storage").
type DeviceStore interface {
	Get(ctx context.Context, deviceID, key string) (string, bool, error)
	Set(ctx context.Context, deviceID, key, value string) error
	Delete(ctx context.Context, deviceID, key string) error
}

// EntitlementStore is the remote per-user record of owned templates.
type EntitlementStore interface {
	Owned(ctx context.Context, userID string) ([]string, error)
	Add(ctx context.Context, userID, templateID string) error
}

// Exporter rasterizes a standalone resume document.
type Exporter interface {
	ExportImage(ctx context.Context, html string) ([]byte, error)
	ExportDocument(ctx context.Context, html string) ([]byte, error)
}

// Archive keeps a copy of exported files.
type Archive interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
}

// Device store keys.
const (
	draftKeyPrefix = "resumeData-"
	purchasedKey   = "purchasedTemplates"
	pendingKey     = "pendingEntitlements"
	ordersKey      = "checkoutOrders"
)

// DraftKey is the device store key of the saved draft for a template.
func DraftKey(id domain.TemplateID) string { return draftKeyPrefix + string(id) }

var (
	// ErrMissingJobTitle is returned by GenerateSummary before any request
	// is made.
	ErrMissingJobTitle = ai.ErrMissingJobTitle
	// ErrStaleSummary is returned when a newer summary request was issued
	// while this one was in flight; its result is discarded.
	ErrStaleSummary = errors.New("summary superseded by a newer request")
	// ErrSummaryUnavailable is returned when no AI provider is configured.
	ErrSummaryUnavailable = errors.New("ai summary is not configured")
	// ErrEditorClosed is returned by operations on a closed editor.
	ErrEditorClosed = errors.New("editor is closed")
	ErrNotLoggedIn  = errors.New("login required")
	// ErrNotPurchasable is returned for unknown or free templates on the
	// purchase flow.
	ErrNotPurchasable = errors.New("template is not purchasable")
	ErrInvalidCoupon  = errors.New("invalid coupon")
	// ErrBadSignature is returned when a reported payment fails verification.
	ErrBadSignature = errors.New("payment signature mismatch")
	// ErrUnknownOrder is returned when a reported payment does not match an
	// open order for the same template and user.
	ErrUnknownOrder = errors.New("no matching checkout order")
)

// SummaryError is a recoverable AI failure; the document is unchanged.
type SummaryError struct {
	Err error
}

func (e *SummaryError) Error() string { return "generate summary: " + e.Err.Error() }

func (e *SummaryError) Unwrap() error { return e.Err }

// PaymentError carries the gateway's failure reason verbatim.
type PaymentError struct {
	Reason string
}

func (e *PaymentError) Error() string { return "payment failed: " + e.Reason }
