package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"resume-render/internal/model"
	"resume-render/internal/render"
	"resume-render/internal/usecase"
)

// degradedNotice is shown when the account record could not be reached and
// device knowledge was used instead.
const degradedNotice = "Your account could not be reached; showing purchases saved on this device."

const pendingNotice = "Purchase saved on this device; your account will be updated once it is reachable."

// writeError maps usecase and model errors to responses. Unknown errors are
// logged and reported as 500 without detail.
func (h *Handler) writeError(c *fiber.Ctx, err error) error {
	var (
		fieldErr   *model.FieldError
		paymentErr *usecase.PaymentError
		summaryErr *usecase.SummaryError
	)
	switch {
	case errors.As(err, &fieldErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": fieldErr.Error(), "path": fieldErr.Path})
	case errors.As(err, &paymentErr):
		return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{"error": paymentErr.Reason})
	case errors.As(err, &summaryErr):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "could not generate a summary, try again", "recoverable": true})
	case errors.Is(err, usecase.ErrMissingJobTitle),
		errors.Is(err, usecase.ErrInvalidCoupon),
		errors.Is(err, usecase.ErrUnsupportedFormat),
		errors.Is(err, usecase.ErrBadSignature),
		errors.Is(err, usecase.ErrUnknownOrder),
		errors.Is(err, model.ErrInvalidField):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, model.ErrItemNotFound),
		errors.Is(err, render.ErrTemplateNotFound),
		errors.Is(err, usecase.ErrNotPurchasable):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, usecase.ErrNotLoggedIn):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error(), "redirect": loginRedirect(c.Path())})
	case errors.Is(err, usecase.ErrStaleSummary):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, usecase.ErrEditorClosed):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	}
	h.log.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
}

func loginRedirect(path string) string {
	return "/login?redirect=" + path
}
