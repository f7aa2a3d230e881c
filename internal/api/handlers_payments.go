package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rentguard/rentguard/internal/models"
)

// ListPayments returns only payments of the session user's properties,
// optionally narrowed to one property via ?property_id=.
func (handler *Handler) ListPayments(c *fiber.Ctx) error {
	user, ok, err := handler.currentUserOrUnauthorized(c)
	if !ok {
		return err
	}

	var payments []models.Payment
	if raw := strings.TrimSpace(c.Query("property_id")); raw != "" {
		propertyID, parseErr := uuid.Parse(raw)
		if parseErr != nil {
			return handler.apiError(c, fiber.StatusBadRequest, "invalid_input")
		}
		payments, err = handler.paymentService.ListPaymentsForProperty(user.ID, propertyID)
	} else {
		payments, err = handler.paymentService.ListPaymentsForUser(user.ID)
	}
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(newPaymentViews(payments))
}

func (handler *Handler) UpdatePayment(c *fiber.Ctx) error {
	user, ok, err := handler.currentUserOrUnauthorized(c)
	if !ok {
		return err
	}
	paymentID, ok, err := handler.pathUUID(c, "id")
	if !ok {
		return err
	}

	var payload paymentPatchPayload
	if err := c.BodyParser(&payload); err != nil || payload.IsPaid == nil {
		return handler.apiError(c, fiber.StatusBadRequest, "invalid_input")
	}

	payment, err := handler.paymentService.SetPaid(requestContext(c), user.ID, paymentID, *payload.IsPaid)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(newPaymentView(payment))
}

func (handler *Handler) TogglePayment(c *fiber.Ctx) error {
	user, ok, err := handler.currentUserOrUnauthorized(c)
	if !ok {
		return err
	}
	paymentID, ok, err := handler.pathUUID(c, "id")
	if !ok {
		return err
	}

	payment, err := handler.paymentService.TogglePaid(requestContext(c), user.ID, paymentID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(newPaymentView(payment))
}
