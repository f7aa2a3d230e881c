package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rentguard/rentguard/internal/services"
)

func (handler *Handler) ListProperties(c *fiber.Ctx) error {
	user, ok, err := handler.currentUserOrUnauthorized(c)
	if !ok {
		return err
	}

	properties, err := handler.propertyService.ListProperties(user.ID)
	if err != nil {
		return handler.respondServiceError(c, services.ErrPropertyLoadFailed)
	}
	return c.JSON(newPropertyViews(properties))
}

// CreateProperty answers 201 when the property and its ledger were both
// written and 207 when only the property was.
func (handler *Handler) CreateProperty(c *fiber.Ctx) error {
	user, ok, err := handler.currentUserOrUnauthorized(c)
	if !ok {
		return err
	}

	var payload propertyPayload
	if err := c.BodyParser(&payload); err != nil {
		return handler.apiError(c, fiber.StatusBadRequest, "invalid_input")
	}

	result, err := handler.propertyService.CreatePropertyWithPlan(requestContext(c), user.ID, payload.input(), handler.today())
	if result.Outcome == services.SagaPartial && errors.Is(err, services.ErrPaymentPlanCreateFailed) {
		language := currentLanguage(c)
		return c.Status(fiber.StatusMultiStatus).JSON(fiber.Map{
			"outcome":  result.Outcome,
			"property": newPropertyView(result.Property),
			"payments": newPaymentViews(nil),
			"error":    "plan_create_failed",
			"message":  handler.i18n.Translate(language, "error.plan_create_failed"),
		})
	}
	if err != nil {
		return handler.respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"outcome":  result.Outcome,
		"property": newPropertyView(result.Property),
		"payments": newPaymentViews(result.Payments),
	})
}

func (handler *Handler) UpdateProperty(c *fiber.Ctx) error {
	user, ok, err := handler.currentUserOrUnauthorized(c)
	if !ok {
		return err
	}
	propertyID, ok, err := handler.pathUUID(c, "id")
	if !ok {
		return err
	}

	var payload propertyPatchPayload
	if err := c.BodyParser(&payload); err != nil {
		return handler.apiError(c, fiber.StatusBadRequest, "invalid_input")
	}

	property, err := handler.propertyService.UpdateProperty(user.ID, propertyID, payload.patch())
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(newPropertyView(property))
}

// DeleteProperty answers 204 on a full delete and 207 when the ledger went
// but the property row stayed.
func (handler *Handler) DeleteProperty(c *fiber.Ctx) error {
	user, ok, err := handler.currentUserOrUnauthorized(c)
	if !ok {
		return err
	}
	propertyID, ok, err := handler.pathUUID(c, "id")
	if !ok {
		return err
	}

	result, err := handler.propertyService.DeletePropertyCascade(requestContext(c), user.ID, propertyID)
	if result.Outcome == services.SagaPartial {
		return c.Status(fiber.StatusMultiStatus).JSON(fiber.Map{
			"outcome":          result.Outcome,
			"property_id":      result.PropertyID,
			"payments_deleted": result.PaymentsDeleted,
			"error":            "delete_partial",
			"message":          handler.i18n.Translate(currentLanguage(c), "error.delete_partial"),
		})
	}
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (handler *Handler) RegeneratePlan(c *fiber.Ctx) error {
	user, ok, err := handler.currentUserOrUnauthorized(c)
	if !ok {
		return err
	}
	propertyID, ok, err := handler.pathUUID(c, "id")
	if !ok {
		return err
	}

	payments, err := handler.paymentService.RegeneratePlan(requestContext(c), user.ID, propertyID, handler.today())
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"outcome":  services.SagaCompleted,
		"payments": newPaymentViews(payments),
	})
}

func (handler *Handler) RentEstimate(c *fiber.Ctx) error {
	user, ok, err := handler.currentUserOrUnauthorized(c)
	if !ok {
		return err
	}
	propertyID, ok, err := handler.pathUUID(c, "id")
	if !ok {
		return err
	}

	adjustment, err := handler.propertyService.EstimateRent(user.ID, propertyID, handler.today())
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(newRentAdjustmentView(adjustment))
}

func (handler *Handler) ApplyRentIncrease(c *fiber.Ctx) error {
	user, ok, err := handler.currentUserOrUnauthorized(c)
	if !ok {
		return err
	}
	propertyID, ok, err := handler.pathUUID(c, "id")
	if !ok {
		return err
	}

	property, adjustment, err := handler.propertyService.ApplyRentIncrease(user.ID, propertyID, handler.today())
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"property":   newPropertyView(property),
		"adjustment": newRentAdjustmentView(adjustment),
	})
}
