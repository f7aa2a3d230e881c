package api

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rentguard/rentguard/internal/models"
	"github.com/rentguard/rentguard/internal/services"
)

// apiError writes {"error": code, "message": localized} with the given status.
func (handler *Handler) apiError(c *fiber.Ctx, status int, code string, args ...any) error {
	key := "error." + code
	message := handler.i18n.Translate(currentLanguage(c), key)
	if len(args) > 0 {
		message = handler.i18n.Translatef(currentLanguage(c), key, args...)
	}
	return c.Status(status).JSON(fiber.Map{
		"error":   code,
		"message": message,
	})
}

// respondServiceError maps service sentinels onto HTTP statuses.
func (handler *Handler) respondServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrPropertyNotFound),
		errors.Is(err, services.ErrPaymentNotFound),
		errors.Is(err, services.ErrUserNotFound):
		return handler.apiError(c, fiber.StatusNotFound, "not_found")
	case errors.Is(err, services.ErrPropertyNameRequired):
		return handler.apiError(c, fiber.StatusBadRequest, "property_name_required")
	case errors.Is(err, services.ErrInvalidPaymentDay):
		return handler.apiError(c, fiber.StatusBadRequest, "invalid_payment_day")
	case errors.Is(err, services.ErrInvalidRentAmount):
		return handler.apiError(c, fiber.StatusBadRequest, "invalid_rent_amount")
	case errors.Is(err, services.ErrFreeTierLimitReached):
		return handler.apiError(c, fiber.StatusForbidden, "free_tier_limit_reached", handler.freeTierLimit)
	case errors.Is(err, services.ErrContractStartDateMissing):
		return handler.apiError(c, fiber.StatusUnprocessableEntity, "contract_start_missing")
	case errors.Is(err, services.ErrRentIncreaseNotEligible):
		return handler.apiError(c, fiber.StatusUnprocessableEntity, "rent_increase_not_eligible")
	case errors.Is(err, services.ErrPlanAlreadyExists):
		return handler.apiError(c, fiber.StatusConflict, "plan_already_exists")
	case errors.Is(err, services.ErrPaymentPlanCreateFailed):
		return handler.apiError(c, fiber.StatusInternalServerError, "plan_create_failed")
	case errors.Is(err, services.ErrAuthCredentialsInvalid):
		return handler.apiError(c, fiber.StatusBadRequest, "invalid_input")
	case errors.Is(err, services.ErrWeakPassword):
		return handler.apiError(c, fiber.StatusBadRequest, "weak_password")
	case errors.Is(err, services.ErrEmailAlreadyExists):
		return handler.apiError(c, fiber.StatusConflict, "email_exists")
	case errors.Is(err, services.ErrInvalidCurrentPassword):
		return handler.apiError(c, fiber.StatusUnauthorized, "invalid_current_password")
	case errors.Is(err, services.ErrPasswordUnchanged):
		return handler.apiError(c, fiber.StatusBadRequest, "password_unchanged")
	case errors.Is(err, services.ErrPropertyLoadFailed),
		errors.Is(err, services.ErrPaymentLoadFailed):
		return handler.apiError(c, fiber.StatusInternalServerError, "load_failed")
	case errors.Is(err, services.ErrPropertyCreateFailed),
		errors.Is(err, services.ErrPropertyUpdateFailed),
		errors.Is(err, services.ErrPropertyDeleteFailed),
		errors.Is(err, services.ErrPaymentUpdateFailed),
		errors.Is(err, services.ErrUserCreateFailed),
		errors.Is(err, services.ErrPasswordHashFailed),
		errors.Is(err, services.ErrPasswordResetFailed):
		return handler.apiError(c, fiber.StatusInternalServerError, "save_failed")
	default:
		log.Printf("api: unhandled error on %s %s: %v", c.Method(), c.Path(), err)
		return handler.apiError(c, fiber.StatusInternalServerError, "internal")
	}
}

func (handler *Handler) currentUserOrUnauthorized(c *fiber.Ctx) (*models.User, bool, error) {
	user, ok := currentUser(c)
	if !ok || user == nil {
		return nil, false, handler.apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	return user, true, nil
}

func (handler *Handler) pathUUID(c *fiber.Ctx, name string) (uuid.UUID, bool, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, false, handler.apiError(c, fiber.StatusNotFound, "not_found")
	}
	return id, true, nil
}
