package api

import (
	"errors"
	"log"
	"math"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rentguard/rentguard/internal/models"
	"github.com/rentguard/rentguard/internal/services"
)

func (handler *Handler) Register(c *fiber.Ctx) error {
	var input credentialsInput
	if err := c.BodyParser(&input); err != nil {
		return handler.apiError(c, fiber.StatusBadRequest, "invalid_input")
	}

	user, err := handler.authService.Register(input.Email, input.Password)
	if err != nil {
		return handler.respondServiceError(c, err)
	}

	return handler.startSession(c, &user, input.RememberMe, fiber.StatusCreated)
}

func (handler *Handler) Login(c *fiber.Ctx) error {
	var input credentialsInput
	if err := c.BodyParser(&input); err != nil {
		return handler.apiError(c, fiber.StatusBadRequest, "invalid_input")
	}

	limiterKeys := loginLimiterKeys(c, input.Email)
	now := handler.now()
	if blocked, retryAfter := handler.loginLimiter.blocked(limiterKeys, now); blocked {
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
		return handler.apiError(c, fiber.StatusTooManyRequests, "too_many_attempts")
	}

	user, err := handler.authService.SignIn(input.Email, input.Password)
	if errors.Is(err, services.ErrAuthCredentialsInvalid) {
		handler.loginLimiter.recordFailure(limiterKeys, now)
		return handler.apiError(c, fiber.StatusUnauthorized, "invalid_credentials")
	}
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	handler.loginLimiter.reset(limiterKeys)

	return handler.startSession(c, &user, input.RememberMe, fiber.StatusOK)
}

// Logout revokes the presented token so it stops working before it expires.
func (handler *Handler) Logout(c *fiber.Ctx) error {
	user, ok, err := handler.currentUserOrUnauthorized(c)
	if !ok {
		return err
	}
	if claims, found := currentClaims(c); found {
		if err := handler.revokeClaims(c, claims); err != nil {
			return handler.apiError(c, fiber.StatusInternalServerError, "internal")
		}
	}
	handler.clearAuthCookie(c)
	handler.notifySession(c, services.SessionSignedOut, user)
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) Refresh(c *fiber.Ctx) error {
	user, ok, err := handler.currentUserOrUnauthorized(c)
	if !ok {
		return err
	}
	claims, found := currentClaims(c)
	if !found {
		return handler.apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	token, err := handler.buildToken(user, claims.Remember)
	if err != nil {
		return handler.apiError(c, fiber.StatusInternalServerError, "internal")
	}
	if err := handler.revokeClaims(c, claims); err != nil {
		return handler.apiError(c, fiber.StatusInternalServerError, "internal")
	}

	handler.setAuthCookie(c, token, claims.Remember)
	handler.notifySession(c, services.SessionTokenRefreshed, user)
	return c.JSON(sessionResponse(user, token))
}

func (handler *Handler) Session(c *fiber.Ctx) error {
	user, ok, err := handler.currentUserOrUnauthorized(c)
	if !ok {
		return err
	}
	return c.JSON(newUserView(user))
}

func (handler *Handler) ChangePassword(c *fiber.Ctx) error {
	user, ok, err := handler.currentUserOrUnauthorized(c)
	if !ok {
		return err
	}

	var input changePasswordInput
	if err := c.BodyParser(&input); err != nil {
		return handler.apiError(c, fiber.StatusBadRequest, "invalid_input")
	}
	if err := handler.authService.ChangePassword(user.ID, input.CurrentPassword, input.NewPassword); err != nil {
		return handler.respondServiceError(c, err)
	}

	updated, err := handler.authService.FindByID(user.ID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(newUserView(&updated))
}

func (handler *Handler) startSession(c *fiber.Ctx, user *models.User, rememberMe bool, status int) error {
	token, err := handler.buildToken(user, rememberMe)
	if err != nil {
		return handler.apiError(c, fiber.StatusInternalServerError, "internal")
	}
	handler.setAuthCookie(c, token, rememberMe)
	handler.notifySession(c, services.SessionSignedIn, user)
	return c.Status(status).JSON(sessionResponse(user, token))
}

func (handler *Handler) revokeClaims(c *fiber.Ctx, claims *authClaims) error {
	expiresAt := handler.now().Add(rememberAuthTokenTTL)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	if err := handler.revocations.Revoke(requestContext(c), claims.ID, expiresAt); err != nil {
		log.Printf("auth: revoke token %s failed: %v", claims.ID, err)
		return err
	}
	return nil
}

func (handler *Handler) notifySession(c *fiber.Ctx, kind services.SessionEventKind, user *models.User) {
	handler.notifier.Notify(requestContext(c), services.SessionEvent{
		Kind:   kind,
		UserID: user.ID,
		Email:  user.Email,
		At:     handler.now().UTC(),
	})
}

func sessionResponse(user *models.User, token issuedToken) fiber.Map {
	return fiber.Map{
		"token":      token.Value,
		"expires_at": token.ExpiresAt.UTC().Format(time.RFC3339),
		"user":       newUserView(user),
	}
}
