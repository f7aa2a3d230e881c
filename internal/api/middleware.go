package api

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rentguard/rentguard/internal/models"
)

const (
	authCookieName     = "rentguard_auth"
	languageCookieName = "rentguard_lang"
	contextUserKey     = "current_user"
	contextClaimsKey   = "current_claims"
	contextLanguageKey = "current_language"
)

var errTokenRevoked = errors.New("token revoked")

func currentUser(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals(contextUserKey).(*models.User)
	return user, ok
}

func currentClaims(c *fiber.Ctx) (*authClaims, bool) {
	claims, ok := c.Locals(contextClaimsKey).(*authClaims)
	return claims, ok
}

func currentLanguage(c *fiber.Ctx) string {
	language, _ := c.Locals(contextLanguageKey).(string)
	return language
}

func (handler *Handler) LanguageMiddleware(c *fiber.Ctx) error {
	cookieLanguage := c.Cookies(languageCookieName)
	language := handler.i18n.DetectFromAcceptLanguage(c.Get("Accept-Language"))
	if cookieLanguage != "" {
		language = handler.i18n.NormalizeLanguage(cookieLanguage)
	}

	if cookieLanguage != language {
		c.Cookie(&fiber.Cookie{
			Name:     languageCookieName,
			Value:    language,
			Path:     "/",
			Secure:   handler.cookieSecure,
			SameSite: "Lax",
			Expires:  time.Now().AddDate(1, 0, 0),
		})
	}

	c.Locals(contextLanguageKey, language)
	return c.Next()
}

// AuthRequired resolves the session user. Users holding a temporary password
// may only change it, inspect the session or sign out.
func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	user, claims, err := handler.authenticateRequest(c)
	if err != nil {
		return handler.apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	c.Locals(contextUserKey, user)
	c.Locals(contextClaimsKey, claims)
	if user.MustChangePassword && !allowedDuringPasswordChange(c.Path()) {
		return handler.apiError(c, fiber.StatusForbidden, "password_change_required")
	}
	return c.Next()
}

func allowedDuringPasswordChange(path string) bool {
	switch strings.TrimSuffix(path, "/") {
	case "/api/auth/change-password", "/api/auth/session", "/api/auth/logout":
		return true
	default:
		return false
	}
}

func (handler *Handler) authenticateRequest(c *fiber.Ctx) (*models.User, *authClaims, error) {
	tokenValue := tokenFromRequest(c)
	if tokenValue == "" {
		return nil, nil, errors.New("missing auth token")
	}

	claims, err := handler.parseToken(tokenValue)
	if err != nil {
		return nil, nil, err
	}

	revoked, err := handler.revocations.IsRevoked(requestContext(c), claims.ID)
	if err != nil {
		log.Printf("auth: revocation lookup failed: %v", err)
		return nil, nil, err
	}
	if revoked {
		return nil, nil, errTokenRevoked
	}

	userID, err := claims.userID()
	if err != nil {
		return nil, nil, err
	}
	user, err := handler.authService.FindByID(userID)
	if err != nil {
		return nil, nil, err
	}
	return &user, claims, nil
}

func tokenFromRequest(c *fiber.Ctx) string {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if scheme, token, found := strings.Cut(header, " "); found && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return strings.TrimSpace(c.Cookies(authCookieName))
}

func requestContext(c *fiber.Ctx) context.Context {
	if ctx := c.UserContext(); ctx != nil {
		return ctx
	}
	return context.Background()
}
