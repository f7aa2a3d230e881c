package api

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rentguard/rentguard/internal/models"
)

type authClaims struct {
	UserID   string `json:"uid"`
	Remember bool   `json:"rem,omitempty"`
	jwt.RegisteredClaims
}

func (claims *authClaims) userID() (uuid.UUID, error) {
	return uuid.Parse(claims.UserID)
}

type issuedToken struct {
	Value     string
	ExpiresAt time.Time
}

func (handler *Handler) buildToken(user *models.User, rememberMe bool) (issuedToken, error) {
	ttl := defaultAuthTokenTTL
	if rememberMe {
		ttl = rememberAuthTokenTTL
	}

	now := handler.now()
	expiresAt := now.Add(ttl)
	claims := authClaims{
		UserID:   user.ID.String(),
		Remember: rememberMe,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(handler.secretKey)
	if err != nil {
		return issuedToken{}, err
	}
	return issuedToken{Value: signed, ExpiresAt: expiresAt}, nil
}

func (handler *Handler) parseToken(tokenValue string) (*authClaims, error) {
	claims := &authClaims{}
	token, err := jwt.ParseWithClaims(tokenValue, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return handler.secretKey, nil
	}, jwt.WithExpirationRequired(), jwt.WithTimeFunc(handler.now))
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.ID == "" {
		return nil, errors.New("token has no id")
	}
	return claims, nil
}

func (handler *Handler) setAuthCookie(c *fiber.Ctx, token issuedToken, rememberMe bool) {
	cookie := &fiber.Cookie{
		Name:     authCookieName,
		Value:    token.Value,
		Path:     "/",
		HTTPOnly: true,
		Secure:   handler.cookieSecure,
		SameSite: "Lax",
	}
	if rememberMe {
		cookie.Expires = token.ExpiresAt
	}
	c.Cookie(cookie)
}

func (handler *Handler) clearAuthCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     authCookieName,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		Secure:   handler.cookieSecure,
		SameSite: "Lax",
		Expires:  time.Now().Add(-1 * time.Hour),
	})
}
