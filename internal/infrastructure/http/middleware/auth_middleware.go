package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/doorbell/pkg/jwt"
)

const (
	// IdentityKey is the echo context key holding the caller identity (string)
	IdentityKey = "user_id"
	// ClaimsKey is the echo context key holding *jwt.Claims
	ClaimsKey = "claims"
)

// TokenValidator verifies bearer tokens
type TokenValidator interface {
	ValidateAccessToken(token string) (*jwt.Claims, error)
}

// EchoAuth returns an Echo middleware that requires a valid token and sets
// "user_id" (identity string) and "claims" into Echo context
func EchoAuth(validator TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := ExtractToken(c.Request())
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing authorization token")
			}

			claims, err := validator.ValidateAccessToken(token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
			}

			c.Set(ClaimsKey, claims)
			c.Set(IdentityKey, claims.Identity())
			return next(c)
		}
	}
}

// OptionalAuth validates the token if present but doesn't require it.
// A present but invalid token is still rejected.
func OptionalAuth(validator TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := ExtractToken(c.Request())
			if token == "" {
				return next(c)
			}

			claims, err := validator.ValidateAccessToken(token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
			}

			c.Set(ClaimsKey, claims)
			c.Set(IdentityKey, claims.Identity())
			return next(c)
		}
	}
}

// IdentityFrom returns the authenticated identity, "" for anonymous callers
func IdentityFrom(c echo.Context) string {
	identity, _ := c.Get(IdentityKey).(string)
	return identity
}

// ExtractToken reads the bearer token from the Authorization header, falling
// back to the "token" query parameter browsers use for websocket upgrades
func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return r.URL.Query().Get("token")
}
