package jwt

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims represents JWT custom claims. The identity is carried in Subject.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Identity returns the party identity the token was issued to
func (c *Claims) Identity() string {
	return c.Subject
}
