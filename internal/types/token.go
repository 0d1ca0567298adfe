package types

import (
	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims represents the claims in a session token issued by the
// sign-in provider. UserID is the provider's opaque user identifier.
type TokenClaims struct {
	jwt.RegisteredClaims
	UserID   string `json:"user_id"`
	Username string `json:"username,omitempty"`
}
