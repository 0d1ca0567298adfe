package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pageza/kaintayo/backend/internal/types"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrMissingUser  = errors.New("token has no user id")
)

const tokenTTL = 24 * time.Hour

// AuthService validates session tokens issued by the sign-in provider.
// Sign-up and sign-in themselves happen at the provider.
type AuthService struct {
	jwtSecret string
}

func NewAuthService(jwtSecret string) *AuthService {
	return &AuthService{
		jwtSecret: jwtSecret,
	}
}

// GenerateToken signs claims with the shared secret. It backs local
// development and tests; production tokens come from the provider.
func (s *AuthService) GenerateToken(claims *types.TokenClaims) (string, error) {
	if claims.UserID == "" {
		return "", ErrMissingUser
	}
	if claims.ExpiresAt == nil {
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(tokenTTL))
	}
	if claims.IssuedAt == nil {
		claims.IssuedAt = jwt.NewNumericDate(time.Now())
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *AuthService) ValidateToken(tokenString string) (*types.TokenClaims, error) {
	claims := &types.TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	// Provider tokens carry the user in "sub"
	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	if claims.UserID == "" {
		return nil, ErrMissingUser
	}

	return claims, nil
}
