// Package auth implements the Google OAuth exchange and the application's
// signed bearer tokens.
package auth

import (
	"errors"
	"fmt"
	"time"

	"skatespot/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenTTL bounds a token's lifetime. Tokens are stateless and cannot be
// revoked early; expiry is the only bound.
const TokenTTL = 12 * time.Hour

// ErrInvalidToken is returned for every verification failure. Callers must
// not surface the underlying cause.
var ErrInvalidToken = errors.New("auth: invalid token")

// Claims is the token payload: subject carries the user's internal ID, name
// and email are cached for the frontend.
type Claims struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies bearer tokens with a symmetric secret.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given signing secret.
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// Issue signs a token for the given user, valid for TokenTTL.
func (s *TokenService) Issue(user *models.User) (string, error) {
	return s.IssueWithDuration(user, TokenTTL)
}

// IssueWithDuration signs a token with a custom lifetime. Used by tests.
func (s *TokenService) IssueWithDuration(user *models.User, d time.Duration) (string, error) {
	now := time.Now()

	c := Claims{
		Name:  user.Name,
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    "skatespot-api",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the subject user ID.
// Signature mismatch, expiry, a malformed subject and every other failure
// all collapse to ErrInvalidToken.
func (s *TokenService) Verify(tokenStr string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&Claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}

	c, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}

	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return id, nil
}
