// Package auth implements the authentication/authorization core of the
// marketplace: password hashing, session token issuance/verification, and
// the per-request authorizer used by the HTTP handlers.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mkravec/rastlinka/internal/common"
	"github.com/mkravec/rastlinka/internal/server/models"
)

// Claims is the decoded payload of a session token: registered claims
// (sub = user ID, iat, exp) plus the user's email and display name.
//
// There are deliberately no password fields here. The claims type is the
// only thing ever serialized into a token, so credential material cannot
// leak into one.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// TokenManager issues and verifies HS256-signed session tokens.
type TokenManager struct {
	secret   []byte
	validity time.Duration
	now      func() time.Time
}

func NewTokenManager(secret []byte, validity time.Duration) *TokenManager {
	return &TokenManager{secret: secret, validity: validity, now: time.Now}
}

// WithClock replaces the manager's time source. Used by tests to simulate
// token expiry.
func (m *TokenManager) WithClock(now func() time.Time) *TokenManager {
	m.now = now
	return m
}

// Issue builds a signed token for the user with expiry = now + validity.
func (m *TokenManager) Issue(user *models.User) (string, error) {
	issuedAt := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(m.validity)),
		},
		Email: user.Email,
		Name:  user.Name,
	})

	return token.SignedString(m.secret)
}

// Verify checks the signature and expiry of tokenString and returns its
// claims. It fails closed: malformed input, a tampered payload, a wrong
// signing method, and an expired timestamp all collapse into
// common.ErrInvalidToken so callers cannot branch on why verification
// failed.
func (m *TokenManager) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid || claims.Subject == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
