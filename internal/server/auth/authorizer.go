package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/mkravec/rastlinka/internal/common"
	"github.com/mkravec/rastlinka/internal/server/models"
)

// UserSource looks up an account by ID. Satisfied by the users repository.
type UserSource interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// Authorizer resolves a request's Authorization header to a user identity.
// It is stateless; every call verifies the token and re-reads the user row,
// so a deleted account stops authenticating immediately.
type Authorizer struct {
	tokens *TokenManager
	users  UserSource
}

func NewAuthorizer(tokens *TokenManager, users UserSource) *Authorizer {
	return &Authorizer{tokens: tokens, users: users}
}

// Authenticate extracts the bearer token from the Authorization header and
// resolves it to a user.
//
// Failures map to the 401 taxonomy: a missing header yields ErrNoToken, and
// everything else (bad signature, expiry, unknown subject) collapses into
// ErrInvalidToken so the response body stays generic.
func (a *Authorizer) Authenticate(ctx context.Context, authorizationHeader string) (*models.User, error) {
	token := BearerToken(authorizationHeader)
	if token == "" {
		return nil, common.ErrNoToken
	}

	claims, err := a.tokens.Verify(token)
	if err != nil {
		return nil, common.ErrInvalidToken
	}

	user, err := a.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, common.ErrorInternal
	}

	return user, nil
}

// IsOwner reports whether the authenticated user owns the resource. Every
// mutating or privacy-sensitive read on an order, product, or review must
// call this after the existence check and fail with ErrForbidden on a
// mismatch.
func IsOwner(resourceOwnerID, userID string) bool {
	return resourceOwnerID != "" && resourceOwnerID == userID
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header value. Returns "" for anything else.
func BearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.Fields(header)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
