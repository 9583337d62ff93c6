// Package services contains server-side business logic for the marketplace:
// account registration and login, catalog management, order placement with
// commission math, and product reviews.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mkravec/rastlinka/internal/common"
	"github.com/mkravec/rastlinka/internal/server/auth"
	"github.com/mkravec/rastlinka/internal/server/models"
	"github.com/mkravec/rastlinka/internal/server/repositories/repomanager"
)

// UserService handles registration, login, and profile reads/updates.
// Login failures never reveal whether the email exists.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tokens      *auth.TokenManager
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, tokens *auth.TokenManager) *UserService {
	return &UserService{db: db, repomanager: m, tokens: tokens}
}

// Register creates an account and returns it with a fresh session token.
// A duplicate email yields common.ErrConflict.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*models.User, string, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))

	if name == "" {
		return nil, "", fmt.Errorf("%w: name is required", common.ErrValidation)
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, "", fmt.Errorf("%w: email is required", common.ErrValidation)
	}
	if len(password) < 8 {
		return nil, "", fmt.Errorf("%w: password must be at least 8 characters", common.ErrValidation)
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.Create(ctx, &models.User{
		Email:        email,
		Name:         name,
		PasswordHash: hashed.Hash,
		PasswordSalt: hashed.Salt,
	})
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, "", common.ErrConflict
		}
		return nil, "", common.ErrorInternal
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", common.ErrorInternal
	}

	return user, token, nil
}

// Login verifies the credentials and returns the user with a new session
// token. An unknown email and a wrong password both yield
// ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, "", common.ErrInvalidCredentials
		}
		return nil, "", common.ErrorInternal
	}

	ok, err := auth.VerifyPassword(password, user.PasswordSalt, user.PasswordHash)
	if err != nil {
		return nil, "", common.ErrorInternal
	}
	if !ok {
		return nil, "", common.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", common.ErrorInternal
	}

	return user, token, nil
}

// GetProfile returns the account for userID.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, userID)
}

// UpdateProfile changes the display name of the account.
func (s *UserService) UpdateProfile(ctx context.Context, userID, name string) (*models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", common.ErrValidation)
	}
	return s.repomanager.Users(s.db).UpdateName(ctx, userID, name)
}
