// Package service holds the backend's business rules.
//
//	handler (HTTP) → service (rules) → repository (SQLite)
//	                               ↘ auth (bcrypt, JWT), diagnosis (model)
//
// Services know nothing about HTTP. They return *apperror.AppError values
// and the handler package decides which status code each kind becomes.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/symvora/internal/apperror"
	"github.com/sakif/symvora/internal/auth"
	"github.com/sakif/symvora/internal/model"
	"github.com/sakif/symvora/internal/repository"
	"github.com/sakif/symvora/internal/validation"
)

// invalidCredentials is the one message for both "no such email" and
// "wrong password", so the login form does not reveal which emails exist.
const invalidCredentials = "Invalid email or password"

// AccountService signs users up and in and edits their profile.
type AccountService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAccountService wires an AccountService.
func NewAccountService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AccountService {
	return &AccountService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult is what sign-up and login hand back to the handler: the user
// and a freshly signed access token.
type AuthResult struct {
	User  *model.User
	Token string
}

// SignUp creates an account. The email is stored lower-cased; a second
// account with the same email fails with apperror.ErrConflict.
func (s *AccountService) SignUp(ctx context.Context, name, email, password string) (*AuthResult, error) {
	if err := validation.SignUp(name, email, password, password); err != nil {
		return nil, err
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/account: hashing password: %w", err)
	}

	user := &model.User{
		Email:        validation.NormalizeEmail(email),
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("service/account: creating user: %w", err)
	}

	s.logger.Info("account created", slog.String("userID", user.ID))
	return s.issue(user)
}

// Login checks the credentials and issues a token.
func (s *AccountService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if err := validation.Login(email, password); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, validation.NormalizeEmail(email))
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, apperror.Unauthorized(invalidCredentials)
	}
	if err != nil {
		return nil, fmt.Errorf("service/account: looking up user: %w", err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.Info("login rejected", slog.String("userID", user.ID))
			return nil, apperror.Unauthorized(invalidCredentials)
		}
		return nil, fmt.Errorf("service/account: verifying password: %w", err)
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))
	return s.issue(user)
}

func (s *AccountService) issue(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/account: generating token for %s: %w", user.ID, err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

// GetUserByID returns the user behind a validated token.
func (s *AccountService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, apperror.Unauthorized("Not authenticated")
	}
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/account: fetching user %s: %w", id, err)
	}
	return user, nil
}

// UpdateName changes the display name. The email never changes.
func (s *AccountService) UpdateName(ctx context.Context, id, name string) (*model.User, error) {
	if err := validation.Name(name); err != nil {
		return nil, err
	}
	user, err := s.users.UpdateName(ctx, id, strings.TrimSpace(name))
	if err != nil {
		return nil, fmt.Errorf("service/account: updating name: %w", err)
	}
	return user, nil
}

// UpdatePassword replaces the password after verifying the current one.
// A wrong current password is ErrUnauthorized.
func (s *AccountService) UpdatePassword(ctx context.Context, id, current, next string) error {
	if err := validation.PasswordChange(current, next, next); err != nil {
		return err
	}

	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return fmt.Errorf("service/account: fetching user %s: %w", id, err)
	}
	if err := s.passwords.Verify(user.PasswordHash, current); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return apperror.Unauthorized("Current password is incorrect")
		}
		return fmt.Errorf("service/account: verifying password: %w", err)
	}

	hash, err := s.passwords.Hash(next)
	if err != nil {
		return fmt.Errorf("service/account: hashing password: %w", err)
	}
	if err := s.users.UpdatePasswordHash(ctx, id, hash); err != nil {
		return fmt.Errorf("service/account: storing password: %w", err)
	}

	s.logger.Info("password changed", slog.String("userID", id))
	return nil
}

// ValidateToken returns the user ID encoded in tokenStr.
func (s *AccountService) ValidateToken(tokenStr string) (string, error) {
	userID, err := s.tokens.Validate(tokenStr)
	if err != nil {
		return "", fmt.Errorf("service/account: %w", err)
	}
	return userID, nil
}

// TokenTTL is the lifetime of issued tokens; the handler uses it for the
// cookie's Max-Age.
func (s *AccountService) TokenTTL() int {
	return int(s.tokens.TTL().Seconds())
}
