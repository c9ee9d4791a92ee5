// Package account declares the account collaborator used by the client.
//
// The client never decides on its own whether credentials are good; it asks
// a Service and applies the answer to its session. Failures come back as
// *apperror.AppError values (ErrUnauthorized for rejected credentials,
// ErrConflict for a taken email, ErrUpstream for transport problems).
package account

import (
	"context"

	"github.com/sakif/symvora/internal/model"
)

// Service creates, authenticates and updates user accounts.
type Service interface {
	SignUp(ctx context.Context, name, email, password string) (*model.User, error)
	Login(ctx context.Context, email, password string) (*model.User, error)

	// LoadCurrentUser restores a previous session. It returns (nil, nil)
	// when there is nothing to restore.
	LoadCurrentUser(ctx context.Context) (*model.User, error)

	UpdateProfileName(ctx context.Context, name string) error
	UpdatePassword(ctx context.Context, current, next string) error
	Logout(ctx context.Context) error
}
