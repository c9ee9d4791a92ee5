// Package repository declares the storage contracts of the backend.
// Services depend on these interfaces; internal/repository/sqlite
// implements them.
package repository

import (
	"context"

	"github.com/sakif/symvora/internal/model"
)

// UserRepository stores accounts. Emails are stored normalized (lower case)
// and are unique.
type UserRepository interface {
	// Create assigns ID and timestamps to user and inserts it. A taken email
	// returns an apperror.ErrConflict error.
	Create(ctx context.Context, user *model.User) error

	// GetUserByID and GetUserByEmail return apperror.ErrNotFound when there
	// is no such user.
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)

	// UpdateName changes the display name and returns the updated user.
	UpdateName(ctx context.Context, id, name string) (*model.User, error)

	// UpdatePasswordHash replaces the stored bcrypt hash.
	UpdatePasswordHash(ctx context.Context, id, hash string) error
}
