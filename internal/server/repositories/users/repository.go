// Package users declares the repository contract for the credential store
// backing registration and password authentication.
package users

import (
	"context"

	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

// Patch describes a partial update of a user record. A nil field is left
// untouched. PasswordHash must already be hashed by the caller; the
// repository never sees plaintext passwords.
type Patch struct {
	Name         *string
	Email        *string
	PasswordHash *string
}

// Repository defines persistence operations for user records.
//
// Implementations must enforce email uniqueness at the storage layer
// (unique index) and report a violation as common.ErrDuplicateEmail, so
// that two concurrent registrations with the same email cannot both
// succeed regardless of what the service layer checked beforehand.
type Repository interface {
	// Create inserts a new user and returns it with timestamps populated.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByEmail returns the user with the given email, or common.ErrNotFound.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByID returns the user with the given id, or common.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.User, error)

	// List returns all users ordered by creation time.
	List(ctx context.Context) ([]*models.User, error)

	// Update applies the non-nil fields of patch and returns the updated
	// row, or common.ErrNotFound when no such user exists.
	Update(ctx context.Context, id string, patch Patch) (*models.User, error)

	// Delete removes a user. It reports true iff a row existed and was removed.
	Delete(ctx context.Context, id string) (bool, error)
}
