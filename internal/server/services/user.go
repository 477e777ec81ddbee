// Package services contains server-side business logic. This file implements
// UserService, which handles registration, password authentication, and the
// credential-store operations behind the profile surface.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/users"
)

// UpdateParams describes a partial profile update. A nil field is left
// untouched. Password, when present, is the new plaintext; it is hashed
// here before it reaches storage.
type UpdateParams struct {
	Name     *string
	Email    *string
	Password *string
}

// UserService provides registration and password authentication over the
// credential store.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      auth.PasswordHasher
}

// NewUserService constructs a UserService using repositories and the
// configured password hasher.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, hasher auth.PasswordHasher) *UserService {
	return &UserService{db: db, repomanager: m, hasher: hasher}
}

// Register creates a new user with the default role. The email lookup here
// is best-effort; the unique index on users.email is the actual race guard,
// and a constraint violation surfaces as the same ErrDuplicateEmail.
func (s *UserService) Register(ctx context.Context, email string, name string, password string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	existing, err := repo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("error checking email: %w", err)
	}
	if existing != nil {
		return nil, common.ErrDuplicateEmail
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         models.DefaultRole,
	}

	user, err = repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrDuplicateEmail) {
			return nil, common.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

// Authenticate verifies an email/password pair. An unknown email and a
// wrong password both return ErrAuthFailed; the two outcomes must stay
// indistinguishable to the caller so accounts cannot be enumerated.
func (s *UserService) Authenticate(ctx context.Context, email string, password string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrAuthFailed
		}
		return nil, common.ErrInternal
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, common.ErrAuthFailed
	}

	return user, nil
}

// GetByID returns a user by id, or common.ErrNotFound.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, id)
}

// GetByEmail returns a user by email, or common.ErrNotFound.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByEmail(ctx, email)
}

// List returns all users.
func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	return s.repomanager.Users(s.db).List(ctx)
}

// Update applies a partial profile update, re-hashing the password when one
// is supplied.
func (s *UserService) Update(ctx context.Context, id string, params UpdateParams) (*models.User, error) {
	patch := users.Patch{Name: params.Name, Email: params.Email}

	if params.Password != nil {
		hash, err := s.hasher.Hash(*params.Password)
		if err != nil {
			return nil, fmt.Errorf("error hashing password: %w", err)
		}
		patch.PasswordHash = &hash
	}

	return s.repomanager.Users(s.db).Update(ctx, id, patch)
}

// Delete removes a user. Refresh tokens go with it via the FK cascade.
// It reports true iff a row existed.
func (s *UserService) Delete(ctx context.Context, id string) (bool, error) {
	return s.repomanager.Users(s.db).Delete(ctx, id)
}
