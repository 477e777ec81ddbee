package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/users"
)

// newTestDB returns an in-memory database used only as a transaction
// source; test state lives in the fake repositories, not in tables.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

type fakeUserRepository struct {
	mu    sync.Mutex
	byID  map[string]*models.User
	errOn string
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{byID: make(map[string]*models.User)}
}

func (r *fakeUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.errOn == "Create" {
		return nil, common.ErrInternal
	}

	for _, u := range r.byID {
		if u.Email == user.Email {
			return nil, common.ErrDuplicateEmail
		}
	}

	saved := *user
	saved.CreatedAt = time.Now()
	saved.UpdatedAt = saved.CreatedAt
	r.byID[saved.ID] = &saved

	copy := saved
	return &copy, nil
}

func (r *fakeUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.errOn == "GetByEmail" {
		return nil, common.ErrInternal
	}

	for _, u := range r.byID {
		if u.Email == email {
			copy := *u
			return &copy, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	copy := *u
	return &copy, nil
}

func (r *fakeUserRepository) List(ctx context.Context) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*models.User
	for _, u := range r.byID {
		copy := *u
		result = append(result, &copy)
	}
	return result, nil
}

func (r *fakeUserRepository) Update(ctx context.Context, id string, patch users.Patch) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.PasswordHash != nil {
		u.PasswordHash = *patch.PasswordHash
	}
	u.UpdatedAt = time.Now()

	copy := *u
	return &copy, nil
}

func (r *fakeUserRepository) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.byID[id]
	delete(r.byID, id)
	return ok, nil
}

type fakeRefreshTokenRepository struct {
	mu      sync.Mutex
	byToken map[string]*models.RefreshToken
}

func newFakeRefreshTokenRepository() *fakeRefreshTokenRepository {
	return &fakeRefreshTokenRepository{byToken: make(map[string]*models.RefreshToken)}
}

func (r *fakeRefreshTokenRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	saved := *token
	saved.CreatedAt = time.Now()
	saved.UpdatedAt = saved.CreatedAt
	r.byToken[saved.Token] = &saved
	return nil
}

func (r *fakeRefreshTokenRepository) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rt, ok := r.byToken[token]
	if !ok {
		return nil, common.ErrNotFound
	}
	copy := *rt
	return &copy, nil
}

// Revoke mirrors the conditional UPDATE of the real repository: the flip
// and the check happen under one lock, so exactly one caller wins.
func (r *fakeRefreshTokenRepository) Revoke(ctx context.Context, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rt, ok := r.byToken[token]
	if !ok || rt.Revoked {
		return false, nil
	}
	rt.Revoked = true
	rt.UpdatedAt = time.Now()
	return true, nil
}

type fakeRepositoryManager struct {
	users         *fakeUserRepository
	refreshTokens *fakeRefreshTokenRepository
}

func newFakeRepositoryManager() *fakeRepositoryManager {
	return &fakeRepositoryManager{
		users:         newFakeUserRepository(),
		refreshTokens: newFakeRefreshTokenRepository(),
	}
}

func (m *fakeRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return nil
}

func (m *fakeRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return m.users
}

func (m *fakeRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return m.refreshTokens
}

// fakePasswordHasher keeps the digest reversible so tests stay fast and
// can assert that plaintext never reaches storage.
type fakePasswordHasher struct{}

func (fakePasswordHasher) Hash(plain string) (string, error) {
	return "hashed:" + plain, nil
}

func (fakePasswordHasher) Verify(plain string, digest string) bool {
	return digest == "hashed:"+plain
}
