package httpapi

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/config"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/users"
	"github.com/dmitrijs2005/authkeeper/internal/server/services"
)

type memUserRepository struct {
	mu   sync.Mutex
	byID map[string]*models.User
}

func (r *memUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.byID {
		if u.Email == user.Email {
			return nil, common.ErrDuplicateEmail
		}
	}

	saved := *user
	saved.CreatedAt = time.Now()
	saved.UpdatedAt = saved.CreatedAt
	r.byID[saved.ID] = &saved

	out := saved
	return &out, nil
}

func (r *memUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.byID {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *memUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (r *memUserRepository) List(ctx context.Context) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*models.User
	for _, u := range r.byID {
		out := *u
		result = append(result, &out)
	}
	return result, nil
}

func (r *memUserRepository) Update(ctx context.Context, id string, patch users.Patch) (*models.User, error) {
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

	out := *u
	return &out, nil
}

func (r *memUserRepository) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.byID[id]
	delete(r.byID, id)
	return ok, nil
}

type memRefreshTokenRepository struct {
	mu      sync.Mutex
	byToken map[string]*models.RefreshToken
}

func (r *memRefreshTokenRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	saved := *token
	r.byToken[saved.Token] = &saved
	return nil
}

func (r *memRefreshTokenRepository) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rt, ok := r.byToken[token]
	if !ok {
		return nil, common.ErrNotFound
	}
	out := *rt
	return &out, nil
}

func (r *memRefreshTokenRepository) Revoke(ctx context.Context, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rt, ok := r.byToken[token]
	if !ok || rt.Revoked {
		return false, nil
	}
	rt.Revoked = true
	return true, nil
}

type memRepositoryManager struct {
	users         *memUserRepository
	refreshTokens *memRefreshTokenRepository
}

func newMemRepositoryManager() *memRepositoryManager {
	return &memRepositoryManager{
		users:         &memUserRepository{byID: make(map[string]*models.User)},
		refreshTokens: &memRefreshTokenRepository{byToken: make(map[string]*models.RefreshToken)},
	}
}

func (m *memRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }

func (m *memRepositoryManager) Users(db dbx.DBTX) users.Repository { return m.users }

func (m *memRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return m.refreshTokens
}

type plainHasher struct{}

func (plainHasher) Hash(plain string) (string, error) { return "hashed:" + plain, nil }

func (plainHasher) Verify(plain string, digest string) bool { return digest == "hashed:"+plain }

type testServer struct {
	server *Server
	echo   *echo.Echo
	m      *memRepositoryManager
	users  *services.UserService
	tokens *services.TokenService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	m := newMemRepositoryManager()
	userService := services.NewUserService(db, m, plainHasher{})

	cfg := &config.Config{
		SecretKey:                    "test-secret",
		JWTAlgorithm:                 "HS256",
		AccessTokenValidityDuration:  time.Minute,
		RefreshTokenValidityDuration: time.Hour,
	}
	tokenService, err := services.NewTokenService(db, m, userService, cfg)
	require.NoError(t, err)

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(io.Discard, nil)))
	srv := NewServer(":0", logger, userService, tokenService, db)

	return &testServer{
		server: srv,
		echo:   srv.newEcho(),
		m:      m,
		users:  userService,
		tokens: tokenService,
	}
}
