// This file implements TokenService: issuing access/refresh token pairs,
// verifying access tokens, and the single-use refresh-token exchange.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/config"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
)

// refreshTokenBytes is the entropy of an opaque refresh token before hex
// encoding: 32 bytes, 256 bits.
const refreshTokenBytes = 32

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// TokenService mints, verifies, and rotates tokens. Its signing secret,
// algorithm, and lifetimes are fixed at construction; request handling
// never reads them from ambient state.
type TokenService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	users                        *UserService
	secretKey                    []byte
	signingMethod                jwt.SigningMethod
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

// NewTokenService constructs a TokenService from server config. It fails
// when the configured algorithm is not supported.
func NewTokenService(db *sql.DB, m repomanager.RepositoryManager, users *UserService, cfg *config.Config) (*TokenService, error) {
	method, err := auth.SigningMethod(cfg.JWTAlgorithm)
	if err != nil {
		return nil, err
	}

	return &TokenService{
		db:                           db,
		repomanager:                  m,
		users:                        users,
		secretKey:                    []byte(cfg.SecretKey),
		signingMethod:                method,
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}, nil
}

// IssuePair mints an access token for the user and persists a fresh opaque
// refresh token. The access token is not stored anywhere.
func (s *TokenService) IssuePair(ctx context.Context, user *models.User) (*TokenPair, error) {
	return s.issuePair(ctx, s.db, user)
}

func (s *TokenService) issuePair(ctx context.Context, db dbx.DBTX, user *models.User) (*TokenPair, error) {
	accessToken, err := auth.GenerateToken(user.Email, user.Role, s.secretKey, s.signingMethod, s.accessTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("error generating access token: %w", err)
	}

	opaque, err := common.MakeRandHexString(refreshTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("error generating refresh token: %w", err)
	}

	rt := &models.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Token:     opaque,
		ExpiresAt: time.Now().Add(s.refreshTokenValidityDuration),
	}

	if err := s.repomanager.RefreshTokens(db).Create(ctx, rt); err != nil {
		return nil, fmt.Errorf("error storing refresh token: %w", err)
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: opaque}, nil
}

// VerifyAccess checks an access token's signature and expiry and returns
// its claims. No store lookup is involved.
func (s *TokenService) VerifyAccess(tokenString string) (*auth.Claims, error) {
	return auth.ParseToken(tokenString, s.secretKey, s.signingMethod)
}

// Exchange validates a refresh token and rotates it: the presented token is
// revoked and a new pair minted in one transaction. The conditional revoke
// makes the operation single-use; when the same token is replayed
// concurrently, every caller after the first fails with ErrInvalidToken.
//
// An expired token fails with ErrTokenExpired and is left unrevoked.
func (s *TokenService) Exchange(ctx context.Context, refreshToken string) (*TokenPair, error) {
	repo := s.repomanager.RefreshTokens(s.db)

	rt, err := repo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}

	if rt.Revoked {
		return nil, common.ErrInvalidToken
	}

	if rt.ExpiresAt.Before(time.Now()) {
		return nil, common.ErrTokenExpired
	}

	user, err := s.users.GetByID(ctx, rt.UserID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("error resolving token owner: %w", err)
	}

	var pair *TokenPair

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		won, err := s.repomanager.RefreshTokens(tx).Revoke(ctx, refreshToken)
		if err != nil {
			return fmt.Errorf("error revoking refresh token: %w", err)
		}
		if !won {
			// a concurrent exchange already spent this token
			return common.ErrInvalidToken
		}

		pair, err = s.issuePair(ctx, tx, user)
		return err
	})
	if err != nil {
		return nil, err
	}

	return pair, nil
}
