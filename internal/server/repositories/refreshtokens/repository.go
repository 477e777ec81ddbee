// Package refreshtokens declares the server-side repository contract for
// managing refresh tokens in persistent storage.
package refreshtokens

import (
	"context"

	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

// Repository defines operations for issuing, retrieving, and revoking
// refresh tokens. Rows are never deleted by these flows: a revoked token
// stays in storage so a replayed exchange can be recognized.
type Repository interface {
	// Create stores a new refresh token. The token string must be unique;
	// implementations back this with a unique index.
	Create(ctx context.Context, token *models.RefreshToken) error

	// Find looks up a refresh token by its opaque token string.
	// Implementations return common.ErrNotFound when the token is absent.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// Revoke flips revoked from false to true for the given token string
	// and reports whether this call actually changed the row. This is the
	// compare-and-set that makes rotation single-use: under concurrent
	// exchanges of the same token, exactly one caller observes true.
	Revoke(ctx context.Context, token string) (bool, error)
}
