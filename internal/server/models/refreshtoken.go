package models

import "time"

// RefreshToken is a stored capability proving a prior successful login.
// Token is an opaque random string, unique across all rows. A token is
// marked revoked exactly once, when it is exchanged for a new pair;
// revoked rows are kept for audit and replay detection.
type RefreshToken struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
