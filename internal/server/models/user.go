// Package models holds the persistent entities of the server.
package models

import "time"

// DefaultRole is assigned to users created through registration.
const DefaultRole = "user"

// User is an identity record. PasswordHash is a bcrypt digest; the
// plaintext password is never stored. Email is unique (case-sensitive
// as stored) and enforced by a unique index.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
