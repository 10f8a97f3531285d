// Package models defines the server-side records persisted in PostgreSQL.
package models

import "time"

// Account is an identity provider credential.
type Account struct {
	ID           string
	Email        string
	PasswordHash []byte
	Disabled     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Caller is the authenticated principal of a request, taken from its
// access token claims.
type Caller struct {
	UserID   string
	Email    string
	AuthTime time.Time
	TokenID  string
	Expires  time.Time
}
