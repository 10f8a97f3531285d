// Package revocation remembers signed-out access tokens until they expire.
package revocation

import (
	"context"
	"time"
)

// Store records revoked token ids.
type Store interface {
	// Revoke marks tokenID revoked until the given time.
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
