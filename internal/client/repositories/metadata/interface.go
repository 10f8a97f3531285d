// Package metadata is the CLI's local key-value store. It keeps the
// persisted login and the legacy per-user profile values that seed a
// profile the backend does not have yet.
package metadata

import (
	"context"
)

// Repository stores string values by key. Get reports ok=false for a
// missing key.
type Repository interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}
