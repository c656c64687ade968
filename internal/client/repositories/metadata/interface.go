// Package metadata is the durable key/value store backing the persisted
// session. Well-known keys: "token" and "user" (sealed blobs), "theme" and
// "language" (plain strings).
package metadata

import (
	"context"
)

// Repository is a small key/value contract over the local database.
// Get returns (nil, nil) when the key is absent. SetMany writes all pairs
// in a single transaction: either every key updates or none does.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetMany(ctx context.Context, values map[string][]byte) error
	Delete(ctx context.Context, key string) error
}

// Well-known keys.
const (
	KeyToken    = "token"
	KeyUser     = "user"
	KeyTheme    = "theme"
	KeyLanguage = "language"
)
