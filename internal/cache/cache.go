// Package cache defines the read-path cache used to shield the RPC
// endpoint from repeated account scans. Values are opaque byte slices;
// callers own serialization.
package cache

import (
	"context"
	"errors"
	"time"
)

// Cache errors.
var (
	// ErrMiss is returned when a key is absent or expired.
	ErrMiss = errors.New("cache miss")

	// ErrUnavailable is returned when the cache backend cannot be
	// reached. Callers treat this as a miss and serve live data.
	ErrUnavailable = errors.New("cache unavailable")
)

// Cache stores serialized read-model snapshots with a TTL.
type Cache interface {
	// Get retrieves the value at key. Returns ErrMiss if the key is
	// absent or its TTL has lapsed.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value at key with the given TTL. A ttl of zero
	// stores without expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error
}
