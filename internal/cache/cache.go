// Package cache holds the per-stage result caches the pipeline can be
// configured with. Values are opaque bytes; callers own the encoding.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache stores stage results by key. A ttl of zero uses the backend default.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Key namespaces a stage input. Inputs are hashed so free-text addresses are
// safe to use as Redis keys.
func Key(stage, input string) string {
	hash := sha256.Sum256([]byte(input))
	return "watersafe:v1:" + stage + ":" + hex.EncodeToString(hash[:])
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (Nop) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (Nop) Delete(context.Context, string) error { return nil }
