// Package registry provides storage backends for hand-registered products.
package registry

import (
	"context"
	"fmt"

	"github.com/kepacart/backend/internal/domain"
)

// Backend names accepted by New
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// New builds the registry selected by backend. The returned close func is never nil.
func New(ctx context.Context, backend, redisURL string) (domain.ProductRegistry, func() error, error) {
	switch backend {
	case "", BackendMemory:
		return NewMemoryRegistry(), func() error { return nil }, nil
	case BackendRedis:
		r, err := NewRedisRegistry(ctx, redisURL)
		if err != nil {
			return nil, nil, err
		}
		return r, r.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown registry backend %q", backend)
	}
}
