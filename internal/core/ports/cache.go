package ports

import (
	"context"
	"time"
)

// DescriptorCache is a shared key-value store with per-entry TTL, used for
// bank descriptors. Entries are pure functions of on-chain state, so
// concurrent populate races are harmless and the interface carries no
// errors: a miss or a failed backend just means re-deriving from chain.
type DescriptorCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}
