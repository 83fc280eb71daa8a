package adapter

import (
	"context"
	"time"
)

// ContentStore hands out short-lived URLs for lesson media.
type ContentStore interface {
	StreamURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}
