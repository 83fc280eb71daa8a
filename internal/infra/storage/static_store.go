package storage

import (
	"context"
	"net/url"
	"strings"
	"time"

	"edu-subscription-platform/internal/domain"
	"edu-subscription-platform/internal/domain/ports/adapter"
)

var _ adapter.ContentStore = (*StaticStore)(nil)

// StaticStore maps storage keys onto a public base URL. It ignores ttl and is
// meant for local runs where media sits behind a plain file server.
type StaticStore struct {
	base string
}

func NewStaticStore(baseURL string) *StaticStore {
	return &StaticStore{base: strings.TrimSuffix(baseURL, "/")}
}

func (s *StaticStore) StreamURL(_ context.Context, key string, _ time.Duration) (string, error) {
	if key == "" {
		return "", domain.ErrInvalidArgument
	}
	parts := strings.Split(strings.TrimPrefix(key, "/"), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return s.base + "/" + strings.Join(parts, "/"), nil
}
