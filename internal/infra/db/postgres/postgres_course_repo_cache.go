package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"edu-subscription-platform/internal/domain/model"
	"edu-subscription-platform/internal/domain/ports/repository"
	"edu-subscription-platform/internal/infra/metrics"
	red "edu-subscription-platform/internal/infra/redis"
)

var _ repository.CourseRepository = (*courseRepoCacheDecorator)(nil)

// courseRepoCacheDecorator caches single-course reads. Only catalog data goes
// through here; users and entitlements are always read from Postgres.
type courseRepoCacheDecorator struct {
	inner repository.CourseRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewCourseRepoCacheDecorator(inner repository.CourseRepository, cache red.RedisClient, ttl time.Duration) repository.CourseRepository {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &courseRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl}
}

func courseKey(id string) string { return fmt.Sprintf("course:%s", id) }

func (d *courseRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Course, error) {
	// Reads inside a transaction must see the transaction's view.
	if tx != nil {
		return d.inner.FindByID(ctx, tx, id)
	}
	key := courseKey(id)
	if val, err := d.cache.Get(ctx, key); err == nil {
		var c courseCacheEntry
		if json.Unmarshal([]byte(val), &c) == nil && c.Course != nil {
			metrics.IncCacheRequest("course", "hit")
			return c.toModel(), nil
		}
	}

	metrics.IncCacheRequest("course", "miss")
	c, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(newCourseCacheEntry(c)); err == nil {
		_ = d.cache.Set(ctx, key, b, d.ttl)
	}
	return c, nil
}

func (d *courseRepoCacheDecorator) List(ctx context.Context, tx repository.Tx, f model.CourseFilter) ([]*model.Course, error) {
	return d.inner.List(ctx, tx, f)
}

// CountVideos bypasses the cache so progress always uses the live count.
func (d *courseRepoCacheDecorator) CountVideos(ctx context.Context, tx repository.Tx, courseID string) (int, error) {
	return d.inner.CountVideos(ctx, tx, courseID)
}

// Save drops the cached entry only after the write succeeds, so a read that
// lands between the two cannot leave the old row cached.
func (d *courseRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, c *model.Course) error {
	if err := d.inner.Save(ctx, tx, c); err != nil {
		return err
	}
	_ = d.cache.Del(ctx, courseKey(c.ID))
	return nil
}

// courseCacheEntry keeps the storage keys that the public JSON form hides.
type courseCacheEntry struct {
	Course *model.Course `json:"course"`
	Keys   []string      `json:"keys"`
}

func newCourseCacheEntry(c *model.Course) courseCacheEntry {
	keys := make([]string, len(c.Videos))
	for i, v := range c.Videos {
		keys[i] = v.StorageKey
	}
	return courseCacheEntry{Course: c, Keys: keys}
}

func (e courseCacheEntry) toModel() *model.Course {
	c := e.Course
	if c == nil {
		return nil
	}
	for i := range c.Videos {
		if i < len(e.Keys) {
			c.Videos[i].StorageKey = e.Keys[i]
		}
	}
	return c
}
