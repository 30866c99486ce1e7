package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/terralote/explorer-backend/internal/explorer/domain"
)

const (
	snapshotKeyPrefix  = "explorer:project:" // explorer:project:{slug}
	snapshotIndexKey   = "explorer:projects" // set of cached slugs
	defaultSnapshotTTL = 5 * time.Minute
)

// ErrCacheMiss is returned when no snapshot is cached for a slug.
var ErrCacheMiss = errors.New("snapshot not cached")

// Snapshot is the materialized bundle one explorer request needs: the
// project plus its full layer and media sets. Immutable once fetched.
type Snapshot struct {
	Project *domain.Project `json:"project"`
	Layers  []domain.Layer  `json:"layers"`
	Media   []domain.Media  `json:"media"`
}

// SnapshotCache keeps assembled project snapshots in Redis so repeated
// drill-down requests do not re-query Postgres.
type SnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSnapshotCache creates a cache. A zero ttl uses the default.
func NewSnapshotCache(client *redis.Client, ttl time.Duration) *SnapshotCache {
	if ttl <= 0 {
		ttl = defaultSnapshotTTL
	}
	return &SnapshotCache{client: client, ttl: ttl}
}

// Get returns the cached snapshot for a project slug, or ErrCacheMiss.
func (c *SnapshotCache) Get(ctx context.Context, slug string) (*Snapshot, error) {
	data, err := c.client.Get(ctx, snapshotKeyPrefix+slug).Result()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, fmt.Errorf("cache decode: %w", err)
	}
	return &snap, nil
}

// Put stores a snapshot and indexes its slug, both with the cache TTL.
func (c *SnapshotCache) Put(ctx context.Context, snap *Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}

	slug := snap.Project.Slug
	pipe := c.client.Pipeline()
	pipe.Set(ctx, snapshotKeyPrefix+slug, data, c.ttl)
	pipe.SAdd(ctx, snapshotIndexKey, slug)
	pipe.Expire(ctx, snapshotIndexKey, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache put: %w", err)
	}
	return nil
}

// Invalidate drops the cached snapshot for a slug.
func (c *SnapshotCache) Invalidate(ctx context.Context, slug string) error {
	pipe := c.client.Pipeline()
	pipe.Del(ctx, snapshotKeyPrefix+slug)
	pipe.SRem(ctx, snapshotIndexKey, slug)
	_, err := pipe.Exec(ctx)
	return err
}

// CachedSlugs lists the slugs currently indexed.
func (c *SnapshotCache) CachedSlugs(ctx context.Context) ([]string, error) {
	return c.client.SMembers(ctx, snapshotIndexKey).Result()
}
