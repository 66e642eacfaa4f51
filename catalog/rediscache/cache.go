// Package rediscache is a read-through Redis cache in front of a catalog.Repo.
//
// Only the navigation tree (AuthorizedMenus) is cached. FindMenu and
// CurrentGrant decide access, so they always reach the underlying repo and a
// revoked grant or a newly checked program takes effect on the next request.
// A cached tree can lag a catalog change by up to the TTL unless the change is
// written through Writer. Redis failures degrade to the underlying repo.
package rediscache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jrsteele09/go-admin-console/catalog"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	defaultPrefix = "admin:catalog"
	defaultTTL    = 5 * time.Minute
)

type Cache struct {
	next   catalog.Repo
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

var _ catalog.Repo = (*Cache)(nil)

type Option func(*Cache)

func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

func WithPrefix(prefix string) Option {
	return func(c *Cache) {
		c.prefix = strings.TrimSuffix(prefix, ":")
	}
}

func New(next catalog.Repo, client redis.UniversalClient, options ...Option) (*Cache, error) {
	if next == nil {
		return nil, errors.New("[rediscache New] catalog repo is required")
	}
	if client == nil {
		return nil, errors.New("[rediscache New] redis client is required")
	}
	c := &Cache{
		next:   next,
		client: client,
		prefix: defaultPrefix,
		ttl:    defaultTTL,
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

func (c *Cache) FindMenu(ctx context.Context, menuID int64) (*catalog.Menu, error) {
	return c.next.FindMenu(ctx, menuID)
}

func (c *Cache) CurrentGrant(ctx context.Context, menuID int64, authGroups []string) (*catalog.AuthGroupMenu, error) {
	return c.next.CurrentGrant(ctx, menuID, authGroups)
}

func (c *Cache) AuthorizedMenus(ctx context.Context, menuGrpCd string, authGroups []string) ([]*catalog.Menu, error) {
	key := c.key("menus", digest(append([]string{menuGrpCd}, authGroups...)))
	var menus []*catalog.Menu
	if c.load(ctx, key, &menus) {
		return menus, nil
	}

	found, err := c.next.AuthorizedMenus(ctx, menuGrpCd, authGroups)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, found)
	return found, nil
}

// Writer wraps w so that every successful write drops the cached entries.
func (c *Cache) Writer(w catalog.Writer) catalog.Writer {
	return &invalidatingWriter{next: w, cache: c}
}

type invalidatingWriter struct {
	next  catalog.Writer
	cache *Cache
}

var _ catalog.Writer = (*invalidatingWriter)(nil)

func (w *invalidatingWriter) UpsertProgram(ctx context.Context, p *catalog.Program) error {
	return w.invalidate(ctx, w.next.UpsertProgram(ctx, p))
}

func (w *invalidatingWriter) UpsertMenu(ctx context.Context, m *catalog.Menu) error {
	return w.invalidate(ctx, w.next.UpsertMenu(ctx, m))
}

func (w *invalidatingWriter) UpsertGrant(ctx context.Context, g *catalog.AuthGroupMenu) error {
	return w.invalidate(ctx, w.next.UpsertGrant(ctx, g))
}

func (w *invalidatingWriter) DeleteGrant(ctx context.Context, grpAuthCd string, menuID int64) error {
	return w.invalidate(ctx, w.next.DeleteGrant(ctx, grpAuthCd, menuID))
}

func (w *invalidatingWriter) invalidate(ctx context.Context, writeErr error) error {
	if writeErr != nil {
		return writeErr
	}
	return w.cache.Invalidate(ctx)
}

// Invalidate drops every cached catalog entry.
func (c *Cache) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.prefix+":*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return errors.Wrap(err, "[Cache Invalidate] scan")
	}
	if len(keys) == 0 {
		return nil
	}
	return errors.Wrap(c.client.Del(ctx, keys...).Err(), "[Cache Invalidate] del")
}

func (c *Cache) key(parts ...string) string {
	return c.prefix + ":" + strings.Join(parts, ":")
}

// digest hashes length-prefixed parts, so codes containing separators cannot
// collide.
func digest(parts []string) string {
	h := sha256.New()
	for _, p := range parts {
		fmt.Fprintf(h, "%d:%s;", len(p), p)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (c *Cache) load(ctx context.Context, key string, dest any) bool {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false
	}
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("catalog cache read failed")
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("discarding corrupt catalog cache entry")
		return false
	}
	return true
}

func (c *Cache) store(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("catalog cache encode failed")
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("catalog cache write failed")
	}
}
