// Package redis keeps recently extracted page metadata in Redis so that
// saving the same URL twice does not fetch it twice.
package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wadjakorntonsri/rendium/pkg/core/domain"
	"github.com/wadjakorntonsri/rendium/pkg/logger"
	"github.com/wadjakorntonsri/rendium/pkg/ports"
)

// KeyPrefixMetadata is the prefix for cached extraction results
const KeyPrefixMetadata = "rendium:metadata:"

// MetadataKey returns the Redis key for a page URL
func MetadataKey(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return KeyPrefixMetadata + hex.EncodeToString(sum[:])
}

// MetadataCache is a read-through cache in front of a fetcher. Only
// successful fetches are stored. Any Redis failure falls through to the
// wrapped fetcher.
type MetadataCache struct {
	client redis.UniversalClient
	next   ports.MetadataFetcher
	ttl    time.Duration
	log    logger.Logger
}

func NewMetadataCache(client redis.UniversalClient, next ports.MetadataFetcher, ttl time.Duration, log logger.Logger) *MetadataCache {
	if log == nil {
		log = logger.NewNop()
	}
	return &MetadataCache{client: client, next: next, ttl: ttl, log: log}
}

func (c *MetadataCache) Fetch(ctx context.Context, rawURL string) (domain.Metadata, error) {
	key := MetadataKey(rawURL)

	if m, ok := c.lookup(ctx, key, rawURL); ok {
		return m, nil
	}

	m, err := c.next.Fetch(ctx, rawURL)
	if err != nil {
		return m, err
	}

	c.store(ctx, key, rawURL, m)
	return m, nil
}

func (c *MetadataCache) lookup(ctx context.Context, key, rawURL string) (domain.Metadata, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("metadata cache read failed", logger.String("url", rawURL), logger.Error(err))
		}
		return domain.Metadata{}, false
	}

	var m domain.Metadata
	if err := json.Unmarshal(raw, &m); err != nil {
		c.log.Warn("metadata cache entry corrupt", logger.String("url", rawURL), logger.Error(err))
		return domain.Metadata{}, false
	}
	c.log.Debug("metadata cache hit", logger.String("url", rawURL))
	return m, true
}

func (c *MetadataCache) store(ctx context.Context, key, rawURL string, m domain.Metadata) {
	raw, err := json.Marshal(m)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.Warn("metadata cache write failed", logger.String("url", rawURL), logger.Error(err))
	}
}

var _ ports.MetadataFetcher = (*MetadataCache)(nil)
