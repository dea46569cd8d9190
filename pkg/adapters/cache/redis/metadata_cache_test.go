package redis

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wadjakorntonsri/rendium/pkg/core/domain"
	"github.com/wadjakorntonsri/rendium/pkg/logger"
)

type fakeFetcher struct {
	calls atomic.Int32
	err   error
}

func (f *fakeFetcher) Fetch(_ context.Context, rawURL string) (domain.Metadata, error) {
	f.calls.Add(1)
	if f.err != nil {
		return domain.Metadata{}, f.err
	}
	return domain.Metadata{Title: "fresh " + rawURL}, nil
}

// unreachableClient points at a port nothing listens on
func unreachableClient(t *testing.T) *redis.Client {
	t.Helper()
	c := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestMetadataKey(t *testing.T) {
	k := MetadataKey("https://example.com")
	assert.True(t, strings.HasPrefix(k, KeyPrefixMetadata))
	assert.Len(t, k, len(KeyPrefixMetadata)+64)
	assert.Equal(t, k, MetadataKey("https://example.com"))
	assert.NotEqual(t, k, MetadataKey("https://example.org"))
}

func TestMetadataCacheFallsThroughWhenRedisDown(t *testing.T) {
	next := &fakeFetcher{}
	c := NewMetadataCache(unreachableClient(t), next, time.Minute, logger.NewNop())

	m, err := c.Fetch(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, "fresh https://example.com", m.Title)
	assert.Equal(t, int32(1), next.calls.Load())
}

func TestMetadataCachePropagatesFetchErrors(t *testing.T) {
	boom := errors.New("boom")
	c := NewMetadataCache(unreachableClient(t), &fakeFetcher{err: boom}, time.Minute, nil)

	_, err := c.Fetch(context.Background(), "https://example.com")
	assert.ErrorIs(t, err, boom)
}

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), Protocol: 2, DisableIdentity: true})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestMetadataCacheServesSecondFetchFromRedis(t *testing.T) {
	mr, client := newMiniredis(t)
	next := &fakeFetcher{}
	c := NewMetadataCache(client, next, time.Hour, logger.NewNop())
	ctx := context.Background()

	first, err := c.Fetch(ctx, "https://example.com")
	require.NoError(t, err)
	second, err := c.Fetch(ctx, "https://example.com")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), next.calls.Load())

	key := MetadataKey("https://example.com")
	require.True(t, mr.Exists(key))
	stored, err := mr.Get(key)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"fresh https://example.com","description":"","preview_image_url":""}`, stored)
}

func TestMetadataCacheSetsTTL(t *testing.T) {
	mr, client := newMiniredis(t)
	c := NewMetadataCache(client, &fakeFetcher{}, 6*time.Hour, nil)

	_, err := c.Fetch(context.Background(), "https://example.com")
	require.NoError(t, err)

	key := MetadataKey("https://example.com")
	assert.Equal(t, 6*time.Hour, mr.TTL(key))

	mr.FastForward(6*time.Hour + time.Second)
	assert.False(t, mr.Exists(key))
}

func TestMetadataCacheCorruptEntryFallsThrough(t *testing.T) {
	mr, client := newMiniredis(t)
	key := MetadataKey("https://example.com")
	require.NoError(t, mr.Set(key, "{not json"))

	next := &fakeFetcher{}
	c := NewMetadataCache(client, next, time.Hour, logger.NewNop())

	m, err := c.Fetch(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, "fresh https://example.com", m.Title)
	assert.Equal(t, int32(1), next.calls.Load())

	// the fresh result replaces the bad entry
	stored, err := mr.Get(key)
	require.NoError(t, err)
	assert.Contains(t, stored, "fresh https://example.com")
}

func TestMetadataCacheDoesNotStoreFailures(t *testing.T) {
	mr, client := newMiniredis(t)
	boom := errors.New("boom")
	next := &fakeFetcher{err: boom}
	c := NewMetadataCache(client, next, time.Hour, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := c.Fetch(ctx, "https://example.com")
		assert.ErrorIs(t, err, boom)
	}
	assert.Equal(t, int32(2), next.calls.Load())
	assert.False(t, mr.Exists(MetadataKey("https://example.com")))
}

func TestConnectGivesUp(t *testing.T) {
	opts := DefaultConnectOptions("127.0.0.1:1", "", 0)
	opts.DialTimeout = 50 * time.Millisecond
	opts.ConnectTimeout = 300 * time.Millisecond
	opts.RetryInterval = 50 * time.Millisecond
	opts.PingTimeout = 100 * time.Millisecond

	start := time.Now()
	_, err := Connect(opts, logger.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis unavailable")
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestConnectValidatesOptions(t *testing.T) {
	_, err := Connect(ConnectOptions{}, logger.NewNop())
	assert.Error(t, err)

	opts := DefaultConnectOptions("localhost:6379", "", 0)
	opts.MaxWait = 0
	_, err = Connect(opts, logger.NewNop())
	assert.Error(t, err)
}
