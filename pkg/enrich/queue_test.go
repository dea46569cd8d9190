package enrich

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wadjakorntonsri/rendium/pkg/core/domain"
)

type stubFetcher struct {
	block chan struct{}
	fail  map[string]bool
}

func (f *stubFetcher) Fetch(ctx context.Context, rawURL string) (domain.Metadata, error) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return domain.Metadata{}, ctx.Err()
		}
	}
	if f.fail[rawURL] {
		return domain.Metadata{}, errors.New("unreachable")
	}
	return domain.Metadata{Title: "title of " + rawURL}, nil
}

type memorySink struct {
	mu      sync.Mutex
	applied map[int64]domain.Metadata
}

func newMemorySink() *memorySink {
	return &memorySink{applied: map[int64]domain.Metadata{}}
}

func (s *memorySink) ApplyMetadata(_ context.Context, id int64, m domain.Metadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applied[id] = m
	return nil
}

func (s *memorySink) get(id int64) (domain.Metadata, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.applied[id]
	return m, ok
}

func TestQueueProcessesAndDrainsOnClose(t *testing.T) {
	sink := newMemorySink()
	q := NewQueue(&stubFetcher{}, sink, nil, WithWorkers(2), WithQueueSize(10))
	q.Start(context.Background())

	for i := int64(1); i <= 5; i++ {
		assert.True(t, q.Submit(i, "https://example.com"))
	}
	require.NoError(t, q.Close())

	for i := int64(1); i <= 5; i++ {
		m, ok := sink.get(i)
		assert.True(t, ok, "bookmark %d not enriched", i)
		assert.Equal(t, "title of https://example.com", m.Title)
	}
	assert.Equal(t, int64(5), q.Stats().Processed)
}

func TestQueueFailureLeavesBookmarkUntouched(t *testing.T) {
	sink := newMemorySink()
	f := &stubFetcher{fail: map[string]bool{"https://down.example.com": true}}
	q := NewQueue(f, sink, nil, WithWorkers(1))
	q.Start(context.Background())

	q.Submit(1, "https://down.example.com")
	q.Submit(2, "https://up.example.com")
	require.NoError(t, q.Close())

	_, ok := sink.get(1)
	assert.False(t, ok)
	_, ok = sink.get(2)
	assert.True(t, ok)

	stats := q.Stats()
	assert.Equal(t, int64(1), stats.Failed)
	assert.Equal(t, int64(1), stats.Processed)
}

func TestQueueSubmitNeverBlocks(t *testing.T) {
	f := &stubFetcher{block: make(chan struct{})}
	q := NewQueue(f, newMemorySink(), nil, WithWorkers(1), WithQueueSize(1))
	// no workers yet, so the buffer fills up
	assert.True(t, q.Submit(1, "https://a.example.com"))

	done := make(chan bool)
	go func() { done <- q.Submit(2, "https://b.example.com") }()

	select {
	case accepted := <-done:
		assert.False(t, accepted)
	case <-time.After(time.Second):
		t.Fatal("Submit blocked on a full queue")
	}
	assert.Equal(t, int64(1), q.Stats().Dropped)

	close(f.block)
	q.Start(context.Background())
	require.NoError(t, q.Close())
}

func TestQueueRejectsAfterClose(t *testing.T) {
	q := NewQueue(&stubFetcher{}, newMemorySink(), nil)
	q.Start(context.Background())
	require.NoError(t, q.Close())
	require.NoError(t, q.Close())

	assert.False(t, q.Submit(1, "https://example.com"))
}

func TestQueueTaskTimeout(t *testing.T) {
	sink := newMemorySink()
	f := &stubFetcher{block: make(chan struct{})}
	defer close(f.block)

	q := NewQueue(f, sink, nil, WithWorkers(1), WithTimeout(50*time.Millisecond))
	q.Start(context.Background())
	q.Submit(1, "https://slow.example.com")
	require.NoError(t, q.Close())

	_, ok := sink.get(1)
	assert.False(t, ok)
	assert.Equal(t, int64(1), q.Stats().Failed)
}
