// Package enrich fills in bookmark metadata in the background after a
// bookmark has been saved.
package enrich

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wadjakorntonsri/rendium/pkg/logger"
	"github.com/wadjakorntonsri/rendium/pkg/ports"
)

const (
	DefaultWorkers   = 4
	DefaultQueueSize = 256
	DefaultTimeout   = 10 * time.Second
)

// Task is one pending enrichment
type Task struct {
	ID         string
	BookmarkID int64
	URL        string
	Submitted  time.Time
}

// Stats are cumulative counters since the queue was created
type Stats struct {
	Processed int64 `json:"processed"`
	Failed    int64 `json:"failed"`
	Dropped   int64 `json:"dropped"`
	Pending   int   `json:"pending"`
}

type Option func(*Queue)

func WithWorkers(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.size = n
		}
	}
}

// WithTimeout bounds the fetch plus the write of a single task
func WithTimeout(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

// Queue is a bounded task queue drained by a fixed pool of workers.
// A failed fetch leaves the bookmark as it was.
type Queue struct {
	fetcher ports.MetadataFetcher
	sink    ports.MetadataSink
	log     logger.Logger

	workers int
	size    int
	timeout time.Duration

	tasks  chan Task
	mu     sync.RWMutex // guards closed against concurrent Submit
	closed bool
	group  errgroup.Group

	processed atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64
}

func NewQueue(fetcher ports.MetadataFetcher, sink ports.MetadataSink, log logger.Logger, opts ...Option) *Queue {
	if log == nil {
		log = logger.NewNop()
	}
	q := &Queue{
		fetcher: fetcher,
		sink:    sink,
		log:     log,
		workers: DefaultWorkers,
		size:    DefaultQueueSize,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(q)
	}
	q.tasks = make(chan Task, q.size)
	return q
}

// Start launches the workers. Cancelling ctx aborts in-flight fetches;
// use Close for an orderly drain.
func (q *Queue) Start(ctx context.Context) {
	for i := 0; i < q.workers; i++ {
		worker := i
		q.group.Go(func() error {
			q.run(ctx, worker)
			return nil
		})
	}
	q.log.Info("enrichment queue started",
		logger.Int("workers", q.workers),
		logger.Int("capacity", q.size))
}

// Submit enqueues a task without blocking. It reports false when the task
// was dropped because the queue is full or closed.
func (q *Queue) Submit(bookmarkID int64, rawURL string) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		q.dropped.Add(1)
		q.log.Warn("enrichment queue closed, task dropped", logger.Int64("bookmark_id", bookmarkID))
		return false
	}

	task := Task{
		ID:         uuid.New().String(),
		BookmarkID: bookmarkID,
		URL:        rawURL,
		Submitted:  time.Now(),
	}

	select {
	case q.tasks <- task:
		q.log.Debug("enrichment task queued",
			logger.String("task_id", task.ID),
			logger.Int64("bookmark_id", bookmarkID))
		return true
	default:
		q.dropped.Add(1)
		q.log.Warn("enrichment queue full, task dropped",
			logger.String("task_id", task.ID),
			logger.Int64("bookmark_id", bookmarkID))
		return false
	}
}

// Close stops intake, lets the workers finish what is queued and waits
// for them. It is safe to call more than once.
func (q *Queue) Close() error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.tasks)
	}
	q.mu.Unlock()

	err := q.group.Wait()
	q.log.Info("enrichment queue stopped",
		logger.Int64("processed", q.processed.Load()),
		logger.Int64("failed", q.failed.Load()),
		logger.Int64("dropped", q.dropped.Load()))
	return err
}

func (q *Queue) Stats() Stats {
	return Stats{
		Processed: q.processed.Load(),
		Failed:    q.failed.Load(),
		Dropped:   q.dropped.Load(),
		Pending:   len(q.tasks),
	}
}

func (q *Queue) run(ctx context.Context, worker int) {
	for {
		select {
		case <-ctx.Done():
			return
		case task, ok := <-q.tasks:
			if !ok {
				return
			}
			q.process(ctx, worker, task)
		}
	}
}

func (q *Queue) process(ctx context.Context, worker int, task Task) {
	ctx, cancel := context.WithTimeout(ctx, q.timeout)
	defer cancel()

	log := q.log.With(
		logger.String("task_id", task.ID),
		logger.Int64("bookmark_id", task.BookmarkID),
		logger.Int("worker", worker))

	m, err := q.fetcher.Fetch(ctx, task.URL)
	if err != nil {
		q.failed.Add(1)
		log.Warn("metadata fetch failed, bookmark left unchanged",
			logger.String("url", task.URL),
			logger.Error(err))
		return
	}

	if err := q.sink.ApplyMetadata(ctx, task.BookmarkID, m); err != nil {
		q.failed.Add(1)
		log.Error("failed to store metadata", logger.Error(err))
		return
	}

	q.processed.Add(1)
	log.Debug("bookmark enriched",
		logger.Duration("waited", time.Since(task.Submitted)))
}

var _ ports.Enqueuer = (*Queue)(nil)
