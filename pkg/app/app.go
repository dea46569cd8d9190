// Package app wires configuration, storage, the metadata pipeline and the
// services together. The server, the serverless entrypoint and the CLI
// all start from here.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/wadjakorntonsri/rendium/pkg/adapters/cache/redis"
	"github.com/wadjakorntonsri/rendium/pkg/adapters/handler"
	"github.com/wadjakorntonsri/rendium/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/rendium/pkg/config"
	"github.com/wadjakorntonsri/rendium/pkg/core/services"
	"github.com/wadjakorntonsri/rendium/pkg/enrich"
	"github.com/wadjakorntonsri/rendium/pkg/logger"
	"github.com/wadjakorntonsri/rendium/pkg/metadata"
	"github.com/wadjakorntonsri/rendium/pkg/ports"
)

type Options struct {
	// DisableEnrichment skips the background queue; new bookmarks keep
	// whatever title they were saved with.
	DisableEnrichment bool
}

type App struct {
	Config *config.Config
	Log    logger.Logger

	Repo      *sqlite.SQLiteRepository
	Fetcher   ports.MetadataFetcher
	Extractor ports.MetadataExtractor
	Queue     *enrich.Queue // nil when enrichment is disabled

	Bookmarks *services.BookmarkService
	Folders   *services.FolderService
	Transfer  *services.TransferService

	redis   *goredis.Client
	started time.Time
}

func New(cfg *config.Config, log logger.Logger, opts Options) (*App, error) {
	repo, err := sqlite.NewSQLiteRepository(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Log: log, Repo: repo, started: time.Now()}

	// extractor -> coalescing -> optional cache
	var fetcher ports.MetadataFetcher = metadata.NewCoalesced(
		metadata.New(metadata.WithTimeout(cfg.FetchTimeout), metadata.WithLogger(log)))
	if cfg.RedisAddr != "" {
		client, err := redis.Connect(redis.DefaultConnectOptions(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB), log)
		if err != nil {
			log.Warn("metadata cache disabled", logger.Error(err))
		} else {
			a.redis = client
			fetcher = redis.NewMetadataCache(client, fetcher, cfg.MetadataCacheTTL, log)
		}
	}
	a.Fetcher = fetcher
	a.Extractor = metadata.NewSoft(fetcher, log)

	var queue ports.Enqueuer
	if !opts.DisableEnrichment {
		a.Queue = enrich.NewQueue(fetcher, services.NewMetadataSink(repo), log,
			enrich.WithWorkers(cfg.EnrichWorkers),
			enrich.WithQueueSize(cfg.EnrichQueueSize),
			enrich.WithTimeout(cfg.FetchTimeout+2*time.Second))
		queue = a.Queue
	}

	a.Bookmarks = services.NewBookmarkService(repo, repo, queue)
	a.Folders = services.NewFolderService(repo)
	a.Transfer = services.NewTransferService(repo, repo, queue, log)

	return a, nil
}

// Start launches background workers
func (a *App) Start(ctx context.Context) {
	if a.Queue != nil {
		a.Queue.Start(ctx)
	}
}

// Handler builds the HTTP router over the app's services
func (a *App) Handler() http.Handler {
	d := handler.Deps{
		Bookmarks: a.Bookmarks,
		Folders:   a.Folders,
		Transfer:  a.Transfer,
		Extractor: a.Extractor,
		StartTime: a.started,
	}
	if a.Queue != nil {
		d.Queue = a.Queue
	}
	return handler.NewRouter(a.Config, a.Log, d)
}

// Close drains the enrichment queue, then releases connections
func (a *App) Close() error {
	var errs []error
	if a.Queue != nil {
		errs = append(errs, a.Queue.Close())
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	errs = append(errs, a.Repo.Close())
	return errors.Join(errs...)
}
