package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wadjakorntonsri/rendium/pkg/config"
	"github.com/wadjakorntonsri/rendium/pkg/enrich"
	"github.com/wadjakorntonsri/rendium/pkg/logger"
	"github.com/wadjakorntonsri/rendium/pkg/ports"
)

// requestTimeout bounds every API call except imports, which may persist
// thousands of rows.
const requestTimeout = 30 * time.Second

// Deps are the services the router dispatches to
type Deps struct {
	Bookmarks ports.BookmarkService
	Folders   ports.FolderService
	Transfer  ports.TransferService
	Extractor ports.MetadataExtractor
	Queue     interface{ Stats() enrich.Stats } // optional, reported by /healthz
	StartTime time.Time
}

// NewRouter creates and configures the main application router
func NewRouter(cfg *config.Config, log logger.Logger, d Deps) http.Handler {
	bh := NewBookmarkHandler(d.Bookmarks, log)
	fh := NewFolderHandler(d.Folders, log)
	mh := NewMetadataHandler(d.Extractor, log)
	th := NewTransferHandler(d.Transfer, log)
	authHandler := NewAuthHandler(cfg, log)
	mw := NewMiddleware(cfg)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(AccessLog(log))

	// Public Routes
	r.Get("/healthz", healthz(d))
	r.Get("/auth/google/login", authHandler.Login)
	r.Get("/auth/google/callback", authHandler.Callback)
	r.Get("/auth/logout", authHandler.Logout)

	// Protected Routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.AuthMiddleware)

		r.Post("/import", th.Import)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(requestTimeout))

			r.Get("/metadata", mh.Preview)

			r.Route("/bookmarks", func(r chi.Router) {
				r.Post("/", bh.Create)
				r.Get("/", bh.List)
				r.Get("/trash", bh.ListTrash)
				r.Delete("/trash", bh.EmptyTrash)
				r.Get("/{id}", bh.Get)
				r.Patch("/{id}", bh.Update)
				r.Delete("/{id}", bh.Delete)
				r.Post("/{id}/trash", bh.Trash)
				r.Post("/{id}/restore", bh.Restore)
				r.Put("/{id}/pin", bh.Pin)
				r.Put("/{id}/folder", bh.Move)
			})

			r.Route("/folders", func(r chi.Router) {
				r.Post("/", fh.Create)
				r.Get("/", fh.List)
				r.Get("/{id}", fh.Get)
				r.Put("/{id}", fh.Update)
				r.Delete("/{id}", fh.Delete)
			})

			r.Get("/export", th.Export)
			r.Delete("/data", th.ClearAll)
		})
	})

	return r
}

type healthzResponse struct {
	Status        string        `json:"status"`
	UptimeSeconds float64       `json:"uptime_seconds"`
	Enrichment    *enrich.Stats `json:"enrichment,omitempty"`
}

func healthz(d Deps) http.HandlerFunc {
	start := d.StartTime
	if start.IsZero() {
		start = time.Now()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		res := healthzResponse{
			Status:        "ok",
			UptimeSeconds: time.Since(start).Seconds(),
		}
		if d.Queue != nil {
			stats := d.Queue.Stats()
			res.Enrichment = &stats
		}
		writeJSON(w, http.StatusOK, res)
	}
}
