package handler

import (
	"context"
	"net/http"

	"github.com/wadjakorntonsri/rendium/pkg/app"
	"github.com/wadjakorntonsri/rendium/pkg/config"
	"github.com/wadjakorntonsri/rendium/pkg/logger"
)

var mux http.Handler

func init() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, false)

	// Note: On Vercel, db.sqlite is ephemeral unless using a remote SQL/Turso URL in DATABASE_URL
	a, err := app.New(cfg, log, app.Options{})
	if err != nil {
		panic(err)
	}
	a.Start(context.Background())
	mux = a.Handler()
}

// Handler is the entrypoint for Vercel
func Handler(w http.ResponseWriter, r *http.Request) {
	mux.ServeHTTP(w, r)
}
