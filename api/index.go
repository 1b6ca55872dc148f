package handler

import (
	"context"
	"net/http"

	"github.com/wadjakorntonsri/go-qr-shortener/pkg/bootstrap"
	"github.com/wadjakorntonsri/go-qr-shortener/pkg/config"
	"github.com/wadjakorntonsri/go-qr-shortener/pkg/logger"
)

var mux http.Handler

func init() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	// Note: On Vercel, db.sqlite is ephemeral unless DATABASE_URL points at Turso or Postgres
	app, err := bootstrap.New(context.Background(), cfg, logger.New(cfg.LogLevel, "json"))
	if err != nil {
		panic(err)
	}
	mux = app.Router
}

// Handler is the entrypoint for Vercel
func Handler(w http.ResponseWriter, r *http.Request) {
	mux.ServeHTTP(w, r)
}
