package handler

import (
	"log/slog"
	"net/http"

	"github.com/wadjakorntonsri/go-qr-shortener/pkg/config"
	"github.com/wadjakorntonsri/go-qr-shortener/pkg/ports"
)

// Router is the application handler. Wait drains background hit recording.
type Router struct {
	http.Handler
	h *HTTPHandler
}

func (rt *Router) Wait() {
	rt.h.Wait()
}

// NewRouter creates and configures the main application router
func NewRouter(cfg *config.Config, links ports.LinkService, resolve ports.ResolveService, logger *slog.Logger) *Router {
	h := NewHTTPHandler(links, resolve, cfg.BaseURL, logger)
	mw := NewMiddleware(cfg.CORSOrigin, logger)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	})

	mux.HandleFunc("POST /api/shorten", h.Shorten)
	mux.HandleFunc("GET /api/resolve/{code}", h.Resolve)
	mux.HandleFunc("POST /api/analytics/hit", h.Hit)
	mux.HandleFunc("GET /api/links/{code}", h.GetLink)

	// Redirects
	mux.HandleFunc("GET /open/{short_code}", h.Redirect)
	mux.HandleFunc("GET /{short_code}", h.Redirect)

	return &Router{Handler: mw.Wrap(mux), h: h}
}
