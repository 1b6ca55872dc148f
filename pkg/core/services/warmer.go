package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/wadjakorntonsri/go-qr-shortener/pkg/ports"
)

const cacheWriteTimeout = 2 * time.Second

// cacheWarmer dispatches best-effort cache writes off the request path.
// Results are discarded; failures are only logged at debug level.
type cacheWarmer struct {
	cache  ports.Cache
	logger *slog.Logger
	wg     sync.WaitGroup
}

func newCacheWarmer(cache ports.Cache, logger *slog.Logger) *cacheWarmer {
	return &cacheWarmer{cache: cache, logger: logger}
}

func (w *cacheWarmer) warm(code, longURL string) {
	if w.cache == nil {
		return
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		// Detached from the request context, which is cancelled once the response is written.
		ctx, cancel := context.WithTimeout(context.Background(), cacheWriteTimeout)
		defer cancel()

		if err := w.cache.Set(ctx, code, longURL); err != nil {
			w.logger.Debug("cache warm failed", "code", code, "error", err)
		}
	}()
}

// wait blocks until every dispatched write has finished.
func (w *cacheWarmer) wait() {
	w.wg.Wait()
}
