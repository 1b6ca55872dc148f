package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/wadjakorntonsri/go-qr-shortener/pkg/core/domain"
	"github.com/wadjakorntonsri/go-qr-shortener/pkg/ports"
)

type ResolveService struct {
	repo   ports.LinkRepository
	cache  ports.Cache
	warmer *cacheWarmer
	logger *slog.Logger
	now    func() time.Time
}

func NewResolveService(repo ports.LinkRepository, cache ports.Cache, logger *slog.Logger) *ResolveService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResolveService{
		repo:   repo,
		cache:  cache,
		warmer: newCacheWarmer(cache, logger),
		logger: logger,
		now:    time.Now,
	}
}

// Resolve maps a code to its long URL.
//
// A cache hit is returned as is: expiry is only checked against the durable
// record, so a cached link keeps resolving past expires_at until the entry
// is evicted. Expired records are never written back to the cache.
func (s *ResolveService) Resolve(ctx context.Context, code string) (string, error) {
	if code == "" {
		return "", domain.ErrNotFound
	}

	if s.cache != nil {
		longURL, ok, err := s.cache.Get(ctx, code)
		if err != nil {
			s.logger.Debug("cache read failed", "code", code, "error", err)
		} else if ok && longURL != "" {
			return longURL, nil
		}
	}

	link, err := s.repo.GetByShortCode(ctx, code)
	if err != nil {
		return "", err
	}
	if link == nil {
		return "", domain.ErrNotFound
	}
	if link.ExpiredAt(s.now()) {
		return "", domain.ErrGone
	}

	s.warmer.warm(code, link.LongURL)
	return link.LongURL, nil
}

// RecordHit bumps the click counter. It does not check existence or expiry;
// unknown codes are a no-op in the repository.
func (s *ResolveService) RecordHit(ctx context.Context, code string) error {
	return s.repo.IncrementClicks(ctx, code)
}

// Wait blocks until background cache writes have finished.
func (s *ResolveService) Wait() {
	s.warmer.wait()
}
