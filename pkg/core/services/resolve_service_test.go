package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wadjakorntonsri/go-qr-shortener/pkg/core/domain"
	"github.com/wadjakorntonsri/go-qr-shortener/pkg/ports"
)

var fixedNow = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func newTestResolveService(repo ports.LinkRepository, cache *fakeCache) *ResolveService {
	var c ports.Cache
	if cache != nil {
		c = cache
	}
	svc := NewResolveService(repo, c, nil)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func seedLink(repo *fakeRepo, code, longURL string, expiresAt *time.Time) {
	repo.links[code] = &domain.Link{
		ShortCode:   code,
		LongURL:     longURL,
		ExpiresAt:   expiresAt,
		ContentType: domain.ContentURL,
		QRStatus:    domain.QRFailed,
	}
}

func TestResolve_RoundTrip(t *testing.T) {
	repo := newFakeRepo()
	cache := newFakeCache()
	shortener := newTestLinkService(repo, cache, &fakeQR{}, nil)
	resolver := newTestResolveService(repo, cache)

	link, err := shortener.Shorten(context.Background(), domain.ShortenInput{LongURL: "https://example.com/round/trip"})
	require.NoError(t, err)

	got, err := resolver.Resolve(context.Background(), link.ShortCode)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/round/trip", got)
}

func TestResolve_NotFound(t *testing.T) {
	svc := newTestResolveService(newFakeRepo(), newFakeCache())

	_, err := svc.Resolve(context.Background(), "nope123")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResolve_CacheMissWarmsCache(t *testing.T) {
	repo := newFakeRepo()
	cache := newFakeCache()
	seedLink(repo, "abc2345", "https://example.com/miss", nil)
	svc := newTestResolveService(repo, cache)

	got, err := svc.Resolve(context.Background(), "abc2345")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/miss", got)

	svc.Wait()
	cached, ok := cache.lookup("abc2345")
	require.True(t, ok)
	assert.Equal(t, "https://example.com/miss", cached)
}

func TestResolve_Expiry(t *testing.T) {
	past := fixedNow.Add(-time.Minute)
	future := fixedNow.Add(time.Hour)

	t.Run("expired on cache miss is gone", func(t *testing.T) {
		repo := newFakeRepo()
		cache := newFakeCache()
		seedLink(repo, "old2345", "https://example.com/old", &past)
		svc := newTestResolveService(repo, cache)

		_, err := svc.Resolve(context.Background(), "old2345")
		require.ErrorIs(t, err, domain.ErrGone)
		assert.False(t, errors.Is(err, domain.ErrNotFound))

		svc.Wait()
		_, ok := cache.lookup("old2345")
		assert.False(t, ok, "expired links are not cached")
	})

	t.Run("expired but cached returns cached value", func(t *testing.T) {
		repo := newFakeRepo()
		cache := newFakeCache()
		seedLink(repo, "old2345", "https://example.com/old", &past)
		cache.data["old2345"] = "https://example.com/old"
		svc := newTestResolveService(repo, cache)

		got, err := svc.Resolve(context.Background(), "old2345")
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/old", got)
	})

	t.Run("not yet expired resolves", func(t *testing.T) {
		repo := newFakeRepo()
		seedLink(repo, "new2345", "https://example.com/new", &future)
		svc := newTestResolveService(repo, newFakeCache())

		got, err := svc.Resolve(context.Background(), "new2345")
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/new", got)
	})

	t.Run("expiring exactly now still resolves", func(t *testing.T) {
		repo := newFakeRepo()
		now := fixedNow
		seedLink(repo, "now2345", "https://example.com/now", &now)
		svc := newTestResolveService(repo, newFakeCache())

		_, err := svc.Resolve(context.Background(), "now2345")
		assert.NoError(t, err)
	})
}

func TestResolve_CacheUnavailable(t *testing.T) {
	repo := newFakeRepo()
	cache := newFakeCache()
	cache.getErr = errors.New("redis down")
	cache.setErr = errors.New("redis down")
	seedLink(repo, "abc2345", "https://example.com/fallback", nil)
	svc := newTestResolveService(repo, cache)

	got, err := svc.Resolve(context.Background(), "abc2345")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/fallback", got)
	svc.Wait()
}

func TestResolve_NilCache(t *testing.T) {
	repo := newFakeRepo()
	seedLink(repo, "abc2345", "https://example.com/nocache", nil)
	svc := NewResolveService(repo, nil, nil)

	got, err := svc.Resolve(context.Background(), "abc2345")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/nocache", got)
}

func TestResolve_RepositoryFault(t *testing.T) {
	svc := newTestResolveService(&brokenRepo{fakeRepo: newFakeRepo()}, newFakeCache())

	_, err := svc.Resolve(context.Background(), "abc2345")
	assert.ErrorIs(t, err, errDBDown)
}

func TestRecordHit(t *testing.T) {
	repo := newFakeRepo()
	seedLink(repo, "abc2345", "https://example.com", nil)
	svc := newTestResolveService(repo, nil)

	require.NoError(t, svc.RecordHit(context.Background(), "abc2345"))
	require.NoError(t, svc.RecordHit(context.Background(), "abc2345"))

	link, _ := repo.GetByShortCode(context.Background(), "abc2345")
	assert.Equal(t, int64(2), link.Clicks)
}

func TestRecordHit_UnknownCode(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestResolveService(repo, nil)

	require.NoError(t, svc.RecordHit(context.Background(), "ghost23"))
	assert.Equal(t, 0, repo.count())
	assert.Equal(t, 1, repo.increments)
}

type brokenRepo struct {
	*fakeRepo
}

func (r *brokenRepo) GetByShortCode(context.Context, string) (*domain.Link, error) {
	return nil, errDBDown
}
