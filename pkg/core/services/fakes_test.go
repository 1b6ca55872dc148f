package services

import (
	"context"
	"errors"
	"sync"

	"github.com/wadjakorntonsri/go-qr-shortener/pkg/core/domain"
)

type fakeRepo struct {
	mu         sync.Mutex
	links      map[string]*domain.Link
	createErr  error
	creates    int
	increments int
	nextID     int64
}

func newFakeRepo(codes ...string) *fakeRepo {
	r := &fakeRepo{links: make(map[string]*domain.Link)}
	for _, c := range codes {
		r.links[c] = &domain.Link{ShortCode: c, LongURL: "https://taken.example/" + c, ContentType: domain.ContentURL, QRStatus: domain.QRFailed}
	}
	return r
}

func (r *fakeRepo) Create(_ context.Context, link *domain.Link) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	if r.createErr != nil {
		return r.createErr
	}
	if _, ok := r.links[link.ShortCode]; ok {
		return domain.ErrUniqueViolation
	}
	r.nextID++
	link.ID = r.nextID
	stored := *link
	r.links[link.ShortCode] = &stored
	return nil
}

func (r *fakeRepo) GetByShortCode(_ context.Context, code string) (*domain.Link, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.links[code]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (r *fakeRepo) IncrementClicks(_ context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.increments++
	if l, ok := r.links[code]; ok {
		l.Clicks++
	}
	return nil
}

func (r *fakeRepo) Dump(_ context.Context) ([]domain.Link, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Link, 0, len(r.links))
	for _, l := range r.links {
		out = append(out, *l)
	}
	return out, nil
}

func (r *fakeRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.links)
}

type fakeCache struct {
	mu     sync.Mutex
	data   map[string]string
	getErr error
	setErr error
	sets   int
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string]string)}
}

func (c *fakeCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return "", false, c.getErr
	}
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *fakeCache) Set(_ context.Context, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	if c.setErr != nil {
		return c.setErr
	}
	c.data[key] = value
	return nil
}

func (c *fakeCache) lookup(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok
}

type fakeQR struct {
	mu       sync.Mutex
	result   domain.QRResult
	calls    int
	contents []domain.QRContent
}

func (q *fakeQR) Render(_ context.Context, content domain.QRContent, _ *domain.QRCustomization) domain.QRResult {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.calls++
	q.contents = append(q.contents, content)
	if q.result.Status == "" {
		return domain.QRFailedResult()
	}
	return q.result
}

// seqCodes hands out codes in order and then repeats the last one.
type seqCodes struct {
	mu    sync.Mutex
	codes []string
	calls int
}

func (s *seqCodes) Generate(int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	if i >= len(s.codes) {
		i = len(s.codes) - 1
	}
	s.calls++
	return s.codes[i]
}

var errDBDown = errors.New("connection refused")
