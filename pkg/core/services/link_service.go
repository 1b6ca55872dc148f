package services

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/wadjakorntonsri/go-qr-shortener/pkg/core/domain"
	"github.com/wadjakorntonsri/go-qr-shortener/pkg/ports"
)

const (
	DefaultCodeLength  = 7
	DefaultMaxAttempts = 3
)

var aliasPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Options tunes code generation. Zero values take the defaults.
type Options struct {
	CodeLength  int
	MaxAttempts int
}

type LinkService struct {
	repo        ports.LinkRepository
	qr          ports.QRRenderer
	codes       ports.CodeGenerator
	warmer      *cacheWarmer
	logger      *slog.Logger
	codeLength  int
	maxAttempts int
	now         func() time.Time
}

func NewLinkService(repo ports.LinkRepository, cache ports.Cache, qr ports.QRRenderer, codes ports.CodeGenerator, opts Options, logger *slog.Logger) *LinkService {
	if opts.CodeLength <= 0 {
		opts.CodeLength = DefaultCodeLength
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LinkService{
		repo:        repo,
		qr:          qr,
		codes:       codes,
		warmer:      newCacheWarmer(cache, logger),
		logger:      logger,
		codeLength:  opts.CodeLength,
		maxAttempts: opts.MaxAttempts,
		now:         time.Now,
	}
}

type attemptOutcome int

const (
	attemptStored attemptOutcome = iota
	attemptCollision
	attemptFault
)

// attempt is the result of one generate-render-persist round.
type attempt struct {
	code    string
	outcome attemptOutcome
	link    *domain.Link
	err     error
}

// Shorten creates a link. The QR image is rendered before each persist so a
// rendering failure only downgrades qr_status. Generated codes that collide
// are replaced, up to MaxAttempts; an alias that collides is a conflict.
func (s *LinkService) Shorten(ctx context.Context, in domain.ShortenInput) (*domain.Link, error) {
	if err := validateLongURL(in.LongURL); err != nil {
		return nil, err
	}

	alias := strings.TrimSpace(in.Alias)
	if alias != "" && !aliasPattern.MatchString(alias) {
		return nil, domain.Invalidf("alias must be 1-64 letters, digits, '-' or '_'")
	}

	contentType := in.ContentType
	if contentType == "" {
		contentType = domain.ContentURL
	}
	content, err := qrContentFor(contentType, in)
	if err != nil {
		return nil, err
	}

	attempts := make([]attempt, 0, s.maxAttempts)
	for i := 0; i < s.maxAttempts; i++ {
		code := alias
		if code == "" {
			code = s.codes.Generate(s.codeLength)
		}

		a := s.tryCreate(ctx, code, alias, contentType, content, in)
		attempts = append(attempts, a)
		if a.outcome != attemptCollision || alias != "" {
			break
		}
		s.logger.Debug("short code collision, retrying", "code", code, "attempt", i+1)
	}

	link, err := settle(attempts, alias != "")
	if err != nil {
		if errors.Is(err, domain.ErrRetriesExhausted) {
			s.logger.Error("failed to generate short code after retries",
				"attempts", len(attempts), "code_length", s.codeLength, "error", attempts[len(attempts)-1].err)
		}
		return nil, err
	}

	s.warmer.warm(link.ShortCode, link.LongURL)
	return link, nil
}

func (s *LinkService) tryCreate(ctx context.Context, code, alias string, contentType domain.ContentType, content domain.QRContent, in domain.ShortenInput) attempt {
	qr := s.qr.Render(ctx, content, in.Customization)
	if qr.Status != domain.QRReady || qr.URL == nil || *qr.URL == "" {
		qr = domain.QRFailedResult()
	}

	link := &domain.Link{
		ShortCode:   code,
		LongURL:     in.LongURL,
		ExpiresAt:   in.ExpiresAt,
		ContentType: contentType,
		QRStatus:    qr.Status,
		QRURL:       qr.URL,
		QRConfig:    in.Customization,
		CreatedAt:   s.now(),
	}
	if alias != "" {
		link.Alias = &alias
	}

	err := s.repo.Create(ctx, link)
	switch {
	case err == nil:
		return attempt{code: code, outcome: attemptStored, link: link}
	case errors.Is(err, domain.ErrUniqueViolation):
		return attempt{code: code, outcome: attemptCollision, err: err}
	default:
		return attempt{code: code, outcome: attemptFault, err: err}
	}
}

// settle decides the outcome of a Shorten call from its attempts. Only the
// last attempt matters: every earlier one was a collision.
func settle(attempts []attempt, aliased bool) (*domain.Link, error) {
	if len(attempts) == 0 {
		return nil, &domain.RetriesExhaustedError{}
	}

	last := attempts[len(attempts)-1]
	switch last.outcome {
	case attemptStored:
		return last.link, nil
	case attemptFault:
		return nil, last.err
	}

	if aliased {
		return nil, domain.ErrConflict
	}
	return nil, &domain.RetriesExhaustedError{Attempts: len(attempts), Last: last.err}
}

// GetLink returns the stored record regardless of expiry.
func (s *LinkService) GetLink(ctx context.Context, code string) (*domain.Link, error) {
	link, err := s.repo.GetByShortCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, domain.ErrNotFound
	}
	return link, nil
}

// Wait blocks until background cache writes have finished.
func (s *LinkService) Wait() {
	s.warmer.wait()
}

func validateLongURL(raw string) error {
	if raw == "" {
		return domain.Invalidf("long_url is required")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return domain.Invalidf("long_url is invalid")
	}
	return nil
}

// qrContentFor derives the QR payload. For url links the long URL is
// authoritative and caller data is ignored.
func qrContentFor(ct domain.ContentType, in domain.ShortenInput) (domain.QRContent, error) {
	if _, err := domain.ParseContentType(string(ct)); err != nil {
		return nil, err
	}
	if ct == domain.ContentURL {
		return domain.URLContent{URL: in.LongURL}, nil
	}

	if in.Content == nil {
		return nil, domain.Invalidf("qr_data is required for content_type %q", ct)
	}
	if in.Content.ContentType() != ct {
		return nil, domain.Invalidf("qr_data does not match content_type %q", ct)
	}
	if err := in.Content.Validate(); err != nil {
		return nil, err
	}
	return in.Content, nil
}
