package ports

import (
	"context"

	"github.com/wadjakorntonsri/go-qr-shortener/pkg/core/domain"
)

// LinkRepository defines durable storage for links
type LinkRepository interface {
	// Create inserts a new link and fills ID/CreatedAt. A taken short code
	// yields an error wrapping domain.ErrUniqueViolation.
	Create(ctx context.Context, link *domain.Link) error
	// GetByShortCode returns nil, nil when no link has the code.
	GetByShortCode(ctx context.Context, code string) (*domain.Link, error)
	// IncrementClicks is a no-op for unknown codes.
	IncrementClicks(ctx context.Context, code string) error
	Dump(ctx context.Context) ([]domain.Link, error) // For migration
}

// Cache is the code -> long URL cache-aside layer
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// QRRenderer turns QR content into a hosted image. It never returns an error;
// every failure is reported as domain.QRFailed.
type QRRenderer interface {
	Render(ctx context.Context, content domain.QRContent, customization *domain.QRCustomization) domain.QRResult
}

// CodeGenerator produces random short codes of a given length
type CodeGenerator interface {
	Generate(length int) string
}

// LinkService defines the link creation operations
type LinkService interface {
	Shorten(ctx context.Context, in domain.ShortenInput) (*domain.Link, error)
	GetLink(ctx context.Context, code string) (*domain.Link, error)
}

// ResolveService defines the read path and click recording
type ResolveService interface {
	Resolve(ctx context.Context, code string) (string, error)
	RecordHit(ctx context.Context, code string) error
}
