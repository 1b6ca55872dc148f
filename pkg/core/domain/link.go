package domain

import "time"

// ContentType selects the schema a link's QR code encodes
type ContentType string

const (
	ContentURL   ContentType = "url"
	ContentVCard ContentType = "vcard"
	ContentWifi  ContentType = "wifi"
	ContentEmail ContentType = "email"
	ContentSMS   ContentType = "sms"
)

// ParseContentType maps the wire value to a ContentType. Empty means url.
func ParseContentType(s string) (ContentType, error) {
	switch ct := ContentType(s); ct {
	case "":
		return ContentURL, nil
	case ContentURL, ContentVCard, ContentWifi, ContentEmail, ContentSMS:
		return ct, nil
	default:
		return "", Invalidf("unsupported content_type %q", s)
	}
}

// QRStatus records whether rendering succeeded when the link was created
type QRStatus string

const (
	QRReady  QRStatus = "ready"
	QRFailed QRStatus = "failed"
)

// Link represents a shortened URL
type Link struct {
	ID          int64            `json:"id"`
	ShortCode   string           `json:"short_code"`
	LongURL     string           `json:"long_url"`
	Alias       *string          `json:"alias,omitempty"`
	ExpiresAt   *time.Time       `json:"expires_at,omitempty"`
	ContentType ContentType      `json:"content_type"`
	QRStatus    QRStatus         `json:"qr_status"`
	QRURL       *string          `json:"qr_url"`
	QRConfig    *QRCustomization `json:"qr_config,omitempty"`
	Clicks      int64            `json:"clicks"`
	CreatedAt   time.Time        `json:"created_at"`
}

// ExpiredAt reports whether the link is past its expiry at the given instant.
// A link expiring exactly at now is still live.
func (l *Link) ExpiredAt(now time.Time) bool {
	return l.ExpiresAt != nil && l.ExpiresAt.Before(now)
}

// ShortenInput is everything a caller may supply when creating a link
type ShortenInput struct {
	LongURL       string
	Alias         string
	ExpiresAt     *time.Time
	ContentType   ContentType
	Content       QRContent // ignored for ContentURL
	Customization *QRCustomization
}
