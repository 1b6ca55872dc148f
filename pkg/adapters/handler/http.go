package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/wadjakorntonsri/go-qr-shortener/pkg/core/domain"
	"github.com/wadjakorntonsri/go-qr-shortener/pkg/ports"
)

// datetime-local form sent by browser forms, read as UTC
const localDateTimeLayout = "2006-01-02T15:04"

type HTTPHandler struct {
	links   ports.LinkService
	resolve ports.ResolveService
	baseURL string
	logger  *slog.Logger
	hits    sync.WaitGroup
}

func NewHTTPHandler(links ports.LinkService, resolve ports.ResolveService, baseURL string, logger *slog.Logger) *HTTPHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPHandler{
		links:   links,
		resolve: resolve,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// ShortenRequest payload
type ShortenRequest struct {
	LongURL         string                  `json:"long_url"`
	Alias           string                  `json:"alias,omitempty"`
	ExpiresAt       string                  `json:"expires_at,omitempty"`
	ContentType     string                  `json:"content_type,omitempty"`
	QRData          json.RawMessage         `json:"qr_data,omitempty"`
	QRCustomization *domain.QRCustomization `json:"qr_customization,omitempty"`
}

type ShortenResponse struct {
	Code        string             `json:"code"`
	ShortURL    string             `json:"short_url"`
	QRURL       *string            `json:"qr_url"`
	QRStatus    domain.QRStatus    `json:"qr_status"`
	ContentType domain.ContentType `json:"content_type"`
}

type ResolveResponse struct {
	LongURL string `json:"long_url"`
}

// HitRequest payload
type HitRequest struct {
	Code string `json:"code"`
}

// Shorten creates a link
func (h *HTTPHandler) Shorten(w http.ResponseWriter, r *http.Request) {
	var req ShortenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in, err := req.toInput()
	if err != nil {
		h.fail(w, r, err)
		return
	}

	link, err := h.links.Shorten(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, ShortenResponse{
		Code:        link.ShortCode,
		ShortURL:    h.baseURL + "/" + link.ShortCode,
		QRURL:       link.QRURL,
		QRStatus:    link.QRStatus,
		ContentType: link.ContentType,
	})
}

// Resolve returns the long URL for a code without redirecting
func (h *HTTPHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	longURL, err := h.resolve.Resolve(r.Context(), r.PathValue("code"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ResolveResponse{LongURL: longURL})
}

// Hit records one click for a code
func (h *HTTPHandler) Hit(w http.ResponseWriter, r *http.Request) {
	var req HitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}

	if err := h.resolve.RecordHit(r.Context(), req.Code); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// GetLink returns the stored record, expired or not
func (h *HTTPHandler) GetLink(w http.ResponseWriter, r *http.Request) {
	link, err := h.links.GetLink(r.Context(), r.PathValue("code"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, link)
}

// Redirect to original URL
func (h *HTTPHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("short_code")
	longURL, err := h.resolve.Resolve(r.Context(), code)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	// Async track visit (only if query param "no_stat" is not set)
	if r.URL.Query().Get("no_stat") == "" {
		h.hits.Add(1)
		go func() {
			defer h.hits.Done()
			// request context is cancelled once the redirect is written
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := h.resolve.RecordHit(ctx, code); err != nil {
				h.logger.Warn("failed to record hit", "code", code, "error", err)
			}
		}()
	}

	http.Redirect(w, r, longURL, http.StatusFound)
}

// Wait blocks until background hit recording has finished.
func (h *HTTPHandler) Wait() {
	h.hits.Wait()
}

func (req ShortenRequest) toInput() (domain.ShortenInput, error) {
	contentType, err := domain.ParseContentType(req.ContentType)
	if err != nil {
		return domain.ShortenInput{}, err
	}

	in := domain.ShortenInput{
		LongURL:       strings.TrimSpace(req.LongURL),
		Alias:         req.Alias,
		ContentType:   contentType,
		Customization: req.QRCustomization,
	}

	if contentType != domain.ContentURL {
		in.Content, err = domain.DecodeQRContent(contentType, req.QRData)
		if err != nil {
			return domain.ShortenInput{}, err
		}
	}

	in.ExpiresAt, err = ParseExpiry(req.ExpiresAt)
	if err != nil {
		return domain.ShortenInput{}, err
	}
	return in, nil
}

// ParseExpiry accepts RFC3339 or the datetime-local form. Empty means no expiry.
func ParseExpiry(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, localDateTimeLayout} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, domain.Invalidf("expires_at %q is not a valid timestamp", raw)
}

func (h *HTTPHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	switch {
	case errors.Is(err, domain.ErrRetriesExhausted):
		msg = domain.ErrRetriesExhausted.Error()
	case status == http.StatusInternalServerError:
		h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "request_id", RequestID(r.Context()), "error", err)
		msg = "internal server error"
	}
	writeError(w, status, msg)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrGone):
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
