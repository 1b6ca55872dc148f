// Package qr talks to the external QR rendering service.
package qr

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/wadjakorntonsri/go-qr-shortener/pkg/core/domain"
	"github.com/wadjakorntonsri/go-qr-shortener/pkg/ports"
)

const defaultTimeout = 5 * time.Second

// Options configures the client. An empty BaseURL disables rendering.
type Options struct {
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(opts Options, logger *slog.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: &http.Client{Timeout: opts.Timeout},
		logger:     logger,
	}
}

type renderRequest struct {
	ContentType   domain.ContentType     `json:"contentType"`
	Data          domain.QRContent       `json:"data"`
	Customization domain.QRCustomization `json:"customization"`
}

type renderResponse struct {
	URL   string `json:"url"`
	Image string `json:"image,omitempty"`
	Mime  string `json:"mime,omitempty"`
}

// Render makes exactly one call to POST {BaseURL}/qr. Transport errors,
// non-2xx responses, undecodable bodies and responses without a url all
// come back as a failed result; the error is only logged.
func (c *Client) Render(ctx context.Context, content domain.QRContent, customization *domain.QRCustomization) domain.QRResult {
	if c.baseURL == "" || content == nil {
		return domain.QRFailedResult()
	}

	reqBody := renderRequest{
		ContentType:   content.ContentType(),
		Data:          content,
		Customization: domain.DefaultQRCustomization(),
	}
	if customization != nil {
		reqBody.Customization = *customization
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		c.logger.Warn("qr request encode failed", "error", err)
		return domain.QRFailedResult()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/qr", bytes.NewReader(body))
	if err != nil {
		c.logger.Warn("qr request build failed", "error", err)
		return domain.QRFailedResult()
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("qr service unreachable", "error", err)
		return domain.QRFailedResult()
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		c.logger.Warn("qr service returned error status", "status", resp.StatusCode)
		return domain.QRFailedResult()
	}

	var out renderResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		c.logger.Warn("qr response decode failed", "error", err)
		return domain.QRFailedResult()
	}

	return domain.QRReadyResult(out.URL)
}

// Ensure interface compliance
var _ ports.QRRenderer = (*Client)(nil)
