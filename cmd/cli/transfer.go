package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/wadjakorntonsri/go-qr-shortener/pkg/core/domain"
	"github.com/wadjakorntonsri/go-qr-shortener/pkg/ports"
)

type importResult struct {
	Imported int
	Skipped  int
}

func exportLinks(ctx context.Context, repo ports.LinkRepository, w io.Writer) error {
	links, err := repo.Dump(ctx)
	if err != nil {
		return fmt.Errorf("dump links: %w", err)
	}
	if links == nil {
		links = []domain.Link{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(links)
}

// importLinks recreates exported links under their original codes. Click
// counts start from zero.
func importLinks(ctx context.Context, repo ports.LinkRepository, r io.Reader) (importResult, error) {
	var links []domain.Link
	if err := json.NewDecoder(r).Decode(&links); err != nil {
		return importResult{}, fmt.Errorf("decode import file: %w", err)
	}

	var res importResult
	for i := range links {
		link := links[i]
		link.ID = 0
		link.Clicks = 0
		if link.ContentType == "" {
			link.ContentType = domain.ContentURL
		}
		if link.QRStatus != domain.QRReady || link.QRURL == nil {
			link.QRStatus = domain.QRFailed
			link.QRURL = nil
		}

		err := repo.Create(ctx, &link)
		switch {
		case err == nil:
			res.Imported++
		case errors.Is(err, domain.ErrUniqueViolation):
			res.Skipped++
		default:
			return res, fmt.Errorf("import %s: %w", link.ShortCode, err)
		}
	}
	return res, nil
}
