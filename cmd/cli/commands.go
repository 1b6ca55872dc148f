package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wadjakorntonsri/go-qr-shortener/pkg/adapters/handler"
	"github.com/wadjakorntonsri/go-qr-shortener/pkg/core/domain"
)

func (c *cli) newCreateCmd() *cobra.Command {
	var longURL, alias, expires, contentType string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a short link for a long URL",
		Example: `  shortener create --url "https://go.dev/doc"
  shortener create --url "https://go.dev" --alias go --expires 2026-12-31T23:59`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ct, err := domain.ParseContentType(contentType)
			if err != nil {
				return err
			}
			if ct != domain.ContentURL {
				return fmt.Errorf("only url links can be created from the command line")
			}
			expiresAt, err := handler.ParseExpiry(expires)
			if err != nil {
				return err
			}

			link, err := c.app.Links.Shorten(cmd.Context(), domain.ShortenInput{
				LongURL:     longURL,
				Alias:       alias,
				ExpiresAt:   expiresAt,
				ContentType: ct,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Code: %s\n", link.ShortCode)
			fmt.Fprintf(out, "Short URL: %s/%s\n", c.app.Config.BaseURL, link.ShortCode)
			fmt.Fprintf(out, "QR: %s\n", link.QRStatus)
			if link.QRURL != nil {
				fmt.Fprintf(out, "QR URL: %s\n", *link.QRURL)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&longURL, "url", "", "long URL to shorten")
	cmd.Flags().StringVar(&alias, "alias", "", "custom short code")
	cmd.Flags().StringVar(&expires, "expires", "", "expiry time (RFC3339 or 2006-01-02T15:04, UTC)")
	cmd.Flags().StringVar(&contentType, "type", string(domain.ContentURL), "QR content type")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}

func (c *cli) newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Write every link as JSON to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			return exportLinks(cmd.Context(), c.app.Store, cmd.OutOrStdout())
		},
	}
}

func (c *cli) newImportCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import links from an export file, skipping codes that exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			res, err := importLinks(cmd.Context(), c.app.Store, f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d links (%d skipped)\n", res.Imported, res.Skipped)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "JSON file to import")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
