package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wadjakorntonsri/go-qr-shortener/pkg/bootstrap"
	"github.com/wadjakorntonsri/go-qr-shortener/pkg/config"
	"github.com/wadjakorntonsri/go-qr-shortener/pkg/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// cli holds the application built once the root command's flags are parsed.
type cli struct {
	app *bootstrap.App
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "shortener",
		Short:         "Manage short links from the command line",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" {
				return nil
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			// stdout is reserved for command output
			log := logger.NewWithWriter(os.Stderr, cfg.LogLevel, cfg.LogFormat)
			app, err := bootstrap.New(cmd.Context(), cfg, log)
			if err != nil {
				return fmt.Errorf("failed to connect to db: %w", err)
			}
			c.app = app
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if c.app == nil {
				return nil
			}
			return c.app.Close()
		},
	}
	root.SetContext(context.Background())

	root.AddCommand(c.newCreateCmd(), c.newExportCmd(), c.newImportCmd())
	return root
}
