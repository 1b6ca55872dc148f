// Package bootstrap wires configuration into adapters, services and the
// HTTP router. It is shared by the server, the CLI and the serverless entry.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/wadjakorntonsri/go-qr-shortener/pkg/adapters/cache"
	"github.com/wadjakorntonsri/go-qr-shortener/pkg/adapters/handler"
	"github.com/wadjakorntonsri/go-qr-shortener/pkg/adapters/qr"
	"github.com/wadjakorntonsri/go-qr-shortener/pkg/adapters/repository/postgres"
	"github.com/wadjakorntonsri/go-qr-shortener/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/go-qr-shortener/pkg/config"
	"github.com/wadjakorntonsri/go-qr-shortener/pkg/core/codegen"
	"github.com/wadjakorntonsri/go-qr-shortener/pkg/core/services"
	"github.com/wadjakorntonsri/go-qr-shortener/pkg/ports"
)

// Store is a LinkRepository that holds a connection
type Store interface {
	ports.LinkRepository
	io.Closer
}

// CacheStore is a Cache that holds a connection
type CacheStore interface {
	ports.Cache
	io.Closer
}

type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Store   Store
	Cache   CacheStore
	Links   *services.LinkService
	Resolve *services.ResolveService
	Router  *handler.Router
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	store, err := OpenStore(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, err
	}
	cacheStore := OpenCache(ctx, cfg, logger)

	qrClient := qr.NewClient(qr.Options{BaseURL: cfg.QRServiceURL, Timeout: cfg.QRTimeout}, logger)
	if cfg.QRServiceURL == "" {
		logger.Info("QR service not configured, links are created with qr_status=failed")
	}

	links := services.NewLinkService(store, cacheStore, qrClient, codegen.New(), services.Options{
		CodeLength:  cfg.CodeLength,
		MaxAttempts: cfg.MaxAttempts,
	}, logger)
	resolve := services.NewResolveService(store, cacheStore, logger)

	return &App{
		Config:  cfg,
		Logger:  logger,
		Store:   store,
		Cache:   cacheStore,
		Links:   links,
		Resolve: resolve,
		Router:  handler.NewRouter(cfg, links, resolve, logger),
	}, nil
}

// Close waits for background work to finish, then releases connections.
func (a *App) Close() error {
	a.Router.Wait()
	a.Links.Wait()
	a.Resolve.Wait()
	return errors.Join(a.Cache.Close(), a.Store.Close())
}

// OpenStore picks Postgres for postgres:// URLs and SQLite/libsql otherwise.
func OpenStore(ctx context.Context, databaseURL string, logger *slog.Logger) (Store, error) {
	if IsPostgresURL(databaseURL) {
		repo, err := postgres.Open(ctx, databaseURL, logger)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return repo, nil
	}

	repo, err := sqlite.NewSQLiteRepository(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return repo, nil
}

func IsPostgresURL(u string) bool {
	return strings.HasPrefix(u, "postgres://") || strings.HasPrefix(u, "postgresql://")
}

// OpenCache connects to Redis when REDIS_URL is set. An unreachable Redis
// falls back to the in-process cache rather than failing startup.
func OpenCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) CacheStore {
	if cfg.RedisURL == "" {
		return cache.NewMemory(cfg.CacheTTL)
	}
	rdb, err := cache.DialRedis(ctx, cfg.RedisURL, cfg.CacheTTL)
	if err != nil {
		logger.Warn("redis unavailable, using in-process cache", "error", err)
		return cache.NewMemory(cfg.CacheTTL)
	}
	return rdb
}
