// Package postgres stores links in PostgreSQL through a pgx connection pool.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wadjakorntonsri/go-qr-shortener/pkg/core/domain"
	"github.com/wadjakorntonsri/go-qr-shortener/pkg/ports"
)

const uniqueViolation = "23505"

type Repository struct {
	pool *pgxpool.Pool
}

// New wraps an existing pool. The schema must already be migrated.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Open migrates the database at dsn and connects a pool to it.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (*Repository, error) {
	if err := Migrate(dsn, logger); err != nil {
		return nil, err
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	cfg.MaxConns = 20
	cfg.MinConns = 2
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return New(pool), nil
}

const selectColumns = `id, short_code, long_url, alias, expires_at, content_type, qr_status, qr_url, qr_config, clicks, created_at`

func (r *Repository) Create(ctx context.Context, link *domain.Link) error {
	var qrConfig []byte
	if link.QRConfig != nil {
		b, err := json.Marshal(link.QRConfig)
		if err != nil {
			return err
		}
		qrConfig = b
	}
	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now()
	}

	err := r.pool.QueryRow(ctx, `
		INSERT INTO links (short_code, long_url, alias, expires_at, content_type, qr_status, qr_url, qr_config, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`,
		link.ShortCode, link.LongURL, link.Alias, link.ExpiresAt, string(link.ContentType),
		string(link.QRStatus), link.QRURL, qrConfig, link.CreatedAt,
	).Scan(&link.ID, &link.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s", domain.ErrUniqueViolation, link.ShortCode)
		}
		return fmt.Errorf("insert link: %w", err)
	}
	return nil
}

func (r *Repository) GetByShortCode(ctx context.Context, code string) (*domain.Link, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+selectColumns+` FROM links WHERE short_code = $1`, code)

	link, err := scanLink(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get link: %w", err)
	}
	return link, nil
}

func (r *Repository) IncrementClicks(ctx context.Context, code string) error {
	_, err := r.pool.Exec(ctx, `UPDATE links SET clicks = clicks + 1 WHERE short_code = $1`, code)
	return err
}

func (r *Repository) Dump(ctx context.Context) ([]domain.Link, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+selectColumns+` FROM links ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []domain.Link
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, *l)
	}
	return links, rows.Err()
}

func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

func scanLink(row pgx.Row) (*domain.Link, error) {
	var (
		l           domain.Link
		contentType string
		qrStatus    string
		qrConfig    []byte
	)
	err := row.Scan(&l.ID, &l.ShortCode, &l.LongURL, &l.Alias, &l.ExpiresAt, &contentType,
		&qrStatus, &l.QRURL, &qrConfig, &l.Clicks, &l.CreatedAt)
	if err != nil {
		return nil, err
	}

	l.ContentType = domain.ContentType(contentType)
	l.QRStatus = domain.QRStatus(qrStatus)
	if len(qrConfig) > 0 {
		var cfg domain.QRCustomization
		if json.Unmarshal(qrConfig, &cfg) == nil {
			l.QRConfig = &cfg
		}
	}
	return &l, nil
}

// Ensure interface compliance
var _ ports.LinkRepository = (*Repository)(nil)
