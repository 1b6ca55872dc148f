package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/tursodatabase/libsql-client-go/libsql" // Turso driver
	msqlite "modernc.org/sqlite"                         // Local SQLite driver
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/wadjakorntonsri/go-qr-shortener/pkg/core/domain"
	"github.com/wadjakorntonsri/go-qr-shortener/pkg/ports"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbURL string) (*SQLiteRepository, error) {
	driverName := "sqlite"
	if strings.Contains(dbURL, "libsql://") || strings.Contains(dbURL, "wss://") {
		driverName = "libsql"
	}

	db, err := sql.Open(driverName, dbURL)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func migrate(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS links (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		short_code TEXT NOT NULL UNIQUE,
		long_url TEXT NOT NULL,
		alias TEXT,
		expires_at DATETIME,
		content_type TEXT NOT NULL DEFAULT 'url',
		qr_status TEXT NOT NULL DEFAULT 'failed',
		qr_url TEXT,
		qr_config JSON,
		clicks INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		CHECK (qr_status <> 'failed' OR qr_url IS NULL)
	);
	CREATE INDEX IF NOT EXISTS idx_links_short_code ON links(short_code);
	`
	_, err := db.Exec(query)
	return err
}

const selectColumns = `id, short_code, long_url, alias, expires_at, content_type, qr_status, qr_url, qr_config, clicks, created_at`

func (r *SQLiteRepository) Create(ctx context.Context, link *domain.Link) error {
	query := `INSERT INTO links (short_code, long_url, alias, expires_at, content_type, qr_status, qr_url, qr_config, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	qrConfig, err := encodeQRConfig(link.QRConfig)
	if err != nil {
		return err
	}

	var expiresAt sql.NullTime
	if link.ExpiresAt != nil {
		expiresAt = sql.NullTime{Time: link.ExpiresAt.UTC(), Valid: true}
	}
	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now()
	}

	res, err := r.db.ExecContext(ctx, query,
		link.ShortCode, link.LongURL, link.Alias, expiresAt, string(link.ContentType),
		string(link.QRStatus), link.QRURL, qrConfig, link.CreatedAt.UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", domain.ErrUniqueViolation, link.ShortCode)
		}
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	link.ID = id
	return nil
}

func (r *SQLiteRepository) GetByShortCode(ctx context.Context, code string) (*domain.Link, error) {
	query := `SELECT ` + selectColumns + ` FROM links WHERE short_code = ?`

	link, err := scanLink(r.db.QueryRowContext(ctx, query, code))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return link, nil
}

func (r *SQLiteRepository) IncrementClicks(ctx context.Context, code string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE links SET clicks = clicks + 1 WHERE short_code = ?`, code)
	return err
}

func (r *SQLiteRepository) Dump(ctx context.Context) ([]domain.Link, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM links ORDER BY id`)
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

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLink(s scanner) (*domain.Link, error) {
	var (
		l           domain.Link
		alias       sql.NullString
		expiresAt   sql.NullTime
		contentType string
		qrStatus    string
		qrURL       sql.NullString
		qrConfig    []byte
	)
	err := s.Scan(&l.ID, &l.ShortCode, &l.LongURL, &alias, &expiresAt, &contentType,
		&qrStatus, &qrURL, &qrConfig, &l.Clicks, &l.CreatedAt)
	if err != nil {
		return nil, err
	}

	l.ContentType = domain.ContentType(contentType)
	l.QRStatus = domain.QRStatus(qrStatus)
	if alias.Valid {
		l.Alias = &alias.String
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		l.ExpiresAt = &t
	}
	if qrURL.Valid {
		l.QRURL = &qrURL.String
	}
	if len(qrConfig) > 0 {
		var cfg domain.QRCustomization
		// qr_config is an audit snapshot; an unreadable one is dropped, not fatal
		if json.Unmarshal(qrConfig, &cfg) == nil {
			l.QRConfig = &cfg
		}
	}
	return &l, nil
}

func encodeQRConfig(cfg *domain.QRCustomization) (any, error) {
	if cfg == nil {
		return nil, nil
	}
	b, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	// libsql reports constraint failures as plain text
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Ensure interface compliance
var _ ports.LinkRepository = (*SQLiteRepository)(nil)
