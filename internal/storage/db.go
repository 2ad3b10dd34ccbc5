package storage

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"itemfinder/internal"
)

const (
	keySourceURL   = "config.source_url"
	keyLastUpdated = "config.last_updated"
	keyAuthExpiry  = "auth.expires_at"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS fetch_log (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  sourceUrl TEXT NOT NULL,
  itemCount INTEGER NOT NULL,
  outcome TEXT NOT NULL,
  tookMs REAL NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

// GetConfig reads the stored data-source configuration. A missing URL comes
// back as a nil SourceURL, not an error.
func (d *DB) GetConfig() (internal.AppConfig, error) {
	cfg := internal.AppConfig{}

	url, err := d.GetMetadata(keySourceURL)
	if err != nil {
		return cfg, err
	}
	cfg.SourceURL = url

	updated, err := d.GetMetadata(keyLastUpdated)
	if err != nil {
		return cfg, err
	}
	if updated != nil {
		if parsed, err := time.Parse(time.RFC3339, *updated); err == nil {
			cfg.LastUpdated = parsed
		}
	}

	return cfg, nil
}

func (d *DB) SaveConfig(url string) error {
	if err := d.SetMetadata(keySourceURL, url); err != nil {
		return err
	}
	return d.SetMetadata(keyLastUpdated, time.Now().UTC().Format(time.RFC3339))
}

// GetAuthValid reports whether a granted session is still within its expiry.
// An expired session is cleared on read.
func (d *DB) GetAuthValid(now time.Time) (bool, error) {
	value, err := d.GetMetadata(keyAuthExpiry)
	if err != nil {
		return false, err
	}
	if value == nil {
		return false, nil
	}

	expiry, err := time.Parse(time.RFC3339, *value)
	if err != nil || now.After(expiry) {
		_ = d.RevokeAuth()
		return false, nil
	}
	return true, nil
}

func (d *DB) GrantAuth(expiry time.Time) error {
	return d.SetMetadata(keyAuthExpiry, expiry.UTC().Format(time.RFC3339))
}

func (d *DB) RevokeAuth() error {
	_, err := d.conn.Exec(`DELETE FROM metadata WHERE key = ?`, keyAuthExpiry)
	return err
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func (d *DB) InsertFetchLog(traceID, sourceURL string, itemCount int, outcome string, tookMs float64) error {
	_, err := d.conn.Exec(`
INSERT INTO fetch_log (traceId, sourceUrl, itemCount, outcome, tookMs)
VALUES (?, ?, ?, ?, ?)
`, traceID, sourceURL, itemCount, outcome, tookMs)
	return err
}

func (d *DB) ListFetchLog(limit int) ([]internal.FetchLogRow, error) {
	rows, err := d.conn.Query(`
SELECT id, traceId, sourceUrl, itemCount, outcome, tookMs, createdAt
FROM fetch_log ORDER BY id DESC LIMIT ?
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.FetchLogRow
	for rows.Next() {
		var row internal.FetchLogRow
		if err := rows.Scan(&row.ID, &row.TraceID, &row.SourceURL, &row.ItemCount, &row.Outcome, &row.TookMs, &row.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
