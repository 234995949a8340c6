/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	applog "paperboard/internal/log"
	"paperboard/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	// DefaultDBFileName is used when OpenSQLite gets a directory.
	DefaultDBFileName = "paperboard.sqlite"

	// schemaVersion tracks the local SQLite schema.
	// Bump this when you perform breaking schema changes and add migrations.
	schemaVersion = 2
)

// SQLiteStore keeps scenes, asset blobs and preview images in one embedded
// database.
type SQLiteStore struct {
	db   *sql.DB
	path string
	log  *slog.Logger
}

var (
	_ Store        = (*SQLiteStore)(nil)
	_ BlobStore    = (*SQLiteStore)(nil)
	_ PreviewCache = (*SQLiteStore)(nil)
)

// OpenSQLite opens or creates the database at path (a directory gets
// DefaultDBFileName inside it), enables WAL mode and brings the schema up
// to date.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "sqlite_open").With(slog.String("path", path))
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if st, err := os.Stat(path); err == nil && st.IsDir() {
		path = filepath.Join(path, DefaultDBFileName)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		l.Error("create db dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	// Use a URI with shared cache and set busy timeout. Convert to forward slashes for SQLite URI.
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := ensureMetaAndVersion(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure meta/version failed", slog.Any("err", err))
		return nil, err
	}
	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure schema failed", slog.Any("err", err))
		return nil, err
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, err
	}
	l.Info("sqlite store ready")
	return &SQLiteStore{db: db, path: path, log: applog.WithComponent("storage")}, nil
}

// Path returns the database file.
func (s *SQLiteStore) Path() string { return s.path }

// DB exposes the handle for maintenance tooling.
func (s *SQLiteStore) DB() *sql.DB { return s.db }

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) Load(ctx context.Context, contextID string) ([]byte, bool, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM scenes WHERE context_id=?`, contextID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load scene %s: %w", contextID, err)
	}
	return []byte(doc), true, nil
}

// Save upserts the document, bumps its revision and drops cached previews
// of the context, which are stale from now on.
func (s *SQLiteStore) Save(ctx context.Context, contextID string, doc []byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	now := time.Now().UTC().Format(accessLayout)
	if _, err := tx.ExecContext(ctx, `INSERT INTO scenes(context_id, doc, updated_at, revision) VALUES(?,?,?,1)
		ON CONFLICT(context_id) DO UPDATE SET doc=excluded.doc, updated_at=excluded.updated_at, revision=scenes.revision+1`,
		contextID, string(doc), now); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("save scene %s: %w", contextID, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM previews WHERE context_id=?`, contextID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("invalidate previews: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	s.log.Debug("scene saved", slog.String("context", contextID), slog.Int("bytes", len(doc)))
	return nil
}

// Revision returns how many times the context was saved.
func (s *SQLiteStore) Revision(ctx context.Context, contextID string) (int64, error) {
	var rev int64
	err := s.db.QueryRowContext(ctx, `SELECT revision FROM scenes WHERE context_id=?`, contextID).Scan(&rev)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return rev, err
}

// Contexts lists the saved context ids, most recently updated first.
func (s *SQLiteStore) Contexts(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT context_id FROM scenes ORDER BY updated_at DESC, context_id`)
	if err != nil {
		return nil, fmt.Errorf("list scenes: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) PutBlob(ctx context.Context, assetID, mime string, data []byte) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, `INSERT INTO assets_blobs(asset_id, mime, data, size, updated_at) VALUES(?,?,?,?,?)
		ON CONFLICT(asset_id) DO UPDATE SET mime=excluded.mime, data=excluded.data, size=excluded.size, updated_at=excluded.updated_at`,
		assetID, mime, data, len(data), now)
	if err != nil {
		return fmt.Errorf("put blob %s: %w", assetID, err)
	}
	return nil
}

func (s *SQLiteStore) GetBlob(ctx context.Context, assetID string) ([]byte, string, bool, error) {
	var data []byte
	var mime sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT data, mime FROM assets_blobs WHERE asset_id=?`, assetID).Scan(&data, &mime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", false, nil
	}
	if err != nil {
		return nil, "", false, fmt.Errorf("get blob %s: %w", assetID, err)
	}
	return data, mime.String, true, nil
}

func (s *SQLiteStore) DeleteBlob(ctx context.Context, assetID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM assets_blobs WHERE asset_id=?`, assetID); err != nil {
		return fmt.Errorf("delete blob %s: %w", assetID, err)
	}
	return nil
}

func ensureMetaAndVersion(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var curSchema int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&curSchema)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// Fresh DB starts at the current schema
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`, schemaVersion, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		// Keep existing schema for migrations
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// ensureSchema creates the current tables. Tables that already exist keep
// their shape; runMigrations upgrades them.
func ensureSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS scenes (
			context_id TEXT PRIMARY KEY,
			doc        TEXT    NOT NULL,
			updated_at TEXT    NOT NULL,
			revision   INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS assets_blobs (
			asset_id   TEXT PRIMARY KEY,
			mime       TEXT,
			data       BLOB    NOT NULL,
			size       INTEGER NOT NULL DEFAULT 0,
			updated_at TEXT    NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS previews (
			context_id  TEXT    NOT NULL,
			w           INTEGER NOT NULL,
			h           INTEGER NOT NULL,
			png         BLOB    NOT NULL,
			size        INTEGER NOT NULL DEFAULT 0,
			updated_at  TEXT    NOT NULL,
			last_access TEXT,
			PRIMARY KEY(context_id, w, h)
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// runMigrations applies incremental schema migrations up to schemaVersion.
func runMigrations(ctx context.Context, db *sql.DB) error {
	var cur int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if cur > schemaVersion {
		// Do not downgrade
		return nil
	}
	for cur < schemaVersion {
		next := cur + 1
		var stmts []string
		switch next {
		case 2:
			// v2 tracks save revisions and indexes previews for LRU eviction
			has, err := hasColumn(ctx, db, "scenes", "revision")
			if err != nil {
				return err
			}
			if !has {
				stmts = append(stmts, `ALTER TABLE scenes ADD COLUMN revision INTEGER NOT NULL DEFAULT 0`)
			}
			stmts = append(stmts, `CREATE INDEX IF NOT EXISTS idx_previews_access ON previews(last_access)`)
		}
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", next, err)
		}
		for _, q := range stmts {
			if _, err := tx.ExecContext(ctx, q); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d stmt failed: %w", next, err)
			}
		}
		if _, err := tx.ExecContext(ctx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, next, time.Now().UTC().Format(time.RFC3339)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d update version: %w", next, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d commit: %w", next, err)
		}
		cur = next
	}
	return nil
}

func hasColumn(ctx context.Context, db *sql.DB, table, col string) (bool, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%s);`, table))
	if err != nil {
		return false, fmt.Errorf("table_info %s: %w", table, err)
	}
	defer rows.Close()
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return false, err
		}
		if name == col {
			return true, nil
		}
	}
	return false, rows.Err()
}
