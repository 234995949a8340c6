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
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	applog "paperboard/internal/log"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore keeps scene documents in PostgreSQL through the pgx stdlib driver.
type PostgresStore struct {
	db  *sql.DB
	log *slog.Logger
}

var (
	_ Store     = (*PostgresStore)(nil)
	_ BlobStore = (*PostgresStore)(nil)
)

// OpenPostgres connects using dsn, applies the embedded migrations and
// returns the store. A non-empty password replaces the one in dsn.
func OpenPostgres(ctx context.Context, dsn, password string) (*PostgresStore, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "postgres_open")
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("postgres dsn is required")
	}
	cc, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if password != "" {
		cc.Password = password
	}
	db := stdlib.OpenDB(*cc)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if err := applyMigrations(ctx, db, l); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	l.Info("postgres store ready", slog.String("host", cc.Host), slog.String("database", cc.Database))
	return &PostgresStore{db: db, log: applog.WithComponent("storage")}, nil
}

// DB exposes the handle for maintenance tooling and tests.
func (p *PostgresStore) DB() *sql.DB { return p.db }

func (p *PostgresStore) Close() error { return p.db.Close() }

func (p *PostgresStore) Load(ctx context.Context, contextID string) ([]byte, bool, error) {
	var doc string
	err := p.db.QueryRowContext(ctx, `SELECT doc::text FROM scenes WHERE context_id=$1`, contextID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load scene %s: %w", contextID, err)
	}
	return []byte(doc), true, nil
}

func (p *PostgresStore) Save(ctx context.Context, contextID string, doc []byte) error {
	_, err := p.db.ExecContext(ctx, `INSERT INTO scenes(context_id, doc) VALUES($1, $2::jsonb)
		ON CONFLICT (context_id) DO UPDATE SET doc=EXCLUDED.doc, revision=scenes.revision+1, updated_at=now()`,
		contextID, string(doc))
	if err != nil {
		return fmt.Errorf("save scene %s: %w", contextID, err)
	}
	p.log.Debug("scene saved", slog.String("context", contextID), slog.Int("bytes", len(doc)))
	return nil
}

func (p *PostgresStore) PutBlob(ctx context.Context, assetID, mime string, data []byte) error {
	_, err := p.db.ExecContext(ctx, `INSERT INTO asset_blobs(asset_id, mime, data, size) VALUES($1,$2,$3,$4)
		ON CONFLICT (asset_id) DO UPDATE SET mime=EXCLUDED.mime, data=EXCLUDED.data, size=EXCLUDED.size, updated_at=now()`,
		assetID, mime, data, len(data))
	if err != nil {
		return fmt.Errorf("put blob %s: %w", assetID, err)
	}
	return nil
}

func (p *PostgresStore) GetBlob(ctx context.Context, assetID string) ([]byte, string, bool, error) {
	var data []byte
	var mime sql.NullString
	err := p.db.QueryRowContext(ctx, `SELECT data, mime FROM asset_blobs WHERE asset_id=$1`, assetID).Scan(&data, &mime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", false, nil
	}
	if err != nil {
		return nil, "", false, fmt.Errorf("get blob %s: %w", assetID, err)
	}
	return data, mime.String, true, nil
}

func (p *PostgresStore) DeleteBlob(ctx context.Context, assetID string) error {
	if _, err := p.db.ExecContext(ctx, `DELETE FROM asset_blobs WHERE asset_id=$1`, assetID); err != nil {
		return fmt.Errorf("delete blob %s: %w", assetID, err)
	}
	return nil
}

func applyMigrations(ctx context.Context, db *sql.DB, l *slog.Logger) error {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if name := e.Name(); strings.HasSuffix(strings.ToLower(name), ".sql") {
			files = append(files, name)
		}
	}
	sort.Strings(files)

	// dialect=PostgreSQL
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version BIGINT PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}

	applied := map[int64]bool{}
	rows, err := db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return fmt.Errorf("select schema_migrations: %w", err)
	}
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			_ = rows.Close()
			return err
		}
		applied[v] = true
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	_ = rows.Close()

	for _, fname := range files {
		ver, err := parseVersion(fname)
		if err != nil {
			return err
		}
		if applied[ver] {
			continue
		}
		b, err := migrationsFS.ReadFile(path.Join("migrations", fname))
		if err != nil {
			return err
		}
		if strings.TrimSpace(string(b)) == "" {
			continue
		}
		l.Info("applying migration", slog.String("file", fname))
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, string(b)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", fname, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations(version, name) VALUES($1,$2)`, ver, fname); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", fname, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", fname, err)
		}
	}
	return nil
}

func parseVersion(name string) (int64, error) {
	base := path.Base(name)
	parts := strings.SplitN(base, "_", 2)
	v, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse version from %s: %w", name, err)
	}
	return v, nil
}
