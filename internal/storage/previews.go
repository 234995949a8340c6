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
	"strconv"
	"time"

	applog "paperboard/internal/log"
)

const (
	// PreviewsMaxBytesEnv caps the total size of cached previews.
	PreviewsMaxBytesEnv     = "PB_PREVIEWS_MAX_BYTES"
	defaultPreviewsMaxBytes = 256 * 1024 * 1024

	// fixed width so that timestamps sort lexicographically
	accessLayout = "2006-01-02T15:04:05.000000000Z"
)

// GetPreview returns a cached PNG for the context at w x h and updates last_access.
func (s *SQLiteStore) GetPreview(ctx context.Context, contextID string, w, h int) ([]byte, bool, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, `SELECT png FROM previews WHERE context_id=? AND w=? AND h=?`, contextID, w, h).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query preview: %w", err)
	}
	// touch
	now := time.Now().UTC().Format(accessLayout)
	_, _ = s.db.ExecContext(ctx, `UPDATE previews SET last_access=? WHERE context_id=? AND w=? AND h=?`, now, contextID, w, h)
	return blob, true, nil
}

// PutPreview upserts a preview and enforces the cache size cap via LRU eviction.
func (s *SQLiteStore) PutPreview(ctx context.Context, contextID string, w, h int, png []byte) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("invalid preview size %dx%d", w, h)
	}
	now := time.Now().UTC().Format(accessLayout)
	_, err := s.db.ExecContext(ctx, `INSERT INTO previews(context_id,w,h,png,size,updated_at,last_access)
		VALUES(?,?,?,?,?,?,?)
		ON CONFLICT(context_id,w,h) DO UPDATE SET png=excluded.png, size=excluded.size, updated_at=excluded.updated_at, last_access=excluded.last_access`,
		contextID, w, h, png, len(png), now, now)
	if err != nil {
		return fmt.Errorf("upsert preview: %w", err)
	}
	if capBytes := MaxPreviewsBytesFromEnv(); capBytes > 0 {
		if err := EvictPreviewsToFit(ctx, s.db, capBytes); err != nil {
			return err
		}
	}
	return nil
}

// TotalPreviewBytes returns total bytes tracked by previews.size
func (s *SQLiteStore) TotalPreviewBytes(ctx context.Context) (int64, error) {
	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(size),0) FROM previews`).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

type previewKey struct {
	contextID string
	w, h      int
}

// EvictPreviewsToFit deletes least-recently-used rows until total size <= capBytes.
func EvictPreviewsToFit(ctx context.Context, db *sql.DB, capBytes int64) error {
	var total int64
	if err := db.QueryRowContext(ctx, `SELECT COALESCE(SUM(size),0) FROM previews`).Scan(&total); err != nil {
		return fmt.Errorf("sum previews size: %w", err)
	}
	if total <= capBytes {
		return nil
	}
	// Oldest first, NULLs first
	rows, err := db.QueryContext(ctx, `SELECT context_id, w, h, size FROM previews ORDER BY
		CASE WHEN last_access IS NULL THEN 0 ELSE 1 END ASC, last_access ASC`)
	if err != nil {
		return fmt.Errorf("select victims: %w", err)
	}
	var victims []previewKey
	cur := total
	for rows.Next() {
		var k previewKey
		var sz int64
		if err := rows.Scan(&k.contextID, &k.w, &k.h, &sz); err != nil {
			_ = rows.Close()
			return err
		}
		victims = append(victims, k)
		cur -= sz
		if cur <= capBytes {
			break
		}
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	// Close the cursor before writing
	if err := rows.Close(); err != nil {
		return err
	}
	if len(victims) == 0 {
		return nil
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("evict begin: %w", err)
	}
	for _, k := range victims {
		if _, err := tx.ExecContext(ctx, `DELETE FROM previews WHERE context_id=? AND w=? AND h=?`, k.contextID, k.w, k.h); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("evict delete: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("evict commit: %w", err)
	}
	applog.WithComponent("storage").Debug("previews evicted", slog.Int("rows", len(victims)), slog.Int64("cap", capBytes))
	return nil
}

// MaxPreviewsBytesFromEnv reads PB_PREVIEWS_MAX_BYTES, defaulting to 256MB if unset.
func MaxPreviewsBytesFromEnv() int64 {
	v := os.Getenv(PreviewsMaxBytesEnv)
	if v == "" {
		return defaultPreviewsMaxBytes
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return defaultPreviewsMaxBytes
	}
	return n
}
