/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

func openTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLite_LoadMissing(t *testing.T) {
	s := openTestSQLite(t)
	doc, found, err := s.Load(context.Background(), "pdf-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if found || doc != nil {
		t.Fatalf("expected not found, got found=%v doc=%q", found, doc)
	}
}

func TestSQLite_SaveLoadRevision(t *testing.T) {
	s := openTestSQLite(t)
	ctx := context.Background()
	if filepath.Base(s.Path()) != DefaultDBFileName {
		t.Fatalf("unexpected db path %s", s.Path())
	}
	for i := 1; i <= 3; i++ {
		if err := s.Save(ctx, "pdf-1", []byte(fmt.Sprintf(`{"n":%d}`, i))); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}
	doc, found, err := s.Load(ctx, "pdf-1")
	if err != nil || !found {
		t.Fatalf("load: found=%v err=%v", found, err)
	}
	if string(doc) != `{"n":3}` {
		t.Fatalf("last write should win, got %s", doc)
	}
	rev, err := s.Revision(ctx, "pdf-1")
	if err != nil {
		t.Fatalf("revision: %v", err)
	}
	if rev != 3 {
		t.Fatalf("expected revision 3, got %d", rev)
	}
	if err := s.Save(ctx, "group-9", []byte(`{}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	ids, err := s.Contexts(ctx)
	if err != nil {
		t.Fatalf("contexts: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 contexts, got %v", ids)
	}
}

func TestSQLite_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	s, err := OpenSQLite(ctx, filepath.Join(dir, "nested", "db.sqlite"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Save(ctx, "c", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	_ = s.Close()
	s2, err := OpenSQLite(ctx, filepath.Join(dir, "nested", "db.sqlite"))
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	doc, found, err := s2.Load(ctx, "c")
	if err != nil || !found || string(doc) != `{"a":1}` {
		t.Fatalf("reload: %q found=%v err=%v", doc, found, err)
	}
	var schema int
	if err := s2.DB().QueryRow(`SELECT schema FROM version WHERE id=1`).Scan(&schema); err != nil {
		t.Fatalf("read schema: %v", err)
	}
	if schema != schemaVersion {
		t.Fatalf("expected schema %d, got %d", schemaVersion, schema)
	}
}

func TestSQLite_MigratesV1(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.sqlite")
	db, err := sql.Open("sqlite", "file:"+filepath.ToSlash(path))
	if err != nil {
		t.Fatalf("open raw: %v", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	stmts := []string{
		`CREATE TABLE version (id INTEGER PRIMARY KEY CHECK(id=1), schema INTEGER NOT NULL, app TEXT, created_at TEXT NOT NULL, updated_at TEXT NOT NULL)`,
		`INSERT INTO version VALUES(1, 1, 'old', '` + now + `', '` + now + `')`,
		`CREATE TABLE scenes (context_id TEXT PRIMARY KEY, doc TEXT NOT NULL, updated_at TEXT NOT NULL)`,
		`INSERT INTO scenes VALUES('legacy', '{"v":1}', '` + now + `')`,
	}
	for _, q := range stmts {
		if _, err := db.Exec(q); err != nil {
			t.Fatalf("seed %q: %v", q, err)
		}
	}
	_ = db.Close()

	s, err := OpenSQLite(context.Background(), path)
	if err != nil {
		t.Fatalf("open migrated: %v", err)
	}
	defer s.Close()
	has, err := hasColumn(context.Background(), s.DB(), "scenes", "revision")
	if err != nil || !has {
		t.Fatalf("revision column missing after migration: has=%v err=%v", has, err)
	}
	if err := s.Save(context.Background(), "legacy", []byte(`{"v":2}`)); err != nil {
		t.Fatalf("save after migration: %v", err)
	}
	rev, _ := s.Revision(context.Background(), "legacy")
	if rev != 1 {
		t.Fatalf("expected revision 1 after first save on migrated row, got %d", rev)
	}
}

func TestSQLite_Blobs(t *testing.T) {
	s := openTestSQLite(t)
	ctx := context.Background()
	data := []byte{0x89, 'P', 'N', 'G'}
	if err := s.PutBlob(ctx, "asset_1", "image/png", data); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, mime, found, err := s.GetBlob(ctx, "asset_1")
	if err != nil || !found {
		t.Fatalf("get: found=%v err=%v", found, err)
	}
	if !bytes.Equal(got, data) || mime != "image/png" {
		t.Fatalf("unexpected blob %v %s", got, mime)
	}
	if err := s.DeleteBlob(ctx, "asset_1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, _, found, _ := s.GetBlob(ctx, "asset_1"); found {
		t.Fatalf("blob should be gone")
	}
}

func TestSQLite_PreviewsInvalidatedOnSave(t *testing.T) {
	s := openTestSQLite(t)
	ctx := context.Background()
	if err := s.PutPreview(ctx, "pdf-1", 64, 48, []byte("png")); err != nil {
		t.Fatalf("put preview: %v", err)
	}
	b, found, err := s.GetPreview(ctx, "pdf-1", 64, 48)
	if err != nil || !found || string(b) != "png" {
		t.Fatalf("get preview: %q found=%v err=%v", b, found, err)
	}
	if _, found, _ := s.GetPreview(ctx, "pdf-1", 32, 24); found {
		t.Fatalf("other size must miss")
	}
	if err := s.Save(ctx, "pdf-1", []byte(`{}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, found, _ := s.GetPreview(ctx, "pdf-1", 64, 48); found {
		t.Fatalf("preview should be invalidated by save")
	}
	if err := s.PutPreview(ctx, "pdf-1", 0, 10, []byte("x")); err == nil {
		t.Fatalf("expected error for empty size")
	}
}

func TestSQLite_PreviewEviction(t *testing.T) {
	t.Setenv(PreviewsMaxBytesEnv, "10")
	s := openTestSQLite(t)
	ctx := context.Background()
	if err := s.PutPreview(ctx, "a", 1, 1, []byte("123456")); err != nil {
		t.Fatalf("put a: %v", err)
	}
	// Force distinct access times
	time.Sleep(5 * time.Millisecond)
	if err := s.PutPreview(ctx, "b", 1, 1, []byte("123456")); err != nil {
		t.Fatalf("put b: %v", err)
	}
	total, err := s.TotalPreviewBytes(ctx)
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if total > 10 {
		t.Fatalf("cap not enforced, total=%d", total)
	}
	if _, found, _ := s.GetPreview(ctx, "a", 1, 1); found {
		t.Fatalf("oldest preview should be evicted")
	}
	if _, found, _ := s.GetPreview(ctx, "b", 1, 1); !found {
		t.Fatalf("newest preview should survive")
	}
}

func TestMaxPreviewsBytesFromEnv(t *testing.T) {
	t.Setenv(PreviewsMaxBytesEnv, "")
	if got := MaxPreviewsBytesFromEnv(); got != defaultPreviewsMaxBytes {
		t.Fatalf("default: %d", got)
	}
	t.Setenv(PreviewsMaxBytesEnv, "-3")
	if got := MaxPreviewsBytesFromEnv(); got != defaultPreviewsMaxBytes {
		t.Fatalf("negative should fall back: %d", got)
	}
	t.Setenv(PreviewsMaxBytesEnv, "4096")
	if got := MaxPreviewsBytesFromEnv(); got != 4096 {
		t.Fatalf("explicit: %d", got)
	}
}

func TestOpen_Drivers(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := Open(ctx, Config{Path: dir})
	if err != nil {
		t.Fatalf("default driver: %v", err)
	}
	if _, ok := s.(*SQLiteStore); !ok {
		t.Fatalf("expected sqlite store, got %T", s)
	}
	_ = s.Close()
	fs, err := Open(ctx, Config{Driver: "FILE", Path: filepath.Join(dir, "files")})
	if err != nil {
		t.Fatalf("file driver: %v", err)
	}
	if _, ok := fs.(*FileStore); !ok {
		t.Fatalf("expected file store, got %T", fs)
	}
	if _, err := Open(ctx, Config{Driver: "mongo"}); err == nil {
		t.Fatalf("expected unknown driver error")
	}
	if _, err := Open(ctx, Config{Driver: DriverPostgres}); err == nil {
		t.Fatalf("expected error for empty dsn")
	}
}
