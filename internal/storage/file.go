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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	applog "paperboard/internal/log"
)

const (
	BackupsDirName = "backups"
	sceneExt       = ".scene.json"
	backupStamp    = "20060102-150405.000"
)

// FileStore keeps one JSON file per context under Root. Every save copies
// the previous file to a timestamped backup first; a corrupt or missing
// file falls back to the latest backup on load.
type FileStore struct {
	Root string
	// KeepBackups bounds the number of backups per context; 0 keeps all.
	KeepBackups int

	mu  sync.Mutex
	log *slog.Logger
}

var _ Store = (*FileStore)(nil)

// OpenFileStore creates root and its backups directory if needed.
func OpenFileStore(root string) (*FileStore, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("root path is required")
	}
	if err := os.MkdirAll(filepath.Join(root, BackupsDirName), 0o755); err != nil {
		return nil, fmt.Errorf("create store root: %w", err)
	}
	return &FileStore{Root: root, log: applog.WithComponent("storage")}, nil
}

func (f *FileStore) Close() error { return nil }

// fileName maps a context id to a safe file name.
func fileName(contextID string) string {
	var b strings.Builder
	for _, r := range contextID {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			fmt.Fprintf(&b, "%%%02x", r)
		}
	}
	name := b.String()
	if name == "" || name == "." || name == ".." {
		name = "_" + name
	}
	return name + sceneExt
}

func (f *FileStore) path(contextID string) string {
	return filepath.Join(f.Root, fileName(contextID))
}

func (f *FileStore) Load(_ context.Context, contextID string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.path(contextID)
	b, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		// A missing file with backups left behind means an interrupted save
		if bk, berr := f.latestBackup(contextID); berr == nil {
			f.log.Warn("scene missing; using latest backup", slog.String("context", contextID))
			return bk, true, nil
		}
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read scene: %w", err)
	}
	if !json.Valid(b) {
		bk, berr := f.latestBackup(contextID)
		if berr != nil {
			return nil, false, fmt.Errorf("parse scene %s: invalid JSON; backup attempt: %v", contextID, berr)
		}
		f.log.Warn("scene corrupt; using latest backup", slog.String("context", contextID))
		return bk, true, nil
	}
	return b, true, nil
}

// Save writes doc with transactional semantics and a timestamped backup of
// the previous file (if present).
func (f *FileStore) Save(_ context.Context, contextID string, doc []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	target := f.path(contextID)
	bdir := filepath.Join(f.Root, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return fmt.Errorf("ensure backups dir: %w", err)
	}
	if _, statErr := os.Stat(target); statErr == nil {
		stamp := time.Now().Format(backupStamp)
		bpath := filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", filepath.Base(target), stamp))
		if cerr := copyFile(target, bpath); cerr != nil {
			return fmt.Errorf("backup current scene: %w", cerr)
		}
	}

	// Write to a temp file in the same directory, then rename over the target
	temp := filepath.Join(f.Root, fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(target), os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, doc); werr != nil {
		return fmt.Errorf("write temp scene: %w", werr)
	}
	// On Windows, replace by removing destination first if needed
	if _, err := os.Stat(target); err == nil {
		_ = os.Remove(target)
	}
	if rerr := os.Rename(temp, target); rerr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace scene: %w", rerr)
	}
	if f.KeepBackups > 0 {
		if err := f.pruneBackups(contextID, f.KeepBackups); err != nil {
			f.log.Warn("prune backups failed", slog.String("context", contextID), slog.Any("err", err))
		}
	}
	return nil
}

// Backups lists the backup files of a context, oldest first.
func (f *FileStore) Backups(contextID string) ([]string, error) {
	bdir := filepath.Join(f.Root, BackupsDirName)
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	prefix := fileName(contextID) + "."
	var out []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".bak") {
			out = append(out, filepath.Join(bdir, name))
		}
	}
	sort.Strings(out) // timestamp in name yields lexicographic order
	return out, nil
}

func (f *FileStore) latestBackup(contextID string) ([]byte, error) {
	candidates, err := f.Backups(contextID)
	if err != nil {
		return nil, err
	}
	// Newest valid backup wins
	for i := len(candidates) - 1; i >= 0; i-- {
		b, err := os.ReadFile(candidates[i])
		if err == nil && json.Valid(b) {
			return b, nil
		}
	}
	return nil, errors.New("no backups found")
}

func (f *FileStore) pruneBackups(contextID string, keep int) error {
	list, err := f.Backups(contextID)
	if err != nil {
		return err
	}
	for len(list) > keep {
		if err := os.Remove(list[0]); err != nil {
			return err
		}
		list = list[1:]
	}
	return nil
}

// writeFileSync writes data to a file, ensures it is flushed to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// copyFile copies a file from src to dst (overwrites dst if exists).
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}
