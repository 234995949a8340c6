/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package storage implements the persistence boundary for scene documents.
// A scene is stored as one JSON document per context id (a document id or a
// group id). Three drivers exist: an embedded SQLite database (default), a
// directory of JSON files with transactional writes and timestamped backups,
// and PostgreSQL.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Driver names accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverFile     = "file"
	DriverPostgres = "postgres"
)

var ErrUnknownDriver = errors.New("storage: unknown driver")

// Store loads and saves serialized scene documents. Load reports found=false
// for a context that was never saved. Save is last-write-wins.
type Store interface {
	Load(ctx context.Context, contextID string) (doc []byte, found bool, err error)
	Save(ctx context.Context, contextID string, doc []byte) error
	Close() error
}

// BlobStore keeps binary asset content addressed by asset id, for sources
// that are blob handles rather than URLs or data URIs.
type BlobStore interface {
	PutBlob(ctx context.Context, assetID, mime string, data []byte) error
	GetBlob(ctx context.Context, assetID string) (data []byte, mime string, found bool, err error)
	DeleteBlob(ctx context.Context, assetID string) error
}

// PreviewCache caches rendered scene previews by context and size.
type PreviewCache interface {
	GetPreview(ctx context.Context, contextID string, w, h int) ([]byte, bool, error)
	PutPreview(ctx context.Context, contextID string, w, h int, png []byte) error
}

// Config selects and configures a driver.
type Config struct {
	Driver string
	// Path is the SQLite database file or the FileStore root directory.
	Path string
	// PostgresDSN is a pgx connection string; PostgresPassword, when set,
	// overrides the password in it.
	PostgresDSN      string
	PostgresPassword string
}

// Open returns the store for cfg.Driver; an empty driver means SQLite.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverSQLite:
		return OpenSQLite(ctx, cfg.Path)
	case DriverFile:
		return OpenFileStore(cfg.Path)
	case DriverPostgres:
		return OpenPostgres(ctx, cfg.PostgresDSN, cfg.PostgresPassword)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}
