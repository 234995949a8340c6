/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package assets measures asset sources before they enter a scene.
package assets

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"paperboard/internal/editor"
	"paperboard/internal/log"
	"paperboard/internal/shape"
)

var (
	ErrUnsupportedSource = errors.New("assets: unsupported source")
	ErrBadDataURI        = errors.New("assets: malformed data uri")
)

// Open returns the bytes behind src: a data URI, a file:// URL or a local
// path. Remote URLs and blob handles are not resolvable here.
func Open(ctx context.Context, src string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch {
	case strings.HasPrefix(src, "data:"):
		b, _, err := DecodeDataURI(src)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(bytes.NewReader(b)), nil
	case strings.HasPrefix(src, "file://"):
		u, err := url.Parse(src)
		if err != nil {
			return nil, fmt.Errorf("assets: %w", err)
		}
		return os.Open(u.Path)
	case strings.Contains(src, "://"), strings.HasPrefix(src, "blob:"):
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, scheme(src))
	default:
		return os.Open(src)
	}
}

func scheme(src string) string {
	if i := strings.Index(src, ":"); i > 0 {
		return src[:i]
	}
	return src
}

// DecodeDataURI returns the payload and media type of an RFC 2397 data URI.
func DecodeDataURI(src string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(src, "data:")
	if !ok {
		return nil, "", ErrBadDataURI
	}
	meta, data, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", ErrBadDataURI
	}
	mime, isBase64 := strings.CutSuffix(meta, ";base64")
	if mime == "" {
		mime = "text/plain"
	}
	if isBase64 {
		b, err := base64.StdEncoding.DecodeString(strings.TrimSpace(data))
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrBadDataURI, err)
		}
		return b, mime, nil
	}
	s, err := url.PathUnescape(data)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrBadDataURI, err)
	}
	return []byte(s), mime, nil
}

// Measure returns the intrinsic pixel size of the image behind src.
func Measure(ctx context.Context, src string) (float64, float64, error) {
	rc, err := Open(ctx, src)
	if err != nil {
		return 0, 0, err
	}
	defer rc.Close()
	cfg, format, err := image.DecodeConfig(rc)
	if err != nil {
		return 0, 0, fmt.Errorf("assets: decode config: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	log.WithComponent("assets").Debug("measured", slog.String("format", format), slog.Int("w", cfg.Width), slog.Int("h", cfg.Height))
	return float64(cfg.Width), float64(cfg.Height), nil
}

// Decode loads the full image behind src.
func Decode(ctx context.Context, src string) (image.Image, error) {
	rc, err := Open(ctx, src)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	img, _, err := image.Decode(rc)
	if err != nil {
		return nil, fmt.Errorf("assets: decode: %w", err)
	}
	return img, nil
}

// BlobSource resolves blob handles; storage.BlobStore satisfies it.
type BlobSource interface {
	GetBlob(ctx context.Context, assetID string) (data []byte, mime string, found bool, err error)
}

// DecoderWith returns a Decode variant that looks up "blob:<id>" sources
// in blobs and defers everything else to Decode.
func DecoderWith(blobs BlobSource) func(ctx context.Context, src string) (image.Image, error) {
	return func(ctx context.Context, src string) (image.Image, error) {
		id, ok := strings.CutPrefix(src, "blob:")
		if !ok || blobs == nil {
			return Decode(ctx, src)
		}
		data, _, found, err := blobs.GetBlob(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("assets: blob %s: %w", id, err)
		}
		if !found {
			return nil, fmt.Errorf("%w: blob %s not found", ErrUnsupportedSource, id)
		}
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("assets: decode: %w", err)
		}
		return img, nil
	}
}

// Prepare fills in missing dimensions by measuring the source and then adds
// the asset to the editor. The asset is not created when measuring fails.
func Prepare(ctx context.Context, ed *editor.Editor, a shape.Asset) (shape.Asset, error) {
	if a.Width <= 0 || a.Height <= 0 {
		w, h, err := Measure(ctx, a.Src)
		if err != nil {
			return shape.Asset{}, err
		}
		a.Width, a.Height = w, h
	}
	return ed.CreateAsset(a), nil
}
