/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package assets

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"paperboard/internal/editor"
	"paperboard/internal/shape"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestMeasureDataURI(t *testing.T) {
	src := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes(t, 3, 2))
	w, h, err := Measure(context.Background(), src)
	require.NoError(t, err)
	require.Equal(t, 3.0, w)
	require.Equal(t, 2.0, h)
}

func TestMeasureFiles(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a.png")
	require.NoError(t, os.WriteFile(p, pngBytes(t, 7, 5), 0o644))
	w, h, err := Measure(context.Background(), p)
	require.NoError(t, err)
	require.Equal(t, 7.0, w)
	require.Equal(t, 5.0, h)

	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 9))))
	b := filepath.Join(dir, "b.bmp")
	require.NoError(t, os.WriteFile(b, buf.Bytes(), 0o644))
	w, h, err = Measure(context.Background(), "file://"+filepath.ToSlash(b))
	require.NoError(t, err)
	require.Equal(t, 4.0, w)
	require.Equal(t, 9.0, h)
}

func TestMeasureErrors(t *testing.T) {
	ctx := context.Background()
	_, _, err := Measure(ctx, "https://example.com/x.png")
	require.ErrorIs(t, err, ErrUnsupportedSource)
	_, _, err = Measure(ctx, "data:image/png;base64")
	require.ErrorIs(t, err, ErrBadDataURI)
	_, _, err = Measure(ctx, "data:text/plain,hello")
	require.Error(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, _, err = Measure(cancelled, "data:image/png;base64,AAAA")
	require.ErrorIs(t, err, context.Canceled)
}

func TestDecodeDataURI(t *testing.T) {
	b, mime, err := DecodeDataURI("data:,a%20b")
	require.NoError(t, err)
	require.Equal(t, "text/plain", mime)
	require.Equal(t, "a b", string(b))
}

func TestPrepareFillsDimensions(t *testing.T) {
	ed := editor.New(editor.Options{})
	src := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes(t, 12, 8))
	a, err := Prepare(context.Background(), ed, shape.Asset{Type: shape.AssetImage, Src: src})
	require.NoError(t, err)
	require.Equal(t, 12.0, a.Width)
	got, ok := ed.GetAsset(a.ID)
	require.True(t, ok)
	require.Equal(t, 8.0, got.Height)

	_, err = Prepare(context.Background(), ed, shape.Asset{Type: shape.AssetImage, Src: "data:image/png;base64,AAAA"})
	require.Error(t, err)
	require.Len(t, ed.GetAssets(), 1)
}

func TestDecodeImage(t *testing.T) {
	src := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes(t, 6, 4))
	img, err := Decode(context.Background(), src)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 6, 4), img.Bounds())

	_, err = Decode(context.Background(), "data:text/plain,hello")
	require.Error(t, err)
}

type blobMap map[string][]byte

func (m blobMap) GetBlob(_ context.Context, id string) ([]byte, string, bool, error) {
	b, ok := m[id]
	return b, "image/png", ok, nil
}

func TestDecoderWithBlobs(t *testing.T) {
	dec := DecoderWith(blobMap{"abc": pngBytes(t, 5, 4)})
	img, err := dec(context.Background(), "blob:abc")
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 5, 4), img.Bounds())

	_, err = dec(context.Background(), "blob:missing")
	require.ErrorIs(t, err, ErrUnsupportedSource)

	img, err = dec(context.Background(), "data:image/png;base64,"+base64.StdEncoding.EncodeToString(pngBytes(t, 2, 2)))
	require.NoError(t, err)
	require.Equal(t, 2, img.Bounds().Dx())

	_, err = DecoderWith(nil)(context.Background(), "blob:abc")
	require.ErrorIs(t, err, ErrUnsupportedSource)
}
