/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"paperboard/internal/shapes"
	"paperboard/internal/vector"
)

func sampleCommands() []shapes.DrawCommand {
	return []shapes.DrawCommand{
		{Op: shapes.OpRect, ShapeID: "r", Rect: vector.R(0, 0, 100, 50), Fill: "#ff0000", Stroke: "#000000", StrokeWidth: 2},
		{Op: shapes.OpSelection, ShapeID: "r", Rect: vector.R(-40, -40, 10, 10), Stroke: "#0000ff", StrokeWidth: 1},
		{Op: shapes.OpLine, ShapeID: "a", From: vector.Pt{X: 0, Y: 60}, To: vector.Pt{X: 100, Y: 60}, Stroke: "#000", StrokeWidth: 2},
		{Op: shapes.OpArrowhead, ShapeID: "a", From: vector.Pt{X: 90, Y: 60}, To: vector.Pt{X: 100, Y: 60}, Fill: "#000"},
		{Op: shapes.OpText, ShapeID: "t", Rect: vector.R(0, 70, 100, 20), Text: "Hello", FontSize: 14, Fill: "#111827"},
	}
}

func decodePNG(t *testing.T, b []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	return img
}

// isColor compares channels with a small tolerance for resampling error.
func isColor(c color.Color, r, g, b uint8) bool {
	nc := color.NRGBAModel.Convert(c).(color.NRGBA)
	near := func(a, b uint8) bool { return a >= b-min(b, 3) && a <= b+min(255-b, 3) }
	return near(nc.R, r) && near(nc.G, g) && near(nc.B, b)
}

func TestWritePNG_FitsContent(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePNG(context.Background(), &buf, sampleCommands(), Options{Padding: 10}); err != nil {
		t.Fatalf("png: %v", err)
	}
	img := decodePNG(t, buf.Bytes())
	// content spans x 0..100 and y 0..90 plus 10 padding each side
	if img.Bounds().Dx() != 120 || img.Bounds().Dy() != 110 {
		t.Fatalf("unexpected size %v", img.Bounds())
	}
	if !isColor(img.At(60, 35), 255, 0, 0) {
		t.Fatalf("expected red fill at rect center, got %v", img.At(60, 35))
	}
	if !isColor(img.At(2, 2), 255, 255, 255) {
		t.Fatalf("expected white background, got %v", img.At(2, 2))
	}
}

func TestWritePNG_FixedBoxCenters(t *testing.T) {
	cmds := sampleCommands()[:1]
	img, err := RenderImage(context.Background(), cmds, Options{Padding: 10, Width: 240, Height: 70})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if img.Bounds().Dx() != 240 || img.Bounds().Dy() != 70 {
		t.Fatalf("unexpected size %v", img.Bounds())
	}
	if !isColor(img.At(120, 35), 255, 0, 0) {
		t.Fatalf("expected content centered, got %v", img.At(120, 35))
	}
	if !isColor(img.At(30, 35), 255, 255, 255) {
		t.Fatalf("expected letterbox background, got %v", img.At(30, 35))
	}
}

func TestOverlaysAreOptional(t *testing.T) {
	_, f, err := prepare(sampleCommands(), Options{Padding: 10}.withDefaults())
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if f.origin.X != -10 {
		t.Fatalf("selection outline must not widen bounds, origin=%v", f.origin)
	}
	_, f, _ = prepare(sampleCommands(), Options{Padding: 10, Overlays: true}.withDefaults())
	if f.origin.X != -50 {
		t.Fatalf("overlays requested, origin=%v", f.origin)
	}
}

func TestEmptyScene(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePNG(context.Background(), &buf, nil, Options{}); !errors.Is(err, ErrEmptyScene) {
		t.Fatalf("expected ErrEmptyScene, got %v", err)
	}
	if err := WritePDF(context.Background(), &buf, nil, PDFOptions{}); !errors.Is(err, ErrEmptyScene) {
		t.Fatalf("expected ErrEmptyScene, got %v", err)
	}
}

func TestCancelledRender(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := RenderImage(ctx, sampleCommands(), Options{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestImagePlaceholderOnLoadFailure(t *testing.T) {
	cmds := []shapes.DrawCommand{{Op: shapes.OpImage, AssetID: "asset_x", Src: "blob:nowhere", Rect: vector.R(0, 0, 40, 40)}}
	img, err := RenderImage(context.Background(), cmds, Options{Padding: -1})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !isColor(img.At(20, 20), 0xe5, 0xe7, 0xeb) {
		t.Fatalf("expected placeholder fill, got %v", img.At(20, 20))
	}
}

func TestImageScaledIntoBox(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			src.Set(x, y, color.NRGBA{0, 128, 0, 255})
		}
	}
	loader := func(context.Context, string) (image.Image, error) { return src, nil }
	cmds := []shapes.DrawCommand{{Op: shapes.OpImage, Src: "x", Rect: vector.R(0, 0, 20, 20)}}
	img, err := RenderImage(context.Background(), cmds, Options{Padding: -1, Images: loader})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !isColor(img.At(10, 10), 0, 128, 0) {
		t.Fatalf("expected scaled image, got %v", img.At(10, 10))
	}
}

func TestWritePDF_CreatesFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "exports", "scene.pdf")
	if err := PDFFile(context.Background(), out, sampleCommands(), PDFOptions{Title: "Scene"}); err != nil {
		t.Fatalf("export: %v", err)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.HasPrefix(b, []byte("%PDF-")) {
		t.Fatalf("not a pdf: %q", b[:8])
	}
}

func TestPNGFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "a", "b.png")
	if err := PNGFile(context.Background(), out, sampleCommands(), Options{}); err != nil {
		t.Fatalf("export: %v", err)
	}
	st, err := os.Stat(out)
	if err != nil || st.Size() == 0 {
		t.Fatalf("png missing: %v", err)
	}
}

func TestArrowTriangle(t *testing.T) {
	tri := arrowTriangle(vector.Pt{X: 0, Y: 0}, vector.Pt{X: 10, Y: 0})
	if tri[0] != (vector.Pt{X: 10, Y: 0}) || tri[1] != (vector.Pt{X: 0, Y: 5}) || tri[2] != (vector.Pt{X: 0, Y: -5}) {
		t.Fatalf("unexpected triangle %v", tri)
	}
	if d := dashPattern("dashed", 2); len(d) != 2 || d[0] != 8 {
		t.Fatalf("dash pattern %v", d)
	}
	if dashPattern("solid", 2) != nil {
		t.Fatalf("solid has no pattern")
	}
}
