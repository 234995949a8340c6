/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"paperboard/internal/log"
	"paperboard/internal/shapes"
	"paperboard/internal/vector"
)

var (
	fontOnce sync.Once
	fontErr  error
	regular  *opentype.Font

	faceMu sync.Mutex
	faces  = map[float64]font.Face{}
)

// faceFor returns a Go Regular face at size px, or the fixed 7x13 face when
// the embedded font cannot be parsed.
func faceFor(size float64) font.Face {
	fontOnce.Do(func() { regular, fontErr = opentype.Parse(goregular.TTF) })
	if fontErr != nil || size <= 0 {
		return basicfont.Face7x13
	}
	size = math.Round(size*2) / 2
	faceMu.Lock()
	defer faceMu.Unlock()
	if f, ok := faces[size]; ok {
		return f
	}
	f, err := opentype.NewFace(regular, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return basicfont.Face7x13
	}
	faces[size] = f
	return f
}

// RenderImage rasterizes cmds into a new image.
func RenderImage(ctx context.Context, cmds []shapes.DrawCommand, opt Options) (image.Image, error) {
	opt = opt.withDefaults()
	cmds, f, err := prepare(cmds, opt)
	if err != nil {
		return nil, err
	}
	if m := math.Max(f.w, f.h); m > MaxPixels {
		k := MaxPixels / m
		f.scale *= k
		f.offset = f.offset.Mul(k)
		f.w, f.h = math.Floor(f.w*k), math.Floor(f.h*k)
	}
	w, h := int(math.Max(f.w, 1)), int(math.Max(f.h, 1))
	dc := gg.NewContext(w, h)
	bg := vector.ParseColor(opt.Background, vector.White)
	dc.SetColor(rgba(bg, 1))
	dc.Clear()
	dc.SetLineCapRound()

	l := log.WithComponent("export")
	for _, c := range cmds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		drawPNG(ctx, dc, c, f, opt, l)
	}
	return dc.Image(), nil
}

// WritePNG renders cmds and encodes the result to w.
func WritePNG(ctx context.Context, w io.Writer, cmds []shapes.DrawCommand, opt Options) error {
	img, err := RenderImage(ctx, cmds, opt)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// PNGFile writes the PNG export to path, creating parent directories.
func PNGFile(ctx context.Context, path string, cmds []shapes.DrawCommand, opt Options) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := WritePNG(ctx, f, cmds, opt); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close png: %w", err)
	}
	return nil
}

func rgba(c vector.Color, alpha float64) color.NRGBA {
	c = c.WithAlpha(alpha)
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

func drawPNG(ctx context.Context, dc *gg.Context, c shapes.DrawCommand, f frame, opt Options, l *slog.Logger) {
	a := opacity(c)
	fill := vector.ParseColor(c.Fill, vector.Transparent)
	stroke := vector.ParseColor(c.Stroke, vector.Black)
	sw := c.StrokeWidth * f.scale

	paint := func() {
		if fill.A > 0 {
			dc.SetColor(rgba(fill, a))
			dc.FillPreserve()
		}
		if c.StrokeWidth > 0 && stroke.A > 0 {
			dc.SetColor(rgba(stroke, a))
			dc.SetLineWidth(sw)
			dc.SetDash(dashPattern(c.Dash, sw)...)
			dc.StrokePreserve()
			dc.SetDash()
		}
		dc.ClearPath()
	}

	switch c.Op {
	case shapes.OpRect, shapes.OpSelection, shapes.OpHandle, shapes.OpPlaceholder:
		r := f.rect(c.Rect)
		dc.DrawRectangle(r.X, r.Y, r.W, r.H)
		paint()
	case shapes.OpEllipse:
		r := f.rect(c.Rect)
		dc.DrawEllipse(r.X+r.W/2, r.Y+r.H/2, r.W/2, r.H/2)
		paint()
	case shapes.OpLine, shapes.OpCurve:
		from, to := f.pt(c.From), f.pt(c.To)
		dc.MoveTo(from.X, from.Y)
		if c.Control != nil {
			cp := f.pt(*c.Control)
			dc.QuadraticTo(cp.X, cp.Y, to.X, to.Y)
		} else {
			dc.LineTo(to.X, to.Y)
		}
		fill = vector.Transparent
		paint()
	case shapes.OpArrowhead:
		tri := arrowTriangle(f.pt(c.From), f.pt(c.To))
		dc.MoveTo(tri[0].X, tri[0].Y)
		dc.LineTo(tri[1].X, tri[1].Y)
		dc.LineTo(tri[2].X, tri[2].Y)
		dc.ClosePath()
		dc.SetColor(rgba(vector.ParseColor(c.Fill, stroke), a))
		dc.Fill()
	case shapes.OpText:
		if c.Text == "" {
			return
		}
		r := f.rect(c.Rect)
		size := c.FontSize
		if size <= 0 {
			size = 16
		}
		dc.SetFontFace(faceFor(size * f.scale))
		dc.SetColor(rgba(vector.ParseColor(c.Fill, vector.Black), a))
		dc.DrawStringWrapped(c.Text, r.X, r.Y, 0, 0, r.W, 1.2, textAlign(c.Align))
	case shapes.OpImage:
		r := f.rect(c.Rect)
		img, err := opt.Images(ctx, c.Src)
		if err != nil {
			l.Warn("image unavailable; drawing placeholder", slog.String("asset", c.AssetID), slog.Any("err", err))
			dc.DrawRectangle(r.X, r.Y, r.W, r.H)
			fill, stroke, c.StrokeWidth = vector.ParseColor("#e5e7eb", vector.Transparent), vector.ParseColor("#9ca3af", vector.Black), 1
			paint()
			return
		}
		drawScaled(dc, img, r, a)
	}
}

func drawScaled(dc *gg.Context, img image.Image, r vector.Rect, alpha float64) {
	w, h := int(math.Round(r.W)), int(math.Round(r.H))
	if w <= 0 || h <= 0 {
		return
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	var opts *xdraw.Options
	if alpha < 1 {
		opts = &xdraw.Options{SrcMask: image.NewUniform(color.Alpha{A: uint8(alpha * 255)})}
	}
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Over, opts)
	dc.DrawImage(dst, int(math.Round(r.X)), int(math.Round(r.Y)))
}

func textAlign(s string) gg.Align {
	switch s {
	case "center":
		return gg.AlignCenter
	case "right":
		return gg.AlignRight
	}
	return gg.AlignLeft
}
