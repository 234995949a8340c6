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
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"paperboard/internal/log"
	"paperboard/internal/shapes"
	"paperboard/internal/vector"
	"paperboard/internal/version"
)

// PDFOptions adds document metadata to the shared Options. Units are
// points; with Scale 1 one world unit is one point.
type PDFOptions struct {
	Options
	Title string
}

// WritePDF renders cmds onto a single page sized to the content and writes
// the document to w. Text uses the built-in Helvetica so nothing is embedded.
func WritePDF(ctx context.Context, w io.Writer, cmds []shapes.DrawCommand, opt PDFOptions) error {
	o := opt.Options.withDefaults()
	cmds, f, err := prepare(cmds, o)
	if err != nil {
		return err
	}
	size := gofpdf.SizeType{Wd: math.Max(f.w, 1), Ht: math.Max(f.h, 1)}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{UnitStr: "pt", Size: size})
	if opt.Title != "" {
		pdf.SetTitle(opt.Title, true)
	}
	pdf.SetCreator("paperboard "+version.String(), true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.AddPageFormat("", size)

	if bg := vector.ParseColor(o.Background, vector.White); bg.A > 0 {
		setFillColor(pdf, bg)
		pdf.Rect(0, 0, size.Wd, size.Ht, "F")
	}
	pdf.SetFont("Helvetica", "", 12)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	l := log.WithComponent("export")
	for i, c := range cmds {
		if err := ctx.Err(); err != nil {
			return err
		}
		drawPDF(ctx, pdf, c, i, f, o, tr, l)
		if !pdf.Ok() {
			return fmt.Errorf("draw pdf: %w", pdf.Error())
		}
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// PDFFile writes the PDF export to path, creating parent directories.
func PDFFile(ctx context.Context, path string, cmds []shapes.DrawCommand, opt PDFOptions) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	var buf bytes.Buffer
	if err := WritePDF(ctx, &buf, cmds, opt); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func drawPDF(ctx context.Context, pdf *gofpdf.Fpdf, c shapes.DrawCommand, i int, f frame, opt Options, tr func(string) string, l *slog.Logger) {
	pdf.SetAlpha(opacity(c), "Normal")
	defer pdf.SetAlpha(1, "Normal")

	fill := vector.ParseColor(c.Fill, vector.Transparent)
	stroke := vector.ParseColor(c.Stroke, vector.Black)
	sw := c.StrokeWidth * f.scale
	style := func(closed bool) string {
		s := ""
		if closed && fill.A > 0 {
			setFillColor(pdf, fill)
			s += "F"
		}
		if c.StrokeWidth > 0 && stroke.A > 0 {
			setDrawColor(pdf, stroke)
			pdf.SetLineWidth(sw)
			if d := dashPattern(c.Dash, sw); d != nil {
				pdf.SetDashPattern(d, 0)
			} else {
				pdf.SetDashPattern([]float64{}, 0)
			}
			s = "D" + s
		}
		return s
	}

	switch c.Op {
	case shapes.OpRect, shapes.OpSelection, shapes.OpHandle, shapes.OpPlaceholder:
		if s := style(true); s != "" {
			r := f.rect(c.Rect)
			pdf.Rect(r.X, r.Y, r.W, r.H, pdfStyle(s))
		}
	case shapes.OpEllipse:
		if s := style(true); s != "" {
			r := f.rect(c.Rect)
			pdf.Ellipse(r.X+r.W/2, r.Y+r.H/2, r.W/2, r.H/2, 0, pdfStyle(s))
		}
	case shapes.OpLine:
		if style(false) != "" {
			a, b := f.pt(c.From), f.pt(c.To)
			pdf.Line(a.X, a.Y, b.X, b.Y)
		}
	case shapes.OpCurve:
		if style(false) != "" {
			a, b := f.pt(c.From), f.pt(c.To)
			cp := vector.Pt{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
			if c.Control != nil {
				cp = f.pt(*c.Control)
			}
			pdf.Curve(a.X, a.Y, cp.X, cp.Y, b.X, b.Y, "D")
		}
	case shapes.OpArrowhead:
		tri := arrowTriangle(f.pt(c.From), f.pt(c.To))
		setFillColor(pdf, vector.ParseColor(c.Fill, stroke))
		pts := make([]gofpdf.PointType, 0, 3)
		for _, p := range tri {
			pts = append(pts, gofpdf.PointType{X: p.X, Y: p.Y})
		}
		pdf.Polygon(pts, "F")
	case shapes.OpText:
		if c.Text == "" {
			return
		}
		size := c.FontSize
		if size <= 0 {
			size = 16
		}
		size *= f.scale
		col := vector.ParseColor(c.Fill, vector.Black)
		pdf.SetTextColor(int(col.R), int(col.G), int(col.B))
		pdf.SetFont("Helvetica", "", size)
		r := f.rect(c.Rect)
		pdf.SetXY(r.X, r.Y)
		pdf.MultiCell(math.Max(r.W, size), size*1.2, tr(c.Text), "", pdfAlign(c.Align), false)
	case shapes.OpImage:
		r := f.rect(c.Rect)
		img, err := opt.Images(ctx, c.Src)
		var buf bytes.Buffer
		if err == nil {
			err = png.Encode(&buf, img)
		}
		if err != nil {
			l.Warn("image unavailable; drawing placeholder", slog.String("asset", c.AssetID), slog.Any("err", err))
			setFillColor(pdf, vector.ParseColor("#e5e7eb", vector.White))
			setDrawColor(pdf, vector.ParseColor("#9ca3af", vector.Black))
			pdf.SetLineWidth(1)
			pdf.Rect(r.X, r.Y, r.W, r.H, "FD")
			return
		}
		name := fmt.Sprintf("img-%d-%s", i, c.AssetID)
		imgOpt := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(name, imgOpt, &buf)
		pdf.ImageOptions(name, r.X, r.Y, r.W, r.H, false, imgOpt, 0, "")
	}
}

// pdfStyle orders the paint flags the way gofpdf expects ("F", "D", "FD").
func pdfStyle(s string) string {
	if s == "DF" {
		return "FD"
	}
	return s
}

func pdfAlign(s string) string {
	switch s {
	case "center":
		return "C"
	case "right":
		return "R"
	}
	return "L"
}

func setDrawColor(pdf *gofpdf.Fpdf, c vector.Color) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}

func setFillColor(pdf *gofpdf.Fpdf, c vector.Color) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}
