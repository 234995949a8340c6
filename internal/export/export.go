/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders a scene draw list to PNG and PDF files.
package export

import (
	"context"
	"errors"
	"image"
	"math"

	"github.com/samber/lo"

	"paperboard/internal/assets"
	"paperboard/internal/shapes"
	"paperboard/internal/vector"
)

const (
	DefaultPadding = 16.0
	// MaxPixels bounds either side of a PNG export.
	MaxPixels = 8192
)

var ErrEmptyScene = errors.New("export: nothing to draw")

// ImageLoader resolves an asset source to pixels.
type ImageLoader func(ctx context.Context, src string) (image.Image, error)

// Options shared by both exporters. Zero values pick defaults.
type Options struct {
	// Padding in world units around the content bounds.
	Padding float64
	// Scale is output units per world unit (PNG pixels, PDF points).
	Scale float64
	// Width and Height, when both set, fit the content into that box
	// instead of using Scale.
	Width, Height int
	Background    string
	// Overlays keeps selection outlines and handles.
	Overlays bool
	Images   ImageLoader
}

func (o Options) withDefaults() Options {
	if o.Padding < 0 {
		o.Padding = 0
	} else if o.Padding == 0 {
		o.Padding = DefaultPadding
	}
	if o.Scale <= 0 {
		o.Scale = 1
	}
	if o.Background == "" {
		o.Background = "#ffffff"
	}
	if o.Images == nil {
		o.Images = assets.Decode
	}
	return o
}

// frame maps world coordinates onto the output surface.
type frame struct {
	origin vector.Pt
	scale  float64
	offset vector.Pt
	w, h   float64
}

func (f frame) pt(p vector.Pt) vector.Pt {
	return vector.Pt{X: (p.X-f.origin.X)*f.scale + f.offset.X, Y: (p.Y-f.origin.Y)*f.scale + f.offset.Y}
}

func (f frame) rect(r vector.Rect) vector.Rect {
	p := f.pt(vector.Pt{X: r.X, Y: r.Y})
	return vector.R(p.X, p.Y, r.W*f.scale, r.H*f.scale)
}

// prepare drops overlay commands unless requested and computes the output
// frame around the remaining content.
func prepare(cmds []shapes.DrawCommand, opt Options) ([]shapes.DrawCommand, frame, error) {
	if !opt.Overlays {
		cmds = lo.Filter(cmds, func(c shapes.DrawCommand, _ int) bool {
			return c.Op != shapes.OpSelection && c.Op != shapes.OpHandle
		})
	}
	b, ok := shapes.BoundsOf(cmds)
	if !ok {
		return nil, frame{}, ErrEmptyScene
	}
	b = vector.R(b.X-opt.Padding, b.Y-opt.Padding, b.W+2*opt.Padding, b.H+2*opt.Padding)
	f := frame{origin: vector.Pt{X: b.X, Y: b.Y}, scale: opt.Scale}
	if opt.Width > 0 && opt.Height > 0 {
		f.scale = math.Min(float64(opt.Width)/math.Max(b.W, 1), float64(opt.Height)/math.Max(b.H, 1))
		f.w, f.h = float64(opt.Width), float64(opt.Height)
		f.offset = vector.Pt{X: (f.w - b.W*f.scale) / 2, Y: (f.h - b.H*f.scale) / 2}
		return cmds, f, nil
	}
	f.w, f.h = math.Ceil(b.W*f.scale), math.Ceil(b.H*f.scale)
	return cmds, f, nil
}

func opacity(c shapes.DrawCommand) float64 {
	if c.Opacity <= 0 {
		return 1
	}
	return math.Min(c.Opacity, 1)
}

// dashPattern returns the on/off lengths for a dash style at width w.
func dashPattern(style string, w float64) []float64 {
	w = math.Max(w, 1)
	switch style {
	case "dashed":
		return []float64{4 * w, 3 * w}
	case "dotted":
		return []float64{w, 2 * w}
	}
	return nil
}

// arrowTriangle returns tip and the two base corners of an arrowhead.
func arrowTriangle(base, tip vector.Pt) [3]vector.Pt {
	d := tip.Sub(base)
	l := d.Len()
	if l == 0 {
		return [3]vector.Pt{tip, tip, tip}
	}
	n := vector.Pt{X: -d.Y / l, Y: d.X / l}.Mul(l / 2)
	return [3]vector.Pt{tip, base.Add(n), base.Sub(n)}
}
