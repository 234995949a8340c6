/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Smart guides and snapping helpers for interactive tools.
// These utilities are UI-agnostic and deterministic to enable unit testing and
// reuse across different frontends.

import "math"

// DefaultSnapThreshold is the snapping distance used when none is given.
const DefaultSnapThreshold = 5

// SnapOptions controls which guide candidates are considered and the threshold.
type SnapOptions struct {
	// Threshold is the maximum distance (in world units) at which snapping occurs.
	Threshold float64
	// Snap to edges (left, right, top, bottom)
	SnapToEdges bool
	// Snap to centers (cx, cy)
	SnapToCenters bool
}

// SnapTarget is a static reference rect, usually another shape's bounds.
// Weight biases selection when distances tie (higher = preferred); use 1 when unsure.
type SnapTarget struct {
	Rect   Rect
	Weight float64
}

// GuideLine describes a visual guide generated during a snap alignment.
// Orientation is "vertical" or "horizontal".
// Kind indicates which feature of the target aligned: "edge" or "center".
// Position is the x (vertical) or y (horizontal) coordinate of the guide.
// Values are rounded to 3 decimal places.
type GuideLine struct {
	Orientation string
	Kind        string
	Position    float64
	From        Pt
	To          Pt
}

type feature struct {
	v    float64
	kind string
}

// ComputeSmartGuides snaps a moving rectangle against targets. Every
// left/center/right feature of the moving rect is compared with every
// left/center/right feature of each target (top/middle/bottom on Y), and the
// closest one within the threshold wins. X and Y snap independently.
func ComputeSmartGuides(moving Rect, targets []SnapTarget, opts SnapOptions) (Rect, []GuideLine) {
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultSnapThreshold
	}
	if !opts.SnapToEdges && !opts.SnapToCenters {
		return moving, nil
	}

	bestDX, bestDXDist, bestDXGuide := 0.0, math.Inf(1), GuideLine{}
	bestDY, bestDYDist, bestDYGuide := 0.0, math.Inf(1), GuideLine{}

	mx := features(moving.X, moving.W, opts)
	my := features(moving.Y, moving.H, opts)

	for _, t := range targets {
		tx := features(t.Rect.X, t.Rect.W, opts)
		ty := features(t.Rect.Y, t.Rect.H, opts)
		for _, m := range mx {
			for _, a := range tx {
				consider(&bestDX, &bestDXDist, &bestDXGuide, m.v-a.v, opts.Threshold, t.Weight, guideForVertical(a.v, moving, t.Rect, a.kind))
			}
		}
		for _, m := range my {
			for _, a := range ty {
				consider(&bestDY, &bestDYDist, &bestDYGuide, m.v-a.v, opts.Threshold, t.Weight, guideForHorizontal(a.v, moving, t.Rect, a.kind))
			}
		}
	}

	var guides []GuideLine
	snapped := moving
	if bestDXDist <= opts.Threshold {
		snapped.X = FloatRound(moving.X-bestDX, 3)
		guides = append(guides, bestDXGuide)
	}
	if bestDYDist <= opts.Threshold {
		snapped.Y = FloatRound(moving.Y-bestDY, 3)
		guides = append(guides, bestDYGuide)
	}
	return snapped, guides
}

func features(start, size float64, opts SnapOptions) []feature {
	out := make([]feature, 0, 3)
	if opts.SnapToEdges {
		out = append(out, feature{start, "edge"}, feature{start + size, "edge"})
	}
	if opts.SnapToCenters {
		out = append(out, feature{start + size/2, "center"})
	}
	return out
}

func consider(bestDelta, bestDist *float64, bestGuide *GuideLine, delta, threshold, weight float64, g GuideLine) {
	dist := math.Abs(delta)
	if dist > threshold {
		return
	}
	score := dist / math.Max(1, weight)
	if score < *bestDist {
		*bestDist = dist
		*bestDelta = delta
		*bestGuide = g
	}
}

func guideForVertical(x float64, a Rect, b Rect, kind string) GuideLine {
	minY := math.Min(a.Y, b.Y)
	maxY := math.Max(a.Bottom(), b.Bottom())
	x = FloatRound(x, 3)
	return GuideLine{
		Orientation: "vertical",
		Kind:        kind,
		Position:    x,
		From:        Pt{x, minY},
		To:          Pt{x, maxY},
	}
}

func guideForHorizontal(y float64, a Rect, b Rect, kind string) GuideLine {
	minX := math.Min(a.X, b.X)
	maxX := math.Max(a.Right(), b.Right())
	y = FloatRound(y, 3)
	return GuideLine{
		Orientation: "horizontal",
		Kind:        kind,
		Position:    y,
		From:        Pt{minX, y},
		To:          Pt{maxX, y},
	}
}

// SnapPoint snaps each axis of p to the closest candidate coordinate within
// threshold, independently. It reports whether any axis moved.
func SnapPoint(p Pt, candidates []Pt, threshold float64) (Pt, bool) {
	if threshold <= 0 {
		threshold = DefaultSnapThreshold
	}
	out := p
	bestX, bestY := math.Inf(1), math.Inf(1)
	for _, c := range candidates {
		if d := math.Abs(c.X - p.X); d <= threshold && d < bestX {
			bestX, out.X = d, c.X
		}
		if d := math.Abs(c.Y - p.Y); d <= threshold && d < bestY {
			bestY, out.Y = d, c.Y
		}
	}
	return out, out != p
}
