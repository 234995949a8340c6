/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import "math"

// Anchor names one of the eight connection points of a bounding box.
type Anchor string

const (
	AnchorN  Anchor = "n"
	AnchorNE Anchor = "ne"
	AnchorE  Anchor = "e"
	AnchorSE Anchor = "se"
	AnchorS  Anchor = "s"
	AnchorSW Anchor = "sw"
	AnchorW  Anchor = "w"
	AnchorNW Anchor = "nw"
)

// Anchors lists every anchor in clockwise order starting at north.
var Anchors = []Anchor{AnchorN, AnchorNE, AnchorE, AnchorSE, AnchorS, AnchorSW, AnchorW, AnchorNW}

// Valid reports whether a is one of the eight known anchors.
func (a Anchor) Valid() bool {
	for _, k := range Anchors {
		if a == k {
			return true
		}
	}
	return false
}

// AnchorPoint returns the world position of anchor a on r. Unknown anchors
// resolve to the center.
func AnchorPoint(r Rect, a Anchor) Pt {
	cx, cy := r.X+r.W/2, r.Y+r.H/2
	switch a {
	case AnchorN:
		return Pt{cx, r.Y}
	case AnchorNE:
		return Pt{r.Right(), r.Y}
	case AnchorE:
		return Pt{r.Right(), cy}
	case AnchorSE:
		return Pt{r.Right(), r.Bottom()}
	case AnchorS:
		return Pt{cx, r.Bottom()}
	case AnchorSW:
		return Pt{r.X, r.Bottom()}
	case AnchorW:
		return Pt{r.X, cy}
	case AnchorNW:
		return Pt{r.X, r.Y}
	default:
		return Pt{cx, cy}
	}
}

// NearestAnchor returns the anchor of r closest to p when it lies within
// radius. Ties resolve to the first anchor in clockwise order.
func NearestAnchor(r Rect, p Pt, radius float64) (Anchor, bool) {
	best, bestD := Anchor(""), math.Inf(1)
	for _, a := range Anchors {
		if d := p.Dist(AnchorPoint(r, a)); d <= radius && d < bestD {
			best, bestD = a, d
		}
	}
	return best, best != ""
}
