/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package shapes

import "paperboard/internal/vector"

// Draw operations emitted by Render.
const (
	OpRect        = "rect"
	OpEllipse     = "ellipse"
	OpLine        = "line"
	OpCurve       = "curve"
	OpArrowhead   = "arrowhead"
	OpText        = "text"
	OpImage       = "image"
	OpPlaceholder = "placeholder"
	OpSelection   = "selection"
	OpHandle      = "handle"
)

// DrawCommand is a single backend-neutral drawing operation in world units.
// A frontend or exporter executes the list in order (back to front).
type DrawCommand struct {
	Op          string      `json:"op"`
	ShapeID     string      `json:"shapeId,omitempty"` // for hit correlation
	Rect        vector.Rect `json:"rect"`
	From        vector.Pt   `json:"from"`
	To          vector.Pt   `json:"to"`
	Control     *vector.Pt  `json:"control,omitempty"` // quadratic control point for OpCurve
	Fill        string      `json:"fill,omitempty"`
	Stroke      string      `json:"stroke,omitempty"`
	StrokeWidth float64     `json:"strokeWidth,omitempty"`
	Dash        string      `json:"dash,omitempty"`
	Opacity     float64     `json:"opacity,omitempty"`
	Text        string      `json:"text,omitempty"`
	FontSize    float64     `json:"fontSize,omitempty"`
	Align       string      `json:"align,omitempty"`
	Editing     bool        `json:"editing,omitempty"`
	AssetID     string      `json:"assetId,omitempty"`
	Src         string      `json:"src,omitempty"`
	ImageWidth  float64     `json:"imageWidth,omitempty"`
	ImageHeight float64     `json:"imageHeight,omitempty"`
}

// BoundsOf returns the union of every command's extent. ok is false for an
// empty list.
func BoundsOf(cmds []DrawCommand) (vector.Rect, bool) {
	var out vector.Rect
	first := true
	add := func(r vector.Rect) {
		if first {
			out, first = r, false
			return
		}
		out = out.Union(r)
	}
	for _, c := range cmds {
		switch c.Op {
		case OpLine, OpArrowhead:
			add(vector.RectFromPoints(c.From, c.To))
		case OpCurve:
			r := vector.RectFromPoints(c.From, c.To)
			if c.Control != nil {
				r = r.Union(vector.RectFromPoints(*c.Control, *c.Control))
			}
			add(r)
		default:
			add(c.Rect)
		}
	}
	return out, !first
}
