/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package shapes

import (
	"paperboard/internal/shape"
	"paperboard/internal/vector"
)

const (
	defaultStroke = "#1f2937"
	defaultFill   = "transparent"
)

type RectBehavior struct{ Base }

func (RectBehavior) Type() shape.Type { return shape.TypeRect }

func (RectBehavior) DefaultProps() shape.Props {
	return shape.RectProps{Color: defaultStroke, Fill: defaultFill, StrokeWidth: 2, Dash: "solid"}
}

// AspectRatio locks rects to a square.
func (RectBehavior) AspectRatio(shape.Shape, vector.Rect) float64 { return 1 }

func (b RectBehavior) Render(s shape.Shape, st RenderState, ctx RenderContext) []DrawCommand {
	p, _ := s.Props.(shape.RectProps)
	cmds := []DrawCommand{{
		Op: OpRect, ShapeID: s.ID, Rect: s.Box(),
		Fill: p.Fill, Stroke: p.Color, StrokeWidth: p.StrokeWidth, Dash: p.Dash, Opacity: s.Opacity,
	}}
	if st.Selected {
		cmds = append(cmds, selectionChrome(s.ID, b.Bounds(s), ctx)...)
	}
	return cmds
}

// CircleBehavior handles ellipses inscribed in the shape box.
type CircleBehavior struct{ Base }

func (CircleBehavior) Type() shape.Type { return shape.TypeCircle }

func (CircleBehavior) DefaultProps() shape.Props {
	return shape.CircleProps{Color: defaultStroke, Fill: defaultFill, StrokeWidth: 2, Dash: "solid"}
}

func (CircleBehavior) HitTest(s shape.Shape, p vector.Pt) bool { return vector.InEllipse(s.Box(), p) }

func (CircleBehavior) AspectRatio(shape.Shape, vector.Rect) float64 { return 1 }

func (b CircleBehavior) Render(s shape.Shape, st RenderState, ctx RenderContext) []DrawCommand {
	p, _ := s.Props.(shape.CircleProps)
	cmds := []DrawCommand{{
		Op: OpEllipse, ShapeID: s.ID, Rect: s.Box(),
		Fill: p.Fill, Stroke: p.Color, StrokeWidth: p.StrokeWidth, Dash: p.Dash, Opacity: s.Opacity,
	}}
	if st.Selected {
		cmds = append(cmds, selectionChrome(s.ID, b.Bounds(s), ctx)...)
	}
	return cmds
}

// PaperNodeBehavior renders a titled card grouping annotations of one paper.
type PaperNodeBehavior struct{ Base }

func (PaperNodeBehavior) Type() shape.Type { return shape.TypePaperNode }

func (PaperNodeBehavior) DefaultProps() shape.Props {
	return shape.PaperNodeProps{Color: "#fef3c7"}
}

func (PaperNodeBehavior) DefaultSize() (float64, float64) { return 240, 160 }

func (b PaperNodeBehavior) Render(s shape.Shape, st RenderState, ctx RenderContext) []DrawCommand {
	p, _ := s.Props.(shape.PaperNodeProps)
	title := p.Title
	if title == "" {
		title = p.PaperID
	}
	cmds := []DrawCommand{
		{Op: OpRect, ShapeID: s.ID, Rect: s.Box(), Fill: p.Color, Stroke: defaultStroke, StrokeWidth: 1, Opacity: s.Opacity},
		{Op: OpText, ShapeID: s.ID, Rect: vector.R(s.X+8, s.Y+8, max(s.Width-16, 0), 20), Text: title, FontSize: 14, Fill: defaultStroke, Align: "left", Opacity: s.Opacity},
	}
	if st.Selected {
		cmds = append(cmds, selectionChrome(s.ID, b.Bounds(s), ctx)...)
	}
	return cmds
}
