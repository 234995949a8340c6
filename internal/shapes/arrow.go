/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package shapes

import (
	"math"

	"paperboard/internal/shape"
	"paperboard/internal/vector"
)

// ArrowHitTolerance is the maximum distance from the arrow path that still
// counts as a hit.
const ArrowHitTolerance = 10

// curveSegments is the number of straight pieces a bent arrow is split into
// for hit-testing.
const curveSegments = 16

type ArrowBehavior struct{ Base }

func (ArrowBehavior) Type() shape.Type { return shape.TypeArrow }

func (ArrowBehavior) DefaultProps() shape.Props {
	return shape.ArrowProps{Color: defaultStroke, StrokeWidth: 2, ArrowheadStart: shape.HeadNone, ArrowheadEnd: shape.HeadArrow}
}

func (ArrowBehavior) DefaultSize() (float64, float64) { return 0, 0 }

// Endpoints returns the absolute start and end of an arrow from its stored
// props. Use Resolve first to honour live bindings.
func Endpoints(s shape.Shape) (vector.Pt, vector.Pt) {
	p, _ := s.Props.(shape.ArrowProps)
	o := vector.Pt{X: s.X, Y: s.Y}
	return o.Add(p.Start), o.Add(p.End)
}

// control returns the quadratic control point for a bent arrow: the
// midpoint pushed along the segment normal by bend.
func control(a, b vector.Pt, bend float64) (vector.Pt, bool) {
	if bend == 0 {
		return vector.Pt{}, false
	}
	d := b.Sub(a)
	l := d.Len()
	if l == 0 {
		return vector.Pt{}, false
	}
	n := vector.Pt{X: -d.Y / l, Y: d.X / l}
	mid := a.Add(d.Mul(0.5))
	return mid.Add(n.Mul(bend)), true
}

func quad(a, c, b vector.Pt, t float64) vector.Pt {
	u := 1 - t
	return vector.Pt{
		X: u*u*a.X + 2*u*t*c.X + t*t*b.X,
		Y: u*u*a.Y + 2*u*t*c.Y + t*t*b.Y,
	}
}

// Bounds derives the box from the endpoints (and the curve apex when bent)
// rather than the nominal width/height.
func (ArrowBehavior) Bounds(s shape.Shape) vector.Rect {
	a, b := Endpoints(s)
	r := vector.RectFromPoints(a, b)
	p, _ := s.Props.(shape.ArrowProps)
	if c, ok := control(a, b, p.Bend); ok {
		apex := quad(a, c, b, 0.5)
		r = r.Union(vector.RectFromPoints(apex, apex))
	}
	return r
}

func (ArrowBehavior) HitTest(s shape.Shape, p vector.Pt) bool {
	a, b := Endpoints(s)
	props, _ := s.Props.(shape.ArrowProps)
	c, bent := control(a, b, props.Bend)
	if !bent {
		return vector.DistanceToSegment(p, a, b) <= ArrowHitTolerance
	}
	prev := a
	for i := 1; i <= curveSegments; i++ {
		next := quad(a, c, b, float64(i)/curveSegments)
		if vector.DistanceToSegment(p, prev, next) <= ArrowHitTolerance {
			return true
		}
		prev = next
	}
	return false
}

// OnResize scales both endpoints from the initial box into the new one.
func (ArrowBehavior) OnResize(s shape.Shape, info ResizeInfo) shape.Patch {
	a, b := Endpoints(s)
	ib, nb := info.InitialBounds, info.NewBounds
	scale := func(v, from, size, to, newSize float64) float64 {
		if size == 0 {
			return to + (v - from)
		}
		return to + (v-from)*newSize/size
	}
	na := vector.Pt{X: scale(a.X, ib.X, ib.W, nb.X, nb.W), Y: scale(a.Y, ib.Y, ib.H, nb.Y, nb.H)}
	nbp := vector.Pt{X: scale(b.X, ib.X, ib.W, nb.X, nb.W), Y: scale(b.Y, ib.Y, ib.H, nb.Y, nb.H)}
	props, _ := s.Props.(shape.ArrowProps)
	props = props.Clone().(shape.ArrowProps)
	origin := vector.Pt{X: nb.X, Y: nb.Y}
	props.Start = na.Sub(origin)
	props.End = nbp.Sub(origin)
	return shape.Patch{X: shape.F(nb.X), Y: shape.F(nb.Y), Width: shape.F(nb.W), Height: shape.F(nb.H), Props: props}
}

func (ArrowBehavior) AspectRatio(shape.Shape, vector.Rect) float64 { return 0 }

func (b ArrowBehavior) Render(s shape.Shape, st RenderState, ctx RenderContext) []DrawCommand {
	p, _ := s.Props.(shape.ArrowProps)
	from, to := Endpoints(s)
	var cmds []DrawCommand
	tailStart, tailEnd := to, from
	if c, ok := control(from, to, p.Bend); ok {
		cc := c
		cmds = append(cmds, DrawCommand{Op: OpCurve, ShapeID: s.ID, From: from, To: to, Control: &cc, Stroke: p.Color, StrokeWidth: p.StrokeWidth, Opacity: s.Opacity})
		tailStart, tailEnd = c, c
	} else {
		cmds = append(cmds, DrawCommand{Op: OpLine, ShapeID: s.ID, From: from, To: to, Stroke: p.Color, StrokeWidth: p.StrokeWidth, Opacity: s.Opacity})
	}
	if p.ArrowheadEnd == shape.HeadArrow {
		cmds = append(cmds, arrowhead(s.ID, tailEnd, to, p))
	}
	if p.ArrowheadStart == shape.HeadArrow {
		cmds = append(cmds, arrowhead(s.ID, tailStart, from, p))
	}
	if st.Selected {
		cmds = append(cmds, DrawCommand{Op: OpSelection, ShapeID: s.ID, Rect: b.Bounds(s), Stroke: selectionColor, StrokeWidth: 1 / ctx.zoom()})
		hs := 10 / ctx.zoom()
		for _, e := range []vector.Pt{from, to} {
			cmds = append(cmds, DrawCommand{Op: OpHandle, ShapeID: s.ID, Rect: vector.R(e.X-hs/2, e.Y-hs/2, hs, hs), Fill: "#ffffff", Stroke: selectionColor, StrokeWidth: 1 / ctx.zoom()})
		}
	}
	return cmds
}

// arrowhead emits a head at tip pointing away from tail. From is the tail
// reference and To the tip; exporters build the triangle from the direction.
func arrowhead(id string, tail, tip vector.Pt, p shape.ArrowProps) DrawCommand {
	size := math.Max(10, p.StrokeWidth*4)
	d := tip.Sub(tail)
	l := d.Len()
	if l == 0 {
		d, l = vector.Pt{X: 1}, 1
	}
	base := tip.Sub(d.Mul(size / l))
	return DrawCommand{Op: OpArrowhead, ShapeID: id, From: base, To: tip, Fill: p.Color, Stroke: p.Color, StrokeWidth: p.StrokeWidth}
}

// HandleHit reports which endpoint handle of a selected arrow lies under p
// ("start" or "end"), within radius world units.
func HandleHit(s shape.Shape, p vector.Pt, radius float64) (string, bool) {
	if s.Type != shape.TypeArrow {
		return "", false
	}
	a, b := Endpoints(s)
	switch {
	case p.Dist(b) <= radius:
		return "end", true
	case p.Dist(a) <= radius:
		return "start", true
	}
	return "", false
}
