/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package interaction

import (
	"strings"

	"github.com/samber/lo"

	"paperboard/internal/editor"
	"paperboard/internal/shape"
	"paperboard/internal/shapes"
	"paperboard/internal/vector"
)

func (c *Controller) beginDrag() {
	sel := c.ed.SelectedIDs()
	if len(sel) == 0 {
		return
	}
	c.begin(ModeDraggingShape)
	c.origins = make(map[string]vector.Pt, len(sel))
	c.moving = sel
	reg := c.ed.Registry()
	for i, id := range sel {
		s, _ := c.ed.ResolvedShape(id)
		c.origins[id] = vector.Pt{X: s.X, Y: s.Y}
		if b := reg.Bounds(s); i == 0 {
			c.box = b
		} else {
			c.box = c.box.Union(b)
		}
	}
}

// dragTo moves the dragged shapes by the cumulative screen delta scaled to
// world units, then snaps their joint box against every other shape.
func (c *Controller) dragTo(sp vector.Pt) {
	d := sp.Sub(c.startScreen).Mul(1 / c.ed.Camera().Zoom)
	moving := c.box.Translate(d)
	reg := c.ed.Registry()
	var targets []vector.SnapTarget
	for _, s := range c.ed.GetShapes() {
		if _, dragged := c.origins[s.ID]; dragged || c.boundToDragged(s) {
			continue
		}
		r, _ := c.ed.ResolvedShape(s.ID)
		targets = append(targets, vector.SnapTarget{Rect: reg.Bounds(r), Weight: 1})
	}
	snapped, guides := vector.ComputeSmartGuides(moving, targets, vector.SnapOptions{Threshold: c.snap, SnapToEdges: true, SnapToCenters: true})
	d = d.Add(snapped.Min().Sub(moving.Min()))
	c.guides = guides

	updates := lo.Map(c.moving, func(id string, _ int) editor.Update {
		o := c.origins[id]
		return editor.Update{ID: id, Patch: shape.Patch{X: shape.F(o.X + d.X), Y: shape.F(o.Y + d.Y)}}
	})
	c.ed.UpdateShapes(updates)
}

// boundToDragged reports whether s is a connector attached to a dragged
// shape; its bounds follow the drag and are no snap target.
func (c *Controller) boundToDragged(s shape.Shape) bool {
	p, ok := s.Props.(shape.ArrowProps)
	if !ok {
		return false
	}
	for _, b := range []*shape.Binding{p.StartBinding, p.EndBinding} {
		if b == nil {
			continue
		}
		if _, dragged := c.origins[b.ShapeID]; dragged {
			return true
		}
	}
	return false
}

// resizeHandleAt finds a resize handle of the single selected box shape.
func (c *Controller) resizeHandleAt(wp vector.Pt) (string, vector.Anchor, bool) {
	sel := c.ed.SelectedIDs()
	if len(sel) != 1 {
		return "", "", false
	}
	s, ok := c.ed.ResolvedShape(sel[0])
	if !ok || s.Type == shape.TypeArrow {
		return "", "", false
	}
	r := c.ed.Registry().Bounds(s)
	radius := c.pick(HandleRadius)
	for _, a := range vector.Anchors {
		if wp.Dist(vector.AnchorPoint(r, a)) <= radius {
			return s.ID, a, true
		}
	}
	return "", "", false
}

func (c *Controller) resizeTo(sp vector.Pt, mods Modifiers) {
	d := sp.Sub(c.startScreen).Mul(1 / c.ed.Camera().Zoom)
	b := c.ed.Registry().Lookup(c.initial.Type)
	ib := b.Bounds(c.initial)
	ratio := 0.0
	if mods.Has(ModShift) {
		ratio = b.AspectRatio(c.initial, ib)
	}
	nb := ResizeBounds(ib, c.handle, d, ratio)
	c.ed.UpdateShape(c.initial.ID, b.OnResize(c.initial, shapes.ResizeInfo{InitialBounds: ib, NewBounds: nb, Handle: c.handle}))
}

// ResizeBounds moves the edges named by handle by d. Sizes never drop below
// MinResize and the edge opposite the handle stays put. A positive ratio
// locks width/height to it; edge handles then grow the free axis around
// the centre.
func ResizeBounds(ib vector.Rect, handle vector.Anchor, d vector.Pt, ratio float64) vector.Rect {
	h := string(handle)
	west, east := strings.Contains(h, "w"), strings.Contains(h, "e")
	north, south := strings.HasPrefix(h, "n"), strings.HasPrefix(h, "s")

	w, ht := ib.W, ib.H
	switch {
	case west:
		w -= d.X
	case east:
		w += d.X
	}
	switch {
	case north:
		ht -= d.Y
	case south:
		ht += d.Y
	}

	if ratio > 0 {
		horiz, vert := west || east, north || south
		switch {
		case horiz && !vert:
			ht = w / ratio
		case vert && !horiz:
			w = ht * ratio
		case w/max(ib.W, 1) >= ht/max(ib.H, 1):
			ht = w / ratio
		default:
			w = ht * ratio
		}
		if w < MinResize {
			w, ht = MinResize, MinResize/ratio
		}
		if ht < MinResize {
			w, ht = MinResize*ratio, MinResize
		}
	}
	w, ht = max(w, MinResize), max(ht, MinResize)

	out := vector.Rect{W: w, H: ht}
	switch {
	case west:
		out.X = ib.Right() - w
	case east:
		out.X = ib.X
	default:
		out.X = ib.Center().X - w/2
	}
	switch {
	case north:
		out.Y = ib.Bottom() - ht
	case south:
		out.Y = ib.Y
	default:
		out.Y = ib.Center().Y - ht/2
	}
	return out
}

// anchorAt returns the binding for the topmost non-connector shape with an
// anchor within AnchorZone of p.
func (c *Controller) anchorAt(p vector.Pt, exclude ...string) (shape.Binding, vector.Pt, bool) {
	list := c.ed.GetShapes()
	reg := c.ed.Registry()
	for i := len(list) - 1; i >= 0; i-- {
		s := list[i]
		if s.Type == shape.TypeArrow || lo.Contains(exclude, s.ID) {
			continue
		}
		r := reg.Bounds(s)
		if a, ok := vector.NearestAnchor(r, p, AnchorZone); ok {
			return shape.Binding{ShapeID: s.ID, Anchor: a}, vector.AnchorPoint(r, a), true
		}
	}
	return shape.Binding{}, vector.Pt{}, false
}

// anchorCandidates lists every anchor point of the non-connector shapes for
// point snapping.
func (c *Controller) anchorCandidates(exclude string) []vector.Pt {
	reg := c.ed.Registry()
	var out []vector.Pt
	for _, s := range c.ed.GetShapes() {
		if s.Type == shape.TypeArrow || s.ID == exclude {
			continue
		}
		r := reg.Bounds(s)
		for _, a := range vector.Anchors {
			out = append(out, vector.AnchorPoint(r, a))
		}
	}
	return out
}

func (c *Controller) beginConnector(wp vector.Pt) {
	props := shape.ArrowProps{}
	if c.tool == ToolLine {
		props.ArrowheadEnd = shape.HeadNone
	}
	origin := wp
	if b, pt, ok := c.anchorAt(wp); ok {
		props.StartBinding = &b
		origin = pt
	}
	c.begin(ModeDrawingConnector)
	s := c.ed.CreateShape(shape.TypeArrow, shape.Patch{X: shape.F(origin.X), Y: shape.F(origin.Y), Props: props})
	c.target = s.ID
}

func (c *Controller) moveConnectorEnd(wp vector.Pt) {
	s, ok := c.ed.GetShape(c.target)
	if !ok {
		return
	}
	p := s.Props.Clone().(shape.ArrowProps)
	exclude := []string{s.ID}
	if p.StartBinding != nil {
		exclude = append(exclude, p.StartBinding.ShapeID)
	}
	end := wp
	p.EndBinding, c.hover = nil, nil
	if b, pt, ok := c.anchorAt(wp, exclude...); ok {
		p.EndBinding, c.hover = &b, &b
		end = pt
	}
	p.End = end.Sub(vector.Pt{X: s.X, Y: s.Y})
	c.ed.UpdateShape(s.ID, shape.Patch{Props: p})
}

// endConnector drops connectors too short to be deliberate; either way the
// tool returns to select.
func (c *Controller) endConnector() {
	c.tool = ToolSelect
	s, ok := c.ed.ResolvedShape(c.target)
	if !ok {
		return
	}
	a, b := shapes.Endpoints(s)
	if a.Dist(b) < MinConnectorLength {
		c.ed.DeleteShape(s.ID)
		return
	}
	c.ed.SetSelection([]string{s.ID})
}

// endpointAt finds an endpoint handle of a selected connector, topmost
// first.
func (c *Controller) endpointAt(wp vector.Pt) (string, string, bool) {
	radius := c.pick(HandleRadius)
	sel := c.ed.SelectedIDs()
	for i := len(sel) - 1; i >= 0; i-- {
		s, ok := c.ed.ResolvedShape(sel[i])
		if !ok {
			continue
		}
		if end, ok := shapes.HandleHit(s, wp, radius); ok {
			return s.ID, end, true
		}
	}
	return "", "", false
}

// moveEndpoint binds the dragged end to an anchor zone under the pointer or
// leaves it free, snapped to nearby anchor coordinates.
func (c *Controller) moveEndpoint(wp vector.Pt) {
	s, ok := c.ed.GetShape(c.target)
	if !ok {
		return
	}
	p := s.Props.Clone().(shape.ArrowProps)
	var bind *shape.Binding
	var pt vector.Pt
	if b, apt, ok := c.anchorAt(wp, s.ID); ok {
		bind, pt = &b, apt
	} else {
		pt, _ = vector.SnapPoint(wp, c.anchorCandidates(s.ID), c.snap)
	}
	c.hover = bind
	rel := pt.Sub(vector.Pt{X: s.X, Y: s.Y})
	if c.endpoint == "start" {
		p.Start, p.StartBinding = rel, bind
	} else {
		p.End, p.EndBinding = rel, bind
	}
	c.ed.UpdateShape(s.ID, shape.Patch{Props: p})
}
