/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"log/slog"

	"github.com/samber/lo"

	"paperboard/internal/shape"
	"paperboard/internal/shapes"
	"paperboard/internal/vector"
)

// Update pairs a shape id with the patch to apply.
type Update struct {
	ID    string
	Patch shape.Patch
}

// CreateShape adds a shape of type t built from p over the type defaults:
// p.Props is merged over the default props, unset size falls back to the
// behaviour's default size and unset opacity to 1. The new shape gets a
// fresh id and is painted above everything else. An unregistered type
// panics.
func (e *Editor) CreateShape(t shape.Type, p shape.Patch) shape.Shape {
	s := e.build(t, p)
	e.mutate("create "+string(t), true, func() bool {
		e.st.Put(s)
		return true
	})
	e.log.Debug("shape created", slog.String("id", s.ID), slog.String("type", string(t)))
	return s
}

func (e *Editor) build(t shape.Type, p shape.Patch) shape.Shape {
	b := e.reg.Lookup(t)
	w, h := b.DefaultSize()
	s := shape.Shape{ID: shape.NewShapeID(), Type: t, Width: w, Height: h, Opacity: 1, Props: b.DefaultProps()}
	if p.Props != nil && p.Props.Kind() == t {
		s.Props = s.Props.Merge(p.Props)
	}
	p.Props = nil
	p.Index = nil
	s = p.Apply(s)
	s.Index = e.st.MaxIndex() + 1
	return s
}

// GetShape returns a copy of the shape as stored (bindings unresolved).
func (e *Editor) GetShape(id string) (shape.Shape, bool) { return e.st.Shape(id) }

// GetShapes returns every shape in paint order.
func (e *Editor) GetShapes() []shape.Shape { return e.st.Sorted() }

// ResolvedShape returns the shape with live bindings applied.
func (e *Editor) ResolvedShape(id string) (shape.Shape, bool) {
	s, ok := e.st.Shape(id)
	if !ok {
		return shape.Shape{}, false
	}
	return e.reg.Resolve(s, e.lookup), true
}

func (e *Editor) lookup(id string) (shape.Shape, bool) { return e.st.Shape(id) }

// Lookup is the scene lookup used for binding resolution.
func (e *Editor) Lookup() shapes.Lookup { return e.lookup }

// UpdateShape merges p onto the shape. Unknown ids are ignored.
func (e *Editor) UpdateShape(id string, p shape.Patch) bool {
	return e.UpdateShapes([]Update{{ID: id, Patch: p}})
}

// UpdateShapes applies all updates as one history entry. It is a no-op when
// none of the ids exist.
func (e *Editor) UpdateShapes(list []Update) bool {
	return e.mutate("update", false, func() bool {
		changed := false
		for _, u := range list {
			cur, ok := e.st.Shape(u.ID)
			if !ok {
				continue
			}
			e.st.Put(u.Patch.Apply(cur))
			changed = true
		}
		return changed
	})
}

// DeleteShape removes one shape; see DeleteShapes.
func (e *Editor) DeleteShape(id string) bool { return e.DeleteShapes([]string{id}) > 0 }

// DeleteShapes removes the shapes, their selection and edit state. Arrows
// that stay behind but were bound to a removed shape keep their endpoint
// where it was last drawn. Unknown ids are ignored; nothing is recorded
// unless at least one shape existed.
func (e *Editor) DeleteShapes(ids []string) int {
	ids = lo.Uniq(ids)
	existing := lo.Filter(ids, func(id string, _ int) bool { return e.st.Has(id) })
	if len(existing) == 0 {
		return 0
	}
	gone := lo.SliceToMap(existing, func(id string) (string, struct{}) { return id, struct{}{} })
	isGone := func(id string) bool {
		_, ok := gone[id]
		return ok
	}
	e.mutate("delete", true, func() bool {
		for _, s := range e.st.Sorted() {
			if s.Type != shape.TypeArrow || isGone(s.ID) {
				continue
			}
			if frozen, ok := e.reg.FreezeBindings(s, e.lookup, isGone); ok {
				e.st.Put(frozen)
			}
		}
		for _, id := range existing {
			e.st.Remove(id)
		}
		return true
	})
	return len(existing)
}

// GetShapeAtPoint returns the topmost shape whose hit test accepts p.
func (e *Editor) GetShapeAtPoint(p vector.Pt) (shape.Shape, bool) {
	list := e.st.Sorted()
	for i := len(list) - 1; i >= 0; i-- {
		s := e.reg.Resolve(list[i], e.lookup)
		if e.reg.HitTest(s, p) {
			return s, true
		}
	}
	return shape.Shape{}, false
}

// GetShapesInBounds returns the shapes, in paint order, whose bounds
// intersect r. Touching edges count as intersecting.
func (e *Editor) GetShapesInBounds(r vector.Rect) []shape.Shape {
	var out []shape.Shape
	for _, s := range e.st.Sorted() {
		s = e.reg.Resolve(s, e.lookup)
		if e.reg.Bounds(s).Intersects(r) {
			out = append(out, s)
		}
	}
	return out
}

// Render returns the display list of the whole scene, back to front.
func (e *Editor) Render() []shapes.DrawCommand {
	ctx := shapes.RenderContext{Asset: e.st.Asset, Zoom: e.st.Camera().Zoom}
	var cmds []shapes.DrawCommand
	for _, s := range e.st.Sorted() {
		st := shapes.RenderState{Selected: e.st.IsSelected(s.ID), Editing: e.st.EditingID() == s.ID}
		cmds = append(cmds, e.reg.Render(s, st, ctx, e.lookup)...)
	}
	return cmds
}
