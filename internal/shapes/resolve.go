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

// Lookup finds a shape of the current scene by id.
type Lookup func(id string) (shape.Shape, bool)

// AnchorOf returns the world position of anchor a on target.
func (r *Registry) AnchorOf(target shape.Shape, a vector.Anchor) vector.Pt {
	return vector.AnchorPoint(r.Bounds(target), a)
}

// ResolveArrow returns a copy of the arrow whose bound endpoints sit on their
// target's anchor as the target is right now. An endpoint whose target is
// missing keeps its stored coordinates.
func (r *Registry) ResolveArrow(s shape.Shape, lookup Lookup) shape.Shape {
	p, ok := s.Props.(shape.ArrowProps)
	if !ok || lookup == nil || (p.StartBinding == nil && p.EndBinding == nil) {
		return s
	}
	out := s.Clone()
	np := out.Props.(shape.ArrowProps)
	origin := vector.Pt{X: s.X, Y: s.Y}
	if pt, ok := r.bound(p.StartBinding, s.ID, lookup); ok {
		np.Start = pt.Sub(origin)
	}
	if pt, ok := r.bound(p.EndBinding, s.ID, lookup); ok {
		np.End = pt.Sub(origin)
	}
	out.Props = np
	return out
}

func (r *Registry) bound(b *shape.Binding, self string, lookup Lookup) (vector.Pt, bool) {
	if b == nil || b.ShapeID == "" || b.ShapeID == self {
		return vector.Pt{}, false
	}
	t, ok := lookup(b.ShapeID)
	if !ok || !r.Has(t.Type) {
		return vector.Pt{}, false
	}
	return r.AnchorOf(t, b.Anchor), true
}

// Resolve applies live cross-references of s (arrow bindings); other types
// are returned unchanged.
func (r *Registry) Resolve(s shape.Shape, lookup Lookup) shape.Shape {
	if s.Type == shape.TypeArrow {
		return r.ResolveArrow(s, lookup)
	}
	return s
}

// FreezeBindings converts every binding of the arrow that points at a shape
// matched by gone into a fixed endpoint at its last resolved position. It
// reports whether anything changed.
func (r *Registry) FreezeBindings(s shape.Shape, lookup Lookup, gone func(id string) bool) (shape.Shape, bool) {
	p, ok := s.Props.(shape.ArrowProps)
	if !ok {
		return s, false
	}
	startGone := p.StartBinding != nil && gone(p.StartBinding.ShapeID)
	endGone := p.EndBinding != nil && gone(p.EndBinding.ShapeID)
	if !startGone && !endGone {
		return s, false
	}
	out := r.ResolveArrow(s, lookup).Clone()
	np := out.Props.(shape.ArrowProps)
	if startGone {
		np.StartBinding = nil
	}
	if endGone {
		np.EndBinding = nil
	}
	out.Props = np
	return out, true
}

// Render resolves s against the scene and renders it with its behaviour.
func (r *Registry) Render(s shape.Shape, st RenderState, ctx RenderContext, lookup Lookup) []DrawCommand {
	s = r.Resolve(s, lookup)
	return r.Lookup(s.Type).Render(s, st, ctx)
}
