/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package shape defines the typed canvas model: shapes, their per-variant
// property bags, connector bindings and the assets shapes refer to.
package shape

import (
	"maps"

	"paperboard/internal/vector"
)

// Type tags a shape variant.
type Type string

const (
	TypeRect      Type = "rect"
	TypeCircle    Type = "circle"
	TypeArrow     Type = "arrow"
	TypeText      Type = "text"
	TypeImage     Type = "image"
	TypePointer   Type = "pointer"
	TypePaperNode Type = "paper-node"

	// TypeConnector only exists in legacy documents and is dropped on migration.
	TypeConnector Type = "connector"
)

// Types lists every variant a scene can hold, in registration order.
var Types = []Type{TypeRect, TypeCircle, TypeArrow, TypeText, TypeImage, TypePointer, TypePaperNode}

// Known reports whether t is a current (non-legacy) variant.
func (t Type) Known() bool {
	for _, k := range Types {
		if t == k {
			return true
		}
	}
	return false
}

// Shape is a positioned entity on the canvas. Rotation is reserved and
// always 0. Index defines paint order; equal indices fall back to insertion
// order as tracked by the scene.
type Shape struct {
	ID       string
	Type     Type
	X        float64
	Y        float64
	Width    float64
	Height   float64
	Rotation float64
	Opacity  float64
	Index    float64
	Props    Props
	Meta     map[string]any
}

// Box returns the nominal x/y/width/height box.
func (s Shape) Box() vector.Rect { return vector.R(s.X, s.Y, s.Width, s.Height) }

// Clone returns a deep copy; the result shares no mutable state with s.
func (s Shape) Clone() Shape {
	out := s
	if s.Props != nil {
		out.Props = s.Props.Clone()
	}
	if s.Meta != nil {
		out.Meta = cloneMeta(s.Meta)
	}
	return out
}

func cloneMeta(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		switch vv := v.(type) {
		case map[string]any:
			out[k] = cloneMeta(vv)
		case []any:
			cp := make([]any, len(vv))
			copy(cp, vv)
			out[k] = cp
		default:
			out[k] = v
		}
	}
	return out
}

// Patch is a partial update. Nil fields are left untouched; a non-nil Props
// replaces the property bag as a whole.
type Patch struct {
	X        *float64
	Y        *float64
	Width    *float64
	Height   *float64
	Rotation *float64
	Opacity  *float64
	Index    *float64
	Props    Props
	Meta     map[string]any
}

// F returns a pointer to v for building patches.
func F(v float64) *float64 { return &v }

// Empty reports whether p changes nothing.
func (p Patch) Empty() bool {
	return p.X == nil && p.Y == nil && p.Width == nil && p.Height == nil &&
		p.Rotation == nil && p.Opacity == nil && p.Index == nil && p.Props == nil && p.Meta == nil
}

// Apply returns s with p merged on top. A Props value of a different
// variant than s is ignored.
func (p Patch) Apply(s Shape) Shape {
	out := s.Clone()
	set := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	set(&out.X, p.X)
	set(&out.Y, p.Y)
	set(&out.Width, p.Width)
	set(&out.Height, p.Height)
	set(&out.Rotation, p.Rotation)
	set(&out.Opacity, p.Opacity)
	set(&out.Index, p.Index)
	if out.Width < 0 {
		out.Width = 0
	}
	if out.Height < 0 {
		out.Height = 0
	}
	if p.Props != nil && p.Props.Kind() == s.Type {
		out.Props = p.Props.Clone()
	}
	if p.Meta != nil {
		if out.Meta == nil {
			out.Meta = make(map[string]any, len(p.Meta))
		}
		maps.Copy(out.Meta, cloneMeta(p.Meta))
	}
	return out
}

// Merge combines two patches; fields set in q win.
func (p Patch) Merge(q Patch) Patch {
	pick := func(a, b *float64) *float64 {
		if b != nil {
			return b
		}
		return a
	}
	out := Patch{
		X:        pick(p.X, q.X),
		Y:        pick(p.Y, q.Y),
		Width:    pick(p.Width, q.Width),
		Height:   pick(p.Height, q.Height),
		Rotation: pick(p.Rotation, q.Rotation),
		Opacity:  pick(p.Opacity, q.Opacity),
		Index:    pick(p.Index, q.Index),
		Props:    p.Props,
		Meta:     p.Meta,
	}
	if q.Props != nil {
		out.Props = q.Props
	}
	if q.Meta != nil {
		out.Meta = q.Meta
	}
	return out
}
