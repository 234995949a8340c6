/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package shapes is the behaviour registry of the canvas: for every shape
// type it knows the default props, geometry, hit-testing, resize, editing
// hooks and how to render the shape into draw commands.
package shapes

import (
	"paperboard/internal/shape"
	"paperboard/internal/vector"
)

// ResizeInfo describes an in-progress resize gesture.
type ResizeInfo struct {
	InitialBounds vector.Rect
	NewBounds     vector.Rect
	Handle        vector.Anchor
}

// RenderState carries the per-shape UI flags.
type RenderState struct {
	Selected bool
	Editing  bool
}

// RenderContext supplies what a render needs beyond the shape itself.
// Any nil lookup behaves as "not found".
type RenderContext struct {
	Asset func(id string) (shape.Asset, bool)
	Zoom  float64
}

func (c RenderContext) asset(id string) (shape.Asset, bool) {
	if c.Asset == nil || id == "" {
		return shape.Asset{}, false
	}
	return c.Asset(id)
}

func (c RenderContext) zoom() float64 {
	if c.Zoom <= 0 {
		return 1
	}
	return c.Zoom
}

// DoubleClick is what a double-click on a shape should trigger.
type DoubleClick int

const (
	DoubleClickNone DoubleClick = iota
	DoubleClickEdit
	DoubleClickNavigate
)

// Behavior is the capability table of one shape type.
type Behavior interface {
	Type() shape.Type
	DefaultProps() shape.Props
	// DefaultSize is the box a creation tool uses for a click without drag.
	DefaultSize() (w, h float64)
	Bounds(s shape.Shape) vector.Rect
	HitTest(s shape.Shape, p vector.Pt) bool
	OnResize(s shape.Shape, info ResizeInfo) shape.Patch
	// AspectRatio is the width/height ratio enforced while resizing with the
	// aspect modifier held. Zero disables the lock.
	AspectRatio(s shape.Shape, initial vector.Rect) float64
	CanEdit() bool
	OnDoubleClick(s shape.Shape) DoubleClick
	OnEditStart(s shape.Shape) *shape.Patch
	// OnEditEnd returns an optional patch and whether the shape should be
	// removed because editing left it empty.
	OnEditEnd(s shape.Shape) (*shape.Patch, bool)
	Render(s shape.Shape, st RenderState, ctx RenderContext) []DrawCommand
}

// Base implements the default behaviour; concrete types embed it and
// override what differs.
type Base struct{}

func (Base) DefaultSize() (float64, float64) { return 100, 100 }

func (Base) Bounds(s shape.Shape) vector.Rect { return s.Box() }

func (Base) HitTest(s shape.Shape, p vector.Pt) bool { return s.Box().Contains(p) }

func (Base) OnResize(_ shape.Shape, info ResizeInfo) shape.Patch {
	nb := info.NewBounds
	return shape.Patch{X: shape.F(nb.X), Y: shape.F(nb.Y), Width: shape.F(nb.W), Height: shape.F(nb.H)}
}

func (Base) AspectRatio(_ shape.Shape, initial vector.Rect) float64 {
	if initial.H <= 0 {
		return 0
	}
	return initial.W / initial.H
}

func (Base) CanEdit() bool                              { return false }
func (Base) OnDoubleClick(shape.Shape) DoubleClick      { return DoubleClickNone }
func (Base) OnEditStart(shape.Shape) *shape.Patch       { return nil }
func (Base) OnEditEnd(shape.Shape) (*shape.Patch, bool) { return nil, false }

// selectionChrome draws the outline and the eight resize handles of a
// selected box. Handle size is constant in screen space.
func selectionChrome(id string, r vector.Rect, ctx RenderContext) []DrawCommand {
	cmds := []DrawCommand{{Op: OpSelection, ShapeID: id, Rect: r, Stroke: selectionColor, StrokeWidth: 1 / ctx.zoom()}}
	hs := 8 / ctx.zoom()
	for _, a := range vector.Anchors {
		p := vector.AnchorPoint(r, a)
		cmds = append(cmds, DrawCommand{Op: OpHandle, ShapeID: id, Rect: vector.R(p.X-hs/2, p.Y-hs/2, hs, hs), Fill: "#ffffff", Stroke: selectionColor, StrokeWidth: 1 / ctx.zoom()})
	}
	return cmds
}

const selectionColor = "#2563eb"
