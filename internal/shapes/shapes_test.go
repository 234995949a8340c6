/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package shapes

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"paperboard/internal/shape"
	"paperboard/internal/vector"
)

func lookupOf(list ...shape.Shape) Lookup {
	m := map[string]shape.Shape{}
	for _, s := range list {
		m[s.ID] = s
	}
	return func(id string) (shape.Shape, bool) {
		s, ok := m[id]
		return s, ok
	}
}

func TestDefaultRegistryHasEveryType(t *testing.T) {
	reg := Default()
	for _, typ := range shape.Types {
		b := reg.Lookup(typ)
		require.Equal(t, typ, b.Type())
		require.Equal(t, typ, b.DefaultProps().Kind())
	}
}

func TestLookupUnregisteredPanics(t *testing.T) {
	reg := NewRegistry()
	defer func() {
		rec := recover()
		require.NotNil(t, rec)
		err, ok := rec.(error)
		require.True(t, ok)
		require.True(t, errors.Is(err, ErrUnregistered))
	}()
	reg.Lookup(shape.TypeRect)
}

func TestEllipseHitTest(t *testing.T) {
	s := shape.Shape{ID: "c", Type: shape.TypeCircle, Width: 100, Height: 50, Props: shape.CircleProps{}}
	b := Default().Lookup(shape.TypeCircle)
	require.True(t, b.HitTest(s, vector.Pt{X: 50, Y: 25}))
	require.False(t, b.HitTest(s, vector.Pt{X: 0, Y: 0}))
	require.True(t, b.HitTest(s, vector.Pt{X: 50, Y: 0}))
}

func TestRectHitTestIsBoxContainment(t *testing.T) {
	s := shape.Shape{ID: "r", Type: shape.TypeRect, X: 10, Y: 10, Width: 20, Height: 20}
	b := Default().Lookup(shape.TypeRect)
	require.True(t, b.HitTest(s, vector.Pt{X: 10, Y: 10}))
	require.False(t, b.HitTest(s, vector.Pt{X: 31, Y: 10}))
}

func TestArrowBoundsAndHitTest(t *testing.T) {
	s := shape.Shape{ID: "a", Type: shape.TypeArrow, X: 100, Y: 100, Props: shape.ArrowProps{Start: vector.Pt{X: 0, Y: 0}, End: vector.Pt{X: 100, Y: -50}}}
	b := Default().Lookup(shape.TypeArrow)
	require.Equal(t, vector.R(100, 50, 100, 50), b.Bounds(s))
	require.True(t, b.HitTest(s, vector.Pt{X: 150, Y: 80}))
	require.False(t, b.HitTest(s, vector.Pt{X: 100, Y: 50}))
	// beyond the end the projection clamps to the endpoint
	require.True(t, b.HitTest(s, vector.Pt{X: 205, Y: 50}))
	require.False(t, b.HitTest(s, vector.Pt{X: 215, Y: 50}))
}

func TestArrowResizeScalesPoints(t *testing.T) {
	s := shape.Shape{ID: "a", Type: shape.TypeArrow, X: 0, Y: 0, Width: 100, Height: 100, Props: shape.ArrowProps{End: vector.Pt{X: 100, Y: 100}}}
	b := Default().Lookup(shape.TypeArrow)
	p := b.OnResize(s, ResizeInfo{InitialBounds: vector.R(0, 0, 100, 100), NewBounds: vector.R(10, 10, 200, 50), Handle: vector.AnchorSE})
	out := p.Apply(s)
	start, end := Endpoints(out)
	require.Equal(t, vector.Pt{X: 10, Y: 10}, start)
	require.Equal(t, vector.Pt{X: 210, Y: 60}, end)
}

func TestDefaultResizeMapsBounds(t *testing.T) {
	s := shape.Shape{ID: "r", Type: shape.TypeRect, Width: 10, Height: 10}
	p := Default().Lookup(shape.TypeRect).OnResize(s, ResizeInfo{NewBounds: vector.R(1, 2, 30, 40)})
	require.Equal(t, vector.R(1, 2, 30, 40), p.Apply(s).Box())
}

func TestTextEditHooks(t *testing.T) {
	b := Default().Lookup(shape.TypeText)
	require.True(t, b.CanEdit())
	require.False(t, Default().Lookup(shape.TypeRect).CanEdit())
	require.Equal(t, DoubleClickEdit, b.OnDoubleClick(shape.Shape{}))

	p, remove := b.OnEditEnd(shape.Shape{Type: shape.TypeText, Props: shape.TextProps{Text: "  hi "}})
	require.False(t, remove)
	require.NotNil(t, p)
	require.Equal(t, "hi", p.Props.(shape.TextProps).Text)

	_, remove = b.OnEditEnd(shape.Shape{Type: shape.TypeText, Props: shape.TextProps{Text: "   "}})
	require.True(t, remove)
}

func TestResolveArrowTracksTarget(t *testing.T) {
	reg := Default()
	rect := shape.Shape{ID: "r", Type: shape.TypeRect, X: 60, Y: 10, Width: 100, Height: 100}
	arrow := shape.Shape{ID: "a", Type: shape.TypeArrow, X: 110, Y: 110, Props: shape.ArrowProps{
		End:          vector.Pt{X: 50, Y: 50},
		StartBinding: &shape.Binding{ShapeID: "r", Anchor: vector.AnchorSE},
	}}
	resolved := reg.ResolveArrow(arrow, lookupOf(rect))
	start, end := Endpoints(resolved)
	require.Equal(t, vector.Pt{X: 160, Y: 110}, start)
	require.Equal(t, vector.Pt{X: 160, Y: 160}, end)

	// missing target falls back to the stored point
	start, _ = Endpoints(reg.ResolveArrow(arrow, lookupOf()))
	require.Equal(t, vector.Pt{X: 110, Y: 110}, start)
}

func TestFreezeBindings(t *testing.T) {
	reg := Default()
	rect := shape.Shape{ID: "r", Type: shape.TypeRect, X: 0, Y: 0, Width: 40, Height: 40}
	arrow := shape.Shape{ID: "a", Type: shape.TypeArrow, X: 100, Y: 100, Props: shape.ArrowProps{
		StartBinding: &shape.Binding{ShapeID: "r", Anchor: vector.AnchorE},
		EndBinding:   &shape.Binding{ShapeID: "other", Anchor: vector.AnchorW},
	}}
	out, changed := reg.FreezeBindings(arrow, lookupOf(rect), func(id string) bool { return id == "r" })
	require.True(t, changed)
	p := out.Props.(shape.ArrowProps)
	require.Nil(t, p.StartBinding)
	require.NotNil(t, p.EndBinding)
	start, _ := Endpoints(out)
	require.Equal(t, vector.Pt{X: 40, Y: 20}, start)
}

func TestRenderMissingAssetIsPlaceholder(t *testing.T) {
	reg := Default()
	s := shape.Shape{ID: "i", Type: shape.TypeImage, Width: 10, Height: 10, Opacity: 1, Props: shape.ImageProps{AssetID: "gone"}}
	cmds := reg.Render(s, RenderState{}, RenderContext{}, nil)
	require.Len(t, cmds, 1)
	require.Equal(t, OpPlaceholder, cmds[0].Op)

	ctx := RenderContext{Asset: func(id string) (shape.Asset, bool) {
		return shape.Asset{ID: id, Type: shape.AssetImage, Src: "data:image/png;base64,AA", Width: 4, Height: 4}, true
	}}
	cmds = reg.Render(s, RenderState{Selected: true}, ctx, nil)
	require.Equal(t, OpImage, cmds[0].Op)
	require.Equal(t, OpSelection, cmds[1].Op)
	require.Len(t, cmds, 2+len(vector.Anchors))
}

func TestRenderIsPure(t *testing.T) {
	reg := Default()
	s := shape.Shape{ID: "r", Type: shape.TypeRect, Width: 10, Height: 10, Opacity: 1, Props: reg.Lookup(shape.TypeRect).DefaultProps()}
	a := reg.Render(s, RenderState{Selected: true}, RenderContext{Zoom: 2}, nil)
	b := reg.Render(s, RenderState{Selected: true}, RenderContext{Zoom: 2}, nil)
	require.Equal(t, a, b)
}

func TestArrowRenderHeads(t *testing.T) {
	reg := Default()
	s := shape.Shape{ID: "a", Type: shape.TypeArrow, Opacity: 1, Props: shape.ArrowProps{End: vector.Pt{X: 100}, ArrowheadEnd: shape.HeadArrow, ArrowheadStart: shape.HeadNone, StrokeWidth: 2}}
	cmds := reg.Render(s, RenderState{}, RenderContext{}, nil)
	require.Len(t, cmds, 2)
	require.Equal(t, OpLine, cmds[0].Op)
	require.Equal(t, OpArrowhead, cmds[1].Op)
	require.Equal(t, vector.Pt{X: 100}, cmds[1].To)

	bounds, ok := BoundsOf(cmds)
	require.True(t, ok)
	require.Equal(t, 100.0, bounds.W)
}

func TestHandleHit(t *testing.T) {
	s := shape.Shape{ID: "a", Type: shape.TypeArrow, Props: shape.ArrowProps{End: vector.Pt{X: 100}}}
	which, ok := HandleHit(s, vector.Pt{X: 98, Y: 2}, 8)
	require.True(t, ok)
	require.Equal(t, "end", which)
	_, ok = HandleHit(s, vector.Pt{X: 50}, 8)
	require.False(t, ok)
}
