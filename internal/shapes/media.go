/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package shapes

import "paperboard/internal/shape"

// renderAsset draws the referenced asset into the shape box, or a
// placeholder when the asset is missing.
func renderAsset(s shape.Shape, assetID string, st RenderState, ctx RenderContext) []DrawCommand {
	var cmds []DrawCommand
	if a, ok := ctx.asset(assetID); ok && a.Src != "" {
		cmds = append(cmds, DrawCommand{
			Op: OpImage, ShapeID: s.ID, Rect: s.Box(), Opacity: s.Opacity,
			AssetID: a.ID, Src: a.Src, ImageWidth: a.Width, ImageHeight: a.Height,
		})
	} else {
		cmds = append(cmds, DrawCommand{Op: OpPlaceholder, ShapeID: s.ID, Rect: s.Box(), Fill: "#e5e7eb", Stroke: "#9ca3af", StrokeWidth: 1, AssetID: assetID})
	}
	if st.Selected {
		cmds = append(cmds, selectionChrome(s.ID, s.Box(), ctx)...)
	}
	return cmds
}

type ImageBehavior struct{ Base }

func (ImageBehavior) Type() shape.Type          { return shape.TypeImage }
func (ImageBehavior) DefaultProps() shape.Props { return shape.ImageProps{} }

func (ImageBehavior) Render(s shape.Shape, st RenderState, ctx RenderContext) []DrawCommand {
	p, _ := s.Props.(shape.ImageProps)
	return renderAsset(s, p.AssetID, st, ctx)
}

// PointerBehavior renders a snapshot of a document region. Double-clicking
// it asks the viewer to navigate to the source page.
type PointerBehavior struct{ Base }

func (PointerBehavior) Type() shape.Type          { return shape.TypePointer }
func (PointerBehavior) DefaultProps() shape.Props { return shape.PointerProps{} }

func (PointerBehavior) OnDoubleClick(shape.Shape) DoubleClick { return DoubleClickNavigate }

func (PointerBehavior) Render(s shape.Shape, st RenderState, ctx RenderContext) []DrawCommand {
	p, _ := s.Props.(shape.PointerProps)
	body := renderAsset(s, p.AssetID, RenderState{}, ctx)
	body = append(body, DrawCommand{Op: OpRect, ShapeID: s.ID, Rect: s.Box(), Stroke: "#f59e0b", StrokeWidth: 2, Fill: "transparent", Opacity: s.Opacity})
	if st.Selected {
		body = append(body, selectionChrome(s.ID, s.Box(), ctx)...)
	}
	return body
}
