/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package shapes

import (
	"strings"

	"paperboard/internal/shape"
)

// TextBehavior is the only type that supports in-place editing.
type TextBehavior struct{ Base }

func (TextBehavior) Type() shape.Type { return shape.TypeText }

func (TextBehavior) DefaultProps() shape.Props {
	return shape.TextProps{Text: "", FontSize: 16, Color: defaultStroke, Align: "left"}
}

func (TextBehavior) DefaultSize() (float64, float64) { return 200, 40 }

func (TextBehavior) CanEdit() bool { return true }

func (TextBehavior) OnDoubleClick(shape.Shape) DoubleClick { return DoubleClickEdit }

// OnEditEnd trims surrounding whitespace and asks for removal when nothing
// is left.
func (TextBehavior) OnEditEnd(s shape.Shape) (*shape.Patch, bool) {
	p, _ := s.Props.(shape.TextProps)
	trimmed := strings.TrimSpace(p.Text)
	if trimmed == "" {
		return nil, true
	}
	if trimmed == p.Text {
		return nil, false
	}
	p.Text = trimmed
	return &shape.Patch{Props: p}, false
}

func (b TextBehavior) Render(s shape.Shape, st RenderState, ctx RenderContext) []DrawCommand {
	p, _ := s.Props.(shape.TextProps)
	cmds := []DrawCommand{{
		Op: OpText, ShapeID: s.ID, Rect: s.Box(), Text: p.Text, FontSize: p.FontSize,
		Fill: p.Color, Align: p.Align, Opacity: s.Opacity, Editing: st.Editing,
	}}
	if st.Selected && !st.Editing {
		cmds = append(cmds, selectionChrome(s.ID, b.Bounds(s), ctx)...)
	}
	return cmds
}
