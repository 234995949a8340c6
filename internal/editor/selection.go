/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"github.com/samber/lo"

	"paperboard/internal/shape"
)

// Selection is not undoable; changes only notify.

// SetSelection replaces the selection outright. Ids are not validated here;
// readers filter stale ids.
func (e *Editor) SetSelection(ids []string) {
	e.st.SetSelection(lo.Uniq(ids))
	e.notify(EventSelection, "set")
}

func (e *Editor) SelectNone() { e.SetSelection(nil) }

func (e *Editor) SelectAll() {
	e.SetSelection(lo.Map(e.st.Sorted(), func(s shape.Shape, _ int) string { return s.ID }))
}

// ToggleSelection flips membership of id.
func (e *Editor) ToggleSelection(id string) {
	ids := e.st.RawSelection()
	if e.st.IsSelected(id) {
		ids = lo.Without(ids, id)
	} else {
		ids = append(ids, id)
	}
	e.SetSelection(ids)
}

// SelectedIDs returns the existing selected ids in paint order.
func (e *Editor) SelectedIDs() []string { return e.st.SelectedIDs() }

func (e *Editor) IsSelected(id string) bool { return e.st.IsSelected(id) }

// GetSelectedShapes returns the existing selected shapes in paint order.
func (e *Editor) GetSelectedShapes() []shape.Shape {
	return lo.FilterMap(e.st.SelectedIDs(), func(id string, _ int) (shape.Shape, bool) {
		return e.st.Shape(id)
	})
}
