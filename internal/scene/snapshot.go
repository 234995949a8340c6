/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"slices"

	"paperboard/internal/shape"
)

// Snapshot is a deep, point-in-time copy of the undoable part of a scene:
// the shapes (in paint order) and the selection. Camera and assets are not
// part of it.
type Snapshot struct {
	Shapes   []shape.Shape
	Selected []string
}

// Snapshot captures the current shapes and raw selection.
func (st *State) Snapshot() Snapshot {
	return Snapshot{Shapes: st.Sorted(), Selected: st.RawSelection()}
}

// Restore replaces shapes and selection with sn. Assets and camera are kept;
// editing ends if the edited shape is gone.
func (st *State) Restore(sn Snapshot) {
	st.shapes = make(map[string]shape.Shape, len(sn.Shapes))
	st.seq = make(map[string]uint64, len(sn.Shapes))
	for _, s := range sn.Shapes {
		st.Put(s)
	}
	st.SetSelection(sn.Selected)
	if _, ok := st.shapes[st.editing]; !ok {
		st.editing = ""
	}
}

// Clone deep-copies the snapshot.
func (sn Snapshot) Clone() Snapshot {
	out := Snapshot{Shapes: make([]shape.Shape, len(sn.Shapes)), Selected: slices.Clone(sn.Selected)}
	for i, s := range sn.Shapes {
		out.Shapes[i] = s.Clone()
	}
	return out
}

// IDs returns the shape ids of the snapshot in paint order.
func (sn Snapshot) IDs() []string {
	out := make([]string, len(sn.Shapes))
	for i, s := range sn.Shapes {
		out[i] = s.ID
	}
	return out
}
