/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package scene holds the canvas aggregate: shapes, assets, selection, the
// shape being edited and the camera, plus its point-in-time snapshots and the
// persisted document form.
package scene

import (
	"cmp"
	"maps"
	"slices"

	"paperboard/internal/shape"
)

// State is the live scene. It is owned by a single editor and is not safe
// for concurrent use.
type State struct {
	shapes   map[string]shape.Shape
	seq      map[string]uint64
	nextSeq  uint64
	assets   map[string]shape.Asset
	selected map[string]struct{}
	editing  string
	camera   Camera
}

func New() *State {
	return &State{
		shapes:   map[string]shape.Shape{},
		seq:      map[string]uint64{},
		assets:   map[string]shape.Asset{},
		selected: map[string]struct{}{},
		camera:   DefaultCamera(),
	}
}

// Shape returns a deep copy of the shape with id.
func (st *State) Shape(id string) (shape.Shape, bool) {
	s, ok := st.shapes[id]
	if !ok {
		return shape.Shape{}, false
	}
	return s.Clone(), true
}

func (st *State) Has(id string) bool {
	_, ok := st.shapes[id]
	return ok
}

func (st *State) Len() int { return len(st.shapes) }

// Put inserts or replaces s. Replacing keeps the original insertion slot.
func (st *State) Put(s shape.Shape) {
	if _, ok := st.seq[s.ID]; !ok {
		st.nextSeq++
		st.seq[s.ID] = st.nextSeq
	}
	st.shapes[s.ID] = s.Clone()
}

// Remove deletes the shape, drops it from the selection and ends editing if
// it was the edited shape. It reports whether the shape existed.
func (st *State) Remove(id string) bool {
	if _, ok := st.shapes[id]; !ok {
		return false
	}
	delete(st.shapes, id)
	delete(st.seq, id)
	delete(st.selected, id)
	if st.editing == id {
		st.editing = ""
	}
	return true
}

// Sorted returns copies of all shapes in paint order (back to front): by
// index, ties by insertion order.
func (st *State) Sorted() []shape.Shape {
	out := make([]shape.Shape, 0, len(st.shapes))
	for _, s := range st.shapes {
		out = append(out, s.Clone())
	}
	slices.SortFunc(out, func(a, b shape.Shape) int {
		if c := cmp.Compare(a.Index, b.Index); c != 0 {
			return c
		}
		return cmp.Compare(st.seq[a.ID], st.seq[b.ID])
	})
	return out
}

// MaxIndex returns the highest index in use, or -1 for an empty scene so
// that the first shape gets index 0.
func (st *State) MaxIndex() float64 {
	if len(st.shapes) == 0 {
		return -1
	}
	first := true
	var m float64
	for _, s := range st.shapes {
		if first || s.Index > m {
			m, first = s.Index, false
		}
	}
	return m
}

// MinIndex returns the lowest index in use, or 0 for an empty scene.
func (st *State) MinIndex() float64 {
	first := true
	var m float64
	for _, s := range st.shapes {
		if first || s.Index < m {
			m, first = s.Index, false
		}
	}
	return m
}

// SetSelection replaces the selection as given; ids are not checked here.
func (st *State) SetSelection(ids []string) {
	st.selected = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		st.selected[id] = struct{}{}
	}
}

// IsSelected reports raw set membership.
func (st *State) IsSelected(id string) bool {
	_, ok := st.selected[id]
	return ok
}

// RawSelection returns the stored selection ids, sorted, stale ids included.
func (st *State) RawSelection() []string {
	return slices.Sorted(maps.Keys(st.selected))
}

// SelectedIDs returns the selected ids that still exist, in paint order.
func (st *State) SelectedIDs() []string {
	var out []string
	for _, s := range st.Sorted() {
		if _, ok := st.selected[s.ID]; ok {
			out = append(out, s.ID)
		}
	}
	return out
}

func (st *State) EditingID() string { return st.editing }

// SetEditing marks id as edited; an unknown id clears editing.
func (st *State) SetEditing(id string) {
	if _, ok := st.shapes[id]; !ok {
		id = ""
	}
	st.editing = id
}

func (st *State) Camera() Camera     { return st.camera }
func (st *State) SetCamera(c Camera) { st.camera = c.Clamp() }

func (st *State) Asset(id string) (shape.Asset, bool) {
	a, ok := st.assets[id]
	if !ok {
		return shape.Asset{}, false
	}
	return a.Clone(), true
}

func (st *State) PutAsset(a shape.Asset) { st.assets[a.ID] = a.Clone() }

func (st *State) RemoveAsset(id string) bool {
	if _, ok := st.assets[id]; !ok {
		return false
	}
	delete(st.assets, id)
	return true
}

// Assets returns copies of every asset ordered by id.
func (st *State) Assets() []shape.Asset {
	out := make([]shape.Asset, 0, len(st.assets))
	for _, id := range slices.Sorted(maps.Keys(st.assets)) {
		out = append(out, st.assets[id].Clone())
	}
	return out
}

// Reset empties the scene and restores the default camera.
func (st *State) Reset() { *st = *New() }
