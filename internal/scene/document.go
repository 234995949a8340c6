/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"bytes"
	"cmp"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"paperboard/internal/shape"
)

// Document is the current persisted format of a scene.
type Document struct {
	Shapes      map[string]shape.Shape `json:"shapes"`
	Assets      map[string]shape.Asset `json:"assets"`
	SelectedIDs []string               `json:"selectedIds"`
	EditingID   *string                `json:"editingId"`
	Camera      Camera                 `json:"camera"`
}

// ToDocument converts the live state; the selection set becomes a sorted array.
func (st *State) ToDocument() Document {
	doc := Document{
		Shapes:      make(map[string]shape.Shape, len(st.shapes)),
		Assets:      make(map[string]shape.Asset, len(st.assets)),
		SelectedIDs: st.RawSelection(),
		Camera:      st.camera,
	}
	for id, s := range st.shapes {
		doc.Shapes[id] = s.Clone()
	}
	for id, a := range st.assets {
		doc.Assets[id] = a.Clone()
	}
	if st.editing != "" {
		e := st.editing
		doc.EditingID = &e
	}
	return doc
}

// FromDocument builds a state from doc. Map keys win over embedded ids.
// Insertion order is rebuilt from (index, id) since maps carry none.
func FromDocument(doc Document) *State {
	st := New()
	list := make([]shape.Shape, 0, len(doc.Shapes))
	for id, s := range doc.Shapes {
		s.ID = id
		list = append(list, s)
	}
	slices.SortFunc(list, func(a, b shape.Shape) int {
		if c := cmp.Compare(a.Index, b.Index); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	for _, s := range list {
		st.Put(s)
	}
	for _, id := range slices.Sorted(maps.Keys(doc.Assets)) {
		a := doc.Assets[id]
		a.ID = id
		st.PutAsset(a)
	}
	st.SetSelection(doc.SelectedIDs)
	if doc.EditingID != nil {
		st.SetEditing(*doc.EditingID)
	}
	st.SetCamera(doc.Camera)
	return st
}

// MarshalDocument encodes the state as current-format JSON.
func (st *State) MarshalDocument() ([]byte, error) {
	return json.Marshal(st.ToDocument())
}

// ParseDocument decodes current-format JSON.
func ParseDocument(raw []byte) (Document, error) {
	var doc Document
	if !IsCurrentFormat(raw) {
		return doc, fmt.Errorf("not a current-format scene document")
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Document{}, fmt.Errorf("decode scene document: %w", err)
	}
	return doc, nil
}

// IsCurrentFormat reports whether raw is a JSON object (not an array) that
// carries a camera field.
func IsCurrentFormat(raw []byte) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return false
	}
	_, ok := fields["camera"]
	return ok
}
