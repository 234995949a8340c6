/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"log/slog"

	"paperboard/internal/scene"
	"paperboard/internal/shape"
)

// ToJSON serializes the scene in the current document format. Errors are
// logged and yield "".
func (e *Editor) ToJSON() string {
	b, err := e.st.MarshalDocument()
	if err != nil {
		e.log.Error("serialize scene failed", slog.Any("err", err))
		return ""
	}
	return string(b)
}

// LoadJSON replaces the scene with a current-format document. Malformed
// input is logged and leaves the scene untouched; the result reports
// whether the load happened. History is cleared on success.
func (e *Editor) LoadJSON(raw string) bool {
	doc, err := scene.ParseDocument([]byte(raw))
	if err != nil {
		e.log.Warn("load scene failed", slog.Any("err", err))
		return false
	}
	for id, s := range doc.Shapes {
		if !e.reg.Has(s.Type) {
			e.log.Warn("load scene failed", slog.String("shape", id), slog.String("type", string(s.Type)))
			return false
		}
	}
	st := scene.FromDocument(doc)
	if id := st.EditingID(); id != "" {
		if s, ok := st.Shape(id); !ok || !e.reg.Lookup(s.Type).CanEdit() {
			e.log.Debug("dropping editing id of a shape that cannot edit", slog.String("id", id))
			st.SetEditing("")
		}
	}
	e.editBatch = ""
	*e.st = *st
	e.hist.Clear()
	e.notify(EventLoad, "json")
	return true
}

// LoadState replaces the scene with the given shapes and assets (for
// example the output of a legacy migration). Camera and history reset.
func (e *Editor) LoadState(list []shape.Shape, assets []shape.Asset) {
	st := scene.New()
	for _, s := range list {
		if !e.reg.Has(s.Type) {
			e.log.Warn("dropping shape of unknown type", slog.String("id", s.ID), slog.String("type", string(s.Type)))
			continue
		}
		st.Put(s)
	}
	for _, a := range assets {
		st.PutAsset(a)
	}
	e.editBatch = ""
	*e.st = *st
	e.hist.Clear()
	e.notify(EventLoad, "state")
}
