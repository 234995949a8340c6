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

	"github.com/google/uuid"

	"paperboard/internal/shape"
)

// EditingID returns the shape in in-place edit mode, or "".
func (e *Editor) EditingID() string { return e.st.EditingID() }

// SetEditing enters edit mode for id, ending any current edit first. Only
// shapes whose behaviour can edit are accepted; "" just ends editing.
// Ending an edit runs the behaviour's end hook, which may patch the shape or
// remove it when it was left empty. Those follow-ups are recorded like any
// other change.
func (e *Editor) SetEditing(id string) bool {
	cur := e.st.EditingID()
	if cur == id {
		return id != ""
	}
	if cur != "" {
		e.endEdit(cur)
	}
	if id == "" {
		return false
	}
	s, ok := e.st.Shape(id)
	if !ok || !e.reg.Lookup(s.Type).CanEdit() {
		return false
	}
	if p := e.reg.Lookup(s.Type).OnEditStart(s); p != nil {
		e.UpdateShape(id, *p)
	}
	e.st.SetEditing(id)
	e.notify(EventEditing, "start")
	return true
}

// CreateEditing creates a shape of type t, selects it and enters edit mode
// on it. For editable types creation and everything up to the end of the
// edit is one undo step; an edit that leaves the shape empty removes it
// without leaving a step behind. Other types are created as by CreateShape.
func (e *Editor) CreateEditing(t shape.Type, p shape.Patch) shape.Shape {
	if !e.reg.Lookup(t).CanEdit() {
		s := e.CreateShape(t, p)
		e.SetSelection([]string{s.ID})
		return s
	}
	e.SetEditing("")
	e.SelectNone()
	e.editBatch = "edit:" + uuid.NewString()
	e.hist.StartBatch(e.editBatch)
	s := e.CreateShape(t, p)
	e.SetSelection([]string{s.ID})
	e.SetEditing(s.ID)
	return s
}

func (e *Editor) endEdit(id string) {
	defer e.closeEditBatch()
	e.st.SetEditing("")
	s, ok := e.st.Shape(id)
	if !ok {
		e.notify(EventEditing, "end")
		return
	}
	patch, remove := e.reg.Lookup(s.Type).OnEditEnd(s)
	switch {
	case remove:
		e.log.Debug("removing shape left empty by edit", slog.String("id", id))
		e.DeleteShape(id)
	case patch != nil:
		e.UpdateShape(id, *patch)
	}
	e.notify(EventEditing, "end")
}

func (e *Editor) closeEditBatch() {
	b := e.editBatch
	if b == "" {
		return
	}
	e.editBatch = ""
	// an undo or another gesture may already have committed it
	if e.hist.OpenBatch() == b {
		e.hist.EndBatch(b)
	}
}
