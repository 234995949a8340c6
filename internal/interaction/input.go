/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package interaction

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"paperboard/internal/assets"
	"paperboard/internal/shape"
	"paperboard/internal/shapes"
	"paperboard/internal/vector"
)

// DoubleClick edits text in place, asks the viewer to navigate for pointer
// snapshots, and creates a text shape on empty canvas.
func (c *Controller) DoubleClick(ev PointerEvent) {
	if c.mode != ModeIdle {
		c.finish()
	}
	wp := c.world(ev.Screen)
	hit, ok := c.ed.GetShapeAtPoint(wp)
	if !ok {
		c.createAt(shape.TypeText, wp)
		return
	}
	switch c.ed.Registry().Lookup(hit.Type).OnDoubleClick(hit) {
	case shapes.DoubleClickEdit:
		c.ed.SetSelection([]string{hit.ID})
		c.ed.SetEditing(hit.ID)
	case shapes.DoubleClickNavigate:
		c.navigate(hit)
	}
}

func (c *Controller) navigate(s shape.Shape) {
	id, _ := shape.AssetRef(s.Props)
	a, ok := c.ed.GetAsset(id)
	if !ok || a.Meta == nil {
		c.log.Warn("pointer without source metadata", slog.String("shape", s.ID), slog.String("asset", id))
		return
	}
	if c.nav == nil {
		c.log.Debug("no navigator registered", slog.String("shape", s.ID))
		return
	}
	c.nav(Navigation{PdfID: a.Meta.PdfID, Page: a.Meta.Page, Rect: a.Meta.Rect})
}

// Wheel zooms by one step per event, keeping the world point under the
// cursor fixed. Negative dy zooms in.
func (c *Controller) Wheel(sp vector.Pt, dy float64) {
	switch {
	case dy < 0:
		c.ed.ZoomAt(sp, WheelZoomStep)
	case dy > 0:
		c.ed.ZoomAt(sp, 1/WheelZoomStep)
	}
}

// Drop payload kinds.
const (
	DropPointerSnapshot = "paperboard/pointer-snapshot"
	DropImage           = "paperboard/image"
)

// DropPayload is externally dragged content.
type DropPayload struct {
	Kind string
	Data []byte
}

type snapshotDrop struct {
	Src    string      `json:"src"`
	Width  float64     `json:"width"`
	Height float64     `json:"height"`
	PdfID  int         `json:"pdfId"`
	Page   int         `json:"page"`
	Rect   vector.Rect `json:"rect"`
}

// Drop places a pointer snapshot or an image at the drop point. Missing
// intrinsic dimensions are measured from the source first; a drop whose
// source cannot be measured is rejected. Unknown kinds are ignored.
func (c *Controller) Drop(ctx context.Context, sp vector.Pt, p DropPayload) (shape.Shape, bool) {
	var d snapshotDrop
	switch p.Kind {
	case DropPointerSnapshot, DropImage:
		if err := json.Unmarshal(p.Data, &d); err != nil {
			c.log.Warn("drop payload rejected", slog.String("kind", p.Kind), slog.Any("err", err))
			return shape.Shape{}, false
		}
	default:
		c.log.Debug("ignore drop", slog.String("kind", p.Kind))
		return shape.Shape{}, false
	}
	in := shape.Asset{Type: shape.AssetImage, Src: d.Src, Width: d.Width, Height: d.Height}
	if p.Kind == DropPointerSnapshot {
		in.Type = shape.AssetPointer
		in.Meta = &shape.PointerMeta{PdfID: d.PdfID, Page: d.Page, Rect: d.Rect}
	}
	a, err := assets.Prepare(ctx, c.ed, in)
	if err != nil {
		c.log.Warn("drop source not measurable", slog.String("kind", p.Kind), slog.Any("err", err))
		return shape.Shape{}, false
	}

	wp := c.world(sp)
	w, h := a.Width, a.Height
	t := shape.TypeImage
	var props shape.Props = shape.ImageProps{AssetID: a.ID}
	if p.Kind == DropPointerSnapshot {
		if d.Rect.W > 0 && d.Rect.H > 0 {
			w, h = d.Rect.W, d.Rect.H
		}
		t, props = shape.TypePointer, shape.PointerProps{AssetID: a.ID}
	}
	s := c.ed.CreateShape(t, shape.Patch{X: shape.F(wp.X), Y: shape.F(wp.Y), Width: shape.F(w), Height: shape.F(h), Props: props})
	c.ed.SetSelection([]string{s.ID})
	return s, true
}

// KeyEvent is a key press. Key is a single character or a key name such as
// "Delete" or "Escape".
type KeyEvent struct {
	Key  string
	Mods Modifiers
}

var toolKeys = map[string]Tool{
	"v": ToolSelect,
	"t": ToolText,
	"r": ToolRect,
	"o": ToolCircle,
	"a": ToolArrow,
	"l": ToolLine,
	"e": ToolEraser,
}

// Key runs a keyboard shortcut and reports whether it was handled.
// Shortcuts are suppressed while typing in a field or editing a shape.
func (c *Controller) Key(ev KeyEvent, typing bool) bool {
	if typing || c.ed.EditingID() != "" {
		return false
	}
	key := ev.Key
	if len(key) == 1 {
		key = strings.ToLower(key)
	}
	cmd := ev.Mods.Has(ModCtrl) || ev.Mods.Has(ModMeta)
	shift := ev.Mods.Has(ModShift)
	sel := c.ed.SelectedIDs

	if cmd {
		switch key {
		case "z":
			if shift {
				c.ed.Redo()
			} else {
				c.ed.Undo()
			}
		case "y":
			c.ed.Redo()
		case "c":
			c.ed.Copy()
		case "v":
			c.ed.Paste()
		case "d":
			c.ed.DuplicateShapes(sel())
		case "a":
			c.ed.SelectAll()
		case "]":
			c.ed.BringToFront(sel())
		case "[":
			c.ed.SendToBack(sel())
		default:
			return false
		}
		return true
	}
	switch key {
	case "Delete", "Backspace":
		c.ed.DeleteShapes(sel())
	case "]":
		c.ed.BringForward(sel())
	case "[":
		c.ed.SendBackward(sel())
	case "Escape":
		c.ed.SelectNone()
		c.SetTool(ToolSelect)
	default:
		t, ok := toolKeys[key]
		if !ok {
			return false
		}
		c.SetTool(t)
	}
	return true
}
