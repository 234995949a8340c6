/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package interaction

import (
	"log/slog"

	"github.com/google/uuid"

	"paperboard/internal/editor"
	"paperboard/internal/shape"
	"paperboard/internal/vector"
)

var creationTypes = map[Tool]shape.Type{
	ToolText:   shape.TypeText,
	ToolRect:   shape.TypeRect,
	ToolCircle: shape.TypeCircle,
}

// PointerDown starts a gesture. Dispatch order: middle button pans, an
// endpoint handle of a selected connector starts an endpoint drag, then any
// in-place edit ends and the tool decides.
func (c *Controller) PointerDown(ev PointerEvent) {
	if c.mode != ModeIdle {
		c.finish()
	}
	wp := c.world(ev.Screen)
	c.startScreen, c.startWorld = ev.Screen, wp

	if ev.Button == ButtonMiddle {
		c.beginPan()
		return
	}
	if id, end, ok := c.endpointAt(wp); ok {
		c.begin(ModeDraggingEndpoint)
		c.target, c.endpoint = id, end
		return
	}
	if c.ed.EditingID() != "" {
		c.ed.SetEditing("")
	}
	switch c.tool {
	case ToolText, ToolRect, ToolCircle:
		c.createAt(creationTypes[c.tool], wp)
	case ToolArrow, ToolLine:
		c.beginConnector(wp)
	case ToolEraser:
		c.begin(ModeErasing)
		c.eraseAt(wp)
	default:
		c.selectDown(wp, ev.Mods)
	}
}

// PointerMove feeds the active gesture.
func (c *Controller) PointerMove(ev PointerEvent) {
	switch c.mode {
	case ModePanning:
		d := ev.Screen.Sub(c.startScreen)
		x, y := c.startCam.X+d.X, c.startCam.Y+d.Y
		c.ed.SetCamera(editor.CameraPatch{X: &x, Y: &y})
	case ModeDraggingShape:
		c.dragTo(ev.Screen)
	case ModeResizing:
		c.resizeTo(ev.Screen, ev.Mods)
	case ModeDrawingConnector:
		c.moveConnectorEnd(c.world(ev.Screen))
	case ModeErasing:
		c.eraseAt(c.world(ev.Screen))
	case ModeDraggingEndpoint:
		c.moveEndpoint(c.world(ev.Screen))
	}
}

// PointerUp ends the active gesture.
func (c *Controller) PointerUp(ev PointerEvent) {
	if c.mode == ModeIdle {
		return
	}
	if c.mode == ModeDrawingConnector {
		c.endConnector()
	}
	c.finish()
}

// begin enters a shape-mutating mode inside a fresh history batch so the
// whole gesture is one undo step.
func (c *Controller) begin(m Mode) {
	c.mode = m
	c.batch = uuid.NewString()
	c.ed.StartBatch(c.batch)
}

func (c *Controller) finish() {
	if c.batch != "" {
		c.ed.EndBatch(c.batch)
	}
	c.log.Debug("gesture end", slog.String("mode", c.mode.String()))
	c.reset()
}

func (c *Controller) beginPan() {
	c.mode = ModePanning
	cam := c.ed.Camera()
	c.startCam = vector.Pt{X: cam.X, Y: cam.Y}
}

func (c *Controller) createAt(t shape.Type, wp vector.Pt) {
	c.ed.CreateEditing(t, shape.Patch{X: shape.F(wp.X), Y: shape.F(wp.Y)})
	c.tool = ToolSelect
}

func (c *Controller) selectDown(wp vector.Pt, mods Modifiers) {
	if id, h, ok := c.resizeHandleAt(wp); ok {
		s, _ := c.ed.ResolvedShape(id)
		c.begin(ModeResizing)
		c.initial, c.handle = s, h
		return
	}
	hit, ok := c.ed.GetShapeAtPoint(wp)
	if !ok {
		if !mods.toggles() {
			c.ed.SelectNone()
		}
		c.beginPan()
		return
	}
	switch {
	case mods.toggles():
		c.ed.ToggleSelection(hit.ID)
	case !c.ed.IsSelected(hit.ID):
		c.ed.SetSelection([]string{hit.ID})
	}
	c.beginDrag()
}

func (c *Controller) eraseAt(wp vector.Pt) {
	if hit, ok := c.ed.GetShapeAtPoint(wp); ok {
		c.ed.DeleteShape(hit.ID)
	}
}
