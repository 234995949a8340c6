/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package interaction turns pointer, wheel, drop and keyboard events into
// editor calls. It keeps only gesture-local state; everything persistent
// lives in the editor.
package interaction

import (
	"log/slog"

	"paperboard/internal/editor"
	"paperboard/internal/log"
	"paperboard/internal/shape"
	"paperboard/internal/vector"
)

// Tool is the active tool mode.
type Tool string

const (
	ToolSelect Tool = "select"
	ToolText   Tool = "text"
	ToolRect   Tool = "rect"
	ToolCircle Tool = "circle"
	ToolArrow  Tool = "arrow"
	ToolLine   Tool = "line"
	ToolEraser Tool = "eraser"
)

// Mode is the gesture state; exactly one is active at a time.
type Mode int

const (
	ModeIdle Mode = iota
	ModePanning
	ModeDraggingShape
	ModeResizing
	ModeDrawingConnector
	ModeErasing
	ModeDraggingEndpoint
)

func (m Mode) String() string {
	switch m {
	case ModePanning:
		return "panning"
	case ModeDraggingShape:
		return "dragging-shape"
	case ModeResizing:
		return "resizing"
	case ModeDrawingConnector:
		return "drawing-connector"
	case ModeErasing:
		return "erasing"
	case ModeDraggingEndpoint:
		return "dragging-connector-endpoint"
	default:
		return "idle"
	}
}

const (
	// AnchorZone is the world distance within which a connector endpoint
	// binds to a shape anchor.
	AnchorZone = 20
	// MinResize is the smallest width or height a resize can produce.
	MinResize = 20
	// MinConnectorLength is the length below which a drawn connector is
	// discarded as an accidental click.
	MinConnectorLength = 10
	// HandleRadius is the pick radius of resize and endpoint handles in
	// screen pixels.
	HandleRadius = 8
	// WheelZoomStep is the zoom factor applied per wheel notch.
	WheelZoomStep = 1.1
)

// Button identifies a pointer button.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonMiddle
	ButtonSecondary
)

// Modifiers is a bit set of held modifier keys.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
)

func (m Modifiers) Has(f Modifiers) bool { return m&f != 0 }

// toggles reports whether the modifiers request additive selection.
func (m Modifiers) toggles() bool { return m.Has(ModShift) || m.Has(ModCtrl) || m.Has(ModMeta) }

// PointerEvent is a pointer sample in screen coordinates.
type PointerEvent struct {
	Screen vector.Pt
	Button Button
	Mods   Modifiers
}

// Navigation asks the document viewer to show a source region.
type Navigation struct {
	PdfID int
	Page  int
	Rect  vector.Rect
}

// Options configures a Controller.
type Options struct {
	// SnapThreshold is the smart-guide distance in world units.
	SnapThreshold float64
	// Navigator receives navigation requests from pointer shapes.
	Navigator func(Navigation)
	Logger    *slog.Logger
}

// Controller is the gesture state machine over one editor.
type Controller struct {
	ed   *editor.Editor
	log  *slog.Logger
	nav  func(Navigation)
	snap float64

	tool Tool
	mode Mode

	// gesture-local state
	batch       string
	startScreen vector.Pt
	startWorld  vector.Pt
	startCam    vector.Pt
	origins     map[string]vector.Pt
	moving      []string
	box         vector.Rect
	target      string
	handle      vector.Anchor
	initial     shape.Shape
	endpoint    string
	guides      []vector.GuideLine
	hover       *shape.Binding
}

// New returns a controller in the select tool.
func New(ed *editor.Editor, opts Options) *Controller {
	l := opts.Logger
	if l == nil {
		l = log.WithComponent("interaction")
	}
	snap := opts.SnapThreshold
	if snap <= 0 {
		snap = vector.DefaultSnapThreshold
	}
	return &Controller{ed: ed, log: l, nav: opts.Navigator, snap: snap, tool: ToolSelect}
}

func (c *Controller) Tool() Tool { return c.tool }
func (c *Controller) Mode() Mode { return c.mode }

// SetTool switches the tool. It is ignored in the middle of a gesture.
func (c *Controller) SetTool(t Tool) {
	if c.mode != ModeIdle {
		return
	}
	c.tool = t
}

// Guides returns the snap guide lines of the current drag.
func (c *Controller) Guides() []vector.GuideLine { return c.guides }

// HoverAnchor returns the anchor a connector endpoint would bind to right
// now, if any.
func (c *Controller) HoverAnchor() (shape.Binding, bool) {
	if c.hover == nil {
		return shape.Binding{}, false
	}
	return *c.hover, true
}

func (c *Controller) world(sp vector.Pt) vector.Pt { return c.ed.Camera().ScreenToWorld(sp) }

// pick converts a screen-space radius into world units.
func (c *Controller) pick(px float64) float64 { return px / c.ed.Camera().Zoom }

func (c *Controller) reset() {
	c.mode = ModeIdle
	c.batch = ""
	c.origins = nil
	c.moving = nil
	c.box = vector.Rect{}
	c.target = ""
	c.handle = ""
	c.initial = shape.Shape{}
	c.endpoint = ""
	c.guides = nil
	c.hover = nil
}
