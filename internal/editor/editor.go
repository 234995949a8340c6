/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package editor is the single mutation surface over a scene. Every change
// to shapes goes through it so history capture and change notification
// happen in one place.
package editor

import (
	"log/slog"
	"sync"

	"paperboard/internal/clipboard"
	"paperboard/internal/history"
	"paperboard/internal/log"
	"paperboard/internal/scene"
	"paperboard/internal/shapes"
)

// DefaultZoomStep is the factor applied by ZoomIn and ZoomOut.
const DefaultZoomStep = 1.2

// EventKind names what changed.
type EventKind string

const (
	EventShapes    EventKind = "shapes"
	EventSelection EventKind = "selection"
	EventCamera    EventKind = "camera"
	EventAssets    EventKind = "assets"
	EventEditing   EventKind = "editing"
	EventHistory   EventKind = "history"
	EventLoad      EventKind = "load"
)

// Event is delivered to subscribers after a change is applied and recorded.
type Event struct {
	Kind  EventKind
	Label string
}

// Options configure a new editor. Zero values pick defaults.
type Options struct {
	Registry        *shapes.Registry
	HistoryCapacity int
	ZoomStep        float64
	Clipboard       clipboard.Channel
	Logger          *slog.Logger
}

// Editor owns a scene and its history. It is meant to be driven from one
// goroutine; subscribers run synchronously on that goroutine.
type Editor struct {
	st       *scene.State
	reg      *shapes.Registry
	hist     *history.Engine
	clip     clipboard.Channel
	log      *slog.Logger
	zoomStep float64
	// editBatch is the history batch opened by CreateEditing; it closes
	// when that edit ends.
	editBatch string

	subMu   sync.Mutex
	subs    map[int]func(Event)
	nextSub int
}

func New(opts Options) *Editor {
	if opts.Registry == nil {
		opts.Registry = shapes.Default()
	}
	if opts.ZoomStep <= 1 {
		opts.ZoomStep = DefaultZoomStep
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.Default()
	}
	if opts.Logger == nil {
		opts.Logger = log.WithComponent("editor")
	}
	return &Editor{
		st:       scene.New(),
		reg:      opts.Registry,
		hist:     history.New(history.Config{Capacity: opts.HistoryCapacity, Logger: opts.Logger.With(slog.String("sub", "history"))}),
		clip:     opts.Clipboard,
		log:      opts.Logger,
		zoomStep: opts.ZoomStep,
		subs:     map[int]func(Event){},
	}
}

// Registry returns the behaviour registry shapes are dispatched through.
func (e *Editor) Registry() *shapes.Registry { return e.reg }

// History exposes the engine for diagnostics (stats, state).
func (e *Editor) History() *history.Engine { return e.hist }

// Subscribe registers fn for change events and returns a function that
// removes it again.
func (e *Editor) Subscribe(fn func(Event)) func() {
	e.subMu.Lock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = fn
	e.subMu.Unlock()
	return func() {
		e.subMu.Lock()
		delete(e.subs, id)
		e.subMu.Unlock()
	}
}

func (e *Editor) notify(kind EventKind, label string) {
	e.subMu.Lock()
	fns := make([]func(Event), 0, len(e.subs))
	// deliver in subscription order
	for i := 0; i < e.nextSub; i++ {
		if fn, ok := e.subs[i]; ok {
			fns = append(fns, fn)
		}
	}
	e.subMu.Unlock()
	for _, fn := range fns {
		fn(Event{Kind: kind, Label: label})
	}
}

// mutate runs fn between two snapshots and records the pair when fn
// reports a change.
func (e *Editor) mutate(label string, structural bool, fn func() bool) bool {
	before := e.st.Snapshot()
	if !fn() {
		return false
	}
	e.hist.Record(history.Entry{Before: before, After: e.st.Snapshot(), Label: label, Structural: structural})
	e.notify(EventShapes, label)
	return true
}

// Undo restores the shapes and selection from before the newest entry.
func (e *Editor) Undo() bool {
	entry, ok := e.hist.Undo()
	if !ok {
		return false
	}
	e.st.Restore(entry.Before)
	e.notify(EventHistory, "undo:"+entry.Label)
	return true
}

// Redo re-applies the newest undone entry.
func (e *Editor) Redo() bool {
	entry, ok := e.hist.Redo()
	if !ok {
		return false
	}
	e.st.Restore(entry.After)
	e.notify(EventHistory, "redo:"+entry.Label)
	return true
}

func (e *Editor) CanUndo() bool { return e.hist.CanUndo() }
func (e *Editor) CanRedo() bool { return e.hist.CanRedo() }

// StartBatch opens a history batch; every recorded change until EndBatch
// with the same id becomes one undo step.
func (e *Editor) StartBatch(id string) { e.hist.StartBatch(id) }
func (e *Editor) EndBatch(id string)   { e.hist.EndBatch(id) }

// Reset empties the scene and the history.
func (e *Editor) Reset() {
	e.editBatch = ""
	e.st.Reset()
	e.hist.Clear()
	e.notify(EventLoad, "reset")
}
