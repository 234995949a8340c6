/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package history is the undo/redo engine of the editor. Entries hold deep
// before/after snapshots of the undoable scene; batches collapse a gesture
// into one entry and pausing suppresses recording during multi-step
// operations.
package history

import (
	"log/slog"
	"sync"
	"time"

	"paperboard/internal/log"
	"paperboard/internal/scene"
)

// DefaultCapacity is the undo depth used when none is configured.
const DefaultCapacity = 100

// Entry is one undoable step.
type Entry struct {
	Before scene.Snapshot
	After  scene.Snapshot
	TS     time.Time
	Label  string
	// Structural marks entries that add or remove shapes (create, delete,
	// paste, duplicate). Only those are subject to the redundancy check.
	Structural bool
}

// State of the engine.
type State int

const (
	StateIdle State = iota
	StatePaused
	StateBatching
)

func (s State) String() string {
	switch s {
	case StatePaused:
		return "paused"
	case StateBatching:
		return "batching"
	default:
		return "idle"
	}
}

// Config controls depth and logging.
type Config struct {
	// Capacity limits the undo stack; the oldest entries are dropped first.
	Capacity int
	Logger   *slog.Logger
}

// Engine keeps one undo and one redo stack. It is safe for concurrent use.
type Engine struct {
	cfg    Config
	mu     sync.Mutex
	undo   []Entry
	redo   []Entry
	paused bool
	batch  string
	open   bool
	buf    []Entry
}

func New(cfg Config) *Engine {
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}
	if cfg.Logger == nil {
		cfg.Logger = log.WithComponent("history")
	}
	return &Engine{cfg: cfg}
}

// Record pushes e unless recording is paused. While a batch is open the entry
// is buffered instead. Redundant entries are skipped.
func (h *Engine) Record(e Entry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.paused {
		return
	}
	if e.TS.IsZero() {
		e.TS = time.Now()
	}
	if h.open {
		h.buf = append(h.buf, e)
		return
	}
	h.pushLocked(e)
}

func (h *Engine) pushLocked(e Entry) {
	if Redundant(e) {
		h.cfg.Logger.Debug("skip redundant history entry", slog.String("label", e.Label))
		return
	}
	h.undo = append(h.undo, e)
	// Any new change invalidates redo
	h.redo = nil
	h.enforceCapLocked()
}

// StartBatch opens a batch. A batch that is still open is committed first.
func (h *Engine) StartBatch(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.open {
		h.cfg.Logger.Warn("batch started while another is open", slog.String("open", h.batch), slog.String("new", id))
		h.commitLocked()
	}
	h.open = true
	h.batch = id
	h.buf = nil
}

// EndBatch closes the batch id and pushes its collapsed entry. A mismatched
// id is logged and ignored.
func (h *Engine) EndBatch(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.open || h.batch != id {
		h.cfg.Logger.Warn("batch end mismatch", slog.String("open", h.batch), slog.String("got", id), slog.Bool("has_open", h.open))
		return
	}
	h.commitLocked()
}

func (h *Engine) commitLocked() {
	buf := h.buf
	h.open, h.batch, h.buf = false, "", nil
	if len(buf) == 0 {
		return
	}
	h.pushLocked(Collapse(buf))
}

// Collapse merges entries into one: the first before, the last after and
// the first label. The result is structural if any input is.
func Collapse(entries []Entry) Entry {
	if len(entries) == 0 {
		return Entry{}
	}
	out := Entry{
		Before: entries[0].Before,
		After:  entries[len(entries)-1].After,
		TS:     entries[len(entries)-1].TS,
		Label:  entries[0].Label,
	}
	for _, e := range entries {
		out.Structural = out.Structural || e.Structural
	}
	return out
}

func (h *Engine) Pause() {
	h.mu.Lock()
	h.paused = true
	h.mu.Unlock()
}

func (h *Engine) Resume() {
	h.mu.Lock()
	h.paused = false
	h.mu.Unlock()
}

// State reports the recording state. Paused wins over batching.
func (h *Engine) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	switch {
	case h.paused:
		return StatePaused
	case h.open:
		return StateBatching
	default:
		return StateIdle
	}
}

// OpenBatch returns the id of the open batch, or "".
func (h *Engine) OpenBatch() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.open {
		return ""
	}
	return h.batch
}

// Undo pops the newest entry onto the redo stack and returns it; the caller
// applies its Before snapshot. An open batch is committed first.
func (h *Engine) Undo() (Entry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.open {
		h.commitLocked()
	}
	if len(h.undo) == 0 {
		return Entry{}, false
	}
	e := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, e)
	return e, true
}

// Redo moves the newest undone entry back and returns it; the caller applies
// its After snapshot.
func (h *Engine) Redo() (Entry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.redo) == 0 {
		return Entry{}, false
	}
	e := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, e)
	h.enforceCapLocked()
	return e, true
}

func (h *Engine) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo) > 0
}

func (h *Engine) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redo) > 0
}

// Clear drops both stacks and any open batch; the paused flag is kept.
func (h *Engine) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.undo, h.redo, h.buf = nil, nil, nil
	h.open, h.batch = false, ""
}

// Stats returns current sizes for diagnostics.
func (h *Engine) Stats() (undo int, redo int, buffered int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo), len(h.redo), len(h.buf)
}

func (h *Engine) enforceCapLocked() {
	if len(h.undo) > h.cfg.Capacity {
		// drop the oldest extras
		toDrop := len(h.undo) - h.cfg.Capacity
		h.undo = append([]Entry{}, h.undo[toDrop:]...)
	}
}
