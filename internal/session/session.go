/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package session binds an editor to a storage context: it loads the scene
// for a context id, writes changes back behind a debounce and renders
// cached previews.
package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bep/debounce"

	"paperboard/internal/editor"
	"paperboard/internal/export"
	"paperboard/internal/log"
	"paperboard/internal/migrate"
	"paperboard/internal/scene"
	"paperboard/internal/storage"
	"paperboard/internal/telemetry"
)

// DefaultDebounce is the idle delay before a change is written.
const DefaultDebounce = time.Second

// ErrSuperseded is returned by Open when another Open started before the
// load finished; the late result is discarded.
var ErrSuperseded = errors.New("session: superseded by a newer open")

// Options configure a session. Store and Editor are required.
type Options struct {
	Store  storage.Store
	Editor *editor.Editor

	// Previews defaults to Store when it implements storage.PreviewCache.
	Previews  storage.PreviewCache
	Debounce  time.Duration
	Logger    *slog.Logger
	Telemetry telemetry.Emitter
}

type pendingSave struct {
	contextID string
	gen       uint64
	doc       string
}

// Session owns the persistence side of one editor. Open, SaveNow and
// RenderPreview run on the editor goroutine; debounced writes happen on a
// timer goroutine and only touch the captured document.
type Session struct {
	store    storage.Store
	previews storage.PreviewCache
	ed       *editor.Editor
	log      *slog.Logger
	tel      telemetry.Emitter

	debounced func(func())
	unsub     func()

	mu         sync.Mutex
	contextID  string
	gen        uint64
	loaded     bool
	loadFailed bool
	pending    *pendingSave
	saved      string

	previewCancel context.CancelFunc
}

// New wires a session to the editor's change notifications. No context is
// open until Open is called.
func New(opts Options) (*Session, error) {
	if opts.Store == nil || opts.Editor == nil {
		return nil, errors.New("session: store and editor are required")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = log.WithComponent("session")
	}
	if opts.Previews == nil {
		if pc, ok := opts.Store.(storage.PreviewCache); ok {
			opts.Previews = pc
		}
	}
	if opts.Telemetry == nil {
		opts.Telemetry = telemetry.Default()
	}
	s := &Session{
		store:     opts.Store,
		previews:  opts.Previews,
		ed:        opts.Editor,
		log:       opts.Logger,
		tel:       opts.Telemetry,
		debounced: debounce.New(opts.Debounce),
	}
	s.unsub = s.ed.Subscribe(s.onChange)
	return s, nil
}

// ContextID returns the context currently open, or "".
func (s *Session) ContextID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.contextID
}

// LoadFailed reports whether the stored document of the current context
// could not be read or interpreted, so the editor started empty.
func (s *Session) LoadFailed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadFailed
}

// Loaded reports whether a load has completed for the current context.
func (s *Session) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

func (s *Session) onChange(ev editor.Event) {
	switch ev.Kind {
	case editor.EventShapes, editor.EventHistory, editor.EventAssets, editor.EventCamera:
	default:
		return
	}
	doc := s.ed.ToJSON()
	if doc == "" {
		return
	}
	s.mu.Lock()
	s.pending = &pendingSave{contextID: s.contextID, gen: s.gen, doc: doc}
	s.mu.Unlock()
	s.debounced(func() {
		if err := s.Flush(context.Background()); err != nil {
			s.log.Error("debounced save failed", slog.Any("err", err))
		}
	})
}

// Flush writes the pending change now. It is a no-op when nothing is
// pending, when the pending change was captured for a different context
// than the one open now, or before the current context finished loading.
func (s *Session) Flush(ctx context.Context) error {
	s.mu.Lock()
	p := s.pending
	if p == nil {
		s.mu.Unlock()
		return nil
	}
	if p.gen != s.gen || p.contextID == "" {
		s.pending = nil
		s.mu.Unlock()
		s.log.Debug("discarding stale save", slog.String("context", p.contextID))
		return nil
	}
	if !s.loaded {
		s.mu.Unlock()
		s.log.Debug("save skipped before load", slog.String("context", p.contextID))
		return nil
	}
	s.pending = nil
	if p.doc == s.saved {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()
	return s.write(ctx, p)
}

// SaveNow serializes the editor and writes it for the open context,
// bypassing the debounce. It refuses to write before a load completed.
func (s *Session) SaveNow(ctx context.Context) error {
	doc := s.ed.ToJSON()
	s.mu.Lock()
	if s.contextID == "" || !s.loaded {
		s.mu.Unlock()
		return nil
	}
	p := &pendingSave{contextID: s.contextID, gen: s.gen, doc: doc}
	s.pending = nil
	s.mu.Unlock()
	if doc == "" {
		return errors.New("session: scene serialization failed")
	}
	return s.write(ctx, p)
}

func (s *Session) write(ctx context.Context, p *pendingSave) error {
	l := log.WithOperation(s.log, "save").With(slog.String("context", p.contextID))
	start := time.Now()
	if err := s.store.Save(ctx, p.contextID, []byte(p.doc)); err != nil {
		l.Error("save failed", slog.Any("err", err))
		return fmt.Errorf("save %s: %w", p.contextID, err)
	}
	s.mu.Lock()
	if p.gen == s.gen {
		s.saved = p.doc
	}
	s.mu.Unlock()
	l.Debug("saved", slog.Int("bytes", len(p.doc)), slog.Duration("took", time.Since(start)))
	return nil
}

// Open makes contextID the current context. Pending changes of the
// previous context are written first. The stored document is loaded as
// current format when it is one and passes the schema, else migrated from
// the legacy item list; anything else yields an empty scene and sets
// LoadFailed. Only a cancelled ctx or a newer Open make it return an error.
func (s *Session) Open(ctx context.Context, contextID string) error {
	if err := s.Flush(ctx); err != nil {
		s.log.Warn("flush before switching context failed", slog.Any("err", err))
	}
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.contextID = contextID
	s.loaded = false
	s.loadFailed = false
	s.pending = nil
	s.saved = ""
	if s.previewCancel != nil {
		s.previewCancel()
		s.previewCancel = nil
	}
	s.mu.Unlock()

	l := log.WithOperation(s.log, "open").With(slog.String("context", contextID))
	raw, found, err := s.store.Load(ctx, contextID)

	s.mu.Lock()
	superseded := gen != s.gen
	s.mu.Unlock()
	if superseded {
		l.Debug("load result discarded")
		return ErrSuperseded
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	failed := false
	switch {
	case err != nil:
		// The stored document may still be fine; keep saves off so an empty
		// scene never replaces it.
		l.Error("load failed", slog.Any("err", err))
		s.ed.Reset()
		s.mu.Lock()
		s.loadFailed = true
		s.mu.Unlock()
		s.tel.Event(telemetry.EventLoadFailed, map[string]any{"reason": "store"})
		return nil
	case !found || len(bytes.TrimSpace(raw)) == 0:
		s.ed.Reset()
	default:
		failed = !s.apply(l, raw)
	}

	s.mu.Lock()
	if gen == s.gen {
		s.loaded = true
		s.loadFailed = failed
		s.pending = nil
		s.saved = s.ed.ToJSON()
	}
	s.mu.Unlock()
	return nil
}

// apply loads raw into the editor and reports whether any format matched.
func (s *Session) apply(l *slog.Logger, raw []byte) bool {
	if scene.IsCurrentFormat(raw) {
		if err := scene.Validate(raw); err != nil {
			l.Warn("stored scene failed validation", slog.Any("err", err))
		} else if s.ed.LoadJSON(string(raw)) {
			return true
		}
	}
	items, err := migrate.ParseLegacy(raw)
	if err == nil {
		list, assets, convErr := migrate.OldToNew(items)
		if convErr == nil {
			s.ed.LoadState(list, assets)
			l.Info("migrated legacy scene", slog.Int("items", len(items)), slog.Int("shapes", len(list)))
			s.tel.Event(telemetry.EventMigrated, map[string]any{"items": len(items), "shapes": len(list)})
			return true
		}
		err = convErr
	}
	l.Warn("stored scene unreadable, starting empty", slog.Any("err", err))
	s.ed.Reset()
	s.tel.Event(telemetry.EventLoadFailed, map[string]any{"reason": "format"})
	return false
}

// RenderPreview renders the open scene into a w x h PNG. A newer call
// cancels this one; a cancelled or outdated render returns (nil, nil).
// Results are cached per context and size while no save is pending. An
// empty scene renders nothing.
func (s *Session) RenderPreview(ctx context.Context, w, h int) ([]byte, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("session: invalid preview size %dx%d", w, h)
	}
	s.mu.Lock()
	contextID, gen := s.contextID, s.gen
	clean := s.pending == nil && s.loaded
	if s.previewCancel != nil {
		s.previewCancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	s.previewCancel = cancel
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		cancel()
		s.mu.Unlock()
	}()

	l := log.WithOperation(s.log, "preview").With(slog.String("context", contextID))
	if clean && s.previews != nil {
		png, ok, err := s.previews.GetPreview(ctx, contextID, w, h)
		if err != nil {
			l.Warn("preview cache read failed", slog.Any("err", err))
		} else if ok {
			return png, nil
		}
	}

	cmds := s.ed.Render()
	if len(cmds) == 0 {
		return nil, nil
	}
	var buf bytes.Buffer
	err := export.WritePNG(ctx, &buf, cmds, export.Options{Width: w, Height: h})
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		l.Debug("preview cancelled")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("render preview: %w", err)
	}

	s.mu.Lock()
	current := gen == s.gen && ctx.Err() == nil
	cacheable := current && s.pending == nil && s.loaded
	s.mu.Unlock()
	if !current {
		return nil, nil
	}
	if cacheable && s.previews != nil {
		if err := s.previews.PutPreview(ctx, contextID, w, h, buf.Bytes()); err != nil {
			l.Warn("preview cache write failed", slog.Any("err", err))
		}
	}
	return buf.Bytes(), nil
}

// Close writes pending changes and detaches from the editor.
func (s *Session) Close(ctx context.Context) error {
	s.unsub()
	s.mu.Lock()
	if s.previewCancel != nil {
		s.previewCancel()
		s.previewCancel = nil
	}
	s.mu.Unlock()
	return s.Flush(ctx)
}
