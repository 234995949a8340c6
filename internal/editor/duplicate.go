/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"errors"
	"log/slog"

	"github.com/samber/lo"

	"paperboard/internal/clipboard"
	"paperboard/internal/history"
	"paperboard/internal/shape"
	"paperboard/internal/vector"
)

// DefaultDuplicateOffset is how far copies are moved from their originals.
var DefaultDuplicateOffset = vector.Pt{X: 20, Y: 20}

// DuplicateShapes copies the shapes by DefaultDuplicateOffset.
func (e *Editor) DuplicateShapes(ids []string) []shape.Shape {
	return e.DuplicateShapesBy(ids, DefaultDuplicateOffset)
}

// DuplicateShapesBy copies the named shapes with fresh ids, moved by off,
// and selects the copies. Arrow bindings to a shape copied in the same call
// follow the copy; bindings to anything else are dropped. The whole
// operation is one undo step.
func (e *Editor) DuplicateShapesBy(ids []string, off vector.Pt) []shape.Shape {
	src := lo.FilterMap(lo.Uniq(ids), func(id string, _ int) (shape.Shape, bool) {
		s, ok := e.st.Shape(id)
		if !ok {
			return shape.Shape{}, false
		}
		return e.reg.Resolve(s, e.lookup), true
	})
	return e.insertCopies("duplicate", src, off)
}

// insertCopies is shared by duplicate and paste. src must hold resolved
// shapes so a dropped binding leaves the endpoint where it was drawn.
func (e *Editor) insertCopies(label string, src []shape.Shape, off vector.Pt) []shape.Shape {
	if len(src) == 0 {
		return nil
	}
	// keep paint order of the originals among the copies
	order := lo.SliceToMap(e.st.Sorted(), func(s shape.Shape) (string, float64) { return s.ID, s.Index })
	src = append([]shape.Shape(nil), src...)
	stableByIndex(src, order)

	remap := make(map[string]string, len(src))
	for _, s := range src {
		remap[s.ID] = shape.NewShapeID()
	}
	copies := make([]shape.Shape, 0, len(src))
	base := e.st.MaxIndex() + 1
	for i, s := range src {
		c := s.Clone()
		c.ID = remap[s.ID]
		c.X += off.X
		c.Y += off.Y
		c.Index = base + float64(i)
		if p, ok := c.Props.(shape.ArrowProps); ok {
			p.StartBinding = rebind(p.StartBinding, remap)
			p.EndBinding = rebind(p.EndBinding, remap)
			c.Props = p
		}
		copies = append(copies, c)
	}

	before := e.st.Snapshot()
	e.hist.Pause()
	for _, c := range copies {
		e.st.Put(c)
	}
	e.st.SetSelection(lo.Map(copies, func(s shape.Shape, _ int) string { return s.ID }))
	e.hist.Resume()
	e.hist.Record(history.Entry{Before: before, After: e.st.Snapshot(), Label: label, Structural: true})
	e.notify(EventShapes, label)
	return copies
}

func rebind(b *shape.Binding, remap map[string]string) *shape.Binding {
	if b == nil {
		return nil
	}
	id, ok := remap[b.ShapeID]
	if !ok {
		return nil
	}
	return &shape.Binding{ShapeID: id, Anchor: b.Anchor}
}

func stableByIndex(list []shape.Shape, order map[string]float64) {
	idx := func(s shape.Shape) float64 {
		if v, ok := order[s.ID]; ok {
			return v
		}
		return s.Index
	}
	// insertion sort keeps equal elements in input order
	for i := 1; i < len(list); i++ {
		for j := i; j > 0 && idx(list[j]) < idx(list[j-1]); j-- {
			list[j], list[j-1] = list[j-1], list[j]
		}
	}
}

// Copy writes the selected shapes, resolved and deep-copied, plus the
// assets they reference to the clipboard. Failures are logged.
func (e *Editor) Copy() bool {
	sel := lo.Map(e.GetSelectedShapes(), func(s shape.Shape, _ int) shape.Shape { return e.reg.Resolve(s, e.lookup) })
	if len(sel) == 0 {
		return false
	}
	var assets []shape.Asset
	for _, id := range lo.Uniq(lo.FilterMap(sel, func(s shape.Shape, _ int) (string, bool) { return shape.AssetRef(s.Props) })) {
		if a, ok := e.st.Asset(id); ok {
			assets = append(assets, a)
		}
	}
	text, err := clipboard.Encode(clipboard.NewPayload(sel, assets))
	if err != nil {
		e.log.Error("copy failed", slog.Any("err", err))
		return false
	}
	if err := e.clip.Write(text); err != nil {
		e.log.Warn("clipboard write failed", slog.Any("err", err))
		return false
	}
	return true
}

// Paste inserts the clipboard shapes as new copies offset by
// DefaultDuplicateOffset. Assets from the payload are added when missing.
// Foreign clipboard content is ignored.
func (e *Editor) Paste() []shape.Shape {
	text, err := e.clip.Read()
	if err != nil {
		e.log.Warn("clipboard read failed", slog.Any("err", err))
		return nil
	}
	p, err := clipboard.Decode(text)
	if err != nil {
		if !errors.Is(err, clipboard.ErrForeignPayload) {
			e.log.Warn("paste failed", slog.Any("err", err))
		}
		return nil
	}
	added := false
	for _, a := range p.Assets {
		if _, ok := e.st.Asset(a.ID); !ok {
			e.st.PutAsset(a)
			added = true
		}
	}
	if added {
		e.notify(EventAssets, "paste")
	}
	src := lo.Filter(p.Shapes, func(s shape.Shape, _ int) bool { return e.reg.Has(s.Type) })
	return e.insertCopies("paste", src, DefaultDuplicateOffset)
}
