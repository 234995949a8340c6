/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package migrate converts between the legacy flat item list and the
// current shape and asset model.
package migrate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"paperboard/internal/log"
	"paperboard/internal/shape"
	"paperboard/internal/vector"
)

// Legacy item types.
const (
	ItemText      = "text"
	ItemShape     = "shape"
	ItemPointer   = "pointer"
	ItemImage     = "image"
	ItemConnector = "connector"
)

// Legacy shapeType values of ItemShape.
const (
	ShapeRectangle = "rectangle"
	ShapeCircle    = "circle"
	ShapeArrow     = "arrow"
)

var (
	ErrNotLegacy   = errors.New("migrate: not a legacy item list")
	ErrUnknownItem = errors.New("migrate: unknown item type")
)

// PdfID is a document id that older saves wrote either as a number or as a
// numeric string.
type PdfID int

func (p *PdfID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*p = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*p = 0
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("pdfId %q: %w", s, err)
		}
		*p = PdfID(n)
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("pdfId: %w", err)
	}
	*p = PdfID(n)
	return nil
}

// Item is one record of the legacy format. Which fields are meaningful
// depends on Type (and ShapeType for ItemShape).
type Item struct {
	ID     string  `json:"id"`
	Type   string  `json:"type"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	// text
	Content  string  `json:"content,omitempty"`
	FontSize float64 `json:"fontSize,omitempty"`
	Color    string  `json:"color,omitempty"`

	// shape
	ShapeType      string     `json:"shapeType,omitempty"`
	Start          *vector.Pt `json:"start,omitempty"`
	End            *vector.Pt `json:"end,omitempty"`
	Bend           float64    `json:"bend,omitempty"`
	ArrowheadStart string     `json:"arrowheadStart,omitempty"`
	ArrowheadEnd   string     `json:"arrowheadEnd,omitempty"`

	// pointer and image
	PdfID PdfID        `json:"pdfId,omitempty"`
	Page  int          `json:"page,omitempty"`
	Rect  *vector.Rect `json:"rect,omitempty"`
	Image string       `json:"image,omitempty"`
}

// ParseLegacy decodes a legacy document, which is a top-level JSON array.
func ParseLegacy(raw []byte) ([]Item, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, ErrNotLegacy
	}
	var items []Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("migrate: decode items: %w", err)
	}
	return items, nil
}

// OldToNew converts legacy items into shapes (painted in list order) and
// the assets their inline images become. Connectors are dropped. An item of
// unknown type fails the whole conversion.
func OldToNew(items []Item) ([]shape.Shape, []shape.Asset, error) {
	lg := log.WithComponent("migrate")
	out := make([]shape.Shape, 0, len(items))
	var assets []shape.Asset
	for _, it := range items {
		s := shape.Shape{
			ID: it.ID, X: it.X, Y: it.Y, Width: it.Width, Height: it.Height,
			Opacity: 1, Index: float64(len(out)),
		}
		switch it.Type {
		case ItemText:
			s.Type = shape.TypeText
			s.Props = shape.TextProps{Text: it.Content, FontSize: it.FontSize, Color: it.Color}
		case ItemShape:
			switch it.ShapeType {
			case ShapeRectangle:
				s.Type = shape.TypeRect
				s.Props = shape.RectProps{Color: it.Color, StrokeWidth: 2}
			case ShapeCircle:
				s.Type = shape.TypeCircle
				s.Props = shape.CircleProps{Color: it.Color, StrokeWidth: 2}
			case ShapeArrow:
				s.Type = shape.TypeArrow
				s.Props = shape.ArrowProps{
					Color: it.Color, StrokeWidth: 2,
					Start: deref(it.Start), End: deref(it.End), Bend: it.Bend,
					ArrowheadStart: it.ArrowheadStart, ArrowheadEnd: it.ArrowheadEnd,
				}
			default:
				return nil, nil, fmt.Errorf("%w: shape %q (item %s)", ErrUnknownItem, it.ShapeType, it.ID)
			}
		case ItemPointer:
			a := shape.Asset{ID: shape.NewAssetID(), Type: shape.AssetPointer, Src: it.Image,
				Meta: &shape.PointerMeta{PdfID: int(it.PdfID), Page: it.Page, Rect: deref(it.Rect)}}
			assets = append(assets, sized(a, it))
			s.Type = shape.TypePointer
			s.Props = shape.PointerProps{AssetID: a.ID}
		case ItemImage:
			a := shape.Asset{ID: shape.NewAssetID(), Type: shape.AssetImage, Src: it.Image}
			assets = append(assets, sized(a, it))
			s.Type = shape.TypeImage
			s.Props = shape.ImageProps{AssetID: a.ID}
		case ItemConnector:
			lg.Debug("drop legacy connector", slog.String("id", it.ID))
			continue
		default:
			return nil, nil, fmt.Errorf("%w: %q (item %s)", ErrUnknownItem, it.Type, it.ID)
		}
		if s.ID == "" {
			s.ID = shape.NewShapeID()
		}
		out = append(out, s)
	}
	return out, assets, nil
}

// sized records the item box as the asset's intrinsic size; the legacy
// format kept no separate pixel dimensions.
func sized(a shape.Asset, it Item) shape.Asset {
	a.Width, a.Height = it.Width, it.Height
	return a
}

// NewToOld converts shapes back to legacy items in paint order. Pointer and
// image shapes whose asset is missing are left out, as are types the legacy
// format cannot express.
func NewToOld(shapes []shape.Shape, assets []shape.Asset) []Item {
	lg := log.WithComponent("migrate")
	byID := make(map[string]shape.Asset, len(assets))
	for _, a := range assets {
		byID[a.ID] = a
	}
	list := append([]shape.Shape(nil), shapes...)
	sort.SliceStable(list, func(i, j int) bool { return list[i].Index < list[j].Index })

	out := make([]Item, 0, len(list))
	for _, s := range list {
		it := Item{ID: s.ID, X: s.X, Y: s.Y, Width: s.Width, Height: s.Height}
		switch p := s.Props.(type) {
		case shape.TextProps:
			it.Type = ItemText
			it.Content, it.FontSize, it.Color = p.Text, p.FontSize, p.Color
		case shape.RectProps:
			it.Type, it.ShapeType, it.Color = ItemShape, ShapeRectangle, p.Color
		case shape.CircleProps:
			it.Type, it.ShapeType, it.Color = ItemShape, ShapeCircle, p.Color
		case shape.ArrowProps:
			start, end := p.Start, p.End
			it.Type, it.ShapeType, it.Color = ItemShape, ShapeArrow, p.Color
			it.Start, it.End, it.Bend = &start, &end, p.Bend
			it.ArrowheadStart, it.ArrowheadEnd = p.ArrowheadStart, p.ArrowheadEnd
		case shape.PointerProps:
			a, ok := byID[p.AssetID]
			if !ok {
				lg.Debug("drop pointer without asset", slog.String("id", s.ID), slog.String("asset", p.AssetID))
				continue
			}
			it.Type, it.Image = ItemPointer, a.Src
			if a.Meta != nil {
				r := a.Meta.Rect
				it.PdfID, it.Page, it.Rect = PdfID(a.Meta.PdfID), a.Meta.Page, &r
			}
		case shape.ImageProps:
			a, ok := byID[p.AssetID]
			if !ok {
				lg.Debug("drop image without asset", slog.String("id", s.ID), slog.String("asset", p.AssetID))
				continue
			}
			it.Type, it.Image = ItemImage, a.Src
		default:
			lg.Debug("no legacy form", slog.String("id", s.ID), slog.String("type", string(s.Type)))
			continue
		}
		out = append(out, it)
	}
	return out
}

func deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}
