/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package shape

import "paperboard/internal/vector"

// Props is the variant-specific property bag of a shape.
type Props interface {
	// Kind names the shape type the bag belongs to.
	Kind() Type
	// Clone returns a deep copy.
	Clone() Props
	// Merge returns a copy of the receiver with the set fields of partial on
	// top. Zero-valued fields of partial are treated as unset.
	Merge(partial Props) Props
}

// NewProps returns an empty bag for t, or nil for unknown types.
func NewProps(t Type) Props {
	switch t {
	case TypeRect:
		return RectProps{}
	case TypeCircle:
		return CircleProps{}
	case TypeArrow:
		return ArrowProps{}
	case TypeText:
		return TextProps{}
	case TypeImage:
		return ImageProps{}
	case TypePointer:
		return PointerProps{}
	case TypePaperNode:
		return PaperNodeProps{}
	default:
		return nil
	}
}

func str(base, over string) string {
	if over != "" {
		return over
	}
	return base
}

func num(base, over float64) float64 {
	if over != 0 {
		return over
	}
	return base
}

type RectProps struct {
	Color       string  `json:"color,omitempty"`
	Fill        string  `json:"fill,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
	Dash        string  `json:"dash,omitempty"`
}

func (p RectProps) Kind() Type   { return TypeRect }
func (p RectProps) Clone() Props { return p }
func (p RectProps) Merge(partial Props) Props {
	o, ok := partial.(RectProps)
	if !ok {
		return p
	}
	return RectProps{Color: str(p.Color, o.Color), Fill: str(p.Fill, o.Fill), StrokeWidth: num(p.StrokeWidth, o.StrokeWidth), Dash: str(p.Dash, o.Dash)}
}

// CircleProps styles an ellipse inscribed in the shape box.
type CircleProps struct {
	Color       string  `json:"color,omitempty"`
	Fill        string  `json:"fill,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
	Dash        string  `json:"dash,omitempty"`
}

func (p CircleProps) Kind() Type   { return TypeCircle }
func (p CircleProps) Clone() Props { return p }
func (p CircleProps) Merge(partial Props) Props {
	o, ok := partial.(CircleProps)
	if !ok {
		return p
	}
	return CircleProps{Color: str(p.Color, o.Color), Fill: str(p.Fill, o.Fill), StrokeWidth: num(p.StrokeWidth, o.StrokeWidth), Dash: str(p.Dash, o.Dash)}
}

// Arrowhead styles.
const (
	HeadNone  = "none"
	HeadArrow = "arrow"
)

// Binding ties an arrow endpoint to an anchor of another shape.
type Binding struct {
	ShapeID string        `json:"shapeId"`
	Anchor  vector.Anchor `json:"anchor"`
}

// ArrowProps describes a connector. Start and End are relative to the shape's
// x/y; a bound endpoint follows its target and the stored point is only used
// when the target is gone.
type ArrowProps struct {
	Color          string    `json:"color,omitempty"`
	StrokeWidth    float64   `json:"strokeWidth,omitempty"`
	Start          vector.Pt `json:"start"`
	End            vector.Pt `json:"end"`
	Bend           float64   `json:"bend,omitempty"`
	ArrowheadStart string    `json:"arrowheadStart,omitempty"`
	ArrowheadEnd   string    `json:"arrowheadEnd,omitempty"`
	StartBinding   *Binding  `json:"startBinding,omitempty"`
	EndBinding     *Binding  `json:"endBinding,omitempty"`
}

func (p ArrowProps) Kind() Type { return TypeArrow }

func (p ArrowProps) Clone() Props {
	out := p
	if p.StartBinding != nil {
		b := *p.StartBinding
		out.StartBinding = &b
	}
	if p.EndBinding != nil {
		b := *p.EndBinding
		out.EndBinding = &b
	}
	return out
}

// Merge keeps the partial's geometry (start, end, bend, bindings) outright
// and merges style fields.
func (p ArrowProps) Merge(partial Props) Props {
	o, ok := partial.(ArrowProps)
	if !ok {
		return p.Clone()
	}
	out := o.Clone().(ArrowProps)
	out.Color = str(p.Color, o.Color)
	out.StrokeWidth = num(p.StrokeWidth, o.StrokeWidth)
	out.ArrowheadStart = str(p.ArrowheadStart, o.ArrowheadStart)
	out.ArrowheadEnd = str(p.ArrowheadEnd, o.ArrowheadEnd)
	return out
}

type TextProps struct {
	Text     string  `json:"text"`
	FontSize float64 `json:"fontSize,omitempty"`
	Color    string  `json:"color,omitempty"`
	Align    string  `json:"align,omitempty"`
}

func (p TextProps) Kind() Type   { return TypeText }
func (p TextProps) Clone() Props { return p }
func (p TextProps) Merge(partial Props) Props {
	o, ok := partial.(TextProps)
	if !ok {
		return p
	}
	return TextProps{Text: str(p.Text, o.Text), FontSize: num(p.FontSize, o.FontSize), Color: str(p.Color, o.Color), Align: str(p.Align, o.Align)}
}

type ImageProps struct {
	AssetID string `json:"assetId"`
}

func (p ImageProps) Kind() Type   { return TypeImage }
func (p ImageProps) Clone() Props { return p }
func (p ImageProps) Merge(partial Props) Props {
	if o, ok := partial.(ImageProps); ok {
		return ImageProps{AssetID: str(p.AssetID, o.AssetID)}
	}
	return p
}

// PointerProps references a pointer-snapshot asset cut from a document page.
type PointerProps struct {
	AssetID string `json:"assetId"`
}

func (p PointerProps) Kind() Type   { return TypePointer }
func (p PointerProps) Clone() Props { return p }
func (p PointerProps) Merge(partial Props) Props {
	if o, ok := partial.(PointerProps); ok {
		return PointerProps{AssetID: str(p.AssetID, o.AssetID)}
	}
	return p
}

// PaperNodeProps groups annotations under a referenced paper.
type PaperNodeProps struct {
	PaperID string `json:"paperId,omitempty"`
	Title   string `json:"title,omitempty"`
	Color   string `json:"color,omitempty"`
}

func (p PaperNodeProps) Kind() Type   { return TypePaperNode }
func (p PaperNodeProps) Clone() Props { return p }
func (p PaperNodeProps) Merge(partial Props) Props {
	o, ok := partial.(PaperNodeProps)
	if !ok {
		return p
	}
	return PaperNodeProps{PaperID: str(p.PaperID, o.PaperID), Title: str(p.Title, o.Title), Color: str(p.Color, o.Color)}
}

// AssetRef returns the asset id a shape's props point at, if any.
func AssetRef(p Props) (string, bool) {
	switch v := p.(type) {
	case ImageProps:
		return v.AssetID, v.AssetID != ""
	case PointerProps:
		return v.AssetID, v.AssetID != ""
	}
	return "", false
}
