/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package shape

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"paperboard/internal/vector"
)

func TestCloneDoesNotAlias(t *testing.T) {
	s := Shape{
		ID: "a", Type: TypeArrow, Opacity: 1,
		Props: ArrowProps{End: vector.Pt{X: 10}, StartBinding: &Binding{ShapeID: "r", Anchor: vector.AnchorSE}},
		Meta:  map[string]any{"k": map[string]any{"n": 1}},
	}
	c := s.Clone()
	c.Props.(ArrowProps).StartBinding.ShapeID = "other"
	c.Meta["k"].(map[string]any)["n"] = 2

	if s.Props.(ArrowProps).StartBinding.ShapeID != "r" {
		t.Fatalf("binding aliased into clone")
	}
	if s.Meta["k"].(map[string]any)["n"] != 1 {
		t.Fatalf("meta aliased into clone")
	}
}

func TestPatchApply(t *testing.T) {
	s := Shape{ID: "r", Type: TypeRect, X: 1, Y: 2, Width: 3, Height: 4, Opacity: 1, Props: RectProps{Color: "black"}}
	out := Patch{X: F(10), Width: F(-5), Props: RectProps{Color: "red"}}.Apply(s)
	if out.X != 10 || out.Y != 2 || out.Width != 0 {
		t.Fatalf("unexpected geometry: %+v", out)
	}
	if out.Props.(RectProps).Color != "red" {
		t.Fatalf("props not replaced: %+v", out.Props)
	}
	if got := (Patch{Props: TextProps{Text: "x"}}).Apply(s); got.Props.(RectProps).Color != "black" {
		t.Fatalf("foreign props variant should be ignored")
	}
	if !(Patch{}).Empty() || (Patch{Y: F(0)}).Empty() {
		t.Fatalf("Empty mismatch")
	}
}

func TestPropsMerge(t *testing.T) {
	def := TextProps{Text: "", FontSize: 16, Color: "#000000", Align: "left"}
	got := def.Merge(TextProps{Text: "hi", Color: "red"}).(TextProps)
	if got.Text != "hi" || got.FontSize != 16 || got.Color != "red" || got.Align != "left" {
		t.Fatalf("unexpected merge: %+v", got)
	}
	arrow := ArrowProps{Color: "black", StrokeWidth: 2, ArrowheadEnd: HeadArrow}.Merge(ArrowProps{End: vector.Pt{X: 5, Y: 5}}).(ArrowProps)
	if arrow.End != (vector.Pt{X: 5, Y: 5}) || arrow.ArrowheadEnd != HeadArrow || arrow.StrokeWidth != 2 {
		t.Fatalf("unexpected arrow merge: %+v", arrow)
	}
}

func TestShapeJSONCarriesTypedProps(t *testing.T) {
	s := Shape{ID: "t1", Type: TypeText, X: 5, Width: 100, Height: 20, Opacity: 0.5, Index: 3, Props: TextProps{Text: "note", FontSize: 14}}
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"props":{"text":"note","fontSize":14}`) {
		t.Fatalf("unexpected json: %s", b)
	}
	var back Shape
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Props.(TextProps).Text != "note" || back.Opacity != 0.5 || back.Index != 3 {
		t.Fatalf("unexpected decode: %+v", back)
	}
}

func TestShapeJSONDefaultsAndUnknownType(t *testing.T) {
	var s Shape
	if err := json.Unmarshal([]byte(`{"id":"c","type":"circle","x":1}`), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s.Opacity != 1 {
		t.Fatalf("missing opacity should default to 1, got %v", s.Opacity)
	}
	if _, ok := s.Props.(CircleProps); !ok {
		t.Fatalf("expected CircleProps, got %T", s.Props)
	}
	err := json.Unmarshal([]byte(`{"id":"x","type":"connector"}`), &s)
	if !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}

func TestIDs(t *testing.T) {
	id := NewShapeID()
	if err := ValidateID(id, PrefixShape); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if err := ValidateID(NewAssetID(), PrefixShape); err == nil {
		t.Fatalf("expected prefix mismatch")
	}
	if NewShapeID() == id {
		t.Fatalf("ids should be unique")
	}
}

func TestAssetRef(t *testing.T) {
	if id, ok := AssetRef(PointerProps{AssetID: "a1"}); !ok || id != "a1" {
		t.Fatalf("pointer ref: %v %v", id, ok)
	}
	if _, ok := AssetRef(RectProps{}); ok {
		t.Fatalf("rect has no asset ref")
	}
}
