/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package migrate

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"paperboard/internal/shape"
	"paperboard/internal/vector"
)

const legacyDoc = `[
  {"id":"t1","type":"text","x":10,"y":20,"width":200,"height":40,"content":"hello","fontSize":18,"color":"#111111"},
  {"id":"r1","type":"shape","shapeType":"rectangle","x":0,"y":0,"width":100,"height":50,"color":"#ff0000"},
  {"id":"c1","type":"shape","shapeType":"circle","x":5,"y":5,"width":30,"height":30,"color":"#00ff00"},
  {"id":"a1","type":"shape","shapeType":"arrow","x":50,"y":50,"width":0,"height":0,"color":"#0000ff",
   "start":{"x":0,"y":0},"end":{"x":120,"y":40},"bend":15,"arrowheadStart":"none","arrowheadEnd":"arrow"},
  {"id":"k1","type":"connector","x":0,"y":0,"width":0,"height":0},
  {"id":"p1","type":"pointer","x":300,"y":100,"width":160,"height":90,"pdfId":"12","page":4,
   "rect":{"x":1,"y":2,"width":160,"height":90},"image":"data:image/png;base64,AAAA"},
  {"id":"i1","type":"image","x":400,"y":400,"width":64,"height":64,"image":"blob:abc"}
]`

func TestRoundTrip(t *testing.T) {
	items, err := ParseLegacy([]byte(legacyDoc))
	require.NoError(t, err)
	require.Len(t, items, 7)
	require.Equal(t, PdfID(12), items[5].PdfID)

	shapes, assets, err := OldToNew(items)
	require.NoError(t, err)
	require.Len(t, shapes, 6, "connectors are dropped")
	require.Len(t, assets, 2)
	for _, a := range assets {
		require.NoError(t, shape.ValidateID(a.ID, shape.PrefixAsset))
	}

	var withoutConnector []Item
	for _, it := range items {
		if it.Type != ItemConnector {
			withoutConnector = append(withoutConnector, it)
		}
	}
	require.Equal(t, withoutConnector, NewToOld(shapes, assets))
}

func TestOldToNewMapping(t *testing.T) {
	items, err := ParseLegacy([]byte(legacyDoc))
	require.NoError(t, err)
	shapes, assets, err := OldToNew(items)
	require.NoError(t, err)

	text := shapes[0]
	require.Equal(t, shape.TypeText, text.Type)
	require.Equal(t, shape.TextProps{Text: "hello", FontSize: 18, Color: "#111111"}, text.Props)

	arrow := shapes[3]
	require.Equal(t, shape.TypeArrow, arrow.Type)
	p := arrow.Props.(shape.ArrowProps)
	require.Equal(t, vector.Pt{X: 120, Y: 40}, p.End)
	require.Equal(t, 15.0, p.Bend)

	ptr := shapes[4]
	require.Equal(t, shape.TypePointer, ptr.Type)
	ref := ptr.Props.(shape.PointerProps).AssetID
	require.Equal(t, assets[0].ID, ref)
	require.Equal(t, "data:image/png;base64,AAAA", assets[0].Src)
	require.Equal(t, &shape.PointerMeta{PdfID: 12, Page: 4, Rect: vector.R(1, 2, 160, 90)}, assets[0].Meta)

	for i, s := range shapes {
		require.Equal(t, float64(i), s.Index, "list order becomes paint order")
	}
}

func TestMissingAssetDropsItem(t *testing.T) {
	shapes := []shape.Shape{
		{ID: "p", Type: shape.TypePointer, Props: shape.PointerProps{AssetID: "asset_missing"}},
		{ID: "i", Type: shape.TypeImage, Index: 1, Props: shape.ImageProps{AssetID: "asset_missing"}},
		{ID: "n", Type: shape.TypePaperNode, Index: 2, Props: shape.PaperNodeProps{Title: "x"}},
		{ID: "r", Type: shape.TypeRect, Index: 3, Props: shape.RectProps{}},
	}
	items := NewToOld(shapes, nil)
	require.Len(t, items, 1)
	require.Equal(t, "r", items[0].ID)
}

func TestUnknownItemFails(t *testing.T) {
	_, _, err := OldToNew([]Item{{ID: "x", Type: "sticker"}})
	require.ErrorIs(t, err, ErrUnknownItem)
	_, _, err = OldToNew([]Item{{ID: "x", Type: ItemShape, ShapeType: "hexagon"}})
	require.ErrorIs(t, err, ErrUnknownItem)
}

func TestParseLegacyRejectsObjects(t *testing.T) {
	_, err := ParseLegacy([]byte(`{"camera":{}}`))
	require.ErrorIs(t, err, ErrNotLegacy)
	_, err = ParseLegacy([]byte(`[{"id":1}]`))
	require.Error(t, err)
}

func TestPdfIDCoercion(t *testing.T) {
	var it Item
	require.NoError(t, json.Unmarshal([]byte(`{"pdfId":" 42 "}`), &it))
	require.Equal(t, PdfID(42), it.PdfID)
	require.NoError(t, json.Unmarshal([]byte(`{"pdfId":7}`), &it))
	require.Equal(t, PdfID(7), it.PdfID)
	require.Error(t, json.Unmarshal([]byte(`{"pdfId":"abc"}`), &it))
}
