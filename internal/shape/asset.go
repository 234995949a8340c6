/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package shape

import "paperboard/internal/vector"

// AssetType tags an asset variant.
type AssetType string

const (
	AssetImage   AssetType = "image"
	AssetPointer AssetType = "pointer"
)

// PointerMeta locates the document region a pointer snapshot was cut from.
type PointerMeta struct {
	PdfID int         `json:"pdfId"`
	Page  int         `json:"page"`
	Rect  vector.Rect `json:"rect"`
}

// Asset is binary content referenced by id from shapes. Src is opaque to the
// core: a URL, a data URI or a blob handle.
type Asset struct {
	ID     string       `json:"id"`
	Type   AssetType    `json:"type"`
	Src    string       `json:"src"`
	Width  float64      `json:"width"`
	Height float64      `json:"height"`
	Meta   *PointerMeta `json:"meta,omitempty"`
}

func (a Asset) Clone() Asset {
	out := a
	if a.Meta != nil {
		m := *a.Meta
		out.Meta = &m
	}
	return out
}
