/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package clipboard

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"paperboard/internal/shape"
)

// PayloadKind tags clipboard text produced by Copy.
const PayloadKind = "paperboard/shapes"

// ErrForeignPayload means the clipboard holds something other than shapes.
var ErrForeignPayload = errors.New("clipboard does not hold paperboard shapes")

// Payload is the clipboard form of copied shapes together with the assets
// they reference.
type Payload struct {
	Kind   string        `json:"kind"`
	ID     string        `json:"id"`
	Shapes []shape.Shape `json:"shapes"`
	Assets []shape.Asset `json:"assets,omitempty"`
}

// NewPayload wraps deep copies of shapes and assets under a fresh id.
func NewPayload(shapes []shape.Shape, assets []shape.Asset) Payload {
	p := Payload{Kind: PayloadKind, ID: uuid.NewString()}
	for _, s := range shapes {
		p.Shapes = append(p.Shapes, s.Clone())
	}
	for _, a := range assets {
		p.Assets = append(p.Assets, a.Clone())
	}
	return p
}

func Encode(p Payload) (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode clipboard payload: %w", err)
	}
	return string(b), nil
}

// Decode parses clipboard text. Text that is not a shapes payload yields
// ErrForeignPayload.
func Decode(text string) (Payload, error) {
	var head struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal([]byte(text), &head); err != nil || head.Kind != PayloadKind {
		return Payload{}, ErrForeignPayload
	}
	var p Payload
	if err := json.Unmarshal([]byte(text), &p); err != nil {
		return Payload{}, fmt.Errorf("decode clipboard payload: %w", err)
	}
	return p, nil
}
