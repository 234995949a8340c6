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
	"fmt"
)

// ErrUnknownType is returned when a document names a shape type that has no
// current variant.
var ErrUnknownType = errors.New("unknown shape type")

type wireShape struct {
	ID       string          `json:"id"`
	Type     Type            `json:"type"`
	X        float64         `json:"x"`
	Y        float64         `json:"y"`
	Width    float64         `json:"width"`
	Height   float64         `json:"height"`
	Rotation float64         `json:"rotation"`
	Opacity  *float64        `json:"opacity,omitempty"`
	Index    float64         `json:"index"`
	Props    json.RawMessage `json:"props,omitempty"`
	Meta     map[string]any  `json:"meta,omitempty"`
}

func (s Shape) MarshalJSON() ([]byte, error) {
	w := wireShape{
		ID: s.ID, Type: s.Type, X: s.X, Y: s.Y, Width: s.Width, Height: s.Height,
		Rotation: s.Rotation, Opacity: F(s.Opacity), Index: s.Index, Meta: s.Meta,
	}
	props := s.Props
	if props == nil {
		props = NewProps(s.Type)
	}
	if props != nil {
		raw, err := json.Marshal(props)
		if err != nil {
			return nil, fmt.Errorf("marshal props of %s: %w", s.ID, err)
		}
		w.Props = raw
	}
	return json.Marshal(w)
}

func (s *Shape) UnmarshalJSON(b []byte) error {
	var w wireShape
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	if !w.Type.Known() {
		return fmt.Errorf("%w: %q", ErrUnknownType, w.Type)
	}
	props, err := DecodeProps(w.Type, w.Props)
	if err != nil {
		return fmt.Errorf("decode props of %s: %w", w.ID, err)
	}
	opacity := 1.0
	if w.Opacity != nil {
		opacity = *w.Opacity
	}
	*s = Shape{
		ID: w.ID, Type: w.Type, X: w.X, Y: w.Y, Width: w.Width, Height: w.Height,
		Rotation: w.Rotation, Opacity: opacity, Index: w.Index, Props: props, Meta: w.Meta,
	}
	return nil
}

// DecodeProps decodes raw into the property bag of t. Empty input yields the
// zero bag.
func DecodeProps(t Type, raw json.RawMessage) (Props, error) {
	switch t {
	case TypeRect:
		return decodeAs[RectProps](raw)
	case TypeCircle:
		return decodeAs[CircleProps](raw)
	case TypeArrow:
		return decodeAs[ArrowProps](raw)
	case TypeText:
		return decodeAs[TextProps](raw)
	case TypeImage:
		return decodeAs[ImageProps](raw)
	case TypePointer:
		return decodeAs[PointerProps](raw)
	case TypePaperNode:
		return decodeAs[PaperNodeProps](raw)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
}

func decodeAs[T Props](raw json.RawMessage) (Props, error) {
	var v T
	if len(raw) == 0 || string(raw) == "null" {
		return v, nil
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}
