/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Colors as stored on shapes are CSS-like strings ("#rrggbb", "#rgb",
// "#rrggbbaa" or a handful of names). Renderers resolve them here.

import (
	"strconv"
	"strings"
)

type Color struct{ R, G, B, A uint8 }

var (
	Black       = Color{0, 0, 0, 255}
	White       = Color{255, 255, 255, 255}
	Transparent = Color{0, 0, 0, 0}
)

var named = map[string]Color{
	"black":       Black,
	"white":       White,
	"transparent": Transparent,
	"none":        Transparent,
	"red":         {229, 57, 53, 255},
	"green":       {67, 160, 71, 255},
	"blue":        {30, 136, 229, 255},
	"yellow":      {253, 216, 53, 255},
	"orange":      {251, 140, 0, 255},
	"purple":      {142, 36, 170, 255},
	"gray":        {117, 117, 117, 255},
	"grey":        {117, 117, 117, 255},
}

// ParseColor resolves s to a Color. Unparseable input returns fallback.
func ParseColor(s string, fallback Color) Color {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return fallback
	}
	if c, ok := named[s]; ok {
		return c
	}
	if !strings.HasPrefix(s, "#") {
		return fallback
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return fallback
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return fallback
	}
	return Color{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}
}

// WithAlpha scales the alpha channel by opacity in [0,1].
func (c Color) WithAlpha(opacity float64) Color {
	c.A = uint8(Clamp(float64(c.A)*opacity, 0, 255) + 0.5)
	if opacity <= 0 {
		c.A = 0
	}
	return c
}

// Floats returns the channels as [0,1] values for rasterizers.
func (c Color) Floats() (r, g, b, a float64) {
	return float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255, float64(c.A) / 255
}
