/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import "paperboard/internal/vector"

const (
	MinZoom = 0.1
	MaxZoom = 5.0
)

// Camera maps world to screen: screen = world*Zoom + (X, Y). X and Y are the
// pan offset in screen pixels.
type Camera struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

// DefaultCamera is the identity view.
func DefaultCamera() Camera { return Camera{Zoom: 1} }

// Clamp limits the zoom to [MinZoom, MaxZoom]; a zero zoom becomes 1.
func (c Camera) Clamp() Camera {
	if c.Zoom == 0 {
		c.Zoom = 1
	}
	c.Zoom = vector.Clamp(c.Zoom, MinZoom, MaxZoom)
	return c
}

// Transform returns the world-to-screen matrix.
func (c Camera) Transform() vector.Affine2D {
	return vector.Translate(c.X, c.Y).Mul(vector.Scale(c.Zoom, c.Zoom))
}

func (c Camera) WorldToScreen(p vector.Pt) vector.Pt { return c.Transform().Apply(p) }
func (c Camera) ScreenToWorld(p vector.Pt) vector.Pt { return c.Transform().Invert().Apply(p) }

// ZoomAt returns the camera zoomed to zoom (clamped) such that the world point
// under screen point sp stays under it.
func (c Camera) ZoomAt(sp vector.Pt, zoom float64) Camera {
	world := c.ScreenToWorld(sp)
	out := Camera{Zoom: zoom}.Clamp()
	out.X = sp.X - world.X*out.Zoom
	out.Y = sp.Y - world.Y*out.Zoom
	return out
}
