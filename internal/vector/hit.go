/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Hit-test primitives used by the shape behaviours.

// DistanceToSegment returns the distance from p to the segment a-b. The
// projection parameter is clamped to [0,1] so points beyond either end
// measure to the nearest endpoint.
func DistanceToSegment(p, a, b Pt) float64 {
	ab := b.Sub(a)
	l2 := ab.X*ab.X + ab.Y*ab.Y
	if l2 == 0 {
		return p.Dist(a)
	}
	t := ((p.X-a.X)*ab.X + (p.Y-a.Y)*ab.Y) / l2
	t = Clamp(t, 0, 1)
	return p.Dist(a.Add(ab.Mul(t)))
}

// InEllipse reports whether p lies inside the ellipse inscribed in r,
// boundary inclusive. Degenerate ellipses never contain anything.
func InEllipse(r Rect, p Pt) bool {
	rx, ry := r.W/2, r.H/2
	if rx <= 0 || ry <= 0 {
		return false
	}
	c := r.Center()
	dx := (p.X - c.X) / rx
	dy := (p.Y - c.Y) / ry
	return dx*dx+dy*dy <= 1+1e-9
}
