/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import "testing"

func TestComputeSmartGuides_SnapToEdges(t *testing.T) {
	other := Rect{X: 0, Y: 0, W: 200, H: 100}
	moving := Rect{X: 3, Y: 4, W: 80, H: 40} // near top-left edges
	opts := SnapOptions{Threshold: 5, SnapToEdges: true}

	snapped, guides := ComputeSmartGuides(moving, []SnapTarget{{Rect: other, Weight: 1}}, opts)
	if snapped.X != 0 {
		t.Fatalf("expected X snapped to 0, got %v", snapped.X)
	}
	if snapped.Y != 0 {
		t.Fatalf("expected Y snapped to 0, got %v", snapped.Y)
	}
	var vOK, hOK bool
	for _, g := range guides {
		if g.Orientation == "vertical" && g.Position == 0 {
			vOK = true
		}
		if g.Orientation == "horizontal" && g.Position == 0 {
			hOK = true
		}
	}
	if !vOK || !hOK {
		t.Fatalf("expected guides at x=0 (%v) and y=0 (%v)", vOK, hOK)
	}
}

func TestComputeSmartGuides_SnapToCenters(t *testing.T) {
	other := Rect{X: 0, Y: 0, W: 200, H: 100}
	moving := Rect{X: 200/2 - 50 - 2, Y: 100/2 - 30 - 3, W: 100, H: 60}
	opts := SnapOptions{Threshold: 5, SnapToCenters: true}

	snapped, guides := ComputeSmartGuides(moving, []SnapTarget{{Rect: other, Weight: 1}}, opts)
	if snapped.X != 50 || snapped.Y != 20 {
		t.Fatalf("expected center snap to (50,20), got %+v", snapped)
	}
	var vOK, hOK bool
	for _, g := range guides {
		if g.Orientation == "vertical" && g.Kind == "center" && g.Position == 100 {
			vOK = true
		}
		if g.Orientation == "horizontal" && g.Kind == "center" && g.Position == 50 {
			hOK = true
		}
	}
	if !vOK || !hOK {
		t.Fatalf("expected center guides present: %+v", guides)
	}
}

func TestComputeSmartGuides_CenterToEdge(t *testing.T) {
	// moving center x = 12+20 = 32 lies 2 units left of the target's left edge at 34
	other := Rect{X: 34, Y: 500, W: 10, H: 10}
	moving := Rect{X: 12, Y: 0, W: 40, H: 40}
	snapped, guides := ComputeSmartGuides(moving, []SnapTarget{{Rect: other, Weight: 1}}, SnapOptions{SnapToEdges: true, SnapToCenters: true})
	if snapped.X != 14 {
		t.Fatalf("expected X snapped to 14, got %v", snapped.X)
	}
	if snapped.Y != 0 || len(guides) != 1 {
		t.Fatalf("expected only a vertical guide, got %+v", guides)
	}
}

func TestComputeSmartGuides_ThresholdPreventsSnap(t *testing.T) {
	other := Rect{X: 0, Y: 0, W: 200, H: 100}
	moving := Rect{X: 10, Y: 10, W: 50, H: 20} // 10 units away from top-left
	opts := SnapOptions{Threshold: 5, SnapToEdges: true}

	snapped, guides := ComputeSmartGuides(moving, []SnapTarget{{Rect: other, Weight: 1}}, opts)
	if snapped.X != moving.X || snapped.Y != moving.Y {
		t.Fatalf("expected no snapping when outside threshold; got %+v", snapped)
	}
	if len(guides) != 0 {
		t.Fatalf("expected no guides when no snap")
	}
}

func TestComputeSmartGuides_PicksClosestAxisIndependently(t *testing.T) {
	targets := []SnapTarget{
		{Rect: Rect{X: 0, Y: 0, W: 100, H: 100}, Weight: 1},
		{Rect: Rect{X: 300, Y: 0, W: 100, H: 100}, Weight: 1},
	}
	moving := Rect{X: 2, Y: 97, W: 80, H: 80} // near X=0 and near Y=100 (bottom of the first target)

	snapped, _ := ComputeSmartGuides(moving, targets, SnapOptions{Threshold: 5, SnapToEdges: true})
	if snapped.X != 0 {
		t.Fatalf("expected X snapped to 0, got %v", snapped.X)
	}
	if snapped.Y != 100 {
		t.Fatalf("expected Y snapped to 100, got %v", snapped.Y)
	}
}

func TestSnapPoint(t *testing.T) {
	p, moved := SnapPoint(Pt{103, 48}, []Pt{{100, 0}, {0, 50}, {300, 300}}, 5)
	if !moved || p != (Pt{100, 50}) {
		t.Fatalf("unexpected snap: %+v moved=%v", p, moved)
	}
	if _, moved := SnapPoint(Pt{200, 200}, []Pt{{100, 0}}, 5); moved {
		t.Fatalf("far point should not snap")
	}
}

func TestAnchors(t *testing.T) {
	r := R(10, 10, 100, 100)
	if p := AnchorPoint(r, AnchorSE); p != (Pt{110, 110}) {
		t.Fatalf("se anchor: %+v", p)
	}
	if p := AnchorPoint(r, AnchorN); p != (Pt{60, 10}) {
		t.Fatalf("n anchor: %+v", p)
	}
	a, ok := NearestAnchor(r, Pt{105, 58}, 20)
	if !ok || a != AnchorE {
		t.Fatalf("nearest anchor: %v %v", a, ok)
	}
	if _, ok := NearestAnchor(r, Pt{60, 60}, 20); ok {
		t.Fatalf("center should be outside every anchor zone")
	}
	if Anchor("x").Valid() || !AnchorSW.Valid() {
		t.Fatalf("anchor validity mismatch")
	}
}
