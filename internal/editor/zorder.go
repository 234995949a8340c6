/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"github.com/samber/lo"

	"paperboard/internal/shape"
)

// Reordering computes the new paint order as a list and then writes
// consecutive indices 0..n-1 back, so ties and drifting float indices never
// survive a reorder. Only shapes whose index changes are touched and a call
// that leaves the order as it was records nothing.

func (e *Editor) BringToFront(ids []string) bool {
	return e.reorder("bring to front", ids, func(list []shape.Shape, in func(string) bool) []shape.Shape {
		rest := lo.Reject(list, func(s shape.Shape, _ int) bool { return in(s.ID) })
		moved := lo.Filter(list, func(s shape.Shape, _ int) bool { return in(s.ID) })
		return append(rest, moved...)
	})
}

func (e *Editor) SendToBack(ids []string) bool {
	return e.reorder("send to back", ids, func(list []shape.Shape, in func(string) bool) []shape.Shape {
		rest := lo.Reject(list, func(s shape.Shape, _ int) bool { return in(s.ID) })
		moved := lo.Filter(list, func(s shape.Shape, _ int) bool { return in(s.ID) })
		return append(moved, rest...)
	})
}

// BringForward moves each named shape one step up. Walking top-down, a
// shape swaps with its upper neighbour only when that neighbour is not moving
// too, so a run of selected shapes moves as a block instead of leapfrogging.
func (e *Editor) BringForward(ids []string) bool {
	return e.reorder("bring forward", ids, func(list []shape.Shape, in func(string) bool) []shape.Shape {
		for i := len(list) - 2; i >= 0; i-- {
			if in(list[i].ID) && !in(list[i+1].ID) {
				list[i], list[i+1] = list[i+1], list[i]
			}
		}
		return list
	})
}

// SendBackward is the mirror of BringForward.
func (e *Editor) SendBackward(ids []string) bool {
	return e.reorder("send backward", ids, func(list []shape.Shape, in func(string) bool) []shape.Shape {
		for i := 1; i < len(list); i++ {
			if in(list[i].ID) && !in(list[i-1].ID) {
				list[i], list[i-1] = list[i-1], list[i]
			}
		}
		return list
	})
}

func (e *Editor) reorder(label string, ids []string, order func([]shape.Shape, func(string) bool) []shape.Shape) bool {
	set := lo.SliceToMap(ids, func(id string) (string, bool) { return id, true })
	in := func(id string) bool { return set[id] }
	return e.mutate(label, false, func() bool {
		list := e.st.Sorted()
		if !lo.SomeBy(list, func(s shape.Shape) bool { return in(s.ID) }) {
			return false
		}
		before := lo.Map(list, func(s shape.Shape, _ int) string { return s.ID })
		list = order(list, in)
		after := lo.Map(list, func(s shape.Shape, _ int) string { return s.ID })
		if sameOrder(before, after) {
			return false
		}
		for i, s := range list {
			if s.Index != float64(i) {
				s.Index = float64(i)
				e.st.Put(s)
			}
		}
		return true
	})
}

func sameOrder(a, b []string) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
