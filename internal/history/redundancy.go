/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package history

import "paperboard/internal/scene"

// Equivalent is the shallow structural comparison of two snapshots: the same
// set of shape ids and the same selected-id set. Property values are not
// compared.
func Equivalent(a, b scene.Snapshot) bool {
	return sameSet(a.IDs(), b.IDs()) && sameSet(a.Selected, b.Selected)
}

// Redundant reports whether a structural entry changed nothing structurally.
// Non-structural entries (updates, reorders) are never redundant.
func Redundant(e Entry) bool {
	return e.Structural && Equivalent(e.Before, e.After)
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, v := range a {
		set[v] = struct{}{}
	}
	for _, v := range b {
		if _, ok := set[v]; !ok {
			return false
		}
	}
	return true
}
