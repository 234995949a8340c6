/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package shapes

import (
	"errors"
	"fmt"
	"sync"

	"paperboard/internal/shape"
	"paperboard/internal/vector"
)

// ErrUnregistered is the panic value (wrapped) of a lookup for a type nobody
// registered. It signals a wiring defect, never a user condition.
var ErrUnregistered = errors.New("no behaviour registered for shape type")

type Registry struct {
	mu sync.RWMutex
	m  map[shape.Type]Behavior
}

func NewRegistry() *Registry { return &Registry{m: map[shape.Type]Behavior{}} }

// Register installs b for its type, replacing any previous entry.
func (r *Registry) Register(b Behavior) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[b.Type()] = b
}

// Has reports whether t has a behaviour.
func (r *Registry) Has(t shape.Type) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.m[t]
	return ok
}

// Lookup returns the behaviour for t and panics if there is none.
func (r *Registry) Lookup(t shape.Type) Behavior {
	r.mu.RLock()
	b, ok := r.m[t]
	r.mu.RUnlock()
	if !ok {
		panic(fmt.Errorf("%w: %q", ErrUnregistered, t))
	}
	return b
}

// Bounds is a shortcut for Lookup(s.Type).Bounds(s).
func (r *Registry) Bounds(s shape.Shape) vector.Rect { return r.Lookup(s.Type).Bounds(s) }

// HitTest is a shortcut for Lookup(s.Type).HitTest(s, p).
func (r *Registry) HitTest(s shape.Shape, p vector.Pt) bool { return r.Lookup(s.Type).HitTest(s, p) }

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the shared registry holding every built-in type.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultReg = NewRegistry()
		defaultReg.Register(RectBehavior{})
		defaultReg.Register(CircleBehavior{})
		defaultReg.Register(ArrowBehavior{})
		defaultReg.Register(TextBehavior{})
		defaultReg.Register(ImageBehavior{})
		defaultReg.Register(PointerBehavior{})
		defaultReg.Register(PaperNodeBehavior{})
	})
	return defaultReg
}
