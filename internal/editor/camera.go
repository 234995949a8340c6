/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"paperboard/internal/scene"
	"paperboard/internal/shape"
	"paperboard/internal/vector"
)

// CameraPatch is a partial camera update.
type CameraPatch struct {
	X    *float64
	Y    *float64
	Zoom *float64
}

func (e *Editor) Camera() scene.Camera { return e.st.Camera() }

// SetCamera merges p into the camera; zoom is clamped. Not undoable.
func (e *Editor) SetCamera(p CameraPatch) {
	c := e.st.Camera()
	if p.X != nil {
		c.X = *p.X
	}
	if p.Y != nil {
		c.Y = *p.Y
	}
	if p.Zoom != nil {
		c.Zoom = *p.Zoom
	}
	e.st.SetCamera(c)
	e.notify(EventCamera, "set")
}

func (e *Editor) ZoomIn()  { e.zoomBy(e.zoomStep) }
func (e *Editor) ZoomOut() { e.zoomBy(1 / e.zoomStep) }

func (e *Editor) zoomBy(f float64) {
	z := e.st.Camera().Zoom * f
	e.SetCamera(CameraPatch{Zoom: &z})
}

// ZoomAt zooms by factor keeping the world point under the screen point sp
// fixed on screen.
func (e *Editor) ZoomAt(sp vector.Pt, factor float64) {
	c := e.st.Camera()
	e.st.SetCamera(c.ZoomAt(sp, c.Zoom*factor))
	e.notify(EventCamera, "zoom")
}

// Assets are outside the undo scope.

// CreateAsset stores a; an empty id gets a fresh one. The stored asset is
// returned.
func (e *Editor) CreateAsset(a shape.Asset) shape.Asset {
	if a.ID == "" {
		a.ID = shape.NewAssetID()
	}
	e.st.PutAsset(a)
	e.notify(EventAssets, "create")
	return a.Clone()
}

func (e *Editor) DeleteAsset(id string) bool {
	if !e.st.RemoveAsset(id) {
		return false
	}
	e.notify(EventAssets, "delete")
	return true
}

func (e *Editor) GetAsset(id string) (shape.Asset, bool) { return e.st.Asset(id) }
func (e *Editor) GetAssets() []shape.Asset               { return e.st.Assets() }
