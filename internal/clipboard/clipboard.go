/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package clipboard moves copied shapes between editors. The system
// clipboard is preferred; when the platform denies access a process-local
// channel takes over without surfacing an error.
package clipboard

import (
	"errors"
	"log/slog"
	"sync"

	sysclip "github.com/atotto/clipboard"

	"paperboard/internal/log"
)

// ErrUnavailable is returned by channels that cannot be used on this host.
var ErrUnavailable = errors.New("clipboard unavailable")

// Channel reads and writes clipboard text.
type Channel interface {
	Write(text string) error
	Read() (string, error)
}

// System is the OS clipboard.
type System struct{}

func (System) Write(text string) error {
	if sysclip.Unsupported {
		return ErrUnavailable
	}
	return sysclip.WriteAll(text)
}

func (System) Read() (string, error) {
	if sysclip.Unsupported {
		return "", ErrUnavailable
	}
	return sysclip.ReadAll()
}

// Memory is a process-local clipboard.
type Memory struct {
	mu   sync.Mutex
	text string
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Write(text string) error {
	m.mu.Lock()
	m.text = text
	m.mu.Unlock()
	return nil
}

func (m *Memory) Read() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text, nil
}

// Fallback writes to Primary and, if that fails, to Secondary. Reads prefer
// Primary unless it failed or returned nothing. Writes always mirror into
// Secondary so a later primary read failure still finds the payload.
type Fallback struct {
	Primary   Channel
	Secondary Channel
	log       *slog.Logger
}

// Default returns the system clipboard backed by an in-memory fallback.
func Default() *Fallback { return NewFallback(System{}, NewMemory()) }

func NewFallback(primary, secondary Channel) *Fallback {
	return &Fallback{Primary: primary, Secondary: secondary, log: log.WithComponent("clipboard")}
}

func (f *Fallback) Write(text string) error {
	if err := f.Secondary.Write(text); err != nil {
		return err
	}
	if err := f.Primary.Write(text); err != nil {
		f.log.Debug("primary clipboard write failed, using fallback", slog.Any("err", err))
	}
	return nil
}

func (f *Fallback) Read() (string, error) {
	text, err := f.Primary.Read()
	if err == nil && text != "" {
		return text, nil
	}
	if err != nil {
		f.log.Debug("primary clipboard read failed, using fallback", slog.Any("err", err))
	}
	return f.Secondary.Read()
}
