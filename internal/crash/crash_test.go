/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package crash

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type fakeSaver struct {
	saves int
	err   error
	boom  bool
}

func (f *fakeSaver) ContextID() string { return "pdf-42" }
func (f *fakeSaver) SaveNow(context.Context) error {
	f.saves++
	if f.boom {
		panic("again")
	}
	return f.err
}

func stubGlobals(t *testing.T) (exitCode *int, uploads *[][]byte) {
	t.Helper()
	code := 0
	var up [][]byte
	oldExit, oldUpload := exitFn, uploadFn
	exitFn = func(c int) { code = c }
	uploadFn = func(b []byte) { up = append(up, b) }
	t.Cleanup(func() { exitFn, uploadFn = oldExit, oldUpload })

	// Capture stderr temporarily to avoid noisy test logs
	oldStderr := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w
	t.Cleanup(func() {
		_ = w.Close()
		os.Stderr = oldStderr
		_, _ = io.Copy(io.Discard, r)
	})
	return &code, &up
}

func TestWriteReportCreatesFileInTemp(t *testing.T) {
	stubGlobals(t)
	path, err := writeReport("", "", "boom", []byte("stacktrace"))
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	defer os.Remove(path)
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, "Paperboard Crash Report") {
		t.Fatalf("report header missing")
	}
	if !strings.Contains(s, "Panic: boom") {
		t.Fatalf("panic content missing: %s", s)
	}
	if strings.Contains(s, "Context:") {
		t.Fatalf("no context line expected without a session")
	}
}

func TestRecover_AutosavesAndReports(t *testing.T) {
	code, uploads := stubGlobals(t)
	dir := filepath.Join(t.TempDir(), "reports")
	saver := &fakeSaver{}

	func() {
		defer Recover(saver, dir)
		panic("boom")
	}()

	if *code != 2 {
		t.Fatalf("expected exit code 2, got %d", *code)
	}
	if saver.saves != 1 {
		t.Fatalf("expected one autosave, got %d", saver.saves)
	}
	files, _ := os.ReadDir(dir)
	if len(files) != 1 || !strings.HasPrefix(files[0].Name(), "crash-") {
		t.Fatalf("expected crash report in %s, got %v", dir, files)
	}
	b, _ := os.ReadFile(filepath.Join(dir, files[0].Name()))
	if !bytes.Contains(b, []byte("Panic: boom")) || !bytes.Contains(b, []byte("Context: pdf-42")) {
		t.Fatalf("report incomplete: %s", b)
	}
	if len(*uploads) != 1 {
		t.Fatalf("expected report handed to uploader")
	}
}

func TestRecover_AutosaveFailureStillExits(t *testing.T) {
	code, _ := stubGlobals(t)
	for _, saver := range []*fakeSaver{{err: errors.New("disk full")}, {boom: true}} {
		*code = 0
		func() {
			defer Recover(saver, t.TempDir())
			panic("boom")
		}()
		if *code != 2 || saver.saves != 1 {
			t.Fatalf("exit=%d saves=%d", *code, saver.saves)
		}
	}
}

func TestRecover_NoPanicIsNoop(t *testing.T) {
	code, _ := stubGlobals(t)
	saver := &fakeSaver{}
	func() {
		defer Recover(saver, t.TempDir())
	}()
	if *code != 0 || saver.saves != 0 {
		t.Fatalf("nothing should happen without a panic")
	}
}
