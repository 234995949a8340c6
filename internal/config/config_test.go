/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/zalando/go-keyring"
)

type memTokens map[string]string

func (m memTokens) Get(service, key string) (string, error) {
	v, ok := m[service+"/"+key]
	if !ok {
		return "", keyring.ErrNotFound
	}
	return v, nil
}
func (m memTokens) Set(service, key, value string) error { m[service+"/"+key] = value; return nil }
func (m memTokens) Delete(service, key string) error {
	if _, ok := m[service+"/"+key]; !ok {
		return keyring.ErrNotFound
	}
	delete(m, service+"/"+key)
	return nil
}

// isolate points the config file into a temp dir and stubs the keyring.
func isolate(t *testing.T) (string, memTokens) {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv(EnvConfigPath, p)
	mem := memTokens{}
	t.Cleanup(SetTokenStore(mem))
	return p, mem
}

func TestDefaultsWithoutFile(t *testing.T) {
	isolate(t)
	cfg, secret, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if secret != "" {
		t.Fatalf("expected no secret, got %q", secret)
	}
	if cfg.Editor.HistoryCapacity != 100 || cfg.Editor.SaveDebounce() != time.Second || cfg.Storage.Driver != "sqlite" {
		t.Fatalf("unexpected defaults: %#v", cfg)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path, mem := isolate(t)
	cfg := Defaults()
	cfg.Storage.Driver = "file"
	cfg.Storage.Path = "/tmp/scenes"
	cfg.Editor.SaveDebounceMs = 250
	if err := Save(cfg, "s3cret"); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if string(data) == "" || strings.Contains(string(data), "s3cret") {
		t.Fatalf("password must not be written to yaml:\n%s", data)
	}
	if mem["paperboard/postgres_password"] != "s3cret" {
		t.Fatalf("password not stored in keyring: %v", mem)
	}
	got, secret, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got.Storage.Driver != "file" || got.Storage.Path != "/tmp/scenes" || got.Editor.SaveDebounce() != 250*time.Millisecond {
		t.Fatalf("config not restored: %#v", got)
	}
	if secret != "s3cret" {
		t.Fatalf("secret = %q", secret)
	}
	if err := ClearPassword(); err != nil {
		t.Fatalf("ClearPassword: %v", err)
	}
	if err := ClearPassword(); err != nil {
		t.Fatalf("second ClearPassword should be a no-op: %v", err)
	}
}

func TestEnvOverridesStorage(t *testing.T) {
	isolate(t)
	t.Setenv(EnvStorageDriver, "POSTGRES")
	t.Setenv(EnvPostgresDSN, "postgres://u@localhost/pb")
	t.Setenv(EnvHistoryCapacity, "12")
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Storage.Driver != "postgres" || cfg.Storage.PostgresDSN != "postgres://u@localhost/pb" || cfg.Editor.HistoryCapacity != 12 {
		t.Fatalf("env overrides not applied: %#v", cfg)
	}
	if name, ok := EnvOverrideFor("storage.driver"); !ok || name != EnvStorageDriver {
		t.Fatalf("EnvOverrideFor(storage.driver) = %q, %v", name, ok)
	}
	if _, ok := EnvOverrideFor("storage.path"); ok {
		t.Fatalf("storage.path is not overridden")
	}
}

func TestEnvOverridesTelemetry(t *testing.T) {
	isolate(t)
	t.Setenv(EnvTelemetryOptIn, "true")
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !cfg.Telemetry.OptIn {
		t.Fatalf("Telemetry.OptIn expected true from env override")
	}
}

func TestEnvOverridesLogging(t *testing.T) {
	isolate(t)
	t.Setenv(EnvLogLevel, "ERROR")
	t.Setenv(EnvLogFormat, "json")
	t.Setenv(EnvLogSource, "1")
	t.Setenv(EnvLogFile, "X:/pb.log")
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Logging.Level != "error" || cfg.Logging.Format != "json" || !cfg.Logging.Source || cfg.Logging.File != "X:/pb.log" {
		t.Fatalf("env overrides not applied to logging: %#v", cfg.Logging)
	}
}

func TestBadEnvValue(t *testing.T) {
	isolate(t)
	t.Setenv(EnvHistoryCapacity, "lots")
	if _, _, err := Load(); err == nil {
		t.Fatalf("expected error for non-numeric capacity")
	}
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	cfg.Storage.Driver = "mongo"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected unknown driver error")
	}
	cfg = Defaults()
	cfg.Storage.Driver = "postgres"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected missing dsn error")
	}
	cfg = Defaults()
	cfg.Editor.HistoryCapacity = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected capacity error")
	}
}

func TestMergeIncludesLogging(t *testing.T) {
	dst := Defaults()
	src := AppConfig{}
	src.Logging.Level = "debug"
	src.Logging.Format = "json"
	src.Logging.Source = true
	src.Logging.File = "C:/tmp/pb.log"
	mergeInto(&dst, &src)
	if dst.Logging.Level != "debug" || dst.Logging.Format != "json" || !dst.Logging.Source || dst.Logging.File != "C:/tmp/pb.log" {
		t.Fatalf("logging fields not merged correctly: %#v", dst.Logging)
	}
	if dst.Editor.HistoryCapacity != 100 {
		t.Fatalf("zero values in file must keep defaults, got %d", dst.Editor.HistoryCapacity)
	}
}

func TestResolvedPath(t *testing.T) {
	s := StorageConfig{Driver: "file", Path: "/data/x"}
	if p, _ := s.ResolvedPath(); p != "/data/x" {
		t.Fatalf("explicit path lost: %s", p)
	}
	t.Setenv("HOME", t.TempDir())
	s.Path = ""
	p, err := s.ResolvedPath()
	if err != nil || filepath.Base(p) != "scenes" {
		t.Fatalf("file driver default path = %q, %v", p, err)
	}
}
