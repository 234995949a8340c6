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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.
// Unknown fields are ignored on unmarshal.

type EditorConfig struct {
	HistoryCapacity int     `yaml:"history_capacity"`
	SaveDebounceMs  int     `yaml:"save_debounce_ms"`
	SnapThreshold   float64 `yaml:"snap_threshold"`
	ZoomStep        float64 `yaml:"zoom_step"`
}

type StorageConfig struct {
	Driver      string `yaml:"driver"` // "sqlite" | "file" | "postgres"
	Path        string `yaml:"path"`
	PostgresDSN string `yaml:"postgres_dsn"`
	KeepBackups int    `yaml:"keep_backups"`
	// The postgres password is not stored on disk; it lives in the OS keychain.
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type TelemetryConfig struct {
	OptIn     bool   `yaml:"opt_in"`
	EventsURL string `yaml:"events_url"`
}

type AppConfig struct {
	ConfigVersion int             `yaml:"config_version"`
	Editor        EditorConfig    `yaml:"editor"`
	Storage       StorageConfig   `yaml:"storage"`
	Logging       LoggingConfig   `yaml:"logging"`
	Telemetry     TelemetryConfig `yaml:"telemetry"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Editor:        EditorConfig{HistoryCapacity: 100, SaveDebounceMs: 1000, SnapThreshold: 5, ZoomStep: 1.2},
		Storage:       StorageConfig{Driver: "sqlite", KeepBackups: 20},
		Logging:       LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
		Telemetry:     TelemetryConfig{OptIn: false},
	}
}

// EnvPrefix is prepended to every override variable, e.g. PB_STORAGE_DRIVER.
const EnvPrefix = "PB"

// Env var names used as overrides.
const (
	EnvConfigPath      = "PB_CONFIG"
	EnvStorageDriver   = "PB_STORAGE_DRIVER"
	EnvStoragePath     = "PB_STORAGE_PATH"
	EnvPostgresDSN     = "PB_POSTGRES_DSN"
	EnvHistoryCapacity = "PB_HISTORY_CAPACITY"
	EnvSaveDebounceMs  = "PB_SAVE_DEBOUNCE_MS"
	EnvSnapThreshold   = "PB_SNAP_THRESHOLD"
	EnvTelemetryOptIn  = "PB_TELEMETRY_OPT_IN"
	EnvTelemetryURL    = "PB_TELEMETRY_URL"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "PB_LOG_LEVEL"
	EnvLogFormat = "PB_LOG_FORMAT"
	EnvLogSource = "PB_LOG_SOURCE"
	EnvLogFile   = "PB_LOG_FILE"
)

// envOverrides is filled by envconfig; nil fields were not set.
type envOverrides struct {
	StorageDriver   *string  `envconfig:"STORAGE_DRIVER"`
	StoragePath     *string  `envconfig:"STORAGE_PATH"`
	PostgresDSN     *string  `envconfig:"POSTGRES_DSN"`
	HistoryCapacity *int     `envconfig:"HISTORY_CAPACITY"`
	SaveDebounceMs  *int     `envconfig:"SAVE_DEBOUNCE_MS"`
	SnapThreshold   *float64 `envconfig:"SNAP_THRESHOLD"`
	TelemetryOptIn  *bool    `envconfig:"TELEMETRY_OPT_IN"`
	TelemetryURL    *string  `envconfig:"TELEMETRY_URL"`
	LogLevel        *string  `envconfig:"LOG_LEVEL"`
	LogFormat       *string  `envconfig:"LOG_FORMAT"`
	LogSource       *bool    `envconfig:"LOG_SOURCE"`
	LogFile         *string  `envconfig:"LOG_FILE"`
}

// overrideKeys maps config keys to the variables that override them.
var overrideKeys = map[string]string{
	"storage.driver":          EnvStorageDriver,
	"storage.path":            EnvStoragePath,
	"storage.postgres_dsn":    EnvPostgresDSN,
	"editor.history_capacity": EnvHistoryCapacity,
	"editor.save_debounce_ms": EnvSaveDebounceMs,
	"editor.snap_threshold":   EnvSnapThreshold,
	"telemetry.opt_in":        EnvTelemetryOptIn,
	"telemetry.events_url":    EnvTelemetryURL,
	"logging.level":           EnvLogLevel,
	"logging.format":          EnvLogFormat,
	"logging.source":          EnvLogSource,
	"logging.file":            EnvLogFile,
}

// Service/keys for OS keyring.
const (
	keyringService  = "paperboard"
	keyringPassword = "postgres_password"
)

// tokenStore abstracts keyring, so we can stub in tests.
var tokenStore TokenStore = osKeyring{}

type TokenStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

// SetTokenStore replaces the secret backend and returns a function restoring the previous one.
func SetTokenStore(ts TokenStore) (restore func()) {
	prev := tokenStore
	tokenStore = ts
	return func() { tokenStore = prev }
}

// osKeyring implements TokenStore using the OS keyring via github.com/zalando/go-keyring.
type osKeyring struct{}

func (osKeyring) Get(service, key string) (string, error) { return keyring.Get(service, key) }
func (osKeyring) Set(service, key, value string) error    { return keyring.Set(service, key, value) }
func (osKeyring) Delete(service, key string) error        { return keyring.Delete(service, key) }

// ConfigPath returns the per-user config file path. PB_CONFIG wins when set.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	base, err := userDir(false)
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "config.yaml"), nil
}

// DataDir returns the per-user directory holding the default database.
func DataDir() (string, error) { return userDir(true) }

func userDir(data bool) (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "Paperboard")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "Paperboard")
	default: // linux and others
		if data {
			base = filepath.Join(os.Getenv("HOME"), ".local", "share", "paperboard")
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".config", "paperboard")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return base, nil
}

// Load reads user config file (if present), applies defaults, and merges environment overrides.
// It also loads the postgres password from keyring (not kept inside the struct; returned separately).
func Load() (AppConfig, string, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, "", err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return cfg, "", fmt.Errorf("parse %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	}
	if err := applyEnvOverrides(&cfg); err != nil {
		return cfg, "", err
	}
	// secret from keyring
	secret, _ := tokenStore.Get(keyringService, keyringPassword)
	return cfg, secret, cfg.Validate()
}

// Save writes the user config YAML and persists the password into OS keyring (if non-empty).
func Save(cfg AppConfig, password string) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if password != "" {
		if err := tokenStore.Set(keyringService, keyringPassword, password); err != nil {
			return err
		}
	}
	return nil
}

// ClearPassword removes the stored postgres password.
func ClearPassword() error {
	err := tokenStore.Delete(keyringService, keyringPassword)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

// Validate reports settings no component can run with.
func (c AppConfig) Validate() error {
	switch c.Storage.Driver {
	case "sqlite", "file", "postgres":
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	if c.Storage.Driver == "postgres" && strings.TrimSpace(c.Storage.PostgresDSN) == "" {
		return errors.New("config: storage.postgres_dsn is required for the postgres driver")
	}
	if c.Editor.HistoryCapacity < 1 {
		return fmt.Errorf("config: editor.history_capacity must be positive, got %d", c.Editor.HistoryCapacity)
	}
	return nil
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if src.Editor.HistoryCapacity != 0 {
		dst.Editor.HistoryCapacity = src.Editor.HistoryCapacity
	}
	if src.Editor.SaveDebounceMs != 0 {
		dst.Editor.SaveDebounceMs = src.Editor.SaveDebounceMs
	}
	if src.Editor.SnapThreshold != 0 {
		dst.Editor.SnapThreshold = src.Editor.SnapThreshold
	}
	if src.Editor.ZoomStep != 0 {
		dst.Editor.ZoomStep = src.Editor.ZoomStep
	}
	if v := strings.ToLower(strings.TrimSpace(src.Storage.Driver)); v != "" {
		dst.Storage.Driver = v
	}
	if v := strings.TrimSpace(src.Storage.Path); v != "" {
		dst.Storage.Path = v
	}
	if v := strings.TrimSpace(src.Storage.PostgresDSN); v != "" {
		dst.Storage.PostgresDSN = v
	}
	if src.Storage.KeepBackups != 0 {
		dst.Storage.KeepBackups = src.Storage.KeepBackups
	}
	// booleans: copy directly from src (file) so user preferences persist
	dst.Telemetry.OptIn = src.Telemetry.OptIn
	if v := strings.TrimSpace(src.Telemetry.EventsURL); v != "" {
		dst.Telemetry.EventsURL = v
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func applyEnvOverrides(cfg *AppConfig) error {
	var o envOverrides
	if err := envconfig.Process(EnvPrefix, &o); err != nil {
		return fmt.Errorf("config: env: %w", err)
	}
	setStr := func(dst *string, v *string, lower bool) {
		if v == nil || strings.TrimSpace(*v) == "" {
			return
		}
		*dst = strings.TrimSpace(*v)
		if lower {
			*dst = strings.ToLower(*dst)
		}
	}
	setStr(&cfg.Storage.Driver, o.StorageDriver, true)
	setStr(&cfg.Storage.Path, o.StoragePath, false)
	setStr(&cfg.Storage.PostgresDSN, o.PostgresDSN, false)
	setStr(&cfg.Telemetry.EventsURL, o.TelemetryURL, false)
	setStr(&cfg.Logging.Level, o.LogLevel, true)
	setStr(&cfg.Logging.Format, o.LogFormat, true)
	setStr(&cfg.Logging.File, o.LogFile, false)
	if o.HistoryCapacity != nil {
		cfg.Editor.HistoryCapacity = *o.HistoryCapacity
	}
	if o.SaveDebounceMs != nil {
		cfg.Editor.SaveDebounceMs = *o.SaveDebounceMs
	}
	if o.SnapThreshold != nil {
		cfg.Editor.SnapThreshold = *o.SnapThreshold
	}
	if o.TelemetryOptIn != nil {
		cfg.Telemetry.OptIn = *o.TelemetryOptIn
	}
	if o.LogSource != nil {
		cfg.Logging.Source = *o.LogSource
	}
	return nil
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	name, ok := overrideKeys[key]
	if !ok || os.Getenv(name) == "" {
		return "", false
	}
	return name, true
}

// SaveDebounce returns the idle delay before a scene is written.
func (e EditorConfig) SaveDebounce() time.Duration {
	if e.SaveDebounceMs <= 0 {
		return time.Duration(Defaults().Editor.SaveDebounceMs) * time.Millisecond
	}
	return time.Duration(e.SaveDebounceMs) * time.Millisecond
}

// ResolvedPath returns the storage path, defaulting into DataDir.
func (s StorageConfig) ResolvedPath() (string, error) {
	if s.Path != "" {
		return s.Path, nil
	}
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	if s.Driver == "file" {
		return filepath.Join(dir, "scenes"), nil
	}
	return dir, nil
}
