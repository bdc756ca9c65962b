// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// CONFIG SERVICE
// =============================================================================

// Service owns the live configuration behind a mutex. Autonomous triggers
// and user commands can both reach the executor, so every read and mutation
// goes through a single synchronized method rather than shared struct
// access.
//
// Boolean coercion happens exactly once, here: partial updates arriving
// from the UI layer may carry "true"/"false" as strings, and Merge converts
// them before the values ever reach the Config struct. Any string-typed
// boolean seen past this boundary is a bug upstream.
type Service struct {
	mu  sync.RWMutex
	cfg *Config

	// path is where Save persists; empty means the default location.
	path string

	watcher  *fsnotify.Watcher
	onReload func(*Config)
	done     chan struct{}
}

// NewService wraps a loaded configuration. A nil cfg starts from defaults.
func NewService(cfg *Config) *Service {
	if cfg == nil {
		cfg = Default()
	}
	return &Service{cfg: cfg}
}

// NewServiceAt wraps a configuration persisted at a specific path.
func NewServiceAt(cfg *Config, path string) *Service {
	s := NewService(cfg)
	s.path = path
	return s
}

// Get returns a copy of the current configuration. Callers may read the
// copy freely; mutations must go through Merge or Set.
func (s *Service) Get() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *s.cfg.Clone()
}

// Set updates a single dot-notation key and validates the result.
func (s *Service) Set(key string, value interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	trial := s.cfg.Clone()
	if err := trial.Set(key, value); err != nil {
		return err
	}
	if err := trial.Validate(); err != nil {
		return err
	}
	s.cfg = trial
	return nil
}

// Merge applies a partial update expressed as JSON. Keys absent from the
// partial document are preserved; nested objects merge recursively. The
// merged result is validated before it replaces the live config, so an
// invalid partial leaves the configuration untouched.
func (s *Service) Merge(partialJSON string) error {
	var partial map[string]interface{}
	if err := json.Unmarshal([]byte(partialJSON), &partial); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	coerceBooleans(partial)

	s.mu.Lock()
	defer s.mu.Unlock()

	// Round-trip the current config through a map, deep-merge the partial
	// on top, then decode back into a typed Config.
	current, err := configToMap(s.cfg)
	if err != nil {
		return err
	}
	deepMerge(current, partial)

	merged, err := mapToConfig(current)
	if err != nil {
		return err
	}
	merged.SetDefaults()
	if err := merged.Validate(); err != nil {
		return err
	}

	s.cfg = merged
	return nil
}

// Reset restores the built-in defaults.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = Default()
}

// Save persists the current configuration atomically.
func (s *Service) Save() error {
	s.mu.RLock()
	cfg := s.cfg.Clone()
	path := s.path
	s.mu.RUnlock()

	if path == "" {
		if err := EnsureConfigDir(); err != nil {
			return err
		}
		return Save(cfg)
	}
	return SaveJSON(cfg, path)
}

// =============================================================================
// HOT RELOAD
// =============================================================================

// Watch reloads the configuration when its file changes on disk. The
// callback runs with the freshly loaded config; load errors are ignored
// (the previous config stays live).
func (s *Service) Watch(onReload func(*Config)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watcher != nil {
		return fmt.Errorf("already watching")
	}

	path := s.path
	if path == "" {
		var err error
		path, err = ConfigPathJSON()
		if err != nil {
			return err
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	// Watch the directory: atomic saves replace the file by rename, which
	// drops a watch placed on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch config dir: %w", err)
	}

	s.watcher = watcher
	s.onReload = onReload
	s.done = make(chan struct{})

	go s.watchLoop(path)
	return nil
}

func (s *Service) watchLoop(path string) {
	for {
		select {
		case <-s.done:
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if event.Name != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			cfg, err := LoadFromPath(path)
			if err != nil {
				continue
			}
			s.mu.Lock()
			s.cfg = cfg
			cb := s.onReload
			s.mu.Unlock()
			if cb != nil {
				cb(cfg)
			}
		case _, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// Close stops the file watcher if one is running.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher == nil {
		return nil
	}
	close(s.done)
	err := s.watcher.Close()
	s.watcher = nil
	return err
}

// =============================================================================
// MERGE HELPERS
// =============================================================================

// coerceBooleans walks a decoded JSON document and converts "true"/"false"
// strings to real booleans in place.
func coerceBooleans(m map[string]interface{}) {
	for k, v := range m {
		switch val := v.(type) {
		case string:
			switch val {
			case "true", "True", "TRUE":
				m[k] = true
			case "false", "False", "FALSE":
				m[k] = false
			}
		case map[string]interface{}:
			coerceBooleans(val)
		}
	}
}

// deepMerge merges src into dst recursively. Non-map values in src replace
// the corresponding dst values.
func deepMerge(dst, src map[string]interface{}) {
	for k, v := range src {
		if srcMap, ok := v.(map[string]interface{}); ok {
			if dstMap, ok := dst[k].(map[string]interface{}); ok {
				deepMerge(dstMap, srcMap)
				continue
			}
		}
		dst[k] = v
	}
}

func configToMap(cfg *Config) (map[string]interface{}, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return m, nil
}

func mapToConfig(m map[string]interface{}) (*Config, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode merged config: %w", err)
	}
	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode merged config: %w", err)
	}
	return cfg, nil
}
