// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for aura.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.aura/config.toml
//   - ~/.aura/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/aura/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete aura configuration.
type Config struct {
	// General settings
	Version string `toml:"version" json:"version"`
	Profile string `toml:"profile" json:"profile"`

	// LLM (Ollama) configuration
	LLM LLMConfig `toml:"llm" json:"llm"`

	// Voice (text-to-speech) configuration
	Voice VoiceConfig `toml:"voice" json:"voice"`

	// Autonomy (background trigger) configuration
	Autonomy AutonomyConfig `toml:"autonomy" json:"autonomy"`

	// Search dispatch configuration
	Search SearchConfig `toml:"search" json:"search"`

	// Conversational memory configuration
	Memory MemoryConfig `toml:"memory" json:"memory"`

	// XGO robot bridge configuration
	XGO XGOConfig `toml:"xgo" json:"xgo"`
}

// LLMConfig contains Ollama connection settings.
type LLMConfig struct {
	// OllamaURL is the URL of the local Ollama server
	OllamaURL string `toml:"ollama_url" json:"ollama_url"`
	// Model is the chat model name
	Model string `toml:"model" json:"model"`
	// EmbeddingModel is the model used for memory embeddings
	EmbeddingModel string `toml:"embedding_model" json:"embedding_model"`
	// TimeoutSecs bounds non-streaming requests
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// SystemPrompt is the base persona prompt (profiles may override)
	SystemPrompt string `toml:"system_prompt" json:"system_prompt"`
}

// VoiceConfig contains text-to-speech settings.
type VoiceConfig struct {
	// Enabled toggles spoken responses
	Enabled bool `toml:"enabled" json:"enabled"`
	// Rate is the speaking rate multiplier, valid range [0.5, 2.0]
	Rate float64 `toml:"rate" json:"rate"`
	// Engine is the TTS command to invoke ("espeak-ng", "say", ...)
	Engine string `toml:"engine" json:"engine"`
}

// TriggerConfig configures one autonomous trigger.
type TriggerConfig struct {
	Enabled      bool `toml:"enabled" json:"enabled"`
	IntervalMins int  `toml:"interval_mins" json:"interval_mins"`
}

// AutonomyConfig contains background trigger settings.
type AutonomyConfig struct {
	// Enabled is the master switch for all triggers
	Enabled bool `toml:"enabled" json:"enabled"`
	// Notes triggers autonomous note writing
	Notes TriggerConfig `toml:"notes" json:"notes"`
	// Screenshots triggers periodic screen captures
	Screenshots TriggerConfig `toml:"screenshots" json:"screenshots"`
	// Messages triggers unprompted companion messages
	Messages TriggerConfig `toml:"messages" json:"messages"`
	// MaxLLMPerHour caps autonomous model calls
	MaxLLMPerHour int `toml:"max_llm_per_hour" json:"max_llm_per_hour"`
}

// SearchConfig contains search dispatch settings.
type SearchConfig struct {
	// Engine is the general web search destination ("duckduckgo", "google")
	Engine string `toml:"engine" json:"engine"`
	// OpenBrowser controls whether results open in the platform browser
	OpenBrowser bool `toml:"open_browser" json:"open_browser"`
}

// MemoryConfig contains conversational memory settings.
type MemoryConfig struct {
	// Enabled toggles memory recall in chat prompts
	Enabled bool `toml:"enabled" json:"enabled"`
	// RecallCount is how many past exchanges to recall per prompt
	RecallCount int `toml:"recall_count" json:"recall_count"`
}

// XGOConfig contains XGO robot bridge settings.
type XGOConfig struct {
	// Address is the robot bridge host:port
	Address string `toml:"address" json:"address"`
	// DialTimeoutSecs bounds connection attempts
	DialTimeoutSecs int `toml:"dial_timeout_secs" json:"dial_timeout_secs"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",
		Profile: "default",

		LLM: LLMConfig{
			OllamaURL:      "http://127.0.0.1:11434",
			Model:          "llama3.1:8b",
			EmbeddingModel: "nomic-embed-text",
			TimeoutSecs:    60,
			SystemPrompt:   "You are aura, a warm and concise desktop companion.",
		},

		Voice: VoiceConfig{
			Enabled: false,
			Rate:    1.0,
			Engine:  defaultTTSEngine(),
		},

		Autonomy: AutonomyConfig{
			Enabled:       false,
			Notes:         TriggerConfig{Enabled: false, IntervalMins: 60},
			Screenshots:   TriggerConfig{Enabled: false, IntervalMins: 120},
			Messages:      TriggerConfig{Enabled: false, IntervalMins: 90},
			MaxLLMPerHour: 12,
		},

		Search: SearchConfig{
			Engine:      "duckduckgo",
			OpenBrowser: true,
		},

		Memory: MemoryConfig{
			Enabled:     true,
			RecallCount: 4,
		},

		XGO: XGOConfig{
			Address:         "",
			DialTimeoutSecs: 5,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the aura configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".aura"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	cfg := Default()

	tomlPath, err := ConfigPathTOML()
	if err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				return nil, fmt.Errorf("failed to load TOML config: %w", err)
			}
			return finish(cfg)
		}
	}

	jsonPath, err := ConfigPathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			if err := LoadJSON(cfg, jsonPath); err != nil {
				return nil, fmt.Errorf("failed to load JSON config: %w", err)
			}
			return finish(cfg)
		}
	}

	return finish(cfg)
}

// LoadFromPath loads configuration from a specific file path with full
// validation. JSON is chosen by extension, TOML otherwise.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}
	return finish(cfg)
}

// finish applies env overrides, defaults, and validation.
func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file into cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON loads configuration from a JSON file into cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default JSON file.
// The write is atomic (write-to-temp, fsync, rename) so a crash mid-save
// cannot corrupt the file.
func Save(cfg *Config) error {
	path, err := ConfigPathJSON()
	if err != nil {
		return err
	}
	return SaveJSON(cfg, path)
}

// SaveJSON saves the configuration to a JSON file atomically with 0600
// permissions.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveTOML saves the configuration to a TOML file with a header comment.
func SaveTOML(cfg *Config, path string) error {
	var buf strings.Builder
	buf.WriteString("# aura configuration file\n")
	buf.WriteString("# Generated by aura - edit with care\n\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, []byte(buf.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// VoiceRateMin and VoiceRateMax bound the speaking rate multiplier.
const (
	VoiceRateMin = 0.5
	VoiceRateMax = 2.0
)

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.LLM.OllamaURL != "" {
		if _, err := url.Parse(c.LLM.OllamaURL); err != nil {
			errs = append(errs, ValidationError{
				Field:   "llm.ollama_url",
				Message: fmt.Sprintf("invalid URL: %v", err),
			})
		}
	}

	if c.LLM.TimeoutSecs < 0 {
		errs = append(errs, ValidationError{
			Field:   "llm.timeout_secs",
			Message: "must be non-negative",
		})
	}

	if c.Voice.Rate < VoiceRateMin || c.Voice.Rate > VoiceRateMax {
		errs = append(errs, ValidationError{
			Field:   "voice.rate",
			Message: fmt.Sprintf("must be between %.1f and %.1f, got %g", VoiceRateMin, VoiceRateMax, c.Voice.Rate),
		})
	}

	for _, trig := range []struct {
		name string
		cfg  TriggerConfig
	}{
		{"autonomy.notes", c.Autonomy.Notes},
		{"autonomy.screenshots", c.Autonomy.Screenshots},
		{"autonomy.messages", c.Autonomy.Messages},
	} {
		if trig.cfg.IntervalMins < 1 {
			errs = append(errs, ValidationError{
				Field:   trig.name + ".interval_mins",
				Message: fmt.Sprintf("must be at least 1, got %d", trig.cfg.IntervalMins),
			})
		}
	}

	validEngines := map[string]bool{"duckduckgo": true, "google": true, "bing": true}
	if !validEngines[strings.ToLower(c.Search.Engine)] {
		errs = append(errs, ValidationError{
			Field:   "search.engine",
			Message: fmt.Sprintf("invalid engine '%s', must be one of: duckduckgo, google, bing", c.Search.Engine),
		})
	}

	if c.Memory.RecallCount < 0 {
		errs = append(errs, ValidationError{
			Field:   "memory.recall_count",
			Message: "must be non-negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults sets default values for any missing or zero-value fields.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}
	if c.Profile == "" {
		c.Profile = defaults.Profile
	}
	if c.LLM.OllamaURL == "" {
		c.LLM.OllamaURL = defaults.LLM.OllamaURL
	}
	if c.LLM.Model == "" {
		c.LLM.Model = defaults.LLM.Model
	}
	if c.LLM.EmbeddingModel == "" {
		c.LLM.EmbeddingModel = defaults.LLM.EmbeddingModel
	}
	if c.LLM.TimeoutSecs == 0 {
		c.LLM.TimeoutSecs = defaults.LLM.TimeoutSecs
	}
	if c.LLM.SystemPrompt == "" {
		c.LLM.SystemPrompt = defaults.LLM.SystemPrompt
	}
	if c.Voice.Rate == 0 {
		c.Voice.Rate = defaults.Voice.Rate
	}
	if c.Voice.Engine == "" {
		c.Voice.Engine = defaults.Voice.Engine
	}
	if c.Autonomy.Notes.IntervalMins == 0 {
		c.Autonomy.Notes.IntervalMins = defaults.Autonomy.Notes.IntervalMins
	}
	if c.Autonomy.Screenshots.IntervalMins == 0 {
		c.Autonomy.Screenshots.IntervalMins = defaults.Autonomy.Screenshots.IntervalMins
	}
	if c.Autonomy.Messages.IntervalMins == 0 {
		c.Autonomy.Messages.IntervalMins = defaults.Autonomy.Messages.IntervalMins
	}
	if c.Autonomy.MaxLLMPerHour == 0 {
		c.Autonomy.MaxLLMPerHour = defaults.Autonomy.MaxLLMPerHour
	}
	if c.Search.Engine == "" {
		c.Search.Engine = defaults.Search.Engine
	}
	if c.Memory.RecallCount == 0 {
		c.Memory.RecallCount = defaults.Memory.RecallCount
	}
	if c.XGO.DialTimeoutSecs == 0 {
		c.XGO.DialTimeoutSecs = defaults.XGO.DialTimeoutSecs
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - AURA_MODEL: overrides llm.model
//   - AURA_OLLAMA_URL: overrides llm.ollama_url
//   - AURA_PROFILE: overrides profile
//   - AURA_VOICE: set to "1" or "true" to enable spoken responses
//   - AURA_AUTONOMY: set to "1" or "true" to enable autonomous triggers
func (c *Config) ApplyEnvOverrides() {
	if model := os.Getenv("AURA_MODEL"); model != "" {
		c.LLM.Model = model
	}
	if u := os.Getenv("AURA_OLLAMA_URL"); u != "" {
		c.LLM.OllamaURL = u
	}
	if p := os.Getenv("AURA_PROFILE"); p != "" {
		c.Profile = p
	}
	if v := os.Getenv("AURA_VOICE"); v != "" {
		c.Voice.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if a := os.Getenv("AURA_AUTONOMY"); a != "" {
		c.Autonomy.Enabled = a == "1" || strings.EqualFold(a, "true")
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "voice.rate").
func (c *Config) Get(key string) (interface{}, error) {
	parts := strings.Split(key, ".")
	if len(parts) == 0 || key == "" {
		return nil, errors.New("empty key")
	}

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)

		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return nil, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}

		if i == len(parts)-1 {
			return field.Interface(), nil
		}

		if field.Kind() == reflect.Struct {
			v = field
		} else {
			return nil, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
	}

	return nil, fmt.Errorf("invalid key: %s", key)
}

// Set sets a configuration value using dot notation (e.g., "voice.rate").
func (c *Config) Set(key string, value interface{}) error {
	parts := strings.Split(key, ".")
	if len(parts) == 0 || key == "" {
		return errors.New("empty key")
	}

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)

		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}

		if i == len(parts)-1 {
			if !field.CanSet() {
				return fmt.Errorf("cannot set field: %s", key)
			}
			return setFieldValue(field, value)
		}

		if field.Kind() == reflect.Struct {
			v = field
		} else {
			return fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
	}

	return fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go
// field equivalent. Acronym fields (LLM, XGO) are matched case-insensitively
// by FieldByNameFunc so "llm" and "xgo" resolve without special cases.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}

	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type
// conversion. String inputs are parsed into the field's kind so "/config"
// style callers can pass everything as text.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			boolVal := strVal == "1" || strings.EqualFold(strVal, "true") || strings.EqualFold(strVal, "yes")
			field.SetBool(boolVal)
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}

	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// =============================================================================
// HELPERS
// =============================================================================

// Clone creates a copy of the configuration. Config contains only value
// types, so a struct copy is a deep copy.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns a JSON representation of the config for display.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// defaultTTSEngine picks the platform TTS command.
func defaultTTSEngine() string {
	if _, err := os.Stat("/usr/bin/say"); err == nil {
		return "say"
	}
	return "espeak-ng"
}
