// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/jeranaias/aura/internal/util"
)

// =============================================================================
// PROFILE TYPE
// =============================================================================

// Profile is a named user persona. The active profile shapes the chat
// system prompt and voice preferences.
type Profile struct {
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
	Persona     string    `json:"persona"` // appended to the system prompt
	VoiceRate   float64   `json:"voice_rate,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrProfileNotFound is returned when a named profile does not exist.
var ErrProfileNotFound = errors.New("profile not found")

// ErrProfileExists is returned by Create when the name is taken.
var ErrProfileExists = errors.New("profile already exists")

var validName = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// =============================================================================
// PROFILE STORE
// =============================================================================

const activeMarker = ".active"

// Store persists profiles as JSON documents in a directory, one file
// per profile, plus a marker file naming the active one.
type Store struct {
	baseDir string
}

// NewStore creates a store rooted at ~/.aura/profiles.
func NewStore() (*Store, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return NewStoreAt(filepath.Join(homeDir, ".aura", "profiles"))
}

// NewStoreAt creates a store rooted at a custom directory.
func NewStoreAt(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}
	return &Store{baseDir: baseDir}, nil
}

// Create adds a new profile. Names are lowercase slugs.
func (s *Store) Create(name, displayName, persona string) (*Profile, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if !validName.MatchString(name) {
		return nil, fmt.Errorf("invalid profile name %q: use lowercase letters, digits, - and _", name)
	}

	if _, err := os.Stat(s.path(name)); err == nil {
		return nil, ErrProfileExists
	}

	now := time.Now()
	p := &Profile{
		Name:        name,
		DisplayName: displayName,
		Persona:     persona,
		VoiceRate:   1.0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if p.DisplayName == "" {
		p.DisplayName = name
	}

	if err := s.save(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Get loads a profile by name.
func (s *Store) Get(name string) (*Profile, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("load profile %s: %w", name, err)
	}
	return &p, nil
}

// Update saves changes to an existing profile.
func (s *Store) Update(p *Profile) error {
	if _, err := s.Get(p.Name); err != nil {
		return err
	}
	p.UpdatedAt = time.Now()
	return s.save(p)
}

// List returns all profiles sorted by name.
func (s *Store) List() ([]Profile, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var profiles []Profile
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".json")
		p, err := s.Get(name)
		if err != nil {
			continue // skip corrupted files
		}
		profiles = append(profiles, *p)
	}

	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].Name < profiles[j].Name
	})
	return profiles, nil
}

// Delete removes a profile. Deleting the active profile clears the
// active marker.
func (s *Store) Delete(name string) error {
	if err := os.Remove(s.path(name)); err != nil {
		if os.IsNotExist(err) {
			return ErrProfileNotFound
		}
		return err
	}

	if active, _ := s.ActiveName(); active == name {
		os.Remove(filepath.Join(s.baseDir, activeMarker))
	}
	return nil
}

// =============================================================================
// ACTIVE PROFILE
// =============================================================================

// Switch makes the named profile active.
func (s *Store) Switch(name string) (*Profile, error) {
	p, err := s.Get(name)
	if err != nil {
		return nil, err
	}

	marker := filepath.Join(s.baseDir, activeMarker)
	if err := util.AtomicWriteFile(marker, []byte(name), 0644); err != nil {
		return nil, err
	}
	return p, nil
}

// ActiveName returns the name of the active profile, or "" when none
// is set.
func (s *Store) ActiveName() (string, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, activeMarker))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// Active loads the active profile, or nil when none is set.
func (s *Store) Active() (*Profile, error) {
	name, err := s.ActiveName()
	if err != nil || name == "" {
		return nil, err
	}

	p, err := s.Get(name)
	if errors.Is(err, ErrProfileNotFound) {
		return nil, nil // stale marker
	}
	return p, err
}

// =============================================================================
// HELPERS
// =============================================================================

func (s *Store) path(name string) string {
	return filepath.Join(s.baseDir, name+".json")
}

func (s *Store) save(p *Profile) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return util.AtomicWriteFile(s.path(p.Name), data, 0644)
}
