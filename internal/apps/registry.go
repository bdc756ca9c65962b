// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package apps

import (
	"bufio"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
)

// =============================================================================
// APP REGISTRY
// =============================================================================

// App is a launchable application discovered on this machine.
type App struct {
	// Name is the lookup key, lowercase.
	Name string

	// Path is the executable path or the desktop-entry Exec command.
	Path string
}

// Registry resolves human app names ("firefox", "text editor") to
// launchable paths. The index is built lazily from $PATH and XDG
// desktop entries and cached; Refresh rebuilds it.
type Registry struct {
	mu   sync.RWMutex
	apps map[string]App
}

// NewRegistry creates an empty registry. The index is built on first
// Resolve.
func NewRegistry() *Registry {
	return &Registry{}
}

// Resolve returns the launch path for a name, matching exact names
// first, then prefix, then substring.
func (r *Registry) Resolve(name string) (string, bool) {
	name = normalizeName(name)
	if name == "" {
		return "", false
	}

	r.ensureIndex()

	r.mu.RLock()
	defer r.mu.RUnlock()

	if app, ok := r.apps[name]; ok {
		return app.Path, true
	}

	// Prefix match, shortest candidate wins so "fire" finds "firefox"
	// rather than "firefox-developer-edition".
	var candidates []string
	for key := range r.apps {
		if strings.HasPrefix(key, name) {
			candidates = append(candidates, key)
		}
	}
	if len(candidates) == 0 {
		for key := range r.apps {
			if strings.Contains(key, name) {
				candidates = append(candidates, key)
			}
		}
	}
	if len(candidates) == 0 {
		return "", false
	}

	sort.Slice(candidates, func(i, j int) bool {
		if len(candidates[i]) != len(candidates[j]) {
			return len(candidates[i]) < len(candidates[j])
		}
		return candidates[i] < candidates[j]
	})
	return r.apps[candidates[0]].Path, true
}

// Refresh rebuilds the index from the current environment.
func (r *Registry) Refresh() {
	apps := scanPath()
	for name, app := range scanDesktopEntries() {
		// Desktop entries carry friendlier names; they win on conflict.
		apps[name] = app
	}

	r.mu.Lock()
	r.apps = apps
	r.mu.Unlock()
}

// Known returns the number of indexed applications.
func (r *Registry) Known() int {
	r.ensureIndex()
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.apps)
}

func (r *Registry) ensureIndex() {
	r.mu.RLock()
	built := r.apps != nil
	r.mu.RUnlock()
	if !built {
		r.Refresh()
	}
}

// =============================================================================
// INDEX BUILDING
// =============================================================================

// scanPath indexes executables on $PATH by basename.
func scanPath() map[string]App {
	apps := make(map[string]App)

	for _, dir := range filepath.SplitList(os.Getenv("PATH")) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			info, err := entry.Info()
			if err != nil || info.Mode()&0111 == 0 {
				continue
			}
			name := normalizeName(entry.Name())
			if _, exists := apps[name]; !exists {
				apps[name] = App{Name: name, Path: filepath.Join(dir, entry.Name())}
			}
		}
	}
	return apps
}

// scanDesktopEntries indexes XDG .desktop files by their Name= field.
func scanDesktopEntries() map[string]App {
	apps := make(map[string]App)
	if runtime.GOOS != "linux" {
		return apps
	}

	dirs := []string{"/usr/share/applications", "/usr/local/share/applications"}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".local", "share", "applications"))
	}

	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".desktop") {
				continue
			}
			name, exec := parseDesktopEntry(filepath.Join(dir, entry.Name()))
			if name == "" || exec == "" {
				continue
			}
			apps[normalizeName(name)] = App{Name: normalizeName(name), Path: exec}
		}
	}
	return apps
}

// parseDesktopEntry extracts Name= and Exec= from the [Desktop Entry]
// section, stripping %-style field codes from Exec.
func parseDesktopEntry(path string) (name, exec string) {
	f, err := os.Open(path)
	if err != nil {
		return "", ""
	}
	defer f.Close()

	inSection := false
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "[") {
			inSection = line == "[Desktop Entry]"
			continue
		}
		if !inSection {
			continue
		}
		if v, ok := strings.CutPrefix(line, "Name="); ok && name == "" {
			name = v
		}
		if v, ok := strings.CutPrefix(line, "Exec="); ok && exec == "" {
			exec = stripFieldCodes(v)
		}
		if name != "" && exec != "" {
			break
		}
	}
	return name, exec
}

func stripFieldCodes(exec string) string {
	fields := strings.Fields(exec)
	var kept []string
	for _, f := range fields {
		if strings.HasPrefix(f, "%") {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
