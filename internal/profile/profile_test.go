// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package profile

import (
	"errors"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStoreAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func TestCreateAndGet(t *testing.T) {
	store := newTestStore(t)

	p, err := store.Create("work", "Work Mode", "You are focused and brief.")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if p.VoiceRate != 1.0 {
		t.Errorf("default voice rate = %v", p.VoiceRate)
	}

	loaded, err := store.Get("work")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if loaded.DisplayName != "Work Mode" || loaded.Persona != "You are focused and brief." {
		t.Errorf("loaded = %+v", loaded)
	}
}

func TestCreateDuplicate(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Create("home", "", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Create("home", "", ""); !errors.Is(err, ErrProfileExists) {
		t.Errorf("expected ErrProfileExists, got %v", err)
	}
}

func TestCreateInvalidName(t *testing.T) {
	store := newTestStore(t)

	for _, name := range []string{"", "Has Spaces", "UPPER", "../escape", "-leading"} {
		if _, err := store.Create(name, "", ""); err == nil {
			t.Errorf("invalid name %q accepted", name)
		}
	}
}

func TestSwitchAndActive(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Create("work", "", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Create("home", "", ""); err != nil {
		t.Fatal(err)
	}

	active, err := store.Active()
	if err != nil {
		t.Fatal(err)
	}
	if active != nil {
		t.Errorf("expected no active profile, got %s", active.Name)
	}

	if _, err := store.Switch("home"); err != nil {
		t.Fatal(err)
	}

	active, err = store.Active()
	if err != nil {
		t.Fatal(err)
	}
	if active == nil || active.Name != "home" {
		t.Errorf("active = %+v", active)
	}
}

func TestSwitchMissing(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Switch("ghost"); !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestDeleteClearsActive(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Create("temp", "", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Switch("temp"); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete("temp"); err != nil {
		t.Fatal(err)
	}

	active, err := store.Active()
	if err != nil {
		t.Fatal(err)
	}
	if active != nil {
		t.Errorf("active not cleared after delete: %+v", active)
	}
}

func TestDeleteMissing(t *testing.T) {
	store := newTestStore(t)
	if err := store.Delete("ghost"); !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestListSorted(t *testing.T) {
	store := newTestStore(t)

	for _, name := range []string{"zeta", "alpha", "mike"} {
		if _, err := store.Create(name, "", ""); err != nil {
			t.Fatal(err)
		}
	}

	profiles, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(profiles) != 3 {
		t.Fatalf("len = %d", len(profiles))
	}
	if profiles[0].Name != "alpha" || profiles[2].Name != "zeta" {
		t.Errorf("not sorted: %v", []string{profiles[0].Name, profiles[1].Name, profiles[2].Name})
	}
}

func TestUpdate(t *testing.T) {
	store := newTestStore(t)

	p, err := store.Create("work", "", "")
	if err != nil {
		t.Fatal(err)
	}

	p.Persona = "updated persona"
	if err := store.Update(p); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.Get("work")
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Persona != "updated persona" {
		t.Errorf("persona = %q", loaded.Persona)
	}
}
