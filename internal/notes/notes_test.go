// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package notes

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "notes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestCreateAndGet(t *testing.T) {
	store := newTestStore(t)

	id, err := store.Create(TypeGeneral, "Buy more coffee\nAlso filters.")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	note, err := store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, TypeGeneral, note.Type)
	assert.Equal(t, "Buy more coffee", note.Title)
	assert.Equal(t, "Buy more coffee\nAlso filters.", note.Content)
	assert.False(t, note.CreatedAt.IsZero())
}

func TestCreateEmptyContent(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Create(TypeGeneral, "   ")
	assert.Error(t, err)
}

func TestListOrder(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Create(TypeGeneral, "first")
	require.NoError(t, err)
	_, err = store.Create(TypeAutonomous, "second")
	require.NoError(t, err)

	all, err := store.List()
	require.NoError(t, err)
	require.Len(t, all, 2)
	// Same-second inserts have equal timestamps, so only check presence.
	titles := []string{all[0].Title, all[1].Title}
	assert.Contains(t, titles, "first")
	assert.Contains(t, titles, "second")
}

func TestSearch(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Create(TypeGeneral, "Groceries: milk, eggs")
	require.NoError(t, err)
	_, err = store.Create(TypeGeneral, "Project kickoff agenda")
	require.NoError(t, err)

	results, err := store.Search("grocer")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Contains(t, results[0].Content, "milk")
}

func TestDeleteMissing(t *testing.T) {
	store := newTestStore(t)

	err := store.Delete("no-such-id")
	assert.True(t, errors.Is(err, ErrNoteNotFound))
}

func TestDelete(t *testing.T) {
	store := newTestStore(t)

	id, err := store.Create(TypeGeneral, "throwaway")
	require.NoError(t, err)

	require.NoError(t, store.Delete(id))

	_, err = store.Get(id)
	assert.True(t, errors.Is(err, ErrNoteNotFound))

	n, err := store.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestPromptFor(t *testing.T) {
	assert.Equal(t, GeneralPrompt, PromptFor(TypeGeneral))
	assert.Equal(t, AutonomousPrompt, PromptFor(TypeAutonomous))
	assert.Equal(t, TranscriptPrompt, PromptFor(TypeTranscript))
	assert.Equal(t, GeneralPrompt, PromptFor(Type("bogus")))
}
