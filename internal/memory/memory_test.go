// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package memory

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubEmbedder maps known strings to fixed vectors so recall ordering
// is deterministic.
type stubEmbedder struct {
	vectors map[string][]float64
}

func (e *stubEmbedder) GenerateEmbedding(_ context.Context, text string) ([]float64, error) {
	if v, ok := e.vectors[text]; ok {
		return v, nil
	}
	return []float64{0, 0, 1}, nil
}

func newTestStore(t *testing.T, embedder Embedder) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "memory.db"), embedder)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRememberAndRecall(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float64{
		"I love hiking in the mountains": {1, 0, 0},
		"My favorite food is ramen":      {0, 1, 0},
		"any outdoor plans?":             {0.9, 0.1, 0},
	}}
	store := newTestStore(t, embedder)

	ctx := context.Background()
	require.NoError(t, store.Remember(ctx, "user", "I love hiking in the mountains"))
	require.NoError(t, store.Remember(ctx, "user", "My favorite food is ramen"))

	recalled, err := store.Recall(ctx, "any outdoor plans?", 1)
	require.NoError(t, err)
	require.Len(t, recalled, 1)
	assert.Equal(t, "I love hiking in the mountains", recalled[0].Text)
	assert.Greater(t, recalled[0].Score, 0.5)
}

func TestRecallEmpty(t *testing.T) {
	store := newTestStore(t, &stubEmbedder{})

	recalled, err := store.Recall(context.Background(), "anything", 3)
	require.NoError(t, err)
	assert.Empty(t, recalled)
}

func TestRecallZeroK(t *testing.T) {
	store := newTestStore(t, &stubEmbedder{})

	recalled, err := store.Recall(context.Background(), "anything", 0)
	require.NoError(t, err)
	assert.Nil(t, recalled)
}

func TestRememberEmptyText(t *testing.T) {
	store := newTestStore(t, &stubEmbedder{})
	assert.Error(t, store.Remember(context.Background(), "user", ""))
}

func TestClear(t *testing.T) {
	store := newTestStore(t, &stubEmbedder{})
	ctx := context.Background()

	require.NoError(t, store.Remember(ctx, "user", "something"))
	n, err := store.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, store.Clear())
	n, err = store.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1.0},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0.0},
		{"opposite", []float64{1, 0}, []float64{-1, 0}, -1.0},
		{"mismatched length", []float64{1, 0}, []float64{1, 0, 0}, 0.0},
		{"zero vector", []float64{0, 0}, []float64{1, 1}, 0.0},
		{"empty", nil, nil, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}
