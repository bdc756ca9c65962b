// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package memory

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// =============================================================================
// TYPES
// =============================================================================

// Embedder produces an embedding vector for a piece of text.
// *ollama.Client satisfies this.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float64, error)
}

// Exchange is one remembered turn of conversation.
type Exchange struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"` // "user" or "assistant"
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Recalled pairs an exchange with its similarity to a query.
type Recalled struct {
	Exchange
	Score float64 `json:"score"`
}

// =============================================================================
// MEMORY STORE
// =============================================================================

const schema = `
CREATE TABLE IF NOT EXISTS exchanges (
	id         TEXT PRIMARY KEY,
	role       TEXT NOT NULL,
	text       TEXT NOT NULL,
	embedding  BLOB NOT NULL,
	created_at INTEGER NOT NULL
);
`

// Store keeps embedded conversation exchanges in SQLite and recalls
// the closest ones by cosine similarity. The scan is brute force; the
// corpus for a single user stays small.
type Store struct {
	db       *sql.DB
	embedder Embedder
}

// Open creates a store backed by the database at path.
func Open(path string, embedder Embedder) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create memory dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open memory db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init memory schema: %w", err)
	}

	return &Store{db: db, embedder: embedder}, nil
}

// OpenDefault opens the store at ~/.aura/memory.db.
func OpenDefault(embedder Embedder) (*Store, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return Open(filepath.Join(homeDir, ".aura", "memory.db"), embedder)
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// =============================================================================
// REMEMBER / RECALL
// =============================================================================

// Remember embeds the text and persists it as an exchange.
func (s *Store) Remember(ctx context.Context, role, text string) error {
	if text == "" {
		return errors.New("nothing to remember")
	}

	vec, err := s.embedder.GenerateEmbedding(ctx, text)
	if err != nil {
		return fmt.Errorf("embed exchange: %w", err)
	}

	blob, err := json.Marshal(vec)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO exchanges (id, role, text, embedding, created_at) VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), role, text, blob, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert exchange: %w", err)
	}
	return nil
}

// Recall returns the k stored exchanges nearest to the query by cosine
// similarity, best first. Returns an empty slice when nothing is stored.
func (s *Store) Recall(ctx context.Context, query string, k int) ([]Recalled, error) {
	if k <= 0 {
		return nil, nil
	}

	queryVec, err := s.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, role, text, embedding, created_at FROM exchanges`)
	if err != nil {
		return nil, fmt.Errorf("scan memory: %w", err)
	}
	defer rows.Close()

	var scored []Recalled
	for rows.Next() {
		var ex Exchange
		var blob []byte
		var created int64
		if err := rows.Scan(&ex.ID, &ex.Role, &ex.Text, &blob, &created); err != nil {
			return nil, err
		}
		ex.CreatedAt = time.Unix(created, 0)

		var vec []float64
		if err := json.Unmarshal(blob, &vec); err != nil {
			continue // skip corrupted rows
		}

		scored = append(scored, Recalled{
			Exchange: ex,
			Score:    CosineSimilarity(queryVec, vec),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

// Count returns the number of stored exchanges.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM exchanges`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Clear removes all stored exchanges.
func (s *Store) Clear() error {
	_, err := s.db.Exec(`DELETE FROM exchanges`)
	return err
}

// =============================================================================
// SIMILARITY
// =============================================================================

// CosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched lengths or zero vectors score 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
