// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package notes

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// =============================================================================
// NOTE TYPES
// =============================================================================

// Type categorizes a note by how it was produced.
type Type string

const (
	// TypeGeneral is a note the user asked for directly.
	TypeGeneral Type = "general"

	// TypeAutonomous is a note the companion wrote on its own schedule.
	TypeAutonomous Type = "autonomous"

	// TypeTranscript is a saved conversation excerpt.
	TypeTranscript Type = "transcript"
)

// Note is a single stored note.
type Note struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrNoteNotFound is returned when a note ID does not exist.
// Use errors.Is(err, ErrNoteNotFound) to check for this error.
var ErrNoteNotFound = errors.New("note not found")

// =============================================================================
// NOTE STORE
// =============================================================================

const schema = `
CREATE TABLE IF NOT EXISTS notes (
	id         TEXT PRIMARY KEY,
	type       TEXT NOT NULL,
	title      TEXT NOT NULL,
	content    TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_notes_created ON notes(created_at);
`

// Store persists notes in a local SQLite database.
type Store struct {
	db *sql.DB
}

// Open creates a store backed by the database at path, creating the
// schema if needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create notes dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open notes db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init notes schema: %w", err)
	}

	return &Store{db: db}, nil
}

// OpenDefault opens the store at ~/.aura/notes.db.
func OpenDefault() (*Store, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return Open(filepath.Join(homeDir, ".aura", "notes.db"))
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// =============================================================================
// CRUD OPERATIONS
// =============================================================================

// Create stores a new note and returns its ID.
func (s *Store) Create(noteType Type, content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", errors.New("note content is empty")
	}

	note := Note{
		ID:        uuid.NewString(),
		Type:      noteType,
		Title:     titleFrom(content),
		Content:   content,
		CreatedAt: time.Now(),
	}

	_, err := s.db.Exec(
		`INSERT INTO notes (id, type, title, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		note.ID, string(note.Type), note.Title, note.Content, note.CreatedAt.Unix(),
	)
	if err != nil {
		return "", fmt.Errorf("insert note: %w", err)
	}

	return note.ID, nil
}

// Get retrieves a note by ID.
func (s *Store) Get(id string) (*Note, error) {
	row := s.db.QueryRow(
		`SELECT id, type, title, content, created_at FROM notes WHERE id = ?`, id)

	note, err := scanNote(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoteNotFound
		}
		return nil, fmt.Errorf("load note: %w", err)
	}
	return note, nil
}

// List returns all notes, most recent first.
func (s *Store) List() ([]Note, error) {
	rows, err := s.db.Query(
		`SELECT id, type, title, content, created_at FROM notes ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var notes []Note
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, *note)
	}
	return notes, rows.Err()
}

// Search returns notes whose title or content contains the query
// (case-insensitive), most recent first.
func (s *Store) Search(query string) ([]Note, error) {
	all, err := s.List()
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(query)
	var results []Note
	for _, n := range all {
		if strings.Contains(strings.ToLower(n.Title), query) ||
			strings.Contains(strings.ToLower(n.Content), query) {
			results = append(results, n)
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})
	return results, nil
}

// Delete removes a note by ID. Deleting a note that does not exist
// is an error.
func (s *Store) Delete(id string) error {
	res, err := s.db.Exec(`DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNoteNotFound
	}
	return nil
}

// Count returns the number of stored notes.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM notes`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// =============================================================================
// HELPERS
// =============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner) (*Note, error) {
	var note Note
	var noteType string
	var created int64
	if err := row.Scan(&note.ID, &noteType, &note.Title, &note.Content, &created); err != nil {
		return nil, err
	}
	note.Type = Type(noteType)
	note.CreatedAt = time.Unix(created, 0)
	return &note, nil
}

// titleFrom derives a short title from the first line of the content.
func titleFrom(content string) string {
	line := content
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}
	line = strings.TrimSpace(line)
	runes := []rune(line)
	if len(runes) > 60 {
		line = string(runes[:57]) + "..."
	}
	if line == "" {
		line = "Untitled note"
	}
	return line
}
