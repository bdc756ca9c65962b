// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/aura/internal/util"
)

// =============================================================================
// TRANSCRIPT TYPES
// =============================================================================

// Transcript is a persisted conversation.
type Transcript struct {
	ID        string    `json:"id"`
	Summary   string    `json:"summary"`
	Model     string    `json:"model"`
	Profile   string    `json:"profile,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Messages []TranscriptMessage `json:"messages"`
}

// TranscriptMessage is one persisted turn.
type TranscriptMessage struct {
	Role      string    `json:"role"` // "user", "assistant", "system"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// TranscriptMeta is the listing view of a transcript.
type TranscriptMeta struct {
	ID           string    `json:"id"`
	Summary      string    `json:"summary"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
}

// ErrTranscriptNotFound is returned when a transcript ID does not
// exist.
var ErrTranscriptNotFound = errors.New("transcript not found")

// =============================================================================
// TRANSCRIPT STORE
// =============================================================================

// TranscriptStore persists transcripts as JSON files, one per
// conversation, under ~/.aura/transcripts.
type TranscriptStore struct {
	baseDir string

	// MaxTranscripts limits stored transcripts (0 = unlimited).
	MaxTranscripts int
}

// NewTranscriptStore creates the store under the user's home.
func NewTranscriptStore() (*TranscriptStore, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return NewTranscriptStoreAt(filepath.Join(homeDir, ".aura", "transcripts"))
}

// NewTranscriptStoreAt creates a store at a custom directory.
func NewTranscriptStoreAt(baseDir string) (*TranscriptStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}
	return &TranscriptStore{baseDir: baseDir, MaxTranscripts: 100}, nil
}

// Save persists a transcript and returns its ID.
func (s *TranscriptStore) Save(tr *Transcript) (string, error) {
	if tr.ID == "" {
		tr.ID = uuid.NewString()
	}
	if tr.Summary == "" {
		tr.Summary = summaryFrom(tr)
	}
	tr.UpdatedAt = time.Now()
	if tr.CreatedAt.IsZero() {
		tr.CreatedAt = tr.UpdatedAt
	}

	data, err := json.MarshalIndent(tr, "", "  ")
	if err != nil {
		return "", err
	}

	if err := util.AtomicWriteFile(s.path(tr.ID), data, 0644); err != nil {
		return "", err
	}

	if s.MaxTranscripts > 0 {
		s.enforceLimit()
	}
	return tr.ID, nil
}

// Load retrieves a transcript by ID.
func (s *TranscriptStore) Load(id string) (*Transcript, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrTranscriptNotFound
		}
		return nil, err
	}

	var tr Transcript
	if err := json.Unmarshal(data, &tr); err != nil {
		return nil, err
	}
	return &tr, nil
}

// List returns transcript metadata, most recent first.
func (s *TranscriptStore) List() ([]TranscriptMeta, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var metas []TranscriptMeta
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		tr, err := s.Load(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue // skip corrupted files
		}
		metas = append(metas, TranscriptMeta{
			ID:           tr.ID,
			Summary:      tr.Summary,
			UpdatedAt:    tr.UpdatedAt,
			MessageCount: len(tr.Messages),
		})
	}

	sort.Slice(metas, func(i, j int) bool {
		return metas[i].UpdatedAt.After(metas[j].UpdatedAt)
	})
	return metas, nil
}

// Delete removes a transcript by ID.
func (s *TranscriptStore) Delete(id string) error {
	if err := os.Remove(s.path(id)); err != nil {
		if os.IsNotExist(err) {
			return ErrTranscriptNotFound
		}
		return err
	}
	return nil
}

// ExportMarkdown renders the transcript for sharing.
func (tr *Transcript) ExportMarkdown() string {
	var sb strings.Builder
	sb.WriteString("# Conversation " + tr.ID + "\n\n")
	sb.WriteString("Started: " + tr.CreatedAt.Format(time.RFC3339) + "\n\n---\n\n")

	for _, msg := range tr.Messages {
		role := "**User**"
		if msg.Role == "assistant" {
			role = "**Aura**"
		} else if msg.Role == "system" {
			role = "**System**"
		}
		sb.WriteString(role + " (" + msg.Timestamp.Format("15:04") + "):\n\n")
		sb.WriteString(msg.Content)
		sb.WriteString("\n\n---\n\n")
	}
	return sb.String()
}

// =============================================================================
// HELPERS
// =============================================================================

func (s *TranscriptStore) path(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

// enforceLimit removes the oldest transcripts when over the limit.
func (s *TranscriptStore) enforceLimit() {
	metas, err := s.List()
	if err != nil || len(metas) <= s.MaxTranscripts {
		return
	}
	for _, meta := range metas[s.MaxTranscripts:] {
		s.Delete(meta.ID)
	}
}

// summaryFrom builds a one-line summary from the first user message.
func summaryFrom(tr *Transcript) string {
	for _, msg := range tr.Messages {
		if msg.Role == "user" && msg.Content != "" {
			return util.TruncateRunes(util.FirstLine(msg.Content), 50)
		}
	}
	return "New conversation"
}
