// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/aura/internal/command"
	"github.com/jeranaias/aura/internal/ollama"
)

// =============================================================================
// SESSION
// =============================================================================

// Session holds one conversation's state: message history, the active
// system prompt, and the last executed command for retry.
type Session struct {
	mu sync.Mutex

	systemPrompt string
	messages     []ollama.Message
	timestamps   []time.Time

	lastCommand    command.Descriptor
	hasLastCommand bool

	lastChat    string
	hasLastChat bool

	// lastWasChat marks whether the most recent turn was chat rather
	// than a command, so retry replays the right one.
	lastWasChat bool
}

// NewSession creates an empty session with the given system prompt.
func NewSession(systemPrompt string) *Session {
	return &Session{systemPrompt: systemPrompt}
}

// SetSystemPrompt replaces the system prompt, e.g. on profile switch.
func (s *Session) SetSystemPrompt(prompt string) {
	s.mu.Lock()
	s.systemPrompt = prompt
	s.mu.Unlock()
}

// Append records one turn.
func (s *Session) Append(role, content string) {
	s.mu.Lock()
	s.messages = append(s.messages, ollama.Message{Role: role, Content: content})
	s.timestamps = append(s.timestamps, time.Now())
	s.mu.Unlock()
}

// History returns the conversation as model messages, system prompt
// first.
func (s *Session) History() []ollama.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]ollama.Message, 0, len(s.messages)+1)
	if s.systemPrompt != "" {
		out = append(out, ollama.Message{Role: "system", Content: s.systemPrompt})
	}
	return append(out, s.messages...)
}

// Len returns the number of recorded turns, excluding the system
// prompt.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// Clear wipes the history but keeps the system prompt and the last
// command.
func (s *Session) Clear() {
	s.mu.Lock()
	s.messages = nil
	s.timestamps = nil
	s.mu.Unlock()
}

// RecordCommand stores a descriptor for retry. Retry descriptors are
// not recorded, so retrying twice repeats the original command.
func (s *Session) RecordCommand(d command.Descriptor) {
	if d.Kind == command.KindRetry {
		return
	}
	s.mu.Lock()
	s.lastCommand = d
	s.hasLastCommand = true
	s.lastWasChat = false
	s.mu.Unlock()
}

// RecordChat stores a chat input for retry.
func (s *Session) RecordChat(input string) {
	s.mu.Lock()
	s.lastChat = input
	s.hasLastChat = true
	s.lastWasChat = true
	s.mu.Unlock()
}

// LastCommand returns the most recent non-retry descriptor.
func (s *Session) LastCommand() (command.Descriptor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastCommand, s.hasLastCommand
}

// LastChat returns the previous chat input, but only when chat was the
// most recent turn; a command turn in between takes retry for itself.
func (s *Session) LastChat() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastChat, s.hasLastChat && s.lastWasChat
}

// PlainText renders the conversation as "role: content" lines, one per
// turn, for prompts that need the raw exchange.
func (s *Session) PlainText() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sb strings.Builder
	for _, msg := range s.messages {
		sb.WriteString(msg.Role)
		sb.WriteString(": ")
		sb.WriteString(msg.Content)
		sb.WriteString("\n")
	}
	return sb.String()
}

// Transcript snapshots the session for persistence.
func (s *Session) Transcript(model, profileName string) *Transcript {
	s.mu.Lock()
	defer s.mu.Unlock()

	tr := &Transcript{Model: model, Profile: profileName}
	for i, msg := range s.messages {
		tr.Messages = append(tr.Messages, TranscriptMessage{
			Role:      msg.Role,
			Content:   msg.Content,
			Timestamp: s.timestamps[i],
		})
	}
	return tr
}
