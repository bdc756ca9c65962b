// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package command

import (
	"fmt"

	"github.com/jeranaias/aura/internal/notes"
	"github.com/jeranaias/aura/internal/search"
)

// =============================================================================
// DESCRIPTOR KIND
// =============================================================================

// Kind identifies what a parsed command asks for. Every descriptor has
// exactly one kind.
type Kind int

const (
	// KindUnknown is an unrecognized slash command; the raw text is
	// echoed back.
	KindUnknown Kind = iota

	// KindConfig shows or edits configuration.
	KindConfig

	// KindScreenshot captures the screen.
	KindScreenshot

	// KindSearch dispatches a query to a search destination.
	KindSearch

	// KindNote creates, lists, views, or deletes notes.
	KindNote

	// KindProfile manages user profiles.
	KindProfile

	// KindVoice toggles speech or sets the speaking rate.
	KindVoice

	// KindHelp lists available commands.
	KindHelp

	// KindQuit exits the application.
	KindQuit

	// KindClear clears the conversation history.
	KindClear

	// KindAutonomous controls the background trigger scheduler.
	KindAutonomous

	// KindWeb opens a URL directly.
	KindWeb

	// KindRetry replays the previous turn, optionally with extra
	// context in Query.
	KindRetry

	// KindSystem opens or closes an application.
	KindSystem

	// KindXGO controls the device bridge.
	KindXGO
)

// String returns the kind name for logs and tests.
func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindScreenshot:
		return "screenshot"
	case KindSearch:
		return "search"
	case KindNote:
		return "note"
	case KindProfile:
		return "profile"
	case KindVoice:
		return "voice"
	case KindHelp:
		return "help"
	case KindQuit:
		return "quit"
	case KindClear:
		return "clear"
	case KindAutonomous:
		return "autonomous"
	case KindWeb:
		return "web"
	case KindRetry:
		return "retry"
	case KindSystem:
		return "system"
	case KindXGO:
		return "xgo"
	default:
		return "unknown"
	}
}

// =============================================================================
// DESCRIPTOR
// =============================================================================

// Descriptor is the structured form of one parsed command. The
// executor switches on Kind; the remaining fields carry parameters.
type Descriptor struct {
	// Kind selects the operation.
	Kind Kind

	// Action is the sub-operation within a kind, e.g. "open"/"close"
	// for system, "create"/"list"/"view"/"delete" for note.
	Action string

	// Query carries the free-text parameter: search query, note
	// topic, app name, URL, or config key.
	Query string

	// Source narrows a search to a destination site.
	Source search.Source

	// NoteType selects the prompt template for note creation; empty
	// means a general user-requested note.
	NoteType notes.Type

	// Args are remaining positional arguments from slash mode.
	Args []string

	// Raw is the original input text.
	Raw string
}

// =============================================================================
// RESULT
// =============================================================================

// Status is the outcome of executing a descriptor.
type Status string

const (
	// StatusSuccess means the action completed.
	StatusSuccess Status = "success"

	// StatusError means the action failed; Message says why.
	StatusError Status = "error"
)

// Result is what every execution returns. Errors never escape the
// executor as Go errors; they become error Results.
type Result struct {
	// Status is success or error.
	Status Status

	// Message is the human-readable outcome.
	Message string

	// Content carries structured payload when the action produced
	// one (note list, screenshot bytes, status struct).
	Content any
}

// OK reports whether the result is a success.
func (r Result) OK() bool {
	return r.Status == StatusSuccess
}

// Success builds a success result.
func Success(message string) Result {
	return Result{Status: StatusSuccess, Message: message}
}

// Successf builds a formatted success result.
func Successf(format string, args ...any) Result {
	return Result{Status: StatusSuccess, Message: fmt.Sprintf(format, args...)}
}

// SuccessWith builds a success result carrying content.
func SuccessWith(message string, content any) Result {
	return Result{Status: StatusSuccess, Message: message, Content: content}
}

// Errorf builds a formatted error result.
func Errorf(format string, args ...any) Result {
	return Result{Status: StatusError, Message: fmt.Sprintf(format, args...)}
}

// FromError wraps a Go error into an error result.
func FromError(err error) Result {
	return Result{Status: StatusError, Message: err.Error()}
}
