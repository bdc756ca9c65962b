// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package notes

// Prompt templates used when note content is delegated to the model.
// The executor fills the %s slot with the user's topic or the recent
// conversation window.

const (
	// GeneralPrompt asks the model to write a note on a topic the user named.
	GeneralPrompt = "Write a short, well-organized note about the following topic. " +
		"Use plain prose, no headers. Topic: %s"

	// AutonomousPrompt asks the model to summarize what it observed since
	// the last autonomous note.
	AutonomousPrompt = "You are keeping a running journal for your user. " +
		"Summarize the following recent activity in two or three sentences, " +
		"noting anything worth following up on: %s"

	// TranscriptPrompt asks the model to condense a conversation excerpt
	// into a note.
	TranscriptPrompt = "Condense this conversation excerpt into a note capturing " +
		"the decisions made and any open items: %s"
)

// PromptFor returns the template for a note type. Unknown types fall
// back to the general template.
func PromptFor(t Type) string {
	switch t {
	case TypeAutonomous:
		return AutonomousPrompt
	case TypeTranscript:
		return TranscriptPrompt
	default:
		return GeneralPrompt
	}
}
