// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package intent

import "testing"

func TestClassifyCommands(t *testing.T) {
	tests := []string{
		"open firefox",
		"launch the music player",
		"close notepad",
		"stop the video",
		"set volume to 50",
		"take a screenshot",
		"check my config",
		"disconnect the robot",
		"pull up my notes",
		"try that again",
		"retry",
		"https://example.com/docs",
		"go to wikipedia.org",
		"visit the noaa site",
		"do it again",
	}

	for _, input := range tests {
		if got := Classify(input); got != IntentCommand {
			t.Errorf("Classify(%q) = %v, want command", input, got)
		}
	}
}

func TestClassifySearches(t *testing.T) {
	tests := []string{
		"find cats on youtube",
		"search for python tutorials",
		"watch lofi beats",
		"play some jazz",
		"look up the capital of France",
		"can you find me a pasta recipe",
	}

	for _, input := range tests {
		if got := Classify(input); got != IntentSearch {
			t.Errorf("Classify(%q) = %v, want search", input, got)
		}
	}
}

func TestClassifyChatDefault(t *testing.T) {
	// Anything matching no keyword table is chat by construction.
	tests := []string{
		"hello there",
		"how are you today?",
		"I had a weird dream last night",
		"tell me about yourself",
		"the weather was nice",
		"thanks!",
		"",
		"   ",
	}

	for _, input := range tests {
		if got := Classify(input); got != IntentChat {
			t.Errorf("Classify(%q) = %v, want chat", input, got)
		}
	}
}

func TestCommandBeatsSearch(t *testing.T) {
	// Command starters take priority even when search words appear later.
	if got := Classify("close the search app"); got != IntentCommand {
		t.Errorf("Classify(close the search app) = %v, want command", got)
	}
	if got := Classify("stop playing that video"); got != IntentCommand {
		t.Errorf("Classify(stop playing that video) = %v, want command", got)
	}
}

func TestChatBeatsStarters(t *testing.T) {
	// Greetings and personal questions are never dispatched.
	if got := Classify("how are you"); got != IntentChat {
		t.Errorf("Classify(how are you) = %v, want chat", got)
	}
}

func TestIntentString(t *testing.T) {
	if IntentCommand.String() != "command" || IntentSearch.String() != "search" || IntentChat.String() != "chat" {
		t.Error("Intent.String mismatch")
	}
}
