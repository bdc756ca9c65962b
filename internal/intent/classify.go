// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package intent classifies raw user utterances before parsing.
package intent

import (
	"regexp"
	"strings"
)

// =============================================================================
// INTENT TYPE
// =============================================================================

// Intent is the coarse category assigned to an utterance before any
// detailed command parsing happens.
type Intent int

const (
	// IntentChat means the input is ordinary conversation for the model.
	IntentChat Intent = iota

	// IntentCommand means the input asks aura to do something (open an
	// app, take a screenshot, change a setting).
	IntentCommand

	// IntentSearch means the input asks to find or watch something.
	IntentSearch
)

// String returns the human-readable name of the intent.
func (i Intent) String() string {
	switch i {
	case IntentCommand:
		return "command"
	case IntentSearch:
		return "search"
	case IntentChat:
		return "chat"
	default:
		return "unknown"
	}
}

// =============================================================================
// KEYWORD TABLES
// =============================================================================

// commandStarters are leading verbs that mark an utterance as a command.
// Checked before searchStarters: "close the search app" is a command.
var commandStarters = map[string]bool{
	"open":       true,
	"launch":     true,
	"start":      true,
	"run":        true,
	"close":      true,
	"stop":       true,
	"quit":       true,
	"kill":       true,
	"set":        true,
	"enable":     true,
	"disable":    true,
	"toggle":     true,
	"check":      true,
	"manage":     true,
	"take":       true,
	"capture":    true,
	"screenshot": true,
	"create":     true,
	"delete":     true,
	"remember":   true,
	"connect":    true,
	"disconnect": true,
	"try":        true,
	"retry":      true,
	"visit":      true,
}

// searchStarters are leading verbs that mark an utterance as a search.
var searchStarters = map[string]bool{
	"find":   true,
	"search": true,
	"show":   true,
	"watch":  true,
	"play":   true,
	"lookup": true,
	"google": true,
}

// chatPatterns match utterances that are conversational even when they
// begin with a starter verb ("show me how you feel" is chat, not search).
var chatPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(hi|hey|hello|good (morning|afternoon|evening)|howdy)\b`),
	regexp.MustCompile(`^(how are you|how do you feel|what do you think|who are you)\b`),
	regexp.MustCompile(`\b(tell me about yourself|your (name|opinion|favorite))\b`),
	regexp.MustCompile(`^(thanks|thank you|ok|okay|yes|no|sure)\b`),
}

// =============================================================================
// CLASSIFICATION
// =============================================================================

// Classify decides whether text should be treated as a command, a search
// request, or ordinary chat. It is a pure function of the input: nothing
// is executed, no state is kept between calls, and unmatched input is
// chat by construction, never an error.
//
// Tie-break policy: chat-indicative patterns win first (greetings and
// personal questions are never dispatched), then command starters, then
// search starters.
func Classify(text string) Intent {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return IntentChat
	}

	for _, p := range chatPatterns {
		if p.MatchString(t) {
			return IntentChat
		}
	}

	fields := strings.Fields(t)
	first := fields[0]

	// Bare URLs are open-this commands.
	if strings.HasPrefix(first, "http://") || strings.HasPrefix(first, "https://") {
		return IntentCommand
	}

	if commandStarters[first] {
		return IntentCommand
	}
	if searchStarters[first] {
		return IntentSearch
	}

	// Two-word starters ("pull up", "look up", "look for").
	if len(fields) > 1 {
		two := first + " " + fields[1]
		switch two {
		case "pull up", "bring up", "go to", "do that", "do it":
			return IntentCommand
		case "look up", "look for":
			return IntentSearch
		}
	}

	// Mid-sentence search markers ("can you find me ...").
	if strings.Contains(t, "search for ") || strings.Contains(t, "find me ") {
		return IntentSearch
	}

	return IntentChat
}
