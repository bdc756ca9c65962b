// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package command

import (
	"regexp"
	"strings"

	"github.com/jeranaias/aura/internal/search"
)

// =============================================================================
// NATURAL-LANGUAGE PATTERN TABLE
// =============================================================================

// nlPattern is one entry in the ordered pattern table. The table is
// scanned top to bottom and the first match wins, so specific patterns
// (a YouTube-qualified search) must sit above general ones (a bare
// "search for X").
type nlPattern struct {
	re    *regexp.Regexp
	build func(m []string, raw string) Descriptor
}

var nlPatterns = []nlPattern{
	// --- URL / YouTube detection ------------------------------------
	{
		re: regexp.MustCompile(`(?i)^(?:open |go to |visit |pull up )?(https?://\S+)$`),
		build: func(m []string, raw string) Descriptor {
			return Descriptor{Kind: KindWeb, Query: m[1], Raw: raw}
		},
	},

	// --- Retry phrases ------------------------------------------------
	// Trailing "with ..." / "but ..." text is extra context appended to
	// the replayed turn.
	{
		re: regexp.MustCompile(`(?i)^(?:try (?:that )?again|retry(?: that)?|do (?:that|it) again)(?:,?\s+(?:with|but)\s+(.+?))?[.!]?$`),
		build: func(m []string, raw string) Descriptor {
			return Descriptor{Kind: KindRetry, Query: cleanArg(m[1]), Raw: raw}
		},
	},

	// --- App close ----------------------------------------------------
	{
		re: regexp.MustCompile(`(?i)^(?:close|stop|quit|kill)\s+(?:the\s+)?(.+?)(?:\s+app(?:lication)?)?[.!]?$`),
		build: func(m []string, raw string) Descriptor {
			return Descriptor{Kind: KindSystem, Action: "close", Query: cleanArg(m[1]), Raw: raw}
		},
	},

	// --- App open -------------------------------------------------------
	{
		re: regexp.MustCompile(`(?i)^(?:open|launch|start|run|pull up)\s+(?:the\s+)?(.+?)(?:\s+app(?:lication)?)?[.!]?$`),
		build: func(m []string, raw string) Descriptor {
			return Descriptor{Kind: KindSystem, Action: "open", Query: cleanArg(m[1]), Raw: raw}
		},
	},

	// --- Note creation --------------------------------------------------
	{
		re: regexp.MustCompile(`(?i)^(?:take|create|make|write)(?:\s+me)?\s+a\s+note(?:\s+(?:about|on|that|saying)\s+(.+?))?[.!]?$`),
		build: func(m []string, raw string) Descriptor {
			return Descriptor{Kind: KindNote, Action: "create", Query: cleanArg(m[1]), Raw: raw}
		},
	},
	{
		re: regexp.MustCompile(`(?i)^(?:remember|note)\s+that\s+(.+?)[.!]?$`),
		build: func(m []string, raw string) Descriptor {
			return Descriptor{Kind: KindNote, Action: "create", Query: cleanArg(m[1]), Raw: raw}
		},
	},

	// --- Site-qualified searches -----------------------------------------
	// These must precede the generic search patterns: "find cats on
	// youtube" belongs to YouTube, never to the web engine.
	{
		re: regexp.MustCompile(`(?i)^(?:search(?: for)?|find(?: me)?|look up|show me|play|watch)\s+(.+?)\s+on\s+youtube[.!]?$`),
		build: func(m []string, raw string) Descriptor {
			return Descriptor{Kind: KindSearch, Query: cleanArg(m[1]), Source: search.SourceYouTube, Raw: raw}
		},
	},
	{
		re: regexp.MustCompile(`(?i)^(?:search(?: for)?|find(?: me)?|look up)\s+(.+?)\s+on\s+(?:the\s+)?(?:game\s+)?archive[.!]?$`),
		build: func(m []string, raw string) Descriptor {
			return Descriptor{Kind: KindSearch, Query: cleanArg(m[1]), Source: search.SourceGame, Raw: raw}
		},
	},
	{
		re: regexp.MustCompile(`(?i)^(?:search(?: for)?|find(?: me)?|download|get)\s+(?:the\s+)?(.+?)\s+apk[.!]?$`),
		build: func(m []string, raw string) Descriptor {
			return Descriptor{Kind: KindSearch, Query: cleanArg(m[1]), Source: search.SourceAPK, Raw: raw}
		},
	},
	// Aurora is narrowed to a single destination: "aurora" plus one of
	// forecast/show/check opens the fixed NOAA page, query ignored.
	{
		re: regexp.MustCompile(`(?i)\baurora\b.*\b(?:forecast|show|check)\b|\b(?:forecast|show|check)\b.*\baurora\b`),
		build: func(m []string, raw string) Descriptor {
			return Descriptor{Kind: KindSearch, Source: search.SourceAurora, Raw: raw}
		},
	},

	// --- Generic search ---------------------------------------------------
	{
		re: regexp.MustCompile(`(?i)^(?:search|google|look up|lookup|look for)\s+(?:for\s+)?(.+?)[.!?]?$`),
		build: func(m []string, raw string) Descriptor {
			return Descriptor{Kind: KindSearch, Query: cleanArg(m[1]), Source: search.SourceWeb, Raw: raw}
		},
	},
	{
		re: regexp.MustCompile(`(?i)^(?:find|show)\s+(?:me\s+)?(.+?)[.!?]?$`),
		build: func(m []string, raw string) Descriptor {
			return Descriptor{Kind: KindSearch, Query: cleanArg(m[1]), Source: search.SourceWeb, Raw: raw}
		},
	},

	// --- Intent keyword families --------------------------------------------
	{
		re: regexp.MustCompile(`(?i)\b(?:take|capture|grab)\b.*\bscreen(?:shot)?\b|\bscreenshot\b`),
		build: func(m []string, raw string) Descriptor {
			mode := "full"
			lower := strings.ToLower(raw)
			switch {
			case strings.Contains(lower, "region") || strings.Contains(lower, "area") || strings.Contains(lower, "selection"):
				mode = "region"
			case strings.Contains(lower, "window"):
				mode = "window"
			}
			return Descriptor{Kind: KindScreenshot, Action: mode, Raw: raw}
		},
	},
	{
		re: regexp.MustCompile(`(?i)\b(?:settings|configuration|config)\b`),
		build: func(m []string, raw string) Descriptor {
			return Descriptor{Kind: KindConfig, Action: "show", Raw: raw}
		},
	},
	{
		re: regexp.MustCompile(`(?i)\b(?:enable|turn on|disable|turn off|mute|unmute)\b.*\b(?:voice|speech|speaking|tts)\b`),
		build: func(m []string, raw string) Descriptor {
			action := "on"
			lower := strings.ToLower(raw)
			if strings.Contains(lower, "disable") || strings.Contains(lower, "turn off") ||
				(strings.Contains(lower, "mute") && !strings.Contains(lower, "unmute")) {
				action = "off"
			}
			return Descriptor{Kind: KindVoice, Action: action, Raw: raw}
		},
	},
	{
		re: regexp.MustCompile(`(?i)\bxgo\b.*\b(?:status|connected|connection)\b|\b(?:status|check)\b.*\bxgo\b`),
		build: func(m []string, raw string) Descriptor {
			return Descriptor{Kind: KindXGO, Action: "status", Raw: raw}
		},
	},
}

// ParseNatural matches text against the pattern table. Returns false
// when nothing matches, in which case the text belongs to chat.
func ParseNatural(text string) (Descriptor, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Descriptor{}, false
	}

	for _, p := range nlPatterns {
		if m := p.re.FindStringSubmatch(text); m != nil {
			return p.build(m, text), true
		}
	}
	return Descriptor{}, false
}

// cleanArg trims whitespace and surrounding quotes from a captured
// parameter.
func cleanArg(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)
	return strings.TrimSpace(s)
}
