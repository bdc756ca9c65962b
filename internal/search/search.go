// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package search

import (
	"fmt"
	"net/url"
	"strings"
)

// =============================================================================
// DESTINATIONS
// =============================================================================

// Source selects where a search is dispatched.
type Source string

const (
	// SourceWeb is the general web engine from config.
	SourceWeb Source = "web"

	// SourceYouTube searches YouTube.
	SourceYouTube Source = "youtube"

	// SourceGame searches the game archive.
	SourceGame Source = "game"

	// SourceAPK searches the APK mirror.
	SourceAPK Source = "apk"

	// SourceAurora opens the aurora forecast. The query is ignored;
	// there is exactly one page worth opening.
	SourceAurora Source = "aurora"
)

// AuroraURL is the NOAA space-weather aurora forecast page. Every
// aurora request opens this URL regardless of query text.
const AuroraURL = "https://www.swpc.noaa.gov/products/aurora-30-minute-forecast"

// Web engine base URLs, keyed by the config search.engine value.
var webEngines = map[string]string{
	"duckduckgo": "https://duckduckgo.com/?q=",
	"google":     "https://www.google.com/search?q=",
	"bing":       "https://www.bing.com/search?q=",
}

// =============================================================================
// DISPATCHER
// =============================================================================

// Opener opens a URL in the user's browser. The platform opener
// satisfies this; tests substitute a recorder.
type Opener func(url string) error

// Dispatcher builds destination URLs and opens them.
type Dispatcher struct {
	// Engine is the web engine key ("duckduckgo", "google", "bing").
	Engine string

	// Open opens the final URL. Defaults to the platform browser.
	Open Opener
}

// NewDispatcher creates a dispatcher using the platform browser opener.
func NewDispatcher(engine string) *Dispatcher {
	return &Dispatcher{Engine: engine, Open: OpenBrowser}
}

// Dispatch builds the URL for the query and source and opens it.
// Returns the opened URL.
func (d *Dispatcher) Dispatch(query string, source Source) (string, error) {
	target, err := d.URL(query, source)
	if err != nil {
		return "", err
	}

	open := d.Open
	if open == nil {
		open = OpenBrowser
	}
	if err := open(target); err != nil {
		return "", fmt.Errorf("open browser: %w", err)
	}
	return target, nil
}

// URL builds the destination URL without opening it.
func (d *Dispatcher) URL(query string, source Source) (string, error) {
	query = strings.TrimSpace(query)

	switch source {
	case SourceAurora:
		return AuroraURL, nil

	case SourceYouTube:
		if query == "" {
			return "", fmt.Errorf("search query is empty")
		}
		return "https://www.youtube.com/results?search_query=" + url.QueryEscape(query), nil

	case SourceGame:
		if query == "" {
			return "", fmt.Errorf("search query is empty")
		}
		return "https://archive.org/search?query=" + url.QueryEscape(query), nil

	case SourceAPK:
		if query == "" {
			return "", fmt.Errorf("search query is empty")
		}
		return "https://apkpure.com/search?q=" + url.QueryEscape(query), nil

	case SourceWeb, "":
		if query == "" {
			return "", fmt.Errorf("search query is empty")
		}
		base, ok := webEngines[d.Engine]
		if !ok {
			base = webEngines["duckduckgo"]
		}
		return base + url.QueryEscape(query), nil

	default:
		return "", fmt.Errorf("unknown search source %q", source)
	}
}
