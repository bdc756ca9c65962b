// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package search

import (
	"strings"
	"testing"
)

func recorder(opened *[]string) Opener {
	return func(url string) error {
		*opened = append(*opened, url)
		return nil
	}
}

func TestDispatchWeb(t *testing.T) {
	var opened []string
	d := &Dispatcher{Engine: "duckduckgo", Open: recorder(&opened)}

	url, err := d.Dispatch("python tutorials", SourceWeb)
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	want := "https://duckduckgo.com/?q=python+tutorials"
	if url != want {
		t.Errorf("url = %q, want %q", url, want)
	}
	if len(opened) != 1 || opened[0] != want {
		t.Errorf("browser opened with %v", opened)
	}
}

func TestDispatchEngines(t *testing.T) {
	tests := []struct {
		engine string
		prefix string
	}{
		{"duckduckgo", "https://duckduckgo.com/"},
		{"google", "https://www.google.com/"},
		{"bing", "https://www.bing.com/"},
		{"unknown-engine", "https://duckduckgo.com/"}, // fallback
	}

	for _, tt := range tests {
		t.Run(tt.engine, func(t *testing.T) {
			d := &Dispatcher{Engine: tt.engine, Open: recorder(&[]string{})}
			url, err := d.URL("cats", SourceWeb)
			if err != nil {
				t.Fatal(err)
			}
			if !strings.HasPrefix(url, tt.prefix) {
				t.Errorf("url = %q, want prefix %q", url, tt.prefix)
			}
		})
	}
}

func TestDispatchYouTube(t *testing.T) {
	d := &Dispatcher{Engine: "duckduckgo"}
	url, err := d.URL("lofi beats", SourceYouTube)
	if err != nil {
		t.Fatal(err)
	}
	if url != "https://www.youtube.com/results?search_query=lofi+beats" {
		t.Errorf("url = %q", url)
	}
}

func TestAuroraIgnoresQuery(t *testing.T) {
	d := &Dispatcher{Engine: "google"}

	for _, query := range []string{"", "aurora forecast", "will I see the lights tonight in oslo"} {
		url, err := d.URL(query, SourceAurora)
		if err != nil {
			t.Fatalf("URL(%q) failed: %v", query, err)
		}
		if url != AuroraURL {
			t.Errorf("URL(%q) = %q, want fixed %q", query, url, AuroraURL)
		}
	}
}

func TestEmptyQueryRejected(t *testing.T) {
	d := &Dispatcher{Engine: "duckduckgo"}
	for _, source := range []Source{SourceWeb, SourceYouTube, SourceGame, SourceAPK} {
		if _, err := d.URL("   ", source); err == nil {
			t.Errorf("empty query accepted for %s", source)
		}
	}
}

func TestUnknownSource(t *testing.T) {
	d := &Dispatcher{Engine: "duckduckgo"}
	if _, err := d.URL("something", Source("gopher")); err == nil {
		t.Error("unknown source accepted")
	}
}

func TestQueryEscaping(t *testing.T) {
	d := &Dispatcher{Engine: "duckduckgo"}
	url, err := d.URL("c++ & rust?", SourceWeb)
	if err != nil {
		t.Fatal(err)
	}
	if strings.ContainsAny(url[len("https://duckduckgo.com/?q="):], " &?") {
		t.Errorf("query not escaped: %q", url)
	}
}
