// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build !windows && !darwin

package screenshot

import (
	"context"
	"errors"
	"testing"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
	}{
		{"region", ModeRegion},
		{"area", ModeRegion},
		{"selection", ModeRegion},
		{"window", ModeWindow},
		{"active", ModeWindow},
		{"full", ModeFull},
		{"", ModeFull},
		{"anything else", ModeFull},
	}

	for _, tt := range tests {
		if got := ParseMode(tt.in); got != tt.want {
			t.Errorf("ParseMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCaptureNoDisplay(t *testing.T) {
	t.Setenv("DISPLAY", "")
	t.Setenv("WAYLAND_DISPLAY", "")

	_, err := Capture(context.Background(), ModeFull)
	if !errors.Is(err, ErrNoDisplay) {
		t.Errorf("expected ErrNoDisplay, got %v", err)
	}
}

func TestToolArgs(t *testing.T) {
	bin, args := gnomeCmd(ModeWindow, "/tmp/out.png")
	if bin != "gnome-screenshot" || args[0] != "--window" {
		t.Errorf("gnomeCmd window: %s %v", bin, args)
	}

	bin, args = scrotCmd(ModeRegion, "/tmp/out.png")
	if bin != "scrot" || args[0] != "--select" {
		t.Errorf("scrotCmd region: %s %v", bin, args)
	}

	bin, _ = grimCmd(ModeRegion, "/tmp/out.png")
	if bin != "sh" {
		t.Errorf("grim region capture must run through a shell, got %s", bin)
	}
}
