// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build !windows && !darwin

package screenshot

import (
	"os"
	"os/exec"
)

// tool is an installed screenshot program and how to drive it.
type tool struct {
	name string
	cmd  func(mode Mode, outPath string) (string, []string)
}

// findTool picks the first installed tool, preferring Wayland-native
// grim when a Wayland session is active.
func findTool() (*tool, error) {
	wayland := os.Getenv("WAYLAND_DISPLAY") != ""
	x11 := os.Getenv("DISPLAY") != ""
	if !wayland && !x11 {
		return nil, ErrNoDisplay
	}

	if wayland {
		if _, err := exec.LookPath("grim"); err == nil {
			return &tool{name: "grim", cmd: grimCmd}, nil
		}
	}
	if _, err := exec.LookPath("gnome-screenshot"); err == nil {
		return &tool{name: "gnome-screenshot", cmd: gnomeCmd}, nil
	}
	if _, err := exec.LookPath("scrot"); err == nil {
		return &tool{name: "scrot", cmd: scrotCmd}, nil
	}
	return nil, ErrNoTool
}

func grimCmd(mode Mode, out string) (string, []string) {
	switch mode {
	case ModeRegion:
		// slurp supplies the selection geometry; needs a shell for
		// the substitution.
		return "sh", []string{"-c", `grim -g "$(slurp)" ` + out}
	default:
		return "grim", []string{out}
	}
}

func gnomeCmd(mode Mode, out string) (string, []string) {
	switch mode {
	case ModeRegion:
		return "gnome-screenshot", []string{"--area", "--file", out}
	case ModeWindow:
		return "gnome-screenshot", []string{"--window", "--file", out}
	default:
		return "gnome-screenshot", []string{"--file", out}
	}
}

func scrotCmd(mode Mode, out string) (string, []string) {
	switch mode {
	case ModeRegion:
		return "scrot", []string{"--select", out}
	case ModeWindow:
		return "scrot", []string{"--focused", out}
	default:
		return "scrot", []string{out}
	}
}
