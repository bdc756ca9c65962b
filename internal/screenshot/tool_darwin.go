// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build darwin

package screenshot

// tool is an installed screenshot program and how to drive it.
type tool struct {
	name string
	cmd  func(mode Mode, outPath string) (string, []string)
}

// findTool returns the built-in screencapture utility.
func findTool() (*tool, error) {
	return &tool{name: "screencapture", cmd: screencaptureCmd}, nil
}

func screencaptureCmd(mode Mode, out string) (string, []string) {
	switch mode {
	case ModeRegion:
		return "screencapture", []string{"-i", out}
	case ModeWindow:
		return "screencapture", []string{"-iW", out}
	default:
		return "screencapture", []string{out}
	}
}
