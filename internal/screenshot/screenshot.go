// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package screenshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// =============================================================================
// CAPTURE MODES
// =============================================================================

// Mode selects what part of the screen to capture.
type Mode string

const (
	// ModeFull captures all displays.
	ModeFull Mode = "full"

	// ModeRegion lets the user select a rectangle interactively.
	ModeRegion Mode = "region"

	// ModeWindow captures the focused window.
	ModeWindow Mode = "window"
)

// ParseMode maps user words to a capture mode, defaulting to full.
func ParseMode(s string) Mode {
	switch s {
	case "region", "area", "selection":
		return ModeRegion
	case "window", "active":
		return ModeWindow
	default:
		return ModeFull
	}
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrNoTool is returned when no screenshot tool is installed.
var ErrNoTool = errors.New("no screenshot tool found")

// ErrNoDisplay is returned when no display server is reachable.
var ErrNoDisplay = errors.New("no display available")

// =============================================================================
// CAPTURE
// =============================================================================

// DefaultTimeout bounds a single capture, including any interactive
// region selection.
const DefaultTimeout = 60 * time.Second

// Capture takes a screenshot in the given mode and returns PNG bytes.
// The capture tool writes to a temp file which is removed afterwards.
func Capture(ctx context.Context, mode Mode) ([]byte, error) {
	tool, err := findTool()
	if err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp("", "aura-shot-*.png")
	if err != nil {
		return nil, err
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	bin, args := tool.cmd(mode, tmpPath)

	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, bin, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("screenshot timed out: %w", ctx.Err())
		}
		return nil, fmt.Errorf("%s failed: %s: %w", tool.name, firstLine(out), err)
	}

	data, err := os.ReadFile(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("read capture: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%s produced an empty image", tool.name)
	}
	return data, nil
}

// SaveTo captures and writes the image under dir, returning the path.
func SaveTo(ctx context.Context, mode Mode, dir string) (string, error) {
	data, err := Capture(ctx, mode)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	path := filepath.Join(dir, "shot-"+time.Now().Format("20060102-150405")+".png")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

func firstLine(out []byte) string {
	for i, b := range out {
		if b == '\n' {
			return string(out[:i])
		}
	}
	return string(out)
}
