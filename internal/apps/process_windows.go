// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build windows

package apps

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"syscall"
)

func launchProcess(name string, args []string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: 0x00000008 | 0x00000200, // DETACHED_PROCESS | CREATE_NEW_PROCESS_GROUP
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launch %s: %w", name, err)
	}

	go cmd.Wait()
	return nil
}

func terminateByName(name string) (bool, error) {
	image := name
	if !strings.HasSuffix(image, ".exe") {
		image += ".exe"
	}

	err := exec.Command("taskkill", "/IM", image).Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 128 {
			return false, nil // no processes matched
		}
		return false, fmt.Errorf("taskkill %s: %w", image, err)
	}
	return true, nil
}
