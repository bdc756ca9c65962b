// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build !windows

package apps

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"syscall"
)

// launchProcess starts the command in its own session so it survives
// this process exiting.
func launchProcess(name string, args []string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launch %s: %w", name, err)
	}

	// Reap in the background so the child never zombies.
	go cmd.Wait()
	return nil
}

func terminateByName(name string) (bool, error) {
	if runtime.GOOS == "linux" {
		return terminateProc(name)
	}

	// macOS and the BSDs: pkill matches on command name.
	err := exec.Command("pkill", "-TERM", name).Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return false, nil // no processes matched
		}
		return false, fmt.Errorf("pkill %s: %w", name, err)
	}
	return true, nil
}

// terminateProc walks /proc matching the comm name of each process.
func terminateProc(name string) (bool, error) {
	entries, err := os.ReadDir("/proc")
	if err != nil {
		return false, err
	}

	self := os.Getpid()
	killed := false
	for _, entry := range entries {
		pid, err := strconv.Atoi(entry.Name())
		if err != nil || pid == self {
			continue
		}

		comm, err := os.ReadFile(filepath.Join("/proc", entry.Name(), "comm"))
		if err != nil {
			continue
		}
		proc := normalizeName(strings.TrimSpace(string(comm)))
		if proc != name && !strings.HasPrefix(proc, name) {
			continue
		}

		if err := syscall.Kill(pid, syscall.SIGTERM); err == nil {
			killed = true
		}
	}
	return killed, nil
}
