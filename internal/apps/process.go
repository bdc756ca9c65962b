// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package apps

import (
	"fmt"
	"strings"
)

// =============================================================================
// PROCESS CONTROL
// =============================================================================

// Launch starts an application detached from this process. The path
// may be a bare command line from a desktop entry.
func Launch(path string, args ...string) error {
	fields := strings.Fields(path)
	if len(fields) == 0 {
		return fmt.Errorf("empty launch path")
	}
	argv := append(fields[1:], args...)
	return launchProcess(fields[0], argv)
}

// TerminateByName asks every process whose command name matches to
// exit. Returns true if at least one process was signaled.
func TerminateByName(name string) (bool, error) {
	name = normalizeName(name)
	if name == "" {
		return false, fmt.Errorf("empty process name")
	}
	return terminateByName(name)
}
