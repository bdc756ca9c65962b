// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides utility functions shared across aura.
//
// String helpers are rune- and width-aware (via go-runewidth) so display
// formatting never splits multi-byte characters. AtomicWriteFile implements
// the write-temp, fsync, rename pattern used by every store that persists
// JSON documents.
package util
