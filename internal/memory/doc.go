// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package memory stores embedded conversation exchanges in SQLite and
// recalls the most similar ones for chat context.
package memory
