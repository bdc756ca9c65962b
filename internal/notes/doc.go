// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package notes persists user and companion notes in a local SQLite
// database under ~/.aura/.
package notes
