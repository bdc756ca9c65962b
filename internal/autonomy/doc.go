// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package autonomy schedules the companion's unprompted actions:
// periodic notes, screenshots, and check-in messages.
package autonomy
