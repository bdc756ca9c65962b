// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat orchestrates the companion's input pipeline: intent
// classification, command parsing and execution, and the LLM chat
// fallback, plus session state and transcript persistence.
package chat
