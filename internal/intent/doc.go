// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package intent assigns a coarse category (command, search, chat) to raw
// user input using keyword tables and a handful of regex patterns.
//
// Classification is stateless and never fails: anything that matches no
// table defaults to chat, which the orchestration layer hands to the model
// unchanged. Command starters take priority over search starters so that
// "close the search app" is dispatched as a command.
package intent
