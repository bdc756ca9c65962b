// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for aura.
//
// Config is the typed document (TOML on disk with a JSON fallback, env
// overrides, defaults, validation, dot-notation access). Service is the
// synchronized owner of the live config that the command executor and
// autonomy scheduler share: reads return copies, partial updates deep-merge
// under a mutex, and "true"/"false" strings arriving from the UI layer are
// coerced to booleans exactly once at the Merge boundary.
package config
