// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package command parses slash and natural-language commands into
// descriptors and executes them.
//
// Parsing has two modes. Slash input goes through a registry of
// commands with argument definitions; natural language goes through
// an ordered pattern table where the first match wins. Both produce a
// Descriptor, which the Executor turns into a Result. Errors never
// escape the executor as Go errors; every failure is an error Result.
package command
