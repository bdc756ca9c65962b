// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for communicating with Ollama API.
//
// The client covers the slices of the API aura uses: health checks
// (with platform-specific `ollama serve` bootstrap), model listing,
// non-streaming chat and generate, embeddings for the memory store, and
// streaming chat for the REPL. Errors carry a ClientError taxonomy
// (not running, timeout, model not found, invalid response) so callers
// can surface a useful message instead of a raw transport error; every
// request is bounded by either the client timeout or the caller's context.
package ollama
