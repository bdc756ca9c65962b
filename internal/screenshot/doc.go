// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package screenshot captures the screen using the platform tool chain
// and returns PNG bytes.
package screenshot
