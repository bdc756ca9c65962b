// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package xgo maintains the TCP control bridge to the XGO companion
// device.
package xgo
