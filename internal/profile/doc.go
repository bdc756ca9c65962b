// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package profile stores named user personas as JSON documents under
// ~/.aura/profiles.
package profile
