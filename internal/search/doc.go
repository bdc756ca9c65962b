// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package search builds destination URLs for web, YouTube, game
// archive, APK, and aurora-forecast searches and opens them in the
// user's browser.
package search
