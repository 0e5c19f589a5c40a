// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists opaque key/value state to a JSON file on disk.
// Persistence is best-effort: write failures are logged and swallowed, and a
// missing or corrupt file loads as empty state. The application never fails
// because the disk did.
package storage
