// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat holds conversation state: conversations, their ordered
// messages, and the active selection. It performs no I/O; persistence and
// streaming live elsewhere and drive the store through its operations.
package chat
