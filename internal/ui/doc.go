// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui provides the Bubble Tea terminal interface: the chat transcript
// and input, the conversation sidebar, the model and context-folder panels,
// and the status bar. Slash commands typed into the input manage context
// folders and file attachments. It consumes controller events as messages
// and never mutates conversation state directly except through the
// controller.
package ui
