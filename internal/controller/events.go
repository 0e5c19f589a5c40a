// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import tea "github.com/charmbracelet/bubbletea"

// Controller events are delivered to the UI through a message sink as
// tea.Msg values. They are notifications only: by the time one arrives the
// store already reflects it.

// StreamStartedMsg reports that a stream opened for a conversation.
type StreamStartedMsg struct {
	ConversationID string
}

// StreamTokenMsg reports one accumulated token. Buffer is the full assistant
// content so far, not the delta.
type StreamTokenMsg struct {
	ConversationID string
	Token          string
	Buffer         string
}

// StreamCompleteMsg reports a stream that finished normally.
type StreamCompleteMsg struct {
	ConversationID string
	Content        string
}

// StreamErrorMsg reports a stream that failed. The placeholder message has
// already been rewritten with the error text.
type StreamErrorMsg struct {
	ConversationID string
	Err            error
}

// StreamCancelledMsg reports a user-initiated cancellation. The partial
// content stays in the conversation.
type StreamCancelledMsg struct {
	ConversationID string
}

// Sink receives controller events for the UI loop. tea.Program.Send
// satisfies it directly.
type Sink func(msg tea.Msg)
