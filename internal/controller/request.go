// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"strings"

	"github.com/innertalk/innertalk-tui/internal/chat"
	"github.com/innertalk/innertalk-tui/internal/ollama"
)

// =============================================================================
// REQUEST CONSTRUCTION
// =============================================================================

// buildMessages renders a conversation into the outgoing request. The
// context block, when non-empty, leads as a system entry. Each message
// carries its own attachments as delimited file blocks prepended to its
// text. The trailing empty assistant placeholder is not sent.
func buildMessages(conv *chat.Conversation, contextBlock string) []ollama.Message {
	var out []ollama.Message

	if contextBlock != "" {
		out = append(out, ollama.NewSystemMessage(contextBlock))
	}

	msgs := conv.Messages
	if n := len(msgs); n > 0 && msgs[n-1].Role == chat.RoleAssistant && msgs[n-1].Content == "" {
		msgs = msgs[:n-1]
	}

	for _, msg := range msgs {
		out = append(out, ollama.Message{
			Role:    string(msg.Role),
			Content: renderMessage(msg),
		})
	}
	return out
}

// renderMessage prepends a message's attachment blocks to its text.
func renderMessage(msg chat.Message) string {
	if len(msg.Attachments) == 0 {
		return msg.Content
	}

	var b strings.Builder
	for _, att := range msg.Attachments {
		b.WriteString("--- File: ")
		b.WriteString(att.Name)
		b.WriteString(" ---\n")
		b.WriteString(att.Content)
		b.WriteString("\n\n")
	}
	b.WriteString(msg.Content)
	return b.String()
}
