// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/innertalk/innertalk-tui/internal/chat"
)

// =============================================================================
// TRANSCRIPT RENDERING
// =============================================================================

// renderConversation renders the transcript of one conversation.
func (a *App) renderConversation(conv *chat.Conversation) string {
	if conv == nil {
		return mutedStyle.Render("\n  No conversation. Press C-n to start one.")
	}
	if len(conv.Messages) == 0 {
		return mutedStyle.Render("\n  " + conv.Model + " is ready. Type a message below.")
	}

	var b strings.Builder
	for i, msg := range conv.Messages {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(a.renderMessage(msg))
	}
	return b.String()
}

// renderMessage renders one message with its role label and attachments.
func (a *App) renderMessage(msg chat.Message) string {
	var b strings.Builder

	switch msg.Role {
	case chat.RoleUser:
		b.WriteString(userLabelStyle.Render("You"))
	default:
		b.WriteString(assistantLabelStyle.Render("Assistant"))
	}
	b.WriteString("\n")

	for _, att := range msg.Attachments {
		b.WriteString(mutedStyle.Render("  [file] " + att.Name))
		b.WriteString("\n")
	}

	content := msg.Content
	if content == "" && a.streaming {
		content = a.spinner.View()
	}

	if msg.Role == chat.RoleAssistant && a.renderer != nil && content != "" {
		if rendered, err := a.renderer.Render(content); err == nil {
			b.WriteString(strings.TrimRight(rendered, "\n"))
			b.WriteString("\n")
			return b.String()
		}
	}

	b.WriteString(content)
	b.WriteString("\n")
	return b.String()
}

// =============================================================================
// SIDEBAR RENDERING
// =============================================================================

// renderSidebar renders the conversation list, active entry highlighted.
func (a *App) renderSidebar(height int) string {
	convs := a.store.Conversations()
	active := a.store.ActiveID()
	width := a.cfg.UI.SidebarWidth - 4 // border and padding

	var lines []string
	lines = append(lines, panelTitleStyle.Render("Conversations"), "")

	if len(convs) == 0 {
		lines = append(lines, mutedStyle.Render("(none)"))
	}
	for _, conv := range convs {
		title := sidebarEntry(conv.Title, width)
		if conv.ID == active {
			lines = append(lines, sidebarActiveStyle.Render("> "+title))
		} else {
			lines = append(lines, "  "+title)
		}
	}

	for len(lines) < height {
		lines = append(lines, "")
	}
	return sidebarStyle.Height(height).Width(a.cfg.UI.SidebarWidth - 2).
		Render(strings.Join(lines[:height], "\n"))
}

// sidebarEntry fits a title into the sidebar column, display-width aware so
// wide characters do not overflow the border.
func sidebarEntry(title string, width int) string {
	if width <= 1 {
		return ""
	}
	if runewidth.StringWidth(title) <= width {
		return title
	}
	return runewidth.Truncate(title, width, "…")
}
