// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/google/uuid"

	"github.com/innertalk/innertalk-tui/internal/util"
)

// =============================================================================
// ROLES
// =============================================================================

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// TitleMaxRunes is the rune budget for a conversation title derived from the
// first user message.
const TitleMaxRunes = 40

// =============================================================================
// TYPES
// =============================================================================

// Attachment is a file attached to a message. Content is held in memory for
// prompt construction but stripped from durable snapshots.
type Attachment struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Content string `json:"content,omitempty"`
}

// Message is one entry in a conversation. Content is mutable only while the
// message is the last in its conversation and the target of an active stream.
type Message struct {
	ID          string       `json:"id"`
	Role        Role         `json:"role"`
	Content     string       `json:"content"`
	Attachments []Attachment `json:"attachments,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Conversation is an ordered exchange of messages with a single model.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Model     string    `json:"model"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// =============================================================================
// CONSTRUCTORS
// =============================================================================

// NewConversation creates an empty conversation bound to a model.
func NewConversation(model string) *Conversation {
	now := time.Now()
	return &Conversation{
		ID:        uuid.New().String(),
		Title:     "New Conversation",
		Model:     model,
		Messages:  []Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewMessage creates a message with a fresh ID and timestamp.
func NewMessage(role Role, content string, attachments []Attachment) Message {
	return Message{
		ID:          uuid.New().String(),
		Role:        role,
		Content:     content,
		Attachments: attachments,
		CreatedAt:   time.Now(),
	}
}

// =============================================================================
// CONVERSATION OPERATIONS
// =============================================================================

// append adds a message, deriving the title from the first user message. The
// title is set exactly once and never revised afterwards.
func (c *Conversation) append(msg Message) {
	if msg.Role == RoleUser && !c.hasUserMessage() {
		c.Title = util.HeadRunes(msg.Content, TitleMaxRunes)
	}
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = time.Now()
}

// hasUserMessage reports whether any user message exists yet.
func (c *Conversation) hasUserMessage() bool {
	for i := range c.Messages {
		if c.Messages[i].Role == RoleUser {
			return true
		}
	}
	return false
}

// LastMessage returns the final message, or nil when the conversation is
// empty.
func (c *Conversation) LastMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return &c.Messages[len(c.Messages)-1]
}

// clone returns a deep copy detached from the store's live state, so readers
// on other goroutines never observe in-place streaming mutations.
func (c *Conversation) clone() *Conversation {
	cc := *c
	cc.Messages = make([]Message, len(c.Messages))
	for i, msg := range c.Messages {
		mc := msg
		if len(msg.Attachments) > 0 {
			mc.Attachments = append([]Attachment(nil), msg.Attachments...)
		}
		cc.Messages[i] = mc
	}
	return &cc
}
