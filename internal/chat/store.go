// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"sync"
	"time"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrConversationNotFound indicates the conversation ID is unknown.
	ErrConversationNotFound = errors.New("conversation not found")

	// ErrNoMessages indicates an operation that needs a last message was
	// applied to an empty conversation.
	ErrNoMessages = errors.New("conversation has no messages")
)

// =============================================================================
// STORE
// =============================================================================

// Store holds all conversations and the active selection. Mutations either
// succeed completely or leave the store untouched. Accessors return detached
// deep copies, so readers never alias state an active stream is rewriting.
// Safe for concurrent use.
type Store struct {
	mu            sync.RWMutex
	conversations []*Conversation
	activeID      string
	dirty         bool
}

// NewStore creates an empty conversation store.
func NewStore() *Store {
	return &Store{}
}

// =============================================================================
// QUERIES
// =============================================================================

// Get returns a detached copy of the conversation with the given ID. The
// copy never changes after it is returned; callers on other goroutines do
// not observe in-flight streaming writes.
func (s *Store) Get(id string) (*Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, ok := s.find(id)
	if !ok {
		return nil, false
	}
	return conv.clone(), true
}

// Active returns a detached copy of the active conversation, or nil when the
// store is empty.
func (s *Store) Active() *Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, ok := s.find(s.activeID)
	if !ok {
		return nil
	}
	return conv.clone()
}

// ActiveID returns the active conversation's ID, or "" when none exists.
func (s *Store) ActiveID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID
}

// Conversations returns detached copies of all conversations in creation
// order.
func (s *Store) Conversations() []*Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Conversation, len(s.conversations))
	for i, conv := range s.conversations {
		out[i] = conv.clone()
	}
	return out
}

// Len returns the number of conversations.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conversations)
}

// Dirty reports whether the store changed since the last ClearDirty.
func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// ClearDirty resets the dirty flag, typically after a successful save.
func (s *Store) ClearDirty() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty = false
}

func (s *Store) find(id string) (*Conversation, bool) {
	if id == "" {
		return nil, false
	}
	for _, conv := range s.conversations {
		if conv.ID == id {
			return conv, true
		}
	}
	return nil, false
}

// =============================================================================
// MUTATIONS
// =============================================================================

// NewConversation creates a conversation for the model and makes it active.
// The returned conversation is a detached copy, like every accessor result.
func (s *Store) NewConversation(model string) *Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := NewConversation(model)
	s.conversations = append(s.conversations, conv)
	s.activeID = conv.ID
	s.dirty = true
	return conv.clone()
}

// SetActive switches the active conversation.
func (s *Store) SetActive(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.find(id); !ok {
		return ErrConversationNotFound
	}
	s.activeID = id
	s.dirty = true
	return nil
}

// Delete removes a conversation. When the active conversation is deleted, the
// most recently created remaining conversation becomes active.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, conv := range s.conversations {
		if conv.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrConversationNotFound
	}

	s.conversations = append(s.conversations[:idx], s.conversations[idx+1:]...)

	if s.activeID == id {
		s.activeID = ""
		if latest := s.mostRecentlyCreated(); latest != nil {
			s.activeID = latest.ID
		}
	}

	s.dirty = true
	return nil
}

func (s *Store) mostRecentlyCreated() *Conversation {
	var latest *Conversation
	for _, conv := range s.conversations {
		if latest == nil || !conv.CreatedAt.Before(latest.CreatedAt) {
			latest = conv
		}
	}
	return latest
}

// AppendMessage adds a message to the end of a conversation. The first user
// message sets the conversation title.
func (s *Store) AppendMessage(id string, role Role, content string, attachments []Attachment) (*Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.find(id)
	if !ok {
		return nil, ErrConversationNotFound
	}

	conv.append(NewMessage(role, content, attachments))
	s.dirty = true

	appended := *conv.LastMessage()
	return &appended, nil
}

// UpdateLastMessageContent replaces the content of a conversation's final
// message. The message count never changes; earlier messages are never
// touched.
func (s *Store) UpdateLastMessageContent(id string, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.find(id)
	if !ok {
		return ErrConversationNotFound
	}

	last := conv.LastMessage()
	if last == nil {
		return ErrNoMessages
	}

	last.Content = content
	conv.UpdatedAt = time.Now()
	s.dirty = true
	return nil
}

// =============================================================================
// SNAPSHOT
// =============================================================================

// Snapshot is the durable form of the store. Attachment content is stripped;
// only names and paths survive a restart.
type Snapshot struct {
	Conversations []*Conversation `json:"conversations"`
	ActiveID      string          `json:"active_id"`
}

// Snapshot returns a deep copy of the store with attachment content removed.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Conversation, 0, len(s.conversations))
	for _, conv := range s.conversations {
		cc := *conv
		cc.Messages = make([]Message, len(conv.Messages))
		for i, msg := range conv.Messages {
			mc := msg
			if len(msg.Attachments) > 0 {
				mc.Attachments = make([]Attachment, len(msg.Attachments))
				for j, att := range msg.Attachments {
					mc.Attachments[j] = Attachment{Name: att.Name, Path: att.Path}
				}
			}
			cc.Messages[i] = mc
		}
		out = append(out, &cc)
	}

	return Snapshot{Conversations: out, ActiveID: s.activeID}
}

// Restore replaces the store's state from a snapshot. An active ID that no
// longer resolves falls back to the most recently created conversation.
func (s *Store) Restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Clone so the store owns its state; the snapshot holder keeps no
	// aliases into live conversations.
	s.conversations = make([]*Conversation, 0, len(snap.Conversations))
	for _, conv := range snap.Conversations {
		s.conversations = append(s.conversations, conv.clone())
	}

	s.activeID = ""
	if _, ok := s.find(snap.ActiveID); ok {
		s.activeID = snap.ActiveID
	} else if latest := s.mostRecentlyCreated(); latest != nil {
		s.activeID = latest.ID
	}

	s.dirty = false
}
