// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"sync"
	"testing"
)

// =============================================================================
// TITLE TESTS
// =============================================================================

func TestTitle_FromFirstUserMessage(t *testing.T) {
	store := NewStore()
	conv := store.NewConversation("llama3.2")

	if conv.Title != "New Conversation" {
		t.Errorf("initial title = %q", conv.Title)
	}

	if _, err := store.AppendMessage(conv.ID, RoleUser, "How do goroutines work?", nil); err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}
	got, _ := store.Get(conv.ID)
	if got.Title != "How do goroutines work?" {
		t.Errorf("title = %q, want message text", got.Title)
	}
}

func TestTitle_SetExactlyOnce(t *testing.T) {
	store := NewStore()
	conv := store.NewConversation("llama3.2")

	store.AppendMessage(conv.ID, RoleUser, "first question", nil)
	store.AppendMessage(conv.ID, RoleAssistant, "an answer", nil)
	store.AppendMessage(conv.ID, RoleUser, "second question", nil)

	got, _ := store.Get(conv.ID)
	if got.Title != "first question" {
		t.Errorf("title = %q, want 'first question'", got.Title)
	}
}

func TestTitle_Truncation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"short", "hello", "hello"},
		{"exactly 40", strings.Repeat("a", 40), strings.Repeat("a", 40)},
		{"41 chars truncated", strings.Repeat("a", 41), strings.Repeat("a", 40) + "..."},
		{"unicode", strings.Repeat("世", 45), strings.Repeat("世", 40) + "..."},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := NewStore()
			conv := store.NewConversation("m")
			store.AppendMessage(conv.ID, RoleUser, tc.content, nil)
			got, _ := store.Get(conv.ID)
			if got.Title != tc.want {
				t.Errorf("title = %q, want %q", got.Title, tc.want)
			}
		})
	}
}

func TestTitle_NotSetByAssistantMessage(t *testing.T) {
	store := NewStore()
	conv := store.NewConversation("m")

	store.AppendMessage(conv.ID, RoleAssistant, "welcome", nil)
	got, _ := store.Get(conv.ID)
	if got.Title != "New Conversation" {
		t.Errorf("title = %q, assistant message must not title", got.Title)
	}

	store.AppendMessage(conv.ID, RoleUser, "actual question", nil)
	got, _ = store.Get(conv.ID)
	if got.Title != "actual question" {
		t.Errorf("title = %q, want 'actual question'", got.Title)
	}
}

// =============================================================================
// STORE OPERATION TESTS
// =============================================================================

func TestStore_NewConversationBecomesActive(t *testing.T) {
	store := NewStore()

	first := store.NewConversation("llama3.2")
	if store.ActiveID() != first.ID {
		t.Error("first conversation should be active")
	}

	second := store.NewConversation("mistral")
	if store.ActiveID() != second.ID {
		t.Error("newest conversation should be active")
	}
	if store.Len() != 2 {
		t.Errorf("Len = %d, want 2", store.Len())
	}
}

func TestStore_SetActive_Unknown(t *testing.T) {
	store := NewStore()
	store.NewConversation("m")

	if err := store.SetActive("nope"); err != ErrConversationNotFound {
		t.Errorf("SetActive = %v, want ErrConversationNotFound", err)
	}
}

func TestStore_DeleteActive_ActivatesMostRecent(t *testing.T) {
	store := NewStore()
	a := store.NewConversation("m")
	b := store.NewConversation("m")
	c := store.NewConversation("m")

	if err := store.SetActive(c.ID); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	if err := store.Delete(c.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	// b was created after a, so it takes over.
	if store.ActiveID() != b.ID {
		t.Errorf("active = %q, want %q", store.ActiveID(), b.ID)
	}

	store.Delete(b.ID)
	if store.ActiveID() != a.ID {
		t.Errorf("active = %q, want %q", store.ActiveID(), a.ID)
	}

	store.Delete(a.ID)
	if store.ActiveID() != "" {
		t.Errorf("active = %q, want empty after last delete", store.ActiveID())
	}
}

func TestStore_DeleteInactive_KeepsActive(t *testing.T) {
	store := NewStore()
	a := store.NewConversation("m")
	b := store.NewConversation("m")

	if err := store.Delete(a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if store.ActiveID() != b.ID {
		t.Errorf("active = %q, want %q", store.ActiveID(), b.ID)
	}
}

func TestStore_Delete_Unknown(t *testing.T) {
	store := NewStore()
	if err := store.Delete("ghost"); err != ErrConversationNotFound {
		t.Errorf("Delete = %v, want ErrConversationNotFound", err)
	}
}

func TestStore_UpdateLastMessageContent(t *testing.T) {
	store := NewStore()
	conv := store.NewConversation("m")

	store.AppendMessage(conv.ID, RoleUser, "question", nil)
	store.AppendMessage(conv.ID, RoleAssistant, "", nil)

	for _, buffer := range []string{"H", "Hi", "Hi, wor", "Hi, world"} {
		if err := store.UpdateLastMessageContent(conv.ID, buffer); err != nil {
			t.Fatalf("UpdateLastMessageContent(%q): %v", buffer, err)
		}
	}

	got, _ := store.Get(conv.ID)
	if len(got.Messages) != 2 {
		t.Fatalf("messages = %d, want 2 (count must not change)", len(got.Messages))
	}
	if got.Messages[0].Content != "question" {
		t.Errorf("earlier message mutated: %q", got.Messages[0].Content)
	}
	if got.Messages[1].Content != "Hi, world" {
		t.Errorf("last content = %q, want 'Hi, world'", got.Messages[1].Content)
	}
}

func TestStore_UpdateLastMessageContent_Empty(t *testing.T) {
	store := NewStore()
	conv := store.NewConversation("m")

	if err := store.UpdateLastMessageContent(conv.ID, "x"); err != ErrNoMessages {
		t.Errorf("UpdateLastMessageContent = %v, want ErrNoMessages", err)
	}
}

func TestStore_DirtyTracking(t *testing.T) {
	store := NewStore()
	if store.Dirty() {
		t.Error("fresh store should be clean")
	}

	conv := store.NewConversation("m")
	if !store.Dirty() {
		t.Error("mutation should mark dirty")
	}

	store.ClearDirty()
	if store.Dirty() {
		t.Error("ClearDirty should reset the flag")
	}

	store.AppendMessage(conv.ID, RoleUser, "hi", nil)
	if !store.Dirty() {
		t.Error("append should mark dirty")
	}
}

// =============================================================================
// COPY-ON-READ TESTS
// =============================================================================

func TestStore_AccessorsReturnDetachedCopies(t *testing.T) {
	store := NewStore()
	conv := store.NewConversation("m")
	store.AppendMessage(conv.ID, RoleUser, "question", nil)

	got, _ := store.Get(conv.ID)
	got.Title = "scribbled"
	got.Messages[0].Content = "scribbled"

	fresh, _ := store.Get(conv.ID)
	if fresh.Title != "question" {
		t.Errorf("title = %q, writes to a returned copy must not reach the store", fresh.Title)
	}
	if fresh.Messages[0].Content != "question" {
		t.Errorf("content = %q, writes to a returned copy must not reach the store", fresh.Messages[0].Content)
	}
}

func TestStore_ReadersIsolatedFromStreamingWrites(t *testing.T) {
	// Rendering the active conversation while tokens rewrite its last
	// message must only ever observe complete, detached snapshots.
	store := NewStore()
	conv := store.NewConversation("m")
	store.AppendMessage(conv.ID, RoleUser, "question", nil)
	store.AppendMessage(conv.ID, RoleAssistant, "", nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		buffer := ""
		for i := 0; i < 500; i++ {
			buffer += "tok"
			store.UpdateLastMessageContent(conv.ID, buffer)
		}
	}()

	for i := 0; i < 500; i++ {
		active := store.Active()
		if active == nil {
			t.Fatal("active conversation missing")
		}
		content := active.Messages[len(active.Messages)-1].Content
		if len(content)%3 != 0 {
			t.Fatalf("observed torn write: %q", content)
		}
	}
	wg.Wait()
}

// =============================================================================
// SNAPSHOT TESTS
// =============================================================================

func TestSnapshot_StripsAttachmentContent(t *testing.T) {
	store := NewStore()
	conv := store.NewConversation("m")

	atts := []Attachment{{Name: "notes.md", Path: "/p/notes.md", Content: "secret body"}}
	store.AppendMessage(conv.ID, RoleUser, "see attached", atts)

	snap := store.Snapshot()

	got := snap.Conversations[0].Messages[0].Attachments[0]
	if got.Content != "" {
		t.Errorf("snapshot attachment content = %q, want empty", got.Content)
	}
	if got.Name != "notes.md" || got.Path != "/p/notes.md" {
		t.Errorf("snapshot attachment = %+v, name/path must survive", got)
	}

	// The live store keeps the content.
	live, _ := store.Get(conv.ID)
	if live.Messages[0].Attachments[0].Content != "secret body" {
		t.Error("snapshot must not mutate live attachments")
	}
}

func TestSnapshot_PreservesTextAndOrder(t *testing.T) {
	store := NewStore()
	conv := store.NewConversation("m")
	store.AppendMessage(conv.ID, RoleUser, "one", nil)
	store.AppendMessage(conv.ID, RoleAssistant, "two", nil)
	store.AppendMessage(conv.ID, RoleUser, "three", nil)

	snap := store.Snapshot()
	msgs := snap.Conversations[0].Messages
	want := []string{"one", "two", "three"}
	for i, w := range want {
		if msgs[i].Content != w {
			t.Errorf("messages[%d] = %q, want %q", i, msgs[i].Content, w)
		}
	}
}

func TestRestore_Roundtrip(t *testing.T) {
	store := NewStore()
	a := store.NewConversation("llama3.2")
	store.AppendMessage(a.ID, RoleUser, "hello", nil)
	store.NewConversation("mistral")
	store.SetActive(a.ID)

	restored := NewStore()
	restored.Restore(store.Snapshot())

	if restored.Len() != 2 {
		t.Fatalf("Len = %d, want 2", restored.Len())
	}
	if restored.ActiveID() != a.ID {
		t.Errorf("active = %q, want %q", restored.ActiveID(), a.ID)
	}
	if restored.Dirty() {
		t.Error("restored store should be clean")
	}
}

func TestRestore_DanglingActiveFallsBack(t *testing.T) {
	store := NewStore()
	a := store.NewConversation("m")
	b := store.NewConversation("m")

	snap := store.Snapshot()
	snap.ActiveID = "gone"

	restored := NewStore()
	restored.Restore(snap)

	if restored.ActiveID() != b.ID {
		t.Errorf("active = %q, want most recent %q (not %q)", restored.ActiveID(), b.ID, a.ID)
	}
}
