// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/innertalk/innertalk-tui/internal/chat"
	"github.com/innertalk/innertalk-tui/internal/config"
	appcontext "github.com/innertalk/innertalk-tui/internal/context"
	"github.com/innertalk/innertalk-tui/internal/controller"
	"github.com/innertalk/innertalk-tui/internal/models"
	"github.com/innertalk/innertalk-tui/internal/ollama"
	"github.com/innertalk/innertalk-tui/internal/storage"
)

// =============================================================================
// TEST FIXTURES
// =============================================================================

// recordingGen captures each outgoing request and completes immediately.
type recordingGen struct {
	requests chan []ollama.Message
}

func (g *recordingGen) ChatStream(ctx context.Context, model string, messages []ollama.Message, cb ollama.StreamCallback) error {
	g.requests <- messages
	cb(ollama.StreamChunk{Done: true})
	return nil
}

func newTestApp(t *testing.T) (*App, *chat.Store, *appcontext.Aggregator, *recordingGen) {
	t.Helper()

	cfg := config.Default()
	cfg.DataDir = t.TempDir()

	store := chat.NewStore()
	agg := appcontext.NewAggregator(nil)
	gen := &recordingGen{requests: make(chan []ollama.Message, 4)}

	ctrl := controller.New(store, gen, agg, nil)
	ctrl.SetDefaultModel("m")

	prefs := storage.NewPrefs(storage.Open(cfg.StorePath()))
	app := New(cfg, store, ctrl, models.NewManager(nil), prefs, agg)
	return app, store, agg, gen
}

func keyPress(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

// =============================================================================
// FOLDER COMMAND TESTS
// =============================================================================

func TestSubmit_AddFolderCommand(t *testing.T) {
	app, _, agg, _ := newTestApp(t)

	dir := t.TempDir()
	writeFile(t, dir, "notes.md", "remember this")

	app.input.SetValue("/add " + dir)
	app.submit()

	folders := agg.Folders()
	if len(folders) != 1 {
		t.Fatalf("folders = %d, want 1", len(folders))
	}
	if folders[0].Path != dir {
		t.Errorf("path = %q, want %q", folders[0].Path, dir)
	}
	if !strings.Contains(app.status, "Added") {
		t.Errorf("status = %q, want add confirmation", app.status)
	}
	if app.input.Value() != "" {
		t.Error("input must reset after a handled command")
	}
}

func TestSubmit_AddFolderCommand_Duplicate(t *testing.T) {
	app, _, agg, _ := newTestApp(t)
	dir := t.TempDir()

	app.input.SetValue("/add " + dir)
	app.submit()
	app.input.SetValue("/add " + dir)
	app.submit()

	if len(agg.Folders()) != 1 {
		t.Fatalf("folders = %d, duplicate path must be rejected", len(agg.Folders()))
	}
	if !strings.Contains(app.status, "already added") {
		t.Errorf("status = %q, want duplicate rejection", app.status)
	}
}

func TestSubmit_RemoveFolderCommand(t *testing.T) {
	app, _, agg, _ := newTestApp(t)
	dir := t.TempDir()

	app.input.SetValue("/add " + dir)
	app.submit()

	app.input.SetValue("/remove " + dir)
	app.submit()

	if len(agg.Folders()) != 0 {
		t.Fatalf("folders = %d, want 0 after remove", len(agg.Folders()))
	}
}

func TestSubmit_FolderContextReachesRequest(t *testing.T) {
	app, _, _, gen := newTestApp(t)

	dir := t.TempDir()
	writeFile(t, dir, "readme.md", "project background")

	app.input.SetValue("/add " + dir)
	app.submit()

	app.input.SetValue("what is this project?")
	app.submit()

	select {
	case msgs := <-gen.requests:
		if len(msgs) == 0 || msgs[0].Role != "system" {
			t.Fatalf("request = %+v, want leading system entry", msgs)
		}
		if !strings.Contains(msgs[0].Content, "project background") {
			t.Errorf("system entry = %q, want shared file content", msgs[0].Content)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no request sent")
	}
}

func TestFolderPanelKeys_RemoveByDigit(t *testing.T) {
	app, _, agg, _ := newTestApp(t)
	dir := t.TempDir()

	app.input.SetValue("/add " + dir)
	app.submit()
	app.foldersOpen = true

	if _, handled := app.handleFolderPanelKey(keyPress('1')); !handled {
		t.Fatal("digit must be handled while the panel is open")
	}
	if len(agg.Folders()) != 0 {
		t.Errorf("folders = %d, want 0 after removal", len(agg.Folders()))
	}
}

// =============================================================================
// ATTACHMENT COMMAND TESTS
// =============================================================================

func TestSubmit_AttachCommandRidesNextMessage(t *testing.T) {
	app, store, _, gen := newTestApp(t)

	dir := t.TempDir()
	path := writeFile(t, dir, "snippet.go", "package main")

	app.input.SetValue("/attach " + path)
	app.submit()

	if len(app.pending) != 1 {
		t.Fatalf("pending = %d, want 1 staged attachment", len(app.pending))
	}
	if app.pending[0].Name != "snippet.go" || app.pending[0].Content != "package main" {
		t.Errorf("staged = %+v", app.pending[0])
	}

	app.input.SetValue("review this file")
	app.submit()

	select {
	case msgs := <-gen.requests:
		last := msgs[len(msgs)-1]
		if !strings.Contains(last.Content, "--- File: snippet.go ---") {
			t.Errorf("request = %q, want attachment block", last.Content)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no request sent")
	}

	if len(app.pending) != 0 {
		t.Error("staged attachments must clear after the send")
	}

	conv := store.Active()
	if len(conv.Messages[0].Attachments) != 1 {
		t.Errorf("recorded attachments = %d, want 1", len(conv.Messages[0].Attachments))
	}
}

func TestSubmit_AttachCommand_MissingFile(t *testing.T) {
	app, _, _, _ := newTestApp(t)

	app.input.SetValue("/attach /no/such/file.txt")
	app.submit()

	if len(app.pending) != 0 {
		t.Errorf("pending = %d, unreadable file must not stage", len(app.pending))
	}
	if app.status == "" {
		t.Error("failure must surface in the status line")
	}
}

// =============================================================================
// PERSISTENCE TESTS
// =============================================================================

func TestUpdate_FlushesSnapshotOnStreamEvents(t *testing.T) {
	app, _, _, _ := newTestApp(t)

	var saves int
	app.SetPersist(func() { saves++ })

	app.Update(controller.StreamStartedMsg{})
	app.Update(controller.StreamCompleteMsg{})
	app.Update(controller.StreamErrorMsg{})
	app.Update(controller.StreamCancelledMsg{})

	if saves != 4 {
		t.Errorf("saves = %d, want a flush per recorded turn", saves)
	}

	// Token events arrive per chunk and must not hit the disk.
	app.Update(controller.StreamTokenMsg{Token: "t", Buffer: "t"})
	if saves != 4 {
		t.Errorf("saves = %d, token events must not flush", saves)
	}
}
