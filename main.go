// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// innertalk is a terminal client for a locally hosted Ollama server:
// streaming chat with local models, project folders as conversation context,
// and local model management.
package main

import (
	gocontext "context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/innertalk/innertalk-tui/internal/chat"
	"github.com/innertalk/innertalk-tui/internal/config"
	appcontext "github.com/innertalk/innertalk-tui/internal/context"
	"github.com/innertalk/innertalk-tui/internal/controller"
	"github.com/innertalk/innertalk-tui/internal/models"
	"github.com/innertalk/innertalk-tui/internal/ollama"
	"github.com/innertalk/innertalk-tui/internal/storage"
	"github.com/innertalk/innertalk-tui/internal/ui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "innertalk: %v\n", err)
		os.Exit(1)
	}

	// Route the standard logger to a file; stderr belongs to the TUI.
	if f, err := openLogFile(cfg.DataDir); err == nil {
		defer f.Close()
		log.SetOutput(f)
	}

	store := chat.NewStore()
	kv := storage.Open(cfg.StorePath())
	prefs := storage.NewPrefs(kv)

	// Restore persisted state; a failed load starts empty.
	var snap chat.Snapshot
	if prefs.LoadConversations(&snap) {
		store.Restore(snap)
	}

	client := ollama.NewClientWithConfig(&ollama.ClientConfig{
		BaseURL: cfg.Server.URL,
		Timeout: cfg.Timeout(),
	})
	mgr := models.NewManager(client)

	// The program does not exist yet when the controller and notifier are
	// built, so events flow through a late-bound sink.
	var program *tea.Program
	sink := func(msg tea.Msg) {
		if program != nil {
			program.Send(msg)
		}
	}

	notifier, err := appcontext.NewNotifier(cfg.WatchDebounce(), nil)
	if err != nil {
		log.Printf("folder watching unavailable: %v", err)
	}

	var agg *appcontext.Aggregator
	if notifier != nil {
		agg = appcontext.NewAggregator(notifier)
		defer notifier.Close()
	} else {
		agg = appcontext.NewAggregator(nil)
	}

	ctrl := controller.New(store, client, agg, sink)
	ctrl.SetDefaultModel(pickModel(prefs, cfg))

	app := ui.New(cfg, store, ctrl, mgr, prefs, agg)
	program = tea.NewProgram(app, tea.WithAltScreen())
	app.SetSend(program.Send)
	app.SetPersist(func() { persist(store, agg, prefs) })

	if notifier != nil {
		notifier.SetOnChange(func(path string) {
			agg.HandleChange(path)
			sink(ui.FolderChangedMsg{Path: path})
		})
	}

	// Re-register persisted folders; paths that vanished are dropped.
	var folders []string
	if prefs.LoadContextFolders(&folders) {
		for _, path := range folders {
			if _, err := agg.AddFolder(path); err != nil {
				log.Printf("context folder %s not restored: %v", path, err)
			}
		}
	}

	// Give a freshly started server a moment to come up, then keep the
	// controller's availability current.
	go func() {
		ctx, cancel := gocontext.WithTimeout(gocontext.Background(), 20*time.Second)
		defer cancel()
		ctrl.SetServiceAvailable(client.WaitForRunning(ctx))
	}()

	// Backstop persistence for mutations that bypass the app's own flush
	// (folder refreshes from the watcher, preference changes).
	stopSaver := make(chan struct{})
	go func() {
		ticker := time.NewTicker(3 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-stopSaver:
				return
			case <-ticker.C:
				persist(store, agg, prefs)
			}
		}
	}()

	_, runErr := program.Run()

	close(stopSaver)
	persist(store, agg, prefs)

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "innertalk: %v\n", runErr)
		os.Exit(1)
	}
}

// persist writes the conversation snapshot and folder list when needed.
func persist(store *chat.Store, agg *appcontext.Aggregator, prefs *storage.Prefs) {
	if store.Dirty() {
		prefs.SaveConversations(store.Snapshot())
		store.ClearDirty()
	}

	var paths []string
	for _, folder := range agg.Folders() {
		paths = append(paths, folder.Path)
	}
	prefs.SaveContextFolders(paths)
}

// pickModel prefers the user's last selection over the configured default.
func pickModel(prefs *storage.Prefs, cfg *config.Config) string {
	if m := prefs.SelectedModel(); m != "" {
		return m
	}
	return cfg.DefaultModel
}

func openLogFile(dataDir string) (*os.File, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(dataDir, "innertalk.log"),
		os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}
