// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/innertalk/innertalk-tui/internal/config"
	"github.com/innertalk/innertalk-tui/internal/models"
	"github.com/innertalk/innertalk-tui/internal/ollama"
)

// =============================================================================
// MESSAGES
// =============================================================================

// FolderChangedMsg announces that a context folder was refreshed after a
// file-system change. Sent by the wiring in main, not by this package.
type FolderChangedMsg struct {
	Path string
}

// healthMsg carries a server reachability verdict.
type healthMsg struct {
	ok bool
}

// healthTickMsg schedules the next health check.
type healthTickMsg struct{}

// modelsMsg carries a refreshed installed-model list.
type modelsMsg struct {
	list []ollama.ModelInfo
	err  error
}

// pullProgressMsg carries one progress event of an in-flight model pull.
type pullProgressMsg struct {
	name     string
	progress ollama.PullProgress
}

// pullDoneMsg reports a finished pull.
type pullDoneMsg struct {
	name string
	err  error
}

// =============================================================================
// COMMANDS
// =============================================================================

// healthCheckCmd probes the server once.
func healthCheckCmd(cfg *config.Config) tea.Cmd {
	return func() tea.Msg {
		client := ollama.NewClientWithConfig(&ollama.ClientConfig{
			BaseURL: cfg.Server.URL,
			Timeout: 3 * time.Second,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return healthMsg{ok: client.CheckRunning(ctx) == nil}
	}
}

// healthTickCmd spaces out the health probes.
func healthTickCmd() tea.Cmd {
	return tea.Tick(10*time.Second, func(time.Time) tea.Msg {
		return healthTickMsg{}
	})
}

// refreshModelsCmd fetches the installed model list.
func refreshModelsCmd(mgr *models.Manager) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		list, err := mgr.Refresh(ctx)
		return modelsMsg{list: list, err: err}
	}
}

// PullModel starts a model pull on its own goroutine, streaming progress
// into the program. Exposed so main can wire it to a flag or the UI can
// trigger it from the model panel.
func PullModel(mgr *models.Manager, name string, send func(tea.Msg)) {
	go func() {
		err := mgr.Pull(context.Background(), name, func(p ollama.PullProgress) {
			send(pullProgressMsg{name: name, progress: p})
		})
		send(pullDoneMsg{name: name, err: err})
	}()
}

// DeleteModel removes a model in the background and reports through the
// model list refresh.
func DeleteModel(mgr *models.Manager, name string, send func(tea.Msg)) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		err := mgr.Delete(ctx, name)
		send(pullDoneMsg{name: name, err: err})
	}()
}
