// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/innertalk/innertalk-tui/internal/models"
)

// =============================================================================
// VIEW
// =============================================================================

func (a *App) View() string {
	if !a.ready {
		return "Starting..."
	}

	if a.modelsOpen {
		return a.renderModelPanel()
	}
	if a.foldersOpen {
		return a.renderFoldersPanel()
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		a.viewport.View(),
		a.input.View(),
	)

	var body string
	if a.sidebarOpen {
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			a.renderSidebar(a.height-1),
			content,
		)
	} else {
		body = content
	}

	return lipgloss.JoinVertical(lipgloss.Left, body, a.renderStatusBar())
}

// =============================================================================
// STATUS BAR
// =============================================================================

func (a *App) renderStatusBar() string {
	var parts []string

	if a.serverUp {
		parts = append(parts, statusOKStyle.Render("● ollama"))
	} else {
		parts = append(parts, statusDownStyle.Render("○ ollama down"))
	}

	if conv := a.store.Active(); conv != nil {
		parts = append(parts, mutedStyle.Render(conv.Model))
	}

	if a.pulling {
		parts = append(parts, a.renderPullStatus())
	} else if a.streaming {
		parts = append(parts, a.spinner.View()+a.status)
	} else if a.status != "" {
		parts = append(parts, a.status)
	}

	parts = append(parts, mutedStyle.Render("C-n new · C-b sidebar · C-l models · C-f folders · esc cancel · C-c quit"))

	return statusBarStyle.Width(a.width).Render(strings.Join(parts, "  "))
}

// renderPullStatus formats in-flight pull progress for the status bar.
func (a *App) renderPullStatus() string {
	p := a.pullProgress
	if p.Total > 0 {
		pct := float64(p.Completed) / float64(p.Total) * 100
		return fmt.Sprintf("pulling %s: %s %.0f%%", a.pullName, p.Status, pct)
	}
	return fmt.Sprintf("pulling %s: %s", a.pullName, p.Status)
}

// =============================================================================
// MODEL PANEL
// =============================================================================

// renderModelPanel lists installed models and memory-fitting suggestions.
func (a *App) renderModelPanel() string {
	var b strings.Builder

	b.WriteString(panelTitleStyle.Render("Installed Models"))
	b.WriteString("\n\n")

	installed := a.mgr.Installed()
	if len(installed) == 0 {
		b.WriteString(mutedStyle.Render("No models installed yet.\n"))
	}
	selected := a.prefs.SelectedModel()
	for _, info := range installed {
		marker := "  "
		if info.Name == selected {
			marker = sidebarActiveStyle.Render("> ")
		}
		b.WriteString(fmt.Sprintf("%s%-32s %s\n", marker, info.Name, mutedStyle.Render(info.FormatSize())))
	}

	b.WriteString("\n")
	b.WriteString(panelTitleStyle.Render("Suggested"))
	b.WriteString("\n\n")
	for i, rec := range a.recommendations() {
		b.WriteString(fmt.Sprintf("  %d. %-24s %s\n", i+1, rec.Name, mutedStyle.Render(rec.Description)))
	}

	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("1-9 pull suggestion · d delete selected · esc close"))

	panel := panelStyle.Width(min(a.width-4, 76)).Render(b.String())
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, panel)
}

// =============================================================================
// FOLDERS PANEL
// =============================================================================

// renderFoldersPanel lists the shared context folders with their file counts.
func (a *App) renderFoldersPanel() string {
	var b strings.Builder

	b.WriteString(panelTitleStyle.Render("Context Folders"))
	b.WriteString("\n\n")

	folders := a.agg.Folders()
	if len(folders) == 0 {
		b.WriteString(mutedStyle.Render("No folders shared yet. Type /add <path> in the input.\n"))
	}
	for i, folder := range folders {
		detail := fmt.Sprintf("%d files · %s", len(folder.Files), folder.Path)
		b.WriteString(fmt.Sprintf("  %d. %-24s %s\n", i+1, folder.Name, mutedStyle.Render(detail)))
	}

	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("/add <path> share · 1-9 remove · r refresh all · esc close"))

	panel := panelStyle.Width(min(a.width-4, 76)).Render(b.String())
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, panel)
}

// recommendations suggests models that fit host memory and are not yet
// installed.
func (a *App) recommendations() []models.Recommendation {
	var out []models.Recommendation
	for _, rec := range models.Recommended(models.HostMemoryGB()) {
		if !a.mgr.IsInstalled(rec.Name) {
			out = append(out, rec)
		}
	}
	return out
}
