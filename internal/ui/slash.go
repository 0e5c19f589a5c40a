// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/innertalk/innertalk-tui/internal/chat"
)

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// maxAttachmentSize is the per-file ceiling for /attach, matching the limit
// the context reader applies to folder files.
const maxAttachmentSize = 1 << 20 // 1 MB

// handleCommand interprets a slash command typed into the input and reports
// whether it consumed the text. Unrecognized slash text falls through and is
// sent as an ordinary message.
func (a *App) handleCommand(text string) bool {
	name, arg, _ := strings.Cut(strings.TrimSpace(text), " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "/add":
		a.addFolder(arg)
	case "/remove":
		a.removeFolder(arg)
	case "/refresh":
		a.refreshFolders()
	case "/folders":
		a.foldersOpen = true
	case "/attach":
		a.attachFile(arg)
	default:
		return false
	}

	a.input.Reset()
	return true
}

// addFolder shares a project folder as conversation context.
func (a *App) addFolder(path string) {
	if path == "" {
		a.status = "Usage: /add <folder path>"
		return
	}

	folder, err := a.agg.AddFolder(expandPath(path))
	if err != nil {
		a.status = errorStyle.Render("Add folder: " + err.Error())
		return
	}

	a.status = fmt.Sprintf("Added %s (%d files)", folder.Name, len(folder.Files))
	a.persistNow()
}

// removeFolder unshares a context folder, matched by name or path.
func (a *App) removeFolder(arg string) {
	if arg == "" {
		a.status = "Usage: /remove <folder name or path>"
		return
	}

	expanded := expandPath(arg)
	for _, folder := range a.agg.Folders() {
		if folder.Name == arg || folder.Path == arg || folder.Path == expanded {
			a.agg.RemoveFolder(folder.ID)
			a.status = "Removed " + folder.Name
			a.persistNow()
			return
		}
	}
	a.status = errorStyle.Render("No folder named " + arg)
}

// refreshFolders re-reads every shared folder wholesale.
func (a *App) refreshFolders() {
	folders := a.agg.Folders()
	for _, folder := range folders {
		a.agg.RefreshFolder(folder.ID)
	}
	a.status = fmt.Sprintf("Refreshed %d folders", len(folders))
}

// attachFile stages a file to ride along with the next message.
func (a *App) attachFile(path string) {
	if path == "" {
		a.status = "Usage: /attach <file path>"
		return
	}

	full := expandPath(path)
	data, err := os.ReadFile(full)
	if err != nil {
		a.status = errorStyle.Render("Attach: " + err.Error())
		return
	}
	if len(data) > maxAttachmentSize {
		a.status = errorStyle.Render("Attach: " + filepath.Base(full) + " is larger than 1 MB")
		return
	}

	a.pending = append(a.pending, chat.Attachment{
		Name:    filepath.Base(full),
		Path:    full,
		Content: string(data),
	})
	a.status = fmt.Sprintf("Attached %s; it will be sent with your next message", filepath.Base(full))
}

// expandPath resolves a leading ~ so pasted shell paths work as typed.
func expandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
