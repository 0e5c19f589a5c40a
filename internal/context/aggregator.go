// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package context

import (
	"errors"
	"log"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrDuplicateFolder indicates the exact path is already registered.
	ErrDuplicateFolder = errors.New("folder already added")

	// ErrFolderNotFound indicates the folder ID is unknown.
	ErrFolderNotFound = errors.New("folder not found")
)

// =============================================================================
// TYPES
// =============================================================================

// Folder is one registered context folder with its in-memory file contents.
type Folder struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Path  string `json:"path"`
	Files []File `json:"-"`
}

// FolderWatcher receives folder roots to watch for changes. The fsnotify
// Notifier implements it; tests substitute a fake.
type FolderWatcher interface {
	Watch(path string) error
	Unwatch(path string) error
}

// contextPreamble introduces the file blocks in the outgoing system entry.
const contextPreamble = "The user has shared the following project files as context. " +
	"Use them to inform your answers.\n\n"

// =============================================================================
// AGGREGATOR
// =============================================================================

// Aggregator tracks context folders and renders them into a prompt block.
// Safe for concurrent use.
type Aggregator struct {
	mu      sync.RWMutex
	folders []*Folder
	watcher FolderWatcher
}

// NewAggregator creates an aggregator. A nil watcher disables change
// notifications; folders still read and refresh on demand.
func NewAggregator(watcher FolderWatcher) *Aggregator {
	return &Aggregator{watcher: watcher}
}

// Folders returns the registered folders in registration order.
func (a *Aggregator) Folders() []*Folder {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]*Folder, len(a.folders))
	copy(out, a.folders)
	return out
}

// AddFolder reads a folder wholesale and registers it for watching. The exact
// path may be registered only once.
func (a *Aggregator) AddFolder(path string) (*Folder, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, f := range a.folders {
		if f.Path == path {
			return nil, ErrDuplicateFolder
		}
	}

	files, err := readFolder(path)
	if err != nil {
		return nil, err
	}

	folder := &Folder{
		ID:    uuid.New().String(),
		Name:  filepath.Base(path),
		Path:  path,
		Files: files,
	}
	a.folders = append(a.folders, folder)

	if a.watcher != nil {
		if err := a.watcher.Watch(path); err != nil {
			log.Printf("context: watch %s: %v", path, err)
		}
	}
	return folder, nil
}

// RefreshFolder re-reads a folder's files wholesale. A folder that became
// unreadable keeps its last good contents.
func (a *Aggregator) RefreshFolder(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	folder := a.findByID(id)
	if folder == nil {
		return ErrFolderNotFound
	}

	files, err := readFolder(folder.Path)
	if err != nil {
		log.Printf("context: refresh %s: %v", folder.Path, err)
		return nil
	}
	folder.Files = files
	return nil
}

// RemoveFolder unregisters a folder and stops watching its path.
func (a *Aggregator) RemoveFolder(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i, f := range a.folders {
		if f.ID == id {
			a.folders = append(a.folders[:i], a.folders[i+1:]...)
			if a.watcher != nil {
				if err := a.watcher.Unwatch(f.Path); err != nil {
					log.Printf("context: unwatch %s: %v", f.Path, err)
				}
			}
			return nil
		}
	}
	return ErrFolderNotFound
}

// HandleChange refreshes the folder whose path exactly matches the
// notification. Notifications for unknown paths, including folders removed
// after the event fired, are silently dropped.
func (a *Aggregator) HandleChange(path string) {
	a.mu.RLock()
	var id string
	for _, f := range a.folders {
		if f.Path == path {
			id = f.ID
			break
		}
	}
	a.mu.RUnlock()

	if id == "" {
		return
	}
	a.RefreshFolder(id)
}

// BuildContextBlock renders all folders into a single prompt block: a fixed
// preamble followed by one delimited block per file, folders in registration
// order and files in read order. Empty when no folders are registered.
func (a *Aggregator) BuildContextBlock() string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if len(a.folders) == 0 {
		return ""
	}

	var blocks []string
	for _, folder := range a.folders {
		for _, file := range folder.Files {
			blocks = append(blocks, "--- "+file.Name+" ---\n"+file.Content)
		}
	}

	return contextPreamble + strings.Join(blocks, "\n\n")
}

func (a *Aggregator) findByID(id string) *Folder {
	for _, f := range a.folders {
		if f.ID == id {
			return f
		}
	}
	return nil
}
