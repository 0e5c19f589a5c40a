// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package context

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// CHANGE NOTIFIER
// =============================================================================

// ChangeFunc receives the root path of a folder whose contents changed.
type ChangeFunc func(folderPath string)

// Notifier watches folder roots with fsnotify and reports changes, coalesced
// per folder over a debounce window. Many rapid edits in one folder produce a
// single notification carrying the folder path.
type Notifier struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration

	mu       sync.Mutex
	onChange ChangeFunc
	roots    []string
	watched  map[string][]string // root -> watched subdirectories
	pending  map[string]time.Time

	ctx    context.Context
	cancel context.CancelFunc
}

// NewNotifier creates a notifier and starts its event loop. onChange is
// called from the notifier's goroutine; it may be nil and set later with
// SetOnChange.
func NewNotifier(debounce time.Duration, onChange ChangeFunc) (*Notifier, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	n := &Notifier{
		watcher:  watcher,
		debounce: debounce,
		onChange: onChange,
		watched:  make(map[string][]string),
		pending:  make(map[string]time.Time),
		ctx:      ctx,
		cancel:   cancel,
	}

	go n.processEvents()
	go n.processPending()
	return n, nil
}

// SetOnChange replaces the change callback.
func (n *Notifier) SetOnChange(fn ChangeFunc) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.onChange = fn
}

// Watch adds a folder root and its subdirectories to the watch list.
func (n *Notifier) Watch(root string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.roots = append(n.roots, root)
	return n.addRecursive(root, root)
}

// Unwatch removes a folder root and everything under it.
func (n *Notifier) Unwatch(root string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	for i, r := range n.roots {
		if r == root {
			n.roots = append(n.roots[:i], n.roots[i+1:]...)
			break
		}
	}

	for _, dir := range n.watched[root] {
		// Best effort; the directory may already be gone.
		n.watcher.Remove(dir)
	}
	delete(n.watched, root)
	delete(n.pending, root)
	return nil
}

// Close stops the notifier and releases the underlying watcher.
func (n *Notifier) Close() error {
	n.cancel()
	return n.watcher.Close()
}

// addRecursive walks a directory tree adding watchable directories. Caller
// holds the lock.
func (n *Notifier) addRecursive(root, dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}

		base := filepath.Base(path)
		if path != root && (strings.HasPrefix(base, ".") || skipDirs[base]) {
			return filepath.SkipDir
		}

		if err := n.watcher.Add(path); err != nil {
			return nil
		}
		n.watched[root] = append(n.watched[root], path)
		return nil
	})
}

// =============================================================================
// EVENT LOOP
// =============================================================================

func (n *Notifier) processEvents() {
	for {
		select {
		case <-n.ctx.Done():
			return

		case event, ok := <-n.watcher.Events:
			if !ok {
				return
			}

			const relevant = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename
			if event.Op&relevant == 0 {
				continue
			}
			n.handleEvent(event)

		case _, ok := <-n.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are non-fatal; the next refresh resyncs.
		}
	}
}

func (n *Notifier) handleEvent(event fsnotify.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()

	root := n.ownerOf(event.Name)
	if root == "" {
		return
	}

	// New subdirectories join the watch so nested edits keep arriving.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			n.addRecursive(root, event.Name)
		}
	}

	n.pending[root] = time.Now()
}

// ownerOf maps an event path to its registered folder root. Caller holds the
// lock.
func (n *Notifier) ownerOf(path string) string {
	for _, root := range n.roots {
		if path == root || strings.HasPrefix(path, root+string(filepath.Separator)) {
			return root
		}
	}
	return ""
}

// processPending fires debounced notifications.
func (n *Notifier) processPending() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-n.ctx.Done():
			return

		case <-ticker.C:
			now := time.Now()

			n.mu.Lock()
			var ready []string
			for root, changed := range n.pending {
				if now.Sub(changed) >= n.debounce {
					ready = append(ready, root)
					delete(n.pending, root)
				}
			}
			fn := n.onChange
			n.mu.Unlock()

			if fn == nil {
				continue
			}
			for _, root := range ready {
				fn(root)
			}
		}
	}
}
