// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package models

import (
	"context"
	"sync"

	"github.com/innertalk/innertalk-tui/internal/ollama"
)

// =============================================================================
// LIFECYCLE API
// =============================================================================

// LifecycleAPI is the slice of the Ollama client the manager needs.
// *ollama.Client satisfies it.
type LifecycleAPI interface {
	ListModels(ctx context.Context) ([]ollama.ModelInfo, error)
	PullModel(ctx context.Context, name string, callback ollama.PullCallback) error
	DeleteModel(ctx context.Context, name string) error
}

// =============================================================================
// MANAGER
// =============================================================================

// Manager tracks the locally installed models and drives pulls and deletes.
// Safe for concurrent use.
type Manager struct {
	api LifecycleAPI

	mu        sync.RWMutex
	installed []ollama.ModelInfo
}

// NewManager creates a manager over the given API.
func NewManager(api LifecycleAPI) *Manager {
	return &Manager{api: api}
}

// Refresh fetches the installed model list from the server and caches it.
func (m *Manager) Refresh(ctx context.Context) ([]ollama.ModelInfo, error) {
	list, err := m.api.ListModels(ctx)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.installed = list
	m.mu.Unlock()
	return list, nil
}

// Installed returns the cached model list from the last Refresh.
func (m *Manager) Installed() []ollama.ModelInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ollama.ModelInfo, len(m.installed))
	copy(out, m.installed)
	return out
}

// IsInstalled reports whether a model with exactly this name is installed.
// Names are opaque; "llama3.2" and "llama3.2:latest" are distinct models.
func (m *Manager) IsInstalled(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, info := range m.installed {
		if info.Name == name {
			return true
		}
	}
	return false
}

// Pull downloads a model, forwarding progress events, then refreshes the
// cached list. Blocks until the pull finishes or the context is cancelled.
func (m *Manager) Pull(ctx context.Context, name string, callback ollama.PullCallback) error {
	if err := m.api.PullModel(ctx, name, callback); err != nil {
		return err
	}

	// A failed refresh leaves the cache stale, not the pull failed.
	m.Refresh(ctx)
	return nil
}

// Delete removes a model by exact name and drops it from the cache.
func (m *Manager) Delete(ctx context.Context, name string) error {
	if err := m.api.DeleteModel(ctx, name); err != nil {
		return err
	}

	m.mu.Lock()
	for i, info := range m.installed {
		if info.Name == name {
			m.installed = append(m.installed[:i], m.installed[i+1:]...)
			break
		}
	}
	m.mu.Unlock()
	return nil
}
