// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

// Well-known store keys.
const (
	keySelectedModel    = "selected_model"
	keySidebarCollapsed = "sidebar_collapsed"
	keyConversations    = "conversations"
	keyContextFolders   = "context_folders"
)

// =============================================================================
// PREFERENCES
// =============================================================================

// Prefs exposes the user preferences kept in the store.
type Prefs struct {
	store *Store
}

// NewPrefs wraps a store with preference accessors.
func NewPrefs(store *Store) *Prefs {
	return &Prefs{store: store}
}

// SelectedModel returns the last selected model name, or "" when unset.
func (p *Prefs) SelectedModel() string {
	v, _ := p.store.Load(keySelectedModel)
	return v
}

// SetSelectedModel records the selected model.
func (p *Prefs) SetSelectedModel(name string) {
	p.store.Save(keySelectedModel, name)
}

// SidebarCollapsed reports whether the conversation sidebar is collapsed.
func (p *Prefs) SidebarCollapsed() bool {
	v, _ := p.store.Load(keySidebarCollapsed)
	return v == "true"
}

// SetSidebarCollapsed records the sidebar state.
func (p *Prefs) SetSidebarCollapsed(collapsed bool) {
	if collapsed {
		p.store.Save(keySidebarCollapsed, "true")
	} else {
		p.store.Save(keySidebarCollapsed, "false")
	}
}

// =============================================================================
// STRUCTURED STATE
// =============================================================================

// LoadConversations unmarshals the persisted conversation snapshot into v.
func (p *Prefs) LoadConversations(v any) bool {
	return p.store.LoadJSON(keyConversations, v)
}

// SaveConversations persists the conversation snapshot.
func (p *Prefs) SaveConversations(v any) {
	p.store.SaveJSON(keyConversations, v)
}

// LoadContextFolders unmarshals the persisted folder list into v.
func (p *Prefs) LoadContextFolders(v any) bool {
	return p.store.LoadJSON(keyContextFolders, v)
}

// SaveContextFolders persists the folder list.
func (p *Prefs) SaveContextFolders(v any) {
	p.store.SaveJSON(keyContextFolders, v)
}
