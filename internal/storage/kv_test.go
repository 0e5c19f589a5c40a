// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStore_Roundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")

	s := Open(path)
	s.Save("selected_model", "llama3.2")
	s.Save("sidebar_collapsed", "true")

	reopened := Open(path)
	if v, ok := reopened.Load("selected_model"); !ok || v != "llama3.2" {
		t.Errorf("Load = %q, %v; want 'llama3.2', true", v, ok)
	}
	if v, _ := reopened.Load("sidebar_collapsed"); v != "true" {
		t.Errorf("Load = %q, want 'true'", v)
	}
}

func TestStore_MissingKey(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "store.json"))
	if _, ok := s.Load("nope"); ok {
		t.Error("missing key should not be found")
	}
}

func TestStore_MissingFileLoadsEmpty(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "does", "not", "exist.json"))
	if _, ok := s.Load("anything"); ok {
		t.Error("missing file should load as empty state")
	}
}

func TestStore_CorruptFileLoadsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := Open(path)
	if _, ok := s.Load("anything"); ok {
		t.Error("corrupt file should load as empty state")
	}

	// The store still accepts writes afterwards.
	s.Save("k", "v")
	if v, ok := s.Load("k"); !ok || v != "v" {
		t.Errorf("Load after corrupt open = %q, %v", v, ok)
	}
}

func TestStore_Delete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")

	s := Open(path)
	s.Save("k", "v")
	s.Delete("k")

	if _, ok := s.Load("k"); ok {
		t.Error("deleted key should be gone")
	}
	if _, ok := Open(path).Load("k"); ok {
		t.Error("deleted key should be gone after reopen")
	}
}

func TestStore_JSONHelpers(t *testing.T) {
	type prefs struct {
		Model string `json:"model"`
		Wide  bool   `json:"wide"`
	}

	s := Open(filepath.Join(t.TempDir(), "store.json"))
	s.SaveJSON("prefs", prefs{Model: "mistral", Wide: true})

	var got prefs
	if !s.LoadJSON("prefs", &got) {
		t.Fatal("LoadJSON should find the key")
	}
	if got.Model != "mistral" || !got.Wide {
		t.Errorf("LoadJSON = %+v", got)
	}

	s.Save("bad", "{truncated")
	if s.LoadJSON("bad", &got) {
		t.Error("unparseable value should report false")
	}
}

func TestPrefs(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "store.json"))
	p := NewPrefs(s)

	if p.SelectedModel() != "" {
		t.Error("unset model should be empty")
	}
	p.SetSelectedModel("llama3.2")
	if p.SelectedModel() != "llama3.2" {
		t.Errorf("SelectedModel = %q", p.SelectedModel())
	}

	if p.SidebarCollapsed() {
		t.Error("sidebar defaults to expanded")
	}
	p.SetSidebarCollapsed(true)
	if !p.SidebarCollapsed() {
		t.Error("SetSidebarCollapsed(true) not reflected")
	}
}
