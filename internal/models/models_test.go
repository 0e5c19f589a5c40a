// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package models

import (
	"context"
	"errors"
	"testing"

	"github.com/innertalk/innertalk-tui/internal/ollama"
)

// fakeAPI scripts the lifecycle calls.
type fakeAPI struct {
	models    []ollama.ModelInfo
	listErr   error
	pullErr   error
	deleteErr error
	pulled    []string
	deleted   []string
}

func (f *fakeAPI) ListModels(ctx context.Context) ([]ollama.ModelInfo, error) {
	return f.models, f.listErr
}

func (f *fakeAPI) PullModel(ctx context.Context, name string, cb ollama.PullCallback) error {
	if f.pullErr != nil {
		return f.pullErr
	}
	f.pulled = append(f.pulled, name)
	cb(ollama.PullProgress{Status: "downloading", Completed: 1, Total: 2})
	cb(ollama.PullProgress{Status: "success", Done: true})
	f.models = append(f.models, ollama.ModelInfo{Name: name})
	return nil
}

func (f *fakeAPI) DeleteModel(ctx context.Context, name string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, name)
	return nil
}

// =============================================================================
// MANAGER TESTS
// =============================================================================

func TestManager_RefreshAndInstalled(t *testing.T) {
	api := &fakeAPI{models: []ollama.ModelInfo{{Name: "llama3.2", Size: 2048}}}
	m := NewManager(api)

	list, err := m.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if len(list) != 1 || list[0].Name != "llama3.2" {
		t.Errorf("list = %+v", list)
	}
	if got := m.Installed(); len(got) != 1 {
		t.Errorf("Installed = %+v", got)
	}
}

func TestManager_RefreshError(t *testing.T) {
	api := &fakeAPI{listErr: errors.New("down")}
	m := NewManager(api)

	if _, err := m.Refresh(context.Background()); err == nil {
		t.Error("Refresh should surface the error")
	}
}

func TestManager_IsInstalled_ExactMatchOnly(t *testing.T) {
	api := &fakeAPI{models: []ollama.ModelInfo{{Name: "llama3.2:latest"}}}
	m := NewManager(api)
	m.Refresh(context.Background())

	if !m.IsInstalled("llama3.2:latest") {
		t.Error("exact name should match")
	}
	// Names are opaque: no prefix or tag normalization.
	if m.IsInstalled("llama3.2") {
		t.Error("prefix must not match")
	}
}

func TestManager_PullForwardsProgressAndRefreshes(t *testing.T) {
	api := &fakeAPI{}
	m := NewManager(api)

	var events []ollama.PullProgress
	err := m.Pull(context.Background(), "mistral", func(p ollama.PullProgress) {
		events = append(events, p)
	})
	if err != nil {
		t.Fatalf("Pull: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if !events[1].Done {
		t.Error("final event should be done")
	}
	if !m.IsInstalled("mistral") {
		t.Error("pulled model should appear installed after refresh")
	}
}

func TestManager_PullError(t *testing.T) {
	api := &fakeAPI{pullErr: errors.New("no such model")}
	m := NewManager(api)

	if err := m.Pull(context.Background(), "ghost", func(ollama.PullProgress) {}); err == nil {
		t.Error("Pull should surface the error")
	}
}

func TestManager_DeleteDropsFromCache(t *testing.T) {
	api := &fakeAPI{models: []ollama.ModelInfo{{Name: "a"}, {Name: "b"}}}
	m := NewManager(api)
	m.Refresh(context.Background())

	if err := m.Delete(context.Background(), "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if m.IsInstalled("a") {
		t.Error("deleted model still cached")
	}
	if !m.IsInstalled("b") {
		t.Error("unrelated model dropped")
	}
}

func TestManager_DeleteError(t *testing.T) {
	api := &fakeAPI{models: []ollama.ModelInfo{{Name: "a"}}, deleteErr: errors.New("in use")}
	m := NewManager(api)
	m.Refresh(context.Background())

	if err := m.Delete(context.Background(), "a"); err == nil {
		t.Error("Delete should surface the error")
	}
	if !m.IsInstalled("a") {
		t.Error("failed delete must not drop the cache entry")
	}
}

// =============================================================================
// MEMORY TESTS
// =============================================================================

func TestMemoryGBFromMeminfo(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{"16gb host", "MemTotal:       16384000 kB\nMemFree:        1234 kB\n", 15},
		{"32gb host", "MemTotal:       33554432 kB\n", 32},
		{"missing total", "MemFree:        1234 kB\n", 0},
		{"garbage", "MemTotal:       lots kB\n", 0},
		{"empty", "", 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := memoryGBFromMeminfo([]byte(tc.raw)); got != tc.want {
				t.Errorf("memoryGBFromMeminfo = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestRecommended(t *testing.T) {
	all := Recommended(0)
	if len(all) != len(catalog) {
		t.Errorf("unknown memory should return full catalog, got %d", len(all))
	}

	small := Recommended(8)
	for _, rec := range small {
		if rec.MinMemoryGB > 8 {
			t.Errorf("%s needs %d GB, must not be recommended for 8", rec.Name, rec.MinMemoryGB)
		}
	}
	if len(small) == 0 {
		t.Error("an 8 GB host should still get recommendations")
	}

	if len(Recommended(64)) != len(catalog) {
		t.Error("a 64 GB host fits everything")
	}
}
