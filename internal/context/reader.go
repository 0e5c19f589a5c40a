// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package context

import (
	"os"
	"path/filepath"
	"strings"
)

// =============================================================================
// FOLDER READING
// =============================================================================

const (
	// maxFileSize is the per-file size ceiling for context inclusion.
	maxFileSize = 1 << 20 // 1 MB

	// maxDepth is how deep the recursive read descends below the folder root.
	maxDepth = 5
)

// textExtensions is the whitelist of file extensions read into context.
var textExtensions = map[string]bool{
	".txt": true, ".md": true, ".markdown": true,
	".go": true, ".rs": true, ".py": true, ".java": true,
	".js": true, ".jsx": true, ".ts": true, ".tsx": true,
	".c": true, ".h": true, ".cpp": true, ".hpp": true,
	".css": true, ".html": true, ".xml": true,
	".json": true, ".toml": true, ".yaml": true, ".yml": true,
	".sh": true, ".sql": true, ".csv": true,
}

// skipDirs are directory names excluded from the recursive read.
var skipDirs = map[string]bool{
	"node_modules": true,
	"target":       true,
	"dist":         true,
}

// File is one eligible file read from a context folder.
type File struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Content string `json:"content"`
}

// readFolder recursively reads every eligible text file under root, in
// directory-listing order. Unreadable entries are skipped, never fatal.
func readFolder(root string) ([]File, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, &os.PathError{Op: "read", Path: root, Err: os.ErrInvalid}
	}

	var files []File
	readDir(root, 0, &files)
	return files, nil
}

func readDir(dir string, depth int, out *[]File) {
	if depth > maxDepth {
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		path := filepath.Join(dir, name)
		if entry.IsDir() {
			if skipDirs[name] {
				continue
			}
			readDir(path, depth+1, out)
			continue
		}

		if !eligible(entry) {
			continue
		}

		content, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		*out = append(*out, File{Name: name, Path: path, Content: string(content)})
	}
}

// eligible reports whether a directory entry is a context-worthy text file.
func eligible(entry os.DirEntry) bool {
	if !textExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
		return false
	}
	info, err := entry.Info()
	if err != nil {
		return false
	}
	return info.Size() <= maxFileSize
}
