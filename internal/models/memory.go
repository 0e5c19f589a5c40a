// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package models

import (
	"bufio"
	"bytes"
	"os"
	"strconv"
	"strings"
)

// =============================================================================
// HOST MEMORY
// =============================================================================

// HostMemoryGB returns the host's total memory in whole gigabytes, or 0 when
// it cannot be determined. Callers treat 0 as "unknown", not "none".
func HostMemoryGB() int {
	raw, err := os.ReadFile("/proc/meminfo")
	if err != nil {
		return 0
	}
	return memoryGBFromMeminfo(raw)
}

// memoryGBFromMeminfo parses the MemTotal line of a /proc/meminfo dump.
func memoryGBFromMeminfo(raw []byte) int {
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "MemTotal:") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			return 0
		}
		kb, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return 0
		}
		return int(kb / (1024 * 1024))
	}
	return 0
}

// =============================================================================
// RECOMMENDATIONS
// =============================================================================

// Recommendation describes a model worth suggesting, with the memory it
// needs to run comfortably.
type Recommendation struct {
	Name        string
	Description string
	MinMemoryGB int
}

// catalog lists the suggested starter models, smallest first.
var catalog = []Recommendation{
	{Name: "llama3.2:1b", Description: "Llama 3.2 1B, fast and tiny", MinMemoryGB: 4},
	{Name: "llama3.2", Description: "Llama 3.2 3B, good general default", MinMemoryGB: 8},
	{Name: "mistral", Description: "Mistral 7B, strong all-rounder", MinMemoryGB: 16},
	{Name: "llama3.1:8b", Description: "Llama 3.1 8B, higher quality", MinMemoryGB: 16},
	{Name: "qwen2.5-coder:7b", Description: "Qwen 2.5 Coder 7B, code focused", MinMemoryGB: 16},
	{Name: "llama3.1:70b", Description: "Llama 3.1 70B, best quality", MinMemoryGB: 64},
}

// Recommended returns the catalog entries that fit in memGB of host memory.
// With memGB 0 (unknown) the full catalog is returned and the user decides.
func Recommended(memGB int) []Recommendation {
	if memGB <= 0 {
		out := make([]Recommendation, len(catalog))
		copy(out, catalog)
		return out
	}

	var out []Recommendation
	for _, rec := range catalog {
		if rec.MinMemoryGB <= memGB {
			out = append(out, rec)
		}
	}
	return out
}
