// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for the local Ollama server: health
// checks, model listing, streaming pulls and deletes, and streaming chat over
// newline-delimited JSON.
package ollama
