// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package controller orchestrates streaming chat sessions: it is the single
// writer that turns user sends into store mutations and an Ollama token
// stream, enforces at-most-one in-flight generation, and folds tokens,
// completion, errors, and cancellation back into conversation state.
package controller
