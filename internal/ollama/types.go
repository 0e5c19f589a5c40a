// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

// =============================================================================
// REQUEST TYPES
// =============================================================================

// Message is one role/content pair in a chat request.
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// ChatRequest is the request body for the /api/chat endpoint.
type ChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

// PullRequest is the request body for the /api/pull endpoint.
type PullRequest struct {
	Name   string `json:"name"`
	Stream bool   `json:"stream"`
}

// DeleteRequest is the request body for the /api/delete endpoint.
type DeleteRequest struct {
	Name string `json:"name"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// ModelInfo describes one locally installed model.
type ModelInfo struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// ListModelsResponse is the response from the /api/tags endpoint.
type ListModelsResponse struct {
	Models []ModelInfo `json:"models"`
}

// serverError is the error envelope Ollama returns on non-200 responses.
type serverError struct {
	Error string `json:"error"`
}

// =============================================================================
// STREAMING TYPES
// =============================================================================

// StreamChunk is one event from a streaming chat response. Exactly one of
// Content, Done, or Error is meaningful per chunk; a non-nil Error implies
// Done.
type StreamChunk struct {
	// Content is the token text carried by this chunk.
	Content string

	// Done marks the terminal chunk of the stream.
	Done bool

	// TotalDuration is the generation time reported on the terminal chunk,
	// in nanoseconds.
	TotalDuration int64

	// Error is set when the stream failed.
	Error error
}

// PullProgress is one event from a streaming model pull. Completed and Total
// are zero while the server reports status-only phases (e.g. "verifying
// sha256 digest").
type PullProgress struct {
	Status    string
	Completed int64
	Total     int64

	// Done marks the terminal event: the server reported "success".
	Done bool

	// Error is set when the pull failed.
	Error error
}

// =============================================================================
// HELPERS
// =============================================================================

// NewUserMessage creates a user message.
func NewUserMessage(content string) Message {
	return Message{Role: "user", Content: content}
}

// NewAssistantMessage creates an assistant message.
func NewAssistantMessage(content string) Message {
	return Message{Role: "assistant", Content: content}
}

// NewSystemMessage creates a system message.
func NewSystemMessage(content string) Message {
	return Message{Role: "system", Content: content}
}

// FormatSize renders the model size in human-readable form.
func (m ModelInfo) FormatSize() string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
	)

	switch {
	case m.Size >= gb:
		return formatFloat(float64(m.Size)/gb) + " GB"
	case m.Size >= mb:
		return formatFloat(float64(m.Size)/mb) + " MB"
	case m.Size >= kb:
		return formatFloat(float64(m.Size)/kb) + " KB"
	default:
		return formatFloat(float64(m.Size)) + " B"
	}
}

func formatFloat(f float64) string {
	whole := int64(f)
	frac := int64((f - float64(whole)) * 10)
	if frac == 0 {
		return itoa(whole)
	}
	return itoa(whole) + "." + itoa(frac)
}

func itoa(n int64) string {
	if n == 0 {
		return "0"
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}
