// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
)

// =============================================================================
// CHAT STREAM READER
// =============================================================================

// StreamReader parses a newline-delimited JSON chat stream into StreamChunks.
type StreamReader struct {
	reader *bufio.Reader
}

// NewStreamReader creates a stream reader over an NDJSON body.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{reader: bufio.NewReader(r)}
}

// Process reads the stream and calls the callback for each chunk. Returns
// when the terminal chunk arrives, the body ends, or the context is
// cancelled.
func (s *StreamReader) Process(ctx context.Context, callback StreamCallback) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			chunk, err := s.readChunk()
			if err != nil {
				if err == io.EOF {
					return nil
				}
				return err
			}

			if chunk != nil {
				callback(*chunk)
				if chunk.Done {
					return nil
				}
			}
		}
	}
}

// readChunk reads and parses a single line from the stream. A nil chunk with
// nil error means the line was empty or malformed and should be skipped.
func (s *StreamReader) readChunk() (*StreamChunk, error) {
	line, err := s.reader.ReadBytes('\n')
	if err != nil {
		if err == io.EOF && len(line) == 0 {
			return nil, io.EOF
		}
		// Try to process the last unterminated line on EOF.
		if len(line) == 0 {
			return nil, err
		}
	}

	if len(line) == 0 {
		return nil, nil
	}

	var response struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		Done          bool  `json:"done"`
		TotalDuration int64 `json:"total_duration,omitempty"`
	}
	if err := json.Unmarshal(line, &response); err != nil {
		// Skip malformed lines.
		return nil, nil
	}

	return &StreamChunk{
		Content:       response.Message.Content,
		Done:          response.Done,
		TotalDuration: response.TotalDuration,
	}, nil
}

// =============================================================================
// PULL STREAM READER
// =============================================================================

// PullReader parses a newline-delimited JSON pull stream into PullProgress
// events. The server signals completion with a "success" status line.
type PullReader struct {
	reader *bufio.Reader
}

// NewPullReader creates a pull reader over an NDJSON body.
func NewPullReader(r io.Reader) *PullReader {
	return &PullReader{reader: bufio.NewReader(r)}
}

// Process reads the stream and calls the callback for each progress event.
func (p *PullReader) Process(ctx context.Context, callback PullCallback) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			event, err := p.readEvent()
			if err != nil {
				if err == io.EOF {
					return nil
				}
				return err
			}

			if event != nil {
				callback(*event)
				if event.Done {
					return nil
				}
			}
		}
	}
}

func (p *PullReader) readEvent() (*PullProgress, error) {
	line, err := p.reader.ReadBytes('\n')
	if err != nil {
		if err == io.EOF && len(line) == 0 {
			return nil, io.EOF
		}
		if len(line) == 0 {
			return nil, err
		}
	}

	if len(line) == 0 {
		return nil, nil
	}

	var chunk struct {
		Status    string `json:"status"`
		Completed int64  `json:"completed,omitempty"`
		Total     int64  `json:"total,omitempty"`
	}
	if err := json.Unmarshal(line, &chunk); err != nil {
		return nil, nil
	}

	if chunk.Status == "success" {
		return &PullProgress{Status: chunk.Status, Done: true}, nil
	}

	return &PullProgress{
		Status:    chunk.Status,
		Completed: chunk.Completed,
		Total:     chunk.Total,
	}, nil
}
