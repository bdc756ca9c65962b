// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"
	"time"
)

// =============================================================================
// STREAM READER
// =============================================================================

// StreamReader parses the line-delimited JSON of a streaming chat response.
type StreamReader struct {
	reader     *bufio.Reader
	tokenCount int
	startTime  time.Time
}

// NewStreamReader creates a new stream reader from an io.Reader.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{
		reader:    bufio.NewReader(r),
		startTime: time.Now(),
	}
}

// Process reads the stream and calls the callback for each chunk. Blocks
// until the stream completes or the context is cancelled.
func (s *StreamReader) Process(ctx context.Context, callback StreamCallback) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := s.reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return &ClientError{Type: ErrTypeConnection, Message: "stream read failed", Cause: err}
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var resp ChatResponse
		if err := json.Unmarshal([]byte(line), &resp); err != nil {
			// Lines that fail to parse may be an error payload.
			var apiErr OllamaError
			if jsonErr := json.Unmarshal([]byte(line), &apiErr); jsonErr == nil && apiErr.Error != "" {
				return &ClientError{Type: ErrTypeInvalidResponse, Message: apiErr.Error}
			}
			return &ClientError{Type: ErrTypeInvalidResponse, Message: "malformed stream chunk", Cause: err}
		}

		s.tokenCount++
		chunk := StreamChunk{
			Content: resp.Message.Content,
			Model:   resp.Model,
			Done:    resp.Done,
		}
		if resp.Done {
			chunk.TokenCount = s.tokenCount
			chunk.Duration = time.Since(s.startTime)
		}

		callback(chunk)
		if resp.Done {
			return nil
		}
	}
}
