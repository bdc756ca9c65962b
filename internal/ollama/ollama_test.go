// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(url string) *Client {
	return NewClientWithConfig(&ClientConfig{
		BaseURL: url,
		Timeout: 2 * time.Second,
		Model:   "test-model",
	})
}

func TestCheckRunning(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	if err := client.CheckRunning(context.Background()); err != nil {
		t.Fatalf("CheckRunning failed: %v", err)
	}
}

func TestCheckRunningNotReachable(t *testing.T) {
	client := newTestClient("http://127.0.0.1:1") // nothing listens here
	err := client.CheckRunning(context.Background())
	if !IsNotRunning(err) {
		t.Errorf("expected not-running error, got %v", err)
	}
}

func TestGenerate(t *testing.T) {
	var gotReq GenerateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotReq)
		json.NewEncoder(w).Encode(GenerateResponse{Response: "generated text", Done: true})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	out, err := client.Generate(context.Background(), "write a note", "you are a companion")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if out != "generated text" {
		t.Errorf("unexpected output: %q", out)
	}
	if gotReq.System != "you are a companion" {
		t.Errorf("system prompt not forwarded: %q", gotReq.System)
	}
	if gotReq.Stream {
		t.Error("Generate must not request streaming")
	}
}

func TestChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ChatResponse{
			Model:   "test-model",
			Message: Message{Role: "assistant", Content: "hello!"},
			Done:    true,
		})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	resp, err := client.Chat(context.Background(), "", []Message{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if resp.Message.Content != "hello!" {
		t.Errorf("unexpected content: %q", resp.Message.Content)
	}
}

func TestChatModelNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.Chat(context.Background(), "missing", nil)
	if err != ErrModelNotFound {
		t.Errorf("expected ErrModelNotFound, got %v", err)
	}
}

func TestChatAPIErrorSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(OllamaError{Error: "out of memory"})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.Chat(context.Background(), "", nil)
	if err == nil || err.Error() != "out of memory" {
		t.Errorf("expected API error message, got %v", err)
	}
}

func TestGenerateEmbedding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embeddings" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(EmbeddingResponse{Embedding: []float64{0.1, 0.2, 0.3}})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	vec, err := client.GenerateEmbedding(context.Background(), "remember this")
	if err != nil {
		t.Fatalf("GenerateEmbedding failed: %v", err)
	}
	if len(vec) != 3 {
		t.Errorf("unexpected embedding length: %d", len(vec))
	}
}

func TestChatStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		enc := json.NewEncoder(w)
		enc.Encode(ChatResponse{Message: Message{Content: "hel"}})
		enc.Encode(ChatResponse{Message: Message{Content: "lo"}})
		enc.Encode(ChatResponse{Done: true})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)

	var got string
	var done bool
	err := client.ChatStream(context.Background(), "", nil, func(chunk StreamChunk) {
		got += chunk.Content
		if chunk.Done {
			done = true
		}
	})
	if err != nil {
		t.Fatalf("ChatStream failed: %v", err)
	}
	if got != "hello" {
		t.Errorf("accumulated content = %q, want %q", got, "hello")
	}
	if !done {
		t.Error("final chunk not marked done")
	}
}

func TestChatStreamCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ChatResponse{Message: Message{Content: "x"}})
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	client := newTestClient(srv.URL)

	errCh := make(chan error, 1)
	go func() {
		errCh <- client.ChatStream(ctx, "", nil, func(chunk StreamChunk) {
			cancel()
		})
	}()

	select {
	case err := <-errCh:
		if err == nil {
			t.Error("expected cancellation error")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("stream did not stop after cancellation")
	}
}
