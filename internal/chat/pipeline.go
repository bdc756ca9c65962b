// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jeranaias/aura/internal/command"
	"github.com/jeranaias/aura/internal/intent"
	"github.com/jeranaias/aura/internal/memory"
	"github.com/jeranaias/aura/internal/notes"
	"github.com/jeranaias/aura/internal/ollama"
	"github.com/jeranaias/aura/internal/search"
)

// =============================================================================
// PIPELINE
// =============================================================================

// Chatter is the LLM chat surface the pipeline needs. *ollama.Client
// satisfies this.
type Chatter interface {
	Chat(ctx context.Context, model string, messages []ollama.Message) (*ollama.ChatResponse, error)
}

// Recaller feeds similar past exchanges into chat context.
// *memory.Store satisfies this.
type Recaller interface {
	Recall(ctx context.Context, query string, k int) ([]memory.Recalled, error)
	Remember(ctx context.Context, role, text string) error
}

// Reply is the pipeline's answer to one line of input.
type Reply struct {
	// Text is what to show (and possibly speak).
	Text string

	// Content is extra payload from a command result.
	Content any

	// IsError marks command failures.
	IsError bool

	// Quit signals the caller to exit.
	Quit bool
}

// Pipeline runs input through classification, parsing, and execution,
// falling back to LLM chat. It is synchronous: each Handle call
// completes the whole cycle on the caller's goroutine.
type Pipeline struct {
	Session  *Session
	Registry *command.Registry
	Executor *command.Executor
	LLM      Chatter
	Memory   Recaller // optional

	// Model is the chat model name; empty uses the client default.
	Model string

	// RecallCount is how many remembered exchanges feed the prompt.
	RecallCount int
}

// Handle processes one line of user input and returns what to show.
func (p *Pipeline) Handle(ctx context.Context, input string) Reply {
	input = strings.TrimSpace(input)
	if input == "" {
		return Reply{}
	}

	// Slash commands bypass classification.
	if command.IsSlash(input) {
		d, err := p.Registry.ParseSlash(input)
		if err != nil {
			var verr *command.ValidationError
			if errors.As(err, &verr) {
				return Reply{Text: verr.Error(), IsError: true}
			}
			return Reply{Text: err.Error(), IsError: true}
		}
		return p.runCommand(ctx, d)
	}

	switch intent.Classify(input) {
	case intent.IntentCommand:
		if d, ok := command.ParseNatural(input); ok {
			return p.runCommand(ctx, d)
		}
		// Command-looking text with no pattern falls through to chat.
		return p.chat(ctx, input)

	case intent.IntentSearch:
		if d, ok := command.ParseNatural(input); ok {
			return p.runCommand(ctx, d)
		}
		// Search intent with no matching pattern: the whole input is
		// the query.
		return p.runCommand(ctx, command.Descriptor{
			Kind:   command.KindSearch,
			Query:  input,
			Source: search.SourceWeb,
			Raw:    input,
		})

	default:
		return p.chat(ctx, input)
	}
}

// =============================================================================
// COMMAND PATH
// =============================================================================

func (p *Pipeline) runCommand(ctx context.Context, d command.Descriptor) Reply {
	// A retry replays the previous chat turn when chat was the most
	// recent thing the user did; extra context rides along. Command
	// retries stay in the executor.
	if d.Kind == command.KindRetry {
		if prev, ok := p.Session.LastChat(); ok {
			input := prev
			if extra := strings.TrimSpace(d.Query); extra != "" {
				input = prev + " " + extra
			}
			return p.chat(ctx, input)
		}
	}

	// Note requests about the conversation itself condense the
	// transcript instead of a topic.
	if d.Kind == command.KindNote && d.Action == "create" && referencesConversation(d.Query) {
		if text := p.Session.PlainText(); text != "" {
			d.NoteType = notes.TypeTranscript
			d.Query = text
		}
	}

	res := p.Executor.Execute(ctx, d)
	p.Session.RecordCommand(d)

	reply := Reply{
		Text:    res.Message,
		Content: res.Content,
		IsError: !res.OK(),
		Quit:    d.Kind == command.KindQuit && res.OK(),
	}

	// Fold the exchange into the conversation so the model sees what
	// happened.
	p.Session.Append("user", d.Raw)
	p.Session.Append("assistant", res.Message)
	return reply
}

// =============================================================================
// CHAT PATH
// =============================================================================

func (p *Pipeline) chat(ctx context.Context, input string) Reply {
	if p.LLM == nil {
		return Reply{Text: "chat unavailable: no model client", IsError: true}
	}

	p.Session.RecordChat(input)
	p.Session.Append("user", input)
	messages := p.Session.History()

	// Recalled memories ride along as an extra system message so they
	// never pollute the persisted history.
	if p.Memory != nil && p.RecallCount > 0 {
		if recalled := p.recall(ctx, input); recalled != "" {
			messages = append([]ollama.Message{{Role: "system", Content: recalled}}, messages...)
		}
	}

	resp, err := p.LLM.Chat(ctx, p.Model, messages)
	if err != nil {
		return Reply{Text: fmt.Sprintf("model error: %v", err), IsError: true}
	}

	answer := resp.Message.Content
	p.Session.Append("assistant", answer)

	if p.Memory != nil {
		// Remember failures are non-fatal; the answer still stands.
		_ = p.Memory.Remember(ctx, "user", input)
		_ = p.Memory.Remember(ctx, "assistant", answer)
	}

	return Reply{Text: answer}
}

var conversationRefs = []string{
	"this conversation", "our conversation", "this chat", "this discussion",
	"what we talked about", "what we discussed",
}

// referencesConversation reports whether a note topic asks about the
// dialogue itself rather than an external subject.
func referencesConversation(topic string) bool {
	topic = strings.ToLower(topic)
	for _, ref := range conversationRefs {
		if strings.Contains(topic, ref) {
			return true
		}
	}
	return false
}

// recall formats the nearest remembered exchanges for the prompt.
func (p *Pipeline) recall(ctx context.Context, query string) string {
	recalled, err := p.Memory.Recall(ctx, query, p.RecallCount)
	if err != nil || len(recalled) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Relevant things you remember from earlier conversations:\n")
	for _, r := range recalled {
		fmt.Fprintf(&sb, "- %s: %s\n", r.Role, r.Text)
	}
	return sb.String()
}
