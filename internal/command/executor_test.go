// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package command

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/aura/internal/config"
	"github.com/jeranaias/aura/internal/notes"
	"github.com/jeranaias/aura/internal/screenshot"
	"github.com/jeranaias/aura/internal/search"
	"github.com/jeranaias/aura/internal/xgo"
)

// =============================================================================
// STUB COLLABORATORS
// =============================================================================

type stubNotes struct {
	notes   map[string]*notes.Note
	created []string
}

func newStubNotes() *stubNotes {
	return &stubNotes{notes: make(map[string]*notes.Note)}
}

func (s *stubNotes) Create(t notes.Type, content string) (string, error) {
	id := "note-" + content[:min(4, len(content))]
	s.notes[id] = &notes.Note{ID: id, Type: t, Title: content, Content: content}
	s.created = append(s.created, content)
	return id, nil
}

func (s *stubNotes) Get(id string) (*notes.Note, error) {
	if n, ok := s.notes[id]; ok {
		return n, nil
	}
	return nil, notes.ErrNoteNotFound
}

func (s *stubNotes) List() ([]notes.Note, error) {
	var out []notes.Note
	for _, n := range s.notes {
		out = append(out, *n)
	}
	return out, nil
}

func (s *stubNotes) Delete(id string) error {
	if _, ok := s.notes[id]; !ok {
		return notes.ErrNoteNotFound
	}
	delete(s.notes, id)
	return nil
}

type stubSearch struct {
	queries []string
	sources []search.Source
}

func (s *stubSearch) Dispatch(query string, source search.Source) (string, error) {
	s.queries = append(s.queries, query)
	s.sources = append(s.sources, source)
	if source == search.SourceAurora {
		return search.AuroraURL, nil
	}
	return "https://example.test/?q=" + query, nil
}

type stubSpeaker struct {
	enabled bool
	rate    float64
}

func (s *stubSpeaker) SetEnabled(e bool) { s.enabled = e }
func (s *stubSpeaker) Enabled() bool     { return s.enabled }
func (s *stubSpeaker) SetRate(r float64) error {
	if r < 0.5 || r > 2.0 {
		return &rateErr{}
	}
	s.rate = r
	return nil
}
func (s *stubSpeaker) Rate() float64 { return s.rate }

type rateErr struct{}

func (*rateErr) Error() string { return "voice rate out of range" }

type stubApps struct {
	known      map[string]string
	launched   []string
	terminated []string
}

func (s *stubApps) Resolve(name string) (string, bool) {
	p, ok := s.known[name]
	return p, ok
}

type stubBridge struct {
	status xgo.Status
}

func (b *stubBridge) Connect(_ context.Context, addr string) error {
	b.status = xgo.Status{Connected: true, Address: addr, Since: time.Now()}
	return nil
}
func (b *stubBridge) Disconnect() error {
	b.status = xgo.Status{}
	return nil
}
func (b *stubBridge) Status() xgo.Status { return b.status }

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func testExecutor(t *testing.T) (*Executor, *stubNotes, *stubSearch, *stubSpeaker, *stubApps) {
	t.Helper()

	noteStore := newStubNotes()
	dispatcher := &stubSearch{}
	speaker := &stubSpeaker{}
	appStub := &stubApps{known: map[string]string{"notepad": "/usr/bin/notepad"}}

	deps := Deps{
		Config:   config.NewServiceAt(config.Default(), filepath.Join(t.TempDir(), "config.json")),
		Notes:    noteStore,
		Search:   dispatcher,
		Speaker:  speaker,
		Apps:     appStub,
		Bridge:   &stubBridge{},
		Launch:   func(path string, args ...string) error { appStub.launched = append(appStub.launched, path); return nil },
		Terminate: func(name string) (bool, error) {
			appStub.terminated = append(appStub.terminated, name)
			return name == "notepad", nil
		},
		Capture: func(_ context.Context, _ screenshot.Mode) ([]byte, error) {
			return []byte("png-bytes"), nil
		},
	}
	return NewExecutor(deps, NewRegistry()), noteStore, dispatcher, speaker, appStub
}

// =============================================================================
// SCENARIOS
// =============================================================================

// "search for python tutorials" parses to a web search and succeeds.
func TestScenarioGenericSearch(t *testing.T) {
	e, _, dispatcher, _, _ := testExecutor(t)

	d, ok := ParseNatural("search for python tutorials")
	if !ok {
		t.Fatal("no pattern matched")
	}

	res := e.Execute(context.Background(), d)
	if !res.OK() {
		t.Fatalf("result = %+v", res)
	}
	if len(dispatcher.queries) != 1 || dispatcher.queries[0] != "python tutorials" {
		t.Errorf("dispatched %v", dispatcher.queries)
	}
	if dispatcher.sources[0] != search.SourceWeb {
		t.Errorf("source = %q", dispatcher.sources[0])
	}
}

// "/note delete" without an ID is an error result, not a crash.
func TestScenarioNoteDeleteNoID(t *testing.T) {
	e, _, _, _, _ := testExecutor(t)
	r := NewRegistry()

	d, err := r.ParseSlash("/note delete")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	res := e.Execute(context.Background(), d)
	if res.OK() {
		t.Fatal("expected error result")
	}
	if !strings.Contains(strings.ToLower(res.Message), "note id required") {
		t.Errorf("message = %q", res.Message)
	}
}

// "close notepad" terminates the process by name.
func TestScenarioCloseApp(t *testing.T) {
	e, _, _, _, appStub := testExecutor(t)

	d, ok := ParseNatural("close notepad")
	if !ok {
		t.Fatal("no pattern matched")
	}
	if d.Kind != KindSystem || d.Action != "close" || d.Query != "notepad" {
		t.Fatalf("descriptor = %+v", d)
	}

	res := e.Execute(context.Background(), d)
	if !res.OK() {
		t.Fatalf("result = %+v", res)
	}
	if len(appStub.terminated) != 1 || appStub.terminated[0] != "notepad" {
		t.Errorf("terminated = %v", appStub.terminated)
	}
}

// "aurora forecast" opens the fixed NOAA URL regardless of wording.
func TestScenarioAurora(t *testing.T) {
	e, _, dispatcher, _, _ := testExecutor(t)

	for _, input := range []string{"aurora forecast", "check aurora forecast please"} {
		d, ok := ParseNatural(input)
		if !ok {
			t.Fatalf("%q did not match", input)
		}
		res := e.Execute(context.Background(), d)
		if !res.OK() {
			t.Fatalf("result = %+v", res)
		}
		if !strings.Contains(res.Message, search.AuroraURL) {
			t.Errorf("message = %q", res.Message)
		}
	}
	for _, src := range dispatcher.sources {
		if src != search.SourceAurora {
			t.Errorf("source = %q", src)
		}
	}
}

// =============================================================================
// EXECUTOR BEHAVIOR
// =============================================================================

func TestExecuteNoteCreateAndDelete(t *testing.T) {
	e, noteStore, _, _, _ := testExecutor(t)
	ctx := context.Background()

	res := e.Execute(ctx, Descriptor{Kind: KindNote, Action: "create", Query: "water the plants"})
	if !res.OK() {
		t.Fatalf("create failed: %+v", res)
	}
	if len(noteStore.created) != 1 {
		t.Fatalf("created = %v", noteStore.created)
	}

	var id string
	for k := range noteStore.notes {
		id = k
	}
	res = e.Execute(ctx, Descriptor{Kind: KindNote, Action: "delete", Query: id})
	if !res.OK() {
		t.Fatalf("delete failed: %+v", res)
	}

	res = e.Execute(ctx, Descriptor{Kind: KindNote, Action: "delete", Query: id})
	if res.OK() {
		t.Fatal("deleting a missing note must be an error")
	}
}

type stubLLM struct {
	prompts []string
}

func (s *stubLLM) Generate(_ context.Context, prompt, _ string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return "generated note body", nil
}

// The descriptor's note type selects both the stored type and the
// generation prompt. An autonomous tick gets the journal prompt, not
// the general one.
func TestExecuteNoteCreateType(t *testing.T) {
	e, noteStore, _, _, _ := testExecutor(t)
	llm := &stubLLM{}
	e.deps.LLM = llm
	ctx := context.Background()

	res := e.Execute(ctx, Descriptor{
		Kind:     KindNote,
		Action:   "create",
		Query:    "user opened three editors",
		NoteType: notes.TypeAutonomous,
	})
	if !res.OK() {
		t.Fatalf("result = %+v", res)
	}

	var stored *notes.Note
	for _, n := range noteStore.notes {
		stored = n
	}
	if stored == nil || stored.Type != notes.TypeAutonomous {
		t.Fatalf("stored note = %+v, want autonomous type", stored)
	}
	if len(llm.prompts) != 1 || !strings.Contains(llm.prompts[0], "journal") {
		t.Errorf("prompts = %v, want the autonomous template", llm.prompts)
	}

	// No type on the descriptor means a general user note.
	res = e.Execute(ctx, Descriptor{Kind: KindNote, Action: "create", Query: "buy more coffee"})
	if !res.OK() {
		t.Fatalf("result = %+v", res)
	}
	if !strings.Contains(llm.prompts[1], "well-organized note") {
		t.Errorf("prompt = %q, want the general template", llm.prompts[1])
	}
}

func TestExecuteVoiceRate(t *testing.T) {
	e, _, _, speaker, _ := testExecutor(t)
	ctx := context.Background()

	res := e.Execute(ctx, Descriptor{Kind: KindVoice, Action: "rate", Query: "1.5"})
	if !res.OK() {
		t.Fatalf("result = %+v", res)
	}
	if speaker.rate != 1.5 {
		t.Errorf("rate = %v", speaker.rate)
	}

	// Out of range is rejected, not clamped.
	res = e.Execute(ctx, Descriptor{Kind: KindVoice, Action: "rate", Query: "3.0"})
	if res.OK() {
		t.Fatal("out-of-range rate accepted")
	}
	if speaker.rate != 1.5 {
		t.Errorf("rate changed to %v after rejection", speaker.rate)
	}

	res = e.Execute(ctx, Descriptor{Kind: KindVoice, Action: "rate", Query: "fast"})
	if res.OK() {
		t.Fatal("non-numeric rate accepted")
	}
}

func TestExecuteVoiceToggle(t *testing.T) {
	e, _, _, speaker, _ := testExecutor(t)
	ctx := context.Background()

	e.Execute(ctx, Descriptor{Kind: KindVoice, Action: "on"})
	if !speaker.enabled {
		t.Error("voice not enabled")
	}
	e.Execute(ctx, Descriptor{Kind: KindVoice, Action: "off"})
	if speaker.enabled {
		t.Error("voice not disabled")
	}
}

func TestExecuteConfigShowIdempotent(t *testing.T) {
	e, _, _, _, _ := testExecutor(t)
	ctx := context.Background()

	first := e.Execute(ctx, Descriptor{Kind: KindConfig, Action: "show"})
	second := e.Execute(ctx, Descriptor{Kind: KindConfig, Action: "show"})
	if !first.OK() || !second.OK() {
		t.Fatalf("results = %+v / %+v", first, second)
	}
	if first.Content != second.Content {
		t.Error("config show not idempotent")
	}
}

// "/config save <json>" merges the partial document into the live
// configuration. String booleans coerce, so a spoken-style payload
// like {"voice":{"enabled":"true"}} still lands as a bool.
func TestExecuteConfigSaveMergesJSON(t *testing.T) {
	e, _, _, _, _ := testExecutor(t)
	ctx := context.Background()

	r := NewRegistry()
	d, err := r.ParseSlash(`/config save {"voice":{"enabled":"true"}}`)
	if err != nil {
		t.Fatal(err)
	}

	res := e.Execute(ctx, d)
	if !res.OK() {
		t.Fatalf("result = %+v", res)
	}
	if cfg := e.deps.Config.Get(); !cfg.Voice.Enabled {
		t.Error("voice.enabled not merged")
	}
}

func TestExecuteConfigSaveRejectsBadInput(t *testing.T) {
	e, _, _, _, _ := testExecutor(t)
	ctx := context.Background()

	res := e.Execute(ctx, Descriptor{Kind: KindConfig, Action: "save", Query: "{nope"})
	if res.OK() {
		t.Fatal("malformed JSON accepted")
	}

	res = e.Execute(ctx, Descriptor{Kind: KindConfig, Action: "save"})
	if res.OK() {
		t.Fatal("empty payload accepted")
	}
	if !strings.Contains(res.Message, "JSON object") {
		t.Errorf("message = %q", res.Message)
	}
}

func TestExecuteOpenApp(t *testing.T) {
	e, _, _, _, appStub := testExecutor(t)
	ctx := context.Background()

	res := e.Execute(ctx, Descriptor{Kind: KindSystem, Action: "open", Query: "notepad"})
	if !res.OK() {
		t.Fatalf("result = %+v", res)
	}
	if len(appStub.launched) != 1 || appStub.launched[0] != "/usr/bin/notepad" {
		t.Errorf("launched = %v", appStub.launched)
	}

	res = e.Execute(ctx, Descriptor{Kind: KindSystem, Action: "open", Query: "no-such-app"})
	if res.OK() {
		t.Fatal("unknown app opened")
	}
}

func TestExecuteScreenshot(t *testing.T) {
	e, _, _, _, _ := testExecutor(t)

	res := e.Execute(context.Background(), Descriptor{Kind: KindScreenshot, Action: "full"})
	if !res.OK() {
		t.Fatalf("result = %+v", res)
	}
	if res.Content == nil {
		t.Error("screenshot result has no content")
	}
}

func TestExecuteRetry(t *testing.T) {
	e, _, dispatcher, _, _ := testExecutor(t)
	ctx := context.Background()

	last := Descriptor{Kind: KindSearch, Query: "cats", Source: search.SourceWeb}
	e.deps.LastCommand = func() (Descriptor, bool) { return last, true }

	res := e.Execute(ctx, Descriptor{Kind: KindRetry})
	if !res.OK() {
		t.Fatalf("result = %+v", res)
	}
	if len(dispatcher.queries) != 1 || dispatcher.queries[0] != "cats" {
		t.Errorf("retry dispatched %v", dispatcher.queries)
	}

	// A retry of a retry has nothing to do.
	e.deps.LastCommand = func() (Descriptor, bool) { return Descriptor{Kind: KindRetry}, true }
	res = e.Execute(ctx, Descriptor{Kind: KindRetry})
	if res.OK() {
		t.Fatal("retry of retry succeeded")
	}
}

// "try again with <context>" replays the previous command with the
// extra text appended to its query.
func TestExecuteRetryAppendsContext(t *testing.T) {
	e, _, dispatcher, _, _ := testExecutor(t)
	ctx := context.Background()

	last := Descriptor{Kind: KindSearch, Query: "cats", Source: search.SourceWeb}
	e.deps.LastCommand = func() (Descriptor, bool) { return last, true }

	res := e.Execute(ctx, Descriptor{Kind: KindRetry, Query: "wearing hats"})
	if !res.OK() {
		t.Fatalf("result = %+v", res)
	}
	if len(dispatcher.queries) != 1 || dispatcher.queries[0] != "cats wearing hats" {
		t.Errorf("retry dispatched %v", dispatcher.queries)
	}
}

func TestExecuteXGO(t *testing.T) {
	e, _, _, _, _ := testExecutor(t)
	ctx := context.Background()

	res := e.Execute(ctx, Descriptor{Kind: KindXGO, Action: "status"})
	if !res.OK() || !strings.Contains(res.Message, "not connected") {
		t.Fatalf("result = %+v", res)
	}

	res = e.Execute(ctx, Descriptor{Kind: KindXGO, Action: "connect", Query: "10.0.0.5:9999"})
	if !res.OK() {
		t.Fatalf("connect failed: %+v", res)
	}

	res = e.Execute(ctx, Descriptor{Kind: KindXGO, Action: "status"})
	if !res.OK() || !strings.Contains(res.Message, "10.0.0.5:9999") {
		t.Fatalf("status = %+v", res)
	}

	res = e.Execute(ctx, Descriptor{Kind: KindXGO, Action: "disconnect"})
	if !res.OK() {
		t.Fatalf("disconnect failed: %+v", res)
	}
}

// A panicking collaborator becomes an error result, never a panic at
// the caller.
func TestExecuteRecoversPanic(t *testing.T) {
	e, _, _, _, _ := testExecutor(t)
	e.deps.Capture = func(_ context.Context, _ screenshot.Mode) ([]byte, error) {
		panic("display server went away")
	}

	res := e.Execute(context.Background(), Descriptor{Kind: KindScreenshot, Action: "full"})
	if res.OK() {
		t.Fatal("expected error result")
	}
	if !strings.Contains(res.Message, "display server went away") {
		t.Errorf("message = %q", res.Message)
	}
}

func TestExecuteMissingCollaborators(t *testing.T) {
	e := NewExecutor(Deps{}, NewRegistry())
	ctx := context.Background()

	for _, d := range []Descriptor{
		{Kind: KindConfig, Action: "show"},
		{Kind: KindSearch, Query: "x", Source: search.SourceWeb},
		{Kind: KindNote, Action: "list"},
		{Kind: KindProfile, Action: "list"},
		{Kind: KindVoice, Action: "on"},
		{Kind: KindAutonomous, Action: "on"},
		{Kind: KindXGO, Action: "status"},
		{Kind: KindSystem, Action: "open", Query: "x"},
	} {
		res := e.Execute(ctx, d)
		if res.OK() {
			t.Errorf("%v succeeded with nil deps", d.Kind)
		}
	}
}

func TestExecuteHelpListsCommands(t *testing.T) {
	e, _, _, _, _ := testExecutor(t)

	res := e.Execute(context.Background(), Descriptor{Kind: KindHelp})
	if !res.OK() {
		t.Fatalf("result = %+v", res)
	}
	listing, _ := res.Content.(string)
	for _, name := range []string{"/help", "/note", "/search", "/voice", "/xgo"} {
		if !strings.Contains(listing, name) {
			t.Errorf("help missing %s", name)
		}
	}
}

func TestExecuteUnknownEchoes(t *testing.T) {
	e, _, _, _, _ := testExecutor(t)

	res := e.Execute(context.Background(), Descriptor{Kind: KindUnknown, Raw: "/frobnicate"})
	if res.OK() {
		t.Fatal("unknown command succeeded")
	}
	if !strings.Contains(res.Message, "/frobnicate") {
		t.Errorf("message does not echo input: %q", res.Message)
	}
}
