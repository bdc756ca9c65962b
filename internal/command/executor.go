// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package command

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jeranaias/aura/internal/apps"
	"github.com/jeranaias/aura/internal/config"
	"github.com/jeranaias/aura/internal/notes"
	"github.com/jeranaias/aura/internal/profile"
	"github.com/jeranaias/aura/internal/screenshot"
	"github.com/jeranaias/aura/internal/search"
	"github.com/jeranaias/aura/internal/xgo"
)

// =============================================================================
// COLLABORATOR INTERFACES
// =============================================================================

// LLMClient generates text for note content.
type LLMClient interface {
	Generate(ctx context.Context, prompt, system string) (string, error)
}

// NoteStore persists notes. *notes.Store satisfies this.
type NoteStore interface {
	Create(noteType notes.Type, content string) (string, error)
	Get(id string) (*notes.Note, error)
	List() ([]notes.Note, error)
	Delete(id string) error
}

// AppResolver resolves app names to launch paths. *apps.Registry
// satisfies this.
type AppResolver interface {
	Resolve(name string) (string, bool)
}

// Speaker controls speech output. *speech.Speaker satisfies this.
type Speaker interface {
	SetEnabled(enabled bool)
	Enabled() bool
	SetRate(rate float64) error
	Rate() float64
}

// SearchDispatcher opens search destinations. *search.Dispatcher
// satisfies this.
type SearchDispatcher interface {
	Dispatch(query string, source search.Source) (string, error)
}

// ProfileStore manages user profiles. *profile.Store satisfies this.
type ProfileStore interface {
	Create(name, displayName, persona string) (*profile.Profile, error)
	Switch(name string) (*profile.Profile, error)
	Delete(name string) error
	List() ([]profile.Profile, error)
}

// DeviceBridge controls the XGO connection. *xgo.Bridge satisfies this.
type DeviceBridge interface {
	Connect(ctx context.Context, addr string) error
	Disconnect() error
	Status() xgo.Status
}

// AutonomyControl starts and stops the background scheduler.
type AutonomyControl interface {
	Enable()
	Disable()
	Enabled() bool
	SetInterval(d time.Duration) error
}

// =============================================================================
// DEPENDENCIES
// =============================================================================

// Deps carries the executor's collaborators. Fields may be nil; every
// handler checks before use and reports a clear error Result.
type Deps struct {
	Config   *config.Service
	LLM      LLMClient
	Notes    NoteStore
	Apps     AppResolver
	Speaker  Speaker
	Search   SearchDispatcher
	Profiles ProfileStore
	Bridge   DeviceBridge
	Autonomy AutonomyControl

	// Launch starts a resolved application. Defaults to apps.Launch.
	Launch func(path string, args ...string) error

	// Terminate ends an application by name. Defaults to
	// apps.TerminateByName.
	Terminate func(name string) (bool, error)

	// Capture takes a screenshot. Defaults to screenshot.Capture.
	Capture func(ctx context.Context, mode screenshot.Mode) ([]byte, error)

	// ClearHistory wipes the conversation, set by the chat layer.
	ClearHistory func()

	// LastCommand returns the previous descriptor for retry.
	LastCommand func() (Descriptor, bool)
}

// =============================================================================
// EXECUTOR
// =============================================================================

// ActionTimeout bounds a single blocking action (HTTP call, LLM
// delegation, device dial).
const ActionTimeout = 60 * time.Second

// Executor turns descriptors into Results. It is stateless between
// calls; each Execute is an independent validate-act-result cycle, and
// no error or panic crosses the boundary as anything but an error
// Result.
type Executor struct {
	deps     Deps
	registry *Registry
}

// NewExecutor creates an executor over the given collaborators.
func NewExecutor(deps Deps, registry *Registry) *Executor {
	if deps.Launch == nil {
		deps.Launch = apps.Launch
	}
	if deps.Terminate == nil {
		deps.Terminate = apps.TerminateByName
	}
	if deps.Capture == nil {
		deps.Capture = screenshot.Capture
	}
	return &Executor{deps: deps, registry: registry}
}

// Execute runs one descriptor to completion.
func (e *Executor) Execute(ctx context.Context, d Descriptor) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = Errorf("command failed: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, ActionTimeout)
	defer cancel()

	switch d.Kind {
	case KindConfig:
		return e.execConfig(d)
	case KindScreenshot:
		return e.execScreenshot(ctx, d)
	case KindSearch:
		return e.execSearch(d)
	case KindNote:
		return e.execNote(ctx, d)
	case KindProfile:
		return e.execProfile(d)
	case KindVoice:
		return e.execVoice(d)
	case KindHelp:
		return e.execHelp()
	case KindQuit:
		return Success("Goodbye.")
	case KindClear:
		return e.execClear()
	case KindAutonomous:
		return e.execAutonomous(d)
	case KindWeb:
		return e.execWeb(d)
	case KindRetry:
		return e.execRetry(ctx, d)
	case KindSystem:
		return e.execSystem(d)
	case KindXGO:
		return e.execXGO(ctx, d)
	default:
		return Errorf("I don't know the command %q. Try /help.", d.Raw)
	}
}

// =============================================================================
// HANDLERS
// =============================================================================

func (e *Executor) execConfig(d Descriptor) Result {
	if e.deps.Config == nil {
		return Errorf("configuration service unavailable")
	}

	switch d.Action {
	case "show", "":
		cfg := e.deps.Config.Get()
		data, err := json.MarshalIndent(&cfg, "", "  ")
		if err != nil {
			return FromError(err)
		}
		return SuccessWith("Current configuration:", string(data))

	case "get":
		cfg := e.deps.Config.Get()
		value, err := cfg.Get(d.Query)
		if err != nil {
			return FromError(err)
		}
		return Successf("%s = %v", d.Query, value)

	case "set":
		if len(d.Args) == 0 {
			return Errorf("config set needs a value: /config %s <value>", d.Query)
		}
		value := strings.Join(d.Args, " ")
		if err := e.deps.Config.Set(d.Query, value); err != nil {
			return FromError(err)
		}
		if err := e.deps.Config.Save(); err != nil {
			return Errorf("value set but not saved: %v", err)
		}
		return Successf("%s set to %s", d.Query, value)

	case "save":
		if strings.TrimSpace(d.Query) == "" {
			return Errorf(`config save needs a JSON object: /config save {"voice":{"enabled":true}}`)
		}
		if err := e.deps.Config.Merge(d.Query); err != nil {
			return FromError(err)
		}
		if err := e.deps.Config.Save(); err != nil {
			return Errorf("merged but not saved: %v", err)
		}
		merged := e.deps.Config.Get()
		data, err := json.MarshalIndent(&merged, "", "  ")
		if err != nil {
			return FromError(err)
		}
		return SuccessWith("Configuration updated.", string(data))

	case "reset":
		e.deps.Config.Reset()
		if err := e.deps.Config.Save(); err != nil {
			return Errorf("reset but not saved: %v", err)
		}
		return Success("Configuration reset to defaults.")

	default:
		return Errorf("unknown config action %q", d.Action)
	}
}

func (e *Executor) execScreenshot(ctx context.Context, d Descriptor) Result {
	mode := screenshot.ParseMode(d.Action)
	data, err := e.deps.Capture(ctx, mode)
	if err != nil {
		return FromError(err)
	}

	encoded := base64.StdEncoding.EncodeToString(data)
	return SuccessWith(
		fmt.Sprintf("Captured %s screenshot (%d KB).", mode, len(data)/1024),
		encoded,
	)
}

func (e *Executor) execSearch(d Descriptor) Result {
	if e.deps.Search == nil {
		return Errorf("search unavailable")
	}
	// Aurora ignores the query; everything else requires one.
	if d.Source != search.SourceAurora && strings.TrimSpace(d.Query) == "" {
		return Errorf("search query required")
	}

	url, err := e.deps.Search.Dispatch(d.Query, d.Source)
	if err != nil {
		return FromError(err)
	}

	if d.Source == search.SourceAurora {
		return Successf("Opened the aurora forecast: %s", url)
	}
	return Successf("Searching for %q: %s", d.Query, url)
}

func (e *Executor) execNote(ctx context.Context, d Descriptor) Result {
	if e.deps.Notes == nil {
		return Errorf("note store unavailable")
	}

	switch d.Action {
	case "create":
		if strings.TrimSpace(d.Query) == "" {
			return Errorf("note topic required")
		}
		noteType := d.NoteType
		if noteType == "" {
			noteType = notes.TypeGeneral
		}
		content := d.Query
		if e.deps.LLM != nil {
			prompt := fmt.Sprintf(notes.PromptFor(noteType), d.Query)
			generated, err := e.deps.LLM.Generate(ctx, prompt, "")
			if err == nil && strings.TrimSpace(generated) != "" {
				content = generated
			}
			// On LLM failure the raw topic is stored as-is.
		}
		id, err := e.deps.Notes.Create(noteType, content)
		if err != nil {
			return FromError(err)
		}
		return Successf("Note created (%s).", shortID(id))

	case "list", "":
		all, err := e.deps.Notes.List()
		if err != nil {
			return FromError(err)
		}
		if len(all) == 0 {
			return Success("No notes yet.")
		}
		var sb strings.Builder
		for _, n := range all {
			fmt.Fprintf(&sb, "%s  [%s]  %s\n", shortID(n.ID), n.CreatedAt.Format("2006-01-02 15:04"), n.Title)
		}
		return SuccessWith(fmt.Sprintf("%d notes:", len(all)), sb.String())

	case "view":
		if d.Query == "" {
			return Errorf("note ID required")
		}
		id, err := e.resolveNoteID(d.Query)
		if err != nil {
			return FromError(err)
		}
		note, err := e.deps.Notes.Get(id)
		if err != nil {
			return FromError(err)
		}
		return SuccessWith(note.Title, note.Content)

	case "delete":
		if d.Query == "" {
			return Errorf("note ID required")
		}
		id, err := e.resolveNoteID(d.Query)
		if err != nil {
			return FromError(err)
		}
		if err := e.deps.Notes.Delete(id); err != nil {
			return FromError(err)
		}
		return Success("Note deleted.")

	default:
		return Errorf("unknown note action %q", d.Action)
	}
}

func (e *Executor) execProfile(d Descriptor) Result {
	if e.deps.Profiles == nil {
		return Errorf("profile store unavailable")
	}

	switch d.Action {
	case "create":
		if d.Query == "" {
			return Errorf("profile name required")
		}
		if _, err := e.deps.Profiles.Create(d.Query, "", ""); err != nil {
			return FromError(err)
		}
		return Successf("Profile %q created.", d.Query)

	case "switch":
		if d.Query == "" {
			return Errorf("profile name required")
		}
		p, err := e.deps.Profiles.Switch(d.Query)
		if err != nil {
			return FromError(err)
		}
		return Successf("Switched to profile %q.", p.Name)

	case "delete":
		if d.Query == "" {
			return Errorf("profile name required")
		}
		if err := e.deps.Profiles.Delete(d.Query); err != nil {
			return FromError(err)
		}
		return Successf("Profile %q deleted.", d.Query)

	case "list", "":
		profiles, err := e.deps.Profiles.List()
		if err != nil {
			return FromError(err)
		}
		if len(profiles) == 0 {
			return Success("No profiles yet.")
		}
		var sb strings.Builder
		for _, p := range profiles {
			fmt.Fprintf(&sb, "%s (%s)\n", p.Name, p.DisplayName)
		}
		return SuccessWith(fmt.Sprintf("%d profiles:", len(profiles)), sb.String())

	default:
		return Errorf("unknown profile action %q", d.Action)
	}
}

func (e *Executor) execVoice(d Descriptor) Result {
	if e.deps.Speaker == nil {
		return Errorf("speech unavailable")
	}

	switch d.Action {
	case "on":
		e.deps.Speaker.SetEnabled(true)
		return Success("Voice on.")

	case "off":
		e.deps.Speaker.SetEnabled(false)
		return Success("Voice off.")

	case "rate":
		if d.Query == "" {
			return Errorf("rate value required, e.g. /voice rate 1.5")
		}
		rate, err := strconv.ParseFloat(d.Query, 64)
		if err != nil {
			return Errorf("invalid rate %q", d.Query)
		}
		if err := e.deps.Speaker.SetRate(rate); err != nil {
			return FromError(err)
		}
		return Successf("Voice rate set to %.2f.", rate)

	default:
		return Errorf("unknown voice action %q", d.Action)
	}
}

func (e *Executor) execHelp() Result {
	if e.registry == nil {
		return Errorf("no commands registered")
	}

	var sb strings.Builder
	for _, cmd := range e.registry.All() {
		usage := cmd.Usage
		if usage == "" {
			usage = cmd.Name
		}
		fmt.Fprintf(&sb, "%-48s %s\n", usage, cmd.Description)
	}
	return SuccessWith("Commands:", sb.String())
}

func (e *Executor) execClear() Result {
	if e.deps.ClearHistory != nil {
		e.deps.ClearHistory()
	}
	return Success("Conversation cleared.")
}

func (e *Executor) execAutonomous(d Descriptor) Result {
	if e.deps.Autonomy == nil {
		return Errorf("autonomy unavailable")
	}

	switch d.Action {
	case "on":
		e.deps.Autonomy.Enable()
		return Success("Autonomous mode on.")

	case "off":
		e.deps.Autonomy.Disable()
		return Success("Autonomous mode off.")

	case "interval":
		if d.Query == "" {
			return Errorf("interval in minutes required, e.g. /autonomous interval 30")
		}
		mins, err := strconv.Atoi(d.Query)
		if err != nil || mins < 1 {
			return Errorf("invalid interval %q: need a whole number of minutes >= 1", d.Query)
		}
		if err := e.deps.Autonomy.SetInterval(time.Duration(mins) * time.Minute); err != nil {
			return FromError(err)
		}
		return Successf("Autonomous interval set to %d minutes.", mins)

	case "status", "":
		if e.deps.Autonomy.Enabled() {
			return Success("Autonomous mode is on.")
		}
		return Success("Autonomous mode is off.")

	default:
		return Errorf("unknown autonomous action %q", d.Action)
	}
}

func (e *Executor) execWeb(d Descriptor) Result {
	url := strings.TrimSpace(d.Query)
	if url == "" {
		return Errorf("URL required")
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "https://" + url
	}

	if err := search.OpenBrowser(url); err != nil {
		return FromError(err)
	}
	return Successf("Opened %s", url)
}

func (e *Executor) execRetry(ctx context.Context, d Descriptor) Result {
	if e.deps.LastCommand == nil {
		return Errorf("nothing to retry")
	}
	last, ok := e.deps.LastCommand()
	if !ok {
		return Errorf("nothing to retry")
	}
	if last.Kind == KindRetry {
		return Errorf("nothing to retry")
	}
	// Extra context from "try again with ..." rides on the replayed
	// command's query.
	if extra := strings.TrimSpace(d.Query); extra != "" {
		if last.Query != "" {
			last.Query += " " + extra
		} else {
			last.Query = extra
		}
	}
	return e.Execute(ctx, last)
}

func (e *Executor) execSystem(d Descriptor) Result {
	name := strings.TrimSpace(d.Query)
	if name == "" {
		return Errorf("application name required")
	}

	switch d.Action {
	case "open":
		if e.deps.Apps == nil {
			return Errorf("app control unavailable")
		}
		path, ok := e.deps.Apps.Resolve(name)
		if !ok {
			return Errorf("no application matching %q", name)
		}
		if err := e.deps.Launch(path); err != nil {
			return FromError(err)
		}
		return Successf("Opened %s.", name)

	case "close":
		killed, err := e.deps.Terminate(name)
		if err != nil {
			return FromError(err)
		}
		if !killed {
			return Errorf("no running process matching %q", name)
		}
		return Successf("Closed %s.", name)

	default:
		return Errorf("unknown system action %q", d.Action)
	}
}

func (e *Executor) execXGO(ctx context.Context, d Descriptor) Result {
	if e.deps.Bridge == nil {
		return Errorf("xgo bridge unavailable")
	}

	switch d.Action {
	case "connect":
		addr := d.Query
		if addr == "" && e.deps.Config != nil {
			cfg := e.deps.Config.Get()
			addr = cfg.XGO.Address
		}
		if addr == "" {
			return Errorf("xgo address required, e.g. /xgo connect 192.168.1.50:9999")
		}
		if err := e.deps.Bridge.Connect(ctx, addr); err != nil {
			return FromError(err)
		}
		return Successf("Connected to XGO at %s.", addr)

	case "disconnect":
		if err := e.deps.Bridge.Disconnect(); err != nil {
			return FromError(err)
		}
		return Success("XGO disconnected.")

	case "status", "":
		st := e.deps.Bridge.Status()
		if !st.Connected {
			return SuccessWith("XGO is not connected.", st)
		}
		return SuccessWith(fmt.Sprintf("XGO connected to %s since %s.", st.Address, st.Since.Format("15:04:05")), st)

	default:
		return Errorf("unknown xgo action %q", d.Action)
	}
}

// resolveNoteID expands a short ID prefix to the full note ID. An
// exact full-length ID passes through without a list scan.
func (e *Executor) resolveNoteID(idOrPrefix string) (string, error) {
	if _, err := e.deps.Notes.Get(idOrPrefix); err == nil {
		return idOrPrefix, nil
	}

	all, err := e.deps.Notes.List()
	if err != nil {
		return "", err
	}
	for _, n := range all {
		if strings.HasPrefix(n.ID, idOrPrefix) {
			return n.ID, nil
		}
	}
	return "", notes.ErrNoteNotFound
}

// shortID trims a UUID to its first group for display.
func shortID(id string) string {
	if idx := strings.IndexByte(id, '-'); idx > 0 {
		return id[:idx]
	}
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
