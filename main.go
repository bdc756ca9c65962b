// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// main.go - aura desktop companion entry point.
//
// Runs the interactive companion REPL: every line of input goes through
// intent classification, command parsing, and execution, falling back
// to LLM chat. The terminal frontend here stands in for a richer UI;
// all behavior lives in the internal packages.
//
// Usage:
//   aura                     Start the companion (default model)
//   aura -model llama3.1:8b  Use a specific chat model
//   aura -quiet              Suppress the welcome banner and status lines
//   aura -version            Print version and exit
//
// Interactive commands (during a session):
//   /help, /h           Show available commands
//   /clear, /c          Clear conversation history
//   /quit, /q           Exit
//   Ctrl+C              Cancel current generation
//   Ctrl+D              Exit
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/peterh/liner"
	"golang.org/x/term"

	"github.com/jeranaias/aura/internal/apps"
	"github.com/jeranaias/aura/internal/autonomy"
	"github.com/jeranaias/aura/internal/chat"
	"github.com/jeranaias/aura/internal/command"
	"github.com/jeranaias/aura/internal/config"
	"github.com/jeranaias/aura/internal/memory"
	"github.com/jeranaias/aura/internal/notes"
	"github.com/jeranaias/aura/internal/ollama"
	"github.com/jeranaias/aura/internal/profile"
	"github.com/jeranaias/aura/internal/search"
	"github.com/jeranaias/aura/internal/speech"
	"github.com/jeranaias/aura/internal/xgo"
)

const version = "0.1.0"

// =============================================================================
// STYLES
// =============================================================================

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)

	welcomeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	okStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("2"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("1"))
)

// =============================================================================
// TERMINAL
// =============================================================================

const (
	defaultTerminalWidth = 80
	maxWrapWidth         = 100
)

func isStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// wrapWidth returns the markdown word-wrap width for this terminal.
func wrapWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return defaultTerminalWidth
	}
	if width > maxWrapWidth {
		return maxWrapWidth
	}
	return width
}

// configureColor disables styling when output is piped or NO_COLOR is
// set, matching terminal conventions.
func configureColor() {
	if os.Getenv("NO_COLOR") != "" || !isStdoutTTY() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

var markdownRenderer *glamour.TermRenderer

func initMarkdown() {
	var err error
	markdownRenderer, err = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrapWidth()),
	)
	if err != nil {
		markdownRenderer = nil
	}
}

// renderMarkdown renders content for terminal display, falling back to
// the raw text when rendering is unavailable or stdout is piped.
func renderMarkdown(content string) string {
	if markdownRenderer == nil || !isStdoutTTY() {
		return content
	}
	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// =============================================================================
// INPUT HISTORY
// =============================================================================

// lineEditor provides input history and line editing for the REPL.
type lineEditor struct {
	line        *liner.State
	historyFile string
}

func newLineEditor() *lineEditor {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	dir, err := config.ConfigDir()
	if err != nil {
		dir = os.TempDir()
	}

	ed := &lineEditor{
		line:        line,
		historyFile: filepath.Join(dir, "chat_history"),
	}
	ed.loadHistory()
	return ed
}

func (ed *lineEditor) loadHistory() {
	if f, err := os.Open(ed.historyFile); err == nil {
		ed.line.ReadHistory(f)
		f.Close()
	}
}

func (ed *lineEditor) readInput(prompt string) (string, error) {
	input, err := ed.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		ed.line.AppendHistory(input)
	}
	return input, nil
}

func (ed *lineEditor) saveHistory() {
	if err := config.EnsureConfigDir(); err != nil {
		return
	}
	f, err := os.OpenFile(ed.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	ed.line.WriteHistory(f)
}

func (ed *lineEditor) Close() {
	ed.saveHistory()
	ed.line.Close()
}

// =============================================================================
// APP WIRING
// =============================================================================

// lazyRunner breaks the construction cycle between the autonomy manager
// and the executor: the manager needs a runner before the executor
// exists, because the executor's dependencies include the manager.
type lazyRunner struct {
	exec *command.Executor
}

func (r *lazyRunner) Execute(ctx context.Context, d command.Descriptor) command.Result {
	if r.exec == nil {
		return command.Errorf("executor not ready")
	}
	return r.exec.Execute(ctx, d)
}

// app holds the wired companion components for one session.
type app struct {
	cfgService *config.Service
	llm        *ollama.Client
	notes      *notes.Store
	memory     *memory.Store
	speaker    *speech.Speaker
	dispatcher *search.Dispatcher
	profiles   *profile.Store
	bridge     *xgo.Bridge
	autonomy   *autonomy.Manager
	session    *chat.Session
	pipeline   *chat.Pipeline

	model       string
	profileName string
	quiet       bool

	// cancel aborts the in-flight Handle call on Ctrl+C.
	cancel context.CancelFunc
}

// newApp wires every component from configuration. Optional stores that
// fail to open degrade to nil with a warning; the executor reports a
// clear error when a command needs a missing collaborator.
func newApp(model string, quiet bool) (*app, error) {
	cfgPtr, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s config load failed, using defaults: %v\n",
			warnStyle.Render("[Warning]"), err)
		cfgPtr = config.Default()
	}
	svc := config.NewService(cfgPtr)
	cfg := svc.Get()

	if model == "" {
		model = cfg.LLM.Model
	}

	llm := ollama.NewClientWithConfig(&ollama.ClientConfig{
		BaseURL:        cfg.LLM.OllamaURL,
		Timeout:        time.Duration(cfg.LLM.TimeoutSecs) * time.Second,
		Model:          model,
		EmbeddingModel: cfg.LLM.EmbeddingModel,
	})

	noteStore, err := notes.OpenDefault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s note store unavailable: %v\n",
			warnStyle.Render("[Warning]"), err)
		noteStore = nil
	}

	var memStore *memory.Store
	if cfg.Memory.Enabled {
		memStore, err = memory.OpenDefault(llm)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s memory store unavailable: %v\n",
				warnStyle.Render("[Warning]"), err)
			memStore = nil
		}
	}

	speaker := speech.NewSpeaker(cfg.Voice.Engine)
	speaker.SetEnabled(cfg.Voice.Enabled)
	if err := speaker.SetRate(cfg.Voice.Rate); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", warnStyle.Render("[Warning]"), err)
	}

	dispatcher := search.NewDispatcher(cfg.Search.Engine)

	profiles, err := profile.NewStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s profile store unavailable: %v\n",
			warnStyle.Render("[Warning]"), err)
		profiles = nil
	}

	bridge := xgo.NewBridge()
	if cfg.XGO.DialTimeoutSecs > 0 {
		bridge.DialTimeout = time.Duration(cfg.XGO.DialTimeoutSecs) * time.Second
	}

	// Active profile overrides the base persona and voice rate.
	systemPrompt := cfg.LLM.SystemPrompt
	profileName := cfg.Profile
	if profiles != nil {
		if p, err := profiles.Active(); err == nil && p != nil {
			profileName = p.Name
			if p.Persona != "" {
				systemPrompt = p.Persona
			}
			if err := speaker.SetRate(p.VoiceRate); err != nil {
				fmt.Fprintf(os.Stderr, "%s profile %q: %v\n",
					warnStyle.Render("[Warning]"), p.Name, err)
			}
		}
	}

	session := chat.NewSession(systemPrompt)

	a := &app{
		cfgService:  svc,
		llm:         llm,
		notes:       noteStore,
		memory:      memStore,
		speaker:     speaker,
		dispatcher:  dispatcher,
		profiles:    profiles,
		bridge:      bridge,
		session:     session,
		model:       model,
		profileName: profileName,
		quiet:       quiet,
	}

	runner := &lazyRunner{}
	manager := autonomy.NewManager(runner, llm, a.showSpontaneous, svc.Get)
	a.autonomy = manager

	registry := command.NewRegistry()
	deps := command.Deps{
		Config:       svc,
		LLM:          llm,
		Apps:         apps.NewRegistry(),
		Speaker:      speaker,
		Search:       dispatcher,
		Bridge:       bridge,
		Autonomy:     manager,
		Launch:       apps.Launch,
		Terminate:    apps.TerminateByName,
		ClearHistory: session.Clear,
		LastCommand:  session.LastCommand,
	}
	// Interface-typed fields stay nil unless the store opened.
	if noteStore != nil {
		deps.Notes = noteStore
	}
	if profiles != nil {
		deps.Profiles = profiles
	}
	exec := command.NewExecutor(deps, registry)
	runner.exec = exec

	pipeline := &chat.Pipeline{
		Session:     session,
		Registry:    registry,
		Executor:    exec,
		LLM:         llm,
		Model:       model,
		RecallCount: cfg.Memory.RecallCount,
	}
	if memStore != nil {
		pipeline.Memory = memStore
	}
	a.pipeline = pipeline

	// Pick up config file edits without a restart.
	if err := svc.Watch(a.onConfigReload); err != nil {
		fmt.Fprintf(os.Stderr, "%s config watch unavailable: %v\n",
			warnStyle.Render("[Warning]"), err)
	}

	if cfg.Autonomy.Enabled {
		manager.Enable()
	}

	return a, nil
}

// onConfigReload applies the reloadable subset of a changed config.
func (a *app) onConfigReload(cfg *config.Config) {
	a.dispatcher.Engine = cfg.Search.Engine
	a.speaker.SetEnabled(cfg.Voice.Enabled)
	if err := a.speaker.SetRate(cfg.Voice.Rate); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", warnStyle.Render("[Warning]"), err)
	}
	if !a.quiet {
		fmt.Fprintf(os.Stderr, "%s configuration reloaded\n", infoStyle.Render("[Config]"))
	}
}

// showSpontaneous delivers an autonomous companion message between
// prompts.
func (a *app) showSpontaneous(text string) {
	fmt.Printf("\n%s %s\n", welcomeStyle.Render("aura:"), text)
	a.speaker.Speak(text)
}

// Close releases every component and saves the session transcript.
func (a *app) Close() {
	a.autonomy.Disable()
	a.speaker.Close()
	a.bridge.Disconnect()
	a.cfgService.Close()

	a.saveTranscript()

	if a.notes != nil {
		a.notes.Close()
	}
	if a.memory != nil {
		a.memory.Close()
	}
}

// saveTranscript persists the conversation when anything was said.
func (a *app) saveTranscript() {
	if a.session.Len() == 0 {
		return
	}
	store, err := chat.NewTranscriptStore()
	if err != nil {
		return
	}
	if _, err := store.Save(a.session.Transcript(a.model, a.profileName)); err != nil {
		fmt.Fprintf(os.Stderr, "%s transcript not saved: %v\n",
			warnStyle.Render("[Warning]"), err)
	}
}

// =============================================================================
// REPL
// =============================================================================

func main() {
	model := flag.String("model", "", "chat model name (overrides config)")
	quiet := flag.Bool("quiet", false, "suppress banner and status lines")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("aura %s\n", version)
		return
	}

	configureColor()
	initMarkdown()

	if err := run(*model, *quiet); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
		os.Exit(1)
	}
}

func run(model string, quiet bool) error {
	a, err := newApp(model, quiet)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.llm.CheckRunning(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "%s Ollama is not reachable; chat and note "+
			"summaries will fail until it starts (ollama serve)\n",
			warnStyle.Render("[Warning]"))
	}

	if !quiet {
		printWelcome(a)
	}

	editor := newLineEditor()
	defer editor.Close()

	// First Ctrl+C cancels the in-flight generation; at the prompt,
	// liner reports it as ErrPromptAborted.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		for range sigChan {
			if a.cancel != nil {
				a.cancel()
				a.cancel = nil
				fmt.Fprintln(os.Stderr, "\n"+warnStyle.Render("[Cancelled]"))
			}
		}
	}()

	for {
		input, err := editor.readInput(promptStyle.Render("you> "))
		if err != nil {
			// Ctrl+C at the prompt or EOF (Ctrl+D) ends the session.
			fmt.Println()
			printGoodbye(quiet)
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		ctx, cancel := context.WithCancel(context.Background())
		a.cancel = cancel
		reply := a.pipeline.Handle(ctx, input)
		a.cancel = nil
		cancel()

		showReply(a, reply)
		if reply.Quit {
			return nil
		}
	}
}

// showReply prints one pipeline reply and speaks successful ones.
func showReply(a *app, reply chat.Reply) {
	if reply.Text == "" {
		return
	}

	if reply.IsError {
		fmt.Fprintf(os.Stderr, "%s %s\n", errorStyle.Render("[Error]"), reply.Text)
		return
	}

	fmt.Println()
	fmt.Print(renderMarkdown(reply.Text))
	if !strings.HasSuffix(reply.Text, "\n") {
		fmt.Println()
	}
	fmt.Println()

	a.speaker.Speak(reply.Text)
}

// =============================================================================
// DISPLAY
// =============================================================================

func printWelcome(a *app) {
	cfg := a.cfgService.Get()

	fmt.Println()
	fmt.Println(welcomeStyle.Render("aura companion"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 30)))
	fmt.Printf("%s %s\n", infoStyle.Render("Model:"), okStyle.Render(a.model))
	fmt.Printf("%s %s\n", infoStyle.Render("Profile:"), okStyle.Render(a.profileName))

	if a.speaker.Enabled() {
		fmt.Printf("%s %s (rate %.1fx)\n",
			infoStyle.Render("Voice:"), okStyle.Render("on"), a.speaker.Rate())
	} else {
		fmt.Printf("%s %s\n", infoStyle.Render("Voice:"), infoStyle.Render("off"))
	}

	if cfg.Autonomy.Enabled {
		fmt.Printf("%s %s\n", infoStyle.Render("Autonomy:"), okStyle.Render("on"))
	}

	fmt.Println()
	fmt.Println(infoStyle.Render("Type a message, a command like \"open firefox\", or /help."))
	fmt.Println()
}

func printGoodbye(quiet bool) {
	if !quiet {
		fmt.Println(infoStyle.Render("Goodbye!"))
	}
}
