// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package autonomy

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/aura/internal/command"
	"github.com/jeranaias/aura/internal/config"
	"github.com/jeranaias/aura/internal/notes"
)

// =============================================================================
// TYPES
// =============================================================================

// Runner executes descriptors. *command.Executor satisfies this.
type Runner interface {
	Execute(ctx context.Context, d command.Descriptor) command.Result
}

// MessageFunc delivers a spontaneous companion message to the UI.
type MessageFunc func(text string)

// LLMClient generates spontaneous message text.
type LLMClient interface {
	Generate(ctx context.Context, prompt, system string) (string, error)
}

// =============================================================================
// MANAGER
// =============================================================================

// Manager drives the background triggers: periodic notes, periodic
// screenshots, and spontaneous messages. Triggered actions go through
// the same executor entry point as user commands. A rate limiter caps
// autonomous LLM usage so a short interval cannot flood the model.
type Manager struct {
	mu       sync.Mutex
	enabled  bool
	override time.Duration // nonzero replaces per-trigger config intervals
	stop     chan struct{}
	wg       sync.WaitGroup

	runner    Runner
	llm       LLMClient
	onMessage MessageFunc
	getConfig func() config.Config
	limiter   *rate.Limiter
}

// NewManager creates a stopped manager. getConfig supplies a fresh
// config snapshot each tick so interval changes take effect on the
// next cycle without a restart.
func NewManager(runner Runner, llm LLMClient, onMessage MessageFunc, getConfig func() config.Config) *Manager {
	cfg := getConfig()
	maxPerHour := cfg.Autonomy.MaxLLMPerHour
	if maxPerHour < 1 {
		maxPerHour = 1
	}

	return &Manager{
		runner:    runner,
		llm:       llm,
		onMessage: onMessage,
		getConfig: getConfig,
		limiter:   rate.NewLimiter(rate.Limit(float64(maxPerHour)/3600.0), 1),
	}
}

// Enable starts the trigger loops. Enabling a running manager is a
// no-op.
func (m *Manager) Enable() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.enabled {
		return
	}
	m.enabled = true
	m.stop = make(chan struct{})

	m.wg.Add(3)
	go m.loop(m.noteInterval, m.tickNote)
	go m.loop(m.screenshotInterval, m.tickScreenshot)
	go m.loop(m.messageInterval, m.tickMessage)
}

// Disable stops the trigger loops and waits for in-flight ticks.
func (m *Manager) Disable() {
	m.mu.Lock()
	if !m.enabled {
		m.mu.Unlock()
		return
	}
	m.enabled = false
	close(m.stop)
	m.mu.Unlock()

	m.wg.Wait()
}

// Enabled reports whether the scheduler is running.
func (m *Manager) Enabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enabled
}

// SetInterval overrides every trigger's interval. The override takes
// effect on each loop's next tick.
func (m *Manager) SetInterval(d time.Duration) error {
	if d < time.Minute {
		return errors.New("interval must be at least one minute")
	}
	m.mu.Lock()
	m.override = d
	m.mu.Unlock()
	return nil
}

// =============================================================================
// TRIGGER LOOPS
// =============================================================================

// loop runs one trigger until the manager is disabled. The interval is
// re-read every cycle.
func (m *Manager) loop(interval func() time.Duration, tick func(ctx context.Context)) {
	defer m.wg.Done()

	m.mu.Lock()
	stop := m.stop
	m.mu.Unlock()

	for {
		d := interval()
		if d <= 0 {
			// Trigger disabled in config. Poll for re-enablement.
			d = time.Minute
		}

		timer := time.NewTimer(d)
		select {
		case <-stop:
			timer.Stop()
			return
		case <-timer.C:
		}

		if interval() <= 0 {
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), command.ActionTimeout)
		tick(ctx)
		cancel()
	}
}

func (m *Manager) noteInterval() time.Duration {
	cfg := m.getConfig()
	if !cfg.Autonomy.Notes.Enabled {
		return 0
	}
	return m.effective(cfg.Autonomy.Notes.IntervalMins)
}

func (m *Manager) screenshotInterval() time.Duration {
	cfg := m.getConfig()
	if !cfg.Autonomy.Screenshots.Enabled {
		return 0
	}
	return m.effective(cfg.Autonomy.Screenshots.IntervalMins)
}

func (m *Manager) messageInterval() time.Duration {
	cfg := m.getConfig()
	if !cfg.Autonomy.Messages.Enabled {
		return 0
	}
	return m.effective(cfg.Autonomy.Messages.IntervalMins)
}

func (m *Manager) effective(mins int) time.Duration {
	m.mu.Lock()
	override := m.override
	m.mu.Unlock()

	if override > 0 {
		return override
	}
	return time.Duration(mins) * time.Minute
}

// =============================================================================
// TICK ACTIONS
// =============================================================================

func (m *Manager) tickNote(ctx context.Context) {
	if !m.limiter.Allow() {
		return
	}

	res := m.runner.Execute(ctx, command.Descriptor{
		Kind:     command.KindNote,
		Action:   "create",
		Query:    "anything notable from the last stretch of activity",
		NoteType: notes.TypeAutonomous,
		Raw:      "autonomous note",
	})
	if !res.OK() {
		log.Printf("autonomy: note trigger failed: %s", res.Message)
	}
}

func (m *Manager) tickScreenshot(ctx context.Context) {
	res := m.runner.Execute(ctx, command.Descriptor{
		Kind:   command.KindScreenshot,
		Action: "full",
		Raw:    "autonomous screenshot",
	})
	if !res.OK() {
		log.Printf("autonomy: screenshot trigger failed: %s", res.Message)
	}
}

func (m *Manager) tickMessage(ctx context.Context) {
	if m.llm == nil || m.onMessage == nil {
		return
	}
	if !m.limiter.Allow() {
		return
	}

	text, err := m.llm.Generate(ctx,
		"Say something brief and friendly to check in with your user. One or two sentences.",
		"")
	if err != nil {
		log.Printf("autonomy: message trigger failed: %v", err)
		return
	}
	m.onMessage(text)
}
