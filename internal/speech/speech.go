// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package speech

import (
	"fmt"
	"os/exec"
	"strconv"
	"sync"
)

// =============================================================================
// RATE BOUNDS
// =============================================================================

const (
	// RateMin and RateMax bound the speaking-rate multiplier. Values
	// outside the range are rejected, not clamped, so the caller hears
	// about the bad input.
	RateMin = 0.5
	RateMax = 2.0

	// baseWPM is the engine's words-per-minute at rate 1.0.
	baseWPM = 175
)

// ErrRateOutOfRange is returned by SetRate for rates outside
// [RateMin, RateMax].
type ErrRateOutOfRange struct {
	Rate float64
}

func (e *ErrRateOutOfRange) Error() string {
	return fmt.Sprintf("voice rate %.2f out of range [%.1f, %.1f]", e.Rate, RateMin, RateMax)
}

// =============================================================================
// SPEAKER
// =============================================================================

// Speaker queues text and speaks it through the platform TTS engine on
// a single background goroutine. Speak never blocks command handling.
type Speaker struct {
	mu      sync.Mutex
	enabled bool
	closed  bool
	rate    float64
	engine  string

	queue chan string
	wg    sync.WaitGroup
	once  sync.Once

	// run invokes the TTS engine for one utterance. Tests replace it.
	run func(engine string, rate float64, text string) error
}

// NewSpeaker creates a speaker for the given engine ("espeak-ng",
// "say"). It starts disabled at rate 1.0.
func NewSpeaker(engine string) *Speaker {
	s := &Speaker{
		rate:   1.0,
		engine: engine,
		queue:  make(chan string, 64),
		run:    speak,
	}
	s.wg.Add(1)
	go s.drain()
	return s
}

func (s *Speaker) drain() {
	defer s.wg.Done()
	for text := range s.queue {
		s.mu.Lock()
		engine, rate := s.engine, s.rate
		s.mu.Unlock()

		// Playback errors are swallowed; a broken TTS engine must not
		// take down the queue.
		_ = s.run(engine, rate, text)
	}
}

// SetEnabled toggles speech output. Disabled speakers drop utterances.
func (s *Speaker) SetEnabled(enabled bool) {
	s.mu.Lock()
	s.enabled = enabled
	s.mu.Unlock()
}

// Enabled reports whether speech output is on.
func (s *Speaker) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// SetRate sets the speaking-rate multiplier. Out-of-range rates are
// rejected with ErrRateOutOfRange.
func (s *Speaker) SetRate(rate float64) error {
	if rate < RateMin || rate > RateMax {
		return &ErrRateOutOfRange{Rate: rate}
	}
	s.mu.Lock()
	s.rate = rate
	s.mu.Unlock()
	return nil
}

// Rate returns the current speaking-rate multiplier.
func (s *Speaker) Rate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rate
}

// Speak enqueues text for playback. It returns immediately; if the
// speaker is disabled, closed, or the queue is full the text is
// dropped.
func (s *Speaker) Speak(text string) {
	if text == "" {
		return
	}
	// The enqueue happens under the mutex so a concurrent Close cannot
	// shut the channel between the check and the send.
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled || s.closed {
		return
	}
	select {
	case s.queue <- text:
	default:
		// Queue full. Dropping beats blocking the command pipeline.
	}
}

// Close stops accepting utterances and waits for the queue to drain.
func (s *Speaker) Close() {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		close(s.queue)
	})
	s.wg.Wait()
}

// =============================================================================
// ENGINE INVOCATION
// =============================================================================

// speak runs one utterance through the engine. The rate multiplier is
// converted to the engine's words-per-minute flag.
func speak(engine string, rate float64, text string) error {
	wpm := strconv.Itoa(int(float64(baseWPM) * rate))

	var cmd *exec.Cmd
	switch engine {
	case "say":
		cmd = exec.Command("say", "-r", wpm, text)
	default:
		cmd = exec.Command("espeak-ng", "-s", wpm, text)
	}
	return cmd.Run()
}
