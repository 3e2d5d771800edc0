// File: internal/interact/waiter.go
package interact

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/probeworks/gptprobe/internal/browser"
	"github.com/probeworks/gptprobe/internal/selectors"
)

// ResponseWaiter detects reply completion from two weak signals: the
// assistant-message count rising past a pre-send baseline, and a busy
// indicator transitioning from visible to gone. Both signals are unreliable
// on their own, so every phase is time-bounded and the wait as a whole is
// best-effort: it never fails, it only returns when waiting longer is
// pointless. A missing reply is the extractor's problem, not an error here.
type ResponseWaiter struct {
	probe  browser.PageProbe
	chains selectors.Table
	clock  Clock
	logger *zap.Logger

	grace       time.Duration
	poll        time.Duration
	settleDelay time.Duration
}

// NewResponseWaiter wires a waiter over the given probe and selector table.
// grace bounds each polling phase; poll is the fixed sampling interval.
func NewResponseWaiter(probe browser.PageProbe, chains selectors.Table, clock Clock, logger *zap.Logger, grace, poll time.Duration) *ResponseWaiter {
	return &ResponseWaiter{
		probe:       probe,
		chains:      chains,
		clock:       clock,
		logger:      logger.Named("response_waiter"),
		grace:       grace,
		poll:        poll,
		settleDelay: 2 * time.Second,
	}
}

// CountMessages returns the current assistant-message count. Explicit
// assistant markers are preferred; when none match, generic message bubbles
// are counted instead. Probe errors count as zero.
func (w *ResponseWaiter) CountMessages(ctx context.Context) int {
	for _, rule := range w.chains.AssistantMessage {
		count, err := w.probe.Count(ctx, rule)
		if err != nil {
			continue
		}
		if count > 0 {
			return count
		}
	}
	total := 0
	for _, rule := range w.chains.AnyMessage {
		count, err := w.probe.Count(ctx, rule)
		if err != nil {
			continue
		}
		total += count
	}
	return total
}

// Wait blocks until the reply is plausibly complete. baseline is the
// assistant-message count captured before the question was sent.
func (w *ResponseWaiter) Wait(ctx context.Context, baseline int) {
	// Phase 1: wait for a new message to arrive.
	arrived := false
	deadline := w.clock.Now().Add(w.grace)
	for w.clock.Now().Before(deadline) {
		if w.CountMessages(ctx) > baseline {
			arrived = true
			break
		}
		if w.clock.Sleep(ctx, w.poll) != nil {
			return
		}
	}

	// Phase 2: some UIs replace the message node instead of appending one,
	// so a flat count gets one last-chance settle delay.
	if !arrived {
		w.logger.Debug("Message count never rose past baseline.", zap.Int("baseline", baseline))
		if w.clock.Sleep(ctx, w.settleDelay) != nil {
			return
		}
	}

	// Phase 3: ride out the streaming phase. The indicator must be observed
	// visible at least once before its absence means "done" — a UI that never
	// shows one would otherwise be declared complete instantly. If it is
	// never observed, the window simply elapses: time-bounded, not
	// indicator-bounded.
	seenBusy := false
	deadline = w.clock.Now().Add(w.grace)
	for w.clock.Now().Before(deadline) {
		if w.busyVisible(ctx) {
			seenBusy = true
		} else if seenBusy {
			return
		}
		if w.clock.Sleep(ctx, w.poll) != nil {
			return
		}
	}
}

// busyVisible reports whether any busy-indicator match is currently visible.
// Probe errors read as not visible.
func (w *ResponseWaiter) busyVisible(ctx context.Context) bool {
	for _, rule := range w.chains.BusyIndicator {
		count, err := w.probe.Count(ctx, rule)
		if err != nil {
			continue
		}
		for i := 0; i < count; i++ {
			visible, err := w.probe.IsVisible(ctx, rule, i)
			if err == nil && visible {
				return true
			}
		}
	}
	return false
}
