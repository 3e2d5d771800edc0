// File: internal/interact/composer.go
package interact

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/probeworks/gptprobe/internal/browser"
	"github.com/probeworks/gptprobe/internal/selectors"
)

// Composer clears the focused input, inserts the question, and triggers
// submission through a fallback cascade.
type Composer struct {
	probe  browser.PageProbe
	chains selectors.Table
	clock  Clock
	logger *zap.Logger
}

// NewComposer wires a composer over the given probe and selector table.
func NewComposer(probe browser.PageProbe, chains selectors.Table, clock Clock, logger *zap.Logger) *Composer {
	return &Composer{
		probe:  probe,
		chains: chains,
		clock:  clock,
		logger: logger.Named("composer"),
	}
}

// selectAllChords covers the conventional select-all bindings across
// platforms; both are tried because the page, not this process, decides which
// one it honors.
var selectAllChords = []string{"Meta+a", "Control+a"}

// sendChords are the shortcuts conventionally bound to submit, in preference
// order.
var sendChords = []string{"Enter", "Meta+Enter", "Control+Enter"}

// Type clears any existing composer content, then inserts text as a single
// atomic insertion event rather than simulated keystrokes. Per-key simulation
// drops characters under IME and event-coalescing races; one insert does not.
func (c *Composer) Type(ctx context.Context, text string) error {
	for _, chord := range selectAllChords {
		if err := c.probe.Press(ctx, chord); err != nil {
			c.logger.Debug("Select-all chord not dispatched.", zap.String("chord", chord), zap.Error(err))
		}
	}
	if err := c.probe.Press(ctx, "Backspace"); err != nil {
		c.logger.Debug("Backspace not dispatched.", zap.Error(err))
	}

	if err := c.probe.InsertText(ctx, text); err != nil {
		return fmt.Errorf("insert text: %w", err)
	}
	// Let the page's input handlers observe the new value before sending.
	return c.clock.Sleep(ctx, 100*time.Millisecond)
}

// Send tries the keyboard shortcuts in order and returns on the first one
// that dispatches; if none dispatch it falls back to clicking the first
// visible send-button candidate. ErrSendFailed only when everything is
// exhausted.
func (c *Composer) Send(ctx context.Context) error {
	for _, chord := range sendChords {
		if err := c.probe.Press(ctx, chord); err == nil {
			return nil
		}
	}

	for _, rule := range c.chains.Send {
		count, err := c.probe.Count(ctx, rule)
		if err != nil {
			continue
		}
		for i := 0; i < count; i++ {
			visible, err := c.probe.IsVisible(ctx, rule, i)
			if err != nil || !visible {
				continue
			}
			if err := c.probe.Click(ctx, rule, i); err == nil {
				c.logger.Debug("Sent via button.", zap.String("rule", rule.Query))
				return nil
			}
		}
	}

	return ErrSendFailed
}
