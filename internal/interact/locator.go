// File: internal/interact/locator.go
package interact

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/probeworks/gptprobe/internal/browser"
	"github.com/probeworks/gptprobe/internal/selectors"
)

// Match addresses one element in a rule's current MatchSet. It is only valid
// for the query that produced it; the set is recomputed on every probe call.
type Match struct {
	Rule  selectors.Rule
	Index int
}

// ComposerLocator finds and focuses the active text-entry control. UI
// variance is handled by widening the search space (more rules, more recovery
// nudges) rather than by raising the deadline: the deadline exists to fail
// fast instead of hanging the batch on one broken page.
type ComposerLocator struct {
	probe  browser.PageProbe
	chains selectors.Table
	clock  Clock
	logger *zap.Logger

	deadline   time.Duration
	retryPause time.Duration
	nudgePause time.Duration
}

// NewComposerLocator wires a locator over the given probe and selector table.
func NewComposerLocator(probe browser.PageProbe, chains selectors.Table, clock Clock, logger *zap.Logger, deadline time.Duration) *ComposerLocator {
	return &ComposerLocator{
		probe:      probe,
		chains:     chains,
		clock:      clock,
		logger:     logger.Named("composer_locator"),
		deadline:   deadline,
		retryPause: 250 * time.Millisecond,
		nudgePause: 300 * time.Millisecond,
	}
}

// Locate scans the composer chain until the deadline. Within each rule's
// MatchSet it scans last-to-first: chat UIs render the active composer at the
// bottom of the scroll region, so the bottom-most visible match wins
// regardless of document order. When nothing is visible it applies recovery
// nudges and retries. Fails with ErrComposerNotFound at the deadline.
func (l *ComposerLocator) Locate(ctx context.Context) (Match, error) {
	deadline := l.clock.Now().Add(l.deadline)

	for {
		if match, ok := l.focusLastVisible(ctx); ok {
			l.logger.Debug("Focused bottom composer.", zap.String("rule", match.Rule.Query), zap.Int("index", match.Index))
			return match, nil
		}
		if err := ctx.Err(); err != nil {
			return Match{}, fmt.Errorf("%w: %v", ErrComposerNotFound, err)
		}
		if !l.clock.Now().Before(deadline) {
			break
		}

		l.applyNudges(ctx)

		if err := l.clock.Sleep(ctx, l.retryPause); err != nil {
			return Match{}, fmt.Errorf("%w: %v", ErrComposerNotFound, err)
		}
	}

	return Match{}, ErrComposerNotFound
}

// focusLastVisible walks the composer chain in preference order and, within
// each rule, the MatchSet from the bottom up. The first visible match is
// claimed with a forced click, falling back to a plain focus when the click
// is rejected.
func (l *ComposerLocator) focusLastVisible(ctx context.Context) (Match, bool) {
	for _, rule := range l.chains.Composer {
		count, err := l.probe.Count(ctx, rule)
		if err != nil {
			continue
		}
		for i := count - 1; i >= 0; i-- {
			visible, err := l.probe.IsVisible(ctx, rule, i)
			if err != nil || !visible {
				continue
			}
			if err := l.probe.Click(ctx, rule, i); err != nil {
				// Click can be intercepted by overlays; focus still claims
				// the element for keyboard input.
				if err := l.probe.Focus(ctx, rule, i); err != nil {
					l.logger.Debug("Click and focus both failed on visible match.", zap.String("rule", rule.Query), zap.Error(err))
				}
			}
			return Match{Rule: rule, Index: i}, true
		}
	}
	return Match{}, false
}

// applyNudges runs the fixed recovery sequence. Every step is wrapped so an
// individual nudge failure never aborts the loop; the final bottom-center
// click is a blunt last resort that in practice focuses a composer even when
// no selector matched.
func (l *ComposerLocator) applyNudges(ctx context.Context) {
	// Dismiss any overlay or modal stealing the viewport.
	_ = l.probe.Press(ctx, "Escape")
	// The composer usually lives at the bottom of a scrollable region.
	_ = l.probe.ScrollBy(ctx, 0, 1600)

	l.clickFirstVisible(ctx, l.chains.NewChat)
	l.clickFirstVisible(ctx, l.chains.MainCTA)
	l.clickFirstVisible(ctx, l.chains.SuggestionChip)

	_ = l.probe.ClickAt(ctx, 0.5, 0.92)
}

// clickFirstVisible clicks the first visible match of the chain, if any, and
// gives the page a short beat to react.
func (l *ComposerLocator) clickFirstVisible(ctx context.Context, chain selectors.Chain) {
	for _, rule := range chain {
		count, err := l.probe.Count(ctx, rule)
		if err != nil {
			continue
		}
		for i := 0; i < count; i++ {
			visible, err := l.probe.IsVisible(ctx, rule, i)
			if err != nil || !visible {
				continue
			}
			if err := l.probe.Click(ctx, rule, i); err == nil {
				_ = l.clock.Sleep(ctx, l.nudgePause)
			}
			return
		}
	}
}
