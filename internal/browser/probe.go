// File: internal/browser/probe.go

// Package browser owns the boundary to the real browser. The interaction
// pipeline never talks to chromedp directly; it goes through the PageProbe
// capability surface so the pipeline can be exercised against fixtures.
package browser

import (
	"context"

	"github.com/probeworks/gptprobe/internal/selectors"
)

// PageProbe is the capability surface over the rendered page. A MatchSet is
// addressed as (rule, index); it is recomputed on every call, never cached,
// because the DOM may change between steps.
type PageProbe interface {
	// Navigate requests navigation to the given URL.
	Navigate(ctx context.Context, url string) error
	// WaitReady blocks until the document body has been parsed.
	WaitReady(ctx context.Context) error
	// Title reads the page title. Used as a basic liveness probe.
	Title(ctx context.Context) (string, error)

	// Count returns the size of the rule's current MatchSet.
	Count(ctx context.Context, rule selectors.Rule) (int, error)
	// IsVisible reports whether match #index has a non-empty box and is not
	// hidden by CSS.
	IsVisible(ctx context.Context, rule selectors.Rule, index int) (bool, error)
	// Click dispatches a synthetic click on match #index.
	Click(ctx context.Context, rule selectors.Rule, index int) error
	// Focus moves keyboard focus to match #index.
	Focus(ctx context.Context, rule selectors.Rule, index int) error
	// Text returns the rendered text of match #index.
	Text(ctx context.Context, rule selectors.Rule, index int) (string, error)

	// Press dispatches a keyboard chord such as "Enter", "Escape",
	// "Control+a" or "Meta+Enter" to the focused element.
	Press(ctx context.Context, chord string) error
	// InsertText inserts the full string as one atomic input event, the way
	// an IME commit does. This avoids dropped characters from per-keystroke
	// event coalescing.
	InsertText(ctx context.Context, text string) error

	// ScrollBy scrolls the viewport by the given pixel deltas.
	ScrollBy(ctx context.Context, dx, dy float64) error
	// ClickAt clicks at a proportional viewport coordinate, with fracX and
	// fracY in [0,1] relative to the viewport size.
	ClickAt(ctx context.Context, fracX, fracY float64) error
}
