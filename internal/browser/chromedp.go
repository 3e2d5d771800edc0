// File: internal/browser/chromedp.go
package browser

import (
	"context"
	"fmt"
	"strings"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"go.uber.org/zap"

	"github.com/probeworks/gptprobe/internal/selectors"
)

// chromedpProbe implements PageProbe on top of a live chromedp context.
type chromedpProbe struct {
	ctx    context.Context
	logger *zap.Logger
}

var _ PageProbe = (*chromedpProbe)(nil)

// newChromedpProbe binds a probe to the given browser tab context.
func newChromedpProbe(ctx context.Context, logger *zap.Logger) *chromedpProbe {
	return &chromedpProbe{ctx: ctx, logger: logger.Named("probe")}
}

// runActions executes chromedp actions, ensuring they respect both the
// browser lifetime (p.ctx) and the incoming operation context (ctx).
func (p *chromedpProbe) runActions(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := CombineContext(p.ctx, ctx)
	defer cancel()
	return chromedp.Run(runCtx, actions...)
}

func (p *chromedpProbe) Navigate(ctx context.Context, url string) error {
	return p.runActions(ctx, chromedp.Navigate(url))
}

func (p *chromedpProbe) WaitReady(ctx context.Context) error {
	return p.runActions(ctx, chromedp.WaitReady("body", chromedp.ByQuery))
}

func (p *chromedpProbe) Title(ctx context.Context) (string, error) {
	var title string
	if err := p.runActions(ctx, chromedp.Title(&title)); err != nil {
		return "", err
	}
	return title, nil
}

// matchJS builds a JS expression that computes the rule's current MatchSet
// and evaluates op against it. The op body sees `nodes` (filtered array) and
// `idx`. Matching always re-runs querySelectorAll: the DOM may have changed
// since the last query.
func matchJS(rule selectors.Rule, index int, op string) string {
	return fmt.Sprintf(`(() => {
		let nodes = Array.from(document.querySelectorAll(%q));
		const needle = %q;
		if (needle) {
			nodes = nodes.filter(n => (n.innerText || '').includes(needle));
		}
		const idx = %d;
		%s
	})()`, rule.Query, rule.TextContains, index, op)
}

const visibleOp = `
		const el = nodes[idx];
		if (!el) { return false; }
		const r = el.getBoundingClientRect();
		if (r.width <= 0 || r.height <= 0) { return false; }
		const s = window.getComputedStyle(el);
		return s.display !== 'none' && s.visibility !== 'hidden';`

func (p *chromedpProbe) Count(ctx context.Context, rule selectors.Rule) (int, error) {
	var count int
	err := p.runActions(ctx, chromedp.Evaluate(matchJS(rule, 0, `return nodes.length;`), &count))
	return count, err
}

func (p *chromedpProbe) IsVisible(ctx context.Context, rule selectors.Rule, index int) (bool, error) {
	var visible bool
	err := p.runActions(ctx, chromedp.Evaluate(matchJS(rule, index, visibleOp), &visible))
	return visible, err
}

func (p *chromedpProbe) Click(ctx context.Context, rule selectors.Rule, index int) error {
	var ok bool
	op := `
		const el = nodes[idx];
		if (!el) { return false; }
		el.click();
		return true;`
	if err := p.runActions(ctx, chromedp.Evaluate(matchJS(rule, index, op), &ok)); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no match at index %d for %q", index, rule.Query)
	}
	return nil
}

func (p *chromedpProbe) Focus(ctx context.Context, rule selectors.Rule, index int) error {
	var ok bool
	op := `
		const el = nodes[idx];
		if (!el) { return false; }
		el.focus();
		return true;`
	if err := p.runActions(ctx, chromedp.Evaluate(matchJS(rule, index, op), &ok)); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no match at index %d for %q", index, rule.Query)
	}
	return nil
}

func (p *chromedpProbe) Text(ctx context.Context, rule selectors.Rule, index int) (string, error) {
	var text string
	op := `
		const el = nodes[idx];
		return el ? (el.innerText || '') : '';`
	err := p.runActions(ctx, chromedp.Evaluate(matchJS(rule, index, op), &text))
	return text, err
}

// Press parses a chord like "Control+a" or "Meta+Enter" and dispatches it.
func (p *chromedpProbe) Press(ctx context.Context, chord string) error {
	parts := strings.Split(chord, "+")
	key := parts[len(parts)-1]

	var mods input.Modifier
	for _, part := range parts[:len(parts)-1] {
		switch strings.ToLower(part) {
		case "control", "ctrl":
			mods |= input.ModifierCtrl
		case "meta", "cmd", "command":
			mods |= input.ModifierCommand
		case "alt":
			mods |= input.ModifierAlt
		case "shift":
			mods |= input.ModifierShift
		default:
			return fmt.Errorf("unknown key modifier %q in chord %q", part, chord)
		}
	}

	keys, ok := namedKeys[key]
	if !ok {
		keys = key
	}
	return p.runActions(ctx, chromedp.KeyEvent(keys, chromedp.KeyModifiers(mods)))
}

// namedKeys maps chord key names to the raw runes the kb package expects.
var namedKeys = map[string]string{
	"Enter":     kb.Enter,
	"Escape":    kb.Escape,
	"Backspace": kb.Backspace,
	"Tab":       kb.Tab,
}

func (p *chromedpProbe) InsertText(ctx context.Context, text string) error {
	return p.runActions(ctx, chromedp.ActionFunc(func(c context.Context) error {
		return input.InsertText(text).Do(c)
	}))
}

func (p *chromedpProbe) ScrollBy(ctx context.Context, dx, dy float64) error {
	expr := fmt.Sprintf("window.scrollBy(%f, %f)", dx, dy)
	return p.runActions(ctx, chromedp.Evaluate(expr, nil))
}

func (p *chromedpProbe) ClickAt(ctx context.Context, fracX, fracY float64) error {
	var dims []float64
	if err := p.runActions(ctx, chromedp.Evaluate(`[window.innerWidth, window.innerHeight]`, &dims)); err != nil {
		return err
	}
	if len(dims) != 2 || dims[0] <= 0 || dims[1] <= 0 {
		return fmt.Errorf("viewport dimensions unavailable")
	}
	x, y := dims[0]*fracX, dims[1]*fracY
	return p.runActions(ctx, chromedp.MouseClickXY(x, y))
}

// CombineContext creates a context canceled when either parent is canceled.
// Probe operations must respect both the browser lifetime and the per-step
// deadline of the caller.
func CombineContext(parentCtx, secondaryCtx context.Context) (context.Context, context.CancelFunc) {
	combinedCtx, cancel := context.WithCancel(parentCtx)

	go func() {
		select {
		case <-secondaryCtx.Done():
			cancel()
		case <-combinedCtx.Done():
		}
	}()

	return combinedCtx, cancel
}
