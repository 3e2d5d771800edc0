// File: internal/interact/fakes_test.go
package interact

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/probeworks/gptprobe/internal/browser"
	"github.com/probeworks/gptprobe/internal/selectors"
)

// fakeElement is one member of a scripted MatchSet.
type fakeElement struct {
	visible  bool
	text     string
	clickErr error
	focusErr error
}

// fakeProbe is a scriptable PageProbe backed by an in-memory DOM fixture.
// Elements are keyed by rule so tests control each chain rule independently.
type fakeProbe struct {
	mu       sync.Mutex
	elements map[string][]fakeElement

	navErrs   []error
	titleErrs []error
	pressErrs map[string]error
	insertErr error

	calls []string
}

var _ browser.PageProbe = (*fakeProbe)(nil)

func newFakeProbe() *fakeProbe {
	return &fakeProbe{
		elements:  make(map[string][]fakeElement),
		pressErrs: make(map[string]error),
	}
}

func ruleKey(rule selectors.Rule) string {
	if rule.TextContains != "" {
		return rule.Query + "|" + rule.TextContains
	}
	return rule.Query
}

func (p *fakeProbe) set(rule selectors.Rule, elems ...fakeElement) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.elements[ruleKey(rule)] = elems
}

func (p *fakeProbe) record(format string, args ...interface{}) {
	p.calls = append(p.calls, fmt.Sprintf(format, args...))
}

func (p *fakeProbe) callsMade() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.calls))
	copy(out, p.calls)
	return out
}

func (p *fakeProbe) Navigate(ctx context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("navigate:%s", url)
	if len(p.navErrs) > 0 {
		err := p.navErrs[0]
		p.navErrs = p.navErrs[1:]
		return err
	}
	return nil
}

func (p *fakeProbe) WaitReady(ctx context.Context) error { return nil }

func (p *fakeProbe) Title(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("title")
	if len(p.titleErrs) > 0 {
		err := p.titleErrs[0]
		p.titleErrs = p.titleErrs[1:]
		if err != nil {
			return "", err
		}
	}
	return "fixture", nil
}

func (p *fakeProbe) Count(ctx context.Context, rule selectors.Rule) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.elements[ruleKey(rule)]), nil
}

func (p *fakeProbe) IsVisible(ctx context.Context, rule selectors.Rule, index int) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	elems := p.elements[ruleKey(rule)]
	if index < 0 || index >= len(elems) {
		return false, nil
	}
	return elems[index].visible, nil
}

func (p *fakeProbe) Click(ctx context.Context, rule selectors.Rule, index int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("click:%s:%d", ruleKey(rule), index)
	elems := p.elements[ruleKey(rule)]
	if index < 0 || index >= len(elems) {
		return fmt.Errorf("no match at index %d", index)
	}
	return elems[index].clickErr
}

func (p *fakeProbe) Focus(ctx context.Context, rule selectors.Rule, index int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("focus:%s:%d", ruleKey(rule), index)
	elems := p.elements[ruleKey(rule)]
	if index < 0 || index >= len(elems) {
		return fmt.Errorf("no match at index %d", index)
	}
	return elems[index].focusErr
}

func (p *fakeProbe) Text(ctx context.Context, rule selectors.Rule, index int) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	elems := p.elements[ruleKey(rule)]
	if index < 0 || index >= len(elems) {
		return "", fmt.Errorf("no match at index %d", index)
	}
	return elems[index].text, nil
}

func (p *fakeProbe) Press(ctx context.Context, chord string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("press:%s", chord)
	return p.pressErrs[chord]
}

func (p *fakeProbe) InsertText(ctx context.Context, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("insert:%s", text)
	return p.insertErr
}

func (p *fakeProbe) ScrollBy(ctx context.Context, dx, dy float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("scroll:%.0f,%.0f", dx, dy)
	return nil
}

func (p *fakeProbe) ClickAt(ctx context.Context, fracX, fracY float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("clickAt:%.2f,%.2f", fracX, fracY)
	return nil
}

// fakeClock advances simulated time on every Sleep, so deadline loops
// terminate without real waiting. onSleep lets a test mutate the fixture as
// simulated time passes.
type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	slept   []time.Duration
	onSleep func(d time.Duration)
}

var _ Clock = (*fakeClock)(nil)

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.slept = append(c.slept, d)
	hook := c.onSleep
	c.mu.Unlock()

	if hook != nil {
		hook(d)
	}
	return ctx.Err()
}

func (c *fakeClock) sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]time.Duration, len(c.slept))
	copy(out, c.slept)
	return out
}

func (c *fakeClock) elapsedSince(start time.Time) time.Duration {
	return c.Now().Sub(start)
}
