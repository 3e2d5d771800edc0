// File: internal/interact/navigator.go
package interact

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/probeworks/gptprobe/internal/browser"
)

// Navigator visits job URLs with a single retry for dead or blank pages.
type Navigator struct {
	probe  browser.PageProbe
	clock  Clock
	logger *zap.Logger

	navTimeout   time.Duration
	postLoadWait time.Duration
}

// NewNavigator wires a navigator over the given probe.
func NewNavigator(probe browser.PageProbe, clock Clock, logger *zap.Logger, navTimeout, postLoadWait time.Duration) *Navigator {
	return &Navigator{
		probe:        probe,
		clock:        clock,
		logger:       logger.Named("navigator"),
		navTimeout:   navTimeout,
		postLoadWait: postLoadWait,
	}
}

// Visit navigates to url, waits for the content-parsed milestone plus a fixed
// quiet period, and probes page liveness by reading the title. A failed
// attempt gets exactly one full retry; a second failure is reported as
// ErrNavigationFailed, never looped on.
func (n *Navigator) Visit(ctx context.Context, url string) error {
	n.logger.Info("Navigating.", zap.String("url", url))

	if err := n.attempt(ctx, url); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %s: %v", ErrNavigationFailed, url, ctx.Err())
		}
		n.logger.Warn("Page looks dead or blank, retrying once.", zap.String("url", url), zap.Error(err))
		if err := n.attempt(ctx, url); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrNavigationFailed, url, err)
		}
	}
	return nil
}

// attempt runs one full visit sequence: navigate, wait for the DOM to be
// parsed, sit out the quiet period for client-side rendering, then check
// liveness.
func (n *Navigator) attempt(ctx context.Context, url string) error {
	navCtx, cancel := context.WithTimeout(ctx, n.navTimeout)
	defer cancel()

	if err := n.probe.Navigate(navCtx, url); err != nil {
		return fmt.Errorf("goto: %w", err)
	}
	if err := n.probe.WaitReady(navCtx); err != nil {
		return fmt.Errorf("wait ready: %w", err)
	}
	if err := n.clock.Sleep(ctx, n.postLoadWait); err != nil {
		return err
	}
	if _, err := n.probe.Title(ctx); err != nil {
		return fmt.Errorf("liveness probe: %w", err)
	}
	return nil
}
