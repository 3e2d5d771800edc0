// File: internal/browser/manager.go
package browser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/probeworks/gptprobe/internal/config"
)

// Manager handles the browser process lifecycle. One browser and one tab are
// shared across all jobs in a batch: the runner is strictly sequential, and a
// single authenticated session is exactly what we want to reuse.
type Manager struct {
	logger *zap.Logger
	cfg    *config.Config

	allocCtx    context.Context
	allocCancel context.CancelFunc
	tabCtx      context.Context
	tabCancel   context.CancelFunc

	startOnce sync.Once
	startErr  error
	closeOnce sync.Once
}

// NewManager creates a browser manager. The browser process is not launched
// until Start is called.
func NewManager(cfg *config.Config, logger *zap.Logger) *Manager {
	return &Manager{
		logger: logger.Named("browser_manager"),
		cfg:    cfg,
	}
}

// Start launches the browser process and opens the single shared tab.
func (m *Manager) Start(ctx context.Context) error {
	m.startOnce.Do(func() {
		profileDir, err := m.resolveProfileDir()
		if err != nil {
			m.startErr = err
			return
		}

		sessionID := uuid.New().String()
		m.logger.Info("Launching browser.",
			zap.String("session_id", sessionID),
			zap.Bool("headless", m.cfg.Browser.Headless),
			zap.String("profile_dir", profileDir),
		)

		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", m.cfg.Browser.Headless),
			chromedp.WindowSize(m.cfg.Browser.Viewport.Width, m.cfg.Browser.Viewport.Height),
			chromedp.UserDataDir(profileDir),
			// Stability flags for container environments.
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.NoSandbox,
			// Keep navigator.webdriver and friends quiet.
			chromedp.Flag("disable-blink-features", "AutomationControlled"),
		)
		for _, arg := range m.cfg.Browser.Args {
			opts = append(opts, chromedp.Flag(arg, true))
		}

		m.allocCtx, m.allocCancel = chromedp.NewExecAllocator(ctx, opts...)
		m.tabCtx, m.tabCancel = chromedp.NewContext(m.allocCtx,
			chromedp.WithLogf(func(format string, v ...interface{}) {
				m.logger.Sugar().Debugf(format, v...)
			}),
		)

		// Force target creation so launch failures surface here, not on the
		// first navigation.
		if err := chromedp.Run(m.tabCtx); err != nil {
			m.startErr = fmt.Errorf("failed to launch browser: %w", err)
			return
		}
	})
	return m.startErr
}

// Probe returns the PageProbe bound to the shared tab. Start must have
// succeeded first.
func (m *Manager) Probe() PageProbe {
	return newChromedpProbe(m.tabCtx, m.logger)
}

// Shutdown closes the tab and the browser process.
func (m *Manager) Shutdown() {
	m.closeOnce.Do(func() {
		m.logger.Info("Shutting down browser.")
		if m.tabCancel != nil {
			m.tabCancel()
		}
		if m.allocCancel != nil {
			m.allocCancel()
		}
	})
}

// resolveProfileDir picks the user-data directory. With profile reuse the
// directory survives runs under the output dir, retaining authentication
// state; otherwise a throwaway directory is used.
func (m *Manager) resolveProfileDir() (string, error) {
	dir := m.cfg.Browser.ProfileDir
	if dir == "" {
		if m.cfg.Browser.ReuseProfile {
			dir = filepath.Join(m.cfg.Batch.OutputDir, "user_data")
		} else {
			dir = filepath.Join(m.cfg.Batch.OutputDir, "tmp_profile")
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create profile dir %q: %w", dir, err)
	}
	return dir, nil
}
