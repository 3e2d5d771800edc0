// File: cmd/run.go
package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/probeworks/gptprobe/internal/browser"
	"github.com/probeworks/gptprobe/internal/config"
	"github.com/probeworks/gptprobe/internal/interact"
	"github.com/probeworks/gptprobe/internal/jobs"
	"github.com/probeworks/gptprobe/internal/observability"
	"github.com/probeworks/gptprobe/internal/results"
	"github.com/probeworks/gptprobe/internal/runner"
	"github.com/probeworks/gptprobe/internal/selectors"
)

// newRunCmd creates and configures the `run` command.
func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Runs the batch: one question against every URL in the input CSV",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// Bind flags to their Viper keys so command-line flags correctly
			// override config-file and environment values.
			if err := viper.BindPFlag("batch.input", cmd.Flags().Lookup("input")); err != nil {
				return err
			}
			if err := viper.BindPFlag("batch.output_dir", cmd.Flags().Lookup("output")); err != nil {
				return err
			}
			if err := viper.BindPFlag("batch.question", cmd.Flags().Lookup("question")); err != nil {
				return err
			}
			if err := viper.BindPFlag("batch.min_wait", cmd.Flags().Lookup("min-wait")); err != nil {
				return err
			}
			if err := viper.BindPFlag("batch.max_wait", cmd.Flags().Lookup("max-wait")); err != nil {
				return err
			}
			if err := viper.BindPFlag("browser.reuse_profile", cmd.Flags().Lookup("reuse-profile")); err != nil {
				return err
			}
			// --head is the operator-facing inverse of browser.headless.
			if cmd.Flags().Changed("head") {
				head, _ := cmd.Flags().GetBool("head")
				viper.Set("browser.headless", !head)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			var cfg config.Config
			if err := viper.Unmarshal(&cfg); err != nil {
				return fmt.Errorf("failed to unmarshal config with flag overrides: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			jobList, err := jobs.Load(cfg.Batch.Input, logger)
			if err != nil {
				return err
			}
			if len(jobList) == 0 {
				logger.Warn("No jobs found in input CSV; nothing to do.", zap.String("input", cfg.Batch.Input))
				return nil
			}

			sink, err := results.NewSink(filepath.Join(cfg.Batch.OutputDir, "jsonl", "results.jsonl"))
			if err != nil {
				return err
			}

			logger.Info("Batch configured.",
				zap.Int("jobs", len(jobList)),
				zap.String("results", sink.Path()),
				zap.Bool("headless", cfg.Browser.Headless),
			)

			manager := browser.NewManager(&cfg, logger)
			if err := manager.Start(ctx); err != nil {
				return err
			}
			defer manager.Shutdown()

			summary := executeBatch(ctx, &cfg, manager.Probe(), sink, jobList, logger)

			logger.Info("Batch complete.",
				zap.Int("total", summary.Total),
				zap.Int("saved", summary.Saved),
				zap.Int("failed", summary.Failed),
			)
			fmt.Printf("\nBatch complete: %d/%d saved. Results: %s\n", summary.Saved, summary.Total, sink.Path())
			return nil
		},
	}

	runCmd.Flags().StringP("input", "i", "", "CSV with column: gpt_url")
	runCmd.Flags().StringP("output", "o", "", "Output dir for artifacts (overrides config/env)")
	runCmd.Flags().StringP("question", "q", "", "Question to ask every target")
	runCmd.Flags().Bool("head", false, "Visible browser (recommended for first login)")
	runCmd.Flags().Bool("reuse-profile", false, "Persist login state under <output>/user_data")
	runCmd.Flags().Duration("min-wait", 0, "Minimum wait between jobs (overrides config/env)")
	runCmd.Flags().Duration("max-wait", 0, "Maximum wait between jobs (overrides config/env)")

	return runCmd
}

// executeBatch assembles the interaction pipeline over the shared page and
// runs every job through it.
func executeBatch(
	ctx context.Context,
	cfg *config.Config,
	probe browser.PageProbe,
	sink *results.Sink,
	jobList []jobs.Job,
	logger *zap.Logger,
) runner.Summary {
	chains := selectors.FromConfig(cfg.Selectors)
	clock := interact.SystemClock()

	navigator := interact.NewNavigator(probe, clock, logger, cfg.Network.NavigationTimeout, cfg.Network.PostLoadWait)
	locator := interact.NewComposerLocator(probe, chains, clock, logger, cfg.Timeouts.Composer)
	composer := interact.NewComposer(probe, chains, clock, logger)
	waiter := interact.NewResponseWaiter(probe, chains, clock, logger, cfg.Timeouts.GenerationGrace, cfg.Timeouts.PollInterval)
	extractor := interact.NewAnswerExtractor(probe, chains, logger)

	// In headful mode, pre-open the first target and block so the operator
	// can complete any sign-in before the batch starts.
	if !cfg.Browser.Headless {
		loginPause(ctx, navigator, jobList[0].URL, logger)
	}

	batch := runner.New(navigator, locator, composer, waiter, extractor, sink, clock, logger, runner.Options{
		Question: cfg.Batch.Question,
		MinWait:  cfg.Batch.MinWait,
		MaxWait:  cfg.Batch.MaxWait,
	})
	return batch.Run(ctx, jobList)
}

// loginPause opens the first URL and waits for Enter on stdin. Navigation
// failures are tolerated (the batch will retry the URL as its first job), and
// EOF on stdin means a non-interactive run: proceed immediately.
func loginPause(ctx context.Context, navigator *interact.Navigator, firstURL string, logger *zap.Logger) {
	if err := navigator.Visit(ctx, firstURL); err != nil {
		logger.Warn("Pre-open of first URL failed; continuing to login pause.", zap.Error(err))
	}
	fmt.Println("If sign-in is required, complete it in the opened browser. Press Enter here to continue…")
	_, _ = bufio.NewReader(os.Stdin).ReadString('\n')
}
