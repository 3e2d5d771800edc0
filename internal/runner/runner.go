// File: internal/runner/runner.go

// Package runner sequences the interaction pipeline over the job list. Jobs
// run strictly one at a time against the single shared page: pacing stays
// human-like and no two jobs can confuse each other's composer state.
package runner

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/probeworks/gptprobe/internal/interact"
	"github.com/probeworks/gptprobe/internal/jobs"
	"github.com/probeworks/gptprobe/internal/results"
)

// State tracks where a job is in its lifecycle. Failed is an absorbing state
// reachable from any non-terminal state.
type State int

const (
	StateIdle State = iota
	StateNavigating
	StateLocatingComposer
	StateTyping
	StateSending
	StateWaitingForReply
	StateExtracting
	StateSaved
	StateFailed
)

var stateNames = map[State]string{
	StateIdle:             "idle",
	StateNavigating:       "navigating",
	StateLocatingComposer: "locating_composer",
	StateTyping:           "typing",
	StateSending:          "sending",
	StateWaitingForReply:  "waiting_for_reply",
	StateExtracting:       "extracting",
	StateSaved:            "saved",
	StateFailed:           "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Component contracts the runner drives. Defined here so tests can substitute
// fakes for the probe-backed implementations in internal/interact.
type (
	// Navigator visits a job URL.
	Navigator interface {
		Visit(ctx context.Context, url string) error
	}
	// Locator surfaces and focuses the composer.
	Locator interface {
		Locate(ctx context.Context) (interact.Match, error)
	}
	// Composer types the question and submits it.
	Composer interface {
		Type(ctx context.Context, text string) error
		Send(ctx context.Context) error
	}
	// Waiter counts assistant messages and rides out generation.
	Waiter interface {
		CountMessages(ctx context.Context) int
		Wait(ctx context.Context, baseline int)
	}
	// Extractor pulls the latest reply text.
	Extractor interface {
		Latest(ctx context.Context) string
	}
	// Sink persists one record per job.
	Sink interface {
		Append(record results.Record) error
	}
)

// Runner owns one batch execution.
type Runner struct {
	navigator Navigator
	locator   Locator
	composer  Composer
	waiter    Waiter
	extractor Extractor
	sink      Sink

	clock  interact.Clock
	logger *zap.Logger
	rng    *rand.Rand

	question string
	minWait  time.Duration
	maxWait  time.Duration
}

// Options carries the batch-level settings.
type Options struct {
	Question string
	MinWait  time.Duration
	MaxWait  time.Duration
}

// Summary reports batch totals.
type Summary struct {
	Total  int
	Saved  int
	Failed int
}

// New assembles a runner from pipeline components.
func New(
	navigator Navigator,
	locator Locator,
	composer Composer,
	waiter Waiter,
	extractor Extractor,
	sink Sink,
	clock interact.Clock,
	logger *zap.Logger,
	opts Options,
) *Runner {
	return &Runner{
		navigator: navigator,
		locator:   locator,
		composer:  composer,
		waiter:    waiter,
		extractor: extractor,
		sink:      sink,
		clock:     clock,
		logger:    logger.Named("runner"),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		question:  opts.Question,
		minWait:   opts.MinWait,
		maxWait:   opts.MaxWait,
	}
}

// Run processes every job in order. A job-level failure is logged and the
// batch moves on — per-job isolation is the core failure-handling contract.
// Run only stops early when the context itself is canceled.
func (r *Runner) Run(ctx context.Context, jobList []jobs.Job) Summary {
	summary := Summary{Total: len(jobList)}

	for i, job := range jobList {
		if ctx.Err() != nil {
			r.logger.Warn("Batch canceled.", zap.Int("remaining", len(jobList)-i))
			break
		}

		log := r.logger.With(zap.String("url", job.URL), zap.Int("job", i+1), zap.Int("of", len(jobList)))
		log.Info("Processing job.")

		if state, err := r.processJob(ctx, job); err != nil {
			summary.Failed++
			log.Error("Job failed.", zap.String("state", state.String()), zap.Error(err))
		} else {
			summary.Saved++
			log.Info("Job saved.")
		}

		r.pace(ctx)
	}

	return summary
}

// processJob drives one job through the state machine. Any component error
// moves the job to Failed; the returned state is the one the failure occurred
// in. Saved is reached even when the captured answer is empty.
func (r *Runner) processJob(ctx context.Context, job jobs.Job) (State, error) {
	state := StateNavigating
	if err := r.navigator.Visit(ctx, job.URL); err != nil {
		return state, err
	}

	// Baseline is captured before sending so the waiter can detect the
	// reply as a count delta.
	baseline := r.waiter.CountMessages(ctx)

	state = StateLocatingComposer
	if _, err := r.locator.Locate(ctx); err != nil {
		return state, err
	}

	state = StateTyping
	if err := r.composer.Type(ctx, r.question); err != nil {
		return state, err
	}

	state = StateSending
	if err := r.composer.Send(ctx); err != nil {
		return state, err
	}

	state = StateWaitingForReply
	r.waiter.Wait(ctx, baseline)

	state = StateExtracting
	answer := r.extractor.Latest(ctx)
	r.logger.Debug("Captured answer.", zap.Int("chars", len(answer)))

	state = StateSaved
	record := results.Record{
		GPTURL:   job.URL,
		Question: r.question,
		Answer:   answer,
		TS:       r.clock.Now().Unix(),
	}
	if err := r.sink.Append(record); err != nil {
		return StateFailed, err
	}
	return state, nil
}

// pace sleeps a randomized interval within [minWait, maxWait] between jobs.
// This is deliberate rate-limiting policy, not a correctness requirement.
func (r *Runner) pace(ctx context.Context) {
	if r.maxWait <= 0 {
		return
	}
	delay := r.minWait
	if spread := r.maxWait - r.minWait; spread > 0 {
		delay += time.Duration(r.rng.Int63n(int64(spread)))
	}
	_ = r.clock.Sleep(ctx, delay)
}
