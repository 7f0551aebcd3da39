// Package runner drives the per-code ticket creation loop: duplicate and
// unknown-code skips, bounded retries with page recovery in between, and
// run-level accounting.
package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ticketmill/application/workflow"
	"ticketmill/domain/catalog"
	"ticketmill/infrastructure/logging"
)

// TicketCreator is the workflow surface the controller drives. Implemented
// by workflow.Workflow; faked in tests.
type TicketCreator interface {
	CreateTicket(ctx context.Context, code string, entry catalog.Entry) workflow.Outcome
	Recover(ctx context.Context) bool
}

// Screenshotter captures the current page, used for failure evidence.
// Implemented by browser.Session.
type Screenshotter interface {
	Screenshot(ctx context.Context) ([]byte, error)
}

// Config holds run controller settings.
type Config struct {
	// MaxRetries is the number of workflow attempts per code.
	MaxRetries int
	// RetryDelay is the pause before a retry attempt.
	RetryDelay time.Duration
	// ItemDelay is the pause between consecutive codes.
	ItemDelay time.Duration
	// ScreenshotDir enables failure screenshots when non-empty.
	ScreenshotDir string
}

func (c Config) withDefaults() Config {
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 2 * time.Second
	}
	if c.ItemDelay <= 0 {
		c.ItemDelay = time.Second
	}
	return c
}

// Runner processes a daily code list against a reference lookup. The
// processed set holds only codes whose ticket was created; a later
// duplicate of a failed code is attempted again.
type Runner struct {
	wf        TicketCreator
	lookup    catalog.Lookup
	cfg       Config
	shooter   Screenshotter
	processed map[string]struct{}
}

// New builds a Runner. shooter may be nil to disable failure screenshots.
func New(wf TicketCreator, lookup catalog.Lookup, cfg Config, shooter Screenshotter) *Runner {
	return &Runner{
		wf:        wf,
		lookup:    lookup,
		cfg:       cfg.withDefaults(),
		shooter:   shooter,
		processed: make(map[string]struct{}),
	}
}

// Run processes codes sequentially and returns the run's counters. Each
// code increments exactly one counter. Cancellation is observed between
// items; counters for items already processed are preserved.
func (r *Runner) Run(ctx context.Context, codes []string) *Stats {
	log := logging.From(ctx)
	stats := &Stats{Started: time.Now()}
	defer func() { stats.Finished = time.Now() }()

	for i, code := range codes {
		if ctx.Err() != nil {
			log.Warn("Run cancelled", "remaining", len(codes)-i)
			return stats
		}

		if _, seen := r.processed[code]; seen {
			log.Info("Skipping duplicate code", "code", code)
			stats.Skipped++
			continue
		}

		entry, ok := r.lookup[code]
		if !ok {
			log.Warn("Code not in reference data, skipping", "code", code)
			stats.Skipped++
			continue
		}

		log.Info("Processing code", "code", code, "position", i+1, "total", len(codes))
		switch r.processItem(ctx, code, entry) {
		case workflow.OutcomeSuccess:
			r.processed[code] = struct{}{}
			stats.Successful++
		case workflow.OutcomeNoData:
			// A confirmed empty result is a failed item for accounting,
			// but not a UI fault worth a screenshot.
			stats.Failed++
		default:
			stats.Failed++
			r.captureFailure(ctx, code)
		}

		if i < len(codes)-1 {
			r.pause(ctx, r.cfg.ItemDelay)
		}
	}
	return stats
}

// processItem runs the workflow for one code with bounded retries. A
// no-data outcome is terminal: the filters legitimately match nothing and
// retrying cannot change that. A recovery failure after a failed attempt
// abandons the remaining attempts.
func (r *Runner) processItem(ctx context.Context, code string, entry catalog.Entry) workflow.Outcome {
	log := logging.From(ctx).With("code", code)

	for attempt := 1; attempt <= r.cfg.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return workflow.OutcomeFailed
		}

		outcome := r.wf.CreateTicket(ctx, code, entry)
		switch outcome {
		case workflow.OutcomeSuccess:
			log.Info("Ticket created", "attempt", attempt)
			return outcome
		case workflow.OutcomeNoData:
			log.Warn("No data for code")
			return outcome
		}

		if attempt == r.cfg.MaxRetries {
			break
		}
		log.Warn("Attempt failed, recovering", "attempt", attempt)
		r.pause(ctx, r.cfg.RetryDelay)
		if !r.wf.Recover(ctx) {
			log.Error("Recovery failed, abandoning code")
			return workflow.OutcomeFailed
		}
	}

	log.Error("All attempts failed", "attempts", r.cfg.MaxRetries)
	return workflow.OutcomeFailed
}

// captureFailure dumps a PNG of the current page, best effort.
func (r *Runner) captureFailure(ctx context.Context, code string) {
	if r.shooter == nil || r.cfg.ScreenshotDir == "" {
		return
	}
	log := logging.From(ctx)

	buf, err := r.shooter.Screenshot(ctx)
	if err != nil {
		log.Warn("Failure screenshot capture failed", "code", code, "error", err)
		return
	}
	if err := os.MkdirAll(r.cfg.ScreenshotDir, 0o755); err != nil {
		log.Warn("Screenshot directory unavailable", "error", err)
		return
	}
	name := fmt.Sprintf("failure_%s_%s.png", code, time.Now().Format("20060102_150405"))
	path := filepath.Join(r.cfg.ScreenshotDir, name)
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		log.Warn("Failure screenshot write failed", "path", path, "error", err)
		return
	}
	log.Info("Failure screenshot saved", "path", path)
}

func (r *Runner) pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
