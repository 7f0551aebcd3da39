// Package interact implements the resilient UI interaction layer: selector
// fallback element location, settle waits, retried clicks, and the
// searchable-dropdown driver. Primitives report failure as a boolean and
// never let a transient browser error escape; the workflow layer decides
// what to retry.
package interact

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"

	"ticketmill/domain/selector"
	"ticketmill/infrastructure/browser"
	"ticketmill/infrastructure/logging"
)

// Options tunes the interaction primitives. Zero fields fall back to the
// values of DefaultOptions.
type Options struct {
	// DefaultTimeout bounds ordinary element waits.
	DefaultTimeout time.Duration
	// ShortTimeout bounds quick presence probes.
	ShortTimeout time.Duration
	// PollInterval is the condition polling cadence.
	PollInterval time.Duration
	// SettleDelay is the fixed grace period after a page reports ready.
	SettleDelay time.Duration
	// ClickBackoff separates click attempts.
	ClickBackoff time.Duration
	// TypeDelay separates keystrokes when typing into a combobox. These
	// widgets filter on each keystroke; a batched paste can be missed by
	// their filter logic.
	TypeDelay time.Duration
	// OptionListDelay waits for the async option list to render.
	OptionListDelay time.Duration
	// DropdownRetries bounds attempts of the dropdown driver.
	DropdownRetries int
}

// DefaultOptions returns the tuning used in production runs.
func DefaultOptions() Options {
	return Options{
		DefaultTimeout:  15 * time.Second,
		ShortTimeout:    5 * time.Second,
		PollInterval:    200 * time.Millisecond,
		SettleDelay:     time.Second,
		ClickBackoff:    time.Second,
		TypeDelay:       50 * time.Millisecond,
		OptionListDelay: 1500 * time.Millisecond,
		DropdownRetries: 3,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.DefaultTimeout <= 0 {
		o.DefaultTimeout = def.DefaultTimeout
	}
	if o.ShortTimeout <= 0 {
		o.ShortTimeout = def.ShortTimeout
	}
	if o.PollInterval <= 0 {
		o.PollInterval = def.PollInterval
	}
	if o.SettleDelay <= 0 {
		o.SettleDelay = def.SettleDelay
	}
	if o.ClickBackoff <= 0 {
		o.ClickBackoff = def.ClickBackoff
	}
	if o.TypeDelay <= 0 {
		o.TypeDelay = def.TypeDelay
	}
	if o.OptionListDelay <= 0 {
		o.OptionListDelay = def.OptionListDelay
	}
	if o.DropdownRetries <= 0 {
		o.DropdownRetries = def.DropdownRetries
	}
	return o
}

// Interactor drives the page through a browser session using the selector
// set's fallback chains.
type Interactor struct {
	session   *browser.Session
	selectors selector.Set
	opts      Options
}

// New creates an interactor bound to a session and selector set.
func New(session *browser.Session, selectors selector.Set, opts Options) *Interactor {
	return &Interactor{
		session:   session,
		selectors: selectors,
		opts:      opts.withDefaults(),
	}
}

// Navigate loads the given URL.
func (i *Interactor) Navigate(ctx context.Context, url string) error {
	return i.session.Navigate(ctx, url)
}

// Reload refreshes the current page.
func (i *Interactor) Reload(ctx context.Context) error {
	return i.session.Reload(ctx)
}

// Location returns the current page URL.
func (i *Interactor) Location(ctx context.Context) (string, error) {
	return i.session.Location(ctx)
}

// poll evaluates expr repeatedly until it is truthy or timeout elapses.
func (i *Interactor) poll(ctx context.Context, timeout time.Duration, expr string) bool {
	var ok bool
	pollCtx, cancel := context.WithTimeout(ctx, timeout+time.Second)
	defer cancel()

	err := i.session.Run(pollCtx, chromedp.Poll(expr, &ok,
		chromedp.WithPollingTimeout(timeout),
		chromedp.WithPollingInterval(i.opts.PollInterval),
	))
	return err == nil && ok
}

// eval runs a one-shot JS expression, decoding the result into res (which
// may be nil).
func (i *Interactor) eval(ctx context.Context, expr string, res any) error {
	evalCtx, cancel := context.WithTimeout(ctx, i.opts.ShortTimeout)
	defer cancel()
	return i.session.Run(evalCtx, chromedp.Evaluate(expr, res))
}

// LocateOptions controls element location.
type LocateOptions struct {
	// Timeout bounds the wait per candidate selector. Zero uses the
	// interactor's default.
	Timeout time.Duration
	// RequireClickable additionally demands visible and enabled.
	RequireClickable bool
}

// Locate resolves a logical target to the first candidate selector that
// matches a live element, trying candidates strictly in declared order.
// A miss is reported as ok=false, never as an error.
func (i *Interactor) Locate(ctx context.Context, target string, opts LocateOptions) (string, bool) {
	return i.locateAmong(ctx, target, i.selectors.Candidates(target), opts)
}

func (i *Interactor) locateAmong(ctx context.Context, target string, candidates []string, opts LocateOptions) (string, bool) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = i.opts.DefaultTimeout
	}

	if len(candidates) == 0 {
		logging.From(ctx).Warn("No selector candidates for target", "target", target)
		return "", false
	}

	for _, sel := range candidates {
		if ctx.Err() != nil {
			return "", false
		}
		expr := presentExpr(sel)
		if opts.RequireClickable {
			expr = clickableExpr(sel)
		}
		if i.poll(ctx, timeout, expr) {
			return sel, true
		}
	}

	logging.From(ctx).Debug("Element not found", "target", target)
	return "", false
}

// WaitSettled waits for the page to quiet down: any known loading overlay to
// become invisible (first overlay selector that resolves wins), then the
// document ready state, then a fixed settle delay. Never errors.
func (i *Interactor) WaitSettled(ctx context.Context, timeout time.Duration) bool {
	if timeout <= 0 {
		timeout = i.opts.DefaultTimeout
	}

	for _, sel := range i.selectors.Candidates("loading_overlay") {
		if i.poll(ctx, timeout, invisibleExpr(sel)) {
			break
		}
	}

	if !i.poll(ctx, timeout, readyStateExpr) {
		return false
	}

	i.sleep(ctx, i.opts.SettleDelay)
	return true
}

// sleep pauses without outliving the context.
func (i *Interactor) sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
