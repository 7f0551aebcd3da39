package interact

import (
	"context"
	"errors"
	"time"

	"github.com/chromedp/chromedp"

	"ticketmill/domain/selector"
	"ticketmill/infrastructure/logging"
)

// errElementGone marks a scripted interaction whose element vanished between
// resolution and dispatch.
var errElementGone = errors.New("element no longer present")

func queryBy(sel string) chromedp.QueryOption {
	if selector.StrategyFor(sel) == selector.StrategyXPath {
		return chromedp.BySearch
	}
	return chromedp.ByQuery
}

// ClickOptions controls SafeClick behavior.
type ClickOptions struct {
	// UseScript dispatches the click via JS from the first attempt. The
	// native click path is skipped entirely.
	UseScript bool
	// MaxAttempts bounds click attempts. Zero means 3.
	MaxAttempts int
}

// SafeClick resolves the target, scrolls it into view and clicks it. The
// first attempt is a native click unless UseScript is set; an intercepted or
// failed native click falls back to a script-dispatched one. Failed attempts
// re-resolve the target by selector, which also absorbs stale references.
func (i *Interactor) SafeClick(ctx context.Context, target string, opts ClickOptions) bool {
	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}

	sel, ok := i.Locate(ctx, target, LocateOptions{RequireClickable: true})
	if !ok {
		return false
	}

	log := logging.From(ctx)
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if ctx.Err() != nil {
			return false
		}

		i.eval(ctx, scrollIntoViewExpr(sel), nil)
		i.sleep(ctx, 500*time.Millisecond)

		var err error
		if opts.UseScript || attempt > 0 {
			err = i.scriptClick(ctx, sel)
		} else {
			err = i.nativeClick(ctx, sel)
			if err != nil {
				// Native clicks land at coordinates and can be swallowed by
				// an overlapping element; the scripted click is not.
				err = i.scriptClick(ctx, sel)
			}
		}
		if err == nil {
			return true
		}

		log.Debug("Click attempt failed", "target", target, "attempt", attempt+1, "error", err)
		i.sleep(ctx, i.opts.ClickBackoff)

		if next, ok := i.Locate(ctx, target, LocateOptions{Timeout: i.opts.ShortTimeout, RequireClickable: true}); ok {
			sel = next
		}
	}

	log.Warn("Click exhausted attempts", "target", target, "attempts", maxAttempts)
	return false
}

func (i *Interactor) nativeClick(ctx context.Context, sel string) error {
	clickCtx, cancel := context.WithTimeout(ctx, i.opts.ShortTimeout)
	defer cancel()
	return i.session.Run(clickCtx, chromedp.Click(sel, queryBy(sel), chromedp.NodeVisible))
}

func (i *Interactor) scriptClick(ctx context.Context, sel string) error {
	var clicked bool
	if err := i.eval(ctx, scriptClickExpr(sel), &clicked); err != nil {
		return err
	}
	if !clicked {
		return errElementGone
	}
	return nil
}

// TypeInto clears the target field and types text into it.
func (i *Interactor) TypeInto(ctx context.Context, target, text string, timeout time.Duration) bool {
	sel, ok := i.Locate(ctx, target, LocateOptions{Timeout: timeout, RequireClickable: true})
	if !ok {
		return false
	}

	typeCtx, cancel := context.WithTimeout(ctx, i.opts.DefaultTimeout)
	defer cancel()

	by := queryBy(sel)
	err := i.session.Run(typeCtx,
		chromedp.Focus(sel, by),
		chromedp.SetValue(sel, "", by),
		chromedp.SendKeys(sel, text, by),
	)
	if err != nil {
		logging.From(ctx).Debug("Typing failed", "target", target, "error", err)
		return false
	}
	return true
}

// IsVisible reports whether any candidate of the target is visible within
// timeout. Candidates are tried in order; the first visible one wins.
func (i *Interactor) IsVisible(ctx context.Context, target string, timeout time.Duration) bool {
	if timeout <= 0 {
		timeout = i.opts.ShortTimeout
	}
	for _, sel := range i.selectors.Candidates(target) {
		if ctx.Err() != nil {
			return false
		}
		if i.poll(ctx, timeout, clickableExpr(sel)) {
			return true
		}
	}
	return false
}

// IsVisibleNow reports whether any candidate of the target is visible at
// this instant, one evaluation per candidate with no polling. Use it to
// probe for elements that are usually absent; IsVisible would wait out its
// whole timeout per candidate before concluding absence.
func (i *Interactor) IsVisibleNow(ctx context.Context, target string) bool {
	for _, sel := range i.selectors.Candidates(target) {
		if ctx.Err() != nil {
			return false
		}
		var visible bool
		if err := i.eval(ctx, clickableExpr(sel), &visible); err != nil {
			continue
		}
		if visible {
			return true
		}
	}
	return false
}

// ReadText locates the target and returns its trimmed text content.
func (i *Interactor) ReadText(ctx context.Context, target string, timeout time.Duration) (string, bool) {
	sel, ok := i.Locate(ctx, target, LocateOptions{Timeout: timeout})
	if !ok {
		return "", false
	}

	var text string
	if err := i.eval(ctx, textExpr(sel), &text); err != nil {
		logging.From(ctx).Debug("Reading text failed", "target", target, "error", err)
		return "", false
	}
	return text, true
}
