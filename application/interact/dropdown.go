package interact

import (
	"context"
	"log/slog"
	"time"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"

	"ticketmill/infrastructure/logging"
)

// optionListTarget names the selector chain for the rendered combobox
// option items.
const optionListTarget = "dropdown_options"

// DriveDropdown fills a searchable combobox: focus the input, clear it,
// type the value keystroke by keystroke, then select from the rendered
// option list with exact-match, substring-match and blind keyboard-confirm
// fallbacks, in that order. A rendered list that matches nothing falls back
// to ArrowDown+Enter; a list that never renders closes with Escape and the
// whole attempt repeats, re-resolving the input. Internal errors count as a
// failed attempt and never escape.
func (i *Interactor) DriveDropdown(ctx context.Context, target, value string) bool {
	log := logging.From(ctx)

	for attempt := 0; attempt < i.opts.DropdownRetries; attempt++ {
		if ctx.Err() != nil {
			return false
		}
		if attempt > 0 {
			i.sleep(ctx, i.opts.ClickBackoff)
		}

		sel, ok := i.Locate(ctx, target, LocateOptions{Timeout: i.opts.ShortTimeout * 2, RequireClickable: true})
		if !ok {
			continue
		}

		if !i.focusDropdownInput(ctx, sel) {
			continue
		}

		if !i.typeValue(ctx, value) {
			i.pressEscape(ctx)
			continue
		}

		// Give the widget time to render its async option list.
		i.sleep(ctx, i.opts.OptionListDelay)

		if i.selectOption(ctx, value, log) {
			i.sleep(ctx, 500*time.Millisecond)
			return true
		}

		i.pressEscape(ctx)
		log.Debug("Dropdown attempt failed", "target", target, "value", value, "attempt", attempt+1)
	}

	log.Warn("Dropdown exhausted retries", "target", target, "value", value)
	return false
}

func (i *Interactor) focusDropdownInput(ctx context.Context, sel string) bool {
	i.eval(ctx, scrollIntoViewExpr(sel), nil)
	i.sleep(ctx, 500*time.Millisecond)

	if err := i.nativeClick(ctx, sel); err != nil {
		if err := i.scriptClick(ctx, sel); err != nil {
			return false
		}
	}
	i.sleep(ctx, 300*time.Millisecond)

	// Clear any previous selection text: select-all then delete.
	clearCtx, cancel := context.WithTimeout(ctx, i.opts.ShortTimeout)
	defer cancel()
	err := i.session.Run(clearCtx,
		chromedp.KeyEvent("a", chromedp.KeyModifiers(input.ModifierCtrl)),
		chromedp.KeyEvent(kb.Delete),
	)
	if err != nil {
		return false
	}
	i.sleep(ctx, 200*time.Millisecond)
	return true
}

// typeValue sends the value one rune at a time to the focused input.
func (i *Interactor) typeValue(ctx context.Context, value string) bool {
	for _, r := range value {
		keyCtx, cancel := context.WithTimeout(ctx, i.opts.ShortTimeout)
		err := i.session.Run(keyCtx, chromedp.KeyEvent(string(r)))
		cancel()
		if err != nil {
			return false
		}
		i.sleep(ctx, i.opts.TypeDelay)
	}
	return true
}

func (i *Interactor) selectOption(ctx context.Context, value string, log *slog.Logger) bool {
	listSel, options, ok := i.optionTexts(ctx)
	if !ok || len(options) == 0 {
		return false
	}

	// Index and click must go through the same selector, or the index may
	// land in a different candidate's list.
	if idx, kind := matchOption(options, value); kind != matchNone {
		if i.clickOptionAt(ctx, listSel, idx) {
			log.Debug("Dropdown option selected", "value", value, "match", kind.String())
			return true
		}
	}

	// The list rendered but nothing could be clicked: blind keyboard
	// confirm takes whatever the widget highlights.
	confirmCtx, cancel := context.WithTimeout(ctx, i.opts.ShortTimeout)
	defer cancel()
	if err := i.session.Run(confirmCtx, chromedp.KeyEvent(kb.ArrowDown)); err != nil {
		return false
	}
	i.sleep(ctx, 300*time.Millisecond)
	if err := i.session.Run(confirmCtx, chromedp.KeyEvent(kb.Enter)); err != nil {
		return false
	}
	log.Debug("Dropdown confirmed via keyboard", "value", value)
	return true
}

// optionTexts reads the rendered option list items, trying the option list
// selector chain in order. It returns the winning selector so the caller
// can click by index through the same list.
func (i *Interactor) optionTexts(ctx context.Context) (string, []string, bool) {
	for _, sel := range i.selectors.Candidates(optionListTarget) {
		var texts []string
		if err := i.eval(ctx, optionTextsExpr(sel), &texts); err != nil {
			continue
		}
		if len(texts) > 0 {
			return sel, texts, true
		}
	}
	return "", nil, false
}

func (i *Interactor) clickOptionAt(ctx context.Context, sel string, idx int) bool {
	var clicked bool
	if err := i.eval(ctx, clickIndexExpr(sel, idx), &clicked); err != nil {
		return false
	}
	return clicked
}

func (i *Interactor) pressEscape(ctx context.Context) {
	escCtx, cancel := context.WithTimeout(ctx, i.opts.ShortTimeout)
	defer cancel()
	i.session.Run(escCtx, chromedp.KeyEvent(kb.Escape))
}
