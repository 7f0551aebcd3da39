// Package workflow implements the ticket-creation state machine: dropdown
// filling, filter submission with result validation, and the multi-step
// modal confirmation, plus login and menu navigation for the target
// application. Transient UI trouble is retried within the failing state
// only; exhausting a state fails the whole item.
package workflow

import (
	"context"
	"strings"
	"time"

	"ticketmill/application/interact"
	"ticketmill/domain/catalog"
	"ticketmill/infrastructure/logging"
)

// In-state retry bounds. Exhausting any of them fails the item rather than
// restarting the machine.
const (
	loginAttempts      = 3
	filterAttempts     = 3
	validationAttempts = 3
)

// UI is the interaction surface the state machine drives. Implemented by
// interact.Interactor; faked in tests.
type UI interface {
	Navigate(ctx context.Context, url string) error
	Reload(ctx context.Context) error
	Location(ctx context.Context) (string, error)
	WaitSettled(ctx context.Context, timeout time.Duration) bool
	SafeClick(ctx context.Context, target string, opts interact.ClickOptions) bool
	TypeInto(ctx context.Context, target, text string, timeout time.Duration) bool
	IsVisible(ctx context.Context, target string, timeout time.Duration) bool
	IsVisibleNow(ctx context.Context, target string) bool
	ReadText(ctx context.Context, target string, timeout time.Duration) (string, bool)
	DriveDropdown(ctx context.Context, target, value string) bool
}

// Config holds workflow settings.
type Config struct {
	LoginURL string
	Username string
	Password string

	DefaultTimeout time.Duration
	ShortTimeout   time.Duration
	LongTimeout    time.Duration
	RetryDelay     time.Duration

	// StepPause separates dependent UI steps; the widgets need a beat
	// between a selection landing and the next one opening.
	StepPause time.Duration
	// ValidationPause precedes each result-table probe.
	ValidationPause time.Duration
}

func (c Config) withDefaults() Config {
	if c.DefaultTimeout <= 0 {
		c.DefaultTimeout = 15 * time.Second
	}
	if c.ShortTimeout <= 0 {
		c.ShortTimeout = 5 * time.Second
	}
	if c.LongTimeout <= 0 {
		c.LongTimeout = 30 * time.Second
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 2 * time.Second
	}
	if c.StepPause <= 0 {
		c.StepPause = 500 * time.Millisecond
	}
	if c.ValidationPause <= 0 {
		c.ValidationPause = 2 * time.Second
	}
	return c
}

// Workflow drives the ticket-creation flow through a UI.
type Workflow struct {
	ui  UI
	cfg Config
}

// New creates a workflow over the given UI.
func New(ui UI, cfg Config) *Workflow {
	return &Workflow{ui: ui, cfg: cfg.withDefaults()}
}

var scripted = interact.ClickOptions{UseScript: true}

// Login signs into the target application, retrying the whole form flow up
// to three times.
func (w *Workflow) Login(ctx context.Context) bool {
	log := logging.From(ctx)

	for attempt := 1; attempt <= loginAttempts; attempt++ {
		if ctx.Err() != nil {
			return false
		}
		log.Info("Login attempt", "attempt", attempt)

		if err := w.ui.Navigate(ctx, w.cfg.LoginURL); err != nil {
			log.Warn("Login page navigation failed", "error", err)
			w.pause(ctx, w.cfg.RetryDelay)
			continue
		}
		if !w.ui.WaitSettled(ctx, w.cfg.LongTimeout) {
			continue
		}
		if !w.ui.TypeInto(ctx, "username_input", w.cfg.Username, w.cfg.DefaultTimeout) {
			continue
		}
		w.pause(ctx, w.cfg.StepPause)
		if !w.ui.TypeInto(ctx, "password_input", w.cfg.Password, w.cfg.DefaultTimeout) {
			continue
		}
		w.pause(ctx, w.cfg.StepPause)
		if !w.ui.SafeClick(ctx, "login_button", scripted) {
			continue
		}
		if !w.ui.IsVisible(ctx, "sidebar", w.cfg.LongTimeout) {
			continue
		}

		url, err := w.ui.Location(ctx)
		if err == nil && !strings.Contains(strings.ToLower(url), "login") {
			log.Info("Login successful")
			return true
		}
	}

	log.Error("All login attempts failed")
	return false
}

// NavigateToTicketMenu opens the configuration section and its ticket page,
// then verifies the filter form is present.
func (w *Workflow) NavigateToTicketMenu(ctx context.Context) bool {
	log := logging.From(ctx)

	if !w.ui.SafeClick(ctx, "configuring_menu", scripted) {
		return false
	}
	w.pause(ctx, 4*w.cfg.StepPause)

	if !w.ui.SafeClick(ctx, "ticket_menu", scripted) {
		return false
	}
	if !w.ui.WaitSettled(ctx, w.cfg.LongTimeout) {
		log.Warn("Ticket page load timeout")
	}

	if !w.ui.IsVisible(ctx, "city_input", w.cfg.ShortTimeout) {
		return false
	}
	log.Info("Navigated to ticket page")
	return true
}

// Recover resets stuck widget state with a full page refresh and
// re-navigation to the ticket menu. Used between failed item attempts.
func (w *Workflow) Recover(ctx context.Context) bool {
	if err := w.ui.Reload(ctx); err != nil {
		logging.From(ctx).Warn("Page refresh failed", "error", err)
		return false
	}
	w.pause(ctx, w.cfg.RetryDelay)
	w.ui.WaitSettled(ctx, w.cfg.LongTimeout)
	return w.NavigateToTicketMenu(ctx)
}

// CreateTicket runs the creation state machine for one code. The entry
// supplies the dependent dropdown values; the code is both the third filter
// and the expected result row.
func (w *Workflow) CreateTicket(ctx context.Context, code string, entry catalog.Entry) Outcome {
	log := logging.From(ctx).With("code", code)

	state := stateFillingFilters
	filtersLeft := filterAttempts

	for {
		if ctx.Err() != nil {
			return OutcomeFailed
		}

		switch state {
		case stateFillingFilters:
			if !w.fillFilters(ctx, code, entry) {
				log.Warn("Filling filters failed")
				return OutcomeFailed
			}
			state = stateFiltering

		case stateFiltering:
			if filtersLeft == 0 {
				log.Warn("Filter attempts exhausted")
				return OutcomeFailed
			}
			filtersLeft--
			if !w.ui.SafeClick(ctx, "filter_button", scripted) {
				continue
			}
			w.ui.WaitSettled(ctx, w.cfg.DefaultTimeout)
			state = stateValidatingResult

		case stateValidatingResult:
			switch w.validateResult(ctx, code) {
			case validationNoData:
				// Genuine "no results" never changes on retry.
				log.Warn("No data for filters")
				return OutcomeNoData
			case validationMatch:
				state = stateOpeningTicketModal
			case validationMismatch:
				// The table likely has not refreshed yet; re-filtering is
				// the correction.
				log.Info("Result mismatch, re-filtering")
				w.pause(ctx, 2*w.cfg.StepPause)
				state = stateFiltering
			default:
				log.Warn("Result validation failed")
				return OutcomeFailed
			}

		case stateOpeningTicketModal:
			if !w.ui.SafeClick(ctx, "create_ticket_icon", scripted) {
				return OutcomeFailed
			}
			w.ui.WaitSettled(ctx, w.cfg.DefaultTimeout)
			w.pause(ctx, w.cfg.ValidationPause)
			if !w.ui.SafeClick(ctx, "modal_create_button", scripted) {
				return OutcomeFailed
			}
			w.pause(ctx, w.cfg.StepPause)
			state = stateConfirmingCreate

		case stateConfirmingCreate:
			if !w.ui.SafeClick(ctx, "confirm_create_button", scripted) {
				return OutcomeFailed
			}
			w.pause(ctx, 3*w.cfg.StepPause)
			state = stateDone

		case stateDone:
			log.Info("Ticket created")
			return OutcomeSuccess
		}
	}
}

// fillFilters drives the three dependent dropdowns in fixed order. Any
// failure aborts the item; there is no partial credit.
func (w *Workflow) fillFilters(ctx context.Context, code string, entry catalog.Entry) bool {
	if !w.ui.DriveDropdown(ctx, "city_input", entry.City) {
		return false
	}
	w.pause(ctx, w.cfg.StepPause)

	if !w.ui.DriveDropdown(ctx, "region_input", entry.Region) {
		return false
	}
	w.pause(ctx, w.cfg.StepPause)

	if !w.ui.DriveDropdown(ctx, "code_input", code) {
		return false
	}
	w.pause(ctx, 2*w.cfg.StepPause)
	return true
}

// validateResult inspects the filter result: a confirmed no-data marker is
// terminal, otherwise the first row's code cell must equal the expected
// code. A row that never renders is retried a bounded number of times.
func (w *Workflow) validateResult(ctx context.Context, expected string) validation {
	for attempt := 0; attempt < validationAttempts; attempt++ {
		if ctx.Err() != nil {
			return validationFailed
		}
		w.pause(ctx, w.cfg.ValidationPause)

		// The no-data marker is usually absent; an instant probe avoids
		// paying a full poll timeout on every healthy validation.
		if w.ui.IsVisibleNow(ctx, "no_data_message") {
			return validationNoData
		}

		if !w.ui.IsVisible(ctx, "data_row", w.cfg.ShortTimeout) {
			w.pause(ctx, w.cfg.StepPause)
			continue
		}

		if text, ok := w.ui.ReadText(ctx, "result_code_cell", 2*w.cfg.ShortTimeout); ok {
			if strings.TrimSpace(text) == expected {
				return validationMatch
			}
			return validationMismatch
		}

		w.pause(ctx, w.cfg.StepPause)
	}
	return validationFailed
}

func (w *Workflow) pause(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
