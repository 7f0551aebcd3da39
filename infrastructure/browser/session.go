package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// stealthScript masks the usual automation fingerprints before any page
// script runs.
const stealthScript = `
Object.defineProperty(navigator, 'webdriver', {get: () => undefined});
Object.defineProperty(navigator, 'plugins', {get: () => [1, 2, 3, 4, 5]});
Object.defineProperty(navigator, 'languages', {get: () => ['en-US', 'en']});
`

// Session owns one Chrome instance and its lifecycle. All page interaction
// funnels through Run; the interaction layer composes chromedp actions on
// top of it.
type Session struct {
	config      *Config
	mu          sync.Mutex
	allocCtx    context.Context
	allocCancel context.CancelFunc
	ctx         context.Context
	cancel      context.CancelFunc
	running     bool
}

// NewSession creates a session with the given configuration.
func NewSession(config *Config) *Session {
	if config == nil {
		config = DefaultConfig()
	}
	return &Session{config: config}
}

func (s *Session) buildExecAllocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", s.config.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-notifications", true),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("enable-automation", false),
		chromedp.UserAgent(s.config.UserAgent),
		chromedp.WindowSize(s.config.WindowWidth, s.config.WindowHeight),
	)

	if s.config.DisableImages {
		opts = append(opts, chromedp.Flag("blink-settings", "imagesEnabled=false"))
	}
	if s.config.ProxyServer != "" {
		opts = append(opts, chromedp.ProxyServer(s.config.ProxyServer))
	}
	if s.config.UserDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(s.config.UserDataDir))
	}

	return opts
}

// Start launches the browser and injects the anti-detection script. On any
// failure it tears down whatever was created and returns a SessionStartError.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return &SessionStartError{Err: fmt.Errorf("browser already running")}
	}

	// Allocator context descends from context.Background() so the browser
	// lifecycle is independent of the caller's context.
	s.allocCtx, s.allocCancel = chromedp.NewExecAllocator(
		context.Background(),
		s.buildExecAllocatorOptions()...,
	)
	s.ctx, s.cancel = chromedp.NewContext(s.allocCtx)

	// The first Run launches the chrome process.
	startCtx, cancel := context.WithTimeout(s.ctx, s.config.StartTimeout)
	defer cancel()

	err := chromedp.Run(startCtx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(stealthScript).Do(ctx)
			return err
		}),
	)
	if err != nil {
		s.cleanupLocked()
		return &SessionStartError{Err: err}
	}

	s.running = true
	return nil
}

// Stop closes the browser. It is idempotent and safe on every exit path:
// graceful shutdown is attempted first, with a forced context cancel as the
// fallback if chrome does not exit in time.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false

	done := make(chan error, 1)
	browserCtx := s.ctx
	go func() { done <- chromedp.Cancel(browserCtx) }()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
	}

	s.cleanupLocked()
	return nil
}

func (s *Session) cleanupLocked() {
	s.running = false
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.allocCancel != nil {
		s.allocCancel()
		s.allocCancel = nil
	}
	s.ctx = nil
	s.allocCtx = nil
}

// IsRunning returns true if the browser is active.
func (s *Session) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Session) browserContext() (context.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running || s.ctx == nil {
		return nil, fmt.Errorf("browser not running")
	}
	return s.ctx, nil
}

// Run executes chromedp actions against the browser. The caller's context
// supplies the deadline and cancellation; the browser context supplies the
// target.
func (s *Session) Run(ctx context.Context, actions ...chromedp.Action) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	browserCtx, err := s.browserContext()
	if err != nil {
		return err
	}

	// The execution context descends from the browser context for the
	// target, but is always cancellable so abandoning the call also stops
	// the in-flight actions.
	var execCtx context.Context
	var cancel context.CancelFunc
	if deadline, ok := ctx.Deadline(); ok {
		timeout := time.Until(deadline)
		if timeout <= 0 {
			return context.DeadlineExceeded
		}
		execCtx, cancel = context.WithTimeout(browserCtx, timeout)
	} else {
		execCtx, cancel = context.WithCancel(browserCtx)
	}
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- chromedp.Run(execCtx, actions...) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Navigate loads the given URL, bounded by the page-load timeout.
func (s *Session) Navigate(ctx context.Context, url string) error {
	loadCtx, cancel := context.WithTimeout(ctx, s.config.PageLoadTimeout)
	defer cancel()
	return s.Run(loadCtx, chromedp.Navigate(url))
}

// Reload refreshes the current page, bounded by the page-load timeout.
func (s *Session) Reload(ctx context.Context) error {
	loadCtx, cancel := context.WithTimeout(ctx, s.config.PageLoadTimeout)
	defer cancel()
	return s.Run(loadCtx, chromedp.Reload())
}

// Location returns the current page URL.
func (s *Session) Location(ctx context.Context) (string, error) {
	var url string
	if err := s.Run(ctx, chromedp.Location(&url)); err != nil {
		return "", err
	}
	return url, nil
}

// Screenshot captures the current page as PNG, for failure diagnostics.
func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	shotCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var buf []byte
	if err := s.Run(shotCtx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, fmt.Errorf("capture screenshot: %w", err)
	}
	return buf, nil
}
