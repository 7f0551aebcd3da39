// Package browser owns the single Chrome instance used for a run: its
// creation with low-footprint and anti-detection settings, access to its
// execution context, and guaranteed teardown.
package browser

import (
	"fmt"
	"time"
)

// Config holds browser session configuration.
type Config struct {
	// Headless runs the browser without a visible window.
	Headless bool

	// WindowWidth is the browser window width.
	WindowWidth int

	// WindowHeight is the browser window height.
	WindowHeight int

	// UserAgent overrides the browser's user agent string.
	UserAgent string

	// ProxyServer is an optional upstream proxy (scheme://host:port).
	ProxyServer string

	// DisableImages skips image loading to save bandwidth.
	DisableImages bool

	// PageLoadTimeout bounds each navigation and reload.
	PageLoadTimeout time.Duration

	// StartTimeout bounds the initial browser launch.
	StartTimeout time.Duration

	// UserDataDir specifies a custom user data directory.
	UserDataDir string
}

// DefaultConfig returns the configuration used for unattended runs.
func DefaultConfig() *Config {
	return &Config{
		Headless:        true,
		WindowWidth:     1366,
		WindowHeight:    900,
		UserAgent:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		DisableImages:   true,
		PageLoadTimeout: 30 * time.Second,
		StartTimeout:    30 * time.Second,
	}
}

// SessionStartError reports a failure to launch the browser. It is fatal:
// the caller must abort the run.
type SessionStartError struct {
	Err error
}

func (e *SessionStartError) Error() string {
	return fmt.Sprintf("browser session start: %v", e.Err)
}

func (e *SessionStartError) Unwrap() error { return e.Err }
