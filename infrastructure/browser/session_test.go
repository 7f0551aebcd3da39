package browser

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config == nil {
		t.Fatal("DefaultConfig returned nil")
	}
	if !config.Headless {
		t.Error("Headless should default to true")
	}
	if !config.DisableImages {
		t.Error("DisableImages should default to true")
	}
	if config.PageLoadTimeout != 30*time.Second {
		t.Errorf("PageLoadTimeout = %v, want 30s", config.PageLoadTimeout)
	}
	if config.UserAgent == "" {
		t.Error("UserAgent should have a default")
	}
}

func TestNewSession(t *testing.T) {
	t.Run("with nil config", func(t *testing.T) {
		s := NewSession(nil)
		if s == nil {
			t.Fatal("NewSession returned nil")
		}
		if s.config == nil {
			t.Fatal("session config is nil")
		}
	})

	t.Run("with custom config", func(t *testing.T) {
		config := &Config{Headless: false, ProxyServer: "http://proxy:8080"}
		s := NewSession(config)
		if s.config.Headless {
			t.Error("custom config not applied")
		}
		if s.config.ProxyServer != "http://proxy:8080" {
			t.Error("proxy setting not applied")
		}
	})
}

func TestSession_IsRunning_NotStarted(t *testing.T) {
	s := NewSession(nil)
	if s.IsRunning() {
		t.Error("IsRunning() should return false before Start()")
	}
}

func TestSession_Stop_NotStarted(t *testing.T) {
	s := NewSession(nil)

	// Stop must be idempotent and safe on a session that never started.
	if err := s.Stop(); err != nil {
		t.Errorf("Stop() returned error: %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Errorf("second Stop() returned error: %v", err)
	}
}

func TestSession_Run_NotStarted(t *testing.T) {
	s := NewSession(nil)

	err := s.Run(t.Context())
	if err == nil {
		t.Fatal("Run() should fail when the browser is not running")
	}
}

func TestSession_Run_CancelledContext(t *testing.T) {
	s := NewSession(nil)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	// A cancelled deadline-free context must surface its error, never
	// block or dispatch actions.
	if err := s.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() = %v, want context.Canceled", err)
	}
}

func TestSessionStartError(t *testing.T) {
	cause := errors.New("exec: chrome not found")
	err := &SessionStartError{Err: cause}

	if !errors.Is(err, cause) {
		t.Error("SessionStartError should unwrap to its cause")
	}

	var startErr *SessionStartError
	if !errors.As(error(err), &startErr) {
		t.Error("errors.As should match *SessionStartError")
	}
}
