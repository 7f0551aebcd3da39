// Package config loads runtime settings from the environment, with an
// optional .env file for credentials and tuning overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings for a run.
type Config struct {
	// LoginURL is the entry page of the target application.
	LoginURL string
	// Username and Password are the login credentials.
	Username string
	Password string
	// ProxyServer is an optional upstream proxy (scheme://host:port).
	ProxyServer string

	// MasterDataFile is the lookup table mapping ticket codes to city/region.
	MasterDataFile string
	// DailyInputFile is the day's ticket code list, one code per line.
	DailyInputFile string

	// DefaultTimeout bounds ordinary element waits.
	DefaultTimeout time.Duration
	// ShortTimeout bounds quick presence probes.
	ShortTimeout time.Duration
	// LongTimeout bounds page loads and login.
	LongTimeout time.Duration

	// MaxRetries is the per-item workflow retry budget.
	MaxRetries int
	// RetryDelay separates recovery attempts.
	RetryDelay time.Duration
	// DropdownRetries bounds attempts of the combobox driver per field.
	DropdownRetries int
}

// Load reads configuration from the environment. If envFile is non-empty it
// is loaded first; a missing default ".env" is tolerated, an explicitly
// named file that cannot be read is an error.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	} else if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	cfg := &Config{
		LoginURL:       os.Getenv("LOGIN_URL"),
		Username:       os.Getenv("USERNAME"),
		Password:       os.Getenv("PASSWORD"),
		ProxyServer:    os.Getenv("PROXY_SERVER"),
		MasterDataFile: envOr("MASTER_DATA_FILE", "master_data.csv"),
		DailyInputFile: envOr("DAILY_INPUT_FILE", "daily_input.txt"),
	}

	var missing []string
	for _, v := range []struct{ name, val string }{
		{"LOGIN_URL", cfg.LoginURL},
		{"USERNAME", cfg.Username},
		{"PASSWORD", cfg.Password},
	} {
		if v.val == "" {
			missing = append(missing, v.name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %v", missing)
	}

	var err error
	if cfg.DefaultTimeout, err = envSeconds("DEFAULT_TIMEOUT", 15); err != nil {
		return nil, err
	}
	if cfg.ShortTimeout, err = envSeconds("SHORT_TIMEOUT", 5); err != nil {
		return nil, err
	}
	if cfg.LongTimeout, err = envSeconds("LONG_TIMEOUT", 30); err != nil {
		return nil, err
	}
	if cfg.MaxRetries, err = envInt("MAX_RETRIES", 3); err != nil {
		return nil, err
	}
	if cfg.RetryDelay, err = envSeconds("RETRY_DELAY", 2); err != nil {
		return nil, err
	}
	if cfg.DropdownRetries, err = envInt("DROPDOWN_RETRIES", 3); err != nil {
		return nil, err
	}

	return cfg, nil
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func envInt(name string, fallback int) (int, error) {
	v := os.Getenv(name)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, v)
	}
	return n, nil
}

func envSeconds(name string, fallback int) (time.Duration, error) {
	n, err := envInt(name, fallback)
	if err != nil {
		return 0, err
	}
	return time.Duration(n) * time.Second, nil
}
