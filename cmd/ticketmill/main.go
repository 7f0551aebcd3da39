// Package main is the entry point for ticketmill.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ticketmill/application/interact"
	"ticketmill/application/runner"
	"ticketmill/application/workflow"
	"ticketmill/domain/catalog"
	"ticketmill/domain/selector"
	"ticketmill/infrastructure/browser"
	"ticketmill/infrastructure/config"
	"ticketmill/infrastructure/logging"
	"ticketmill/resources"
)

const embeddedSelectors = "selectors/targets.yaml"

type flags struct {
	envFile       string
	masterFile    string
	inputFile     string
	selectorsFile string
	headless      bool
	logLevel      string
	logDir        string
	screenshotDir string
}

func main() {
	var f flags

	rootCmd := &cobra.Command{
		Use:   "ticketmill",
		Short: "Bulk-create support tickets through the provider's web portal",
		Long: "ticketmill logs into the ticketing portal, filters each code from the\n" +
			"daily input list against the master reference data, and drives the\n" +
			"ticket creation flow for every match.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), f)
		},
	}

	rootCmd.Flags().StringVar(&f.envFile, "env-file", "", "environment file with credentials (default .env when present)")
	rootCmd.Flags().StringVar(&f.masterFile, "master", "", "master data CSV (overrides MASTER_DATA_FILE)")
	rootCmd.Flags().StringVar(&f.inputFile, "input", "", "daily code list (overrides DAILY_INPUT_FILE)")
	rootCmd.Flags().StringVar(&f.selectorsFile, "selectors", "", "selector set YAML (default embedded)")
	rootCmd.Flags().BoolVar(&f.headless, "headless", true, "run the browser headless")
	rootCmd.Flags().StringVar(&f.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.Flags().StringVar(&f.logDir, "log-dir", "", "log file directory (prod builds)")
	rootCmd.Flags().StringVar(&f.screenshotDir, "screenshot-dir", "", "save a screenshot per failed code when set")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, f flags) error {
	logCfg := logging.DefaultConfig()
	logCfg.Level = logging.ParseLevel(f.logLevel)
	logCfg.Dir = f.logDir
	logger, closeLog, err := logging.Setup(logCfg)
	if err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	defer closeLog()
	ctx = logging.With(ctx, logger)

	logger.Info("Starting ticketmill")

	cfg, err := config.Load(f.envFile)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if f.masterFile != "" {
		cfg.MasterDataFile = f.masterFile
	}
	if f.inputFile != "" {
		cfg.DailyInputFile = f.inputFile
	}

	lookup, err := catalog.LoadLookup(cfg.MasterDataFile)
	if err != nil {
		return fmt.Errorf("load master data: %w", err)
	}
	logger.Info("Master data loaded", "entries", len(lookup), "file", cfg.MasterDataFile)

	codes, err := catalog.LoadDailyCodes(cfg.DailyInputFile)
	if err != nil {
		return fmt.Errorf("load daily input: %w", err)
	}
	logger.Info("Daily input loaded", "codes", len(codes), "file", cfg.DailyInputFile)

	selectors, err := loadSelectors(f.selectorsFile)
	if err != nil {
		return fmt.Errorf("load selectors: %w", err)
	}

	browserCfg := browser.DefaultConfig()
	browserCfg.Headless = f.headless
	browserCfg.ProxyServer = cfg.ProxyServer
	session := browser.NewSession(browserCfg)
	if err := session.Start(ctx); err != nil {
		return fmt.Errorf("start browser: %w", err)
	}
	defer func() {
		if err := session.Stop(); err != nil {
			logger.Warn("Browser shutdown failed", "error", err)
		}
	}()
	logger.Info("Browser started", "headless", f.headless)

	interactOpts := interact.DefaultOptions()
	interactOpts.DefaultTimeout = cfg.DefaultTimeout
	interactOpts.ShortTimeout = cfg.ShortTimeout
	interactOpts.DropdownRetries = cfg.DropdownRetries
	ui := interact.New(session, selectors, interactOpts)

	wf := workflow.New(ui, workflow.Config{
		LoginURL:       cfg.LoginURL,
		Username:       cfg.Username,
		Password:       cfg.Password,
		DefaultTimeout: cfg.DefaultTimeout,
		ShortTimeout:   cfg.ShortTimeout,
		LongTimeout:    cfg.LongTimeout,
		RetryDelay:     cfg.RetryDelay,
	})

	if !wf.Login(ctx) {
		return fmt.Errorf("login failed")
	}
	if !wf.NavigateToTicketMenu(ctx) {
		return fmt.Errorf("ticket menu unreachable after login")
	}

	ctrl := runner.New(wf, lookup, runner.Config{
		MaxRetries:    cfg.MaxRetries,
		RetryDelay:    cfg.RetryDelay,
		ScreenshotDir: f.screenshotDir,
	}, session)

	stats := ctrl.Run(ctx, codes)
	logger.Info("Run complete", "summary", stats.Summary())
	return nil
}

// loadSelectors returns the embedded selector set, or the override file
// merged over it so partial overrides keep the stock chains.
func loadSelectors(path string) (selector.Set, error) {
	base, err := selector.LoadFromFS(resources.SelectorFiles, embeddedSelectors)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return base, nil
	}
	override, err := selector.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return base.Merge(override), nil
}
