package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"dbconsole/internal/browser"
	"dbconsole/internal/config"
	"dbconsole/internal/orchestrator"
	"dbconsole/internal/services"
	"dbconsole/pkg/logging"

	tea "github.com/charmbracelet/bubbletea"
)

// Application is the main application structure that bootstraps and runs dbconsole
type Application struct {
	config    *Config
	logLevel  logging.LogLevel
	factories map[services.Kind]services.Factory
	opener    orchestrator.Opener

	// For tests; default to os.Exit, SIGINT/SIGTERM and the alt screen.
	exit       func(int)
	signals    func() (<-chan os.Signal, func())
	tuiOptions []tea.ProgramOption
}

// NewApplication creates and initializes a new application instance
func NewApplication(cfg *Config) (*Application, error) {
	appLogLevel := logging.LevelInfo
	if cfg.Debug {
		appLogLevel = logging.LevelDebug
	}

	// Initialize logging for CLI output (will be replaced for TUI mode)
	logging.InitForCLI(appLogLevel, os.Stdout)

	var consoleCfg config.ConsoleConfig
	var err error

	if cfg.ConfigPath != "" {
		consoleCfg, err = config.LoadConfigFromPath(cfg.ConfigPath)
		if err != nil {
			logging.Error("Bootstrap", err, "Failed to load configuration from path: %s", cfg.ConfigPath)
			return nil, fmt.Errorf("failed to load configuration from path %s: %w", cfg.ConfigPath, err)
		}
		logging.Info("Bootstrap", "Loaded configuration from custom path: %s", cfg.ConfigPath)
	} else {
		consoleCfg, err = config.LoadConfig()
		if err != nil {
			logging.Error("Bootstrap", err, "Failed to load configuration")
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		logging.Debug("Bootstrap", "Loaded configuration using layered approach")
	}

	return newApplication(cfg, consoleCfg)
}

// newApplication finishes bootstrapping from an already loaded configuration.
func newApplication(cfg *Config, consoleCfg config.ConsoleConfig) (*Application, error) {
	cfg.Overrides.Apply(&consoleCfg)
	if err := consoleCfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	cfg.ConsoleConfig = &consoleCfg

	level := logging.ParseLevel(consoleCfg.GlobalSettings.LogLevel)
	if cfg.Debug {
		level = logging.LevelDebug
	}
	logging.InitForCLI(level, os.Stdout)

	return &Application{
		config:    cfg,
		logLevel:  level,
		factories: ServiceFactories(),
		opener:    browser.NewOpener(),
		exit:      os.Exit,
		signals:   notifySignals,
	}, nil
}

// Run executes the application in the appropriate mode. It returns only
// when the mode could not be set up or after the shutdown sequence ran
// with a non-terminating exit hook.
func (a *Application) Run(ctx context.Context) error {
	if a.config.NoTUI {
		return a.runCLIMode(ctx)
	}
	return a.runTUIMode(ctx)
}

func notifySignals() (<-chan os.Signal, func()) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	return sigChan, func() { signal.Stop(sigChan) }
}
