package app

import (
	"context"
	"fmt"
	"os"

	"dbconsole/internal/orchestrator"
	"dbconsole/internal/reporting"
	"dbconsole/internal/services"
	"dbconsole/internal/tui"
	"dbconsole/pkg/logging"
)

// runCLIMode executes the non-interactive command line mode
func (a *Application) runCLIMode(ctx context.Context) error {
	logging.Info("CLI", "Running in no-TUI mode.")

	sigChan, stop := a.signals()
	defer stop()

	orch := a.newOrchestrator(reporting.NewConsoleReporter(), nil)
	if code := orch.Launch(ctx); code != orchestrator.ExitOK {
		orch.ShutdownNow(services.TriggerStartupFailure)
		return nil
	}

	logging.Info("CLI", "Services started. Press Ctrl+C to stop all services and exit.")
	a.waitForShutdown(ctx, orch, sigChan, nil)
	return nil
}

// runTUIMode executes the interactive terminal UI mode
func (a *Application) runTUIMode(ctx context.Context) error {
	logging.Info("CLI", "Starting TUI mode...")

	sigChan, stop := a.signals()
	defer stop()

	logChan := logging.InitForTUI(a.logLevel)
	presenter := tui.NewPresenter(a.config.Version, logChan, a.logLevel, a.tuiOptions...)

	orch := a.newOrchestrator(presenter.Reporter(), presenter)
	presenter.Start(orch)

	if code := orch.Launch(ctx); code != orchestrator.ExitOK {
		// The failures went to the UI; repeat them on the restored terminal.
		presenter.Release()
		printFailures(orch.Status())
		orch.ShutdownNow(services.TriggerStartupFailure)
		return nil
	}

	a.waitForShutdown(ctx, orch, sigChan, presenter.Done())
	return nil
}

// waitForShutdown blocks until something asks the process to stop. A remote
// shutdown runs on the admin endpoint's goroutine, so here it only needs
// to be waited for.
func (a *Application) waitForShutdown(ctx context.Context, orch *orchestrator.Orchestrator, sigChan <-chan os.Signal, uiDone <-chan struct{}) {
	select {
	case sig := <-sigChan:
		logging.Info("CLI", "Received %s, shutting down", sig)
		orch.ShutdownNow(services.TriggerSignal)
	case <-uiDone:
		orch.ShutdownNow(services.TriggerUI)
	case <-ctx.Done():
		orch.ShutdownNow(services.TriggerSignal)
	case <-orch.Done():
	}
	// A concurrent trigger may still be running the stop sequence.
	<-orch.Done()
}

func printFailures(statuses []services.SlotStatus) {
	for _, st := range statuses {
		if st.LaunchError != "" {
			fmt.Fprintln(os.Stderr, st.LaunchError)
		}
	}
}
