// Package orchestrator owns the lifecycle of the three services dbconsole
// launches: the admin endpoint, the raw TCP listener and the PG listener.
//
// # Launch
//
// Launch creates and starts each service in the fixed order Admin, TCP, PG
// from one shared config.Args. A service that fails to start is recorded in
// its slot and reported; the remaining services are still attempted. The
// launch result depends on the admin endpoint alone:
//
//   - ExitOK when the admin endpoint is running, whatever happened to the
//     TCP and PG listeners
//   - ExitError when the admin endpoint is not running
//
// When the admin endpoint runs, its URL is handed to the presenter and the
// browser is asked to open it.
//
// # Status
//
// Status can be called at any time from any goroutine. Liveness and status
// text are always queried from the service instance itself.
//
// # Shutdown
//
// ShutdownNow is the single shutdown path for signals, UI actions, remote
// requests and failed launches. The first caller runs the stop sequence;
// every other caller, concurrent or later, returns immediately. The stop
// sequence stops each running service independently, swallowing stop errors
// and panics, releases the presenter and finally exits the process.
//
// # States
//
//	Idle -> Launching -> Running -> ShuttingDown -> Terminated
//
// # Usage Example
//
//	orch := orchestrator.New(orchestrator.Options{
//	    Args:      cfg.Args(version),
//	    Factories: app.ServiceFactories(),
//	    Reporter:  reporting.NewConsoleReporter(),
//	    Opener:    browser.NewOpener(),
//	})
//	if code := orch.Launch(ctx); code != orchestrator.ExitOK {
//	    orch.ShutdownNow(services.TriggerStartupFailure)
//	}
//	<-signals
//	orch.ShutdownNow(services.TriggerSignal)
package orchestrator
