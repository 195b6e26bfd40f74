package app

import (
	"dbconsole/internal/orchestrator"
	"dbconsole/internal/reporting"
	"dbconsole/internal/services"
	"dbconsole/internal/services/admin"
	"dbconsole/internal/services/pgwire"
	"dbconsole/internal/services/tcp"
)

// ServiceFactories returns the factory for each slot the launcher fills.
func ServiceFactories() map[services.Kind]services.Factory {
	return map[services.Kind]services.Factory{
		services.KindAdmin: admin.New,
		services.KindTCP:   tcp.New,
		services.KindPG:    pgwire.New,
	}
}

// newOrchestrator wires the configuration into an orchestrator for one run.
// presenter may be nil.
func (a *Application) newOrchestrator(reporter reporting.ServiceReporter, presenter orchestrator.Presenter) *orchestrator.Orchestrator {
	cc := a.config.ConsoleConfig
	opts := orchestrator.Options{
		Args:           cc.Args(a.config.Version),
		Factories:      a.factories,
		Reporter:       reporter,
		Presenter:      presenter,
		Opener:         a.opener,
		DisableBrowser: a.config.NoBrowser || !cc.GlobalSettings.BrowserEnabled(),
		Exit:           a.exit,
	}
	return orchestrator.New(opts)
}
