package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"dbconsole/internal/config"
	"dbconsole/internal/reporting"
	"dbconsole/internal/services"
	"dbconsole/pkg/logging"
)

const subsystem = "Orchestrator"

// Presenter is the optional presentation layer. ShowURL surfaces the admin
// endpoint after a successful launch; Release frees any UI resource before
// the process exits.
type Presenter interface {
	ShowURL(url string)
	Release()
}

// Opener opens a URL in the system browser.
type Opener interface {
	Open(url string) error
}

// ErrAdminNotRunning is returned by OpenBrowser when there is no URL to open.
var ErrAdminNotRunning = errors.New("admin endpoint is not running")

// Options configures an Orchestrator. Only Factories is required.
type Options struct {
	// Args is handed verbatim to every factory.
	Args config.Args

	Factories map[services.Kind]services.Factory

	Reporter  reporting.ServiceReporter
	Presenter Presenter
	Opener    Opener

	// DisableBrowser skips opening the admin URL after launch.
	DisableBrowser bool

	// Exit terminates the process. Defaults to os.Exit.
	Exit func(code int)
}

// Orchestrator launches the three services, answers status queries and runs
// the shutdown sequence at most once. It is safe for concurrent use.
type Orchestrator struct {
	args           config.Args
	factories      map[services.Kind]services.Factory
	reporter       reporting.ServiceReporter
	presenter      Presenter
	opener         Opener
	disableBrowser bool
	stopTimeout    time.Duration
	exit           func(int)

	slots [len(services.Kinds)]*slot

	state        atomic.Int32
	launched     atomic.Bool
	shuttingDown atomic.Bool
	done         chan struct{}
}

// New creates an orchestrator in the Idle state. No service is created
// until Launch is called.
func New(opts Options) *Orchestrator {
	o := &Orchestrator{
		args:           opts.Args,
		factories:      opts.Factories,
		reporter:       opts.Reporter,
		presenter:      opts.Presenter,
		opener:         opts.Opener,
		disableBrowser: opts.DisableBrowser,
		stopTimeout:    opts.Args.StopTimeout,
		exit:           opts.Exit,
		done:           make(chan struct{}),
	}
	if o.reporter == nil {
		o.reporter = reporting.NopReporter{}
	}
	if o.stopTimeout <= 0 {
		o.stopTimeout = config.DefaultStopTimeout
	}
	if o.exit == nil {
		o.exit = os.Exit
	}
	for i, kind := range services.Kinds {
		o.slots[i] = &slot{kind: kind}
	}
	return o
}

// Launch creates and starts every service in launch order and returns
// ExitOK when the admin endpoint is running, ExitError otherwise. The start
// attempts run sequentially and each runs to completion; a failure never
// prevents the next attempt. Launch may be called once; later calls return
// ExitError without touching any service.
func (o *Orchestrator) Launch(ctx context.Context) int {
	if !o.launched.CompareAndSwap(false, true) {
		logging.Warn(subsystem, "Launch called more than once, ignoring")
		return ExitError
	}
	o.state.CompareAndSwap(int32(StateIdle), int32(StateLaunching))
	logging.Debug(subsystem, "Launching services")

	for _, s := range o.slots {
		if o.shuttingDown.Load() {
			logging.Info(subsystem, "Shutdown requested during launch, skipping %s and later services", s.kind)
			break
		}
		o.launchSlot(ctx, s)
	}

	o.state.CompareAndSwap(int32(StateLaunching), int32(StateRunning))

	admin := o.slot(services.KindAdmin).status()
	if !admin.Running {
		logging.Error(subsystem, nil, "Admin endpoint is not running")
		return ExitError
	}
	if o.shuttingDown.Load() {
		return ExitOK
	}

	if o.presenter != nil {
		o.presenter.ShowURL(admin.URL)
	}
	if !o.disableBrowser {
		if err := o.openURL(admin.URL); err != nil {
			logging.Warn(subsystem, "Could not open browser at %s: %v", admin.URL, err)
		}
	}
	return ExitOK
}

// launchSlot runs one create+start attempt and records the outcome.
func (o *Orchestrator) launchSlot(ctx context.Context, s *slot) {
	o.reporter.Report(reporting.ServiceUpdate{Kind: s.kind, State: reporting.StateStarting})

	inst, startErr := o.createAndStart(ctx, s.kind)

	var launchErr error
	if startErr != nil {
		launchErr = &services.StartError{Kind: s.kind, Message: failureMessage(inst, startErr), Err: startErr}
	}

	if !s.store(inst, launchErr) {
		// The stop sequence already passed this slot.
		if inst != nil && inst.IsRunning() {
			o.stopInstance(s.kind, inst)
		}
		return
	}

	if launchErr != nil {
		logging.Error(subsystem, startErr, "%s service failed to start", s.kind)
		update := reporting.ServiceUpdate{Kind: s.kind, State: reporting.StateFailed, ErrorDetail: startErr}
		if inst != nil {
			update.Message = inst.Status()
		}
		o.reporter.Report(update)
		return
	}

	logging.Info(subsystem, "%s service started", s.kind)
	o.reporter.Report(reporting.ServiceUpdate{
		Kind:    s.kind,
		State:   reporting.StateRunning,
		Message: inst.Status(),
		URL:     inst.URL(),
	})
}

// createAndStart returns the instance whenever the factory produced one,
// even if starting it failed. A start that returns no error but leaves the
// instance not running counts as a failure.
func (o *Orchestrator) createAndStart(ctx context.Context, kind services.Kind) (inst services.Service, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while starting %s service: %v", kind, r)
		}
	}()

	factory := o.factories[kind]
	if factory == nil {
		return nil, fmt.Errorf("no factory registered for %s service", kind)
	}

	inst, err = factory(o.args, o)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s service: %w", kind, err)
	}
	if inst == nil {
		return nil, fmt.Errorf("factory for %s service returned no instance", kind)
	}

	if err := inst.Start(ctx); err != nil {
		return inst, err
	}
	if !inst.IsRunning() {
		return inst, fmt.Errorf("%s service did not reach the running state", kind)
	}
	return inst, nil
}

func failureMessage(inst services.Service, err error) string {
	if inst != nil {
		if status := inst.Status(); status != "" {
			return status
		}
	}
	return err.Error()
}

// Status reports every slot in launch order.
func (o *Orchestrator) Status() []services.SlotStatus {
	out := make([]services.SlotStatus, 0, len(o.slots))
	for _, s := range o.slots {
		out = append(out, s.status())
	}
	return out
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State {
	return State(o.state.Load())
}

// Done is closed once the stop sequence has finished, right before the
// process exits.
func (o *Orchestrator) Done() <-chan struct{} {
	return o.done
}

// OpenBrowser opens the admin endpoint's URL in the system browser.
func (o *Orchestrator) OpenBrowser() error {
	admin := o.slot(services.KindAdmin).status()
	if !admin.Running || admin.URL == "" {
		return ErrAdminNotRunning
	}
	return o.openURL(admin.URL)
}

func (o *Orchestrator) openURL(url string) error {
	if o.opener == nil {
		return nil
	}
	logging.Debug(subsystem, "Opening browser at %s", url)
	return o.opener.Open(url)
}

// ShutdownNow stops every running service, releases the presenter and exits
// the process. Only the first call does anything; every other call returns
// immediately. The exit code is ExitError for TriggerStartupFailure and
// ExitOK otherwise.
func (o *Orchestrator) ShutdownNow(trigger services.Trigger) {
	if !o.shuttingDown.CompareAndSwap(false, true) {
		logging.Debug(subsystem, "Shutdown already in progress, ignoring %s trigger", trigger)
		return
	}
	o.state.Store(int32(StateShuttingDown))
	logging.Info(subsystem, "Shutting down (trigger: %s)", trigger)

	for _, s := range o.slots {
		o.stopSlot(s)
	}

	if o.presenter != nil {
		guard("release presenter", o.presenter.Release)
	}

	code := exitCode(trigger)
	o.state.Store(int32(StateTerminated))
	close(o.done)
	logging.Info(subsystem, "Shutdown complete, exiting with code %d", code)
	o.exit(code)
}

// stopSlot seals the slot and stops its instance if it is running. The slot
// is cleared only when the stop succeeded.
func (o *Orchestrator) stopSlot(s *slot) {
	inst := s.seal()
	if inst == nil {
		return
	}
	if !inst.IsRunning() {
		logging.Debug(subsystem, "%s service not running, nothing to stop", s.kind)
		return
	}
	if o.stopInstance(s.kind, inst) {
		s.clear()
	}
}

// stopInstance stops one instance, logging and swallowing any error or panic.
func (o *Orchestrator) stopInstance(kind services.Kind, inst services.Service) (ok bool) {
	o.reporter.Report(reporting.ServiceUpdate{Kind: kind, State: reporting.StateStopping})

	ctx, cancel := context.WithTimeout(context.Background(), o.stopTimeout)
	defer cancel()

	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic while stopping %s service: %v", kind, r)
			}
		}()
		err = inst.Stop(ctx)
	}()

	if err != nil {
		logging.Error(subsystem, err, "Failed to stop %s service", kind)
		o.reporter.Report(reporting.ServiceUpdate{Kind: kind, State: reporting.StateStopped, ErrorDetail: err})
		return false
	}
	o.reporter.Report(reporting.ServiceUpdate{Kind: kind, State: reporting.StateStopped, Message: inst.Status()})
	return true
}

func (o *Orchestrator) slot(kind services.Kind) *slot {
	return o.slots[kind]
}

// guard runs fn, logging instead of propagating a panic.
func guard(what string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error(subsystem, fmt.Errorf("%v", r), "Panic during %s", what)
		}
	}()
	fn()
}
