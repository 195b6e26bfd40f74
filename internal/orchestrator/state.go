package orchestrator

import (
	"fmt"

	"dbconsole/internal/services"
)

// State is the lifecycle state of the orchestrator as a whole.
type State int32

const (
	StateIdle State = iota
	StateLaunching
	StateRunning
	StateShuttingDown
	StateTerminated
)

// String makes State satisfy the fmt.Stringer interface.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateLaunching:
		return "Launching"
	case StateRunning:
		return "Running"
	case StateShuttingDown:
		return "ShuttingDown"
	case StateTerminated:
		return "Terminated"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Process exit codes.
const (
	ExitOK    = 0
	ExitError = 1
)

// exitCode maps what triggered the shutdown to the process exit code.
func exitCode(trigger services.Trigger) int {
	if trigger == services.TriggerStartupFailure {
		return ExitError
	}
	return ExitOK
}
