package services

import (
	"context"
	"errors"
	"fmt"

	"dbconsole/internal/config"
)

// Kind identifies one of the three fixed services the launcher manages.
type Kind int

const (
	KindAdmin Kind = iota // browser-facing admin endpoint
	KindTCP               // raw TCP listener
	KindPG                // Postgres wire-protocol listener
)

// Kinds lists every service kind in launch order.
var Kinds = [...]Kind{KindAdmin, KindTCP, KindPG}

// String makes Kind satisfy the fmt.Stringer interface.
func (k Kind) String() string {
	switch k {
	case KindAdmin:
		return "Admin"
	case KindTCP:
		return "TCP"
	case KindPG:
		return "PG"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// MarshalText renders the kind by name in JSON and YAML output.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a kind rendered by MarshalText.
func (k *Kind) UnmarshalText(text []byte) error {
	for _, candidate := range Kinds {
		if candidate.String() == string(text) {
			*k = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown service kind %q", text)
}

// Trigger names what asked the process to shut down.
type Trigger int

const (
	TriggerSignal         Trigger = iota // SIGINT/SIGTERM delivered to the process
	TriggerUI                            // quit action in the presentation layer
	TriggerRemote                        // shutdown request received by the admin endpoint
	TriggerStartupFailure                // launch finished without a running admin endpoint
)

// String makes Trigger satisfy the fmt.Stringer interface.
func (t Trigger) String() string {
	switch t {
	case TriggerSignal:
		return "signal"
	case TriggerUI:
		return "ui"
	case TriggerRemote:
		return "remote"
	case TriggerStartupFailure:
		return "startup-failure"
	default:
		return fmt.Sprintf("Trigger(%d)", int(t))
	}
}

var (
	// ErrAlreadyRunning is returned by Start on a service that is already serving.
	ErrAlreadyRunning = errors.New("service already running")
	// ErrNotRunning is returned by Stop on a service that is not serving.
	ErrNotRunning = errors.New("service not running")
)

// Service is the handle the orchestrator holds for one running service.
// Implementations must be safe for concurrent use: IsRunning and Status
// are queried from UI, HTTP and signal goroutines while Stop may be in progress.
type Service interface {
	Kind() Kind

	// Start binds the listener and begins serving. It returns once the
	// service is accepting connections or has failed to.
	Start(ctx context.Context) error

	// Stop stops serving and releases the listener. Redundant calls return
	// ErrNotRunning and have no other effect.
	Stop(ctx context.Context) error

	IsRunning() bool

	// Status is a human readable one-liner, e.g. "TCP server running at tcp://localhost:9092".
	Status() string

	// URL is where clients reach the service; meaningful for KindAdmin.
	URL() string
}

// SlotStatus is a point-in-time view of one orchestrator slot.
type SlotStatus struct {
	Kind        Kind   `json:"kind"`
	Present     bool   `json:"present"`
	Running     bool   `json:"running"`
	Status      string `json:"status,omitempty"`
	URL         string `json:"url,omitempty"`
	LaunchError string `json:"launchError,omitempty"`
}

// Supervisor is what a service may ask of the process that owns it. The
// admin endpoint uses it to serve status and to relay shutdown requests.
type Supervisor interface {
	ShutdownNow(trigger Trigger)
	Status() []SlotStatus
}

// Factory creates, but does not start, a service from the shared argument set.
type Factory func(args config.Args, sup Supervisor) (Service, error)

// StartError records why a service did not reach the running state.
type StartError struct {
	Kind Kind
	// Message is the instance's own status line when the instance exists,
	// otherwise the raw error text.
	Message string
	Err     error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("%s service failed to start: %s", e.Kind, e.Message)
}

func (e *StartError) Unwrap() error {
	return e.Err
}
