package reporting

import (
	"fmt"
	"time"

	"dbconsole/internal/services"

	tea "github.com/charmbracelet/bubbletea"
)

// ServiceState is the lifecycle step a service update describes.
type ServiceState string

const (
	StateStarting ServiceState = "Starting"
	StateRunning  ServiceState = "Running"
	StateFailed   ServiceState = "Failed"
	StateStopping ServiceState = "Stopping"
	StateStopped  ServiceState = "Stopped"
)

// String makes ServiceState satisfy the fmt.Stringer interface.
func (s ServiceState) String() string {
	return string(s)
}

// ServiceUpdate carries one lifecycle step of one service slot from the
// orchestrator to whoever presents it.
type ServiceUpdate struct {
	Timestamp time.Time
	Kind      services.Kind
	State     ServiceState

	// Message is the service's own status line when it has one.
	Message string
	URL     string

	// ErrorDetail is set for StateFailed and for stop errors.
	ErrorDetail error
}

// String provides a simple string representation for debugging the update itself.
func (u ServiceUpdate) String() string {
	return fmt.Sprintf("Update(TS: %s, Kind: %s, State: %s, Msg: '%s', URL: '%s', Err: %v)",
		u.Timestamp.Format(time.RFC3339), u.Kind, u.State, u.Message, u.URL, u.ErrorDetail)
}

// ServiceReporter receives service updates. Implementations must be safe
// for concurrent use: updates arrive from launch, UI and signal goroutines.
type ServiceReporter interface {
	Report(update ServiceUpdate)
}

// ReporterUpdateMsg is the tea.Msg used by TUIReporter to send updates to the TUI.
type ReporterUpdateMsg struct {
	Update ServiceUpdate
}

var _ tea.Msg = ReporterUpdateMsg{}

// NopReporter discards every update.
type NopReporter struct{}

func (NopReporter) Report(ServiceUpdate) {}
