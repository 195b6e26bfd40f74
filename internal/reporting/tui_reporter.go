package reporting

import (
	"time"

	"dbconsole/pkg/logging"

	tea "github.com/charmbracelet/bubbletea"
)

// TUIReporter is an implementation of ServiceReporter that sends updates to a channel
// for the TUI to process.
type TUIReporter struct {
	updateChan chan<- tea.Msg
}

// NewTUIReporter creates a new TUIReporter that sends updates to the provided TUI message channel.
func NewTUIReporter(updateChan chan<- tea.Msg) *TUIReporter {
	return &TUIReporter{updateChan: updateChan}
}

// Report sends the update wrapped in a ReporterUpdateMsg. It never blocks:
// when the channel is full the update is dropped.
func (t *TUIReporter) Report(update ServiceUpdate) {
	if t.updateChan == nil {
		return
	}

	if update.Timestamp.IsZero() {
		update.Timestamp = time.Now()
	}

	select {
	case t.updateChan <- ReporterUpdateMsg{Update: update}:
	default:
		if update.State == StateFailed || update.State == StateRunning {
			logging.Warn("TUIReporter", "TUI channel full, dropping update for %s (state=%s)", update.Kind, update.State)
		}
	}
}
