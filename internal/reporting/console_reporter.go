package reporting

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"dbconsole/pkg/logging"
)

// ConsoleReporter logs every update through pkg/logging and prints the
// lines a user running without the TUI needs to see: where the admin
// endpoint is and why a service did not start.
type ConsoleReporter struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsoleReporter creates a ConsoleReporter that prints to stdout.
func NewConsoleReporter() *ConsoleReporter {
	return NewConsoleReporterWithWriter(os.Stdout)
}

// NewConsoleReporterWithWriter creates a ConsoleReporter printing to out.
func NewConsoleReporterWithWriter(out io.Writer) *ConsoleReporter {
	if out == nil {
		out = io.Discard
	}
	return &ConsoleReporter{out: out}
}

// Report logs the update and prints failures and running status lines.
func (c *ConsoleReporter) Report(update ServiceUpdate) {
	if update.Timestamp.IsZero() {
		update.Timestamp = time.Now()
	}

	subsystem := update.Kind.String()
	logMessage := "State: " + update.State.String()
	if update.Message != "" {
		logMessage += ", " + update.Message
	}

	switch update.State {
	case StateFailed:
		logging.Error(subsystem, update.ErrorDetail, "%s", logMessage)
		c.println(fmt.Sprintf("%s service failed to start: %s", update.Kind, failureText(update)))
	case StateRunning:
		logging.Info(subsystem, "%s", logMessage)
		if update.Message != "" {
			c.println(update.Message)
		}
	case StateStopped:
		if update.ErrorDetail != nil {
			logging.Error(subsystem, update.ErrorDetail, "%s", logMessage)
			return
		}
		logging.Info(subsystem, "%s", logMessage)
	default:
		logging.Debug(subsystem, "%s", logMessage)
	}
}

func (c *ConsoleReporter) println(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, line)
}

// failureText prefers the service's own status line over the raw error.
func failureText(update ServiceUpdate) string {
	switch {
	case update.Message != "":
		return update.Message
	case update.ErrorDetail != nil:
		return update.ErrorDetail.Error()
	default:
		return "unknown error"
	}
}
