package tui

import (
	"os"
	"sync"
	"sync/atomic"
	"time"

	"dbconsole/internal/reporting"
	"dbconsole/pkg/logging"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	updateBufferSize = 256
	releaseTimeout   = 2 * time.Second
)

// Presenter runs the console UI as a bubbletea program and implements the
// orchestrator's presentation contract.
type Presenter struct {
	version  string
	logChan  <-chan logging.LogEntry
	logLevel logging.LogLevel
	opts     []tea.ProgramOption

	updates chan tea.Msg
	program *tea.Program
	started atomic.Bool
	done    chan struct{}
	release sync.Once
}

// NewPresenter prepares the UI. logChan is the channel returned by
// logging.InitForTUI; logLevel is restored for CLI logging on Release.
func NewPresenter(version string, logChan <-chan logging.LogEntry, logLevel logging.LogLevel, opts ...tea.ProgramOption) *Presenter {
	if len(opts) == 0 {
		opts = []tea.ProgramOption{tea.WithAltScreen()}
	}
	return &Presenter{
		version:  version,
		logChan:  logChan,
		logLevel: logLevel,
		opts:     opts,
		updates:  make(chan tea.Msg, updateBufferSize),
		done:     make(chan struct{}),
	}
}

// Reporter returns a ServiceReporter that feeds this UI.
func (p *Presenter) Reporter() reporting.ServiceReporter {
	return reporting.NewTUIReporter(p.updates)
}

// Start runs the program in the background against console.
func (p *Presenter) Start(console Console) {
	if !p.started.CompareAndSwap(false, true) {
		return
	}
	p.program = tea.NewProgram(NewModel(console, p.version, p.logChan, p.updates), p.opts...)
	go func() {
		defer close(p.done)
		if _, err := p.program.Run(); err != nil {
			logging.Error("TUI", err, "Console UI exited with error")
		}
	}()
}

// Done is closed when the program has exited.
func (p *Presenter) Done() <-chan struct{} {
	return p.done
}

// ShowURL displays the admin endpoint URL.
func (p *Presenter) ShowURL(url string) {
	select {
	case p.updates <- urlMsg{url: url}:
	default:
		logging.Warn("TUI", "UI update channel full, dropping console URL")
	}
}

// Release stops the program, restores the terminal and switches logging
// back to the console.
func (p *Presenter) Release() {
	p.release.Do(func() {
		if p.started.Load() {
			p.program.Quit()
			select {
			case <-p.done:
			case <-time.After(releaseTimeout):
				p.program.Kill()
				logging.Warn("TUI", "Console UI did not exit in time, killed it")
			}
		}
		logging.InitForCLI(p.logLevel, os.Stdout)
	})
}
