package tui

import (
	"fmt"
	"time"

	"dbconsole/internal/reporting"
	"dbconsole/internal/services"
	"dbconsole/pkg/logging"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	maxActivityLogLines = 200
	statusRefreshPeriod = time.Second
)

// writeClipboard is replaced in tests.
var writeClipboard = clipboard.WriteAll

// Console is what the UI needs from the orchestrator.
type Console interface {
	Status() []services.SlotStatus
	ShutdownNow(trigger services.Trigger)
	OpenBrowser() error
}

// action is the closed set of things a key press can ask for.
type action int

const (
	actionNone action = iota
	actionOpenBrowser
	actionCopyURL
	actionStatus
	actionHelp
	actionQuit
)

type (
	urlMsg        struct{ url string }
	logEntryMsg   struct{ entry logging.LogEntry }
	logClosedMsg  struct{}
	statusTickMsg time.Time

	// actionResultMsg reports the outcome of an action run outside Update.
	actionResultMsg struct {
		text string
		err  error
	}
)

// Model is the bubbletea model of the console window.
type Model struct {
	console Console
	version string
	keys    KeyMap
	help    help.Model

	url        string
	statuses   []services.SlotStatus
	showStatus bool

	activityLog []string
	message     string
	messageErr  bool
	quitting    bool

	width  int
	height int

	logChan    <-chan logging.LogEntry
	updateChan <-chan tea.Msg
}

// NewModel creates the console model. logChan and updateChan may be nil.
func NewModel(console Console, version string, logChan <-chan logging.LogEntry, updateChan <-chan tea.Msg) Model {
	return Model{
		console:    console,
		version:    version,
		keys:       DefaultKeyMap(),
		help:       help.New(),
		showStatus: true,
		logChan:    logChan,
		updateChan: updateChan,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.listenForLogs(),
		m.listenForUpdates(),
		refreshStatus(),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.runAction(m.actionFor(msg))

	case urlMsg:
		m.url = msg.url
		m.statuses = m.queryStatus()
		return m, m.listenForUpdates()

	case reporting.ReporterUpdateMsg:
		m.appendLog(formatUpdate(msg.Update))
		m.statuses = m.queryStatus()
		return m, m.listenForUpdates()

	case logEntryMsg:
		m.appendLog(formatLogEntry(msg.entry))
		return m, m.listenForLogs()

	case logClosedMsg:
		m.logChan = nil
		return m, nil

	case statusTickMsg:
		if m.quitting {
			return m, nil
		}
		m.statuses = m.queryStatus()
		return m, refreshStatus()

	case actionResultMsg:
		if msg.err != nil {
			m.setMessage(msg.err.Error(), true)
		} else {
			m.setMessage(msg.text, false)
		}
		return m, nil
	}
	return m, nil
}

func (m Model) actionFor(msg tea.KeyMsg) action {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return actionQuit
	case m.quitting:
		return actionNone
	case key.Matches(msg, m.keys.OpenBrowser):
		return actionOpenBrowser
	case key.Matches(msg, m.keys.CopyURL):
		return actionCopyURL
	case key.Matches(msg, m.keys.Status):
		return actionStatus
	case key.Matches(msg, m.keys.Help):
		return actionHelp
	}
	return actionNone
}

func (m Model) runAction(a action) (tea.Model, tea.Cmd) {
	switch a {
	case actionQuit:
		if m.quitting {
			return m, nil
		}
		m.quitting = true
		m.setMessage("Shutting down...", false)
		console := m.console
		// ShutdownNow releases this program, so it must not run inside Update.
		return m, func() tea.Msg {
			console.ShutdownNow(services.TriggerUI)
			return nil
		}

	case actionOpenBrowser:
		console := m.console
		return m, func() tea.Msg {
			if err := console.OpenBrowser(); err != nil {
				return actionResultMsg{err: fmt.Errorf("could not open browser: %w", err)}
			}
			return actionResultMsg{text: "Opened console in browser"}
		}

	case actionCopyURL:
		url := m.url
		if url == "" {
			m.setMessage("Console URL not available", true)
			return m, nil
		}
		return m, func() tea.Msg {
			if err := writeClipboard(url); err != nil {
				return actionResultMsg{err: fmt.Errorf("could not copy URL: %w", err)}
			}
			return actionResultMsg{text: "Copied " + url}
		}

	case actionStatus:
		m.showStatus = !m.showStatus
		m.statuses = m.queryStatus()
		return m, nil

	case actionHelp:
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}
	return m, nil
}

func (m Model) queryStatus() []services.SlotStatus {
	if m.console == nil {
		return nil
	}
	return m.console.Status()
}

func (m *Model) appendLog(line string) {
	m.activityLog = append(m.activityLog, line)
	if len(m.activityLog) > maxActivityLogLines {
		m.activityLog = m.activityLog[len(m.activityLog)-maxActivityLogLines:]
	}
}

func (m *Model) setMessage(text string, isErr bool) {
	m.message = text
	m.messageErr = isErr
}

// listenForLogs waits for one log entry; Update re-arms it.
func (m Model) listenForLogs() tea.Cmd {
	ch := m.logChan
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		entry, ok := <-ch
		if !ok {
			return logClosedMsg{}
		}
		return logEntryMsg{entry: entry}
	}
}

// listenForUpdates waits for one message from the reporter channel.
func (m Model) listenForUpdates() tea.Cmd {
	ch := m.updateChan
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		return <-ch
	}
}

func refreshStatus() tea.Cmd {
	return tea.Tick(statusRefreshPeriod, func(t time.Time) tea.Msg {
		return statusTickMsg(t)
	})
}

func formatLogEntry(e logging.LogEntry) string {
	line := fmt.Sprintf("[%s] %-5s %s: %s", e.Timestamp.Format("15:04:05"), e.Level, e.Subsystem, e.Message)
	if e.Err != nil {
		line += ": " + e.Err.Error()
	}
	return line
}

func formatUpdate(u reporting.ServiceUpdate) string {
	line := fmt.Sprintf("[%s] %s %s", u.Timestamp.Format("15:04:05"), u.Kind, u.State)
	if u.Message != "" {
		line += ": " + u.Message
	}
	if u.ErrorDetail != nil {
		line += " (" + u.ErrorDetail.Error() + ")"
	}
	return line
}
