package tui

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"dbconsole/internal/reporting"
	"dbconsole/internal/services"
	"dbconsole/pkg/logging"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConsole struct {
	mu        sync.Mutex
	statuses  []services.SlotStatus
	triggers  []services.Trigger
	openCalls int
	openErr   error
}

func (f *fakeConsole) Status() []services.SlotStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statuses
}

func (f *fakeConsole) ShutdownNow(trigger services.Trigger) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.triggers = append(f.triggers, trigger)
}

func (f *fakeConsole) OpenBrowser() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.openCalls++
	return f.openErr
}

func newFakeConsole() *fakeConsole {
	return &fakeConsole{statuses: []services.SlotStatus{
		{Kind: services.KindAdmin, Present: true, Running: true, Status: "Web Console server running at http://localhost:8082", URL: "http://localhost:8082"},
		{Kind: services.KindTCP, LaunchError: "TCP service failed to start: address already in use"},
		{Kind: services.KindPG, Present: true, Running: true, Status: "PG server running at pg://localhost:5435"},
	}}
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model, cmd
}

func TestModel_ActionFor(t *testing.T) {
	m := NewModel(newFakeConsole(), "test", nil, nil)

	tests := []struct {
		msg      tea.KeyMsg
		expected action
	}{
		{keyRune('q'), actionQuit},
		{tea.KeyMsg{Type: tea.KeyCtrlC}, actionQuit},
		{keyRune('o'), actionOpenBrowser},
		{tea.KeyMsg{Type: tea.KeyEnter}, actionOpenBrowser},
		{keyRune('y'), actionCopyURL},
		{keyRune('s'), actionStatus},
		{keyRune('h'), actionHelp},
		{keyRune('x'), actionNone},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, m.actionFor(tt.msg), tt.msg.String())
	}
}

func TestModel_QuitTriggersShutdownOnce(t *testing.T) {
	console := newFakeConsole()
	m := NewModel(console, "test", nil, nil)

	m, cmd := update(t, m, keyRune('q'))
	require.NotNil(t, cmd)
	assert.True(t, m.quitting)
	assert.Empty(t, console.triggers, "shutdown runs in the command, not in Update")

	cmd()
	assert.Equal(t, []services.Trigger{services.TriggerUI}, console.triggers)

	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.Nil(t, cmd)
	_, cmd = update(t, m, keyRune('o'))
	assert.Nil(t, cmd, "actions are ignored while quitting")
}

func TestModel_OpenBrowser(t *testing.T) {
	console := newFakeConsole()
	m := NewModel(console, "test", nil, nil)

	m, cmd := update(t, m, keyRune('o'))
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	assert.Equal(t, 1, console.openCalls)
	assert.Equal(t, "Opened console in browser", m.message)
	assert.False(t, m.messageErr)

	console.openErr = errors.New("admin endpoint is not running")
	m, cmd = update(t, m, keyRune('o'))
	m, _ = update(t, m, cmd())
	assert.True(t, m.messageErr)
	assert.Contains(t, m.message, "admin endpoint is not running")
}

func TestModel_CopyURL(t *testing.T) {
	var copied string
	orig := writeClipboard
	writeClipboard = func(s string) error {
		copied = s
		return nil
	}
	t.Cleanup(func() { writeClipboard = orig })

	m := NewModel(newFakeConsole(), "test", nil, nil)

	m, cmd := update(t, m, keyRune('y'))
	assert.Nil(t, cmd)
	assert.True(t, m.messageErr, "nothing to copy before the URL is known")

	m, _ = update(t, m, urlMsg{url: "http://localhost:8082"})
	m, cmd = update(t, m, keyRune('y'))
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	assert.Equal(t, "http://localhost:8082", copied)
	assert.Equal(t, "Copied http://localhost:8082", m.message)
}

func TestModel_StatusToggleAndView(t *testing.T) {
	m := NewModel(newFakeConsole(), "1.0.0", nil, nil)
	m, _ = update(t, m, urlMsg{url: "http://localhost:8082"})

	view := m.View()
	assert.Contains(t, view, "dbconsole 1.0.0")
	assert.Contains(t, view, "http://localhost:8082")
	assert.Contains(t, view, "running")
	assert.Contains(t, view, "failed")
	assert.Contains(t, view, "address already in use")

	m, _ = update(t, m, keyRune('s'))
	assert.False(t, m.showStatus)
	assert.NotContains(t, m.View(), "Services")
}

func TestModel_ConsumesLogsAndUpdates(t *testing.T) {
	logs := make(chan logging.LogEntry, 1)
	updates := make(chan tea.Msg, 1)
	m := NewModel(newFakeConsole(), "test", logs, updates)

	logs <- logging.LogEntry{Timestamp: time.Now(), Level: logging.LevelInfo, Subsystem: "PG", Message: "PG server listening"}
	m, cmd := update(t, m, m.listenForLogs()())
	require.NotNil(t, cmd, "the log listener re-arms")
	assert.Contains(t, strings.Join(m.activityLog, "\n"), "PG: PG server listening")

	updates <- reporting.ReporterUpdateMsg{Update: reporting.ServiceUpdate{
		Kind:    services.KindTCP,
		State:   reporting.StateFailed,
		Message: "TCP server not started",
	}}
	m, cmd = update(t, m, m.listenForUpdates()())
	require.NotNil(t, cmd)
	assert.Contains(t, m.activityLog[len(m.activityLog)-1], "TCP Failed: TCP server not started")
	assert.Len(t, m.statuses, 3)

	close(logs)
	m, cmd = update(t, m, m.listenForLogs()())
	assert.Nil(t, cmd)
	assert.Nil(t, m.logChan)
}

func TestModel_ActivityLogIsBounded(t *testing.T) {
	m := NewModel(newFakeConsole(), "test", nil, nil)
	for i := 0; i < maxActivityLogLines+50; i++ {
		m.appendLog("line")
	}
	assert.Len(t, m.activityLog, maxActivityLogLines)
}

func TestPresenter_ReleaseWithoutStart(t *testing.T) {
	p := NewPresenter("test", nil, logging.LevelInfo)
	p.ShowURL("http://localhost:8082")

	assert.NotPanics(t, func() {
		p.Release()
		p.Release()
	})
	msg := <-p.updates
	assert.Equal(t, urlMsg{url: "http://localhost:8082"}, msg)
}
