package tui

import (
	"strings"

	"dbconsole/internal/services"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const (
	defaultWidth = 80
	kindColumn   = 7
	stateColumn  = 9
)

func (m Model) View() string {
	width := m.width
	if width <= 0 {
		width = defaultWidth
	}
	inner := width - panelStyle.GetHorizontalFrameSize()
	if inner < 20 {
		inner = 20
	}

	var sections []string
	sections = append(sections, titleStyle.Render("dbconsole "+m.version))

	if m.url != "" {
		sections = append(sections, "Console: "+urlStyle.Render(m.url))
	} else {
		sections = append(sections, subtleStyle.Render("Console: not available"))
	}

	if m.showStatus {
		sections = append(sections, panelStyle.Width(inner).Render(m.renderStatus(inner-panelStyle.GetHorizontalPadding())))
	}

	if logs := m.renderLog(inner - panelStyle.GetHorizontalPadding()); logs != "" {
		sections = append(sections, panelStyle.Width(inner).Render(logs))
	}

	if m.message != "" {
		style := successStyle
		if m.messageErr {
			style = errorStyle
		}
		sections = append(sections, style.Render(m.message))
	}

	sections = append(sections, m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderStatus(width int) string {
	lines := []string{panelTitleStyle.Render("Services")}
	for _, st := range m.statuses {
		state, style := slotState(st)
		detail := st.Status
		if detail == "" {
			detail = st.LaunchError
		}
		prefix := runewidth.FillRight(st.Kind.String(), kindColumn) + style.Render(runewidth.FillRight(state, stateColumn))
		lines = append(lines, prefix+" "+runewidth.Truncate(detail, max(width-kindColumn-stateColumn-1, 0), "…"))
	}
	if len(m.statuses) == 0 {
		lines = append(lines, subtleStyle.Render("no services launched"))
	}
	return strings.Join(lines, "\n")
}

func slotState(st services.SlotStatus) (string, lipgloss.Style) {
	switch {
	case st.Running:
		return "running", successStyle
	case st.LaunchError != "":
		return "failed", errorStyle
	case st.Present:
		return "stopped", warningStyle
	default:
		return "absent", subtleStyle
	}
}

// renderLog shows the tail of the activity log that fits the window.
func (m Model) renderLog(width int) string {
	if len(m.activityLog) == 0 {
		return ""
	}
	rows := 8
	if m.height > 0 {
		rows = m.height - 12 - len(m.statuses)
		if rows < 3 {
			rows = 3
		}
	}
	start := len(m.activityLog) - rows
	if start < 0 {
		start = 0
	}

	lines := []string{panelTitleStyle.Render("Activity")}
	for _, line := range m.activityLog[start:] {
		if runewidth.StringWidth(line) > width {
			line = runewidth.Truncate(line, width, "…")
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
