// pattern: Imperative Shell

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"unityhub/internal/logging"
)

// View renders the TUI.
func (m Model) View() string {
	layout := ComputeLayout(m.width, m.height, m.logPanelOpen, m.inputMode != inputNone)

	parts := []string{
		m.renderHeader(layout),
		m.renderTabs(),
		m.renderContent(layout),
	}

	if m.logPanelOpen {
		separator := m.styles.SeparatorStyle().
			Width(layout.Separator.Width).
			Render(strings.Repeat("─", layout.Separator.Width))
		parts = append(parts, separator, m.renderLogPanel(layout))
	}

	if m.inputMode != inputNone {
		parts = append(parts, m.renderInput())
	}

	statusBar := lipgloss.NewStyle().Width(layout.StatusBar.Width).Render(m.renderStatusBar(layout.StatusBar.Width))
	parts = append(parts, statusBar)

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderHeader(layout Layout) string {
	title := m.styles.TitleStyle().Render("Unity Hub")
	counts := m.styles.SubtitleStyle().Render(fmt.Sprintf("%d projects · %d editors · %d search paths",
		len(m.projectList.Items()), len(m.editorList.Items()), len(m.hub.SearchPaths())))
	return lipgloss.NewStyle().Width(layout.Header.Width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, counts))
}

func (m Model) renderTabs() string {
	tabs := make([]string, 0, tabCount)
	for t := TabProjects; t < tabCount; t++ {
		style := m.styles.InactiveTabStyle()
		if t == m.tab {
			style = m.styles.ActiveTabStyle()
		}
		tabs = append(tabs, style.Render(t.String()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) renderContent(layout Layout) string {
	l := m.projectList
	empty := "No projects yet. Press s to search a folder."
	if m.tab == TabEditors {
		l = m.editorList
		empty = "No editors found. Press a to add a search path."
	}

	var body string
	if len(l.Items()) == 0 {
		body = m.styles.InfoStyle().Render(empty)
	} else {
		body = l.View()
	}
	return lipgloss.NewStyle().Width(layout.Content.Width).Height(layout.Content.Height).Render(body)
}

func (m Model) renderInput() string {
	line := m.input.View()
	if m.inputErr != "" {
		line += "  " + m.styles.ErrorStyle().Render(m.inputErr)
	}
	return line
}

// renderStatusBar renders the status bar with operation feedback and help.
func (m Model) renderStatusBar(width int) string {
	var statusIcon string
	var messageStyle lipgloss.Style

	switch m.statusLevel {
	case StatusLoading:
		statusIcon = m.statusSpinner.View()
		messageStyle = m.styles.InfoStatusStyle()
	case StatusSuccess:
		statusIcon = m.styles.SuccessStyle().Render("✓")
		messageStyle = m.styles.SuccessStyle()
	case StatusError:
		statusIcon = m.styles.ErrorStyle().Render("✗")
		messageStyle = m.styles.ErrorStyle()
	default:
		messageStyle = m.styles.InfoStatusStyle()
	}

	var statusText string
	if statusIcon != "" {
		statusText = statusIcon + " " + messageStyle.Render(m.statusMessage)
	} else if m.statusMessage != "" {
		statusText = messageStyle.Render(m.statusMessage)
	}
	if m.statusLevel == StatusError {
		statusText += m.styles.HelpStyle().Render(" (esc to clear)")
	}

	help := m.renderContextualHelp()

	spacerWidth := max(width-lipgloss.Width(statusText)-lipgloss.Width(help)-2, 1)
	return lipgloss.JoinHorizontal(lipgloss.Bottom,
		statusText,
		strings.Repeat(" ", spacerWidth),
		help,
	)
}

// renderContextualHelp returns help text for the current tab and prompt.
func (m Model) renderContextualHelp() string {
	var help string
	switch {
	case m.inputMode != inputNone:
		help = "enter: confirm • esc: cancel"
	case m.tab == TabEditors:
		help = "↑/↓: navigate • o: open folder • a: add path • r: rescan • tab: projects • l: logs • q: quit"
	default:
		help = "↑/↓: navigate • enter: open • o: folder • s: search • r: rescan • tab: editors • l: logs • q: quit"
	}
	return m.styles.HelpStyle().Render(help)
}

// renderLogEntry formats a single log entry for display.
func (m Model) renderLogEntry(entry logging.LogEntry) string {
	ts := m.styles.LogTimestampStyle().Render(entry.Time.Format("15:04:05"))
	level := m.styles.LogLevelStyle(entry.Level).Render(fmt.Sprintf("%-5s", entry.Level))
	scope := m.styles.LogScopeStyle().Render("[" + entry.Scope + "]")
	return fmt.Sprintf("%s %s %s %s", ts, level, scope, entry.Message)
}

// renderLogPanel renders the log panel content.
func (m Model) renderLogPanel(layout Layout) string {
	header := m.styles.SubtitleStyle().Width(layout.Logs.Width).Render(fmt.Sprintf(" Logs (%d)", len(m.logEntries)))

	if len(m.logEntries) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, header, m.styles.InfoStyle().Render("No log entries"))
	}
	if m.logReady {
		return lipgloss.JoinVertical(lipgloss.Left, header, m.logViewport.View())
	}

	lines := make([]string, 0, len(m.logEntries))
	for _, entry := range m.logEntries {
		lines = append(lines, m.renderLogEntry(entry))
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.NewStyle().
			Width(layout.Logs.Width).
			Height(max(layout.Logs.Height-1, 1)).
			Render(strings.Join(lines, "\n")),
	)
}
