// pattern: Imperative Shell

package tui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"unityhub/internal/hub"
	"unityhub/internal/logging"
	"unityhub/internal/platform"
)

// doubleCtrlCWindow is the maximum time between two ctrl+c presses to trigger quit.
const doubleCtrlCWindow = 500 * time.Millisecond

// statusTimeout is how long success messages stay in the status bar.
const statusTimeout = 4 * time.Second

// dataUpdatedMsg is sent when the editor catalog and projects were rebuilt.
type dataUpdatedMsg struct{}

// scanDoneMsg is sent when a project scan below root finished.
type scanDoneMsg struct {
	root  string
	count int
}

// pathAddedMsg is sent when a search path was added and editors rebuilt.
type pathAddedMsg struct {
	path string
	err  error
}

// launchMsg is sent when an editor was started, or failed to start.
type launchMsg struct {
	title string
	err   error
}

// folderMsg is sent after asking the file manager to show a folder.
type folderMsg struct {
	path string
	err  error
}

// logEntriesMsg delivers log entries from the logging channel.
type logEntriesMsg struct {
	entries []logging.LogEntry
}

// clearStatusMsg is sent after a timed delay to clear the status bar.
type clearStatusMsg struct {
	message string
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case spinner.TickMsg:
		if m.statusLevel != StatusLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.statusSpinner, cmd = m.statusSpinner.Update(msg)
		return m, cmd

	case dataUpdatedMsg:
		m.busy = false
		m.reloadLists()
		m.setStatus(StatusSuccess, fmt.Sprintf("%d editors, %d projects", len(m.editorList.Items()), len(m.projectList.Items())))
		return m, m.clearStatusAfter()

	case scanDoneMsg:
		m.busy = false
		m.reloadLists()
		m.setStatus(StatusSuccess, fmt.Sprintf("%d projects found in %s", msg.count, msg.root))
		return m, m.clearStatusAfter()

	case pathAddedMsg:
		m.busy = false
		if msg.err != nil {
			m.setStatus(StatusError, msg.err.Error())
			return m, nil
		}
		m.reloadLists()
		m.setStatus(StatusSuccess, fmt.Sprintf("Added %s (%d editors)", msg.path, len(m.editorList.Items())))
		return m, m.clearStatusAfter()

	case launchMsg:
		if msg.err != nil {
			m.setStatus(StatusError, launchError(msg.err))
			return m, nil
		}
		m.setStatus(StatusSuccess, "Opening "+msg.title)
		return m, m.clearStatusAfter()

	case folderMsg:
		if msg.err != nil {
			m.setStatus(StatusError, msg.err.Error())
		}
		return m, nil

	case logEntriesMsg:
		for _, entry := range msg.entries {
			m.addLogEntry(entry)
		}
		if m.logPanelOpen && m.logReady {
			m.updateLogViewportContent()
		}
		return m, waitForLogs(m.logs)

	case clearStatusMsg:
		// Only clear if nothing replaced the message in the meantime
		if m.statusMessage == msg.message && m.statusLevel != StatusLoading {
			m.clearStatus()
		}
		return m, nil

	case tea.KeyMsg:
		if m.inputMode != inputNone {
			return m.handleInputKey(msg)
		}
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) resize() {
	layout := ComputeLayout(m.width, m.height, m.logPanelOpen, m.inputMode != inputNone)
	listHeight := layout.ContentListHeight()
	m.projectList.SetSize(m.width, listHeight)
	m.editorList.SetSize(m.width, listHeight)
	m.input.Width = max(m.width-4, 10)

	if m.logPanelOpen {
		if !m.logReady {
			m.logViewport = viewport.New(layout.Logs.Width, max(layout.Logs.Height-1, 1))
			m.logReady = true
		} else {
			m.logViewport.Width = layout.Logs.Width
			m.logViewport.Height = max(layout.Logs.Height-1, 1)
		}
		m.updateLogViewportContent()
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		if time.Since(m.lastCtrlC) < doubleCtrlCWindow {
			return m, tea.Quit
		}
		m.lastCtrlC = time.Now()
		m.setStatus(StatusInfo, "ctrl+c ctrl+c to quit")
		return m, m.clearStatusAfter()

	case "q":
		return m, tea.Quit

	case "esc":
		if m.statusLevel == StatusError {
			m.clearStatus()
		}
		return m, nil

	case "tab", "shift+tab":
		step := Tab(1)
		if msg.String() == "shift+tab" {
			step = tabCount - 1
		}
		m.tab = (m.tab + step) % tabCount
		return m, nil

	case "enter":
		if m.tab != TabProjects {
			return m, nil
		}
		item, ok := m.projectList.SelectedItem().(projectItem)
		if !ok {
			return m, nil
		}
		return m, m.runProject(m.projectList.Index(), item.project.Title)

	case "o":
		if path, ok := m.selectedPath(); ok {
			return m, m.openFolder(path)
		}
		return m, nil

	case "r":
		if m.busy {
			return m, nil
		}
		m.busy = true
		m.setStatus(StatusLoading, "Looking for editors and projects")
		return m, tea.Batch(m.statusSpinner.Tick, m.updateData())

	case "s":
		return m.openInput(inputScan, "Folder to search for projects")

	case "a":
		return m.openInput(inputAddPath, "Editor search path to add")

	case "l":
		m.logPanelOpen = !m.logPanelOpen
		m.resize()
		return m, nil
	}

	var cmd tea.Cmd
	if m.tab == TabEditors {
		m.editorList, cmd = m.editorList.Update(msg)
	} else {
		m.projectList, cmd = m.projectList.Update(msg)
	}
	return m, cmd
}

func (m Model) openInput(mode inputMode, placeholder string) (tea.Model, tea.Cmd) {
	if m.busy {
		m.setStatus(StatusInfo, "Still scanning, try again in a moment")
		return m, m.clearStatusAfter()
	}
	m.inputMode = mode
	m.inputErr = ""
	m.input.Placeholder = placeholder
	m.input.SetValue("")
	m.resize()
	return m, m.input.Focus()
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		m.closeInput()
		return m, nil

	case tea.KeyEnter:
		path, err := m.resolveDir(m.input.Value())
		if err != nil {
			m.inputErr = err.Error()
			return m, nil
		}
		mode := m.inputMode
		m.closeInput()
		m.busy = true
		if mode == inputScan {
			m.setStatus(StatusLoading, "Searching "+path)
			return m, tea.Batch(m.statusSpinner.Tick, m.scanPath(path))
		}
		m.setStatus(StatusLoading, "Adding "+path)
		return m, tea.Batch(m.statusSpinner.Tick, m.addSearchPath(path))
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.inputErr = ""
	return m, cmd
}

func (m *Model) closeInput() {
	m.inputMode = inputNone
	m.inputErr = ""
	m.input.Blur()
	m.resize()
}

// resolveDir expands ~ and checks that value names a directory.
func (m Model) resolveDir(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", errors.New("path is required")
	}
	path, err := filepath.Abs(platform.ExpandHome(value, m.home))
	if err != nil {
		return "", err
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("%s does not exist", path)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", path)
	}
	return path, nil
}

func launchError(err error) string {
	switch {
	case errors.Is(err, hub.ErrNoEditor):
		return "No installed editor matches this project's version"
	case errors.Is(err, hub.ErrProjectIndex):
		return "Project list changed, try again"
	default:
		return err.Error()
	}
}

func (m Model) clearStatusAfter() tea.Cmd {
	message := m.statusMessage
	return tea.Tick(statusTimeout, func(time.Time) tea.Msg {
		return clearStatusMsg{message: message}
	})
}

func (m Model) updateData() tea.Cmd {
	h := m.hub
	return func() tea.Msg {
		h.UpdateData()
		return dataUpdatedMsg{}
	}
}

func (m Model) scanPath(root string) tea.Cmd {
	h := m.hub
	return func() tea.Msg {
		return scanDoneMsg{root: root, count: h.SearchForProjectsAtPath(root)}
	}
}

func (m Model) addSearchPath(path string) tea.Cmd {
	h := m.hub
	return func() tea.Msg {
		return pathAddedMsg{path: path, err: h.AddSearchPath(path)}
	}
}

func (m Model) runProject(index int, title string) tea.Cmd {
	h := m.hub
	return func() tea.Msg {
		return launchMsg{title: title, err: h.RunProjectNr(index)}
	}
}

func (m Model) openFolder(path string) tea.Cmd {
	h := m.hub
	return func() tea.Msg {
		return folderMsg{path: path, err: h.OpenFolder(path)}
	}
}

// waitForLogs blocks for the next entry and batches whatever else is buffered.
func waitForLogs(ch <-chan logging.LogEntry) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		entry, ok := <-ch
		if !ok {
			return nil
		}
		entries := []logging.LogEntry{entry}
		for len(entries) < 100 {
			select {
			case e, ok := <-ch:
				if !ok {
					return logEntriesMsg{entries: entries}
				}
				entries = append(entries, e)
			default:
				return logEntriesMsg{entries: entries}
			}
		}
		return logEntriesMsg{entries: entries}
	}
}

func (m *Model) updateLogViewportContent() {
	lines := make([]string, 0, len(m.logEntries))
	for _, entry := range m.logEntries {
		lines = append(lines, m.renderLogEntry(entry))
	}
	m.logViewport.SetContent(strings.Join(lines, "\n"))
	m.logViewport.GotoBottom()
}
