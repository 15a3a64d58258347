package tui

import (
	"os"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"unityhub/internal/hub"
	"unityhub/internal/logging"
)

// Tab selects the visible list.
type Tab int

const (
	TabProjects Tab = iota
	TabEditors
	tabCount
)

func (t Tab) String() string {
	if t == TabEditors {
		return "Editors"
	}
	return "Projects"
}

// StatusLevel classifies the status bar message.
type StatusLevel int

const (
	StatusInfo StatusLevel = iota
	StatusSuccess
	StatusError
	StatusLoading
)

func (l StatusLevel) String() string {
	switch l {
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	case StatusLoading:
		return "loading"
	default:
		return "info"
	}
}

// inputMode is what the path prompt is collecting.
type inputMode int

const (
	inputNone inputMode = iota
	inputScan
	inputAddPath
)

const maxLogEntries = 500

// Model represents the TUI application state.
type Model struct {
	width  int
	height int
	styles *Styles

	hub  *hub.Hub
	logs <-chan logging.LogEntry
	home string

	tab         Tab
	projectList list.Model
	editorList  list.Model

	input     textinput.Model
	inputMode inputMode
	inputErr  string

	busy          bool
	statusSpinner spinner.Model
	statusLevel   StatusLevel
	statusMessage string

	logPanelOpen bool
	logViewport  viewport.Model
	logReady     bool
	logEntries   []logging.LogEntry

	lastCtrlC time.Time
}

// NewModel creates the TUI over h. logs may be nil.
func NewModel(h *hub.Hub, theme string, logs <-chan logging.LogEntry) Model {
	styles := NewStyles(theme)
	home, _ := os.UserHomeDir()

	newList := func() list.Model {
		l := list.New([]list.Item{}, newItemDelegate(styles), 0, 0)
		l.SetShowTitle(false)
		l.SetShowStatusBar(false)
		l.SetFilteringEnabled(false)
		l.SetShowHelp(false)
		return l
	}

	input := textinput.New()
	input.Prompt = "> "
	input.PromptStyle = styles.InputPromptStyle()
	input.CharLimit = 4096

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = styles.AccentStyle()

	m := Model{
		styles:        styles,
		hub:           h,
		logs:          logs,
		home:          home,
		projectList:   newList(),
		editorList:    newList(),
		input:         input,
		statusSpinner: sp,
	}
	m.reloadLists()
	m.busy = true
	m.setStatus(StatusLoading, "Looking for editors and projects")
	return m
}

// Init returns the initial command to run.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.statusSpinner.Tick,
		m.updateData(),
		waitForLogs(m.logs),
	)
}

// ActiveTab returns the visible tab.
func (m Model) ActiveTab() Tab {
	return m.tab
}

// Status returns the status bar level and message.
func (m Model) Status() (StatusLevel, string) {
	return m.statusLevel, m.statusMessage
}

// Busy reports whether a rescan is running.
func (m Model) Busy() bool {
	return m.busy
}

func (m *Model) setStatus(level StatusLevel, msg string) {
	m.statusLevel = level
	m.statusMessage = msg
}

func (m *Model) clearStatus() {
	m.statusLevel = StatusInfo
	m.statusMessage = ""
}

// reloadLists copies the Hub snapshots into both lists, keeping the cursor.
func (m *Model) reloadLists() {
	pi, ei := m.projectList.Index(), m.editorList.Index()
	m.projectList.SetItems(projectItems(m.hub.Projects(), m.hub.EditorForProject))
	m.editorList.SetItems(editorItems(m.hub.Editors()))
	if n := len(m.projectList.Items()); n > 0 {
		m.projectList.Select(min(pi, n-1))
	}
	if n := len(m.editorList.Items()); n > 0 {
		m.editorList.Select(min(ei, n-1))
	}
}

func (m *Model) activeList() *list.Model {
	if m.tab == TabEditors {
		return &m.editorList
	}
	return &m.projectList
}

// selectedPath returns the folder of the selected project or editor.
func (m Model) selectedPath() (string, bool) {
	switch it := m.activeList().SelectedItem().(type) {
	case projectItem:
		return it.project.Path, true
	case editorItem:
		return it.install.InstallRoot, true
	}
	return "", false
}

func (m *Model) addLogEntry(entry logging.LogEntry) {
	m.logEntries = append(m.logEntries, entry)
	if over := len(m.logEntries) - maxLogEntries; over > 0 {
		m.logEntries = m.logEntries[over:]
	}
}
