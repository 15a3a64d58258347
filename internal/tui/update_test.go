package tui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"unityhub/internal/hub"
	"unityhub/internal/logging"
)

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func TestTabKey_SwitchesTabs(t *testing.T) {
	m := newTestModel(t)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.ActiveTab() != TabEditors {
		t.Fatalf("after tab: %v, want Editors", m.ActiveTab())
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.ActiveTab() != TabProjects {
		t.Fatalf("after second tab: %v, want Projects", m.ActiveTab())
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.ActiveTab() != TabEditors {
		t.Fatalf("after shift+tab: %v, want Editors", m.ActiveTab())
	}
}

func TestLogPanelToggle_LKey(t *testing.T) {
	tests := []struct {
		name      string
		startOpen bool
		wantOpen  bool
	}{
		{"opens", false, true},
		{"closes", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(t)
			m.logPanelOpen = tt.startOpen

			m, _ = update(t, m, keyRunes("l"))

			if m.logPanelOpen != tt.wantOpen {
				t.Errorf("logPanelOpen = %v, want %v", m.logPanelOpen, tt.wantOpen)
			}
			if tt.wantOpen && !m.logReady {
				t.Error("opening the panel should size the viewport")
			}
		})
	}
}

func TestEnter_RunsSelectedProject(t *testing.T) {
	m, env := newTestModelWithEnv(t)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter should return a launch command")
	}
	result := cmd()
	msg, ok := result.(launchMsg)
	if !ok {
		t.Fatalf("command returned %T, want launchMsg", result)
	}
	if msg.err != nil {
		t.Fatalf("launch error: %v", msg.err)
	}

	calls := env.launcher.Calls()
	if len(calls) != 1 {
		t.Fatalf("launcher calls = %d, want 1", len(calls))
	}
	if calls[0].Binary != "/opt/unity/2022.3.5f1/Editor/Unity" {
		t.Errorf("Binary = %q", calls[0].Binary)
	}
	if calls[0].Args[0] != hub.ProjectPathFlag || filepath.Base(calls[0].Args[1]) != "Alpha" {
		t.Errorf("Args = %v", calls[0].Args)
	}

	m, _ = update(t, m, msg)
	if level, text := m.Status(); level != StatusSuccess || !strings.Contains(text, "Alpha") {
		t.Errorf("Status() = %v %q", level, text)
	}
}

func TestEnter_OnEditorsTabDoesNothing(t *testing.T) {
	m := newTestModel(t)
	m.tab = TabEditors

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("enter on the editors tab should not launch anything")
	}
}

func TestLaunchMsg_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"no editor", hub.ErrNoEditor, "No installed editor"},
		{"stale index", hub.ErrProjectIndex, "try again"},
		{"start failure", errors.New("exec format error"), "exec format error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(t)
			m, _ = update(t, m, launchMsg{title: "Beta", err: tt.err})

			level, text := m.Status()
			if level != StatusError || !strings.Contains(text, tt.want) {
				t.Errorf("Status() = %v %q, want error containing %q", level, text, tt.want)
			}
		})
	}
}

func TestOKey_OpensFolder(t *testing.T) {
	m, env := newTestModelWithEnv(t)
	m.tab = TabEditors

	_, cmd := update(t, m, keyRunes("o"))
	if cmd == nil {
		t.Fatal("o should return a command")
	}
	if msg := cmd().(folderMsg); msg.err != nil {
		t.Fatalf("OpenFolder error: %v", msg.err)
	}

	calls := env.launcher.Calls()
	if len(calls) != 1 || calls[0].Binary != "xdg-open" || calls[0].Args[0] != "/opt/unity/2022.3.5f1" {
		t.Errorf("launcher calls = %+v", calls)
	}
}

func TestRKey_RescansOnce(t *testing.T) {
	m := newTestModel(t)

	m, cmd := update(t, m, keyRunes("r"))
	if cmd == nil || !m.Busy() {
		t.Fatal("r should start a rescan")
	}
	if level, _ := m.Status(); level != StatusLoading {
		t.Errorf("status level = %v, want loading", level)
	}

	_, cmd = update(t, m, keyRunes("r"))
	if cmd != nil {
		t.Error("r while busy should be ignored")
	}
}

func TestDataUpdatedMsg_ClearsBusy(t *testing.T) {
	m := newTestModel(t)
	m.busy = true

	m, cmd := update(t, m, dataUpdatedMsg{})

	if m.Busy() {
		t.Error("busy should be cleared")
	}
	if level, text := m.Status(); level != StatusSuccess || !strings.Contains(text, "2 projects") {
		t.Errorf("Status() = %v %q", level, text)
	}
	if cmd == nil {
		t.Error("success status should schedule its own removal")
	}
}

func TestClearStatusMsg_OnlyClearsMatchingMessage(t *testing.T) {
	m := newTestModel(t)
	m.setStatus(StatusSuccess, "newer")

	m, _ = update(t, m, clearStatusMsg{message: "older"})
	if _, text := m.Status(); text != "newer" {
		t.Errorf("status = %q, want it kept", text)
	}

	m, _ = update(t, m, clearStatusMsg{message: "newer"})
	if _, text := m.Status(); text != "" {
		t.Errorf("status = %q, want cleared", text)
	}
}

func TestScanInput_SubmitsDirectory(t *testing.T) {
	m := newTestModel(t)
	root := t.TempDir()
	makeProject(t, filepath.Join(root, "Gamma"), "2022.3.5f1", time.Now())

	m, _ = update(t, m, keyRunes("s"))
	if m.inputMode != inputScan {
		t.Fatalf("inputMode = %v, want scan", m.inputMode)
	}
	m.input.SetValue(root)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.inputMode != inputNone || !m.Busy() {
		t.Fatalf("submit should close the prompt and start scanning (mode %v, busy %v)", m.inputMode, m.Busy())
	}
	if cmd == nil {
		t.Fatal("submit should return a command")
	}

	done := m.scanPath(root)().(scanDoneMsg)
	if done.count != 1 {
		t.Fatalf("scan count = %d, want 1", done.count)
	}
	m, _ = update(t, m, done)
	if len(m.projectList.Items()) != 3 {
		t.Errorf("project items = %d, want 3", len(m.projectList.Items()))
	}
	if _, text := m.Status(); !strings.Contains(text, "1 projects found") {
		t.Errorf("status = %q", text)
	}
}

func TestInput_RejectsBadPaths(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"empty", "  ", "required"},
		{"missing", filepath.Join(t.TempDir(), "nope"), "does not exist"},
		{"file", file, "not a directory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(t)
			m, _ = update(t, m, keyRunes("a"))
			m.input.SetValue(tt.value)

			m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

			if cmd != nil {
				t.Error("invalid input should not start work")
			}
			if m.inputMode != inputAddPath {
				t.Error("prompt should stay open")
			}
			if !strings.Contains(m.inputErr, tt.want) {
				t.Errorf("inputErr = %q, want %q", m.inputErr, tt.want)
			}
		})
	}
}

func TestInput_EscCancels(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, keyRunes("s"))

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	if m.inputMode != inputNone {
		t.Error("esc should close the prompt")
	}
}

func TestInput_BlockedWhileBusy(t *testing.T) {
	m := newTestModel(t)
	m.busy = true

	m, _ = update(t, m, keyRunes("a"))

	if m.inputMode != inputNone {
		t.Error("prompt should not open during a scan")
	}
}

func TestAddSearchPath_UpdatesConfig(t *testing.T) {
	m := newTestModel(t)
	root := t.TempDir()

	msg := m.addSearchPath(root)().(pathAddedMsg)
	if msg.err != nil {
		t.Fatalf("AddSearchPath: %v", msg.err)
	}
	m, _ = update(t, m, msg)

	found := false
	for _, p := range m.hub.SearchPaths() {
		if p == root {
			found = true
		}
	}
	if !found {
		t.Errorf("SearchPaths() = %v, want %s included", m.hub.SearchPaths(), root)
	}
	if level, _ := m.Status(); level != StatusSuccess {
		t.Errorf("status level = %v, want success", level)
	}
}

func TestCtrlC_RequiresDoublePress(t *testing.T) {
	m := newTestModel(t)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if _, text := m.Status(); !strings.Contains(text, "ctrl+c") {
		t.Fatalf("single ctrl+c should hint at quitting, status %q", text)
	}

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("second ctrl+c should quit")
	}
	if _, quit := cmd().(tea.QuitMsg); !quit {
		t.Error("second ctrl+c should return tea.Quit")
	}
}

func TestEscape_ClearsError(t *testing.T) {
	m := newTestModel(t)
	m.setStatus(StatusError, "boom")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	if level, text := m.Status(); level != StatusInfo || text != "" {
		t.Errorf("Status() = %v %q, want cleared", level, text)
	}
}

func TestWaitForLogs(t *testing.T) {
	if waitForLogs(nil) != nil {
		t.Error("nil channel should give a nil command")
	}

	ch := make(chan logging.LogEntry, 5)
	ch <- logging.LogEntry{Message: "one"}
	ch <- logging.LogEntry{Message: "two"}
	ch <- logging.LogEntry{Message: "three"}

	msg, ok := waitForLogs(ch)().(logEntriesMsg)
	if !ok || len(msg.entries) != 3 {
		t.Fatalf("waitForLogs() = %+v, want 3 entries", msg)
	}

	close(ch)
	if got := waitForLogs(ch)(); got != nil {
		t.Errorf("closed channel should give nil, got %T", got)
	}
}

func TestLogEntriesMsg_FillsPanel(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, keyRunes("l"))

	m, _ = update(t, m, logEntriesMsg{entries: []logging.LogEntry{
		{Time: time.Now(), Level: "INFO", Scope: "hub", Message: "projects refreshed"},
	}})

	if len(m.logEntries) != 1 {
		t.Fatalf("logEntries = %d, want 1", len(m.logEntries))
	}
	if !strings.Contains(m.logViewport.View(), "projects refreshed") {
		t.Error("viewport should show the new entry")
	}
}
