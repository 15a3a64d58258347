// pattern: Imperative Shell

package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"unityhub/internal/discovery"
	"unityhub/internal/editor"
)

// projectItem wraps a project and the editor it would open in.
type projectItem struct {
	project discovery.Project
	editor  string // matched editor version, empty when none
}

func (i projectItem) Title() string { return i.project.Title }

func (i projectItem) Description() string {
	parts := []string{i.project.Path}
	if i.project.Branch != "" {
		parts = append(parts, i.project.Branch)
	}
	return strings.Join(parts, " | ")
}

func (i projectItem) FilterValue() string { return i.project.Title }

// editorItem wraps an installation for display.
type editorItem struct {
	install editor.Installation
}

func (i editorItem) Title() string { return i.install.Version }

func (i editorItem) Description() string { return i.install.ExecutablePath }

func (i editorItem) FilterValue() string { return i.install.Version }

// itemDelegate renders both list kinds in two lines.
type itemDelegate struct {
	styles *Styles
}

func newItemDelegate(styles *Styles) itemDelegate {
	return itemDelegate{styles: styles}
}

func (d itemDelegate) Height() int { return 2 }

func (d itemDelegate) Spacing() int { return 1 }

func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	selected := index == m.Index()

	titleStyle := lipgloss.NewStyle().Foreground(d.styles.color(d.styles.flavor.Text()))
	descStyle := lipgloss.NewStyle().Foreground(d.styles.color(d.styles.flavor.Subtext0()))
	indicator := "  "
	if selected {
		titleStyle = titleStyle.Bold(true).Foreground(d.styles.color(d.styles.flavor.Mauve()))
		descStyle = descStyle.Foreground(d.styles.color(d.styles.flavor.Overlay0()))
		indicator = d.styles.TitleStyle().Render("▸ ")
	}

	width := max(m.Width()-4, 10)

	var title, badge, desc string
	switch it := item.(type) {
	case projectItem:
		title = it.project.Title
		version := it.project.Version
		if !it.project.Valid {
			version = "missing"
		}
		badge = d.styles.VersionStyle(it.editor != "", it.project.Valid).Render(version)
		if it.project.Branch != "" {
			badge += " " + d.styles.BranchStyle().Render(it.project.Branch)
		}
		desc = it.project.Path
	case editorItem:
		title = it.install.Version
		if len(it.install.Platforms) > 0 {
			badge = d.styles.AccentStyle().Render(strings.Join(it.install.Platforms, " "))
		}
		desc = it.install.ExecutablePath
	default:
		return
	}

	line := indicator + titleStyle.Render(title)
	if badge != "" {
		line += "  " + badge
	}
	line = ansi.Truncate(line, width+2, "…")
	desc = descStyle.Render(ansi.Truncate(desc, width, "…"))

	_, _ = fmt.Fprintf(w, "%s\n%s%s", line, "  ", desc)
}

// projectItems converts projects to list items, resolving each one's editor.
func projectItems(projects []discovery.Project, match func(discovery.Project) (editor.Installation, bool)) []list.Item {
	items := make([]list.Item, len(projects))
	for i, p := range projects {
		item := projectItem{project: p}
		if ed, ok := match(p); ok {
			item.editor = ed.Version
		}
		items[i] = item
	}
	return items
}

func editorItems(editors []editor.Installation) []list.Item {
	items := make([]list.Item, len(editors))
	for i, ed := range editors {
		items[i] = editorItem{install: ed}
	}
	return items
}
