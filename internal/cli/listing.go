// pattern: Functional Core
package cli

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/fatih/color"

	"unityhub/internal/discovery"
	"unityhub/internal/editor"
)

// ansiPattern matches ANSI escape sequences (CSI sequences, OSC sequences, and simple escapes).
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]|\x1b\][^\x07]*\x07|\x1b[()][0-9A-B]`)

// StripANSI removes ANSI escape sequences from the given string.
func StripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

// padRight pads s to width visible columns, ignoring color codes.
func padRight(s string, width int) string {
	if n := len([]rune(StripANSI(s))); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

var (
	titleColor   = color.New(color.Bold).SprintFunc()
	matchColor   = color.New(color.FgGreen).SprintFunc()
	missingColor = color.New(color.FgRed).SprintFunc()
	branchColor  = color.New(color.FgCyan).SprintFunc()
	dimColor     = color.New(color.FgHiBlack).SprintFunc()
)

// EditorMatcher reports the editor a project would open in.
type EditorMatcher func(p discovery.Project) (editor.Installation, bool)

// WriteProjects prints one line per project: index, title, declared version
// (green when an editor matches), branch and path.
func WriteProjects(w io.Writer, projects []discovery.Project, match EditorMatcher) {
	if len(projects) == 0 {
		fmt.Fprintln(w, dimColor("No projects. Use \"unityhub scan <dir>\" to find some."))
		return
	}

	titleWidth := 0
	for _, p := range projects {
		titleWidth = max(titleWidth, len([]rune(p.Title)))
	}

	for i, p := range projects {
		version := p.Version
		switch {
		case !p.Valid:
			version = missingColor("missing")
		case match != nil:
			if _, ok := match(p); ok {
				version = matchColor(version)
			} else {
				version = missingColor(version)
			}
		}
		branch := ""
		if p.Branch != "" {
			branch = branchColor(p.Branch)
		}
		fmt.Fprintf(w, "%3d  %s  %s  %s  %s\n",
			i,
			padRight(titleColor(p.Title), titleWidth),
			padRight(version, 12),
			padRight(branch, 16),
			dimColor(p.Path))
	}
}

// WriteEditors prints one line per installation with its platforms.
func WriteEditors(w io.Writer, editors []editor.Installation) {
	if len(editors) == 0 {
		fmt.Fprintln(w, dimColor("No editors found. Add a search path with \"unityhub paths add <dir>\"."))
		return
	}
	for i, ed := range editors {
		platforms := dimColor("-")
		if len(ed.Platforms) > 0 {
			platforms = strings.Join(ed.Platforms, ", ")
		}
		fmt.Fprintf(w, "%3d  %s  %s  %s\n",
			i,
			padRight(titleColor(ed.Version), 14),
			padRight(platforms, 32),
			dimColor(ed.ExecutablePath))
	}
}
