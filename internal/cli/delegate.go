// pattern: Imperative Shell
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"unityhub/internal/hub"
)

// Delegate opens the Hub for a command, runs it and turns its error into an
// exit code.
type Delegate struct {
	// ConfigDir is the --config-dir override, empty for the XDG default.
	ConfigDir string

	// ExitFunc is called to exit the process. Defaults to os.Exit.
	ExitFunc func(int)

	// Stdout and Stderr default to the process streams.
	Stdout io.Writer
	Stderr io.Writer

	// Open wires the Hub. Defaults to OpenEnv.
	Open func(configDir string, console io.Writer) (*Env, error)
}

func (d *Delegate) init() {
	if d.ExitFunc == nil {
		d.ExitFunc = os.Exit
	}
	if d.Stdout == nil {
		d.Stdout = os.Stdout
	}
	if d.Stderr == nil {
		d.Stderr = os.Stderr
	}
	if d.Open == nil {
		d.Open = OpenEnv
	}
}

// Run opens the environment and invokes fn with its Hub.
//
// Exit codes:
// - 2: the project index or a compatible editor was not found
// - 1: any other error
// - 0: success (fn returned nil)
func (d *Delegate) Run(fn func(env *Env) error) {
	d.init()

	env, err := d.Open(d.ConfigDir, d.Stderr)
	if err != nil {
		fmt.Fprintf(d.Stderr, "error: %v\n", err)
		d.ExitFunc(1)
		return
	}
	defer env.Close()

	if err := fn(env); err != nil {
		fmt.Fprintf(d.Stderr, "error: %v\n", err)
		if errors.Is(err, hub.ErrProjectIndex) || errors.Is(err, hub.ErrNoEditor) {
			d.ExitFunc(2)
		} else {
			d.ExitFunc(1)
		}
	}
}

// PrintJSON writes v to w, indented when w is a terminal.
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	if isTerminal(w) {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
