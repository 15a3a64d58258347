// pattern: Imperative Shell
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	flag "github.com/spf13/pflag"

	"unityhub/internal/cli"
	"unityhub/internal/instance"
	"unityhub/internal/tui"
)

var version = "dev"

func main() {
	// Stop parsing flags after the first non-flag arg (the subcommand),
	// so that --help after a subcommand is handled by the subcommand.
	flag.CommandLine.SetInterspersed(false)

	configDir := flag.StringP("config-dir", "c", "", "config and state directory (default: XDG config and state dirs)")

	// Override flag.Usage before Parse so --help uses the CLI app's help
	flag.Usage = func() {
		app := cli.BuildApp(version, *configDir)
		app.PrintHelp(os.Stderr)
		flag.PrintDefaults()
	}

	flag.Parse()

	app := cli.BuildApp(version, *configDir)
	if app.Execute(flag.Args()) {
		runTUI(*configDir)
	}
}

// startTUI wires the environment, takes the single-instance lock and builds
// the program. The returned func releases everything startTUI acquired.
func startTUI(configDir string) (*tea.Program, func(), error) {
	env, err := cli.OpenEnv(configDir, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing: %w", err)
	}

	fl, err := instance.Lock(env.StateDir)
	if err != nil {
		env.Close()
		return nil, nil, err
	}

	logger := env.Logs.For("app")
	logger.Info("application starting", "version", version, "config_dir", env.ConfigDir)

	model := tui.NewModel(env.Hub, env.Config.Theme, env.Logs.Entries())
	p := tea.NewProgram(model, tea.WithAltScreen())

	cleanup := func() {
		logger.Info("application stopped")
		instance.Cleanup(env.StateDir, fl)
		env.Close()
	}
	return p, cleanup, nil
}

// runTUI launches the interactive TUI.
func runTUI(configDir string) {
	p, cleanup, err := startTUI(configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	_, err = p.Run()
	cleanup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}
