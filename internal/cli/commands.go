// pattern: Imperative Shell
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"

	flag "github.com/spf13/pflag"

	"unityhub/internal/hub"
	"unityhub/internal/instance"
)

// errUsage marks a missing or malformed argument.
var errUsage = errors.New("invalid arguments")

// BuildApp creates and configures the CLI application with all commands and groups.
func BuildApp(version string, configDir string) *App {
	return buildApp(version, &Delegate{ConfigDir: configDir})
}

func buildApp(version string, d *Delegate) *App {
	d.init()
	app := NewApp(version)

	app.AddCommand(&Command{
		Name:    "projects",
		Summary: "List known projects",
		Usage:   "Usage: unityhub projects [--json] [--refresh]",
		Run: func(args []string) error {
			fs := flag.NewFlagSet("projects", flag.ContinueOnError)
			asJSON := fs.Bool("json", false, "print JSON")
			refresh := fs.Bool("refresh", false, "re-read project metadata and recent projects first")
			if err := fs.Parse(args); err != nil {
				return err
			}
			d.Run(func(env *Env) error {
				if *refresh {
					env.Hub.UpdateProjectsInfo()
				}
				projects := env.Hub.Projects()
				if *asJSON {
					return PrintJSON(d.Stdout, nonNil(projects))
				}
				WriteProjects(d.Stdout, projects, env.Hub.EditorForProject)
				return nil
			})
			return nil
		},
	})

	app.AddCommand(&Command{
		Name:    "editors",
		Summary: "List installed editors",
		Usage:   "Usage: unityhub editors [--json]",
		Run: func(args []string) error {
			fs := flag.NewFlagSet("editors", flag.ContinueOnError)
			asJSON := fs.Bool("json", false, "print JSON")
			if err := fs.Parse(args); err != nil {
				return err
			}
			d.Run(func(env *Env) error {
				editors := env.Hub.Editors()
				if *asJSON {
					return PrintJSON(d.Stdout, nonNil(editors))
				}
				WriteEditors(d.Stdout, editors)
				return nil
			})
			return nil
		},
	})

	app.AddCommand(&Command{
		Name:    "rebuild",
		Summary: "Rescan search paths for editors and refresh projects",
		Usage:   "Usage: unityhub rebuild",
		Run: func(args []string) error {
			d.Run(func(env *Env) error {
				env.Hub.UpdateData()
				fmt.Fprintf(d.Stdout, "%d editors, %d projects\n", len(env.Hub.Editors()), len(env.Hub.Projects()))
				return nil
			})
			return nil
		},
	})

	app.AddCommand(&Command{
		Name:    "scan",
		Summary: "Search a directory for projects",
		Usage:   "Usage: unityhub scan <dir>",
		Run: func(args []string) error {
			if len(args) != 1 {
				return errUsage
			}
			root, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			d.Run(func(env *Env) error {
				warnIfInteractive(d, env)
				n := env.Hub.SearchForProjectsAtPath(root)
				fmt.Fprintf(d.Stdout, "%d projects found\n", n)
				return nil
			})
			return nil
		},
	})

	app.AddCommand(&Command{
		Name:    "open",
		Summary: "Open a project in its matching editor",
		Usage:   "Usage: unityhub open <index>",
		Run: func(args []string) error {
			i, err := indexArg(args)
			if err != nil {
				return err
			}
			d.Run(func(env *Env) error {
				if err := env.Hub.RunProjectNr(i); err != nil {
					return err
				}
				fmt.Fprintf(d.Stdout, "Opening %s\n", env.Hub.Projects()[i].Title)
				return nil
			})
			return nil
		},
	})

	app.AddCommand(&Command{
		Name:    "reveal",
		Summary: "Show a project (or editor) folder in the file manager",
		Usage:   "Usage: unityhub reveal <index> [--editor]",
		Run: func(args []string) error {
			fs := flag.NewFlagSet("reveal", flag.ContinueOnError)
			ofEditor := fs.Bool("editor", false, "index refers to the editor list")
			if err := fs.Parse(args); err != nil {
				return err
			}
			i, err := indexArg(fs.Args())
			if err != nil {
				return err
			}
			d.Run(func(env *Env) error {
				path, err := revealPath(env, i, *ofEditor)
				if err != nil {
					return err
				}
				return env.Hub.OpenFolder(path)
			})
			return nil
		},
	})

	app.AddCommand(&Command{
		Name:    "logs",
		Summary: "Print the log file",
		Usage:   "Usage: unityhub logs [--follow] [--level LEVEL] [--no-color]",
		Run: func(args []string) error {
			fs := flag.NewFlagSet("logs", flag.ContinueOnError)
			follow := fs.BoolP("follow", "f", false, "keep printing new entries")
			level := fs.String("level", "", "minimum level (debug, info, warn, error)")
			noColor := fs.Bool("no-color", false, "disable colors")
			if err := fs.Parse(args); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			err := TailLog(ctx, TailConfig{
				Path:    LogPath(d.ConfigDir),
				Level:   *level,
				Follow:  *follow,
				NoColor: *noColor,
				Writer:  d.Stdout,
			})
			if err != nil {
				fmt.Fprintf(d.Stderr, "error: %v\n", err)
				d.ExitFunc(1)
			}
			return nil
		},
	})

	app.AddCommand(&Command{
		Name:    "version",
		Summary: "Print version and exit",
		Usage:   "Usage: unityhub version",
		Run: func(args []string) error {
			fmt.Fprintln(d.Stdout, version)
			return nil
		},
	})

	pathsGroup := app.AddGroup("paths", "Manage editor search paths")
	RegisterPathCommands(pathsGroup, d)

	return app
}

// RegisterPathCommands registers the search path group commands.
func RegisterPathCommands(group *Group, d *Delegate) {
	group.AddCommand(&Command{
		Name:    "list",
		Summary: "List search paths",
		Usage:   "Usage: unityhub paths list",
		Run: func(args []string) error {
			d.Run(func(env *Env) error {
				for _, p := range env.Hub.SearchPaths() {
					fmt.Fprintln(d.Stdout, p)
				}
				return nil
			})
			return nil
		},
	})

	group.AddCommand(&Command{
		Name:    "add",
		Summary: "Add a search path and rebuild the editor list",
		Usage:   "Usage: unityhub paths add <dir>",
		Run: func(args []string) error {
			if len(args) != 1 {
				return errUsage
			}
			dir, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			d.Run(func(env *Env) error {
				warnIfInteractive(d, env)
				if err := env.Hub.AddSearchPath(dir); err != nil {
					return err
				}
				fmt.Fprintf(d.Stdout, "Added %s (%d editors)\n", dir, len(env.Hub.Editors()))
				return nil
			})
			return nil
		},
	})

	group.AddCommand(&Command{
		Name:    "remove",
		Summary: "Remove a search path and rebuild the editor list",
		Usage:   "Usage: unityhub paths remove <dir>",
		Run: func(args []string) error {
			if len(args) != 1 {
				return errUsage
			}
			dir, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			d.Run(func(env *Env) error {
				warnIfInteractive(d, env)
				return env.Hub.RemoveSearchPath(dir)
			})
			return nil
		},
	})
}

func indexArg(args []string) (int, error) {
	if len(args) != 1 {
		return 0, errUsage
	}
	i, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("%w: index %q is not a number", errUsage, args[0])
	}
	return i, nil
}

func revealPath(env *Env, i int, ofEditor bool) (string, error) {
	if ofEditor {
		editors := env.Hub.Editors()
		if i < 0 || i >= len(editors) {
			return "", fmt.Errorf("editor index %d out of range (have %d)", i, len(editors))
		}
		return editors[i].InstallRoot, nil
	}
	projects := env.Hub.Projects()
	if i < 0 || i >= len(projects) {
		return "", fmt.Errorf("%w: %d (have %d)", hub.ErrProjectIndex, i, len(projects))
	}
	return projects[i].Path, nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// warnIfInteractive tells the user that a running TUI holds its own copy of
// the configuration and will write it back on its next save.
func warnIfInteractive(d *Delegate, env *Env) {
	if pid, ok := instance.Running(env.StateDir); ok {
		fmt.Fprintf(d.Stderr, "note: unityhub is open in another terminal (pid %d); it may overwrite this change\n", pid)
	}
}
