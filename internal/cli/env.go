// pattern: Imperative Shell
package cli

import (
	"io"
	"path/filepath"

	"unityhub/internal/config"
	"unityhub/internal/discovery"
	"unityhub/internal/editor"
	"unityhub/internal/hub"
	"unityhub/internal/logging"
	"unityhub/internal/platform"
	"unityhub/internal/process"
)

const logFileName = "unityhub.log"

// Env is the wired application: configuration, logging and the Hub.
type Env struct {
	Profile   platform.Profile
	ConfigDir string
	StateDir  string
	Config    config.Config
	Logs      *logging.Manager
	Hub       *hub.Hub
}

// ResolveDirs returns the config and state directories. A --config-dir
// override holds both.
func ResolveDirs(configDir string) (cfgDir, stateDir string) {
	return config.Dir(configDir), config.StateDir(configDir)
}

// LogPath returns the log file for a config-dir override.
func LogPath(configDir string) string {
	_, stateDir := ResolveDirs(configDir)
	return filepath.Join(stateDir, logFileName)
}

// OpenEnv loads the configuration and wires the Hub. console, when non-nil,
// receives warnings and errors in human-readable form.
func OpenEnv(configDir string, console io.Writer) (*Env, error) {
	profile := platform.Current()
	cfgDir, stateDir := ResolveDirs(configDir)

	cfg, loadErr := config.Load(profile, cfgDir)

	logs, err := logging.NewManager(logging.Config{
		FilePath:   filepath.Join(stateDir, logFileName),
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 7,
		Level:      cfg.LogLevel,
		BufSize:    1000,
		Console:    console,
	})
	if err != nil {
		return nil, err
	}
	if loadErr != nil {
		logs.For("config").Warn("configuration unreadable, using defaults", "dir", cfgDir, "error", loadErr)
	}

	h := hub.New(cfg, hub.Options{
		Profile:  profile,
		Editors:  editor.NewCatalog(profile, logs.For("editor")),
		Projects: discovery.NewScanner(profile, discovery.DefaultRecentSource(), logs.For("discovery")),
		Launcher: process.NewLauncher(logs.For("process")),
		Store:    config.NewFileStore(cfgDir, stateDir),
		Logger:   logs.For("hub"),
	})

	return &Env{
		Profile:   profile,
		ConfigDir: cfgDir,
		StateDir:  stateDir,
		Config:    cfg,
		Logs:      logs,
		Hub:       h,
	}, nil
}

// Close flushes logs.
func (e *Env) Close() {
	_ = e.Logs.Close()
}
