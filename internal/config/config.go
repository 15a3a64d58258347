// pattern: Imperative Shell

// Package config loads and stores the persisted hub state: search paths, the
// editor catalog, known projects and UI preferences.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"unityhub/internal/discovery"
	"unityhub/internal/editor"
	"unityhub/internal/platform"
)

const (
	appName  = "unityhub"
	fileName = "config.yaml"
)

// ErrPathExists is returned when adding a search path that is already configured.
var ErrPathExists = errors.New("search path already configured")

// ErrPathUnknown is returned when removing a search path that is not configured.
var ErrPathUnknown = errors.New("search path not configured")

type Config struct {
	SearchPaths []string              `yaml:"search_paths"`
	Editors     []editor.Installation `yaml:"editors"`
	Projects    []discovery.Project   `yaml:"projects"`
	Theme       string                `yaml:"theme"`
	LogLevel    string                `yaml:"log_level"`
}

// DefaultConfig returns a configuration with the profile's default search
// root and an empty catalog.
func DefaultConfig(profile platform.Profile) Config {
	home, _ := os.UserHomeDir()
	return Config{
		SearchPaths: []string{platform.ExpandHome(profile.DefaultSearchPath, home)},
		Theme:       "mocha",
		LogLevel:    "info",
	}
}

// Dir returns the configuration directory. A non-empty override wins over
// $XDG_CONFIG_HOME/unityhub.
func Dir(override string) string {
	if override != "" {
		return override
	}
	return filepath.Join(xdg.ConfigHome, appName)
}

// StateDir returns where logs and lock files live.
func StateDir(override string) string {
	if override != "" {
		return override
	}
	return filepath.Join(xdg.StateHome, appName)
}

// Path returns the config file location inside dir.
func Path(dir string) string {
	return filepath.Join(dir, fileName)
}

func Load(profile platform.Profile, dir string) (Config, error) {
	return LoadFrom(profile, Path(dir))
}

// LoadFrom reads configPath. A missing file yields defaults and no error; a
// corrupt file yields defaults and the decode error.
func LoadFrom(profile platform.Profile, configPath string) (Config, error) {
	cfg := DefaultConfig(profile)

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	var loaded Config
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return DefaultConfig(profile), err
	}

	// An explicitly empty list is kept; only a missing key falls back.
	if loaded.SearchPaths == nil {
		loaded.SearchPaths = cfg.SearchPaths
	}
	if loaded.Theme == "" {
		loaded.Theme = cfg.Theme
	}
	if loaded.LogLevel == "" {
		loaded.LogLevel = cfg.LogLevel
	}
	return loaded, nil
}

// Save writes cfg to configPath atomically through a temp file and rename.
func Save(cfg Config, configPath string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".config-*.yaml")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), configPath)
}

// AddSearchPath appends path unless it is already present.
func (c *Config) AddSearchPath(path string) error {
	path = filepath.Clean(path)
	if slices.Contains(c.SearchPaths, path) {
		return ErrPathExists
	}
	c.SearchPaths = append(c.SearchPaths, path)
	return nil
}

// RemoveSearchPath drops path from the search paths.
func (c *Config) RemoveSearchPath(path string) error {
	path = filepath.Clean(path)
	i := slices.Index(c.SearchPaths, path)
	if i < 0 {
		return ErrPathUnknown
	}
	c.SearchPaths = slices.Delete(c.SearchPaths, i, i+1)
	return nil
}

// Clone returns a deep copy of the slices so snapshots can be handed out.
func (c Config) Clone() Config {
	c.SearchPaths = slices.Clone(c.SearchPaths)
	c.Editors = slices.Clone(c.Editors)
	c.Projects = slices.Clone(c.Projects)
	return c
}
