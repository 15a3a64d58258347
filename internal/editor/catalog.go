// pattern: Imperative Shell

// Package editor discovers Unity editor installations below configured search
// roots.
package editor

import (
	"cmp"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"unityhub/internal/logging"
	"unityhub/internal/pe"
	"unityhub/internal/platform"
	"unityhub/internal/pool"
	"unityhub/internal/walk"
)

// SearchDepth bounds how far below a search root installations are looked for.
const SearchDepth = 2

const (
	playbackEnginesDir = "Data/PlaybackEngines"
	templateExt        = ".tgz"
)

// VersionReader extracts a product version from an executable.
type VersionReader func(exePath string) (string, bool)

// Catalog builds Installation records for a platform profile.
type Catalog struct {
	profile     platform.Profile
	logger      *logging.ScopedLogger
	workers     int
	readVersion VersionReader
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithWorkers sets the worker pool size (0 = one per CPU).
func WithWorkers(n int) Option {
	return func(c *Catalog) { c.workers = n }
}

// WithVersionReader replaces the PE version resource reader.
func WithVersionReader(r VersionReader) Option {
	return func(c *Catalog) { c.readVersion = r }
}

// NewCatalog creates a catalog for the given profile.
func NewCatalog(profile platform.Profile, logger *logging.ScopedLogger, opts ...Option) *Catalog {
	c := &Catalog{
		profile:     profile,
		logger:      logger,
		readVersion: ResourceVersion,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ResourceVersion reads ProductVersion from the executable's version resource.
func ResourceVersion(exePath string) (string, bool) {
	info, err := pe.ReadVersionInfo(exePath)
	if err != nil {
		return "", false
	}
	v, ok := info.ProductVersion()
	if !ok {
		return "", false
	}
	return TrimBuildSuffix(v), true
}

// Rebuild discovers every installation below roots. Missing roots are skipped.
// The result holds one entry per executable, newest version first by
// CompareVersions, ties broken by executable path.
func (c *Catalog) Rebuild(roots []string) []Installation {
	found := pool.Collect(c.workers, func(emit func(string)) {
		for _, root := range roots {
			if err := walk.Dirs(root, SearchDepth, emit); err != nil {
				c.logger.Debug("skipping search root", "root", root, "error", err)
			}
		}
	}, c.Build)

	seen := make(map[string]bool, len(found))
	installs := make([]Installation, 0, len(found))
	for _, inst := range found {
		if seen[inst.ExecutablePath] {
			continue
		}
		seen[inst.ExecutablePath] = true
		installs = append(installs, inst)
	}

	slices.SortFunc(installs, func(a, b Installation) int {
		if c := CompareVersions(b.Version, a.Version); c != 0 {
			return c
		}
		return cmp.Compare(a.ExecutablePath, b.ExecutablePath)
	})

	c.logger.Info("editor catalog rebuilt", "roots", len(roots), "installations", len(installs))
	return installs
}

// IsCandidate reports whether dir looks like an editor installation.
func (c *Catalog) IsCandidate(dir string) bool {
	if c.profile.UsesUninstallMarker && !exists(c.profile.UninstallMarkerPath(dir)) {
		return false
	}
	info, err := os.Stat(c.profile.ExecutablePath(dir))
	return err == nil && info.Mode().IsRegular()
}

// Build returns the installation rooted at dir, or false when dir is not an
// installation or no version can be determined.
func (c *Catalog) Build(dir string) (Installation, bool) {
	if !c.IsCandidate(dir) {
		return Installation{}, false
	}
	exe := c.profile.ExecutablePath(dir)

	version := ""
	if c.profile.ReadsVersionResource {
		if v, ok := c.readVersion(exe); ok {
			version = v
		} else {
			c.logger.Debug("no version resource, using directory name", "exe", exe)
		}
	}
	if version == "" {
		version = c.profile.LastSegment(dir)
	}
	if version == "" {
		c.logger.Debug("dropping installation without version", "dir", dir)
		return Installation{}, false
	}

	return Installation{
		Version:        version,
		ExecutablePath: exe,
		InstallRoot:    dir,
		Platforms:      Platforms(dir),
		Templates:      c.Templates(dir),
	}, true
}

// Platforms lists the build targets supported by the installation at dir.
func Platforms(dir string) []string {
	entries, err := os.ReadDir(filepath.Join(dir, filepath.FromSlash(playbackEnginesDir)))
	if err != nil {
		return []string{}
	}
	platforms := make([]string, 0, len(entries))
	for _, e := range entries {
		platforms = append(platforms, PlatformName(e.Name()))
	}
	return platforms
}

// Templates lists the template archives bundled with the installation at dir.
func (c *Catalog) Templates(dir string) []Template {
	templatesDir := c.profile.TemplatesPath(dir)
	entries, err := os.ReadDir(templatesDir)
	if err != nil {
		return nil
	}
	var templates []Template
	for _, e := range entries {
		if !strings.Contains(e.Name(), templateExt) {
			continue
		}
		templates = append(templates, Template{
			Path:  filepath.Join(templatesDir, e.Name()),
			Title: strings.Replace(e.Name(), templateExt, "", 1),
		})
	}
	return templates
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
