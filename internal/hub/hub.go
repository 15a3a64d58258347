// pattern: Imperative Shell

// Package hub correlates the editor catalog with the known projects and
// launches projects in a compatible editor.
package hub

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"unityhub/internal/config"
	"unityhub/internal/discovery"
	"unityhub/internal/editor"
	"unityhub/internal/logging"
	"unityhub/internal/platform"
	"unityhub/internal/pool"
	"unityhub/internal/process"
)

// ProjectPathFlag names the project directory on the editor command line.
const ProjectPathFlag = "-projectpath"

var (
	// ErrProjectIndex is returned when an index is outside the current project list.
	ErrProjectIndex = errors.New("project index out of range")
	// ErrNoEditor is returned when no installed editor matches a project's version.
	ErrNoEditor = errors.New("no compatible editor installed")
)

// EditorCatalog rebuilds the installation list from search roots.
type EditorCatalog interface {
	Rebuild(roots []string) []editor.Installation
}

// ProjectScanner finds projects below a root and in the recently-used list.
type ProjectScanner interface {
	Scan(root string, existing []discovery.Project) []discovery.Project
	FromRecentRecords() []discovery.Project
}

// Launcher starts a detached process.
type Launcher interface {
	Launch(cfg process.Config) (*process.Handle, error)
}

// Store persists the configuration. Save errors are logged, never returned.
type Store interface {
	Save(cfg config.Config) error
}

// Options wires the Hub's collaborators. Nil fields get defaults built from Profile.
type Options struct {
	Profile  platform.Profile
	Editors  EditorCatalog
	Projects ProjectScanner
	Launcher Launcher
	Store    Store
	Logger   *logging.ScopedLogger
	Workers  int
}

// Hub owns the configuration and the project list. Readers get copies;
// writers are serialised and do their filesystem work outside the read lock.
type Hub struct {
	profile  platform.Profile
	editors  EditorCatalog
	projects ProjectScanner
	launcher Launcher
	store    Store
	logger   *logging.ScopedLogger
	workers  int

	writeMu sync.Mutex
	mu      sync.RWMutex
	cfg     config.Config
}

// New creates a Hub over cfg.
func New(cfg config.Config, opts Options) *Hub {
	if opts.Logger == nil {
		opts.Logger = logging.NopLogger()
	}
	if opts.Editors == nil {
		opts.Editors = editor.NewCatalog(opts.Profile, opts.Logger, editor.WithWorkers(opts.Workers))
	}
	if opts.Projects == nil {
		s := discovery.NewScanner(opts.Profile, discovery.DefaultRecentSource(), opts.Logger)
		s.SetWorkers(opts.Workers)
		opts.Projects = s
	}
	if opts.Launcher == nil {
		opts.Launcher = process.NewLauncher(opts.Logger)
	}
	return &Hub{
		profile:  opts.Profile,
		editors:  opts.Editors,
		projects: opts.Projects,
		launcher: opts.Launcher,
		store:    opts.Store,
		logger:   opts.Logger,
		workers:  opts.Workers,
		cfg:      cfg.Clone(),
	}
}

// Config returns a copy of the current configuration.
func (h *Hub) Config() config.Config {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cfg.Clone()
}

// Projects returns a copy of the current project list.
func (h *Hub) Projects() []discovery.Project {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.cfg.Projects)
}

// Editors returns a copy of the current editor catalog.
func (h *Hub) Editors() []editor.Installation {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.cfg.Editors)
}

// SearchPaths returns a copy of the configured search roots.
func (h *Hub) SearchPaths() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.cfg.SearchPaths)
}

// UpdateData rebuilds the editor catalog from the search paths and then
// refreshes the project list.
func (h *Hub) UpdateData() {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	installs := h.editors.Rebuild(h.SearchPaths())

	h.mu.Lock()
	h.cfg.Editors = installs
	h.mu.Unlock()

	h.updateProjectsInfo()
}

// UpdateProjectsInfo merges recently-used projects into the list, refreshes
// every project and orders the list most recently modified first.
func (h *Hub) UpdateProjectsInfo() {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	h.updateProjectsInfo()
}

func (h *Hub) updateProjectsInfo() {
	merged := append(h.Projects(), h.projects.FromRecentRecords()...)

	byPath := make(map[string]discovery.Project, len(merged))
	for _, p := range merged {
		if _, ok := byPath[p.Path]; !ok {
			byPath[p.Path] = p
		}
	}
	unique := make([]discovery.Project, 0, len(byPath))
	for _, p := range byPath {
		unique = append(unique, p)
	}

	refreshed := pool.Map(h.workers, unique, func(p discovery.Project) (discovery.Project, bool) {
		p.UpdateInfo()
		return p, true
	})
	slices.SortStableFunc(refreshed, func(a, b discovery.Project) int {
		if c := b.LastModified.Compare(a.LastModified); c != 0 {
			return c
		}
		return cmp.Compare(a.Path, b.Path)
	})

	h.mu.Lock()
	h.cfg.Projects = refreshed
	h.mu.Unlock()

	h.logger.Info("projects refreshed", "projects", len(refreshed))
	h.persist()
}

// EditorForProject returns the first installation whose version contains the
// project's declared version. Containment is not a version comparison: a
// declared "2021.3" also matches "12021.3.5".
func (h *Hub) EditorForProject(p discovery.Project) (editor.Installation, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return matchEditor(h.cfg.Editors, p)
}

func matchEditor(editors []editor.Installation, p discovery.Project) (editor.Installation, bool) {
	for _, ed := range editors {
		if strings.Contains(ed.Version, p.Version) {
			return ed, true
		}
	}
	return editor.Installation{}, false
}

// RunProject starts ed with p and returns without waiting.
func (h *Hub) RunProject(ed editor.Installation, p discovery.Project) error {
	_, err := h.launcher.Launch(process.Config{
		Name:   "editor " + ed.Version,
		Binary: ed.ExecutablePath,
		Args:   []string{ProjectPathFlag, p.Path},
	})
	if err != nil {
		return fmt.Errorf("opening %s in %s: %w", p.Title, ed.Version, err)
	}
	h.logger.Info("project launched", "project", p.Path, "editor", ed.Version)
	return nil
}

// RunProjectNr opens the project at index i of the current list in its
// matching editor.
func (h *Hub) RunProjectNr(i int) error {
	h.mu.RLock()
	if i < 0 || i >= len(h.cfg.Projects) {
		n := len(h.cfg.Projects)
		h.mu.RUnlock()
		return fmt.Errorf("%w: %d (have %d)", ErrProjectIndex, i, n)
	}
	p := h.cfg.Projects[i]
	ed, ok := matchEditor(h.cfg.Editors, p)
	h.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w for %s (%s)", ErrNoEditor, p.Title, p.Version)
	}
	return h.RunProject(ed, p)
}

// SearchForProjectsAtPath scans root, appends projects not yet known and
// returns how many were added.
func (h *Hub) SearchForProjectsAtPath(root string) int {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	found := h.projects.Scan(root, h.Projects())
	if len(found) == 0 {
		return 0
	}

	h.mu.Lock()
	h.cfg.Projects = append(h.cfg.Projects, found...)
	h.mu.Unlock()

	h.persist()
	return len(found)
}

// AddSearchPath adds root to the search paths and rebuilds the catalog.
func (h *Hub) AddSearchPath(root string) error {
	if err := h.mutateConfig(func(c *config.Config) error { return c.AddSearchPath(root) }); err != nil {
		return err
	}
	h.UpdateData()
	return nil
}

// RemoveSearchPath drops root from the search paths and rebuilds the catalog.
func (h *Hub) RemoveSearchPath(root string) error {
	if err := h.mutateConfig(func(c *config.Config) error { return c.RemoveSearchPath(root) }); err != nil {
		return err
	}
	h.UpdateData()
	return nil
}

func (h *Hub) mutateConfig(fn func(*config.Config) error) error {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	h.mu.Lock()
	defer h.mu.Unlock()
	return fn(&h.cfg)
}

// OpenFolder shows path in the platform file manager.
func (h *Hub) OpenFolder(path string) error {
	_, err := h.launcher.Launch(process.Config{
		Name:   "file manager",
		Binary: h.profile.FileManager,
		Args:   []string{path},
	})
	if err != nil {
		return fmt.Errorf("opening folder %s: %w", path, err)
	}
	return nil
}

// persist saves a snapshot. Callers hold writeMu.
func (h *Hub) persist() {
	if h.store == nil {
		return
	}
	if err := h.store.Save(h.Config()); err != nil {
		h.logger.Warn("failed to save configuration", "error", err)
	}
}
