// pattern: Imperative Shell

package discovery

import (
	"strings"
	"unicode/utf8"

	"unityhub/internal/logging"
	"unityhub/internal/platform"
	"unityhub/internal/pool"
	"unityhub/internal/walk"
)

// ScanDepth bounds how far below a scan root projects are looked for.
const ScanDepth = 3

// recentPrefix marks recently-used project values in the editor's settings.
const recentPrefix = "RecentlyUsedProjectPaths-"

// Scanner discovers projects on disk and in the OS recently-used list.
type Scanner struct {
	profile platform.Profile
	recent  RecentSource
	logger  *logging.ScopedLogger
	workers int
}

// NewScanner creates a project scanner. A nil source disables recent records.
func NewScanner(profile platform.Profile, recent RecentSource, logger *logging.ScopedLogger) *Scanner {
	if recent == nil {
		recent = noRecentSource{}
	}
	return &Scanner{
		profile: profile,
		recent:  recent,
		logger:  logger,
	}
}

// SetWorkers sets the worker pool size (0 = one per CPU).
func (s *Scanner) SetWorkers(n int) {
	s.workers = n
}

// Scan walks root and returns the projects found there whose paths are not
// already in existing.
func (s *Scanner) Scan(root string, existing []Project) []Project {
	known := pathSet(existing)

	found := pool.Collect(s.workers, func(emit func(string)) {
		if err := walk.Dirs(root, ScanDepth, emit); err != nil {
			s.logger.Debug("skipping scan root", "root", root, "error", err)
		}
	}, TryBuild)

	var projects []Project
	for _, p := range found {
		if known[p.Path] {
			continue
		}
		known[p.Path] = true
		projects = append(projects, p)
	}

	s.logger.Info("scan finished", "root", root, "new_projects", len(projects))
	return projects
}

// FromRecentRecords builds projects from the OS recently-used list. Records
// that cannot be decoded or do not point at a project are skipped.
func (s *Scanner) FromRecentRecords() []Project {
	records, err := s.recent.Records()
	if err != nil {
		s.logger.Debug("recent projects unavailable", "error", err)
		return nil
	}

	var projects []Project
	seen := make(map[string]bool)
	for _, rec := range records {
		if !strings.Contains(rec.Name, recentPrefix) {
			continue
		}
		if !utf8.Valid(rec.Data) {
			s.logger.Debug("skipping undecodable recent record", "name", rec.Name)
			continue
		}
		path := s.profile.NormalizePath(string(rec.Data))
		if seen[path] {
			continue
		}
		p, ok := TryBuild(path)
		if !ok {
			continue
		}
		seen[path] = true
		projects = append(projects, p)
	}
	return projects
}

func pathSet(projects []Project) map[string]bool {
	set := make(map[string]bool, len(projects))
	for _, p := range projects {
		set[p.Path] = true
	}
	return set
}
