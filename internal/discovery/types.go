// pattern: Functional Core

package discovery

import "time"

// Project is a Unity project directory. Path is its identity.
//
// Callers must check Valid before trusting the other fields: a project that
// stopped looking like a project keeps its last known values.
type Project struct {
	Path         string    `yaml:"path" json:"path"`
	Title        string    `yaml:"title" json:"title"`
	Version      string    `yaml:"version" json:"version"`
	Branch       string    `yaml:"branch,omitempty" json:"branch,omitempty"`
	Valid        bool      `yaml:"valid" json:"valid"`
	LastModified time.Time `yaml:"last_modified" json:"last_modified"` // zero when unknown
}

// Same reports whether two records describe the same directory.
func (p Project) Same(other Project) bool {
	return p.Path == other.Path
}

// RecentRecord is one raw entry of the OS recently-used list.
type RecentRecord struct {
	Name string
	Data []byte
}

// RecentSource enumerates recently used project records.
type RecentSource interface {
	Records() ([]RecentRecord, error)
}

type noRecentSource struct{}

func (noRecentSource) Records() ([]RecentRecord, error) { return nil, nil }
