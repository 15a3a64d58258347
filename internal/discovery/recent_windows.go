//go:build windows

// pattern: Imperative Shell

package discovery

import (
	"golang.org/x/sys/windows/registry"
)

// recentKeyPath holds the editor's preferences, including recent projects.
const recentKeyPath = `SOFTWARE\Unity Technologies\Unity Editor 5.x`

type registrySource struct {
	path string
}

// DefaultRecentSource reads recent projects from the current user's registry.
func DefaultRecentSource() RecentSource {
	return registrySource{path: recentKeyPath}
}

func (s registrySource) Records() ([]RecentRecord, error) {
	key, err := registry.OpenKey(registry.CURRENT_USER, s.path, registry.QUERY_VALUE)
	if err != nil {
		return nil, err
	}
	defer func() { _ = key.Close() }()

	names, err := key.ReadValueNames(0)
	if err != nil {
		return nil, err
	}

	records := make([]RecentRecord, 0, len(names))
	for _, name := range names {
		data, _, err := key.GetBinaryValue(name)
		if err != nil {
			continue // not a binary value
		}
		records = append(records, RecentRecord{Name: name, Data: data})
	}
	return records, nil
}
