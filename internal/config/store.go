// pattern: Imperative Shell

package config

import "unityhub/internal/instance"

// FileStore saves the configuration to a file while holding the cross-process
// write lock in LockDir.
type FileStore struct {
	Path    string
	LockDir string
}

// NewFileStore returns a store for the config file in dir with its lock in stateDir.
func NewFileStore(dir, stateDir string) FileStore {
	return FileStore{Path: Path(dir), LockDir: stateDir}
}

func (s FileStore) Save(cfg Config) error {
	return instance.WithWriteLock(s.LockDir, func() error {
		return Save(cfg, s.Path)
	})
}
