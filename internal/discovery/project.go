// pattern: Imperative Shell

package discovery

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const (
	settingsDir  = "ProjectSettings"
	versionFile  = "ProjectVersion.txt"
	headPrefix   = "ref: refs/heads/"
	gitdirPrefix = "gitdir:"
)

var errMalformedManifest = errors.New("malformed project version manifest")

// IsProject reports whether path contains ProjectSettings/ProjectVersion.txt.
func IsProject(path string) bool {
	settings := filepath.Join(path, settingsDir)
	if _, err := os.Stat(settings); err != nil {
		return false
	}
	_, err := os.Stat(filepath.Join(settings, versionFile))
	return err == nil
}

// ReadVersion returns the editor version declared in the project's manifest:
// the second whitespace-separated token of ProjectVersion.txt.
func ReadVersion(path string) (string, error) {
	data, err := os.ReadFile(filepath.Join(path, settingsDir, versionFile))
	if err != nil {
		return "", err
	}
	fields := strings.Fields(string(data))
	if len(fields) < 2 {
		return "", errMalformedManifest
	}
	return fields[1], nil
}

// TryBuild returns the project at path, or false when path is not a project
// or its manifest cannot be read.
func TryBuild(path string) (Project, bool) {
	if !IsProject(path) {
		return Project{}, false
	}
	version, err := ReadVersion(path)
	if err != nil {
		return Project{}, false
	}

	p := Project{
		Path:    path,
		Title:   filepath.Base(filepath.Clean(path)),
		Version: version,
		Valid:   true,
	}
	p.UpdateInfo()
	return p, true
}

// UpdateInfo revalidates the project and refreshes its version, branch and
// modification time. Identity is never changed. When the directory is no
// longer a project only Valid is updated.
func (p *Project) UpdateInfo() {
	p.Valid = IsProject(p.Path)
	if !p.Valid {
		return
	}

	if version, err := ReadVersion(p.Path); err == nil {
		p.Version = version
	}
	if branch, ok := FindBranch(p.Path); ok {
		p.Branch = branch
	}
	if info, err := os.Stat(p.Path); err == nil {
		p.LastModified = info.ModTime()
	}
}

// FindBranch looks for a git HEAD in dir and then in each parent directory,
// innermost first. The search stops at the first HEAD found; the branch is
// reported only when that HEAD is a symbolic ref to refs/heads.
func FindBranch(dir string) (string, bool) {
	dir = filepath.Clean(dir)
	for {
		if head, ok := headFile(dir); ok {
			return readHead(head)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// headFile returns the HEAD file of the repository whose .git entry lives in
// dir. A .git file (worktree or submodule) is followed through its gitdir line.
func headFile(dir string) (string, bool) {
	dotGit := filepath.Join(dir, ".git")
	info, err := os.Stat(dotGit)
	if err != nil {
		return "", false
	}

	gitDir := dotGit
	if !info.IsDir() {
		data, err := os.ReadFile(dotGit)
		if err != nil {
			return "", false
		}
		line := strings.TrimSpace(string(data))
		if !strings.HasPrefix(line, gitdirPrefix) {
			return "", false
		}
		gitDir = strings.TrimSpace(strings.TrimPrefix(line, gitdirPrefix))
		if !filepath.IsAbs(gitDir) {
			gitDir = filepath.Join(dir, gitDir)
		}
	}

	head := filepath.Join(gitDir, "HEAD")
	if _, err := os.Stat(head); err != nil {
		return "", false
	}
	return head, true
}

func readHead(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	content := string(data)
	if !strings.Contains(content, headPrefix) {
		return "", false
	}
	return strings.TrimSpace(strings.Replace(content, headPrefix, "", 1)), true
}
