// pattern: Functional Core

// Package platform describes the per-OS layout differences of Unity editor
// installations and the host desktop.
package platform

import (
	"path/filepath"
	"runtime"
	"strings"
)

// Profile holds everything that differs between operating systems when
// probing editor installations and talking to the desktop.
// A Profile is selected once at startup and threaded through the catalogs.
type Profile struct {
	Name string

	// ExecutableRelPath is the editor binary relative to an install root.
	ExecutableRelPath string
	// UninstallMarker must exist in an install root when UsesUninstallMarker is set.
	UninstallMarker     string
	UsesUninstallMarker bool
	// ReadsVersionResource enables parsing the executable's PE version resource.
	ReadsVersionResource bool

	TemplatesDir      string
	FileManager       string
	PathSeparator     byte
	DefaultSearchPath string
}

var (
	Windows = Profile{
		Name:                 "windows",
		ExecutableRelPath:    "Unity.exe",
		UninstallMarker:      "Uninstall.exe",
		UsesUninstallMarker:  true,
		ReadsVersionResource: true,
		TemplatesDir:         `Data\Resources\PackageManager\ProjectTemplates`,
		FileManager:          "explorer",
		PathSeparator:        '\\',
		DefaultSearchPath:    `C:\Program Files\Unity\Hub\Editor`,
	}

	MacOS = Profile{
		Name:              "darwin",
		ExecutableRelPath: "Unity.app/Contents/MacOS/Unity",
		TemplatesDir:      "Contents/Resources/PackageManager/ProjectTemplates",
		FileManager:       "open",
		PathSeparator:     '/',
		DefaultSearchPath: "/Applications/Unity/Hub/Editor",
	}

	Linux = Profile{
		Name:              "linux",
		ExecutableRelPath: "Unity",
		TemplatesDir:      "Data/Resources/PackageManager/ProjectTemplates",
		FileManager:       "xdg-open",
		PathSeparator:     '/',
		DefaultSearchPath: "~/Unity/Hub/Editor",
	}
)

// Current returns the profile for the running operating system.
func Current() Profile {
	return ForOS(runtime.GOOS)
}

// ForOS returns the profile for a GOOS value. Unknown systems get the Linux layout.
func ForOS(goos string) Profile {
	switch goos {
	case "windows":
		return Windows
	case "darwin":
		return MacOS
	default:
		return Linux
	}
}

// ExecutablePath returns where the editor binary lives under installRoot.
func (p Profile) ExecutablePath(installRoot string) string {
	return filepath.Join(installRoot, filepath.FromSlash(p.ExecutableRelPath))
}

// UninstallMarkerPath returns the uninstall marker location under installRoot.
func (p Profile) UninstallMarkerPath(installRoot string) string {
	return filepath.Join(installRoot, p.UninstallMarker)
}

// TemplatesPath returns the bundled project templates directory under installRoot.
func (p Profile) TemplatesPath(installRoot string) string {
	dir := strings.ReplaceAll(p.TemplatesDir, `\`, "/")
	return filepath.Join(installRoot, filepath.FromSlash(dir))
}

// NormalizePath trims NUL padding and rewrites separators to the profile's
// separator. Paths recorded by the editor use forward slashes on every OS.
func (p Profile) NormalizePath(path string) string {
	path = strings.Trim(path, "\x00")
	if p.PathSeparator == '\\' {
		return strings.ReplaceAll(path, "/", `\`)
	}
	return path
}

// LastSegment returns the final element of path, honouring either separator.
func (p Profile) LastSegment(path string) string {
	path = strings.TrimRight(path, `/\`)
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[i+1:]
	}
	return path
}

// ExpandHome replaces a leading "~" with home.
func ExpandHome(path, home string) string {
	if home == "" {
		return path
	}
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		return filepath.Join(home, path[2:])
	}
	return path
}
