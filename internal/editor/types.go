// pattern: Functional Core

package editor

import (
	"cmp"
	"strconv"
	"strings"
)

// Template is a project template archive bundled with an installation.
type Template struct {
	Path  string `yaml:"path" json:"path"`
	Title string `yaml:"title" json:"title"`
}

// Installation is one discovered editor build. ExecutablePath is its identity.
type Installation struct {
	Version        string     `yaml:"version" json:"version"`
	ExecutablePath string     `yaml:"executable_path" json:"executable_path"`
	InstallRoot    string     `yaml:"install_root" json:"install_root"`
	Platforms      []string   `yaml:"platforms" json:"platforms"`
	Templates      []Template `yaml:"templates,omitempty" json:"templates,omitempty"`
}

// Same reports whether two installations are the same build on disk.
func (i Installation) Same(other Installation) bool {
	return i.ExecutablePath == other.ExecutablePath
}

// platformNames maps lower-cased PlaybackEngines entries to display names.
var platformNames = map[string]string{
	"androidplayer":            "Android",
	"windowsstandalonesupport": "Windows",
	"linuxstandalonesupport":   "Linux",
	"linuxstandalone":          "Linux",
	"osxstandalone":            "OSX",
	"webglsupport":             "WebGL",
	"metrosupport":             "UWP",
	"iossupport":               "iOS",
}

// PlatformName maps a support-package directory name to a display name.
// Unknown names are returned unchanged.
func PlatformName(dirName string) string {
	if name, ok := platformNames[strings.ToLower(dirName)]; ok {
		return name
	}
	return dirName
}

// TrimBuildSuffix keeps the part of a product version before the first '_'.
func TrimBuildSuffix(version string) string {
	before, _, _ := strings.Cut(version, "_")
	return before
}

// CompareVersions orders version strings by their numeric components, so
// "2022.10.1f1" sorts after "2022.3.5f1". Non-numeric runs compare lexically.
func CompareVersions(a, b string) int {
	for a != "" && b != "" {
		var pa, pb string
		pa, a = nextRun(a)
		pb, b = nextRun(b)
		if c := compareRun(pa, pb); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a), len(b))
}

// nextRun splits off the leading run of digits or non-digits.
func nextRun(s string) (run, rest string) {
	digit := isDigit(s[0])
	i := 1
	for i < len(s) && isDigit(s[i]) == digit {
		i++
	}
	return s[:i], s[i:]
}

func compareRun(a, b string) int {
	if isDigit(a[0]) && isDigit(b[0]) {
		na, errA := strconv.ParseUint(a, 10, 64)
		nb, errB := strconv.ParseUint(b, 10, 64)
		if errA == nil && errB == nil {
			return cmp.Compare(na, nb)
		}
	}
	return cmp.Compare(a, b)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
