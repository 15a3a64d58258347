//go:build !windows

package discovery

// DefaultRecentSource returns an empty source: only Windows keeps a
// recently-used project list the hub can read.
func DefaultRecentSource() RecentSource {
	return noRecentSource{}
}
