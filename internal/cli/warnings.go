package cli

import (
	"fmt"
	"strings"

	"github.com/AOSC-Dev/aosc-findupdate/internal/version"
)

var snapshotMarkers = []string{"+git", "+hg", "+svn", "+bzr"}

// warnings returns the issues worth a second look when moving a package
// from current to latest.
func warnings(current, latest string) []string {
	var out []string
	if strings.Contains(current, "+") {
		out = append(out, fmt.Sprintf("Compound version number '%s'", current))
		for _, m := range snapshotMarkers {
			if strings.Contains(current, m) {
				out = append(out, fmt.Sprintf("Version number indicates a snapshot (%s) is used", m))
				break
			}
		}
	}
	if !version.Comparable(current) || !version.Comparable(latest) {
		out = append(out, fmt.Sprintf("Versions not comparable: `%s` and `%s`", current, latest))
	} else if version.Compare(current, latest) > 0 {
		out = append(out, fmt.Sprintf("Possible downgrade from the current version (%s -> %s)", current, latest))
	}
	return out
}
