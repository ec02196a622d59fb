// Package version ranks and extracts upstream version strings.
//
// Comparison uses Debian version ordering on a normalized form of each
// side and falls back to byte-wise ordering when either side still does
// not parse, so every pair of strings has a definite order.
package version

import (
	"regexp"
	"slices"
	"strings"

	debversion "github.com/knqyf263/go-deb-version"
)

var (
	// leadingText matches tag prefixes such as "v", "release-" or "R_".
	leadingText = regexp.MustCompile(`^[^0-9]+`)

	// preRelease matches a pre-release suffix directly after a digit or
	// after a single separator, as in "2.0rc1", "2.0-rc1" or "2.0.beta".
	preRelease = regexp.MustCompile(`([0-9])[-_.]?(alpha|beta|pre|rc)`)
)

// normalize rewrites an upstream tag into a Debian version:
// "v1.10" -> "1.10", "2.0-RC1" -> "2.0~rc1", "R_2_4_1" -> "2.4.1".
func normalize(v string) string {
	v = strings.ToLower(leadingText.ReplaceAllString(v, ""))
	v = preRelease.ReplaceAllString(v, "${1}~${2}")
	return strings.ReplaceAll(v, "_", ".")
}

// Compare returns -1, 0, or 1 comparing a and b.
//
// Both sides are normalized first: a leading non-numeric prefix is
// dropped, "_" separates components like ".", and alpha, beta, pre and
// rc suffixes sort before the release they precede. The results are then
// ordered as Debian versions: numeric runs compare numerically,
// non-numeric runs compare with "~" lowest, then end of string, then
// letters, then other symbols. This makes
// "v1.9" < "v1.10" and "2.0-rc1" < "2.0" < "2.0a".
// Strings with no version in them, such as "latest", compare byte-wise
// against anything.
func Compare(a, b string) int {
	va, err := debversion.NewVersion(normalize(a))
	if err != nil {
		return strings.Compare(a, b)
	}
	vb, err := debversion.NewVersion(normalize(b))
	if err != nil {
		return strings.Compare(a, b)
	}
	return sign(va.Compare(vb))
}

// Comparable reports whether v is ordered semantically rather than byte-wise.
func Comparable(v string) bool {
	return debversion.Valid(normalize(v))
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}

// Max returns the highest of items and false if items is empty.
// On ties the earliest item wins.
func Max(items []string) (string, bool) {
	if len(items) == 0 {
		return "", false
	}
	best := items[0]
	for _, v := range items[1:] {
		if Compare(v, best) > 0 {
			best = v
		}
	}
	return best, true
}

// SortDesc sorts items in place, highest first. Equal items keep their order.
func SortDesc(items []string) {
	slices.SortStableFunc(items, func(a, b string) int {
		return Compare(b, a)
	})
}
