// Package normalize rewrites upstream version strings into the form used
// by AOSC OS package descriptors.
//
// See https://wiki.aosc.io/developer/packaging/package-styling-manual/#versioning-variables
package normalize

import (
	"regexp"
	"strings"
)

// Kind is the versioning scheme a version string follows.
type Kind int

const (
	Normal Kind = iota
	LetterNotation
	Dashes
	Underscores
	ReleaseType
	Revision
)

func (k Kind) String() string {
	switch k {
	case LetterNotation:
		return "letter notation"
	case Dashes:
		return "dashes"
	case Underscores:
		return "underscores"
	case ReleaseType:
		return "release type"
	case Revision:
		return "revision"
	default:
		return "normal"
	}
}

var (
	letterNotationRe = regexp.MustCompile(`^\d+(?:\.\d+)+[-_~+^][a-z]\d+$`)
	dashesRe         = regexp.MustCompile(`^\d+(?:-\d+)+$`)
	underscoresRe    = regexp.MustCompile(`^\d+(?:_[0-9a-zA-Z]+)+$`)
	releaseTypeRe    = regexp.MustCompile(`^\d+(?:\.\d+)+[-_~^]*(?:rc|a|alpha|b|beta)\d*$`)
	revisionRe       = regexp.MustCompile(`^\d+(?:\.\d+)+(?:-\d+)+$`)

	separatorRe  = regexp.MustCompile(`[-_~+^]`)
	dashUnderRe  = regexp.MustCompile(`[-_]`)
	releaseTagRe = regexp.MustCompile(`[-+~^]*((?:rc|alpha|a|beta|b)\S+)`)
)

// Classify returns the scheme v follows. Release types take precedence
// over dashes, underscores, letter notation and revisions, in that order.
func Classify(v string) Kind {
	switch {
	case releaseTypeRe.MatchString(v):
		return ReleaseType
	case dashesRe.MatchString(v):
		return Dashes
	case underscoresRe.MatchString(v):
		return Underscores
	case letterNotationRe.MatchString(v):
		return LetterNotation
	case revisionRe.MatchString(v):
		return Revision
	default:
		return Normal
	}
}

// Comply lowercases v and rewrites it according to its scheme:
//
//	1.2.3-p6     -> 1.2.3p6
//	2023-07-18   -> 2023.07.18
//	10_2         -> 10.2
//	2.16-rc1     -> 2.16~rc1
//	5.3-56       -> 5.3+56
//
// Versions that follow no known scheme are only lowercased.
func Comply(v string) string {
	v = strings.ToLower(v)
	switch Classify(v) {
	case LetterNotation:
		return separatorRe.ReplaceAllString(v, "")
	case Dashes, Underscores:
		return dashUnderRe.ReplaceAllString(v, ".")
	case ReleaseType:
		return releaseTagRe.ReplaceAllString(v, "~${1}")
	case Revision:
		return separatorRe.ReplaceAllString(v, "+")
	default:
		return v
	}
}
