package version

import (
	"regexp"

	"github.com/AOSC-Dev/aosc-findupdate/internal/core"
)

// Compile compiles a user-supplied pattern.
// Failures are returned as a *core.ConfigError of kind InvalidPattern.
func Compile(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, &core.ConfigError{
			Kind:        core.InvalidPattern,
			Field:       "pattern",
			Description: pattern,
			Err:         err,
		}
	}
	return re, nil
}

// Extract compiles pattern and applies it to items with ExtractWith.
func Extract(pattern string, items []string) ([]string, error) {
	re, err := Compile(pattern)
	if err != nil {
		return nil, err
	}
	return ExtractWith(re, items), nil
}

// ExtractWith returns the first capture group of every matching item when
// re has a capture group, and the matching items unchanged otherwise.
// Non-matching items are dropped, as are items whose first group did not
// participate in the match.
func ExtractWith(re *regexp.Regexp, items []string) []string {
	if re.NumSubexp() == 0 {
		return Filter(re, items)
	}

	var out []string
	for _, item := range items {
		m := re.FindStringSubmatchIndex(item)
		if m == nil || m[2] < 0 {
			continue
		}
		out = append(out, item[m[2]:m[3]])
	}
	return out
}

// Filter returns the items matched by re, unchanged.
func Filter(re *regexp.Regexp, items []string) []string {
	var out []string
	for _, item := range items {
		if re.MatchString(item) {
			out = append(out, item)
		}
	}
	return out
}
