package core

import (
	"strings"

	packageurl "github.com/git-pkgs/packageurl-go"
)

// passthroughQualifiers are copied from a PURL into the checker config.
var passthroughQualifiers = []string{"pattern", "branch", "sort_version", "stable_only"}

// PURL builds a package URL string.
func PURL(typ, namespace, name, version string, qualifiers map[string]string) string {
	var q packageurl.Qualifiers
	if len(qualifiers) > 0 {
		q = packageurl.QualifiersFromMap(qualifiers)
	}
	return packageurl.NewPackageURL(typ, namespace, name, version, q, "").ToString()
}

// SplitSlug splits "owner/name" (or "group/sub/name") at the last slash.
func SplitSlug(slug string) (namespace, name string) {
	if idx := strings.LastIndex(slug, "/"); idx >= 0 {
		return slug[:idx], slug[idx+1:]
	}
	return "", slug
}

// ConfigFromPURL derives a checker configuration from a package URL.
//
//	pkg:github/owner/repo                      -> type=github repo=owner/repo
//	pkg:gitlab/group/repo?repository_url=URL   -> type=gitlab repo=group/repo instance=URL
//	pkg:generic/name?vcs_url=git+https://...   -> type=git url=https://...
//
// The qualifiers pattern, branch, sort_version and stable_only are copied as is.
func ConfigFromPURL(purl string) (Config, error) {
	p, err := packageurl.FromString(purl)
	if err != nil {
		return nil, &ConfigError{Kind: InvalidField, Field: "purl", Description: purl, Err: err}
	}
	qualifiers := p.Qualifiers.Map()

	slug := p.Name
	if p.Namespace != "" {
		slug = p.Namespace + "/" + p.Name
	}

	cfg := Config{}
	switch p.Type {
	case "github":
		cfg["type"] = "github"
		cfg["repo"] = slug
	case "gitlab":
		cfg["type"] = "gitlab"
		cfg["repo"] = slug
		if instance := qualifiers["repository_url"]; instance != "" {
			cfg["instance"] = strings.TrimSuffix(instance, "/")
		}
	case "generic":
		vcs := qualifiers["vcs_url"]
		if vcs == "" {
			return nil, &ConfigError{Kind: InvalidField, Field: "purl", Description: "generic package URL without vcs_url: " + purl}
		}
		cfg["type"] = "git"
		cfg["url"] = strings.TrimPrefix(vcs, "git+")
	default:
		return nil, &ConfigError{Kind: UnknownBackend, Field: "purl", Description: p.Type}
	}

	for _, key := range passthroughQualifiers {
		if v, ok := qualifiers[key]; ok {
			cfg[key] = v
		}
	}
	return cfg, nil
}
