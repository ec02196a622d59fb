package cli

import (
	"fmt"
	"regexp"

	"github.com/BurntSushi/toml"

	"github.com/AOSC-Dev/aosc-findupdate/internal/core"
)

// packageList is the on-disk package list:
//
//	[[package]]
//	name = "bash"
//	version = "5.2.15"
//	[package.chkupdate]
//	type = "git"
//	url = "https://git.savannah.gnu.org/git/bash.git"
//	pattern = '^bash-([0-9.]+)$'
//
//	[[package]]
//	name = "ciel"
//	version = "3.1.4"
//	purl = "pkg:github/aosc-dev/ciel-rs"
type packageList struct {
	Packages []packageEntry `toml:"package"`
}

type packageEntry struct {
	Name      string            `toml:"name"`
	Version   string            `toml:"version"`
	PURL      string            `toml:"purl"`
	Chkupdate map[string]string `toml:"chkupdate"`
}

// loadPackages reads the package list at path. Packages whose name does
// not match include are skipped when include is non-nil.
func loadPackages(path string, include *regexp.Regexp) ([]core.Package, error) {
	var list packageList
	if _, err := toml.DecodeFile(path, &list); err != nil {
		return nil, fmt.Errorf("reading package list: %w", err)
	}
	return list.packages(include)
}

func (l packageList) packages(include *regexp.Regexp) ([]core.Package, error) {
	var pkgs []core.Package
	for i, e := range l.Packages {
		if e.Name == "" {
			return nil, fmt.Errorf("package #%d: missing name", i+1)
		}
		if include != nil && !include.MatchString(e.Name) {
			continue
		}

		cfg, err := e.config()
		if err != nil {
			return nil, fmt.Errorf("package %s: %w", e.Name, err)
		}
		pkgs = append(pkgs, core.Package{Name: e.Name, Version: e.Version, Config: cfg})
	}
	return pkgs, nil
}

func (e packageEntry) config() (core.Config, error) {
	switch {
	case e.PURL != "" && len(e.Chkupdate) > 0:
		return nil, fmt.Errorf("both purl and chkupdate are set")
	case e.PURL != "":
		return core.ConfigFromPURL(e.PURL)
	case len(e.Chkupdate) > 0:
		return core.Config(e.Chkupdate), nil
	default:
		return nil, fmt.Errorf("neither purl nor chkupdate is set")
	}
}
