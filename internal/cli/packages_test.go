package cli

import (
	"regexp"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/AOSC-Dev/aosc-findupdate/internal/core"
)

func TestLoadPackages(t *testing.T) {
	path := writeFile(t, "packages.toml", `
[[package]]
name = "bash"
version = "5.2.15"
[package.chkupdate]
type = "git"
url = "https://git.savannah.gnu.org/git/bash.git"
pattern = '^bash-([0-9.]+)$'

[[package]]
name = "ciel"
version = "3.1.4"
purl = "pkg:github/aosc-dev/ciel-rs"
`)

	pkgs, err := loadPackages(path, nil)
	if err != nil {
		t.Fatalf("loadPackages() error = %v", err)
	}
	want := []core.Package{
		{Name: "bash", Version: "5.2.15", Config: core.Config{
			"type":    "git",
			"url":     "https://git.savannah.gnu.org/git/bash.git",
			"pattern": "^bash-([0-9.]+)$",
		}},
		{Name: "ciel", Version: "3.1.4", Config: core.Config{"type": "github", "repo": "aosc-dev/ciel-rs"}},
	}
	if diff := cmp.Diff(want, pkgs); diff != "" {
		t.Errorf("loadPackages() mismatch (-want +got):\n%s", diff)
	}

	pkgs, err = loadPackages(path, regexp.MustCompile("^ba"))
	if err != nil {
		t.Fatalf("loadPackages() error = %v", err)
	}
	if len(pkgs) != 1 || pkgs[0].Name != "bash" {
		t.Errorf("filtered packages = %+v", pkgs)
	}
}

func TestLoadPackages_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid toml", "[[package]\n"},
		{"missing name", "[[package]]\nversion = \"1\"\npurl = \"pkg:github/a/b\"\n"},
		{"no upstream", "[[package]]\nname = \"a\"\n"},
		{"both upstreams", "[[package]]\nname = \"a\"\npurl = \"pkg:github/a/b\"\n[package.chkupdate]\ntype = \"git\"\n"},
		{"bad purl", "[[package]]\nname = \"a\"\npurl = \"pkg:cargo/serde\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "packages.toml", tt.content)
			if _, err := loadPackages(path, nil); err == nil {
				t.Error("loadPackages() succeeded, want error")
			}
		})
	}
}
