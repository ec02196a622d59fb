// Package core provides shared types and the checker registry.
package core

import (
	"context"
	"strings"
)

// Config is the parsed CHKUPDATE configuration of one package.
// The "type" key selects the checker; other keys are checker specific.
type Config map[string]string

// Get returns the value for key and whether it was set.
func (c Config) Get(key string) (string, bool) {
	v, ok := c[key]
	return v, ok
}

// Bool returns true only when key is set to "true".
func (c Config) Bool(key string, def bool) bool {
	v, ok := c[key]
	if !ok {
		return def
	}
	return v == "true"
}

// Require returns the value for key or a MissingField error carrying desc.
func (c Config) Require(key, desc string) (string, error) {
	v, ok := c[key]
	if !ok {
		return "", &ConfigError{Kind: MissingField, Field: key, Description: desc}
	}
	return v, nil
}

// Credentials holds secrets the caller obtained from its environment.
type Credentials struct {
	GitHubToken string
}

// Checker is the interface implemented by all upstream checkers.
type Checker interface {
	// Type returns the discriminator this checker is registered under.
	Type() string

	// Check queries the upstream and returns exactly one version string.
	Check(ctx context.Context, client *Client) (string, error)

	// URLs returns the URL builder for this upstream.
	URLs() URLBuilder
}

// Package is one unit of work for the batch driver.
type Package struct {
	Name    string
	Version string // currently recorded version, informational
	Config  Config
}

// Result is the outcome of checking one package.
type Result struct {
	Package Package
	Latest  string
	URLs    map[string]string
	Err     error
}

// TrimResult normalizes a checker result.
func TrimResult(s string) string {
	return strings.TrimSpace(s)
}
