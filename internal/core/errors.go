package core

import (
	"fmt"
)

// ConfigKind classifies a ConfigError.
type ConfigKind int

const (
	MissingField ConfigKind = iota
	UnknownBackend
	InvalidPattern
	MissingCredential
	InvalidField
)

func (k ConfigKind) String() string {
	switch k {
	case MissingField:
		return "missing field"
	case UnknownBackend:
		return "unknown backend"
	case InvalidPattern:
		return "invalid pattern"
	case MissingCredential:
		return "missing credential"
	case InvalidField:
		return "invalid field"
	default:
		return "config error"
	}
}

// ConfigError is returned when a package configuration cannot be used.
type ConfigError struct {
	Kind        ConfigKind
	Field       string
	Description string
	Err         error
}

func (e *ConfigError) Error() string {
	switch e.Kind {
	case MissingField:
		return fmt.Sprintf("please specify %s (%q)", e.Description, e.Field)
	case UnknownBackend:
		return fmt.Sprintf("unknown upstream type: %s", e.Description)
	case MissingCredential:
		return fmt.Sprintf("missing credential: %s", e.Description)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s %q: %v", e.Kind, e.Field, e.Err)
	}
	return fmt.Sprintf("%s %q: %s", e.Kind, e.Field, e.Description)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// EmptyResultError is returned when an upstream yields no candidate.
type EmptyResultError struct {
	Type   string // checker type
	Source string // instance URL, repo slug or project id
	What   string // e.g. "tags", "stable versions", "branch master"
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("%s (%s) didn't return any %s", e.Type, e.Source, e.What)
}

// MismatchError is returned when an upstream answers for another project.
type MismatchError struct {
	Type      string
	Requested string
	Received  string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s: requested project %s but received %s", e.Type, e.Requested, e.Received)
}

// PackageError attaches a package name to a check failure.
type PackageError struct {
	Name string
	Err  error
}

func (e *PackageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

func (e *PackageError) Unwrap() error {
	return e.Err
}
