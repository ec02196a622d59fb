// Package findupdate resolves the latest upstream version of a project.
//
// A package is described by a Config whose "type" key selects one of the
// upstream checkers (anitya, github, gitlab, gitweb, git, html); the other
// keys are checker specific. Checkers register themselves when imported.
//
// Basic usage:
//
//	import (
//		"context"
//		findupdate "github.com/AOSC-Dev/aosc-findupdate"
//		_ "github.com/AOSC-Dev/aosc-findupdate/all"
//	)
//
//	cfg := findupdate.Config{"type": "gitlab", "repo": "GNOME/fractal", "instance": "https://gitlab.gnome.org"}
//	v, err := findupdate.Check(context.Background(), cfg, findupdate.Credentials{}, nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(v)
//
// Batches of packages are checked in parallel with CheckAll.
package findupdate

import (
	"context"

	"github.com/AOSC-Dev/aosc-findupdate/client"
	"github.com/AOSC-Dev/aosc-findupdate/internal/core"
	"github.com/AOSC-Dev/aosc-findupdate/internal/version"
)

// Re-export types from internal/core
type (
	// Config is the parsed CHKUPDATE configuration of one package.
	Config = core.Config

	// Credentials holds secrets used by checkers that need them.
	Credentials = core.Credentials

	// Checker is the interface implemented by all upstream checkers.
	Checker = core.Checker

	// Package is one unit of work for CheckAll.
	Package = core.Package

	// Result is the outcome of checking one package.
	Result = core.Result

	// BatchOptions configures CheckAll.
	BatchOptions = core.BatchOptions
)

// Re-export types from client
type (
	// Client is the HTTP client used by checkers.
	Client = client.Client

	// Option configures a Client.
	Option = client.Option

	// URLBuilder constructs human-facing URLs for an upstream.
	URLBuilder = client.URLBuilder

	// Breakers holds per-host circuit breakers shared between clients.
	Breakers = client.Breakers
)

// Error types
type (
	ConfigError      = core.ConfigError
	ConfigKind       = core.ConfigKind
	EmptyResultError = core.EmptyResultError
	MismatchError    = core.MismatchError
	PackageError     = core.PackageError

	HTTPError         = client.HTTPError
	BodyTooLargeError = client.BodyTooLargeError
	TransportError    = client.TransportError
	ProtocolError     = client.ProtocolError
)

const (
	MissingField      = core.MissingField
	UnknownBackend    = core.UnknownBackend
	InvalidPattern    = core.InvalidPattern
	MissingCredential = core.MissingCredential
	InvalidField      = core.InvalidField

	MalformedResponse = client.MalformedResponse
	MalformedPktLine  = client.MalformedPktLine
)

var ErrCircuitOpen = client.ErrCircuitOpen

// Client options
var (
	WithTimeout    = client.WithTimeout
	WithHTTPClient = client.WithHTTPClient
	WithBreakers   = client.WithBreakers
	WithDNSCache   = client.WithDNSCache
)

// New creates the checker selected by cfg["type"].
func New(cfg Config, creds Credentials) (Checker, error) {
	return core.New(cfg, creds)
}

// Check resolves the latest version for cfg. The result is trimmed of
// surrounding whitespace; a leading "v" is kept.
// If c is nil, DefaultClient() is used.
func Check(ctx context.Context, cfg Config, creds Credentials, c *Client) (string, error) {
	return core.Check(ctx, cfg, creds, c)
}

// CheckAll checks pkgs in parallel, one client per worker.
func CheckAll(ctx context.Context, pkgs []Package, opts BatchOptions) []Result {
	return core.CheckAll(ctx, pkgs, opts)
}

// SupportedTypes returns all registered checker types.
// Note: checkers must be imported to be registered.
func SupportedTypes() []string {
	return core.SupportedTypes()
}

// DefaultClient returns a client with a 30s timeout.
func DefaultClient() *Client {
	return client.DefaultClient()
}

// NewClient creates a new client with the given options.
func NewClient(opts ...Option) *Client {
	return client.NewClient(opts...)
}

// NewBreakers creates circuit breakers that trip after threshold
// failures against a host.
func NewBreakers(threshold int) *Breakers {
	return client.NewBreakers(threshold)
}

// IsFetchError reports whether err is a transport, status or size failure.
func IsFetchError(err error) bool {
	return client.IsFetchError(err)
}

// ConfigFromPURL derives a Config from a package URL.
func ConfigFromPURL(purl string) (Config, error) {
	return core.ConfigFromPURL(purl)
}

// CompareVersions orders two version strings, returning -1, 0 or 1.
func CompareVersions(a, b string) int {
	return version.Compare(a, b)
}
