package core

import (
	"github.com/AOSC-Dev/aosc-findupdate/client"
)

// Type aliases so checker packages only import core.
type (
	Client     = client.Client
	Option     = client.Option
	URLBuilder = client.URLBuilder
	BaseURLs   = client.BaseURLs
)

// Function aliases.
var (
	DefaultClient = client.DefaultClient
	NewClient     = client.NewClient
	WithTimeout   = client.WithTimeout
	BuildURLs     = client.BuildURLs
)
