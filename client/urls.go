package client

// URLBuilder constructs human-facing URLs for an upstream.
type URLBuilder interface {
	Upstream() string
	PURL(version string) string
}

// BaseURLs provides a default URLBuilder implementation.
type BaseURLs struct {
	UpstreamFn func() string
	PURLFn     func(version string) string
}

func (b *BaseURLs) Upstream() string {
	if b.UpstreamFn != nil {
		return b.UpstreamFn()
	}
	return ""
}

func (b *BaseURLs) PURL(version string) string {
	if b.PURLFn != nil {
		return b.PURLFn(version)
	}
	return ""
}

// BuildURLs returns a map of all non-empty URLs for an upstream.
// Keys are "upstream" and "purl".
func BuildURLs(urls URLBuilder, version string) map[string]string {
	result := make(map[string]string)
	if v := urls.Upstream(); v != "" {
		result["upstream"] = v
	}
	if v := urls.PURL(version); v != "" {
		result["purl"] = v
	}
	return result
}
