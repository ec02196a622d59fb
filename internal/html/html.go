// Package html checks arbitrary web pages by matching a regular expression
// against the response body.
package html

import (
	"context"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/AOSC-Dev/aosc-findupdate/internal/core"
	"github.com/AOSC-Dev/aosc-findupdate/internal/version"
)

const checkerType = "html"

func init() {
	core.Register(checkerType, func(cfg core.Config, _ core.Credentials) (core.Checker, error) {
		return New(cfg)
	})
}

type Checker struct {
	url     string
	pattern *regexp.Regexp
	urls    *core.BaseURLs
}

// New builds a checker from the "url" and "pattern" keys. The pattern
// must have a capture group; the first group of each match is a candidate.
func New(cfg core.Config) (*Checker, error) {
	u, err := cfg.Require("url", "HTML URL")
	if err != nil {
		return nil, err
	}
	p, err := cfg.Require("pattern", "Regex pattern for matching versions")
	if err != nil {
		return nil, err
	}
	re, err := version.Compile(p)
	if err != nil {
		return nil, err
	}
	if re.NumSubexp() == 0 {
		return nil, &core.ConfigError{Kind: core.InvalidPattern, Field: "pattern", Description: "no capture group in " + p}
	}

	c := &Checker{url: u, pattern: re}
	c.urls = &core.BaseURLs{UpstreamFn: func() string { return c.url }}
	return c, nil
}

func (c *Checker) Type() string {
	return checkerType
}

func (c *Checker) URLs() core.URLBuilder {
	return c.urls
}

func (c *Checker) Check(ctx context.Context, client *core.Client) (string, error) {
	logger := log.FromContext(ctx)
	logger.Debug("fetching page", "url", c.url)

	body, err := client.GetPage(ctx, c.url)
	if err != nil {
		return "", err
	}

	var versions []string
	for _, m := range c.pattern.FindAllSubmatchIndex(body, -1) {
		if m[2] < 0 {
			return "", &core.ConfigError{
				Kind:        core.InvalidPattern,
				Field:       "pattern",
				Description: "pattern did not capture anything: " + c.pattern.String(),
			}
		}
		if v := strings.TrimSpace(string(body[m[2]:m[3]])); v != "" {
			versions = append(versions, v)
		}
	}
	logger.Debug("matched versions", "url", c.url, "versions", versions)

	switch len(versions) {
	case 0:
		return "", &core.EmptyResultError{Type: checkerType, Source: c.url, What: "matches for " + c.pattern.String()}
	case 1:
		return versions[0], nil
	}
	best, _ := version.Max(versions)
	return best, nil
}
