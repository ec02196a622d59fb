// Package gitweb checks the tag listing page of a GitWeb (or cgit) site.
package gitweb

import (
	"bytes"
	"context"
	"regexp"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"

	"github.com/AOSC-Dev/aosc-findupdate/client"
	"github.com/AOSC-Dev/aosc-findupdate/internal/core"
	"github.com/AOSC-Dev/aosc-findupdate/internal/version"
)

const checkerType = "gitweb"

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

// New builds a checker from the "url" and "pattern" keys.
func New(cfg core.Config) (*Checker, error) {
	u, err := cfg.Require("url", "GitWeb project URL")
	if err != nil {
		return nil, err
	}
	c := &Checker{url: strings.TrimSuffix(u, "/")}
	if v, ok := cfg.Get("pattern"); ok {
		if c.pattern, err = version.Compile(v); err != nil {
			return nil, err
		}
	}
	c.urls = &core.BaseURLs{
		UpstreamFn: func() string { return c.url },
		PURLFn: func(v string) string {
			return core.PURL("generic", "", repoName(c.url), v, map[string]string{"vcs_url": "git+" + c.url})
		},
	}
	return c, nil
}

func (c *Checker) Type() string {
	return checkerType
}

func (c *Checker) URLs() core.URLBuilder {
	return c.urls
}

func (c *Checker) Check(ctx context.Context, cl *core.Client) (string, error) {
	page := c.url + "/tags"
	logger := log.FromContext(ctx)
	logger.Debug("fetching gitweb tags", "url", page)

	body, err := cl.GetPage(ctx, page)
	if err != nil {
		return "", err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", &client.ProtocolError{Kind: client.MalformedResponse, URL: page, Err: err}
	}

	var tags []string
	doc.Find(".name").Each(func(_ int, s *goquery.Selection) {
		tags = append(tags, strings.TrimSpace(s.Text()))
	})
	if c.pattern != nil {
		tags = version.ExtractWith(c.pattern, tags)
	}
	tags = slices.DeleteFunc(tags, func(t string) bool { return t == "" })
	logger.Debug("gitweb tags", "url", c.url, "tags", tags)

	switch len(tags) {
	case 0:
		return "", &core.EmptyResultError{Type: checkerType, Source: c.url, What: "tags"}
	case 1:
		return tags[0], nil
	}
	best, _ := version.Max(tags)
	return best, nil
}

// repoName turns "https://repo.or.cz/0ad.git" into "0ad".
func repoName(u string) string {
	_, name := core.SplitSlug(u)
	return strings.TrimSuffix(name, ".git")
}
