// Package git checks repositories served over the Git smart HTTP protocol
// by reading their reference advertisement.
package git

import (
	"context"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/AOSC-Dev/aosc-findupdate/client"
	"github.com/AOSC-Dev/aosc-findupdate/internal/core"
	"github.com/AOSC-Dev/aosc-findupdate/internal/pktline"
	"github.com/AOSC-Dev/aosc-findupdate/internal/version"
)

const (
	checkerType = "git"

	// UserAgent is sent so that servers answer as they would to git itself.
	UserAgent = "git/2.31.1"
)

func init() {
	core.Register(checkerType, func(cfg core.Config, _ core.Credentials) (core.Checker, error) {
		return New(cfg)
	})
}

type Checker struct {
	url     string
	branch  string
	pattern *regexp.Regexp
	urls    *core.BaseURLs
}

// New builds a checker from the "url", "branch" and "pattern" keys.
// With a branch the checker returns the branch head revision and ignores
// tags.
func New(cfg core.Config) (*Checker, error) {
	u, err := cfg.Require("url", "Repository URL")
	if err != nil {
		return nil, err
	}
	c := &Checker{url: strings.TrimSuffix(u, "/")}
	if v, ok := cfg.Get("branch"); ok {
		c.branch = v
	}
	if v, ok := cfg.Get("pattern"); ok {
		if c.pattern, err = version.Compile(v); err != nil {
			return nil, err
		}
	}
	c.urls = &core.BaseURLs{
		UpstreamFn: func() string { return c.url },
		PURLFn: func(v string) string {
			_, name := core.SplitSlug(c.url)
			name = strings.TrimSuffix(name, ".git")
			return core.PURL("generic", "", name, v, map[string]string{"vcs_url": "git+" + c.url})
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
	refs, err := c.fetchRefs(ctx, cl)
	if err != nil {
		return "", err
	}
	if c.branch != "" {
		return c.branchRevision(refs)
	}
	return c.latestTag(ctx, refs)
}

func (c *Checker) fetchRefs(ctx context.Context, cl *core.Client) ([]pktline.Ref, error) {
	endpoint := c.url + "/info/refs?service=git-upload-pack"
	log.FromContext(ctx).Debug("fetching refs", "url", endpoint)

	body, err := cl.Do(ctx, client.Request{
		URL: endpoint,
		Header: map[string]string{
			"User-Agent":   UserAgent,
			"git-protocol": "version=2",
		},
	})
	if err != nil {
		return nil, err
	}

	refs, err := pktline.Refs(body)
	if err != nil {
		return nil, &client.ProtocolError{Kind: client.MalformedPktLine, URL: endpoint, Err: err}
	}
	return refs, nil
}

func (c *Checker) branchRevision(refs []pktline.Ref) (string, error) {
	for _, ref := range refs {
		if ref.Kind == pktline.BranchRef && ref.Name == c.branch {
			return ref.Revision, nil
		}
	}
	return "", &core.EmptyResultError{Type: checkerType, Source: c.url, What: "branch " + c.branch}
}

func (c *Checker) latestTag(ctx context.Context, refs []pktline.Ref) (string, error) {
	var tags []string
	for _, ref := range refs {
		if ref.Kind == pktline.TagRef {
			tags = append(tags, ref.Name)
		}
	}
	if c.pattern != nil {
		tags = version.ExtractWith(c.pattern, tags)
	}
	log.FromContext(ctx).Debug("git tags", "url", c.url, "tags", tags)

	best, ok := version.Max(tags)
	if !ok {
		return "", &core.EmptyResultError{Type: checkerType, Source: c.url, What: "tags"}
	}
	return best, nil
}
