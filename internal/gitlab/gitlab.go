// Package gitlab checks repository tags on a GitLab instance.
package gitlab

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/AOSC-Dev/aosc-findupdate/internal/core"
	"github.com/AOSC-Dev/aosc-findupdate/internal/version"
)

const (
	DefaultURL  = "https://gitlab.com"
	checkerType = "gitlab"
)

func init() {
	core.Register(checkerType, func(cfg core.Config, _ core.Credentials) (core.Checker, error) {
		return New(cfg)
	})
}

type Checker struct {
	instance    string
	repo        string
	pattern     *regexp.Regexp
	sortVersion bool
	urls        *URLs
}

// New builds a checker from the "repo", "instance", "pattern" and
// "sort_version" keys. repo is a project path or a numeric project id.
func New(cfg core.Config) (*Checker, error) {
	repo, err := cfg.Require("repo", "Repository slug or Project ID")
	if err != nil {
		return nil, err
	}

	c := &Checker{
		instance:    DefaultURL,
		repo:        repo,
		sortVersion: cfg.Bool("sort_version", false),
	}
	if v, ok := cfg.Get("instance"); ok && v != "" {
		c.instance = strings.TrimSuffix(v, "/")
	}
	if v, ok := cfg.Get("pattern"); ok {
		if c.pattern, err = version.Compile(v); err != nil {
			return nil, err
		}
	}
	c.urls = &URLs{instance: c.instance, repo: repo}
	return c, nil
}

func (c *Checker) Type() string {
	return checkerType
}

func (c *Checker) URLs() core.URLBuilder {
	return c.urls
}

type tag struct {
	Name string `json:"name"`
}

func (c *Checker) Check(ctx context.Context, client *core.Client) (string, error) {
	endpoint := fmt.Sprintf("%s/api/v4/projects/%s/repository/tags", c.instance, url.PathEscape(c.repo))
	logger := log.FromContext(ctx)
	logger.Debug("querying gitlab tags", "url", endpoint)

	var tags []tag
	if err := client.GetJSON(ctx, endpoint, &tags, nil); err != nil {
		return "", err
	}

	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}
	if c.pattern != nil {
		names = version.Filter(c.pattern, names)
	}
	logger.Debug("gitlab tags", "repo", c.repo, "tags", names)
	if len(names) == 0 {
		return "", &core.EmptyResultError{Type: checkerType, Source: c.instance, What: "tags"}
	}

	if c.sortVersion {
		version.SortDesc(names)
	}
	return names[0], nil
}

type URLs struct {
	instance string
	repo     string
}

func (u *URLs) Upstream() string {
	return fmt.Sprintf("%s/%s", u.instance, u.repo)
}

// PURL is empty for projects given by numeric id.
func (u *URLs) PURL(version string) string {
	ns, name := core.SplitSlug(u.repo)
	if ns == "" {
		return ""
	}
	var qualifiers map[string]string
	if u.instance != DefaultURL {
		qualifiers = map[string]string{"repository_url": u.instance}
	}
	return core.PURL(checkerType, ns, name, version, qualifiers)
}
