// Package github checks repositories hosted on GitHub.
//
// Tags are listed with one GraphQL query, newest tag commit first. When a
// branch is configured the head commit of that branch is returned instead.
// Both paths need an API token.
package github

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/AOSC-Dev/aosc-findupdate/client"
	"github.com/AOSC-Dev/aosc-findupdate/internal/core"
	"github.com/AOSC-Dev/aosc-findupdate/internal/version"
)

const (
	DefaultURL  = "https://api.github.com"
	checkerType = "github"
)

const tagsQuery = `query($owner: String!, $name: String!) {
  repository(owner: $owner, name: $name) {
    refs(refPrefix: "refs/tags/", first: 100, orderBy: {field: TAG_COMMIT_DATE, direction: DESC}) {
      nodes { name }
    }
  }
}`

func init() {
	core.Register(checkerType, func(cfg core.Config, creds core.Credentials) (core.Checker, error) {
		return New(cfg, creds.GitHubToken)
	})
}

type Checker struct {
	api         string
	repo        string
	owner, name string
	pattern     *regexp.Regexp
	sortVersion bool
	branch      string
	token       string
	urls        *URLs
}

// New builds a checker from the "repo", "pattern", "sort_version",
// "branch" and "api" keys.
func New(cfg core.Config, token string) (*Checker, error) {
	repo, err := cfg.Require("repo", "GitHub repository slug")
	if err != nil {
		return nil, err
	}
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return nil, &core.ConfigError{Kind: core.InvalidField, Field: "repo", Description: "expected owner/name, got " + repo}
	}
	if token == "" {
		return nil, &core.ConfigError{Kind: core.MissingCredential, Field: "token", Description: "GITHUB_TOKEN"}
	}

	c := &Checker{
		api:         DefaultURL,
		repo:        repo,
		owner:       owner,
		name:        name,
		sortVersion: cfg.Bool("sort_version", false),
		token:       token,
	}
	if v, ok := cfg.Get("api"); ok && v != "" {
		c.api = strings.TrimSuffix(v, "/")
	}
	if v, ok := cfg.Get("branch"); ok {
		c.branch = v
	}
	if v, ok := cfg.Get("pattern"); ok {
		if c.pattern, err = version.Compile(v); err != nil {
			return nil, err
		}
	}
	c.urls = &URLs{owner: owner, name: name}
	return c, nil
}

func (c *Checker) Type() string {
	return checkerType
}

func (c *Checker) URLs() core.URLBuilder {
	return c.urls
}

func (c *Checker) Check(ctx context.Context, cl *core.Client) (string, error) {
	if c.branch != "" {
		return c.checkBranch(ctx, cl)
	}
	return c.checkTags(ctx, cl)
}

func (c *Checker) header() map[string]string {
	return map[string]string{"Authorization": "Bearer " + c.token}
}

type graphQLRequest struct {
	Query     string            `json:"query"`
	Variables map[string]string `json:"variables"`
}

type graphQLResponse struct {
	Data struct {
		Repository *struct {
			Refs struct {
				Nodes []struct {
					Name string `json:"name"`
				} `json:"nodes"`
			} `json:"refs"`
		} `json:"repository"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (c *Checker) checkTags(ctx context.Context, cl *core.Client) (string, error) {
	endpoint := c.api + "/graphql"
	logger := log.FromContext(ctx)
	logger.Debug("querying github tags", "url", endpoint, "repo", c.repo)

	req := graphQLRequest{
		Query:     tagsQuery,
		Variables: map[string]string{"owner": c.owner, "name": c.name},
	}
	var resp graphQLResponse
	if err := cl.PostJSON(ctx, endpoint, req, &resp, c.header()); err != nil {
		return "", err
	}
	if len(resp.Errors) > 0 {
		msgs := make([]string, len(resp.Errors))
		for i, e := range resp.Errors {
			msgs[i] = e.Message
		}
		return "", &client.ProtocolError{
			Kind: client.MalformedResponse,
			URL:  endpoint,
			Err:  fmt.Errorf("graphql: %s", strings.Join(msgs, "; ")),
		}
	}
	if resp.Data.Repository == nil {
		return "", &core.EmptyResultError{Type: checkerType, Source: c.repo, What: "repository"}
	}

	var tags []string
	for _, n := range resp.Data.Repository.Refs.Nodes {
		tags = append(tags, n.Name)
	}
	if c.pattern != nil {
		tags = version.Filter(c.pattern, tags)
	}
	logger.Debug("github tags", "repo", c.repo, "tags", tags)
	if len(tags) == 0 {
		return "", &core.EmptyResultError{Type: checkerType, Source: c.repo, What: "tags"}
	}

	if c.sortVersion {
		version.SortDesc(tags)
	}
	return tags[0], nil
}

type commit struct {
	SHA string `json:"sha"`
}

func (c *Checker) checkBranch(ctx context.Context, cl *core.Client) (string, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/commits?sha=%s&per_page=1", c.api, c.repo, url.QueryEscape(c.branch))
	log.FromContext(ctx).Debug("querying github branch", "url", endpoint)

	var commits []commit
	if err := cl.GetJSON(ctx, endpoint, &commits, c.header()); err != nil {
		return "", err
	}
	if len(commits) == 0 || commits[0].SHA == "" {
		return "", &core.EmptyResultError{Type: checkerType, Source: c.repo, What: "commits on branch " + c.branch}
	}
	return commits[0].SHA, nil
}

type URLs struct {
	owner, name string
}

func (u *URLs) Upstream() string {
	return fmt.Sprintf("https://github.com/%s/%s", u.owner, u.name)
}

func (u *URLs) PURL(version string) string {
	return core.PURL(checkerType, u.owner, u.name, version, nil)
}
