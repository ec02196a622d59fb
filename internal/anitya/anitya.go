// Package anitya checks projects tracked by an Anitya (release-monitoring.org)
// instance.
package anitya

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/AOSC-Dev/aosc-findupdate/internal/core"
)

const (
	DefaultURL  = "https://release-monitoring.org"
	checkerType = "anitya"
)

func init() {
	core.Register(checkerType, func(cfg core.Config, _ core.Credentials) (core.Checker, error) {
		return New(cfg)
	})
}

type Checker struct {
	instance   string
	id         uint64
	stableOnly bool
	urls       *URLs
}

// New builds a checker from the "id", "stable_only" and "instance" keys.
func New(cfg core.Config) (*Checker, error) {
	raw, err := cfg.Require("id", "Anitya project ID")
	if err != nil {
		return nil, err
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, &core.ConfigError{Kind: core.InvalidField, Field: "id", Description: raw, Err: err}
	}

	instance := DefaultURL
	if v, ok := cfg.Get("instance"); ok && v != "" {
		instance = strings.TrimSuffix(v, "/")
	}

	c := &Checker{
		instance:   instance,
		id:         id,
		stableOnly: cfg.Bool("stable_only", true),
	}
	c.urls = &URLs{instance: instance, id: id}
	return c, nil
}

func (c *Checker) Type() string {
	return checkerType
}

func (c *Checker) URLs() core.URLBuilder {
	return c.urls
}

type projectResponse struct {
	ID             uint64   `json:"id"`
	StableVersions []string `json:"stable_versions"`
	Versions       []string `json:"versions"`
}

func (c *Checker) Check(ctx context.Context, client *core.Client) (string, error) {
	url := fmt.Sprintf("%s/api/project/%d/", c.instance, c.id)
	log.FromContext(ctx).Debug("querying anitya", "url", url)

	var resp projectResponse
	if err := client.GetJSON(ctx, url, &resp, nil); err != nil {
		return "", err
	}

	if resp.ID != c.id {
		return "", &core.MismatchError{
			Type:      checkerType,
			Requested: strconv.FormatUint(c.id, 10),
			Received:  strconv.FormatUint(resp.ID, 10),
		}
	}

	versions, what := resp.StableVersions, "stable versions"
	if !c.stableOnly {
		versions, what = resp.Versions, "versions"
	}
	if len(versions) == 0 {
		return "", &core.EmptyResultError{Type: checkerType, Source: strconv.FormatUint(c.id, 10), What: what}
	}
	return versions[0], nil
}

type URLs struct {
	instance string
	id       uint64
}

func (u *URLs) Upstream() string {
	return fmt.Sprintf("%s/project/%d/", u.instance, u.id)
}

// PURL is empty: Anitya projects have no package URL type.
func (u *URLs) PURL(version string) string {
	return ""
}
