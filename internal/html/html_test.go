package html

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AOSC-Dev/aosc-findupdate/client"
	"github.com/AOSC-Dev/aosc-findupdate/internal/core"
)

const listing = `<html><body><pre>
<a href="zh_CN_l10n_20210506.pdf">zh_CN_l10n_20210506.pdf</a>
<a href="zh_CN_l10n_20230101.pdf">zh_CN_l10n_20230101.pdf</a>
<a href="zh_CN_l10n_20220715.pdf">zh_CN_l10n_20220715.pdf</a>
<a href="README">README</a>
</pre></body></html>`

func pageServer(t *testing.T, status int, page string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(page))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestCheck(t *testing.T) {
	server := pageServer(t, http.StatusOK, listing)

	tests := []struct {
		name    string
		pattern string
		want    string
	}{
		{"highest match", `href="zh_CN_l10n_(.+?)\.pdf"`, "20230101"},
		{"single match", `href="zh_CN_l10n_(2021.+?)\.pdf"`, "20210506"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(core.Config{"url": server.URL + "/misc/l10n/", "pattern": tt.pattern})
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			got, err := c.Check(context.Background(), core.DefaultClient())
			if err != nil {
				t.Fatalf("Check() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Check() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCheck_NoMatch(t *testing.T) {
	server := pageServer(t, http.StatusOK, listing)

	c, _ := New(core.Config{"url": server.URL, "pattern": `en_US_(.+)\.pdf`})
	_, err := c.Check(context.Background(), core.DefaultClient())
	var empty *core.EmptyResultError
	if !errors.As(err, &empty) {
		t.Errorf("Check() error = %v, want *core.EmptyResultError", err)
	}
}

func TestCheck_EmptyCaptures(t *testing.T) {
	tests := []struct {
		name    string
		page    string
		wantErr bool
		want    string
	}{
		{"only empty", `<a href="pkg-.tar.gz">`, true, ""},
		{"empty skipped", `<a href="pkg-.tar.gz"><a href="pkg-1.4.tar.gz">`, false, "1.4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := pageServer(t, http.StatusOK, tt.page)

			c, _ := New(core.Config{"url": server.URL, "pattern": `pkg-([0-9.]*)\.tar\.gz`})
			got, err := c.Check(context.Background(), core.DefaultClient())
			if tt.wantErr {
				var empty *core.EmptyResultError
				if !errors.As(err, &empty) {
					t.Errorf("Check() = %q, %v, want *core.EmptyResultError", got, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Check() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Check() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCheck_GroupDidNotParticipate(t *testing.T) {
	server := pageServer(t, http.StatusOK, listing)

	c, _ := New(core.Config{"url": server.URL, "pattern": `README|zh_CN_l10n_([0-9]+)\.pdf`})
	_, err := c.Check(context.Background(), core.DefaultClient())
	var cfgErr *core.ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Kind != core.InvalidPattern {
		t.Errorf("Check() error = %v, want InvalidPattern", err)
	}
}

func TestCheck_HTTPError(t *testing.T) {
	server := pageServer(t, http.StatusForbidden, "denied")

	c, _ := New(core.Config{"url": server.URL, "pattern": `v(.+)`})
	_, err := c.Check(context.Background(), core.DefaultClient())
	var httpErr *client.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusForbidden {
		t.Errorf("Check() error = %v, want HTTP 403", err)
	}
	if !client.IsFetchError(err) {
		t.Errorf("IsFetchError(%v) = false", err)
	}
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name  string
		cfg   core.Config
		kind  core.ConfigKind
		field string
	}{
		{"missing url", core.Config{"pattern": "(.+)"}, core.MissingField, "url"},
		{"missing pattern", core.Config{"url": "https://example.org"}, core.MissingField, "pattern"},
		{"no capture group", core.Config{"url": "https://example.org", "pattern": `v[0-9.]+`}, core.InvalidPattern, "pattern"},
		{"bad pattern", core.Config{"url": "https://example.org", "pattern": `v(`}, core.InvalidPattern, "pattern"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			var cfgErr *core.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("New() error = %v, want *core.ConfigError", err)
			}
			if cfgErr.Kind != tt.kind || cfgErr.Field != tt.field {
				t.Errorf("error = %+v, want %v for %q", cfgErr, tt.kind, tt.field)
			}
		})
	}
}
