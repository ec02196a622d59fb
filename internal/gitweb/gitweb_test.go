package gitweb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/AOSC-Dev/aosc-findupdate/client"
	"github.com/AOSC-Dev/aosc-findupdate/internal/core"
)

const tagsPage = `<!DOCTYPE html>
<html><body>
<table class="tags">
<tr class="dark"><td><i>3 months ago</i></td><td><a class="list name" href="/0ad.git/tag/a23">A23</a></td></tr>
<tr class="light"><td><i>1 year ago</i></td><td><a class="list name" href="/0ad.git/tag/0.0.25b">0.0.25b</a></td></tr>
<tr class="dark"><td><i>2 years ago</i></td><td><a class="list name" href="/0ad.git/tag/0.0.26">
  0.0.26
</a></td></tr>
<tr class="light"><td><i>3 years ago</i></td><td><a class="list name" href="/0ad.git/tag/0.0.24">0.0.24</a></td></tr>
</table>
</body></html>`

func pageServer(t *testing.T, page string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/0ad.git/tags" {
			t.Errorf("unexpected path: %s", r.URL.Path)
			w.WriteHeader(404)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(page))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestCheck(t *testing.T) {
	server := pageServer(t, tagsPage)

	tests := []struct {
		name    string
		pattern string
		want    string
	}{
		{"highest of all", "", "A23"},
		{"plain pattern", `^[0-9.]+$`, "0.0.26"},
		{"single candidate", `^[0-9.]+b$`, "0.0.25b"},
		{"capture group", `^0\.0\.([0-9]+)$`, "26"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := core.Config{"url": server.URL + "/0ad.git"}
			if tt.pattern != "" {
				cfg["pattern"] = tt.pattern
			}
			c, err := New(cfg)
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

func TestCheck_NoTags(t *testing.T) {
	server := pageServer(t, `<html><body><p>no tags</p></body></html>`)

	c, _ := New(core.Config{"url": server.URL + "/0ad.git"})
	_, err := c.Check(context.Background(), core.DefaultClient())
	var empty *core.EmptyResultError
	if !errors.As(err, &empty) {
		t.Errorf("Check() error = %v, want *core.EmptyResultError", err)
	}
}

func TestCheck_SkipsEmptyNames(t *testing.T) {
	tests := []struct {
		name    string
		page    string
		pattern string
		want    string
	}{
		{"empty element", `<a class="name"> </a><a class="name">1.2</a>`, "", "1.2"},
		{"empty capture", `<a class="name">v</a><a class="name">v1.2</a>`, `^v(.*)$`, "1.2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := pageServer(t, tt.page)

			cfg := core.Config{"url": server.URL + "/0ad.git"}
			if tt.pattern != "" {
				cfg["pattern"] = tt.pattern
			}
			c, _ := New(cfg)
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

func TestCheck_OnlyEmptyNames(t *testing.T) {
	server := pageServer(t, `<a class="name"></a><a class="name">  </a>`)

	c, _ := New(core.Config{"url": server.URL + "/0ad.git"})
	got, err := c.Check(context.Background(), core.DefaultClient())
	var empty *core.EmptyResultError
	if !errors.As(err, &empty) {
		t.Errorf("Check() = %q, %v, want *core.EmptyResultError", got, err)
	}
}

func TestCheck_BodyTooLarge(t *testing.T) {
	server := pageServer(t, strings.Repeat("x", client.MaxPageSize+1))

	c, _ := New(core.Config{"url": server.URL + "/0ad.git"})
	_, err := c.Check(context.Background(), core.DefaultClient())
	var tooLarge *client.BodyTooLargeError
	if !errors.As(err, &tooLarge) {
		t.Errorf("Check() error = %v, want *client.BodyTooLargeError", err)
	}
}

func TestNew_Errors(t *testing.T) {
	_, err := New(core.Config{})
	var cfgErr *core.ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Kind != core.MissingField {
		t.Errorf("New() error = %v, want MissingField", err)
	}
}

func TestURLs(t *testing.T) {
	c, _ := New(core.Config{"url": "https://repo.or.cz/0ad.git/"})
	if got := c.URLs().Upstream(); got != "https://repo.or.cz/0ad.git" {
		t.Errorf("Upstream() = %q", got)
	}
	if got := repoName("https://repo.or.cz/0ad.git"); got != "0ad" {
		t.Errorf("repoName() = %q, want %q", got, "0ad")
	}
}
