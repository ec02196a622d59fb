package git

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AOSC-Dev/aosc-findupdate/client"
	"github.com/AOSC-Dev/aosc-findupdate/internal/core"
)

const advertisement = "001e# service=git-upload-pack\n" +
	"0000015568e3802b238b964900acac9422a70e295482243f HEAD\x00multi_ack symref=HEAD:refs/heads/master agent=git/2.39.2\n" +
	"003f68e3802b238b964900acac9422a70e295482243f refs/heads/master\n" +
	"003fdb358a2993be0e0aa3864ed3290105dd4a544c35 refs/heads/avx512\n" +
	"003d2222222222222222222222222222222222222222 refs/tags/v5.1\n" +
	"00403333333333333333333333333333333333333333 refs/tags/v5.1^{}\n" +
	"003f4444444444444444444444444444444444444444 refs/tags/bash-5.2\n" +
	"00405555555555555555555555555555555555555555 refs/tags/bash-5.10\n" +
	"003f6666666666666666666666666666666666666666 refs/tags/bash-4.4\n" +
	"0000"

func refsServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bash.git/info/refs" || r.URL.Query().Get("service") != "git-upload-pack" {
			t.Errorf("unexpected request: %s", r.URL)
			w.WriteHeader(404)
			return
		}
		if got := r.Header.Get("User-Agent"); got != "git/2.31.1" {
			t.Errorf("User-Agent = %q, want %q", got, "git/2.31.1")
		}
		if got := r.Header.Get("Git-Protocol"); got != "version=2" {
			t.Errorf("git-protocol = %q, want %q", got, "version=2")
		}
		w.Header().Set("Content-Type", "application/x-git-upload-pack-advertisement")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestCheck(t *testing.T) {
	server := refsServer(t, advertisement)

	tests := []struct {
		name string
		cfg  core.Config
		want string
	}{
		{"branch", core.Config{"branch": "master"}, "68e3802b238b964900acac9422a70e295482243f"},
		{"branch ignores pattern", core.Config{"branch": "avx512", "pattern": `^bash-(.+)$`}, "db358a2993be0e0aa3864ed3290105dd4a544c35"},
		{"all tags", core.Config{}, "bash-5.10"},
		{"plain pattern", core.Config{"pattern": `^bash-`}, "bash-5.10"},
		{"plain pattern below", core.Config{"pattern": `^bash-[0-4]`}, "bash-4.4"},
		{"capture group", core.Config{"pattern": `^bash-([0-9.]+)$`}, "5.10"},
		{"peeled tags skipped", core.Config{"pattern": `^v(.+)$`}, "5.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := core.Config{"url": server.URL + "/bash.git"}
			for k, v := range tt.cfg {
				cfg[k] = v
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

func TestCheck_BranchNotFound(t *testing.T) {
	server := refsServer(t, advertisement)

	c, _ := New(core.Config{"url": server.URL + "/bash.git", "branch": "main"})
	_, err := c.Check(context.Background(), core.DefaultClient())
	var empty *core.EmptyResultError
	if !errors.As(err, &empty) {
		t.Fatalf("Check() error = %v, want *core.EmptyResultError", err)
	}
	if empty.What != "branch main" {
		t.Errorf("What = %q, want %q", empty.What, "branch main")
	}
}

func TestCheck_TagOrdering(t *testing.T) {
	tests := []struct {
		name string
		tags []string
		want string
	}{
		{"numeric components", []string{"v1.9", "v1.10", "v1.2"}, "v1.10"},
		{"pre-release of next version", []string{"v1.9", "v1.10", "v2.0-rc1"}, "v2.0-rc1"},
		{"release above its pre-release", []string{"v2.0-rc1", "v2.0", "v2.0-rc2"}, "v2.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := "001e# service=git-upload-pack\n0000"
			for i, tag := range tt.tags {
				body += fmt.Sprintf("003f%040x refs/tags/%s\n", i+1, tag)
			}
			body += "0000"
			server := refsServer(t, body)

			c, _ := New(core.Config{"url": server.URL + "/bash.git"})
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

func TestCheck_BranchWithCapabilities(t *testing.T) {
	body := "001e# service=git-upload-pack\n" +
		"0000009968e3802b238b964900acac9422a70e295482243f refs/heads/main\x00multi_ack side-band-64k agent=git/2.43.0\n" +
		"003f2222222222222222222222222222222222222222 refs/tags/v1.0\n" +
		"0000"
	server := refsServer(t, body)

	c, _ := New(core.Config{"url": server.URL + "/bash.git", "branch": "main"})
	got, err := c.Check(context.Background(), core.DefaultClient())
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if want := "68e3802b238b964900acac9422a70e295482243f"; got != want {
		t.Errorf("Check() = %q, want %q", got, want)
	}
}

func TestCheck_NoTags(t *testing.T) {
	server := refsServer(t, "001e# service=git-upload-pack\n003f68e3802b238b964900acac9422a70e295482243f refs/heads/master\n0000")

	c, _ := New(core.Config{"url": server.URL + "/bash.git"})
	_, err := c.Check(context.Background(), core.DefaultClient())
	var empty *core.EmptyResultError
	if !errors.As(err, &empty) {
		t.Errorf("Check() error = %v, want *core.EmptyResultError", err)
	}
}

func TestCheck_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty", ""},
		{"html", "<html>not a git server</html>"},
		{"garbage after refs", "003d2222222222222222222222222222222222222222 refs/tags/v5.1\n<html>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := refsServer(t, tt.body)

			c, _ := New(core.Config{"url": server.URL + "/bash.git"})
			_, err := c.Check(context.Background(), core.DefaultClient())
			var protoErr *client.ProtocolError
			if !errors.As(err, &protoErr) || protoErr.Kind != client.MalformedPktLine {
				t.Errorf("Check() error = %v, want MalformedPktLine", err)
			}
		})
	}
}

func TestURLs(t *testing.T) {
	c, _ := New(core.Config{"url": "https://git.savannah.gnu.org/git/bash.git"})
	if got := c.URLs().Upstream(); got != "https://git.savannah.gnu.org/git/bash.git" {
		t.Errorf("Upstream() = %q", got)
	}
	if c.Type() != "git" {
		t.Errorf("Type() = %q", c.Type())
	}
}
