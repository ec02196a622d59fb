package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/rs/dnscache"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	_ "github.com/AOSC-Dev/aosc-findupdate/all"
	"github.com/AOSC-Dev/aosc-findupdate/client"
	"github.com/AOSC-Dev/aosc-findupdate/internal/core"
	"github.com/AOSC-Dev/aosc-findupdate/internal/normalize"
)

const dnsRefreshInterval = 5 * time.Minute

type checkOptions struct {
	Include     string
	VersionOnly bool
	LogFile     string
	Comply      bool
	Workers     int
	Timeout     time.Duration
	TripAfter   int
	GitHubToken string
}

func newCheckCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <packages.toml>",
		Short: "Check packages for upstream updates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), cmd.OutOrStdout(), args[0], checkOptionsFrom(v))
		},
	}

	flags := cmd.Flags()
	flags.StringP("include", "i", "", "only check packages whose name matches this regular expression")
	flags.BoolP("version-only", "x", false, "print the resolved version of every package, even if it is up to date")
	flags.StringP("log", "l", "", "append updated packages to this file")
	flags.BoolP("comply", "c", false, "rewrite versions to comply with the AOSC package styling manual")
	flags.Int("workers", 0, "number of parallel workers (default: number of CPUs)")
	flags.Duration("timeout", 30*time.Second, "per-request timeout")
	flags.Int("trip-after", 0, "stop contacting a host after this many failures (0 disables)")
	_ = v.BindPFlags(flags)
	return cmd
}

func checkOptionsFrom(v *viper.Viper) checkOptions {
	return checkOptions{
		Include:     v.GetString("include"),
		VersionOnly: v.GetBool("version-only"),
		LogFile:     v.GetString("log"),
		Comply:      v.GetBool("comply"),
		Workers:     v.GetInt("workers"),
		Timeout:     v.GetDuration("timeout"),
		TripAfter:   v.GetInt("trip-after"),
		GitHubToken: v.GetString("github_token"),
	}
}

// update is a package whose upstream version differs from the recorded one.
type update struct {
	Name     string
	Before   string
	After    string
	Warnings []string
	URLs     map[string]string
}

func runCheck(ctx context.Context, out io.Writer, path string, opts checkOptions) error {
	logger := log.FromContext(ctx)

	var include *regexp.Regexp
	if opts.Include != "" {
		re, err := regexp.Compile(opts.Include)
		if err != nil {
			return fmt.Errorf("invalid --include pattern: %w", err)
		}
		include = re
	}

	pkgs, err := loadPackages(path, include)
	if err != nil {
		return err
	}
	logger.Infof("Checking updates for %d packages ...", len(pkgs))

	resolver := &dnscache.Resolver{}
	refreshCtx, stop := context.WithCancel(ctx)
	defer stop()
	go refreshDNS(refreshCtx, resolver, dnsRefreshInterval)

	var breakers *client.Breakers
	if opts.TripAfter > 0 {
		breakers = client.NewBreakers(opts.TripAfter)
	}

	start := time.Now()
	results := core.CheckAll(ctx, pkgs, core.BatchOptions{
		Workers:     opts.Workers,
		Credentials: core.Credentials{GitHubToken: opts.GitHubToken},
		NewClient: func() *client.Client {
			clientOpts := []client.Option{
				client.WithDNSCache(resolver),
				client.WithTimeout(opts.Timeout),
			}
			if breakers != nil {
				clientOpts = append(clientOpts, client.WithBreakers(breakers))
			}
			return client.NewClient(clientOpts...).WithUserAgent("findupdate/" + buildVersion)
		},
		Progress: func(n, total int, pkg core.Package) {
			logger.Infof("[%d/%d] Checking %s ...", n, total, pkg.Name)
		},
	})
	logger.Infof("Checked %d packages (%s)", len(results), time.Since(start).Round(time.Millisecond))

	if breakers != nil {
		reportBreakers(logger, breakers)
	}

	updates, failures := summarize(results, opts.Comply)
	if opts.LogFile != "" {
		if err := appendLog(opts.LogFile, updates); err != nil {
			return err
		}
	}

	if opts.VersionOnly {
		printVersions(out, results, opts.Comply)
		return nil
	}
	printReport(out, updates, failures)
	return nil
}

func refreshDNS(ctx context.Context, resolver *dnscache.Resolver, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			resolver.Refresh(true)
		}
	}
}

func reportBreakers(logger *log.Logger, breakers *client.Breakers) {
	states := breakers.State()
	hosts := make([]string, 0, len(states))
	for host, state := range states {
		if state == "open" {
			hosts = append(hosts, host)
		}
	}
	sort.Strings(hosts)
	for _, host := range hosts {
		logger.Warn("circuit breaker open", "host", host)
	}
}

// latestVersion strips the leading "v" from a resolved version and
// optionally applies AOSC styling.
func latestVersion(latest string, comply bool) string {
	latest = strings.TrimPrefix(latest, "v")
	if comply {
		latest = normalize.Comply(latest)
	}
	return latest
}

func summarize(results []core.Result, comply bool) (updates []update, failures []error) {
	for _, res := range results {
		if res.Err != nil {
			failures = append(failures, res.Err)
			continue
		}
		current := strings.TrimSpace(res.Package.Version)
		latest := latestVersion(res.Latest, comply)
		if current == latest {
			continue
		}
		updates = append(updates, update{
			Name:     res.Package.Name,
			Before:   current,
			After:    latest,
			Warnings: warnings(current, latest),
			URLs:     res.URLs,
		})
	}
	return updates, failures
}

func appendLog(path string, updates []update) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer func() { _ = f.Close() }()

	for _, u := range updates {
		if _, err := fmt.Fprintf(f, "%s: %s -> %s\n", u.Name, u.Before, u.After); err != nil {
			return fmt.Errorf("writing log file: %w", err)
		}
	}
	return nil
}
