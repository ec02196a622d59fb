// Package cli implements the findupdate command-line interface.
//
// The check command reads a TOML package list, resolves the latest upstream
// version of every package in parallel and prints a report of the packages
// whose recorded version differs. Package descriptors are never modified.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger
// is attached to the command context with log.WithContext, so checkers pick
// it up through log.FromContext.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/AOSC-Dev/aosc-findupdate/internal/core"
)

const envPrefix = "FINDUPDATE"

var buildVersion = "dev"

// SetVersion sets the version displayed by --version.
func SetVersion(v string) {
	buildVersion = v
}

// newLogger creates a logger writing to w with "HH:MM:SS.ms" timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// Execute runs the findupdate CLI.
func Execute(ctx context.Context) error {
	return newRootCommand(viper.New(), os.Stdout, os.Stderr).ExecuteContext(ctx)
}

func newRootCommand(v *viper.Viper, stdout, stderr io.Writer) *cobra.Command {
	var (
		configFile string
		verbose    bool
	)

	root := &cobra.Command{
		Use:           "findupdate",
		Short:         "Find newer upstream versions of packages",
		Version:       buildVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := initConfig(v, configFile); err != nil {
				return err
			}
			level := log.InfoLevel
			if verbose || v.GetBool("verbose") {
				level = log.DebugLevel
			}
			cmd.SetContext(log.WithContext(cmd.Context(), newLogger(stderr, level)))
			return nil
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVar(&configFile, "config", "", "config file path (toml or yaml)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newCheckCommand(v))
	root.AddCommand(newTypesCommand())
	return root
}

func initConfig(v *viper.Viper, configFile string) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("github_token", "GITHUB_TOKEN"); err != nil {
		return err
	}

	if configFile == "" {
		return nil
	}
	v.SetConfigFile(configFile)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	return nil
}

func newTypesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the supported upstream types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, typ := range core.SupportedTypes() {
				fmt.Fprintln(cmd.OutOrStdout(), typ)
			}
			return nil
		},
	}
}
