package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/bianoble/provision/pkg/provision"
)

// Build-time variables set via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Global flags.
var (
	configPath string
	verbose    bool
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:   "provision [flags] <package> [package...]",
	Short: "Install Miniconda and packages, reusing a cached installation",
	Long: `provision installs Miniconda into $HOME/miniconda together with the given
conda packages, then packs the installation into $HOME/miniconda.tarball.

The Miniconda version, channel and package list are recorded in info.txt. When
a later run produces an identical record and the tarball is present, the
installation is extracted from the tarball instead of being rebuilt. Any other
run installs from scratch and replaces the cache.

Point your CI system's cache at $HOME/miniconda.tarball.

The first argument is matched against subcommand names (status, prune, info,
init, version, help, completion) before it is treated as a package. To install
a package with one of those names, list another package before it.`,
	Example: `  provision lsst-sims
  MINICONDA_VERSION=3.18.3 provision --channel http://conda.lsst.codes/stack lsst-apps`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			_ = cmd.Usage()
			return &usageError{err: errors.New("at least one package is required")}
		}
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		client, err := newClient(cfg)
		if err != nil {
			return err
		}

		result, err := client.Provision(cmd.Context(), args)
		if err != nil {
			return err
		}
		printResult(result)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		info("provision %s", version)
		info("  commit:  %s", commit)
		info("  built:   %s", date)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default: ./provision.yaml or user config dir)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "detailed output")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "minimal output (warnings and errors only)")
	rootCmd.PersistentFlags().String("miniconda-version", "", "Miniconda version to install (env MINICONDA_VERSION, default "+provision.DefaultMinicondaVersion+")")
	rootCmd.PersistentFlags().String("channel", "", "conda channel to add (env CHANNEL, default "+provision.DefaultChannel+")")
	rootCmd.PersistentFlags().String("home", "", "directory holding the installation and cache (env PROVISION_HOME, default $HOME)")
	rootCmd.PersistentFlags().Bool("verify-cache", false, "re-hash the cached tarball before using it (env PROVISION_VERIFY_CACHE)")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		_ = cmd.Usage()
		return &usageError{err: err}
	})

	rootCmd.AddCommand(versionCmd)
}

func printResult(r *provision.Result) {
	switch {
	case r.Restored:
		info("Restored Miniconda %s from cache (%d entries) in %s.", r.Record.Version, r.Entries, r.Elapsed.Round(time.Millisecond))
	case r.Manifest != nil:
		if r.Fallback {
			info("Cached installation was unusable (%s); rebuilt it.", r.Lookup.Reason)
		}
		info("Installed Miniconda %s with %d package(s) in %s.", r.Record.Version, len(r.Record.Packages), r.Elapsed.Round(time.Millisecond))
		info("Cached %s (%d entries).", humanize.Bytes(uint64(r.Manifest.Tarball.Size)), r.Manifest.Tarball.Entries)
	}
	detail("record digest: %s", r.Record.Digest())
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		errorf("%s", err)
		return err
	}
	return nil
}

// ExitCode maps an error returned by Execute to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ue *usageError
	if errors.As(err, &ue) {
		return 2
	}
	var ee *provision.ExitError
	if errors.As(err, &ee) && ee.Code > 0 {
		return ee.Code
	}
	return 1
}

// usageError reports a malformed invocation.
type usageError struct {
	err error
}

func (e *usageError) Error() string {
	return fmt.Sprintf("usage: %v", e.err)
}

func (e *usageError) Unwrap() error {
	return e.err
}
