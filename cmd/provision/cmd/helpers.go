package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/bianoble/provision/internal/config"
	"github.com/bianoble/provision/pkg/provision"
)

// Output streams, replaced in tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// loadConfig resolves settings from flags, environment and the config file.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{
		ConfigFile: configPath,
		Flags:      cmd.Flags(),
	})
	if err != nil {
		return nil, err
	}
	if cfg.File != "" {
		detail("config: %s", cfg.File)
	}
	return cfg, nil
}

// newLogger creates the stderr logger honouring --verbose and --quiet.
func newLogger() *log.Logger {
	level := log.InfoLevel
	switch {
	case quiet:
		level = log.WarnLevel
	case verbose:
		level = log.DebugLevel
	}
	return log.NewWithOptions(stderr, log.Options{
		Prefix: "provision",
		Level:  level,
	})
}

// newClient wires a library client that runs real subprocesses.
func newClient(cfg *config.Config) (*provision.Client, error) {
	return provision.New(provision.Options{
		Config: cfg,
		Logger: newLogger(),
		Stdout: stdout,
		Stderr: stderr,
	})
}

// info prints a line unless quiet mode is active.
func info(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(stdout, format+"\n", args...)
	}
}

// detail prints a line only in verbose mode.
func detail(format string, args ...any) {
	if verbose {
		fmt.Fprintf(stdout, "  "+format+"\n", args...)
	}
}

// errorf prints an error message to stderr.
func errorf(format string, args ...any) {
	fmt.Fprintf(stderr, "error: "+format+"\n", args...)
}
