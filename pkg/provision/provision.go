// Package provision provides the public Go library API for provision.
//
// provision installs Miniconda with a set of packages under a home directory
// and keeps a tarball of the installation. A later run with the same
// Miniconda version, channel and package list extracts the tarball instead of
// installing again.
//
// # Basic Usage
//
//	cfg := provision.DefaultConfig(os.Getenv("HOME"))
//	client, err := provision.New(provision.Options{Config: &cfg})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := client.Provision(ctx, []string{"lsst-sims"})
package provision

import (
	"context"
	"errors"
	"io"

	"github.com/charmbracelet/log"

	"github.com/bianoble/provision/internal/cache"
	"github.com/bianoble/provision/internal/conda"
	"github.com/bianoble/provision/internal/config"
	"github.com/bianoble/provision/internal/engine"
	"github.com/bianoble/provision/internal/installer"
)

// Provisioner brings the installation to the state described by packages.
type Provisioner interface {
	Provision(ctx context.Context, packages []string) (*Result, error)
}

// StatusReporter describes the cache without modifying it.
type StatusReporter interface {
	Status(packages []string) (*CacheStatus, error)
}

// PruneOptions configures a prune operation.
type PruneOptions struct {
	// All also removes the installation, record and installer.
	All bool
}

// Pruner removes cached state.
type Pruner interface {
	Prune(opts PruneOptions) (*PruneResult, error)
}

// Options configures a provision client.
type Options struct {
	// Config holds the settings. It is validated by New.
	Config *Config

	// Logger receives progress and command traces. Nil discards them.
	Logger *log.Logger

	// Runner executes the installer and conda. Nil runs them as child
	// processes writing to Stdout and Stderr.
	Runner Runner
	Stdout io.Writer
	Stderr io.Writer

	// HTTPClient downloads the installer. Nil uses a clean default client.
	HTTPClient HTTPClient
}

// Client is the main entry point for the provision library.
// It implements Provisioner, StatusReporter and Pruner.
type Client struct {
	cfg         *config.Config
	provisioner *engine.Provisioner
	status      *engine.StatusEngine
	prune       *engine.PruneEngine
}

var (
	_ Provisioner    = (*Client)(nil)
	_ StatusReporter = (*Client)(nil)
	_ Pruner         = (*Client)(nil)
)

// Defaults applied when a setting is not given.
const (
	DefaultMinicondaVersion = config.DefaultMinicondaVersion
	DefaultChannel          = config.DefaultChannel
)

// DefaultConfig returns the default settings with the installation under home.
func DefaultConfig(home string) Config {
	return config.Defaults(home)
}

// New creates a Client from opts.
func New(opts Options) (*Client, error) {
	if opts.Config == nil {
		return nil, errors.New("provision: Options.Config is required")
	}
	cfg := opts.Config
	if errs := config.Validate(cfg); len(errs) > 0 {
		return nil, &config.ValidationError{Errors: errs}
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	runner := opts.Runner
	if runner == nil {
		runner = &conda.ExecRunner{Stdout: opts.Stdout, Stderr: opts.Stderr, Logger: logger}
	}

	c := cache.New(cfg.Home)
	return &Client{
		cfg: cfg,
		provisioner: &engine.Provisioner{
			Config: cfg,
			Cache:  c,
			Fetcher: &installer.Fetcher{
				Client:  opts.HTTPClient,
				Timeout: cfg.FetchTimeout,
			},
			Runner: runner,
			Logger: logger,
		},
		status: &engine.StatusEngine{Config: cfg, Cache: c},
		prune:  &engine.PruneEngine{Cache: c},
	}, nil
}

// Config returns the settings the client was created with.
func (c *Client) Config() *Config {
	return c.cfg
}

// Provision installs or restores Miniconda with packages.
func (c *Client) Provision(ctx context.Context, packages []string) (*Result, error) {
	return c.provisioner.Provision(ctx, packages)
}

// InstallerURL returns the URL a fresh installation would download from.
func (c *Client) InstallerURL() (string, error) {
	return c.provisioner.InstallerURL()
}

// Status reports the state of the cache. With packages, it includes the
// lookup a provisioning run would make.
func (c *Client) Status(packages []string) (*CacheStatus, error) {
	return c.status.Status(packages)
}

// Prune removes the cache and, with opts.All, the installation.
func (c *Client) Prune(opts PruneOptions) (*PruneResult, error) {
	return c.prune.Prune(engine.PruneOptions{All: opts.All})
}
