// Package conda drives a Miniconda installation: the batch installer and the
// conda commands run against the resulting prefix.
package conda

import (
	"context"
	"os"
	"path/filepath"
)

// Conda runs conda commands against the installation at Prefix.
type Conda struct {
	Prefix string
	Runner Runner
}

// New returns a Conda for prefix using runner.
func New(prefix string, runner Runner) *Conda {
	return &Conda{Prefix: prefix, Runner: runner}
}

// Bin returns the prefix's bin directory.
func (c *Conda) Bin() string {
	return filepath.Join(c.Prefix, "bin")
}

// InstallBase runs a Miniconda installer script unattended into Prefix.
func (c *Conda) InstallBase(ctx context.Context, installer string) error {
	return c.Runner.Run(ctx, Command{
		Name: "bash",
		Args: []string{installer, "-b", "-p", c.Prefix},
	})
}

// Install installs packages into the root environment. quiet suppresses
// progress output.
func (c *Conda) Install(ctx context.Context, quiet bool, packages ...string) error {
	args := []string{"install"}
	if quiet {
		args = append(args, "-q")
	}
	args = append(args, "--yes")
	args = append(args, packages...)
	return c.run(ctx, args...)
}

// AddChannel registers url as an additional package source.
func (c *Conda) AddChannel(ctx context.Context, url string) error {
	return c.run(ctx, "config", "--add", "channels", url)
}

// Clean removes index caches, lock files and downloaded package tarballs.
func (c *Conda) Clean(ctx context.Context) error {
	return c.run(ctx, "clean", "--yes", "--index-cache", "--lock", "--tarballs")
}

func (c *Conda) run(ctx context.Context, args ...string) error {
	return c.Runner.Run(ctx, Command{
		Name: filepath.Join(c.Bin(), "conda"),
		Args: args,
		Env:  []string{"PATH=" + c.Bin() + string(os.PathListSeparator) + os.Getenv("PATH")},
	})
}
