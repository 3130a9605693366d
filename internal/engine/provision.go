package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"runtime"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bianoble/provision/internal/cache"
	"github.com/bianoble/provision/internal/conda"
	"github.com/bianoble/provision/internal/config"
	"github.com/bianoble/provision/internal/fingerprint"
	"github.com/bianoble/provision/internal/installer"
	"github.com/bianoble/provision/internal/sandbox"
)

// Provisioner installs Miniconda with a package set, reusing the cached
// installation when its fingerprint record matches.
type Provisioner struct {
	Config  *config.Config
	Cache   *cache.Cache
	Fetcher *installer.Fetcher
	Runner  conda.Runner
	Logger  *log.Logger

	// GOOS and GOARCH select the installer platform. Empty means the
	// running platform.
	GOOS   string
	GOARCH string

	now func() time.Time
}

// Provision brings <home>/miniconda to the state described by packages.
// On a cache hit the tarball is extracted; otherwise a fresh installation is
// built and published as the new cache. The first failing step aborts the run
// and is reported as a StepError.
func (p *Provisioner) Provision(ctx context.Context, packages []string) (*Result, error) {
	start := p.clock()
	cfg := p.Config
	logger := p.logger()

	rec, err := fingerprint.New(cfg.MinicondaVersion, cfg.Channel, packages)
	if err != nil {
		return nil, err
	}
	result := &Result{Record: rec}

	layout := p.Cache.Layout()
	if err := os.MkdirAll(layout.Home, 0755); err != nil {
		return nil, StepError{Step: StepRecord, Err: err}
	}
	if err := sandbox.WriteFile(layout.Home, cache.RecordName, rec.Bytes(), 0644); err != nil {
		return nil, StepError{Step: StepRecord, Err: err}
	}

	lookup := p.Cache.Lookup(rec.Bytes(), cfg.VerifyCache)
	result.Lookup = lookup

	if lookup.Hit() {
		logger.Info("cache hit, restoring installation", "dir", layout.InstallDir())
		res, err := p.Cache.Restore(ctx)
		if err == nil {
			result.Restored = true
			result.Entries = res.Entries
			result.Manifest = lookup.Manifest
			result.Elapsed = p.clock().Sub(start)
			return result, nil
		}
		if ctx.Err() != nil {
			return result, StepError{Step: StepRestore, Err: err}
		}
		logger.Warn("cached installation unusable, rebuilding", "err", err)
		result.Fallback = true
		result.Lookup = cache.Lookup{
			Status: cache.StatusCorrupt,
			Reason: err.Error(),
			Cached: lookup.Cached,
		}
	} else {
		logger.Info("cache miss, installing", "status", lookup.Status, "reason", lookup.Reason)
	}

	if err := p.install(ctx, rec, result); err != nil {
		return result, err
	}
	result.Elapsed = p.clock().Sub(start)
	return result, nil
}

func (p *Provisioner) install(ctx context.Context, rec fingerprint.Record, result *Result) error {
	cfg := p.Config
	logger := p.logger()
	layout := p.Cache.Layout()

	if err := sandbox.RemoveAll(layout.Home, cache.InstallDirName); err != nil {
		return StepError{Step: StepRemoveInstall, Err: err}
	}

	url, err := p.InstallerURL()
	if err != nil {
		return StepError{Step: StepFetchInstaller, Err: err}
	}
	logger.Info("downloading installer", "url", url)
	dl, err := p.fetcher().Download(ctx, url, layout.InstallerPath(), cfg.InstallerSHA256)
	if err != nil {
		return StepError{Step: StepFetchInstaller, Err: err}
	}
	result.Installer = dl
	logger.Debug("installer downloaded", "path", dl.Path, "sha256", dl.SHA256, "size", dl.Size)

	c := conda.New(layout.InstallDir(), p.Runner)
	if err := c.InstallBase(ctx, dl.Path); err != nil {
		return StepError{Step: StepInstallBase, Err: err}
	}
	if err := os.Remove(dl.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("could not remove installer", "path", dl.Path, "err", err)
	}

	if len(cfg.CounterPackages) > 0 {
		if err := c.Install(ctx, false, cfg.CounterPackages...); err != nil {
			return StepError{Step: StepCounterPackages, Err: err}
		}
	}
	if err := c.AddChannel(ctx, cfg.Channel); err != nil {
		return StepError{Step: StepAddChannel, Err: err}
	}
	if err := c.Install(ctx, true, rec.Packages...); err != nil {
		return StepError{Step: StepInstallPackages, Err: err}
	}
	if err := c.Clean(ctx); err != nil {
		return StepError{Step: StepClean, Err: err}
	}

	logger.Info("packing installation", "cache", layout.Dir())
	m, err := p.Cache.Store(ctx, rec)
	if err != nil {
		return StepError{Step: StepStoreCache, Err: err}
	}
	result.Manifest = m
	result.Entries = m.Tarball.Entries
	return nil
}

// InstallerURL renders the installer URL for the configured version and
// platform.
func (p *Provisioner) InstallerURL() (string, error) {
	return installerURL(p.Config, p.GOOS, p.GOARCH)
}

func installerURL(cfg *config.Config, goos, goarch string) (string, error) {
	platform := cfg.Platform
	if platform == "" {
		if goos == "" {
			goos = runtime.GOOS
		}
		if goarch == "" {
			goarch = runtime.GOARCH
		}
		var err error
		platform, err = installer.NewPlatformMap(cfg.Platforms).Resolve(goos, goarch)
		if err != nil {
			return "", err
		}
	}
	url, err := installer.RenderURL(cfg.InstallerURL, installer.URLVars{
		Version:  cfg.MinicondaVersion,
		Platform: platform,
	})
	if err != nil {
		return "", fmt.Errorf("rendering installer URL: %w", err)
	}
	return url, nil
}

func (p *Provisioner) fetcher() *installer.Fetcher {
	if p.Fetcher == nil {
		return &installer.Fetcher{Timeout: p.Config.FetchTimeout}
	}
	return p.Fetcher
}

func (p *Provisioner) logger() *log.Logger {
	if p.Logger == nil {
		return log.New(io.Discard)
	}
	return p.Logger
}

func (p *Provisioner) clock() time.Time {
	if p.now == nil {
		return time.Now()
	}
	return p.now()
}
