package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/bianoble/provision/internal/archive"
	"github.com/bianoble/provision/internal/fingerprint"
	"github.com/bianoble/provision/internal/manifest"
	"github.com/bianoble/provision/internal/sandbox"
)

// Status classifies the result of a cache lookup.
type Status string

const (
	StatusHit     Status = "hit"
	StatusEmpty   Status = "empty"   // nothing cached
	StatusStale   Status = "stale"   // cached for a different record
	StatusCorrupt Status = "corrupt" // cache present but unusable
)

// Lookup is the outcome of comparing a record against the cache.
type Lookup struct {
	Status   Status
	Reason   string
	Cached   []byte             // stored record, when readable
	Manifest *manifest.Manifest // nil when absent or unusable
}

// Hit reports whether the cached tarball can be restored.
func (l Lookup) Hit() bool { return l.Status == StatusHit }

// Cache manages the packed installation kept under a home directory.
// The cache directory is never modified in place: Store builds a complete
// replacement next to it and renames it into position.
type Cache struct {
	layout Layout
	now    func() time.Time
}

// New creates a Cache rooted at home. Nothing is created on disk.
func New(home string) *Cache {
	return &Cache{layout: Layout{Home: home}, now: time.Now}
}

// Layout returns the paths managed by the cache.
func (c *Cache) Layout() Layout {
	return c.layout
}

// Lookup compares record with the cached record. It never fails: anything
// that prevents reuse is reported as a non-hit status. With verify set the
// tarball is re-hashed against the manifest.
func (c *Cache) Lookup(record []byte, verify bool) Lookup {
	tarInfo, err := os.Stat(c.layout.TarballPath())
	if errors.Is(err, fs.ErrNotExist) {
		return Lookup{Status: StatusEmpty, Reason: "no cached tarball"}
	}
	if err != nil {
		return Lookup{Status: StatusCorrupt, Reason: fmt.Sprintf("reading cached tarball: %v", err)}
	}

	cached, err := os.ReadFile(c.layout.CachedRecordPath())
	if err != nil {
		return Lookup{Status: StatusCorrupt, Reason: fmt.Sprintf("reading cached record: %v", err)}
	}
	if !fingerprint.Equal(record, cached) {
		return Lookup{Status: StatusStale, Reason: "fingerprint record changed", Cached: cached}
	}

	m, err := manifest.Load(c.layout.ManifestPath())
	if errors.Is(err, fs.ErrNotExist) {
		// Caches written without a manifest are still valid.
		return Lookup{Status: StatusHit, Cached: cached}
	}
	if err != nil {
		return Lookup{Status: StatusCorrupt, Reason: err.Error(), Cached: cached}
	}

	if m.Record.Digest != fingerprint.Digest(record) {
		return Lookup{Status: StatusCorrupt, Reason: "manifest describes a different record", Cached: cached}
	}
	if m.Tarball.Size != tarInfo.Size() {
		return Lookup{
			Status: StatusCorrupt,
			Reason: fmt.Sprintf("tarball size %d does not match manifest size %d", tarInfo.Size(), m.Tarball.Size),
			Cached: cached,
		}
	}
	if verify {
		sum, _, err := archive.FileSHA256(c.layout.TarballPath())
		if err != nil {
			return Lookup{Status: StatusCorrupt, Reason: err.Error(), Cached: cached}
		}
		if sum != m.Tarball.SHA256 {
			return Lookup{Status: StatusCorrupt, Reason: "tarball checksum does not match manifest", Cached: cached}
		}
	}

	return Lookup{Status: StatusHit, Cached: cached, Manifest: m}
}

// Restore replaces the installation directory with the cached tarball's content.
func (c *Cache) Restore(ctx context.Context) (*archive.Result, error) {
	if err := sandbox.RemoveAll(c.layout.Home, InstallDirName); err != nil {
		return nil, fmt.Errorf("removing %s: %w", c.layout.InstallDir(), err)
	}
	res, err := archive.Unpack(ctx, c.layout.TarballPath(), c.layout.Home)
	if err != nil {
		return nil, fmt.Errorf("extracting cache: %w", err)
	}
	return res, nil
}

// Store packs the installation directory and publishes it together with the
// record file at RecordPath, which is moved into the cache. The previous cache
// is removed first; the new one appears in a single rename.
func (c *Cache) Store(ctx context.Context, rec fingerprint.Record) (*manifest.Manifest, error) {
	if err := c.removeStale(); err != nil {
		return nil, err
	}

	staging := c.layout.StagingDir()
	if err := os.Mkdir(staging, 0755); err != nil {
		return nil, fmt.Errorf("creating staging directory: %w", err)
	}

	success := false
	defer func() {
		if !success {
			_ = os.RemoveAll(staging)
		}
	}()

	packed, err := archive.Pack(ctx, filepath.Join(staging, TarballName), c.layout.Home, InstallDirName)
	if err != nil {
		return nil, fmt.Errorf("packing installation: %w", err)
	}

	if err := os.Rename(c.layout.RecordPath(), filepath.Join(staging, RecordName)); err != nil {
		return nil, fmt.Errorf("moving record into staging directory: %w", err)
	}

	m := &manifest.Manifest{
		Version: 1,
		Record: manifest.Record{
			Digest:           rec.Digest(),
			MinicondaVersion: rec.Version,
			Channel:          rec.Channel,
			Packages:         rec.Packages,
		},
		Tarball: manifest.Tarball{
			File:    TarballName,
			SHA256:  packed.SHA256,
			Size:    packed.Size,
			Entries: packed.Entries,
		},
		CreatedAt: c.now().UTC().Truncate(time.Second),
	}
	if err := manifest.Save(filepath.Join(staging, manifest.FileName), m); err != nil {
		return nil, err
	}

	if err := os.Rename(staging, c.layout.Dir()); err != nil {
		return nil, fmt.Errorf("publishing cache directory: %w", err)
	}

	success = true
	return m, nil
}

func (c *Cache) removeStale() error {
	for _, name := range []string{DirName, StagingDirName} {
		if err := sandbox.RemoveAll(c.layout.Home, name); err != nil {
			return fmt.Errorf("removing stale %s: %w", name, err)
		}
	}
	return nil
}

// Prune removes the cache directory and any leftover staging directory.
// With all set, the installation, record and installer are removed as well.
// Returns the paths that existed and were removed.
func (c *Cache) Prune(all bool) ([]string, error) {
	names := []string{DirName, StagingDirName}
	if all {
		names = append(names, InstallDirName, RecordName, InstallerName)
	}

	var removed []string
	for _, name := range names {
		path := filepath.Join(c.layout.Home, name)
		if _, err := os.Lstat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := sandbox.RemoveAll(c.layout.Home, name); err != nil {
			return removed, fmt.Errorf("removing %s: %w", path, err)
		}
		removed = append(removed, path)
	}
	return removed, nil
}

// Size returns the total size of the cache directory in bytes.
// A missing cache directory has size zero.
func (c *Cache) Size() (int64, error) {
	var total int64
	err := filepath.WalkDir(c.layout.Dir(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	return total, err
}
