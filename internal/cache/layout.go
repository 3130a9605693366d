package cache

import (
	"path/filepath"

	"github.com/bianoble/provision/internal/manifest"
)

// Names of the entries kept under the home directory.
const (
	InstallDirName = "miniconda"
	RecordName     = "info.txt"
	DirName        = "miniconda.tarball"
	StagingDirName = "miniconda.tarball.tmp"
	TarballName    = "miniconda.tar.gz"
	InstallerName  = "miniconda.sh"
)

// Layout locates the provisioner's files under a home directory.
type Layout struct {
	Home string
}

// InstallDir is the live installation tree.
func (l Layout) InstallDir() string { return filepath.Join(l.Home, InstallDirName) }

// RecordPath is where the current run's fingerprint record is written.
func (l Layout) RecordPath() string { return filepath.Join(l.Home, RecordName) }

// InstallerPath is where the downloaded installer is stored.
func (l Layout) InstallerPath() string { return filepath.Join(l.Home, InstallerName) }

// Dir is the published cache directory.
func (l Layout) Dir() string { return filepath.Join(l.Home, DirName) }

// StagingDir is where a new cache directory is built before publication.
func (l Layout) StagingDir() string { return filepath.Join(l.Home, StagingDirName) }

// TarballPath is the packed installation inside the cache directory.
func (l Layout) TarballPath() string { return filepath.Join(l.Dir(), TarballName) }

// CachedRecordPath is the record that produced the cached tarball.
func (l Layout) CachedRecordPath() string { return filepath.Join(l.Dir(), RecordName) }

// ManifestPath is the cache directory's manifest.
func (l Layout) ManifestPath() string { return filepath.Join(l.Dir(), manifest.FileName) }
