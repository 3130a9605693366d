package engine

import (
	"time"

	"github.com/bianoble/provision/internal/cache"
	"github.com/bianoble/provision/internal/fingerprint"
	"github.com/bianoble/provision/internal/installer"
	"github.com/bianoble/provision/internal/manifest"
)

// Step names one stage of a provisioning run.
type Step string

const (
	StepRecord          Step = "write record"
	StepRestore         Step = "restore cache"
	StepRemoveInstall   Step = "remove installation"
	StepFetchInstaller  Step = "fetch installer"
	StepInstallBase     Step = "run installer"
	StepCounterPackages Step = "install counter packages"
	StepAddChannel      Step = "add channel"
	StepInstallPackages Step = "install packages"
	StepClean           Step = "clean"
	StepStoreCache      Step = "store cache"
)

// StepError represents a failure associated with a specific step.
type StepError struct {
	Step Step
	Err  error
}

func (e StepError) Error() string {
	return string(e.Step) + ": " + e.Err.Error()
}

func (e StepError) Unwrap() error {
	return e.Err
}

// Result holds the outcome of a provisioning run.
type Result struct {
	Record fingerprint.Record
	Lookup cache.Lookup

	// Restored is set when the installation came from the cache.
	Restored bool
	// Fallback is set when a cache hit could not be extracted and the
	// installation was rebuilt instead.
	Fallback bool

	Entries   int
	Manifest  *manifest.Manifest
	Installer *installer.Download
	Elapsed   time.Duration
}

// CacheStatus describes the cache without changing it.
type CacheStatus struct {
	Home      string
	Installed bool
	Size      int64

	// Cached is the stored record, nil when absent or unreadable.
	Cached   *fingerprint.Record
	Manifest *manifest.Manifest

	// Requested and Lookup are only set when packages were given.
	Requested    *fingerprint.Record
	Lookup       *cache.Lookup
	InstallerURL string
}

// PruneResult holds the outcome of a prune operation.
type PruneResult struct {
	Removed []string
	Freed   int64
}
