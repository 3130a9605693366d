package engine

import (
	"errors"
	"io/fs"
	"os"

	"github.com/bianoble/provision/internal/cache"
	"github.com/bianoble/provision/internal/config"
	"github.com/bianoble/provision/internal/fingerprint"
	"github.com/bianoble/provision/internal/manifest"
)

// StatusEngine inspects the cache. It never writes to disk.
type StatusEngine struct {
	Config *config.Config
	Cache  *cache.Cache
	GOOS   string
	GOARCH string
}

// Status reports the cache state. When packages are given, the lookup a
// provisioning run with those packages would make is included.
func (e *StatusEngine) Status(packages []string) (*CacheStatus, error) {
	layout := e.Cache.Layout()
	st := &CacheStatus{Home: layout.Home}

	if info, err := os.Stat(layout.InstallDir()); err == nil && info.IsDir() {
		st.Installed = true
	}

	size, err := e.Cache.Size()
	if err != nil {
		return nil, err
	}
	st.Size = size

	if data, err := os.ReadFile(layout.CachedRecordPath()); err == nil {
		if rec, err := fingerprint.Parse(data); err == nil {
			st.Cached = &rec
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	if m, err := manifest.Load(layout.ManifestPath()); err == nil {
		st.Manifest = m
	}

	if len(packages) == 0 {
		return st, nil
	}

	rec, err := fingerprint.New(e.Config.MinicondaVersion, e.Config.Channel, packages)
	if err != nil {
		return nil, err
	}
	st.Requested = &rec
	lookup := e.Cache.Lookup(rec.Bytes(), e.Config.VerifyCache)
	st.Lookup = &lookup

	if !lookup.Hit() {
		if url, err := installerURL(e.Config, e.GOOS, e.GOARCH); err == nil {
			st.InstallerURL = url
		}
	}
	return st, nil
}
