package installer

import (
	"fmt"
	"sort"
)

// builtinPlatforms maps GOOS/GOARCH to the platform suffix used in Miniconda
// installer file names.
var builtinPlatforms = map[string]string{
	"linux/amd64":   "Linux-x86_64",
	"linux/386":     "Linux-x86",
	"linux/arm64":   "Linux-aarch64",
	"linux/ppc64le": "Linux-ppc64le",
	"linux/s390x":   "Linux-s390x",
	"darwin/amd64":  "MacOSX-x86_64",
	"darwin/arm64":  "MacOSX-arm64",
}

// PlatformMap resolves a GOOS/GOARCH pair to an installer platform name.
type PlatformMap struct {
	platforms map[string]string
}

// NewPlatformMap creates a PlatformMap with the built-in entries plus custom
// overrides keyed by "goos/goarch".
func NewPlatformMap(overrides map[string]string) *PlatformMap {
	p := make(map[string]string, len(builtinPlatforms)+len(overrides))
	for k, v := range builtinPlatforms {
		p[k] = v
	}
	for k, v := range overrides {
		p[k] = v
	}
	return &PlatformMap{platforms: p}
}

// Resolve returns the installer platform name for goos/goarch.
func (pm *PlatformMap) Resolve(goos, goarch string) (string, error) {
	key := goos + "/" + goarch
	name, ok := pm.platforms[key]
	if !ok {
		return "", fmt.Errorf("no Miniconda installer for platform '%s' — set 'platform' (MINICONDA_PLATFORM) explicitly, e.g. Linux-x86_64", key)
	}
	return name, nil
}

// Known returns all known "goos/goarch" keys, sorted.
func (pm *PlatformMap) Known() []string {
	keys := make([]string, 0, len(pm.platforms))
	for k := range pm.platforms {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsCustom reports whether key was added or replaced by an override.
func (pm *PlatformMap) IsCustom(key string) bool {
	builtin, isBuiltin := builtinPlatforms[key]
	current, isDefined := pm.platforms[key]
	return isDefined && (!isBuiltin || builtin != current)
}
