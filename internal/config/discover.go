package config

import (
	"os"
	"path/filepath"
)

const (
	configFileName = "provision.yaml"
	configDirName  = "provision"
)

// DiscoverFile returns the config file to read. An explicit path always wins
// (even when missing, so the caller reports it). Otherwise the first existing
// file among ./provision.yaml and the user config directory is used. Returns
// "" when there is none.
func DiscoverFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, p := range candidatePaths() {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

func candidatePaths() []string {
	paths := []string{configFileName}
	if dir := userConfigDir(); dir != "" {
		paths = append(paths, filepath.Join(dir, configDirName, configFileName))
	}
	return paths
}

// userConfigDir honours XDG_CONFIG_HOME before falling back to the OS default.
func userConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return xdg
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return dir
}
