package config

import (
	"time"

	"github.com/bianoble/provision/internal/installer"
)

// Default values used when neither flags, environment nor a config file set a key.
const (
	DefaultMinicondaVersion = "3.19.0"
	DefaultChannel          = "http://conda.lsst.codes/sims"
)

// DefaultCounterPackages are installed before the requested packages.
// nomkl swaps the MKL-linked numeric stack for OpenBLAS builds, which the
// channel's packages are linked against.
var DefaultCounterPackages = []string{"nomkl"}

// Config holds the provisioner's settings.
type Config struct {
	MinicondaVersion string            `mapstructure:"miniconda_version"`
	Channel          string            `mapstructure:"channel"`
	Home             string            `mapstructure:"home"`
	InstallerURL     string            `mapstructure:"installer_url"`
	InstallerSHA256  string            `mapstructure:"installer_sha256"`
	Platform         string            `mapstructure:"platform"`
	Platforms        map[string]string `mapstructure:"platforms"`
	CounterPackages  []string          `mapstructure:"counter_packages"`
	VerifyCache      bool              `mapstructure:"verify_cache"`
	FetchTimeout     time.Duration     `mapstructure:"fetch_timeout"`

	// File is the config file that was read, empty if none.
	File string `mapstructure:"-"`
}

// Defaults returns a Config populated with default values for home.
func Defaults(home string) Config {
	return Config{
		MinicondaVersion: DefaultMinicondaVersion,
		Channel:          DefaultChannel,
		Home:             home,
		InstallerURL:     installer.DefaultURLTemplate,
		CounterPackages:  append([]string(nil), DefaultCounterPackages...),
	}
}
