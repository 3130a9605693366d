package config

import (
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/bianoble/provision/internal/installer"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// envBindings maps config keys to the environment variables that set them.
var envBindings = map[string]string{
	"miniconda_version": "MINICONDA_VERSION",
	"channel":           "CHANNEL",
	"home":              "PROVISION_HOME",
	"installer_url":     "MINICONDA_INSTALLER_URL",
	"installer_sha256":  "MINICONDA_INSTALLER_SHA256",
	"platform":          "MINICONDA_PLATFORM",
	"verify_cache":      "PROVISION_VERIFY_CACHE",
}

// flagBindings maps config keys to command-line flag names.
var flagBindings = map[string]string{
	"miniconda_version": "miniconda-version",
	"channel":           "channel",
	"home":              "home",
	"verify_cache":      "verify-cache",
}

// LoadOptions defines explicit configuration loading inputs.
type LoadOptions struct {
	// ConfigFile forces a specific YAML config file. Empty means discover.
	ConfigFile string
	// Flags are bound over environment and file values when set.
	Flags *pflag.FlagSet
}

// Load resolves the configuration with precedence flag > env > file > default
// and validates the result.
func Load(opts LoadOptions) (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	defaults := Defaults(home)

	v := viper.New()
	v.SetDefault("miniconda_version", defaults.MinicondaVersion)
	v.SetDefault("channel", defaults.Channel)
	v.SetDefault("home", defaults.Home)
	v.SetDefault("installer_url", defaults.InstallerURL)
	v.SetDefault("installer_sha256", "")
	v.SetDefault("platform", "")
	v.SetDefault("platforms", map[string]string{})
	v.SetDefault("counter_packages", defaults.CounterPackages)
	v.SetDefault("verify_cache", false)
	v.SetDefault("fetch_timeout", "0s")

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	if opts.Flags != nil {
		for key, name := range flagBindings {
			if f := opts.Flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding --%s: %w", name, err)
				}
			}
		}
	}

	file := DiscoverFile(opts.ConfigFile)
	if file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.File = file

	if cfg.Home != "" {
		abs, err := filepath.Abs(cfg.Home)
		if err != nil {
			return nil, fmt.Errorf("resolving home %s: %w", cfg.Home, err)
		}
		cfg.Home = abs
	}

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	return &cfg, nil
}

// ValidationError holds multiple validation failures.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// Validate checks a Config for semantic correctness.
// Returns a list of validation error messages (empty if valid).
func Validate(cfg *Config) []string {
	var errs []string

	if strings.TrimSpace(cfg.MinicondaVersion) == "" {
		errs = append(errs, "'miniconda_version' is required")
	} else if strings.ContainsAny(cfg.MinicondaVersion, " \t\r\n/") {
		errs = append(errs, fmt.Sprintf("'miniconda_version' %q must not contain whitespace or slashes", cfg.MinicondaVersion))
	}

	if cfg.Channel == "" {
		errs = append(errs, "'channel' is required")
	} else if u, err := url.Parse(cfg.Channel); err != nil || u.Scheme == "" {
		errs = append(errs, fmt.Sprintf("'channel' %q must be an absolute URL (e.g. http://conda.lsst.codes/sims)", cfg.Channel))
	} else if strings.ContainsAny(cfg.Channel, "\r\n") {
		errs = append(errs, "'channel' must be a single line")
	}

	if cfg.Home == "" {
		errs = append(errs, "'home' is required; set PROVISION_HOME or --home when $HOME is unavailable")
	} else if !filepath.IsAbs(cfg.Home) {
		errs = append(errs, fmt.Sprintf("'home' %q must be an absolute path", cfg.Home))
	}

	if cfg.InstallerURL == "" {
		errs = append(errs, "'installer_url' is required")
	} else if err := installer.CheckTemplate(cfg.InstallerURL); err != nil {
		errs = append(errs, fmt.Sprintf("'installer_url': %v", err))
	}

	if cfg.InstallerSHA256 != "" {
		if _, err := hex.DecodeString(cfg.InstallerSHA256); err != nil || len(cfg.InstallerSHA256) != 64 {
			errs = append(errs, "'installer_sha256' must be 64 hex characters")
		}
	}

	for i, p := range cfg.CounterPackages {
		if strings.TrimSpace(p) == "" {
			errs = append(errs, fmt.Sprintf("counter_packages[%d]: package name is empty", i))
		}
	}

	for key, name := range cfg.Platforms {
		if !strings.Contains(key, "/") {
			errs = append(errs, fmt.Sprintf("platforms: key %q must be goos/goarch", key))
		}
		if name == "" {
			errs = append(errs, fmt.Sprintf("platforms: %q maps to an empty name", key))
		}
	}

	if cfg.FetchTimeout < 0 {
		errs = append(errs, "'fetch_timeout' must not be negative")
	}

	return errs
}
