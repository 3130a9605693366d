package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var initForce bool

// defaultInitPath is where init writes when --config is not given.
const defaultInitPath = "provision.yaml"

// initTemplate is the default provision.yaml scaffold. Every key is optional;
// environment variables and flags override what is set here.
const initTemplate = `# provision configuration
# Precedence: flags > environment > this file > defaults.

# Miniconda release to install (env MINICONDA_VERSION).
miniconda_version: 3.19.0

# Channel added after the base install (env CHANNEL).
channel: http://conda.lsst.codes/sims

# Installed before the requested packages, from the default channels.
counter_packages:
  - nomkl

# Re-hash the cached tarball before restoring it (env PROVISION_VERIFY_CACHE).
verify_cache: false

# Directory holding miniconda/, info.txt and miniconda.tarball/ (env PROVISION_HOME).
# home: /home/travis

# Installer location; {{.Version}} and {{.Platform}} are substituted
# (env MINICONDA_INSTALLER_URL).
# installer_url: https://repo.continuum.io/miniconda/Miniconda-{{.Version}}-{{.Platform}}.sh

# Expected SHA-256 of the installer (env MINICONDA_INSTALLER_SHA256).
# installer_sha256: ""

# Force the installer platform name (env MINICONDA_PLATFORM).
# platform: Linux-x86_64

# Extra goos/goarch to platform name mappings.
# platforms:
#   linux/riscv64: Linux-riscv64

# Abort the installer download after this long (0 = no limit).
# fetch_timeout: 10m
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter provision.yaml configuration",
	Long: `Creates a provision.yaml file (or the path given by --config) with every
setting documented and the defaults filled in.

Use --force to overwrite an existing configuration file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		outPath := configPath
		if outPath == "" {
			outPath = defaultInitPath
		}
		if !filepath.IsAbs(outPath) {
			abs, err := filepath.Abs(outPath)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			outPath = abs
		}

		if !initForce {
			if _, err := os.Stat(outPath); err == nil {
				return fmt.Errorf("%s already exists (use --force to overwrite)", outPath)
			}
		}

		if err := os.WriteFile(outPath, []byte(initTemplate), 0644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		info("Created %s", outPath)
		info("")
		info("Next steps:")
		info("  1. Adjust the channel and version for your project")
		info("  2. Run 'provision <package>...' in your CI install step")
		info("  3. Cache $HOME/miniconda.tarball between builds")
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite existing config file")
	rootCmd.AddCommand(initCmd)
}
