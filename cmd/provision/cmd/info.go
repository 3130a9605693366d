package cmd

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/bianoble/provision/internal/installer"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the resolved configuration and known installer platforms",
	Long: `Displays the provision version, the config file in use, the resolved
settings, cache location and size, and the platform names used to pick the
Miniconda installer (built-in and custom).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		client, err := newClient(cfg)
		if err != nil {
			return err
		}

		st, err := client.Status(nil)
		if err != nil {
			return err
		}

		file := cfg.File
		if file == "" {
			file = "(none)"
		}
		info("provision %s", version)
		info("  config:            %s", file)
		info("  miniconda version: %s", cfg.MinicondaVersion)
		info("  channel:           %s", cfg.Channel)
		info("  counter packages:  %s", strings.Join(cfg.CounterPackages, " "))
		info("  home:              %s", cfg.Home)
		info("  cache size:        %s", humanize.Bytes(uint64(st.Size)))
		info("  verify cache:      %t", cfg.VerifyCache)

		if url, err := client.InstallerURL(); err == nil {
			info("  installer:         %s", url)
		} else {
			info("  installer:         %v", err)
		}

		pm := installer.NewPlatformMap(cfg.Platforms)
		info("\nInstaller platforms:")
		for _, key := range pm.Known() {
			goos, goarch, _ := strings.Cut(key, "/")
			name, err := pm.Resolve(goos, goarch)
			if err != nil {
				continue
			}
			custom := ""
			if pm.IsCustom(key) {
				custom = " (custom)"
			}
			info("  %-15s → %s%s", key, name, custom)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
