package cmd

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status [package...]",
	Short: "Show the state of the cached installation",
	Long: `Shows the cached record, tarball size and manifest details. When packages
are given, also shows whether a provisioning run with them would restore the
cache or install from scratch, and why. Nothing is written to disk.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		client, err := newClient(cfg)
		if err != nil {
			return err
		}

		st, err := client.Status(args)
		if err != nil {
			return err
		}

		installed := "no"
		if st.Installed {
			installed = "yes"
		}
		info("home:        %s", st.Home)
		info("installed:   %s", installed)

		if st.Cached == nil {
			info("cache:       none")
		} else {
			info("cache:       %s", humanize.Bytes(uint64(st.Size)))
			info("  version:   %s", st.Cached.Version)
			info("  channel:   %s", st.Cached.Channel)
			info("  packages:  %s", strings.Join(st.Cached.Packages, " "))
		}
		if m := st.Manifest; m != nil {
			info("  created:   %s (%s)", m.CreatedAt.Format("2006-01-02 15:04:05 MST"), humanize.Time(m.CreatedAt))
			info("  entries:   %d", m.Tarball.Entries)
			detail("sha256: %s", m.Tarball.SHA256)
		}

		if st.Lookup != nil {
			line := string(st.Lookup.Status)
			if st.Lookup.Reason != "" {
				line += " (" + st.Lookup.Reason + ")"
			}
			info("lookup:      %s", line)
			if st.InstallerURL != "" {
				info("installer:   %s", st.InstallerURL)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
