package cmd

import (
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/bianoble/provision/pkg/provision"
)

var pruneAll bool

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove the cached installation",
	Long: `Removes the cache directory and any staging directory left by an
interrupted run. Use --all to also remove the installation, info.txt and a
leftover installer.`,
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

		result, err := client.Prune(provision.PruneOptions{All: pruneAll})
		for _, path := range result.Removed {
			info("  removed  %s", path)
		}
		if err != nil {
			return err
		}

		if len(result.Removed) == 0 {
			info("Nothing to prune.")
			return nil
		}
		info("\nPruned %d path(s), freed %s of cache.", len(result.Removed), humanize.Bytes(uint64(result.Freed)))
		return nil
	},
}

func init() {
	pruneCmd.Flags().BoolVar(&pruneAll, "all", false, "also remove the installation and record")
	rootCmd.AddCommand(pruneCmd)
}
