package cmd

import (
	"github.com/spf13/cobra"

	"github.com/elasticinbox/elasticinbox-go/internal/cache"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local label name cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove cached label names for every server and account",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			dir, err := cache.DefaultDir()
			if err != nil {
				return err
			}
			removed, err := cache.ClearAll(dir)
			if err != nil {
				return err
			}

			f := newFormatter(cmd)
			if handled, err := f.Output(map[string]any{"dir": dir, "removed": removed}); handled {
				return err
			}
			printAction(cmd, "Removed %d cache file(s) from %s", removed, dir)
			return nil
		}),
	})

	return cmd
}
