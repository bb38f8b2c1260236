package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/elasticinbox/elasticinbox-go/internal/update"
)

// version is set at build time via ldflags
var version = "dev"

func newVersionCmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:     "version",
		Aliases: []string{"v"},
		Short:   "Print version information",
		Example: "elasticinbox version --check",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			f := newFormatter(cmd)
			if !check {
				if handled, err := f.Output(map[string]string{"version": version}); handled {
					return err
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "elasticinbox version %s\n", version)
				return err
			}

			res, err := update.Check(cmdContext(cmd), version)
			if err != nil {
				return err
			}
			if handled, err := f.Output(res); handled {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "elasticinbox version %s\n", res.CurrentVersion)
			if res.UpdateAvailable {
				_, _ = fmt.Fprintf(out, "Version %s is available: %s\n", res.LatestVersion, res.UpdateURL)
			} else {
				_, _ = fmt.Fprintln(out, "Up to date.")
			}
			return nil
		}),
	}

	cmd.Flags().BoolVar(&check, "check", false, "Check for a newer release")
	return cmd
}
