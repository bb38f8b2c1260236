package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/elasticinbox/elasticinbox-go/internal/config"
	"github.com/elasticinbox/elasticinbox-go/internal/validation"
)

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "profile",
		Aliases: []string{"profiles", "pr"},
		Short:   "Manage connection profiles",
	}

	cmd.AddCommand(newProfileAddCmd())
	cmd.AddCommand(newProfileListCmd())
	cmd.AddCommand(newProfileUseCmd())
	cmd.AddCommand(newProfileShowCmd())
	cmd.AddCommand(newProfileDeleteCmd())

	return cmd
}

func newProfileAddCmd() *cobra.Command {
	var p config.Profile

	cmd := &cobra.Command{
		Use:     "add <name>",
		Aliases: []string{"set"},
		Short:   "Store a connection profile and make it current",
		Example: "elasticinbox profile add prod --host mail.example.com --port 8181 --default-account admin@example.com",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			p.Host = flags.Host
			p.Port = flags.Port
			p.Scheme = flags.Scheme
			p.Path = flags.Path
			if p.Account != "" {
				domain, user, err := config.SplitAccount(p.Account)
				if err != nil {
					return err
				}
				if err := validation.ValidateAccount(domain, user); err != nil {
					return err
				}
			}
			if p.Host == "" {
				return fmt.Errorf("--host is required")
			}
			if err := config.SaveProfile(args[0], p); err != nil {
				return err
			}
			printAction(cmd, "Saved profile %s", args[0])
			return nil
		}),
	}

	cmd.Flags().StringVar(&p.Account, "default-account", "", "Account used when --account is not given")
	return cmd
}

func newProfileListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored profiles",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			names, err := config.ListProfiles()
			if err != nil {
				return err
			}
			current, _ := config.CurrentProfile()

			f := newFormatter(cmd)
			if handled, err := f.Output(map[string]any{"current": current, "profiles": names}); handled {
				return err
			}
			if len(names) == 0 {
				f.Empty("No profiles stored")
				return nil
			}
			f.StartTable("CURRENT", "NAME", "HOST")
			for _, name := range names {
				marker := ""
				if name == current {
					marker = "*"
				}
				host := ""
				if p, err := config.LoadProfile(name); err == nil {
					host = hostPort(p)
				}
				f.Row(marker, name, host)
			}
			return f.EndTable()
		}),
	}
}

func newProfileUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "use <name>",
		Aliases: []string{"switch"},
		Short:   "Make a stored profile current",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			if _, err := config.LoadProfile(args[0]); err != nil {
				return fmt.Errorf("profile %q: %w", args[0], err)
			}
			if err := config.SetCurrentProfile(args[0]); err != nil {
				return err
			}
			printAction(cmd, "Switched to profile %s", args[0])
			return nil
		}),
	}
}

func newProfileShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "show",
		Aliases: []string{"status"},
		Short:   "Show the effective connection settings",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			p, err := config.Resolve(overrides())
			if err != nil {
				return err
			}
			f := newFormatter(cmd)
			if handled, err := f.Output(p); handled {
				return err
			}
			scheme := p.Scheme
			if scheme == "" {
				scheme = "http"
			}
			f.Row("HOST", hostPort(p))
			f.Row("SCHEME", scheme)
			if p.Path != "" {
				f.Row("PATH", p.Path)
			}
			f.Row("ACCOUNT", p.Account)
			return f.EndTable()
		}),
	}
}

func newProfileDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <name>",
		Aliases: []string{"rm"},
		Short:   "Delete a stored profile",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			if err := config.DeleteProfile(args[0]); err != nil {
				return err
			}
			printAction(cmd, "Deleted profile %s", args[0])
			return nil
		}),
	}
}

func hostPort(p config.Profile) string {
	if p.Port > 0 {
		return p.Host + ":" + strconv.Itoa(p.Port)
	}
	return p.Host
}
