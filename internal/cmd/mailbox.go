package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/elasticinbox/elasticinbox-go/internal/cli"
	"github.com/elasticinbox/elasticinbox-go/internal/dryrun"
)

// now is replaced in tests.
var now = time.Now

func newMailboxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "mailbox",
		Aliases: []string{"mb"},
		Short:   "Mailbox maintenance",
	}

	cmd.AddCommand(newMailboxPurgeCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "scrub",
		Short: "Recalculate label counters",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			s, domain, user, err := accountSession("")
			if err != nil {
				return err
			}
			resp, err := s.client.Mailbox().Scrub(cmdContext(cmd), domain, user)
			if err != nil {
				return err
			}
			return reportAction(cmd, resp, "Scrubbed", "counters for "+user+"@"+domain)
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "restore",
		Short: "Restore purged messages (not supported by the server API)",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			s, domain, user, err := accountSession("")
			if err != nil {
				return err
			}
			_, err = s.client.Mailbox().Restore(cmdContext(cmd), domain, user)
			return err
		}),
	})

	return cmd
}

func newMailboxPurgeCmd() *cobra.Command {
	var before string

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Permanently remove deleted messages",
		Long: `Permanently remove messages marked as deleted. With --before, only messages
older than the cut-off are purged. The cut-off accepts dates ("2024-01-31"),
relative ages ("2w", "3d ago", "6mo"), "today", "yesterday" and weekdays
("last friday").`,
		Example: "elasticinbox mailbox purge --before \"30d ago\"",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			age := ""
			if before != "" {
				cutoff, err := cli.ParseCutoff(before, now())
				if err != nil {
					return fmt.Errorf("invalid --before: %w", err)
				}
				age = cli.FormatCutoff(cutoff)
			}

			s, domain, user, err := accountSession("")
			if err != nil {
				return err
			}
			p := dryrun.Preview{
				Operation: "purge",
				Resource:  "mailbox " + user + "@" + domain,
				Method:    http.MethodPut,
				Warnings:  []string{"purged messages cannot be restored"},
			}
			if age != "" {
				p.Details = map[string]string{"before": age}
			}
			if done, err := preview(cmd, p); done {
				return err
			}
			resp, err := s.client.Mailbox().Purge(cmdContext(cmd), domain, user, age)
			if err != nil {
				return err
			}
			target := "mailbox " + user + "@" + domain
			if age != "" {
				target += " before " + age
			}
			return reportAction(cmd, resp, "Purged", target)
		}),
	}

	cmd.Flags().StringVar(&before, "before", "", "Only purge messages older than this cut-off")
	return cmd
}
