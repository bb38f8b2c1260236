package cmd

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/elasticinbox/elasticinbox-go/internal/dryrun"
)

func newAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "account",
		Aliases: []string{"acc"},
		Short:   "Create and delete mailbox accounts",
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "create [user@domain]",
		Aliases: []string{"add"},
		Short:   "Create an account",
		Example: "elasticinbox account create test@example.com",
		Args:    cobra.MaximumNArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			s, domain, user, err := accountSession(firstArg(args))
			if err != nil {
				return err
			}
			resp, err := s.client.Account().Create(cmdContext(cmd), domain, user)
			if err != nil {
				return err
			}
			return reportAction(cmd, resp, "Created", "account "+user+"@"+domain)
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "delete [user@domain]",
		Aliases: []string{"rm"},
		Short:   "Delete an account and all its messages",
		Args:    cobra.MaximumNArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			s, domain, user, err := accountSession(firstArg(args))
			if err != nil {
				return err
			}
			if done, err := preview(cmd, dryrun.Preview{
				Operation: "delete",
				Resource:  "account " + user + "@" + domain,
				Method:    http.MethodDelete,
				Warnings:  []string{"all messages and labels of the account are removed"},
			}); done {
				return err
			}
			resp, err := s.client.Account().Delete(cmdContext(cmd), domain, user)
			if err != nil {
				return err
			}
			return reportAction(cmd, resp, "Deleted", "account "+user+"@"+domain)
		}),
	})

	return cmd
}

func firstArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}
